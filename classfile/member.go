package classfile

// FieldInfo is one field_info record.
type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (f *FieldInfo) Name(cp ConstantPool) string       { return cp.GetUtf8(f.NameIndex) }
func (f *FieldInfo) Descriptor(cp ConstantPool) string { return cp.GetUtf8(f.DescriptorIndex) }

func (f *FieldInfo) IsStatic() bool    { return f.AccessFlags.IsStatic() }
func (f *FieldInfo) IsSynthetic() bool { return f.AccessFlags.IsSynthetic() }
func (f *FieldInfo) IsEnum() bool      { return f.AccessFlags.IsEnum() }

// ParsedDescriptor parses the field descriptor, nil when it is malformed.
func (f *FieldInfo) ParsedDescriptor(cp ConstantPool) *FieldType {
	return ParseFieldDescriptor(f.Descriptor(cp))
}

func (f *FieldInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	return findAttribute(f.Attributes, cp, name)
}

// MethodInfo is one method_info record; constructors and static
// initializers appear here under their JVM names <init> and <clinit>.
type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MethodInfo) Name(cp ConstantPool) string       { return cp.GetUtf8(m.NameIndex) }
func (m *MethodInfo) Descriptor(cp ConstantPool) string { return cp.GetUtf8(m.DescriptorIndex) }

func (m *MethodInfo) IsStatic() bool    { return m.AccessFlags.IsStatic() }
func (m *MethodInfo) IsAbstract() bool  { return m.AccessFlags.IsAbstract() }
func (m *MethodInfo) IsBridge() bool    { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool   { return m.AccessFlags.IsVarargs() }
func (m *MethodInfo) IsSynthetic() bool { return m.AccessFlags.IsSynthetic() }

func (m *MethodInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

// ParsedDescriptor parses the method descriptor, nil when it is malformed.
func (m *MethodInfo) ParsedDescriptor(cp ConstantPool) *MethodDescriptor {
	return ParseMethodDescriptor(m.Descriptor(cp))
}

func (m *MethodInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	return findAttribute(m.Attributes, cp, name)
}

func findAttribute(attrs []AttributeInfo, cp ConstantPool, name string) *AttributeInfo {
	for i := range attrs {
		if cp.GetUtf8(attrs[i].NameIndex) == name {
			return &attrs[i]
		}
	}
	return nil
}
