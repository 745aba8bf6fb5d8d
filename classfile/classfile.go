// Package classfile reads the declaration-level slice of JVM class files:
// class names, access flags, supertypes and member signatures. Method
// bodies, annotations and debug tables are skipped while parsing; building
// classpath symbols needs none of them.
package classfile

// ClassFile is one parsed class file. Indexes reference the constant pool;
// the accessor methods resolve them to strings.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// ClassName returns the internal (slash-separated) name of this class.
func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

// SuperClassName returns the internal name of the superclass, or "" for
// java/lang/Object and module-info files.
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

// InterfaceNames returns the internal names of the direct superinterfaces
// in declaration order.
func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool { return cf.AccessFlags.IsAnnotation() }
func (cf *ClassFile) IsEnum() bool       { return cf.AccessFlags.IsEnum() }
func (cf *ClassFile) IsModule() bool     { return cf.AccessFlags.IsModule() }

// GetAttribute returns the first class-level attribute with the given name,
// or nil.
func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	for i := range cf.Attributes {
		if cf.ConstantPool.GetUtf8(cf.Attributes[i].NameIndex) == name {
			return &cf.Attributes[i]
		}
	}
	return nil
}
