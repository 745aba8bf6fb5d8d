package classfile

// Constant is one constant pool slot. Only Utf8 and Class entries carry
// data the declaration reader cares about; every other kind is kept as its
// tag alone so pool indexes stay aligned. The slot after a long or double
// entry is a zero-tag filler, as the class file format mandates.
type Constant struct {
	Tag  ConstantTag
	Utf8 string // ConstantUtf8 payload
	Ref  uint16 // ConstantClass name index
}

// ConstantPool is the pool with its one-based index convention: entry i of
// the file lives at pool[i-1], and index 0 is reserved to mean "absent".
type ConstantPool []Constant

func (cp ConstantPool) at(index uint16) *Constant {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return &cp[index-1]
}

// GetUtf8 returns the Utf8 entry at index, or "" when the index is out of
// range or names a different entry kind.
func (cp ConstantPool) GetUtf8(index uint16) string {
	if c := cp.at(index); c != nil && c.Tag == ConstantUtf8 {
		return c.Utf8
	}
	return ""
}

// GetClassName resolves a Class entry to its internal name, "" on any
// mismatch.
func (cp ConstantPool) GetClassName(index uint16) string {
	if c := cp.at(index); c != nil && c.Tag == ConstantClass {
		return cp.GetUtf8(c.Ref)
	}
	return ""
}
