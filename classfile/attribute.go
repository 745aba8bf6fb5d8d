package classfile

import "encoding/binary"

// AttributeInfo is a raw attribute: a name index plus its undecoded info
// bytes. The As* accessors decode the few attribute kinds symbol building
// reads; everything else stays opaque.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
}

// SignatureAttribute carries the generic signature of a class, field or
// method as a constant pool index.
type SignatureAttribute struct {
	SignatureIndex uint16
}

// AsSignature decodes a Signature attribute, nil when the payload does not
// fit the format.
func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	if len(a.Info) != 2 {
		return nil
	}
	return &SignatureAttribute{SignatureIndex: binary.BigEndian.Uint16(a.Info)}
}

// ExceptionsAttribute lists the Class entries of a method's throws clause.
type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

// AsExceptions decodes an Exceptions attribute, nil when the payload does
// not fit the format.
func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute {
	if len(a.Info) < 2 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(a.Info))
	if len(a.Info) != 2+2*count {
		return nil
	}
	table := make([]uint16, count)
	for i := 0; i < count; i++ {
		table[i] = binary.BigEndian.Uint16(a.Info[2+2*i:])
	}
	return &ExceptionsAttribute{ExceptionIndexTable: table}
}

// MethodParametersAttribute records source-level parameter names when the
// class was compiled with -parameters.
type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

// MethodParameter is one entry of a MethodParameters attribute. A zero
// NameIndex means the compiler emitted the slot without a name.
type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

// AsMethodParameters decodes a MethodParameters attribute, nil when the
// payload does not fit the format.
func (a *AttributeInfo) AsMethodParameters() *MethodParametersAttribute {
	if len(a.Info) < 1 {
		return nil
	}
	count := int(a.Info[0])
	if len(a.Info) != 1+4*count {
		return nil
	}
	params := make([]MethodParameter, count)
	for i := 0; i < count; i++ {
		off := 1 + 4*i
		params[i] = MethodParameter{
			NameIndex:   binary.BigEndian.Uint16(a.Info[off:]),
			AccessFlags: AccessFlags(binary.BigEndian.Uint16(a.Info[off+2:])),
		}
	}
	return &MethodParametersAttribute{Parameters: params}
}
