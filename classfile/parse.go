package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf16"
)

// ErrNotClassFile reports input that does not start with the class file
// magic. Classpath scanning branches on it to skip stray entries.
var ErrNotClassFile = errors.New("not a class file")

// ErrTruncated reports a class file that ends before its structures do.
var ErrTruncated = errors.New("truncated class file")

// ParseFile reads and parses one class file from disk.
func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cf, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cf, nil
}

// Parse decodes a class file from r. Only declaration-level structure is
// materialized; constant pool entries other than Utf8 and Class are read
// past, and attribute payloads are kept as raw bytes.
func Parse(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	d := &decoder{data: data}
	if d.u4() != Magic {
		return nil, ErrNotClassFile
	}

	cf := &ClassFile{
		MinorVersion: d.u2(),
		MajorVersion: d.u2(),
	}

	poolCount := d.u2()
	if poolCount > 0 {
		cf.ConstantPool = make(ConstantPool, poolCount-1)
	}
	for i := uint16(1); i < poolCount && d.err == nil; i++ {
		wide := d.constant(&cf.ConstantPool[i-1])
		if wide {
			// longs and doubles take two pool slots; the second stays
			// zero-tagged.
			i++
		}
	}

	cf.AccessFlags = AccessFlags(d.u2())
	cf.ThisClass = d.u2()
	cf.SuperClass = d.u2()

	cf.Interfaces = make([]uint16, d.u2())
	for i := range cf.Interfaces {
		cf.Interfaces[i] = d.u2()
	}

	cf.Fields = make([]FieldInfo, d.u2())
	for i := range cf.Fields {
		f := &cf.Fields[i]
		f.AccessFlags = AccessFlags(d.u2())
		f.NameIndex = d.u2()
		f.DescriptorIndex = d.u2()
		f.Attributes = d.attributes()
	}

	cf.Methods = make([]MethodInfo, d.u2())
	for i := range cf.Methods {
		m := &cf.Methods[i]
		m.AccessFlags = AccessFlags(d.u2())
		m.NameIndex = d.u2()
		m.DescriptorIndex = d.u2()
		m.Attributes = d.attributes()
	}

	cf.Attributes = d.attributes()

	if d.err != nil {
		return nil, d.err
	}
	return cf, nil
}

// decoder walks the class file bytes with a sticky error, so parse code
// reads linearly and checks once at the end.
type decoder struct {
	data []byte
	off  int
	err  error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.off+n > len(d.data) {
		d.err = ErrTruncated
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u1() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u2() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (d *decoder) u4() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// constant reads one pool entry into c and reports whether it occupied two
// slots.
func (d *decoder) constant(c *Constant) bool {
	tag := ConstantTag(d.u1())
	c.Tag = tag
	switch tag {
	case ConstantUtf8:
		c.Utf8 = decodeModifiedUTF8(d.take(int(d.u2())))
	case ConstantClass:
		c.Ref = d.u2()
	case ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		d.take(2)
	case ConstantMethodHandle:
		d.take(3)
	case ConstantInteger, ConstantFloat, ConstantFieldref, ConstantMethodref,
		ConstantInterfaceMethodref, ConstantNameAndType, ConstantDynamic,
		ConstantInvokeDynamic:
		d.take(4)
	case ConstantLong, ConstantDouble:
		d.take(8)
		return true
	default:
		if d.err == nil {
			d.err = fmt.Errorf("constant pool tag %d: %w", tag, ErrNotClassFile)
		}
	}
	return false
}

func (d *decoder) attributes() []AttributeInfo {
	attrs := make([]AttributeInfo, d.u2())
	for i := range attrs {
		attrs[i].NameIndex = d.u2()
		attrs[i].Info = d.take(int(d.u4()))
	}
	if d.err != nil {
		return nil
	}
	return attrs
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: no four-byte forms,
// supplementary characters as CESU-8 surrogate pairs, NUL as 0xC0 0x80.
// Malformed bytes decode to U+FFFD rather than failing, names in the wild
// are effectively always ASCII.
func decodeModifiedUTF8(b []byte) string {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		switch {
		case b[i]&0x80 == 0:
			units = append(units, uint16(b[i]))
			i++
		case b[i]&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(b[i]&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case b[i]&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(b[i]&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, 0xFFFD)
			i++
		}
	}
	return string(utf16.Decode(units))
}
