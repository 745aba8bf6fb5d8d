package classfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClass assembles a synthetic class file covering the structures the
// parser materializes: a mixed constant pool (including two-slot long and
// double entries), members with attributes, and class-level attributes.
type testClass struct {
	pool  bytes.Buffer
	count uint16
	utf8s map[string]uint16
}

func newTestClass() *testClass {
	return &testClass{utf8s: map[string]uint16{}}
}

func u2(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func u4(buf *bytes.Buffer, v uint32) {
	u2(buf, uint16(v>>16))
	u2(buf, uint16(v))
}

func (tc *testClass) utf8(s string) uint16 {
	if idx, ok := tc.utf8s[s]; ok {
		return idx
	}
	tc.count++
	tc.pool.WriteByte(byte(ConstantUtf8))
	u2(&tc.pool, uint16(len(s)))
	tc.pool.WriteString(s)
	tc.utf8s[s] = tc.count
	return tc.count
}

func (tc *testClass) class(internal string) uint16 {
	nameIdx := tc.utf8(internal)
	tc.count++
	tc.pool.WriteByte(byte(ConstantClass))
	u2(&tc.pool, nameIdx)
	return tc.count
}

func (tc *testClass) long(v uint64) uint16 {
	tc.count += 2
	tc.pool.WriteByte(byte(ConstantLong))
	u4(&tc.pool, uint32(v>>32))
	u4(&tc.pool, uint32(v))
	return tc.count - 1
}

func (tc *testClass) bytes(body *bytes.Buffer) []byte {
	var out bytes.Buffer
	u4(&out, Magic)
	u2(&out, 0)
	u2(&out, 52)
	u2(&out, tc.count+1)
	out.Write(tc.pool.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestParseDeclarations(t *testing.T) {
	tc := newTestClass()
	var body bytes.Buffer

	thisIdx := tc.class("com/example/Box")
	superIdx := tc.class("java/lang/Object")
	ifaceIdx := tc.class("java/io/Serializable")
	tc.long(42) // forces the two-slot case before later entries

	u2(&body, uint16(AccPublic|AccFinal))
	u2(&body, thisIdx)
	u2(&body, superIdx)
	u2(&body, 1)
	u2(&body, ifaceIdx)

	// fields: private int count
	u2(&body, 1)
	u2(&body, uint16(AccPrivate))
	u2(&body, tc.utf8("count"))
	u2(&body, tc.utf8("I"))
	u2(&body, 0)

	// methods: public Box(), public String name(int) throws IOException
	excIdx := tc.class("java/io/IOException")
	u2(&body, 2)

	u2(&body, uint16(AccPublic))
	u2(&body, tc.utf8("<init>"))
	u2(&body, tc.utf8("()V"))
	u2(&body, 0)

	u2(&body, uint16(AccPublic))
	u2(&body, tc.utf8("name"))
	u2(&body, tc.utf8("(I)Ljava/lang/String;"))
	u2(&body, 1)
	u2(&body, tc.utf8("Exceptions"))
	u4(&body, 4)
	u2(&body, 1)
	u2(&body, excIdx)

	// class attributes: Signature <T:Ljava/lang/Object;>...
	sigIdx := tc.utf8("<T:Ljava/lang/Object;>Ljava/lang/Object;")
	u2(&body, 1)
	u2(&body, tc.utf8("Signature"))
	u4(&body, 2)
	u2(&body, sigIdx)

	cf, err := Parse(bytes.NewReader(tc.bytes(&body)))
	require.NoError(t, err)

	assert.Equal(t, "com/example/Box", cf.ClassName())
	assert.Equal(t, "java/lang/Object", cf.SuperClassName())
	assert.Equal(t, []string{"java/io/Serializable"}, cf.InterfaceNames())
	assert.False(t, cf.IsInterface())
	assert.True(t, cf.AccessFlags.IsFinal())

	cp := cf.ConstantPool
	require.Len(t, cf.Fields, 1)
	f := &cf.Fields[0]
	assert.Equal(t, "count", f.Name(cp))
	require.NotNil(t, f.ParsedDescriptor(cp))
	assert.Equal(t, "int", f.ParsedDescriptor(cp).BaseType)

	require.Len(t, cf.Methods, 2)
	assert.True(t, cf.Methods[0].IsConstructor(cp))

	m := &cf.Methods[1]
	assert.Equal(t, "name", m.Name(cp))
	desc := m.ParsedDescriptor(cp)
	require.NotNil(t, desc)
	require.Len(t, desc.Parameters, 1)
	assert.Equal(t, "int", desc.Parameters[0].BaseType)
	require.NotNil(t, desc.ReturnType)
	assert.Equal(t, "java/lang/String", desc.ReturnType.ClassName)

	exc := m.GetAttribute(cp, "Exceptions")
	require.NotNil(t, exc)
	ex := exc.AsExceptions()
	require.NotNil(t, ex)
	require.Len(t, ex.ExceptionIndexTable, 1)
	assert.Equal(t, "java/io/IOException", cp.GetClassName(ex.ExceptionIndexTable[0]))

	sig := cf.GetAttribute("Signature")
	require.NotNil(t, sig)
	parsed := sig.AsSignature()
	require.NotNil(t, parsed)
	assert.Equal(t, "<T:Ljava/lang/Object;>Ljava/lang/Object;", cp.GetUtf8(parsed.SignatureIndex))
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
	assert.ErrorIs(t, err, ErrNotClassFile)

	tc := newTestClass()
	var body bytes.Buffer
	u2(&body, uint16(AccPublic))
	u2(&body, tc.class("A"))
	data := tc.bytes(&body)

	_, err = Parse(bytes.NewReader(data)) // body stops before interfaces
	assert.ErrorIs(t, err, ErrTruncated)

	for n := 0; n < len(data); n += 7 {
		_, err := Parse(bytes.NewReader(data[:n]))
		assert.Error(t, err, "prefix of %d bytes", n)
	}
}

func TestConstantPoolLookups(t *testing.T) {
	var cp ConstantPool
	assert.Equal(t, "", cp.GetUtf8(0))
	assert.Equal(t, "", cp.GetUtf8(5))

	cp = ConstantPool{
		{Tag: ConstantUtf8, Utf8: "java/util/List"},
		{Tag: ConstantClass, Ref: 1},
	}
	assert.Equal(t, "java/util/List", cp.GetUtf8(1))
	assert.Equal(t, "java/util/List", cp.GetClassName(2))
	assert.Equal(t, "", cp.GetClassName(1)) // wrong entry kind
}

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc  string
		base  string
		class string
		depth int
	}{
		{"I", "int", "", 0},
		{"Z", "boolean", "", 0},
		{"[[D", "double", "", 2},
		{"Ljava/lang/String;", "", "java/lang/String", 0},
		{"[Ljava/util/Map$Entry;", "", "java/util/Map$Entry", 1},
	}
	for _, tt := range tests {
		ft := ParseFieldDescriptor(tt.desc)
		require.NotNil(t, ft, tt.desc)
		assert.Equal(t, tt.base, ft.BaseType, tt.desc)
		assert.Equal(t, tt.class, ft.ClassName, tt.desc)
		assert.Equal(t, tt.depth, ft.ArrayDepth, tt.desc)
	}

	for _, bad := range []string{"", "X", "L", "Lfoo", "II", "[", "Ljava/lang/String;X"} {
		assert.Nil(t, ParseFieldDescriptor(bad), bad)
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	md := ParseMethodDescriptor("(I[Ljava/lang/String;J)V")
	require.NotNil(t, md)
	require.Len(t, md.Parameters, 3)
	assert.Equal(t, "int", md.Parameters[0].BaseType)
	assert.Equal(t, "java/lang/String", md.Parameters[1].ClassName)
	assert.Equal(t, 1, md.Parameters[1].ArrayDepth)
	assert.Equal(t, "long", md.Parameters[2].BaseType)
	assert.Nil(t, md.ReturnType)

	md = ParseMethodDescriptor("()Ljava/lang/Object;")
	require.NotNil(t, md)
	assert.Empty(t, md.Parameters)
	require.NotNil(t, md.ReturnType)
	assert.Equal(t, "java/lang/Object", md.ReturnType.ClassName)

	for _, bad := range []string{"", "I", "(I", "(X)V", "()VV", "()"} {
		assert.Nil(t, ParseMethodDescriptor(bad), bad)
	}
}

func TestAttributeDecoding(t *testing.T) {
	mp := &AttributeInfo{Info: []byte{
		2,
		0, 7, 0x00, 0x00, // name index 7
		0, 0, 0x10, 0x00, // unnamed, synthetic
	}}
	parsed := mp.AsMethodParameters()
	require.NotNil(t, parsed)
	require.Len(t, parsed.Parameters, 2)
	assert.Equal(t, uint16(7), parsed.Parameters[0].NameIndex)
	assert.Equal(t, uint16(0), parsed.Parameters[1].NameIndex)
	assert.True(t, parsed.Parameters[1].AccessFlags.IsSynthetic())

	// payload size mismatches decode to nil, never panic
	assert.Nil(t, (&AttributeInfo{Info: []byte{3, 0, 7}}).AsMethodParameters())
	assert.Nil(t, (&AttributeInfo{Info: []byte{0, 1, 0}}).AsSignature())
	assert.Nil(t, (&AttributeInfo{Info: []byte{0, 2, 0, 1, 0, 2}}).AsExceptions())
}

func TestFieldTypeString(t *testing.T) {
	assert.Equal(t, "int", (&FieldType{BaseType: "int"}).String())
	assert.Equal(t, "java.lang.String[][]",
		(&FieldType{ClassName: "java/lang/String", ArrayDepth: 2}).String())
}
