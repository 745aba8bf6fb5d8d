package classfile

import "strings"

// FieldType is one parsed descriptor type: either a primitive (BaseType
// set) or a class reference (ClassName set, internal form), with
// ArrayDepth counting the [ prefixes either way.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

func (ft *FieldType) IsPrimitive() bool { return ft.BaseType != "" && ft.ArrayDepth == 0 }

func (ft *FieldType) String() string {
	name := ft.BaseType
	if ft.ClassName != "" {
		name = InternalToSourceName(ft.ClassName)
	}
	return name + strings.Repeat("[]", ft.ArrayDepth)
}

// MethodDescriptor is a parsed method descriptor. ReturnType is nil for
// void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

var baseTypeNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// ParseFieldDescriptor parses a single field descriptor such as
// "[Ljava/lang/String;". It returns nil for malformed input.
func ParseFieldDescriptor(desc string) *FieldType {
	ft, rest := takeFieldType(desc)
	if ft == nil || rest != "" {
		return nil
	}
	return ft
}

// ParseMethodDescriptor parses a method descriptor such as
// "(ILjava/lang/String;)V". It returns nil for malformed input.
func ParseMethodDescriptor(desc string) *MethodDescriptor {
	if !strings.HasPrefix(desc, "(") {
		return nil
	}
	desc = desc[1:]

	md := &MethodDescriptor{}
	for !strings.HasPrefix(desc, ")") {
		ft, rest := takeFieldType(desc)
		if ft == nil {
			return nil
		}
		md.Parameters = append(md.Parameters, *ft)
		desc = rest
	}
	desc = desc[1:]

	if desc == "V" {
		return md
	}
	md.ReturnType, desc = takeFieldType(desc)
	if md.ReturnType == nil || desc != "" {
		return nil
	}
	return md
}

// takeFieldType consumes one type from the front of desc, returning it and
// the remainder, or (nil, "") when desc does not start with a type.
func takeFieldType(desc string) (*FieldType, string) {
	ft := &FieldType{}
	for strings.HasPrefix(desc, "[") {
		ft.ArrayDepth++
		desc = desc[1:]
	}
	if desc == "" {
		return nil, ""
	}
	if name, ok := baseTypeNames[desc[0]]; ok {
		ft.BaseType = name
		return ft, desc[1:]
	}
	if desc[0] == 'L' {
		end := strings.IndexByte(desc, ';')
		if end <= 1 {
			return nil, ""
		}
		ft.ClassName = desc[1:end]
		return ft, desc[end+1:]
	}
	return nil, ""
}

// InternalToSourceName turns an internal name (java/util/Map$Entry) into
// its binary source form (java.util.Map$Entry).
func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}
