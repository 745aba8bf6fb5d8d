// Package symbols defines the symbol model for Java declarations: classes,
// methods, constructors, fields, type parameters and variables, plus the
// resolver layering and the unresolved-placeholder store used when a name
// cannot be linked to a declaration.
package symbols

import "strings"

// ClassKind tags what sort of type a ClassSymbol stands for. Primitives and
// arrays are ordinary symbols with their own kinds instead of boolean flags
// spread over one struct.
type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindEnum
	ClassKindAnnotation
	ClassKindPrimitive
	ClassKindArray
)

var classKindNames = map[ClassKind]string{
	ClassKindClass:      "class",
	ClassKindInterface:  "interface",
	ClassKindEnum:       "enum",
	ClassKindAnnotation: "annotation",
	ClassKindPrimitive:  "primitive",
	ClassKindArray:      "array",
}

func (k ClassKind) String() string {
	if name, ok := classKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Modifiers is a bit set of declaration modifiers. The values match the JVM
// access flags so classfile-loaded symbols can reuse them directly.
type Modifiers uint16

const (
	ModPublic       Modifiers = 0x0001
	ModPrivate      Modifiers = 0x0002
	ModProtected    Modifiers = 0x0004
	ModStatic       Modifiers = 0x0008
	ModFinal        Modifiers = 0x0010
	ModSynchronized Modifiers = 0x0020
	ModVolatile     Modifiers = 0x0040
	ModTransient    Modifiers = 0x0080
	ModNative       Modifiers = 0x0100
	ModAbstract     Modifiers = 0x0400
	ModStrictfp     Modifiers = 0x0800
)

func (m Modifiers) IsPublic() bool    { return m&ModPublic != 0 }
func (m Modifiers) IsPrivate() bool   { return m&ModPrivate != 0 }
func (m Modifiers) IsProtected() bool { return m&ModProtected != 0 }
func (m Modifiers) IsStatic() bool    { return m&ModStatic != 0 }
func (m Modifiers) IsFinal() bool     { return m&ModFinal != 0 }
func (m Modifiers) IsAbstract() bool  { return m&ModAbstract != 0 }

// TypeRef names a declared type the way the declaration wrote it, before any
// semantic resolution: a dotted source name or primitive keyword, array
// dimensions, and shallow type arguments. The types package turns these into
// resolved types on demand.
type TypeRef struct {
	Name string
	Dims int
	Args []TypeRef
}

// Void is the return reference of void methods.
var Void = TypeRef{Name: "void"}

func (t TypeRef) IsVoid() bool {
	return t.Name == "void" && t.Dims == 0
}

func (t TypeRef) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		sb.WriteByte('>')
	}
	for i := 0; i < t.Dims; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// ClassSymbol describes one class, interface, enum, annotation, primitive or
// array type. It is a single concrete struct: what sort of symbol it is lives
// in Kind and the Unresolved flag, not in a type hierarchy.
//
// Member slices hold the declared members in declaration order. Inherited
// members are looked up through the supertypes, never copied down.
type ClassSymbol struct {
	// BinaryName is the JVM name, e.g. "com.example.Outer$Inner".
	BinaryName string
	// CanonicalName is the source-visible dotted name, e.g.
	// "com.example.Outer.Inner". Empty for local and anonymous classes,
	// which cannot be named from outside their scope.
	CanonicalName string
	SimpleName    string
	PackageName   string

	Kind        ClassKind
	Mods        Modifiers
	IsLocal     bool
	IsAnonymous bool

	// Unresolved marks a placeholder created for a name that could not be
	// resolved. TypeArity carries the arity assumed at the reference site.
	Unresolved bool
	TypeArity  int

	Superclass *ClassSymbol
	Interfaces []*ClassSymbol
	TypeParams []*TypeParamSymbol

	NestedClasses []*ClassSymbol
	Fields        []*FieldSymbol
	Methods       []*MethodSymbol
	Constructors  []*ConstructorSymbol

	// Enclosing points at the directly enclosing class, nil for top-level
	// symbols. The chain is acyclic by construction.
	Enclosing *ClassSymbol

	// Component is the element type of an array symbol, nil otherwise.
	Component *ClassSymbol
}

func (c *ClassSymbol) String() string {
	if c.CanonicalName != "" {
		return c.CanonicalName
	}
	return c.BinaryName
}

func (c *ClassSymbol) IsNested() bool {
	return c.Enclosing != nil
}

// Arity is the number of type parameters; for unresolved placeholders it is
// the arity assumed when the placeholder was created.
func (c *ClassSymbol) Arity() int {
	if c.Unresolved {
		return c.TypeArity
	}
	return len(c.TypeParams)
}

// NestRoot returns the outermost class in the enclosing chain. A top-level
// class is its own nest root.
func (c *ClassSymbol) NestRoot() *ClassSymbol {
	root := c
	for root.Enclosing != nil {
		root = root.Enclosing
	}
	return root
}

// EnclosingMethod reports the method a local or anonymous class was declared
// in. This model does not track it: the second result is always false.
func (c *ClassSymbol) EnclosingMethod() (*MethodSymbol, bool) {
	return nil, false
}

// Supertypes returns the transitive supertypes: the superclass chain first,
// then superinterfaces breadth-first, each symbol once. The receiver is not
// included. Cycles in malformed hierarchies are broken by the visited set.
func (c *ClassSymbol) Supertypes() []*ClassSymbol {
	var result []*ClassSymbol
	seen := map[*ClassSymbol]bool{c: true}

	var queue []*ClassSymbol
	enqueue := func(s *ClassSymbol) {
		if s != nil && !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}

	enqueue(c.Superclass)
	for _, iface := range c.Interfaces {
		enqueue(iface)
	}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		result = append(result, next)
		enqueue(next.Superclass)
		for _, iface := range next.Interfaces {
			enqueue(iface)
		}
	}
	return result
}

func (c *ClassSymbol) DeclaredFieldNamed(name string) *FieldSymbol {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (c *ClassSymbol) DeclaredMethodsNamed(name string) []*MethodSymbol {
	var result []*MethodSymbol
	for _, m := range c.Methods {
		if m.Name == name {
			result = append(result, m)
		}
	}
	return result
}

func (c *ClassSymbol) DeclaredNestedNamed(name string) *ClassSymbol {
	for _, n := range c.NestedClasses {
		if n.SimpleName == name {
			return n
		}
	}
	return nil
}

// LookupField finds a field by name on c or its supertypes. The nearest
// declaration wins, so subclass fields shadow superclass fields.
func (c *ClassSymbol) LookupField(name string) *FieldSymbol {
	if f := c.DeclaredFieldNamed(name); f != nil {
		return f
	}
	for _, sup := range c.Supertypes() {
		if f := sup.DeclaredFieldNamed(name); f != nil {
			return f
		}
	}
	return nil
}

// LookupMethods collects all methods with the given name declared on c or
// any supertype, nearest declarations first. Overridden duplicates are kept;
// overload resolution and override marking happen later.
func (c *ClassSymbol) LookupMethods(name string) []*MethodSymbol {
	result := c.DeclaredMethodsNamed(name)
	for _, sup := range c.Supertypes() {
		result = append(result, sup.DeclaredMethodsNamed(name)...)
	}
	return result
}

// LookupNested finds a nested class by simple name on c or its supertypes.
func (c *ClassSymbol) LookupNested(name string) *ClassSymbol {
	if n := c.DeclaredNestedNamed(name); n != nil {
		return n
	}
	for _, sup := range c.Supertypes() {
		if n := sup.DeclaredNestedNamed(name); n != nil {
			return n
		}
	}
	return nil
}

// TypeParamNamed finds a type parameter of this class by name.
func (c *ClassSymbol) TypeParamNamed(name string) *TypeParamSymbol {
	for _, tp := range c.TypeParams {
		if tp.Name == name {
			return tp
		}
	}
	return nil
}

// MethodSymbol describes one declared method.
type MethodSymbol struct {
	Name       string
	Mods       Modifiers
	Owner      *ClassSymbol
	TypeParams []*TypeParamSymbol
	Params     []*VarSymbol
	Return     TypeRef
	Thrown     []TypeRef
	IsVarargs  bool
}

func (m *MethodSymbol) String() string {
	var sb strings.Builder
	if m.Owner != nil {
		sb.WriteString(m.Owner.String())
		sb.WriteByte('#')
	}
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// ConstructorSymbol describes one declared constructor.
type ConstructorSymbol struct {
	Mods       Modifiers
	Owner      *ClassSymbol
	TypeParams []*TypeParamSymbol
	Params     []*VarSymbol
	Thrown     []TypeRef
	IsVarargs  bool
}

func (c *ConstructorSymbol) String() string {
	var sb strings.Builder
	if c.Owner != nil {
		sb.WriteString(c.Owner.String())
	}
	sb.WriteString("#<init>(")
	for i, p := range c.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// FieldSymbol describes one declared field or enum constant.
type FieldSymbol struct {
	Name  string
	Mods  Modifiers
	Owner *ClassSymbol
	Type  TypeRef
	// IsEnumConstant distinguishes enum constants from ordinary fields.
	IsEnumConstant bool
}

func (f *FieldSymbol) String() string {
	if f.Owner != nil {
		return f.Owner.String() + "#" + f.Name
	}
	return f.Name
}

// TypeParamSymbol describes one type parameter of a class or method.
type TypeParamSymbol struct {
	Name   string
	Index  int
	Bounds []TypeRef
	// Exactly one of OwnerClass and OwnerMethod is set.
	OwnerClass  *ClassSymbol
	OwnerMethod *MethodSymbol
}

func (t *TypeParamSymbol) String() string {
	return t.Name
}

// VarSymbol describes a local variable, formal parameter, catch parameter,
// pattern variable or lambda parameter.
type VarSymbol struct {
	Name string
	Type TypeRef
	Mods Modifiers
	// IsParameter marks formal parameters of methods, constructors and
	// lambdas.
	IsParameter bool
}

func (v *VarSymbol) String() string {
	return v.Name
}
