// Package types models Java types for expression typing: primitives, named
// (possibly parameterized) class types, arrays, type parameters, wildcards
// and inference variables, plus the constraint solver and overload selection
// the inference engine is built on.
//
// Types are plain immutable values. The error type is a first-class member
// of the model: anything the engine cannot type becomes Error and analysis
// keeps going.
package types

import (
	"strconv"
	"strings"

	"github.com/PaperTsar/javasema/java/symbols"
)

// Type is implemented by every type representation in this package.
type Type interface {
	String() string
	aType()
}

// PrimitiveKind enumerates the Java primitive types.
type PrimitiveKind int

const (
	KindBoolean PrimitiveKind = iota
	KindByte
	KindShort
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
)

var primitiveNames = [...]string{
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindShort:   "short",
	KindChar:    "char",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
}

// Primitive is a Java primitive type. Use the package singletons (Int, Long,
// ...) so identity comparison works.
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) String() string { return primitiveNames[p.Kind] }
func (p *Primitive) aType()         {}

func (p *Primitive) IsNumeric() bool {
	return p.Kind != KindBoolean
}

func (p *Primitive) IsIntegral() bool {
	switch p.Kind {
	case KindByte, KindShort, KindChar, KindInt, KindLong:
		return true
	}
	return false
}

var (
	Boolean = &Primitive{KindBoolean}
	Byte    = &Primitive{KindByte}
	Short   = &Primitive{KindShort}
	Char    = &Primitive{KindChar}
	Int     = &Primitive{KindInt}
	Long    = &Primitive{KindLong}
	Float   = &Primitive{KindFloat}
	Double  = &Primitive{KindDouble}
)

var primitivesByName = map[string]*Primitive{
	"boolean": Boolean,
	"byte":    Byte,
	"short":   Short,
	"char":    Char,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
}

// PrimitiveByName returns the primitive singleton for a keyword, nil when
// name is not a primitive type.
func PrimitiveByName(name string) *Primitive {
	return primitivesByName[name]
}

// Named is a class, interface, enum or annotation type. Args carries type
// arguments; a nil Args on a generic symbol is the raw type.
type Named struct {
	Sym  *symbols.ClassSymbol
	Args []Type
}

func NamedOf(sym *symbols.ClassSymbol, args ...Type) *Named {
	return &Named{Sym: sym, Args: args}
}

func (n *Named) String() string {
	name := n.Sym.String()
	if name == "" {
		name = n.Sym.SimpleName
	}
	if len(n.Args) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('<')
	for i, a := range n.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (n *Named) aType() {}

// IsRaw reports whether a generic type is used without type arguments.
func (n *Named) IsRaw() bool {
	return len(n.Args) == 0 && n.Sym.Arity() > 0
}

// Array is a Java array type.
type Array struct {
	Elem Type
}

func ArrayOf(elem Type) *Array { return &Array{Elem: elem} }

func (a *Array) String() string { return a.Elem.String() + "[]" }
func (a *Array) aType()         {}

// TypeParam is a declared type parameter appearing in a signature, as
// opposed to a fresh inference variable.
type TypeParam struct {
	Sym *symbols.TypeParamSymbol
}

func (t *TypeParam) String() string { return t.Sym.Name }
func (t *TypeParam) aType()         {}

// Var is an inference variable introduced by the solver for one invocation.
type Var struct {
	ID     int
	Origin *symbols.TypeParamSymbol
}

func (v *Var) String() string {
	if v.Origin != nil {
		return "#" + v.Origin.Name
	}
	return "#" + strconv.Itoa(v.ID)
}
func (v *Var) aType() {}

// Wildcard is a bounded or unbounded wildcard type argument. At most one of
// Upper and Lower is set; both nil means the unbounded wildcard.
type Wildcard struct {
	Upper Type
	Lower Type
}

func (w *Wildcard) String() string {
	switch {
	case w.Upper != nil:
		return "? extends " + w.Upper.String()
	case w.Lower != nil:
		return "? super " + w.Lower.String()
	}
	return "?"
}
func (w *Wildcard) aType() {}

// Special covers the types without a declaration: null, void and the error
// type. Compare against the package singletons.
type Special struct {
	name string
}

func (s *Special) String() string { return s.name }
func (s *Special) aType()         {}

var (
	// Error is the degrade target: any expression the engine cannot type
	// gets the error type and inference continues around it.
	Error Type = &Special{"<error>"}
	// Null is the type of the null literal.
	Null Type = &Special{"null"}
	// Void is the type of calls to void methods.
	Void Type = &Special{"void"}
)

// IsError reports whether t is the error type.
func IsError(t Type) bool { return t == Error }

// IsReference reports whether a value of type t is a reference. The error
// type counts so degraded expressions still flow through member accesses.
func IsReference(t Type) bool {
	switch t.(type) {
	case *Named, *Array, *TypeParam, *Var:
		return true
	}
	return t == Null || t == Error
}

// Identical reports structural type equality. Named types compare by symbol
// identity plus arguments.
func Identical(a, b Type) bool {
	if a == b {
		return true
	}
	switch at := a.(type) {
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Kind == bt.Kind
	case *Named:
		bt, ok := b.(*Named)
		if !ok || at.Sym != bt.Sym || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Identical(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	case *Array:
		bt, ok := b.(*Array)
		return ok && Identical(at.Elem, bt.Elem)
	case *TypeParam:
		bt, ok := b.(*TypeParam)
		return ok && at.Sym == bt.Sym
	case *Wildcard:
		bt, ok := b.(*Wildcard)
		if !ok {
			return false
		}
		return wildcardSideEqual(at.Upper, bt.Upper) && wildcardSideEqual(at.Lower, bt.Lower)
	}
	return false
}

func wildcardSideEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Identical(a, b)
}
