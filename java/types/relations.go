package types

import "github.com/PaperTsar/javasema/java/symbols"

// widens[from][to] holds the primitive widening conversions. Identity is not
// included.
var widens = map[PrimitiveKind][]PrimitiveKind{
	KindByte:  {KindShort, KindInt, KindLong, KindFloat, KindDouble},
	KindShort: {KindInt, KindLong, KindFloat, KindDouble},
	KindChar:  {KindInt, KindLong, KindFloat, KindDouble},
	KindInt:   {KindLong, KindFloat, KindDouble},
	KindLong:  {KindFloat, KindDouble},
	KindFloat: {KindDouble},
}

// WidensTo reports whether the widening primitive conversion from -> to
// exists.
func WidensTo(from, to PrimitiveKind) bool {
	if from == to {
		return false
	}
	for _, k := range widens[from] {
		if k == to {
			return true
		}
	}
	return false
}

// Box returns the wrapper type of a primitive, nil when t is not a primitive
// or the wrapper is unknown to the type system.
func Box(ts *symbols.TypeSystem, t Type) *Named {
	p, ok := t.(*Primitive)
	if !ok {
		return nil
	}
	if sym := ts.Boxed(ts.Primitive(p.String())); sym != nil {
		return NamedOf(sym)
	}
	return nil
}

// Unbox returns the primitive behind a wrapper type, nil when t does not
// unbox.
func Unbox(ts *symbols.TypeSystem, t Type) *Primitive {
	n, ok := t.(*Named)
	if !ok {
		return nil
	}
	if prim := ts.Unboxed(n.Sym); prim != nil {
		return PrimitiveByName(prim.SimpleName)
	}
	return nil
}

// IsSubtype reports whether sub is a reference subtype of super. Named
// subtyping through the hierarchy compares symbols; type arguments are
// checked when both sides name the same symbol, with shallow wildcard
// containment. A raw side is compatible with any instantiation.
func IsSubtype(sub, super Type) bool {
	if sub == Error || super == Error {
		return true
	}
	if Identical(sub, super) {
		return true
	}
	if sub == Null {
		return IsReference(super)
	}
	// A bare type variable as the target appears in signatures read off raw
	// receivers; the erased parameter takes any reference.
	if _, ok := super.(*TypeParam); ok {
		return IsReference(sub)
	}

	superNamed, superIsNamed := super.(*Named)

	switch s := sub.(type) {
	case *Named:
		if !superIsNamed {
			return false
		}
		if s.Sym == superNamed.Sym {
			return argsContained(s.Args, superNamed.Args)
		}
		for _, sup := range s.Sym.Supertypes() {
			if sup == superNamed.Sym {
				// The symbol model erases supertype instantiations, so
				// argument agreement is not checked across the hierarchy.
				return true
			}
		}
		// Everything unresolved conservatively subtypes Object so member
		// chains keep flowing.
		if s.Sym.Unresolved && superNamed.Sym.CanonicalName == "java.lang.Object" {
			return true
		}
		return false
	case *Array:
		if superIsNamed {
			name := superNamed.Sym.CanonicalName
			return name == "java.lang.Object" || name == "java.lang.Cloneable" || name == "java.io.Serializable"
		}
		superArr, ok := super.(*Array)
		if !ok {
			return false
		}
		// Arrays are covariant for reference elements only.
		if _, prim := s.Elem.(*Primitive); prim {
			return Identical(s.Elem, superArr.Elem)
		}
		return IsSubtype(s.Elem, superArr.Elem)
	case *TypeParam:
		if superIsNamed && superNamed.Sym.CanonicalName == "java.lang.Object" {
			return true
		}
		for _, bound := range s.Sym.Bounds {
			if b, ok := super.(*Named); ok && boundNames(bound, b.Sym) {
				return true
			}
		}
		return false
	}
	return false
}

func boundNames(bound symbols.TypeRef, sym *symbols.ClassSymbol) bool {
	return bound.Dims == 0 && bound.Name == sym.CanonicalName
}

// argsContained checks type-argument compatibility for two uses of the same
// generic symbol: raw sides accept anything, wildcards contain by bound,
// everything else must match exactly.
func argsContained(sub, super []Type) bool {
	if len(sub) == 0 || len(super) == 0 {
		return true
	}
	if len(sub) != len(super) {
		return false
	}
	for i := range super {
		if !argContained(sub[i], super[i]) {
			return false
		}
	}
	return true
}

func argContained(arg, in Type) bool {
	w, ok := in.(*Wildcard)
	if !ok {
		return Identical(arg, in)
	}
	switch {
	case w.Upper != nil:
		return IsSubtype(stripWildcard(arg), w.Upper)
	case w.Lower != nil:
		return IsSubtype(w.Lower, stripWildcard(arg))
	}
	return true
}

func stripWildcard(t Type) Type {
	if w, ok := t.(*Wildcard); ok {
		if w.Upper != nil {
			return w.Upper
		}
		if w.Lower != nil {
			return w.Lower
		}
	}
	return t
}

// StrictlyAssignable is invocation applicability phase 1: identity, primitive
// widening, reference widening, null to reference. No boxing.
func StrictlyAssignable(from, to Type) bool {
	if from == Error || to == Error {
		return true
	}
	if Identical(from, to) {
		return true
	}
	fp, fromPrim := from.(*Primitive)
	tp, toPrim := to.(*Primitive)
	if fromPrim && toPrim {
		return WidensTo(fp.Kind, tp.Kind)
	}
	if fromPrim != toPrim {
		return false
	}
	return IsSubtype(from, to)
}

// LooselyAssignable is invocation applicability phase 2: phase 1 plus boxing
// and unboxing, each optionally followed by widening.
func LooselyAssignable(ts *symbols.TypeSystem, from, to Type) bool {
	if StrictlyAssignable(from, to) {
		return true
	}
	if boxed := Box(ts, from); boxed != nil {
		if IsSubtype(boxed, to) {
			return true
		}
	}
	if unboxed := Unbox(ts, from); unboxed != nil {
		if tp, ok := to.(*Primitive); ok {
			return unboxed.Kind == tp.Kind || WidensTo(unboxed.Kind, tp.Kind)
		}
	}
	return false
}

// PromoteUnary applies unary numeric promotion: byte, short and char widen
// to int; other numerics keep their type. Wrapper types unbox first.
func PromoteUnary(ts *symbols.TypeSystem, t Type) Type {
	if u := Unbox(ts, t); u != nil {
		t = u
	}
	p, ok := t.(*Primitive)
	if !ok || !p.IsNumeric() {
		return Error
	}
	switch p.Kind {
	case KindByte, KindShort, KindChar:
		return Int
	}
	return p
}

// PromoteBinary applies binary numeric promotion to the operand pair.
func PromoteBinary(ts *symbols.TypeSystem, a, b Type) Type {
	if ua := Unbox(ts, a); ua != nil {
		a = ua
	}
	if ub := Unbox(ts, b); ub != nil {
		b = ub
	}
	pa, okA := a.(*Primitive)
	pb, okB := b.(*Primitive)
	if !okA || !okB || !pa.IsNumeric() || !pb.IsNumeric() {
		return Error
	}
	switch {
	case pa.Kind == KindDouble || pb.Kind == KindDouble:
		return Double
	case pa.Kind == KindFloat || pb.Kind == KindFloat:
		return Float
	case pa.Kind == KindLong || pb.Kind == KindLong:
		return Long
	}
	return Int
}

// Lub computes the join of two types for conditional expressions: equal
// types stay, numeric pairs promote, reference pairs pick the wider side or
// fall back to Object.
func Lub(ts *symbols.TypeSystem, a, b Type) Type {
	if a == Error || b == Error {
		return Error
	}
	if Identical(a, b) {
		return a
	}
	if a == Null && IsReference(b) {
		return b
	}
	if b == Null && IsReference(a) {
		return a
	}
	if p := PromoteBinary(ts, a, b); p != Error {
		return p
	}
	if IsSubtype(a, b) {
		return b
	}
	if IsSubtype(b, a) {
		return a
	}
	if IsReference(a) && IsReference(b) {
		return NamedOf(ts.Object)
	}
	return Error
}
