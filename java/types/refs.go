package types

import (
	"strings"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
)

// Binding is what name resolution decided a single name node means. Exactly
// one field is set.
type Binding struct {
	Var       *symbols.VarSymbol
	Field     *symbols.FieldSymbol
	Class     *symbols.ClassSymbol
	TypeParam *symbols.TypeParamSymbol
	Package   string
}

// Scope feeds name-resolution results into the engine. The scope pass
// implements it over its per-unit side tables; tests implement it over maps.
type Scope interface {
	// BindingOf reports what the name node n was bound to, if anything.
	BindingOf(n *parser.Node) (Binding, bool)
	// EnclosingClass returns the symbol of the class declaration enclosing n.
	EnclosingClass(n *parser.Node) *symbols.ClassSymbol
	// EnclosingMethod returns the method enclosing n, or nil at class level.
	EnclosingMethod(n *parser.Node) *symbols.MethodSymbol
}

// typeSite is the lexical position a type reference is read from. Type
// parameter names resolve against the method first, then the class and its
// enclosing classes.
type typeSite struct {
	class  *symbols.ClassSymbol
	method *symbols.MethodSymbol
}

func (s typeSite) lookupParam(name string) *symbols.TypeParamSymbol {
	if s.method != nil {
		for _, tp := range s.method.TypeParams {
			if tp.Name == name {
				return tp
			}
		}
	}
	for c := s.class; c != nil; c = c.Enclosing {
		if tp := c.TypeParamNamed(name); tp != nil {
			return tp
		}
	}
	return nil
}

// classNamed resolves a canonical name to a symbol, falling back to a
// placeholder. It never returns nil.
func (inf *Inferrer) classNamed(name string) *symbols.ClassSymbol {
	return symbols.FindSymbolCannotFail(inf.res, inf.store, name)
}

// resolveRef turns a symbol-model type reference into a type. Member
// signatures store canonical class names, so resolution is a direct lookup
// once type parameter names are ruled out.
func (inf *Inferrer) resolveRef(ref symbols.TypeRef, site typeSite) Type {
	if ref.Dims > 0 {
		elem := ref
		elem.Dims = 0
		t := inf.resolveRef(elem, site)
		for i := 0; i < ref.Dims; i++ {
			t = ArrayOf(t)
		}
		return t
	}

	switch ref.Name {
	case "", "void":
		return Void
	case "?":
		return &Wildcard{}
	case "? extends":
		if len(ref.Args) == 1 {
			return &Wildcard{Upper: inf.resolveRef(ref.Args[0], site)}
		}
		return &Wildcard{}
	case "? super":
		if len(ref.Args) == 1 {
			return &Wildcard{Lower: inf.resolveRef(ref.Args[0], site)}
		}
		return &Wildcard{}
	}

	if p := PrimitiveByName(ref.Name); p != nil {
		return p
	}
	if !strings.Contains(ref.Name, ".") {
		if tp := site.lookupParam(ref.Name); tp != nil {
			return &TypeParam{Sym: tp}
		}
	}

	sym := inf.classNamed(ref.Name)
	args := make([]Type, 0, len(ref.Args))
	for _, a := range ref.Args {
		args = append(args, inf.resolveRef(a, site))
	}
	return NamedOf(sym, args...)
}

// resolveTypeNode turns a parsed type node into a type. Class type segments
// are resolved through the bindings the scope pass left on them; unbound
// segments fall back to name lookup from the node's lexical site.
func (inf *Inferrer) resolveTypeNode(n *parser.Node, site typeSite) Type {
	if n == nil {
		return Error
	}
	switch n.Kind {
	case parser.KindPrimitiveType:
		name := n.TokenLiteral()
		if name == "void" {
			return Void
		}
		if p := PrimitiveByName(name); p != nil {
			return p
		}
		return Error

	case parser.KindArrayType:
		if len(n.Children) == 0 {
			return Error
		}
		return ArrayOf(inf.resolveTypeNode(n.Children[0], site))

	case parser.KindWildcard:
		var bound *parser.Node
		for _, c := range n.Children {
			if c.Kind != parser.KindAnnotation {
				bound = c
				break
			}
		}
		if bound == nil {
			return &Wildcard{}
		}
		bt := inf.resolveTypeNode(bound, site)
		if n.Token != nil && n.Token.Kind == parser.TokenSuper {
			return &Wildcard{Lower: bt}
		}
		return &Wildcard{Upper: bt}

	case parser.KindClassType:
		return inf.resolveClassTypeNode(n, site)

	case parser.KindVarType:
		// The declared type comes from the initializer; the scope pass
		// records it as the binding of the declarator, not of this node.
		return Error
	}
	return Error
}

func (inf *Inferrer) resolveClassTypeNode(n *parser.Node, site typeSite) Type {
	if b, ok := inf.scopeBinding(n); ok {
		switch {
		case b.TypeParam != nil:
			return &TypeParam{Sym: b.TypeParam}
		case b.Class != nil:
			return NamedOf(b.Class, inf.resolveTypeArgs(n, site)...)
		}
	}

	var segs []string
	var lastArgs *parser.Node
	for _, c := range n.Children {
		switch c.Kind {
		case parser.KindIdentifier:
			segs = append(segs, c.TokenLiteral())
			lastArgs = nil
		case parser.KindTypeArguments:
			lastArgs = c
		}
	}
	if len(segs) == 0 {
		return Error
	}
	name := strings.Join(segs, ".")
	if len(segs) == 1 {
		if p := PrimitiveByName(name); p != nil {
			return p
		}
		if tp := site.lookupParam(name); tp != nil {
			return &TypeParam{Sym: tp}
		}
	}

	sym := inf.classNamed(name)
	var args []Type
	if lastArgs != nil {
		for _, a := range lastArgs.Children {
			args = append(args, inf.resolveTypeNode(a, site))
		}
	}
	return NamedOf(sym, args...)
}

func (inf *Inferrer) resolveTypeArgs(n *parser.Node, site typeSite) []Type {
	var last *parser.Node
	for _, c := range n.Children {
		if c.Kind == parser.KindTypeArguments {
			last = c
		}
	}
	if last == nil {
		return nil
	}
	var args []Type
	for _, a := range last.Children {
		args = append(args, inf.resolveTypeNode(a, site))
	}
	return args
}

func (inf *Inferrer) scopeBinding(n *parser.Node) (Binding, bool) {
	if inf.scope == nil {
		return Binding{}, false
	}
	return inf.scope.BindingOf(n)
}

// receiverClass maps a receiver type to the symbol whose members get looked
// up. It returns nil when the type has no members to offer (primitives, null,
// the error type).
func (inf *Inferrer) receiverClass(t Type) *symbols.ClassSymbol {
	switch tt := t.(type) {
	case *Named:
		return tt.Sym
	case *Array:
		return inf.arraySym(tt)
	case *TypeParam:
		if len(tt.Sym.Bounds) > 0 {
			if b, ok := inf.resolveRef(tt.Sym.Bounds[0], typeSite{class: tt.Sym.OwnerClass, method: tt.Sym.OwnerMethod}).(*Named); ok {
				return b.Sym
			}
		}
		return inf.ts.Object
	case *Wildcard:
		if up, ok := tt.Upper.(*Named); ok {
			return up.Sym
		}
		return inf.ts.Object
	case *Var:
		return inf.ts.Object
	}
	return nil
}

func (inf *Inferrer) arraySym(a *Array) *symbols.ClassSymbol {
	var comp *symbols.ClassSymbol
	switch e := a.Elem.(type) {
	case *Primitive:
		comp = inf.ts.Primitive(e.String())
	case *Named:
		comp = e.Sym
	case *Array:
		comp = inf.arraySym(e)
	case *TypeParam, *Wildcard, *Var:
		comp = inf.ts.Object
	default:
		comp = inf.ts.Object
	}
	return inf.ts.ArrayOf(comp)
}

// typeArgsMap pairs a generic receiver's declared parameters with the
// instantiation in use. Raw receivers contribute nothing; members then keep
// their declared type variables and subtyping falls back to erasure.
func typeArgsMap(recv Type) map[*symbols.TypeParamSymbol]Type {
	named, ok := recv.(*Named)
	if !ok || len(named.Args) == 0 || len(named.Args) != len(named.Sym.TypeParams) {
		return nil
	}
	m := make(map[*symbols.TypeParamSymbol]Type, len(named.Args))
	for i, tp := range named.Sym.TypeParams {
		m[tp] = named.Args[i]
	}
	return m
}

// subst replaces type parameters by the mapped types, sharing untouched
// nodes.
func subst(t Type, m map[*symbols.TypeParamSymbol]Type) Type {
	if len(m) == 0 || t == nil {
		return t
	}
	switch tt := t.(type) {
	case *TypeParam:
		if r, ok := m[tt.Sym]; ok {
			return r
		}
	case *Named:
		if len(tt.Args) == 0 {
			return t
		}
		changed := false
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = subst(a, m)
			if args[i] != a {
				changed = true
			}
		}
		if changed {
			return &Named{Sym: tt.Sym, Args: args}
		}
	case *Array:
		if e := subst(tt.Elem, m); e != tt.Elem {
			return &Array{Elem: e}
		}
	case *Wildcard:
		up := subst(tt.Upper, m)
		lo := subst(tt.Lower, m)
		if up != tt.Upper || lo != tt.Lower {
			return &Wildcard{Upper: up, Lower: lo}
		}
	}
	return t
}
