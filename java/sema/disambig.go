package sema

import (
	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

// disambiguate rewrites every ambiguous dotted name into its resolved shape:
// a variable or field access chain, a type access with an optional package
// prefix, or both (a type access followed by field accesses). The rewrite is
// in place: the chain node itself becomes the outermost access node, so
// parents keep their child pointers. Chains whose head was classified by the
// scope pass follow that classification; headless chains fall back to the
// longest package prefix that leads to a known class, and chains that
// resolve nowhere are bound whole to an unresolved placeholder.
func disambiguate(unit *parser.Node, info *Info, res symbols.Resolver, store *symbols.UnresolvedStore) {
	if unit == nil {
		return
	}
	if store == nil {
		store = symbols.NewUnresolvedStore()
	}
	d := &disambiguator{info: info, res: res, store: store}
	unit.Walk(func(n *parser.Node) bool {
		if n.Kind != parser.KindAmbiguousName {
			return true
		}
		// Chains the scope pass bound directly, such as the qualifier of
		// a qualified this, stay as they are.
		if _, bound := info.Bindings[n]; !bound {
			d.rewrite(n)
		}
		return false
	})
}

type disambiguator struct {
	info  *Info
	res   symbols.Resolver
	store *symbols.UnresolvedStore
}

func (d *disambiguator) resolve(name string) *symbols.ClassSymbol {
	if d.res == nil {
		return nil
	}
	return d.res.ResolveClassFromCanonicalName(name)
}

func (d *disambiguator) rewrite(n *parser.Node) {
	segs := n.ChildrenOfKind(parser.KindIdentifier)
	if len(segs) == 0 {
		return
	}
	head, ok := d.info.heads[n]
	switch {
	case ok && (head.Var != nil || head.Field != nil):
		d.varChain(n, segs, head)
	case ok && (head.Class != nil || head.TypeParam != nil):
		d.typeChain(n, segs, 0, head)
	default:
		d.packageChain(n, segs)
	}
}

// varChain rewrites a chain whose head is a variable or field: the head
// becomes a variable access, every further segment a field access on it.
func (d *disambiguator) varChain(n *parser.Node, segs []*parser.Node, head types.Binding) {
	cur := d.newNode(parser.KindVarAccess, n, segs[:1])
	d.info.Bindings[cur] = head
	for _, seg := range segs[1:] {
		cur = d.fieldAccess(n, cur, seg)
	}
	d.become(n, cur)
}

// typeChain rewrites segs[idx:] where the segment at idx is a known type.
// Segments before idx are the package prefix. Member types extend the type
// access before any segment is read as a field; a member type shadows a
// field of the same name.
func (d *disambiguator) typeChain(n *parser.Node, segs []*parser.Node, idx int, head types.Binding) {
	var children []*parser.Node
	if idx > 0 {
		children = append(children, d.newNode(parser.KindPackageName, n, segs[:idx]))
	}
	children = append(children, segs[idx])
	i := idx + 1
	for head.Class != nil && i < len(segs) {
		nested := head.Class.LookupNested(segs[i].TokenLiteral())
		if nested == nil {
			break
		}
		head = types.Binding{Class: nested}
		children = append(children, segs[i])
		i++
	}

	ta := &parser.Node{
		Kind:     parser.KindTypeAccess,
		Span:     parser.Span{Start: segs[0].Span.Start, End: segs[i-1].Span.End},
		Children: children,
	}
	d.adopt(ta, n)
	d.info.Bindings[ta] = head

	cur := ta
	for ; i < len(segs); i++ {
		cur = d.fieldAccess(n, cur, segs[i])
	}
	d.become(n, cur)
}

// packageChain classifies a headless chain. The shortest dotted prefix
// naming a known class splits the chain into package, type and members; when
// no prefix resolves the whole chain is bound to a placeholder type.
func (d *disambiguator) packageChain(n *parser.Node, segs []*parser.Node) {
	acc := segs[0].TokenLiteral()
	for i := 1; i < len(segs); i++ {
		acc += "." + segs[i].TokenLiteral()
		if cls := d.resolve(acc); cls != nil {
			d.typeChain(n, segs, i, types.Binding{Class: cls})
			return
		}
	}

	name := joinSegs(segs)
	cls := d.resolve(name)
	if cls == nil {
		cls = d.store.MakeUnresolvedReference(name, 0)
	}
	ta := d.newNode(parser.KindTypeAccess, n, segs)
	d.info.Bindings[ta] = types.Binding{Class: cls}
	d.become(n, ta)
}

// newNode wraps identifier segments in a fresh access node carrying the
// origin's scope.
func (d *disambiguator) newNode(kind parser.NodeKind, origin *parser.Node, segs []*parser.Node) *parser.Node {
	nn := &parser.Node{
		Kind:     kind,
		Span:     parser.Span{Start: segs[0].Span.Start, End: segs[len(segs)-1].Span.End},
		Children: append([]*parser.Node(nil), segs...),
	}
	d.adopt(nn, origin)
	return nn
}

func (d *disambiguator) fieldAccess(origin, recv, seg *parser.Node) *parser.Node {
	nn := &parser.Node{
		Kind:     parser.KindFieldAccess,
		Span:     parser.Span{Start: recv.Span.Start, End: seg.Span.End},
		Children: []*parser.Node{recv, seg},
	}
	d.adopt(nn, origin)
	return nn
}

func (d *disambiguator) adopt(nn, origin *parser.Node) {
	if sc, ok := d.info.ScopeAt[origin]; ok {
		d.info.ScopeAt[nn] = sc
	}
}

// become turns the original chain node into the outermost rewritten node.
// The span stays: it already covers the whole chain.
func (d *disambiguator) become(n, top *parser.Node) {
	n.Kind = top.Kind
	n.Token = top.Token
	n.Children = top.Children
	if b, ok := d.info.Bindings[top]; ok {
		d.info.Bindings[n] = b
		delete(d.info.Bindings, top)
	}
}

// patchVarTypes fills in the declared type of each var declaration from its
// initializer, or from the iterated expression's element type for var loop
// variables. It runs after disambiguation so initializer chains are in
// their resolved shape.
func patchVarTypes(info *Info, inf *types.Inferrer) {
	for _, pv := range info.pendingVars {
		t := inf.TypeOf(pv.init)
		if pv.element {
			t = elementType(t)
		}
		pv.sym.Type = typeRefOfType(t)
	}
	info.pendingVars = nil
}

// elementType extracts what an enhanced for loop iterates over: the array
// component, or the single type argument of an iterable.
func elementType(t types.Type) types.Type {
	switch it := t.(type) {
	case *types.Array:
		return it.Elem
	case *types.Named:
		if len(it.Args) == 1 {
			return it.Args[0]
		}
	}
	return nil
}

// typeRefOfType converts an inferred type back into a symbol-model type
// reference. Unusable types degrade to java.lang.Object, keeping the
// variable usable downstream.
func typeRefOfType(t types.Type) symbols.TypeRef {
	switch it := t.(type) {
	case *types.Primitive:
		return symbols.TypeRef{Name: it.String()}
	case *types.Named:
		ref := symbols.TypeRef{Name: it.Sym.String()}
		for _, a := range it.Args {
			ref.Args = append(ref.Args, typeRefOfType(a))
		}
		return ref
	case *types.Array:
		ref := typeRefOfType(it.Elem)
		ref.Dims++
		return ref
	case *types.TypeParam:
		return symbols.TypeRef{Name: it.Sym.Name}
	case *types.Wildcard:
		// A variable cannot be wildcard-typed; use the bound.
		if it.Upper != nil {
			return typeRefOfType(it.Upper)
		}
	}
	return symbols.TypeRef{Name: "java.lang.Object"}
}
