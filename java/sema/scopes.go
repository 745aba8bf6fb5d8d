package sema

import (
	"strings"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

// resolveScopes walks the unit with a scope stack, pushing a frame at every
// lexical boundary: type body, method and constructor body, block, for
// header, catch clause and lambda parameter list. The outermost frames are
// built from the imports, the unit's package and the implicit java.lang
// import. Along the way it binds every type reference and classifies the
// head of every ambiguous name chain, resolves the superclass and interface
// references of each declared class, and rewrites member type references to
// canonical names. Names that resolve nowhere fall back to unresolved
// placeholders, so a reference is never left unbound.
//
// The pass expects symbol resolution to have run; without attached symbols
// it reports the gap and degrades to placeholder bindings instead of
// crashing.
func resolveScopes(unit *parser.Node, info *Info, rep Reporter, res symbols.Resolver, store *symbols.UnresolvedStore, ts *symbols.TypeSystem) {
	if unit == nil {
		return
	}
	if store == nil {
		store = symbols.NewUnresolvedStore()
	}
	p := &scopePass{info: info, rep: rep, res: res, store: store, ts: ts}
	p.walk(unit, p.outerChain(unit))
}

type scopePass struct {
	info  *Info
	rep   Reporter
	res   symbols.Resolver
	store *symbols.UnresolvedStore
	ts    *symbols.TypeSystem
}

// resolve tries the source resolver first, then the type system's built-in
// and classpath classes. Nil means the name is not a known class.
func (p *scopePass) resolve(name string) *symbols.ClassSymbol {
	if p.res != nil {
		if cls := p.res.ResolveClassFromCanonicalName(name); cls != nil {
			return cls
		}
	}
	if p.ts != nil {
		return p.ts.ResolveClassFromCanonicalName(name)
	}
	return nil
}

// classNamed resolves a canonical name, falling back to a placeholder of the
// given arity. It never returns nil.
func (p *scopePass) classNamed(name string, arity int) *symbols.ClassSymbol {
	if cls := p.resolve(name); cls != nil {
		return cls
	}
	return p.store.MakeUnresolvedReference(name, arity)
}

func (p *scopePass) binding(n *parser.Node) (types.Binding, bool) {
	b, ok := p.info.Bindings[n]
	return b, ok
}

// outerChain builds the frames every position in the unit sits under:
// implicit java.lang import, then on-demand imports, then the unit's own
// package, then single-type and single-static imports.
func (p *scopePass) outerChain(unit *parser.Node) *Scope {
	implicit := newScope(ScopeImplicitImport, nil)
	implicit.ts = p.ts

	onDemand := newScope(ScopeOnDemandImport, implicit)
	onDemand.res = p.res

	pkgFrame := newScope(ScopePackage, onDemand)
	pkgFrame.res = p.res
	pkgFrame.pkg = p.info.PackageName

	singles := newScope(ScopeSingleImport, pkgFrame)

	for _, imp := range unit.ChildrenOfKind(parser.KindImportDecl) {
		p.importDecl(imp, singles, onDemand)
	}
	return singles
}

func (p *scopePass) importDecl(imp *parser.Node, singles, onDemand *Scope) {
	name := dottedName(imp.FirstChildOfKind(parser.KindQualifiedName))
	if name == "" {
		return
	}
	var static, star bool
	for _, c := range imp.ChildrenOfKind(parser.KindIdentifier) {
		switch c.TokenLiteral() {
		case "static":
			static = true
		case "*":
			star = true
		}
	}
	switch {
	case !static && !star:
		simple := name[strings.LastIndexByte(name, '.')+1:]
		singles.Types[simple] = types.Binding{Class: p.classNamed(name, 0)}
	case !static && star:
		onDemand.onDemand = append(onDemand.onDemand, name)
	case static && !star:
		dot := strings.LastIndexByte(name, '.')
		if dot < 0 {
			return
		}
		owner := p.classNamed(name[:dot], 0)
		member := name[dot+1:]
		if f := owner.LookupField(member); f != nil {
			singles.Vars[member] = types.Binding{Field: f}
		}
		if nested := owner.LookupNested(member); nested != nil {
			singles.Types[member] = types.Binding{Class: nested}
		}
	default:
		onDemand.staticOnDemand = append(onDemand.staticOnDemand, p.classNamed(name, 0))
	}
}

func (p *scopePass) walk(n *parser.Node, sc *Scope) {
	if n == nil {
		return
	}
	p.info.ScopeAt[n] = sc

	switch n.Kind {
	case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl, parser.KindAnnotationDecl:
		p.typeScope(n, sc)
	case parser.KindLocalClassDecl:
		if len(n.Children) > 0 {
			decl := n.Children[0]
			if cls := p.info.Classes[decl]; cls != nil && cls.SimpleName != "" {
				sc.Types[cls.SimpleName] = types.Binding{Class: cls}
			}
			p.walk(decl, sc)
		}
	case parser.KindMethodDecl:
		p.methodScope(n, sc)
	case parser.KindConstructorDecl:
		p.ctorScope(n, sc)
	case parser.KindEnumConstant:
		p.enumConstantScope(n, sc)
	case parser.KindFieldDecl:
		p.walkChildren(n, sc)
		p.canonicalizeField(n)
	case parser.KindBlock:
		p.walkChildren(n, newScope(ScopeBlock, sc))
	case parser.KindLocalVarDecl:
		p.localVarDecl(n, sc)
	case parser.KindForStmt:
		p.walkChildren(n, newScope(ScopeForHeader, sc))
	case parser.KindEnhancedForStmt:
		p.enhancedFor(n, sc)
	case parser.KindCatchClause:
		p.catchClause(n, sc)
	case parser.KindLambdaExpr:
		p.lambda(n, sc)
	case parser.KindSwitchStmt:
		p.switchStmt(n, sc)
	case parser.KindTryStmt:
		p.tryStmt(n, sc)
	case parser.KindTypePattern:
		p.typePattern(n, sc)
	case parser.KindNewExpr:
		p.newExpr(n, sc)
	case parser.KindClassType:
		p.classType(n, sc)
		p.walkChildren(n, sc)
	case parser.KindThis:
		p.thisQualifier(n, sc)
	case parser.KindAmbiguousName:
		if len(n.Children) > 0 {
			if b, ok := sc.ResolveName(n.Children[0].TokenLiteral()); ok {
				p.info.heads[n] = b
			}
		}
		p.walkChildren(n, sc)
	default:
		p.walkChildren(n, sc)
	}
}

func (p *scopePass) walkChildren(n *parser.Node, sc *Scope) {
	for _, c := range n.Children {
		p.walk(c, sc)
	}
}

// typeScope enters a type declaration: one frame carries the type
// parameters and the owning class, serving both the header clauses and the
// body. The superclass and interfaces are fixed after the header is bound
// and before the body is walked, because member declarations may name
// inherited types.
func (p *scopePass) typeScope(n *parser.Node, sc *Scope) {
	cls := p.info.Classes[n]
	if cls == nil {
		p.rep.Report(SeverityError, n.Span.Start,
			"type declaration has no symbol; symbol resolution must run first")
		p.walkChildren(n, sc)
		return
	}

	frame := newScope(ScopeTypeBody, sc)
	frame.Owner = cls
	for _, tp := range cls.TypeParams {
		frame.Types[tp.Name] = types.Binding{TypeParam: tp}
	}

	var body *parser.Node
	for _, c := range n.Children {
		if c.Kind == parser.KindClassBody {
			body = c
			continue
		}
		p.walk(c, frame)
	}
	p.canonicalizeTypeParams(n)
	p.hierarchy(n, cls)

	if body != nil {
		p.info.ScopeAt[body] = frame
		p.walkChildren(body, frame)
	}
}

func (p *scopePass) hierarchy(n *parser.Node, cls *symbols.ClassSymbol) {
	super := func(ct *parser.Node) *symbols.ClassSymbol {
		if b, ok := p.binding(ct); ok && b.Class != nil {
			return b.Class
		}
		return p.classNamed(dottedName(ct), 0)
	}

	ext := n.FirstChildOfKind(parser.KindExtendsClause)
	impl := n.FirstChildOfKind(parser.KindImplementsClause)

	switch cls.Kind {
	case symbols.ClassKindInterface:
		// An interface has no superclass; extends lists superinterfaces.
		if ext != nil {
			for _, ct := range ext.ChildrenOfKind(parser.KindClassType) {
				cls.Interfaces = append(cls.Interfaces, super(ct))
			}
		}
		return
	case symbols.ClassKindEnum:
		cls.Superclass = p.classNamed("java.lang.Enum", 1)
	case symbols.ClassKindAnnotation:
		cls.Superclass = p.objectClass()
		cls.Interfaces = append(cls.Interfaces, p.classNamed("java.lang.annotation.Annotation", 0))
		return
	default:
		if ext != nil {
			if ct := ext.FirstChildOfKind(parser.KindClassType); ct != nil {
				cls.Superclass = super(ct)
			}
		}
		if cls.Superclass == nil && cls.CanonicalName != "java.lang.Object" {
			cls.Superclass = p.objectClass()
		}
	}
	if impl != nil {
		for _, ct := range impl.ChildrenOfKind(parser.KindClassType) {
			cls.Interfaces = append(cls.Interfaces, super(ct))
		}
	}
}

func (p *scopePass) objectClass() *symbols.ClassSymbol {
	if p.ts != nil {
		return p.ts.Object
	}
	return p.classNamed("java.lang.Object", 0)
}

func (p *scopePass) canonicalizeTypeParams(decl *parser.Node) {
	list := decl.FirstChildOfKind(parser.KindTypeParameters)
	if list == nil {
		return
	}
	for _, tpn := range list.ChildrenOfKind(parser.KindTypeParameter) {
		sym := p.info.TypeParams[tpn]
		if sym == nil {
			continue
		}
		sym.Bounds = sym.Bounds[:0]
		for _, b := range tpn.ChildrenOfKind(parser.KindClassType) {
			sym.Bounds = append(sym.Bounds, typeRefOf(b, p.binding))
		}
	}
}

func (p *scopePass) canonicalizeField(n *parser.Node) {
	typeNode := declaredType(n)
	if typeNode == nil {
		return
	}
	base := typeRefOf(typeNode, p.binding)
	for _, decl := range n.ChildrenOfKind(parser.KindVarDeclarator) {
		f := p.info.Fields[decl]
		if f == nil || f.IsEnumConstant {
			continue
		}
		ref := base
		ref.Dims += len(decl.ChildrenOfKind(parser.KindArrayType))
		f.Type = ref
	}
}

func (p *scopePass) methodScope(n *parser.Node, sc *Scope) {
	m := p.info.Methods[n]
	frame := newScope(ScopeMethod, sc)
	frame.Method = m
	if m != nil {
		for _, tp := range m.TypeParams {
			frame.Types[tp.Name] = types.Binding{TypeParam: tp}
		}
	}
	paramNodes := p.frameParams(n, frame)
	p.walkChildren(n, frame)

	if m != nil {
		m.Return = typeRefOf(declaredType(n), p.binding)
		m.Thrown = thrownRefs(n, p.binding)
		p.canonicalizeParams(paramNodes)
		p.canonicalizeTypeParams(n)
	}
}

func (p *scopePass) ctorScope(n *parser.Node, sc *Scope) {
	c := p.info.Ctors[n]
	frame := newScope(ScopeMethod, sc)
	frame.Ctor = c
	if c != nil {
		for _, tp := range c.TypeParams {
			frame.Types[tp.Name] = types.Binding{TypeParam: tp}
		}
	}
	paramNodes := p.frameParams(n, frame)
	p.walkChildren(n, frame)

	if c != nil {
		c.Thrown = thrownRefs(n, p.binding)
		p.canonicalizeParams(paramNodes)
	}
}

// frameParams adds the declaration's parameter symbols to the frame and
// returns their nodes for the canonicalization that follows the walk.
func (p *scopePass) frameParams(decl *parser.Node, frame *Scope) []*parser.Node {
	list := decl.FirstChildOfKind(parser.KindParameters)
	if list == nil {
		return nil
	}
	nodes := list.ChildrenOfKind(parser.KindParameter)
	for _, pn := range nodes {
		if v := p.info.Vars[pn]; v != nil {
			frame.Vars[v.Name] = types.Binding{Var: v}
		}
	}
	return nodes
}

func (p *scopePass) canonicalizeParams(paramNodes []*parser.Node) {
	for _, pn := range paramNodes {
		if v := p.info.Vars[pn]; v != nil {
			v.Type = paramRef(pn, p.binding)
		}
	}
}

func (p *scopePass) enumConstantScope(n *parser.Node, sc *Scope) {
	for _, c := range n.Children {
		if c.Kind == parser.KindClassBody {
			continue
		}
		p.walk(c, sc)
	}
	body := n.FirstChildOfKind(parser.KindClassBody)
	if body == nil {
		return
	}
	cls := p.info.Classes[n]
	if cls == nil {
		p.walk(body, sc)
		return
	}
	frame := newScope(ScopeTypeBody, sc)
	frame.Owner = cls
	p.info.ScopeAt[body] = frame
	p.walkChildren(body, frame)
}

func (p *scopePass) localVarDecl(n *parser.Node, sc *Scope) {
	typeNode := declaredType(n)
	for _, c := range n.Children {
		if c.Kind != parser.KindVarDeclarator {
			p.walk(c, sc)
		}
	}
	base := typeRefOf(typeNode, p.binding)
	isVar := typeNode != nil && typeNode.Kind == parser.KindVarType

	for _, decl := range n.ChildrenOfKind(parser.KindVarDeclarator) {
		p.info.ScopeAt[decl] = sc
		ident := decl.FirstChildOfKind(parser.KindIdentifier)
		if ident == nil {
			p.walkChildren(decl, sc)
			continue
		}
		ref := base
		ref.Dims += len(decl.ChildrenOfKind(parser.KindArrayType))
		v := &symbols.VarSymbol{Name: ident.TokenLiteral(), Type: ref, Mods: modifiersOf(n)}
		p.info.Vars[decl] = v
		sc.Vars[v.Name] = types.Binding{Var: v}

		// The declared name is in scope inside its own initializer.
		p.walkChildren(decl, sc)
		if init := initializerOf(decl); init != nil && isVar {
			p.info.pendingVars = append(p.info.pendingVars, varPatch{sym: v, init: init})
		}
	}
}

// initializerOf returns the initializer expression of a declarator, nil
// when the declaration has none.
func initializerOf(decl *parser.Node) *parser.Node {
	if len(decl.Children) == 0 {
		return nil
	}
	last := decl.Children[len(decl.Children)-1]
	switch last.Kind {
	case parser.KindIdentifier, parser.KindArrayType:
		return nil
	}
	return last
}

func (p *scopePass) enhancedFor(n *parser.Node, sc *Scope) {
	if len(n.Children) < 3 {
		p.walkChildren(n, sc)
		return
	}
	param, iterable, body := n.Children[0], n.Children[1], n.Children[2]
	frame := newScope(ScopeForHeader, sc)

	// The iterated expression cannot see the loop variable.
	p.walk(iterable, frame)

	p.walk(param, frame)
	if ident := param.FirstChildOfKind(parser.KindIdentifier); ident != nil {
		v := &symbols.VarSymbol{Name: ident.TokenLiteral(), Type: paramRef(param, p.binding), Mods: modifiersOf(param)}
		p.info.Vars[param] = v
		frame.Vars[v.Name] = types.Binding{Var: v}
		if t := declaredType(param); t != nil && t.Kind == parser.KindVarType {
			p.info.pendingVars = append(p.info.pendingVars, varPatch{sym: v, init: iterable, element: true})
		}
	}
	p.walk(body, frame)
}

func (p *scopePass) catchClause(n *parser.Node, sc *Scope) {
	frame := newScope(ScopeCatch, sc)
	param := n.FirstChildOfKind(parser.KindParameter)
	if param != nil {
		p.walk(param, frame)
		if ident := param.FirstChildOfKind(parser.KindIdentifier); ident != nil {
			// A multi-catch parameter is typed by its first alternative.
			v := &symbols.VarSymbol{Name: ident.TokenLiteral(), Type: paramRef(param, p.binding), Mods: modifiersOf(param)}
			p.info.Vars[param] = v
			frame.Vars[v.Name] = types.Binding{Var: v}
		}
	}
	for _, c := range n.Children {
		if c != param {
			p.walk(c, frame)
		}
	}
}

func (p *scopePass) lambda(n *parser.Node, sc *Scope) {
	frame := newScope(ScopeLambda, sc)
	list := n.FirstChildOfKind(parser.KindParameters)
	if list != nil {
		p.info.ScopeAt[list] = frame
		for _, pn := range list.Children {
			p.walk(pn, frame)
			var v *symbols.VarSymbol
			switch pn.Kind {
			case parser.KindParameter:
				if ident := pn.FirstChildOfKind(parser.KindIdentifier); ident != nil {
					v = &symbols.VarSymbol{Name: ident.TokenLiteral(), Type: paramRef(pn, p.binding), IsParameter: true}
				}
			case parser.KindIdentifier:
				v = &symbols.VarSymbol{Name: pn.TokenLiteral(), IsParameter: true}
			}
			if v != nil {
				p.info.Vars[pn] = v
				frame.Vars[v.Name] = types.Binding{Var: v}
			}
		}
	}
	for _, c := range n.Children {
		if c != list {
			p.walk(c, frame)
		}
	}
}

// switchStmt gives the whole case block one frame: declarations in one case
// group are visible in the following groups.
func (p *scopePass) switchStmt(n *parser.Node, sc *Scope) {
	if len(n.Children) == 0 {
		return
	}
	p.walk(n.Children[0], sc)
	frame := newScope(ScopeBlock, sc)
	for _, c := range n.Children[1:] {
		p.walk(c, frame)
	}
}

// tryStmt scopes resources over the try block only; catch and finally
// clauses sit outside the resource frame.
func (p *scopePass) tryStmt(n *parser.Node, sc *Scope) {
	resources := n.FirstChildOfKind(parser.KindResourceList)
	if resources == nil {
		p.walkChildren(n, sc)
		return
	}
	frame := newScope(ScopeBlock, sc)
	p.walk(resources, frame)
	if block := n.FirstChildOfKind(parser.KindBlock); block != nil {
		p.walk(block, frame)
	}
	for _, c := range n.Children {
		if c != resources && c.Kind != parser.KindBlock {
			p.walk(c, sc)
		}
	}
}

// typePattern introduces the pattern variable into the surrounding frame.
// Java's flow-sensitive pattern scoping is approximated by plain lexical
// visibility from the pattern onward.
func (p *scopePass) typePattern(n *parser.Node, sc *Scope) {
	p.walkChildren(n, sc)
	ident := n.FirstChildOfKind(parser.KindIdentifier)
	typeNode := declaredType(n)
	if ident == nil || typeNode == nil {
		return
	}
	v := &symbols.VarSymbol{Name: ident.TokenLiteral(), Type: typeRefOf(typeNode, p.binding)}
	p.info.Vars[n] = v
	sc.Vars[v.Name] = types.Binding{Var: v}
}

// newExpr binds the created type, then fixes the hierarchy of an anonymous
// class before its body is walked.
func (p *scopePass) newExpr(n *parser.Node, sc *Scope) {
	var body *parser.Node
	for _, c := range n.Children {
		if c.Kind == parser.KindClassBody {
			body = c
			continue
		}
		p.walk(c, sc)
	}
	if body == nil {
		return
	}
	cls := p.info.Classes[n]
	if cls == nil {
		p.walk(body, sc)
		return
	}
	if ct := n.FirstChildOfKind(parser.KindClassType); ct != nil {
		if b, ok := p.binding(ct); ok && b.Class != nil {
			if b.Class.Kind == symbols.ClassKindInterface {
				cls.Interfaces = []*symbols.ClassSymbol{b.Class}
				cls.Superclass = p.objectClass()
			} else {
				cls.Superclass = b.Class
			}
		}
	}
	frame := newScope(ScopeTypeBody, sc)
	frame.Owner = cls
	p.info.ScopeAt[body] = frame
	p.walkChildren(body, frame)
}

// thisQualifier binds the type name qualifying a this expression. The
// qualifier is a type context, so the variable-beats-type rule does not
// apply to it.
func (p *scopePass) thisQualifier(n *parser.Node, sc *Scope) {
	if len(n.Children) != 1 {
		p.walkChildren(n, sc)
		return
	}
	qual := n.Children[0]
	p.info.ScopeAt[qual] = sc
	if qual.Kind != parser.KindAmbiguousName {
		p.walk(qual, sc)
		return
	}
	segs := qual.ChildrenOfKind(parser.KindIdentifier)
	for _, s := range segs {
		p.info.ScopeAt[s] = sc
	}
	p.info.Bindings[qual] = p.resolveTypeChain(segs, make([]int, len(segs)), sc)
}

// classType binds one class type reference: the head segment against the
// scope chain, the rest as nested types, with a longest-package-prefix walk
// against the resolver when the head is not in scope.
func (p *scopePass) classType(n *parser.Node, sc *Scope) {
	if _, done := p.binding(n); done {
		return
	}
	var segs []*parser.Node
	var arities []int
	for _, c := range n.Children {
		switch c.Kind {
		case parser.KindIdentifier:
			segs = append(segs, c)
			arities = append(arities, 0)
		case parser.KindTypeArguments:
			if len(arities) > 0 {
				arities[len(arities)-1] = len(c.Children)
			}
		}
	}
	if len(segs) == 0 {
		return
	}
	p.info.Bindings[n] = p.resolveTypeChain(segs, arities, sc)
}

// resolveTypeChain classifies a dotted type name. It never fails: the
// result is a type parameter, a resolved class, or a placeholder.
func (p *scopePass) resolveTypeChain(segs []*parser.Node, arities []int, sc *Scope) types.Binding {
	head := segs[0].TokenLiteral()
	if b, ok := sc.ResolveType(head); ok {
		if b.TypeParam != nil {
			if len(segs) == 1 {
				return b
			}
			// A type parameter cannot qualify a nested type.
			return types.Binding{Class: p.classNamed(joinSegs(segs), arities[len(segs)-1])}
		}
		return types.Binding{Class: p.nestedChain(b.Class, segs[1:], arities[1:])}
	}

	// Longest package prefix: the shortest dotted prefix naming a class
	// determines where the package ends.
	acc := head
	for i := 1; i < len(segs); i++ {
		acc += "." + segs[i].TokenLiteral()
		if cls := p.resolve(acc); cls != nil {
			return types.Binding{Class: p.nestedChain(cls, segs[i+1:], arities[i+1:])}
		}
	}
	return types.Binding{Class: p.store.MakeUnresolvedReference(joinSegs(segs), arities[len(segs)-1])}
}

func (p *scopePass) nestedChain(cls *symbols.ClassSymbol, segs []*parser.Node, arities []int) *symbols.ClassSymbol {
	for i, seg := range segs {
		name := seg.TokenLiteral()
		if nested := cls.LookupNested(name); nested != nil {
			cls = nested
			continue
		}
		cls = p.store.MakeUnresolvedReferenceIn(cls, name, arities[i])
	}
	return cls
}

func joinSegs(segs []*parser.Node) string {
	var parts []string
	for _, s := range segs {
		parts = append(parts, s.TokenLiteral())
	}
	return strings.Join(parts, ".")
}
