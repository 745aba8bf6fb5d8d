package sema

import (
	"strconv"
	"strings"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

// resolveSymbols walks the unit top-down and builds a symbol for every
// declaration node: classes with their members, nested, local and anonymous
// classes included. Symbols land in the info tables; named classes are also
// registered in the returned unit-local resolver. Malformed declarations are
// reported and still yield a best-effort symbol, so one broken node never
// stops the rest of the file.
func resolveSymbols(unit *parser.Node, info *Info, rep Reporter) *symbols.MapResolver {
	p := &symbolPass{
		info:      info,
		rep:       rep,
		unit:      symbols.NewMapResolver(),
		anonCount: make(map[*symbols.ClassSymbol]int),
	}
	if unit == nil {
		return p.unit
	}
	if pkg := unit.FirstChildOfKind(parser.KindPackageDecl); pkg != nil {
		p.pkg = dottedName(pkg.FirstChildOfKind(parser.KindQualifiedName))
	}
	info.PackageName = p.pkg
	info.SourcePath = unit.Span.Start.File

	for _, child := range unit.Children {
		switch child.Kind {
		case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl, parser.KindAnnotationDecl:
			p.typeDecl(child, nil, false)
		}
	}
	return p.unit
}

type symbolPass struct {
	info      *Info
	rep       Reporter
	unit      *symbols.MapResolver
	pkg       string
	anonCount map[*symbols.ClassSymbol]int
}

var classKindOfNode = map[parser.NodeKind]symbols.ClassKind{
	parser.KindClassDecl:      symbols.ClassKindClass,
	parser.KindInterfaceDecl:  symbols.ClassKindInterface,
	parser.KindEnumDecl:       symbols.ClassKindEnum,
	parser.KindAnnotationDecl: symbols.ClassKindAnnotation,
}

func (p *symbolPass) typeDecl(n *parser.Node, encl *symbols.ClassSymbol, local bool) *symbols.ClassSymbol {
	kind := classKindOfNode[n.Kind]

	var name string
	if ident := n.FirstChildOfKind(parser.KindIdentifier); ident != nil {
		name = ident.TokenLiteral()
	}
	if name == "" {
		p.rep.Report(SeverityError, n.Span.Start, "%s declaration has no name", kind)
	}

	mods := modifiersOf(n)
	if encl != nil {
		// Nested interfaces, enums and annotations are implicitly static;
		// members of interfaces are implicitly public.
		if kind != symbols.ClassKindClass {
			mods |= symbols.ModStatic
		}
		if encl.Kind == symbols.ClassKindInterface || encl.Kind == symbols.ClassKindAnnotation {
			mods |= symbols.ModPublic
		}
	}

	cls := &symbols.ClassSymbol{
		SimpleName:  name,
		PackageName: p.pkg,
		Kind:        kind,
		Mods:        mods,
		IsLocal:     local,
		Enclosing:   encl,
	}
	switch {
	case encl == nil:
		cls.BinaryName = qualify(p.pkg, name, ".")
		cls.CanonicalName = cls.BinaryName
	case local:
		cls.BinaryName = encl.BinaryName + "$" + strconv.Itoa(p.nextAnonIndex(encl)) + name
	default:
		cls.BinaryName = encl.BinaryName + "$" + name
		if encl.CanonicalName != "" && name != "" {
			cls.CanonicalName = encl.CanonicalName + "." + name
		}
		encl.NestedClasses = append(encl.NestedClasses, cls)
	}

	cls.TypeParams = p.typeParams(n, cls, nil)

	p.info.Classes[n] = cls
	p.info.UnitClasses = append(p.info.UnitClasses, cls)
	p.unit.Add(cls)

	if body := n.FirstChildOfKind(parser.KindClassBody); body != nil {
		p.members(cls, body)
	}
	return cls
}

// anonClass builds the symbol for an anonymous class introduced by keyNode,
// either a class-body creation expression or an enum constant with a body.
func (p *symbolPass) anonClass(keyNode *parser.Node, encl *symbols.ClassSymbol, body *parser.Node) *symbols.ClassSymbol {
	cls := &symbols.ClassSymbol{
		BinaryName:  encl.BinaryName + "$" + strconv.Itoa(p.nextAnonIndex(encl)),
		PackageName: p.pkg,
		Kind:        symbols.ClassKindClass,
		IsAnonymous: true,
		Enclosing:   encl,
	}
	p.info.Classes[keyNode] = cls
	p.info.UnitClasses = append(p.info.UnitClasses, cls)
	p.members(cls, body)
	return cls
}

func (p *symbolPass) nextAnonIndex(encl *symbols.ClassSymbol) int {
	p.anonCount[encl]++
	return p.anonCount[encl]
}

func (p *symbolPass) members(cls *symbols.ClassSymbol, body *parser.Node) {
	for _, n := range body.Children {
		switch n.Kind {
		case parser.KindFieldDecl:
			p.fieldDecl(cls, n)
		case parser.KindMethodDecl:
			p.methodDecl(cls, n)
		case parser.KindConstructorDecl:
			p.ctorDecl(cls, n)
		case parser.KindInitializer:
			p.scanBody(n.FirstChildOfKind(parser.KindBlock), cls)
		case parser.KindEnumConstant:
			p.enumConstant(cls, n)
		case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl, parser.KindAnnotationDecl:
			p.typeDecl(n, cls, false)
		}
	}
}

func (p *symbolPass) fieldDecl(cls *symbols.ClassSymbol, n *parser.Node) {
	mods := modifiersOf(n)
	if cls.Kind == symbols.ClassKindInterface || cls.Kind == symbols.ClassKindAnnotation {
		mods |= symbols.ModPublic | symbols.ModStatic | symbols.ModFinal
	}

	typeNode := declaredType(n)
	if typeNode == nil {
		p.rep.Report(SeverityError, n.Span.Start, "field declaration has no type")
	}
	base := typeRefOf(typeNode, nil)

	for _, decl := range n.ChildrenOfKind(parser.KindVarDeclarator) {
		ident := decl.FirstChildOfKind(parser.KindIdentifier)
		if ident == nil {
			p.rep.Report(SeverityError, decl.Span.Start, "field declarator has no name")
			continue
		}
		ref := base
		ref.Dims += len(decl.ChildrenOfKind(parser.KindArrayType))
		f := &symbols.FieldSymbol{
			Name:  ident.TokenLiteral(),
			Mods:  mods,
			Owner: cls,
			Type:  ref,
		}
		p.info.Fields[decl] = f
		cls.Fields = append(cls.Fields, f)
		p.scanBody(decl, cls)
	}
}

func (p *symbolPass) methodDecl(cls *symbols.ClassSymbol, n *parser.Node) {
	var name string
	if ident := n.FirstChildOfKind(parser.KindIdentifier); ident != nil {
		name = ident.TokenLiteral()
	}
	if name == "" {
		p.rep.Report(SeverityError, n.Span.Start, "method declaration has no name")
	}

	mods := modifiersOf(n)
	body := n.FirstChildOfKind(parser.KindBlock)
	if cls.Kind == symbols.ClassKindInterface || cls.Kind == symbols.ClassKindAnnotation {
		if !mods.IsPrivate() {
			mods |= symbols.ModPublic
		}
		if body == nil && !mods.IsStatic() && !hasModifier(n, parser.TokenDefault) {
			mods |= symbols.ModAbstract
		}
	}

	m := &symbols.MethodSymbol{
		Name:   name,
		Mods:   mods,
		Owner:  cls,
		Return: typeRefOf(declaredType(n), nil),
	}
	m.TypeParams = p.typeParams(n, nil, m)
	p.parameters(n, &m.Params, &m.IsVarargs)
	m.Thrown = thrownRefs(n, nil)

	p.info.Methods[n] = m
	cls.Methods = append(cls.Methods, m)
	p.scanBody(body, cls)
}

func (p *symbolPass) ctorDecl(cls *symbols.ClassSymbol, n *parser.Node) {
	mods := modifiersOf(n)
	if cls.Kind == symbols.ClassKindEnum {
		mods |= symbols.ModPrivate
	}

	c := &symbols.ConstructorSymbol{Mods: mods, Owner: cls}
	p.parameters(n, &c.Params, &c.IsVarargs)
	c.Thrown = thrownRefs(n, nil)
	if tps := p.typeParams(n, cls, nil); len(tps) > 0 {
		c.TypeParams = tps
	}

	p.info.Ctors[n] = c
	cls.Constructors = append(cls.Constructors, c)
	p.scanBody(n.FirstChildOfKind(parser.KindBlock), cls)
}

func (p *symbolPass) enumConstant(cls *symbols.ClassSymbol, n *parser.Node) {
	ident := n.FirstChildOfKind(parser.KindIdentifier)
	if ident == nil {
		p.rep.Report(SeverityError, n.Span.Start, "enum constant has no name")
		return
	}
	f := &symbols.FieldSymbol{
		Name:           ident.TokenLiteral(),
		Mods:           symbols.ModPublic | symbols.ModStatic | symbols.ModFinal,
		Owner:          cls,
		Type:           symbols.TypeRef{Name: cls.String()},
		IsEnumConstant: true,
	}
	p.info.Fields[n] = f
	cls.Fields = append(cls.Fields, f)

	if args := n.FirstChildOfKind(parser.KindArguments); args != nil {
		p.scanBody(args, cls)
	}
	if body := n.FirstChildOfKind(parser.KindClassBody); body != nil {
		anon := p.anonClass(n, cls, body)
		anon.Superclass = cls
	}
}

// parameters fills params and the varargs flag from the declaration's
// parameter list. The ellipsis token on the last parameter marks varargs;
// its symbol carries the array type.
func (p *symbolPass) parameters(decl *parser.Node, params *[]*symbols.VarSymbol, varargs *bool) {
	list := decl.FirstChildOfKind(parser.KindParameters)
	if list == nil {
		return
	}
	for _, pn := range list.ChildrenOfKind(parser.KindParameter) {
		ident := pn.FirstChildOfKind(parser.KindIdentifier)
		if ident == nil {
			p.rep.Report(SeverityError, pn.Span.Start, "parameter has no name")
			continue
		}
		if pn.Token != nil && pn.Token.Kind == parser.TokenEllipsis {
			*varargs = true
		}
		v := &symbols.VarSymbol{
			Name:        ident.TokenLiteral(),
			Type:        paramRef(pn, nil),
			Mods:        modifiersOf(pn),
			IsParameter: true,
		}
		p.info.Vars[pn] = v
		*params = append(*params, v)
	}
}

// paramRef spells a parameter's declared type, folding in trailing array
// dimensions and the implicit array of a varargs parameter.
func paramRef(pn *parser.Node, bind func(*parser.Node) (types.Binding, bool)) symbols.TypeRef {
	ref := typeRefOf(declaredType(pn), bind)
	ref.Dims += len(pn.ChildrenOfKind(parser.KindArrayType))
	if pn.Token != nil && pn.Token.Kind == parser.TokenEllipsis {
		ref.Dims++
	}
	return ref
}

func (p *symbolPass) typeParams(decl *parser.Node, ownerC *symbols.ClassSymbol, ownerM *symbols.MethodSymbol) []*symbols.TypeParamSymbol {
	list := decl.FirstChildOfKind(parser.KindTypeParameters)
	if list == nil {
		return nil
	}
	var out []*symbols.TypeParamSymbol
	for i, tp := range list.ChildrenOfKind(parser.KindTypeParameter) {
		ident := tp.FirstChildOfKind(parser.KindIdentifier)
		if ident == nil {
			continue
		}
		sym := &symbols.TypeParamSymbol{
			Name:        ident.TokenLiteral(),
			Index:       i,
			OwnerClass:  ownerC,
			OwnerMethod: ownerM,
		}
		for _, bound := range tp.ChildrenOfKind(parser.KindClassType) {
			sym.Bounds = append(sym.Bounds, typeRefOf(bound, nil))
		}
		p.info.TypeParams[tp] = sym
		out = append(out, sym)
	}
	return out
}

// scanBody looks through statement and expression trees for class
// declarations that live outside class bodies: local classes and anonymous
// classes in creation expressions.
func (p *symbolPass) scanBody(n *parser.Node, cls *symbols.ClassSymbol) {
	if n == nil {
		return
	}
	n.Walk(func(node *parser.Node) bool {
		switch node.Kind {
		case parser.KindLocalClassDecl:
			if len(node.Children) > 0 {
				p.typeDecl(node.Children[0], cls, true)
			}
			return false
		case parser.KindNewExpr:
			body := node.FirstChildOfKind(parser.KindClassBody)
			if body == nil {
				return true
			}
			p.anonClass(node, cls, body)
			if args := node.FirstChildOfKind(parser.KindArguments); args != nil {
				p.scanBody(args, cls)
			}
			return false
		}
		return true
	})
}

// --- shared syntax helpers ---

var modifierBits = map[parser.TokenKind]symbols.Modifiers{
	parser.TokenPublic:       symbols.ModPublic,
	parser.TokenPrivate:      symbols.ModPrivate,
	parser.TokenProtected:    symbols.ModProtected,
	parser.TokenStatic:       symbols.ModStatic,
	parser.TokenFinal:        symbols.ModFinal,
	parser.TokenAbstract:     symbols.ModAbstract,
	parser.TokenNative:       symbols.ModNative,
	parser.TokenSynchronized: symbols.ModSynchronized,
	parser.TokenTransient:    symbols.ModTransient,
	parser.TokenVolatile:     symbols.ModVolatile,
	parser.TokenStrictfp:     symbols.ModStrictfp,
}

func modifiersOf(decl *parser.Node) symbols.Modifiers {
	mods := decl.FirstChildOfKind(parser.KindModifiers)
	if mods == nil {
		return 0
	}
	var out symbols.Modifiers
	for _, c := range mods.Children {
		if c.Kind == parser.KindIdentifier && c.Token != nil {
			out |= modifierBits[c.Token.Kind]
		}
	}
	return out
}

func hasModifier(decl *parser.Node, kind parser.TokenKind) bool {
	mods := decl.FirstChildOfKind(parser.KindModifiers)
	if mods == nil {
		return false
	}
	for _, c := range mods.Children {
		if c.Kind == parser.KindIdentifier && c.Token != nil && c.Token.Kind == kind {
			return true
		}
	}
	return false
}

// declaredType finds the type node of a field, method, parameter or local
// variable declaration.
func declaredType(decl *parser.Node) *parser.Node {
	for _, c := range decl.Children {
		switch c.Kind {
		case parser.KindPrimitiveType, parser.KindClassType, parser.KindArrayType, parser.KindVarType:
			return c
		}
	}
	return nil
}

func thrownRefs(decl *parser.Node, bind func(*parser.Node) (types.Binding, bool)) []symbols.TypeRef {
	list := decl.FirstChildOfKind(parser.KindThrowsList)
	if list == nil {
		return nil
	}
	var out []symbols.TypeRef
	for _, t := range list.ChildrenOfKind(parser.KindClassType) {
		out = append(out, typeRefOf(t, bind))
	}
	return out
}

func dottedName(qn *parser.Node) string {
	if qn == nil {
		return ""
	}
	var parts []string
	for _, c := range qn.ChildrenOfKind(parser.KindIdentifier) {
		parts = append(parts, c.TokenLiteral())
	}
	return strings.Join(parts, ".")
}

func qualify(prefix, name, sep string) string {
	if prefix == "" {
		return name
	}
	return prefix + sep + name
}

// typeRefOf spells the TypeRef for a syntactic type node. With a bind
// function the name of a class type comes from its recorded binding, which
// turns simple names into canonical ones; without one the source spelling
// is kept.
func typeRefOf(n *parser.Node, bind func(*parser.Node) (types.Binding, bool)) symbols.TypeRef {
	if n == nil {
		return symbols.TypeRef{}
	}
	switch n.Kind {
	case parser.KindPrimitiveType:
		return symbols.TypeRef{Name: n.TokenLiteral()}
	case parser.KindVarType:
		return symbols.TypeRef{Name: "var"}
	case parser.KindArrayType:
		if len(n.Children) == 0 {
			return symbols.TypeRef{Dims: 1}
		}
		ref := typeRefOf(n.Children[0], bind)
		ref.Dims++
		return ref
	case parser.KindWildcard:
		return wildcardRef(n, bind)
	case parser.KindClassType:
		return classTypeRef(n, bind)
	}
	return symbols.TypeRef{}
}

func wildcardRef(n *parser.Node, bind func(*parser.Node) (types.Binding, bool)) symbols.TypeRef {
	ref := symbols.TypeRef{Name: "?"}
	if n.Token == nil {
		return ref
	}
	var bound *parser.Node
	for _, c := range n.Children {
		if c.Kind != parser.KindAnnotation {
			bound = c
			break
		}
	}
	if bound == nil {
		return ref
	}
	switch n.Token.Kind {
	case parser.TokenExtends:
		ref.Name = "? extends"
	case parser.TokenSuper:
		ref.Name = "? super"
	default:
		return ref
	}
	ref.Args = []symbols.TypeRef{typeRefOf(bound, bind)}
	return ref
}

func classTypeRef(n *parser.Node, bind func(*parser.Node) (types.Binding, bool)) symbols.TypeRef {
	var ref symbols.TypeRef
	if bind != nil {
		if b, ok := bind(n); ok {
			switch {
			case b.TypeParam != nil:
				ref.Name = b.TypeParam.Name
			case b.Class != nil:
				ref.Name = b.Class.String()
			}
		}
	}
	if ref.Name == "" {
		var parts []string
		for _, c := range n.Children {
			if c.Kind == parser.KindIdentifier {
				parts = append(parts, c.TokenLiteral())
			}
		}
		ref.Name = strings.Join(parts, ".")
	}
	// Type arguments written on the last segment belong to the named type.
	var args *parser.Node
	for _, c := range n.Children {
		if c.Kind == parser.KindTypeArguments {
			args = c
		}
	}
	if args != nil {
		for _, a := range args.Children {
			ref.Args = append(ref.Args, typeRefOf(a, bind))
		}
	}
	return ref
}
