package types

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
)

// --- node builders ---

func tk(kind parser.TokenKind, text string) *parser.Token {
	return &parser.Token{Kind: kind, Literal: text}
}

func lit(kind parser.TokenKind, text string) *parser.Node {
	return &parser.Node{Kind: parser.KindLiteral, Token: tk(kind, text)}
}

func intLit(text string) *parser.Node { return lit(parser.TokenIntLiteral, text) }
func strLit(text string) *parser.Node { return lit(parser.TokenStringLiteral, text) }

func identNode(name string) *parser.Node {
	return &parser.Node{Kind: parser.KindIdentifier, Token: tk(parser.TokenIdent, name)}
}

func binary(op parser.TokenKind, left, right *parser.Node) *parser.Node {
	return &parser.Node{Kind: parser.KindBinaryExpr, Token: tk(op, ""), Children: []*parser.Node{left, right}}
}

func unary(op parser.TokenKind, operand *parser.Node) *parser.Node {
	return &parser.Node{Kind: parser.KindUnaryExpr, Token: tk(op, ""), Children: []*parser.Node{operand}}
}

func fieldAccess(recv *parser.Node, name string) *parser.Node {
	return &parser.Node{Kind: parser.KindFieldAccess, Children: []*parser.Node{recv, identNode(name)}}
}

func arguments(args ...*parser.Node) *parser.Node {
	return &parser.Node{Kind: parser.KindArguments, Children: args}
}

func call(recv *parser.Node, name string, args ...*parser.Node) *parser.Node {
	return &parser.Node{Kind: parser.KindCallExpr, Children: []*parser.Node{recv, identNode(name), arguments(args...)}}
}

func callUnqualified(name string, args ...*parser.Node) *parser.Node {
	return &parser.Node{Kind: parser.KindCallExpr, Children: []*parser.Node{identNode(name), arguments(args...)}}
}

func primType(name string) *parser.Node {
	return &parser.Node{Kind: parser.KindPrimitiveType, Token: tk(parser.TokenInt, name)}
}

// --- scope stub ---

type stubScope struct {
	bindings map[*parser.Node]Binding
	class    *symbols.ClassSymbol
	method   *symbols.MethodSymbol
}

func (s *stubScope) BindingOf(n *parser.Node) (Binding, bool) {
	b, ok := s.bindings[n]
	return b, ok
}

func (s *stubScope) EnclosingClass(*parser.Node) *symbols.ClassSymbol   { return s.class }
func (s *stubScope) EnclosingMethod(*parser.Node) *symbols.MethodSymbol { return s.method }

// --- harness ---

type inferHarness struct {
	ts       *symbols.TypeSystem
	scope    *stubScope
	inf      *Inferrer
	warnings []string
}

func newHarness(extra ...func(*symbols.TypeSystem) *symbols.ClassSymbol) *inferHarness {
	ts := symbols.NewTypeSystem(nil)
	unit := symbols.NewMapResolver()
	for _, build := range extra {
		unit.Add(build(ts))
	}
	h := &inferHarness{
		ts:    ts,
		scope: &stubScope{bindings: make(map[*parser.Node]Binding)},
	}
	h.inf = NewInferrer(ts, symbols.Layer(unit, ts), symbols.NewUnresolvedStore(), h.scope,
		nil, func(n *parser.Node, format string, args ...any) {
			h.warnings = append(h.warnings, fmt.Sprintf(format, args...))
		})
	return h
}

func (h *inferHarness) core(t *testing.T, name string) *symbols.ClassSymbol {
	return coreClass(t, h.ts, name)
}

// varNode builds a variable access bound to a synthetic local of the given
// declared type.
func (h *inferHarness) varNode(name string, ref symbols.TypeRef) *parser.Node {
	n := &parser.Node{Kind: parser.KindVarAccess, Token: tk(parser.TokenIdent, name)}
	h.scope.bindings[n] = Binding{Var: &symbols.VarSymbol{Name: name, Type: ref}}
	return n
}

// typeNode builds a type access bound to sym.
func (h *inferHarness) typeNode(sym *symbols.ClassSymbol) *parser.Node {
	n := &parser.Node{Kind: parser.KindTypeAccess, Token: tk(parser.TokenIdent, sym.SimpleName)}
	h.scope.bindings[n] = Binding{Class: sym}
	return n
}

// classTypeNode builds a parsed class type bound to sym, optionally carrying
// empty type arguments (the diamond).
func (h *inferHarness) classTypeNode(sym *symbols.ClassSymbol, diamond bool) *parser.Node {
	n := &parser.Node{Kind: parser.KindClassType, Children: []*parser.Node{identNode(sym.SimpleName)}}
	if diamond {
		n.Children = append(n.Children, &parser.Node{Kind: parser.KindTypeArguments})
	}
	h.scope.bindings[n] = Binding{Class: sym}
	return n
}

func (h *inferHarness) hasWarning(substr string) bool {
	for _, w := range h.warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// --- synthetic generic classes ---

func makeBoxClass(ts *symbols.TypeSystem) *symbols.ClassSymbol {
	box := &symbols.ClassSymbol{
		BinaryName:    "test.Box",
		CanonicalName: "test.Box",
		SimpleName:    "Box",
		PackageName:   "test",
		Kind:          symbols.ClassKindClass,
		Mods:          symbols.ModPublic,
		TypeArity:     1,
		Superclass:    ts.Object,
	}
	tp := &symbols.TypeParamSymbol{Name: "T", OwnerClass: box}
	box.TypeParams = []*symbols.TypeParamSymbol{tp}
	box.Fields = []*symbols.FieldSymbol{
		{Name: "value", Mods: symbols.ModPublic, Owner: box, Type: symbols.TypeRef{Name: "T"}},
	}
	box.Methods = []*symbols.MethodSymbol{
		{Name: "get", Mods: symbols.ModPublic, Owner: box, Return: symbols.TypeRef{Name: "T"}},
	}
	box.Constructors = []*symbols.ConstructorSymbol{
		{Mods: symbols.ModPublic, Owner: box, Params: []*symbols.VarSymbol{
			{Name: "value", Type: symbols.TypeRef{Name: "T"}, IsParameter: true},
		}},
	}
	return box
}

func makeUtilClass(ts *symbols.TypeSystem) *symbols.ClassSymbol {
	util := &symbols.ClassSymbol{
		BinaryName:    "test.Util",
		CanonicalName: "test.Util",
		SimpleName:    "Util",
		PackageName:   "test",
		Kind:          symbols.ClassKindClass,
		Mods:          symbols.ModPublic | symbols.ModFinal,
		Superclass:    ts.Object,
	}
	first := &symbols.MethodSymbol{
		Name:   "first",
		Mods:   symbols.ModPublic | symbols.ModStatic,
		Owner:  util,
		Return: symbols.TypeRef{Name: "T"},
		Params: []*symbols.VarSymbol{
			{Name: "xs", Type: symbols.TypeRef{Name: "T", Dims: 1}, IsParameter: true},
		},
	}
	first.TypeParams = []*symbols.TypeParamSymbol{{Name: "T", OwnerMethod: first}}
	util.Methods = []*symbols.MethodSymbol{first}
	return util
}

// --- tests ---

func TestLiteralTypes(t *testing.T) {
	h := newHarness()

	assert.Same(t, Int, h.inf.TypeOf(intLit("42")))
	assert.Same(t, Long, h.inf.TypeOf(intLit("42L")))
	assert.Same(t, Double, h.inf.TypeOf(lit(parser.TokenFloatLiteral, "1.5")))
	assert.Same(t, Float, h.inf.TypeOf(lit(parser.TokenFloatLiteral, "1.5f")))
	assert.Same(t, Char, h.inf.TypeOf(lit(parser.TokenCharLiteral, "'c'")))
	assert.Same(t, Boolean, h.inf.TypeOf(lit(parser.TokenTrue, "true")))
	assert.Same(t, Null, h.inf.TypeOf(lit(parser.TokenNull, "null")))
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(strLit(`"s"`)).String())
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(lit(parser.TokenTextBlock, `"""s"""`)).String())
}

func TestBinaryOperators(t *testing.T) {
	h := newHarness()

	assert.Same(t, Int, h.inf.TypeOf(binary(parser.TokenPlus, intLit("1"), intLit("2"))))
	assert.Same(t, Long, h.inf.TypeOf(binary(parser.TokenStar, intLit("1"), intLit("2L"))))
	assert.Same(t, Double, h.inf.TypeOf(binary(parser.TokenPlus, intLit("1"), lit(parser.TokenFloatLiteral, "2.0"))))

	concat := binary(parser.TokenPlus, strLit(`"n="`), intLit("1"))
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(concat).String())

	assert.Same(t, Boolean, h.inf.TypeOf(binary(parser.TokenLT, intLit("1"), intLit("2"))))
	assert.Same(t, Boolean, h.inf.TypeOf(binary(parser.TokenEQ, strLit(`"a"`), strLit(`"b"`))))
	assert.Same(t, Boolean, h.inf.TypeOf(binary(parser.TokenAnd, lit(parser.TokenTrue, "true"), lit(parser.TokenFalse, "false"))))

	// Shifts promote the left operand only.
	assert.Same(t, Int, h.inf.TypeOf(binary(parser.TokenShl, intLit("1"), intLit("2L"))))

	// & is boolean logic or integer bitwise depending on operands.
	assert.Same(t, Boolean, h.inf.TypeOf(binary(parser.TokenBitAnd, lit(parser.TokenTrue, "true"), lit(parser.TokenTrue, "true"))))
	assert.Same(t, Int, h.inf.TypeOf(binary(parser.TokenBitAnd, intLit("6"), intLit("3"))))

	bad := binary(parser.TokenMinus, strLit(`"a"`), intLit("1"))
	assert.True(t, IsError(h.inf.TypeOf(bad)))
	assert.True(t, h.hasWarning("numeric operator"))
}

func TestUnaryOperators(t *testing.T) {
	h := newHarness()

	assert.Same(t, Int, h.inf.TypeOf(unary(parser.TokenMinus, intLit("1"))))
	assert.Same(t, Float, h.inf.TypeOf(unary(parser.TokenMinus, lit(parser.TokenFloatLiteral, "1.5f"))))
	assert.Same(t, Boolean, h.inf.TypeOf(unary(parser.TokenNot, lit(parser.TokenTrue, "true"))))
	assert.Same(t, Int, h.inf.TypeOf(unary(parser.TokenBitNot, lit(parser.TokenCharLiteral, "'c'"))))

	bad := unary(parser.TokenBitNot, lit(parser.TokenFloatLiteral, "1.5"))
	assert.True(t, IsError(h.inf.TypeOf(bad)))

	incr := unary(parser.TokenIncrement, h.varNode("i", symbols.TypeRef{Name: "int"}))
	assert.Same(t, Int, h.inf.TypeOf(incr))
}

func TestTernaryJoins(t *testing.T) {
	h := newHarness()
	cond := lit(parser.TokenTrue, "true")

	ternary := func(a, b *parser.Node) *parser.Node {
		return &parser.Node{Kind: parser.KindTernaryExpr, Children: []*parser.Node{cond, a, b}}
	}

	assert.Same(t, Int, h.inf.TypeOf(ternary(intLit("1"), intLit("2"))))
	assert.Same(t, Long, h.inf.TypeOf(ternary(intLit("1"), intLit("2L"))))
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(ternary(lit(parser.TokenNull, "null"), strLit(`"s"`))).String())

	joined := ternary(strLit(`"s"`), h.varNode("sb", symbols.TypeRef{Name: "java.lang.StringBuilder"}))
	assert.Equal(t, "java.lang.Object", h.inf.TypeOf(joined).String())
}

func TestCastType(t *testing.T) {
	h := newHarness()
	classType := h.classTypeNode(h.ts.String, false)
	cast := &parser.Node{Kind: parser.KindCastExpr, Children: []*parser.Node{classType, lit(parser.TokenNull, "null")}}
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(cast).String())

	primCast := &parser.Node{Kind: parser.KindCastExpr, Children: []*parser.Node{primType("int"), intLit("1L")}}
	assert.Same(t, Int, h.inf.TypeOf(primCast))
}

func TestInstanceofAndPattern(t *testing.T) {
	h := newHarness()
	classType := h.classTypeNode(h.ts.String, false)
	pattern := &parser.Node{Kind: parser.KindTypePattern, Children: []*parser.Node{classType, identNode("s")}}
	expr := &parser.Node{Kind: parser.KindInstanceofExpr, Children: []*parser.Node{
		h.varNode("o", symbols.TypeRef{Name: "java.lang.Object"}),
		pattern,
	}}

	assert.Same(t, Boolean, h.inf.TypeOf(expr))
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(pattern).String())
}

func TestArrayCreationAndAccess(t *testing.T) {
	h := newHarness()

	newArr := &parser.Node{Kind: parser.KindNewArrayExpr, Children: []*parser.Node{primType("int"), intLit("5")}}
	assert.Equal(t, "int[]", h.inf.TypeOf(newArr).String())

	twoDim := &parser.Node{Kind: parser.KindNewArrayExpr, Children: []*parser.Node{
		h.classTypeNode(h.ts.String, false),
		intLit("2"),
		{Kind: parser.KindArrayType},
	}}
	assert.Equal(t, "java.lang.String[][]", h.inf.TypeOf(twoDim).String())

	withInit := &parser.Node{Kind: parser.KindNewArrayExpr, Children: []*parser.Node{
		primType("int"),
		{Kind: parser.KindArrayInit, Children: []*parser.Node{intLit("1"), intLit("2")}},
	}}
	assert.Equal(t, "int[]", h.inf.TypeOf(withInit).String())

	arr := h.varNode("xs", symbols.TypeRef{Name: "int", Dims: 1})
	access := &parser.Node{Kind: parser.KindArrayAccess, Children: []*parser.Node{arr, intLit("0")}}
	assert.Same(t, Int, h.inf.TypeOf(access))

	notArr := &parser.Node{Kind: parser.KindArrayAccess, Children: []*parser.Node{strLit(`"s"`), intLit("0")}}
	assert.True(t, IsError(h.inf.TypeOf(notArr)))
	assert.True(t, h.hasWarning("indexing"))
}

func TestArrayLengthAndClone(t *testing.T) {
	h := newHarness()

	arr := h.varNode("xs", symbols.TypeRef{Name: "int", Dims: 1})
	length := fieldAccess(arr, "length")
	assert.Same(t, Int, h.inf.TypeOf(length))

	clone := call(h.varNode("ys", symbols.TypeRef{Name: "int", Dims: 1}), "clone")
	assert.Equal(t, "int[]", h.inf.TypeOf(clone).String())
}

func TestStaticFieldAccess(t *testing.T) {
	h := newHarness()

	pi := fieldAccess(h.typeNode(h.core(t, "java.lang.Math")), "PI")
	assert.Same(t, Double, h.inf.TypeOf(pi))
	require.NotNil(t, h.inf.FieldAt(pi))
	assert.Equal(t, "PI", h.inf.FieldAt(pi).Name)

	// java.io.PrintStream is not bootstrapped; the field type degrades to a
	// flagged placeholder instead of failing.
	out := fieldAccess(h.typeNode(h.core(t, "java.lang.System")), "out")
	named, ok := h.inf.TypeOf(out).(*Named)
	require.True(t, ok)
	assert.Equal(t, "java.io.PrintStream", named.Sym.CanonicalName)
	assert.True(t, named.Sym.Unresolved)
}

func TestGenericMemberSubstitution(t *testing.T) {
	h := newHarness(makeBoxClass)
	box := h.inf.res.ResolveClassFromCanonicalName("test.Box")
	require.NotNil(t, box)

	boxOfString := symbols.TypeRef{Name: "test.Box", Args: []symbols.TypeRef{{Name: "java.lang.String"}}}

	value := fieldAccess(h.varNode("b", boxOfString), "value")
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(value).String())

	get := call(h.varNode("b2", boxOfString), "get")
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(get).String())

	// Raw receivers keep the declared type variable.
	rawGet := call(h.varNode("raw", symbols.TypeRef{Name: "test.Box"}), "get")
	assert.Equal(t, "T", h.inf.TypeOf(rawGet).String())
}

func TestUnknownFieldWarnsOnResolvedReceiverOnly(t *testing.T) {
	h := newHarness()

	missing := fieldAccess(strLit(`"s"`), "missing")
	assert.True(t, IsError(h.inf.TypeOf(missing)))
	assert.True(t, h.hasWarning("no field missing"))

	h.warnings = nil
	ghost := fieldAccess(h.varNode("g", symbols.TypeRef{Name: "com.missing.Ghost"}), "x")
	assert.True(t, IsError(h.inf.TypeOf(ghost)))
	assert.Empty(t, h.warnings, "unresolved receivers degrade silently")
}

func TestOverloadSelection(t *testing.T) {
	h := newHarness()
	math := h.typeNode(h.core(t, "java.lang.Math"))

	maxInt := call(math, "max", intLit("1"), intLit("2"))
	assert.Same(t, Int, h.inf.TypeOf(maxInt))

	math2 := h.typeNode(h.core(t, "java.lang.Math"))
	maxLong := call(math2, "max", intLit("1"), intLit("2L"))
	assert.Same(t, Long, h.inf.TypeOf(maxLong))

	str := h.typeNode(h.ts.String)
	valueOf := call(str, "valueOf", intLit("5"))
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(valueOf).String())
	require.NotNil(t, h.inf.MethodAt(valueOf))
	assert.Equal(t, "int", h.inf.MethodAt(valueOf).Params[0].Type.Name)
	assert.Empty(t, h.warnings)
}

func TestInheritedOverrideCollapses(t *testing.T) {
	h := newHarness()

	eq := call(strLit(`"a"`), "equals", strLit(`"b"`))
	assert.Same(t, Boolean, h.inf.TypeOf(eq))
	require.NotNil(t, h.inf.MethodAt(eq))
	assert.Same(t, h.ts.String, h.inf.MethodAt(eq).Owner)
	assert.Empty(t, h.warnings)
}

func TestVarargsInvocation(t *testing.T) {
	h := newHarness()

	format := call(h.typeNode(h.ts.String), "format", strLit(`"%d:%s"`), intLit("1"), strLit(`"x"`))
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(format).String())
	assert.Empty(t, h.warnings)
}

func TestUnqualifiedCallSearchesEnclosing(t *testing.T) {
	h := newHarness()
	h.scope.class = h.ts.String

	length := callUnqualified("length")
	assert.Same(t, Int, h.inf.TypeOf(length))
}

func TestGenericMethodInference(t *testing.T) {
	h := newHarness(makeUtilClass)
	util := h.inf.res.ResolveClassFromCanonicalName("test.Util")
	require.NotNil(t, util)

	words := h.varNode("words", symbols.TypeRef{Name: "java.lang.String", Dims: 1})
	first := call(h.typeNode(util), "first", words)
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(first).String())
	assert.Empty(t, h.warnings)
}

func TestDiamondConstructorInference(t *testing.T) {
	h := newHarness(makeBoxClass)
	box := h.inf.res.ResolveClassFromCanonicalName("test.Box")
	require.NotNil(t, box)

	diamond := &parser.Node{Kind: parser.KindNewExpr, Children: []*parser.Node{
		h.classTypeNode(box, true),
		arguments(strLit(`"hi"`)),
	}}
	assert.Equal(t, "test.Box<java.lang.String>", h.inf.TypeOf(diamond).String())
	require.NotNil(t, h.inf.CtorAt(diamond))

	// Without the diamond the creation stays raw; the erased constructor
	// still applies.
	raw := &parser.Node{Kind: parser.KindNewExpr, Children: []*parser.Node{
		h.classTypeNode(box, false),
		arguments(strLit(`"hi"`)),
	}}
	assert.Equal(t, "test.Box", h.inf.TypeOf(raw).String())
	require.NotNil(t, h.inf.CtorAt(raw))
	assert.Empty(t, h.warnings)
}

func TestConstructorOverloadSelection(t *testing.T) {
	h := newHarness()
	sb := h.core(t, "java.lang.StringBuilder")

	creation := &parser.Node{Kind: parser.KindNewExpr, Children: []*parser.Node{
		h.classTypeNode(sb, false),
		arguments(intLit("16")),
	}}
	assert.Equal(t, "java.lang.StringBuilder", h.inf.TypeOf(creation).String())
	require.NotNil(t, h.inf.CtorAt(creation))
	assert.Equal(t, "int", h.inf.CtorAt(creation).Params[0].Type.Name)
}

func TestImplicitDefaultConstructor(t *testing.T) {
	h := newHarness(func(ts *symbols.TypeSystem) *symbols.ClassSymbol {
		b := makeBoxClass(ts)
		b.Constructors = nil
		return b
	})
	box := h.inf.res.ResolveClassFromCanonicalName("test.Box")
	require.NotNil(t, box)

	creation := &parser.Node{Kind: parser.KindNewExpr, Children: []*parser.Node{
		h.classTypeNode(box, false),
		arguments(),
	}}
	assert.Equal(t, "test.Box", h.inf.TypeOf(creation).String())
	require.NotNil(t, h.inf.CtorAt(creation))
	assert.Empty(t, h.inf.CtorAt(creation).Params)
}

func TestLambdaTargetTyping(t *testing.T) {
	h := newHarness()
	thread := h.core(t, "java.lang.Thread")

	lambda := &parser.Node{Kind: parser.KindLambdaExpr, Children: []*parser.Node{
		{Kind: parser.KindParameters},
		{Kind: parser.KindBlock},
	}}
	creation := &parser.Node{Kind: parser.KindNewExpr, Children: []*parser.Node{
		h.classTypeNode(thread, false),
		arguments(lambda),
	}}

	assert.Equal(t, "java.lang.Thread", h.inf.TypeOf(creation).String())
	assert.Equal(t, "java.lang.Runnable", h.inf.TypeOf(lambda).String())
	assert.Empty(t, h.warnings)
}

func TestLambdaWithoutTargetDegrades(t *testing.T) {
	h := newHarness()
	lambda := &parser.Node{Kind: parser.KindLambdaExpr, Children: []*parser.Node{
		{Kind: parser.KindParameters},
		intLit("1"),
	}}
	assert.True(t, IsError(h.inf.TypeOf(lambda)))
	assert.True(t, h.hasWarning("target type"))
}

func TestAmbiguousOverloadDegrades(t *testing.T) {
	var f1 *symbols.MethodSymbol
	h := newHarness(func(ts *symbols.TypeSystem) *symbols.ClassSymbol {
		amb := &symbols.ClassSymbol{
			BinaryName:    "test.Amb",
			CanonicalName: "test.Amb",
			SimpleName:    "Amb",
			PackageName:   "test",
			Kind:          symbols.ClassKindClass,
			Mods:          symbols.ModPublic,
			Superclass:    ts.Object,
		}
		f1 = &symbols.MethodSymbol{Name: "f", Mods: symbols.ModPublic, Owner: amb, Params: []*symbols.VarSymbol{
			{Name: "a", Type: symbols.TypeRef{Name: "int"}, IsParameter: true},
			{Name: "b", Type: symbols.TypeRef{Name: "long"}, IsParameter: true},
		}}
		f2 := &symbols.MethodSymbol{Name: "f", Mods: symbols.ModPublic, Owner: amb, Params: []*symbols.VarSymbol{
			{Name: "a", Type: symbols.TypeRef{Name: "long"}, IsParameter: true},
			{Name: "b", Type: symbols.TypeRef{Name: "int"}, IsParameter: true},
		}}
		amb.Methods = []*symbols.MethodSymbol{f1, f2}
		return amb
	})
	expr := call(h.varNode("a", symbols.TypeRef{Name: "test.Amb"}), "f", intLit("1"), intLit("2"))
	assert.True(t, IsError(h.inf.TypeOf(expr)))
	assert.True(t, h.hasWarning("ambiguous"))
	assert.Same(t, f1, h.inf.MethodAt(expr), "first declared candidate stays bound")
}

func TestNoApplicableOverloadWarns(t *testing.T) {
	h := newHarness()

	expr := call(strLit(`"s"`), "length", intLit("1"))
	assert.True(t, IsError(h.inf.TypeOf(expr)))
	assert.True(t, h.hasWarning("no applicable"))
}

func TestUnknownMethodWarnsOnResolvedReceiverOnly(t *testing.T) {
	h := newHarness()

	unknown := call(strLit(`"s"`), "frobnicate")
	assert.True(t, IsError(h.inf.TypeOf(unknown)))
	assert.True(t, h.hasWarning("no method frobnicate"))

	h.warnings = nil
	ghost := call(h.varNode("g", symbols.TypeRef{Name: "com.missing.Ghost"}), "x")
	assert.True(t, IsError(h.inf.TypeOf(ghost)))
	assert.Empty(t, h.warnings)
}

func TestThisAndSuper(t *testing.T) {
	h := newHarness()
	h.scope.class = h.ts.String

	this := &parser.Node{Kind: parser.KindThis, Token: tk(parser.TokenThis, "this")}
	assert.Equal(t, "java.lang.String", h.inf.TypeOf(this).String())

	super := &parser.Node{Kind: parser.KindSuper, Token: tk(parser.TokenSuper, "super")}
	assert.Equal(t, "java.lang.Object", h.inf.TypeOf(super).String())
}

func TestExplicitConstructorCall(t *testing.T) {
	h := newHarness()
	h.scope.class = h.core(t, "java.lang.IllegalArgumentException")

	superCall := &parser.Node{Kind: parser.KindCallExpr, Children: []*parser.Node{
		{Kind: parser.KindSuper, Token: tk(parser.TokenSuper, "super")},
		arguments(strLit(`"boom"`)),
	}}
	assert.Same(t, Void, h.inf.TypeOf(superCall))
	require.NotNil(t, h.inf.CtorAt(superCall))
	assert.Equal(t, "java.lang.RuntimeException", h.inf.CtorAt(superCall).Owner.CanonicalName)
}

func TestClassLiterals(t *testing.T) {
	h := newHarness()

	primLit := &parser.Node{Kind: parser.KindClassLiteral, Children: []*parser.Node{primType("int")}}
	assert.Equal(t, "java.lang.Class<java.lang.Integer>", h.inf.TypeOf(primLit).String())

	strNode := h.classTypeNode(h.ts.String, false)
	classLit := &parser.Node{Kind: parser.KindClassLiteral, Children: []*parser.Node{strNode}}
	assert.Equal(t, "java.lang.Class<java.lang.String>", h.inf.TypeOf(classLit).String())
}

func TestAssignmentChecks(t *testing.T) {
	h := newHarness()

	widen := &parser.Node{Kind: parser.KindAssignExpr, Token: tk(parser.TokenAssign, "="), Children: []*parser.Node{
		h.varNode("l", symbols.TypeRef{Name: "long"}),
		intLit("1"),
	}}
	assert.Same(t, Long, h.inf.TypeOf(widen))
	assert.Empty(t, h.warnings)

	narrow := &parser.Node{Kind: parser.KindAssignExpr, Token: tk(parser.TokenAssign, "="), Children: []*parser.Node{
		h.varNode("i", symbols.TypeRef{Name: "int"}),
		strLit(`"s"`),
	}}
	assert.Same(t, Int, h.inf.TypeOf(narrow))
	assert.True(t, h.hasWarning("cannot assign"))
}

func TestMemoizationIsStable(t *testing.T) {
	h := newHarness()

	missing := fieldAccess(strLit(`"s"`), "missing")
	first := h.inf.TypeOf(missing)
	second := h.inf.TypeOf(missing)
	assert.Equal(t, first, second)
	assert.Len(t, h.warnings, 1, "memoization keeps the warning single-shot")
}
