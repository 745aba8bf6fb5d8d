package types

import (
	"fmt"
	"strings"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
)

// polyArg stands in for lambda and method reference arguments during
// applicability filtering. Their real type is the parameter they end up
// matched with.
var polyArg Type = &Special{"<poly>"}

// WarnFunc receives inference diagnostics. Warnings never stop the walk; the
// expression that triggered one gets the error type and typing continues.
type WarnFunc func(n *parser.Node, format string, args ...any)

// Inferrer types expressions on demand. Results are memoized per node, so
// asking for the type of an outer expression types its subexpressions once.
// An Inferrer belongs to one compilation unit and is not safe for concurrent
// use.
type Inferrer struct {
	ts    *symbols.TypeSystem
	res   symbols.Resolver
	store *symbols.UnresolvedStore
	scope Scope
	log   InferenceLogger
	warn  WarnFunc

	memo    map[*parser.Node]Type
	fields  map[*parser.Node]*symbols.FieldSymbol
	methods map[*parser.Node]*symbols.MethodSymbol
	ctors   map[*parser.Node]*symbols.ConstructorSymbol
}

func NewInferrer(ts *symbols.TypeSystem, res symbols.Resolver, store *symbols.UnresolvedStore, scope Scope, log InferenceLogger, warn WarnFunc) *Inferrer {
	if res == nil {
		res = ts
	}
	if store == nil {
		store = symbols.NewUnresolvedStore()
	}
	if log == nil {
		log = NopLogger()
	}
	return &Inferrer{
		ts:      ts,
		res:     res,
		store:   store,
		scope:   scope,
		log:     log,
		warn:    warn,
		memo:    make(map[*parser.Node]Type),
		fields:  make(map[*parser.Node]*symbols.FieldSymbol),
		methods: make(map[*parser.Node]*symbols.MethodSymbol),
		ctors:   make(map[*parser.Node]*symbols.ConstructorSymbol),
	}
}

// TypeOf returns the type of the expression node, computing and memoizing it
// on first use. Nodes that are not expressions get the error type.
func (inf *Inferrer) TypeOf(n *parser.Node) Type {
	if n == nil {
		return Error
	}
	if t, ok := inf.memo[n]; ok {
		return t
	}
	// Guards self-referential trees produced from badly broken sources.
	inf.memo[n] = Error
	t := inf.typeExpr(n)
	if t == nil {
		t = Error
	}
	inf.memo[n] = t
	return t
}

// FieldAt returns the field symbol an access node resolved to during typing.
func (inf *Inferrer) FieldAt(n *parser.Node) *symbols.FieldSymbol { return inf.fields[n] }

// MethodAt returns the method symbol a call node resolved to during typing.
func (inf *Inferrer) MethodAt(n *parser.Node) *symbols.MethodSymbol { return inf.methods[n] }

// CtorAt returns the constructor symbol a creation or explicit constructor
// call resolved to during typing.
func (inf *Inferrer) CtorAt(n *parser.Node) *symbols.ConstructorSymbol { return inf.ctors[n] }

func (inf *Inferrer) warnf(n *parser.Node, format string, args ...any) {
	if inf.warn != nil {
		inf.warn(n, format, args...)
	}
}

func (inf *Inferrer) siteOf(n *parser.Node) typeSite {
	if inf.scope == nil {
		return typeSite{}
	}
	return typeSite{
		class:  inf.scope.EnclosingClass(n),
		method: inf.scope.EnclosingMethod(n),
	}
}

func (inf *Inferrer) typeExpr(n *parser.Node) Type {
	switch n.Kind {
	case parser.KindLiteral:
		return inf.typeLiteral(n)

	case parser.KindParenExpr:
		if len(n.Children) == 0 {
			return Error
		}
		return inf.TypeOf(n.Children[0])

	case parser.KindThis:
		return inf.typeThis(n)

	case parser.KindSuper:
		return inf.typeSuper(n)

	case parser.KindVarAccess, parser.KindIdentifier:
		return inf.typeBoundName(n)

	case parser.KindTypeAccess:
		if b, ok := inf.scopeBinding(n); ok && b.Class != nil {
			return NamedOf(b.Class)
		}
		return Error

	case parser.KindFieldAccess:
		return inf.typeFieldAccess(n)

	case parser.KindArrayAccess:
		return inf.typeArrayAccess(n)

	case parser.KindUnaryExpr:
		return inf.typeUnary(n)

	case parser.KindPostfixExpr:
		if len(n.Children) == 0 {
			return Error
		}
		return inf.TypeOf(n.Children[0])

	case parser.KindBinaryExpr:
		return inf.typeBinary(n)

	case parser.KindInstanceofExpr:
		inf.typeInstanceofParts(n)
		return Boolean

	case parser.KindTypePattern:
		if len(n.Children) == 0 {
			return Error
		}
		return inf.resolveTypeNode(n.Children[0], inf.siteOf(n))

	case parser.KindCastExpr:
		return inf.typeCast(n)

	case parser.KindAssignExpr:
		return inf.typeAssign(n)

	case parser.KindTernaryExpr:
		return inf.typeTernary(n)

	case parser.KindCallExpr:
		return inf.typeCall(n)

	case parser.KindNewExpr:
		return inf.typeNew(n)

	case parser.KindNewArrayExpr:
		return inf.typeNewArray(n)

	case parser.KindArrayInit:
		return inf.typeArrayInit(n)

	case parser.KindClassLiteral:
		return inf.typeClassLiteral(n)

	case parser.KindLambdaExpr:
		inf.warnf(n, "lambda expression needs a target type")
		return Error

	case parser.KindMethodRef:
		inf.warnf(n, "method reference needs a target type")
		return Error

	case parser.KindAmbiguousName:
		// Disambiguation has not rewritten this chain; the scope pass may
		// still have bound it directly.
		return inf.typeBoundName(n)
	}
	return Error
}

func (inf *Inferrer) typeLiteral(n *parser.Node) Type {
	if n.Token == nil {
		return Error
	}
	lit := n.Token.Literal
	switch n.Token.Kind {
	case parser.TokenIntLiteral:
		if strings.HasSuffix(lit, "l") || strings.HasSuffix(lit, "L") {
			return Long
		}
		return Int
	case parser.TokenFloatLiteral:
		if strings.HasSuffix(lit, "f") || strings.HasSuffix(lit, "F") {
			return Float
		}
		return Double
	case parser.TokenCharLiteral:
		return Char
	case parser.TokenStringLiteral, parser.TokenTextBlock:
		return NamedOf(inf.ts.String)
	case parser.TokenTrue, parser.TokenFalse:
		return Boolean
	case parser.TokenNull:
		return Null
	}
	return Error
}

func (inf *Inferrer) typeThis(n *parser.Node) Type {
	// Qualified this carries the qualifier as its only child.
	if len(n.Children) == 1 {
		if b, ok := inf.scopeBinding(n.Children[0]); ok && b.Class != nil {
			return NamedOf(b.Class)
		}
		if named, ok := inf.TypeOf(n.Children[0]).(*Named); ok {
			return named
		}
		return Error
	}
	if cls := inf.siteOf(n).class; cls != nil {
		return NamedOf(cls)
	}
	return Error
}

func (inf *Inferrer) typeSuper(n *parser.Node) Type {
	cls := inf.siteOf(n).class
	if cls == nil {
		return Error
	}
	if cls.Superclass != nil {
		return NamedOf(cls.Superclass)
	}
	return NamedOf(inf.ts.Object)
}

// typeBoundName types a name through whatever the scope pass bound it to.
func (inf *Inferrer) typeBoundName(n *parser.Node) Type {
	b, ok := inf.scopeBinding(n)
	if !ok {
		return Error
	}
	switch {
	case b.Var != nil:
		return inf.resolveRef(b.Var.Type, inf.siteOf(n))
	case b.Field != nil:
		inf.fields[n] = b.Field
		return inf.fieldType(b.Field, nil)
	case b.Class != nil:
		return NamedOf(b.Class)
	case b.TypeParam != nil:
		return &TypeParam{Sym: b.TypeParam}
	}
	return Error
}

// fieldType resolves a field's declared type against the receiver
// instantiation. A nil receiver means implicit this; the owner's type
// parameters then stand for themselves.
func (inf *Inferrer) fieldType(f *symbols.FieldSymbol, recv Type) Type {
	t := inf.resolveRef(f.Type, typeSite{class: f.Owner})
	if recv != nil {
		t = subst(t, typeArgsMap(recv))
	}
	return t
}

func (inf *Inferrer) typeFieldAccess(n *parser.Node) Type {
	if len(n.Children) < 2 {
		return Error
	}
	if b, ok := inf.scopeBinding(n); ok {
		switch {
		case b.Field != nil:
			inf.fields[n] = b.Field
			return inf.fieldType(b.Field, nil)
		case b.Var != nil:
			return inf.resolveRef(b.Var.Type, inf.siteOf(n))
		case b.Class != nil:
			return NamedOf(b.Class)
		}
	}

	recv := inf.TypeOf(n.Children[0])
	name := n.Children[1].TokenLiteral()
	if IsError(recv) {
		return Error
	}
	if _, ok := recv.(*Array); ok && name == "length" {
		return Int
	}

	cls := inf.receiverClass(recv)
	if cls == nil {
		inf.warnf(n, "cannot access %s on value of type %s", name, recv)
		return Error
	}
	if f := cls.LookupField(name); f != nil {
		inf.fields[n] = f
		return inf.fieldType(f, recv)
	}

	// A type receiver may actually name a nested class; classpath symbols
	// resolve those through the canonical name.
	if inf.isTypeReceiver(n.Children[0]) {
		if nested := cls.LookupNested(name); nested != nil {
			return NamedOf(nested)
		}
		if cls.CanonicalName != "" {
			if sym := inf.res.ResolveClassFromCanonicalName(cls.CanonicalName + "." + name); sym != nil {
				return NamedOf(sym)
			}
		}
	}

	if !cls.Unresolved {
		inf.warnf(n, "no field %s in %s", name, cls)
	}
	return Error
}

// isTypeReceiver reports whether the receiver expression denotes a type
// rather than a value, which switches member lookup to nested classes.
func (inf *Inferrer) isTypeReceiver(recv *parser.Node) bool {
	if recv.Kind == parser.KindTypeAccess {
		return true
	}
	b, ok := inf.scopeBinding(recv)
	return ok && b.Class != nil && b.Var == nil && b.Field == nil
}

func (inf *Inferrer) typeArrayAccess(n *parser.Node) Type {
	if len(n.Children) < 2 {
		return Error
	}
	recv := inf.TypeOf(n.Children[0])
	inf.TypeOf(n.Children[1])
	switch t := recv.(type) {
	case *Array:
		return t.Elem
	}
	if !IsError(recv) {
		inf.warnf(n, "indexing a value of type %s", recv)
	}
	return Error
}

func (inf *Inferrer) typeUnary(n *parser.Node) Type {
	if n.Token == nil || len(n.Children) == 0 {
		return Error
	}
	operand := inf.TypeOf(n.Children[0])
	if IsError(operand) {
		return Error
	}
	switch n.Token.Kind {
	case parser.TokenNot:
		return Boolean
	case parser.TokenBitNot:
		t := PromoteUnary(inf.ts, operand)
		if p, ok := t.(*Primitive); ok && !p.IsIntegral() {
			inf.warnf(n, "operator ~ on %s", operand)
			return Error
		}
		return t
	case parser.TokenPlus, parser.TokenMinus:
		t := PromoteUnary(inf.ts, operand)
		if IsError(t) {
			inf.warnf(n, "numeric operator on %s", operand)
		}
		return t
	case parser.TokenIncrement, parser.TokenDecrement:
		return operand
	}
	return Error
}

func (inf *Inferrer) isString(t Type) bool {
	named, ok := t.(*Named)
	return ok && named.Sym == inf.ts.String
}

func (inf *Inferrer) typeBinary(n *parser.Node) Type {
	if n.Token == nil || len(n.Children) < 2 {
		return Error
	}
	left := inf.TypeOf(n.Children[0])
	right := inf.TypeOf(n.Children[1])
	switch n.Token.Kind {
	case parser.TokenPlus:
		if inf.isString(left) || inf.isString(right) {
			return NamedOf(inf.ts.String)
		}
		return inf.arith(n, left, right)
	case parser.TokenMinus, parser.TokenStar, parser.TokenSlash, parser.TokenPercent:
		return inf.arith(n, left, right)
	case parser.TokenShl, parser.TokenShr, parser.TokenUShr:
		if IsError(left) {
			return Error
		}
		t := PromoteUnary(inf.ts, left)
		if IsError(t) {
			inf.warnf(n, "shift on %s", left)
		}
		return t
	case parser.TokenLT, parser.TokenGT, parser.TokenLE, parser.TokenGE,
		parser.TokenEQ, parser.TokenNE, parser.TokenAnd, parser.TokenOr:
		return Boolean
	case parser.TokenBitAnd, parser.TokenBitOr, parser.TokenBitXor:
		if isBooleanish(inf.ts, left) && isBooleanish(inf.ts, right) {
			return Boolean
		}
		return inf.arith(n, left, right)
	}
	return Error
}

func isBooleanish(ts *symbols.TypeSystem, t Type) bool {
	if t == Boolean {
		return true
	}
	u := Unbox(ts, t)
	return u == Boolean
}

func (inf *Inferrer) arith(n *parser.Node, left, right Type) Type {
	if IsError(left) || IsError(right) {
		return Error
	}
	t := PromoteBinary(inf.ts, left, right)
	if IsError(t) {
		inf.warnf(n, "numeric operator on %s and %s", left, right)
	}
	return t
}

func (inf *Inferrer) typeInstanceofParts(n *parser.Node) {
	for _, c := range n.Children {
		switch c.Kind {
		case parser.KindTypePattern:
			inf.TypeOf(c)
		case parser.KindClassType, parser.KindArrayType, parser.KindPrimitiveType:
			// Type operand, nothing to infer.
		default:
			inf.TypeOf(c)
		}
	}
}

func (inf *Inferrer) typeCast(n *parser.Node) Type {
	if len(n.Children) < 2 {
		return Error
	}
	inf.TypeOf(n.Children[1])
	return inf.resolveTypeNode(n.Children[0], inf.siteOf(n))
}

func (inf *Inferrer) typeAssign(n *parser.Node) Type {
	if len(n.Children) < 2 {
		return Error
	}
	target := inf.TypeOf(n.Children[0])
	value := inf.TypeOf(n.Children[1])
	if n.Token != nil && n.Token.Kind == parser.TokenAssign {
		if !IsError(target) && !IsError(value) && !LooselyAssignable(inf.ts, value, target) {
			inf.warnf(n, "cannot assign %s to %s", value, target)
		}
	}
	return target
}

// typeTernary joins the two branches. The scope pass constrains both
// branches against the declared type when the conditional initializes a
// variable; standalone conditionals use the least upper bound.
func (inf *Inferrer) typeTernary(n *parser.Node) Type {
	if len(n.Children) < 3 {
		return Error
	}
	inf.TypeOf(n.Children[0])
	a := inf.TypeOf(n.Children[1])
	b := inf.TypeOf(n.Children[2])
	if IsError(a) {
		return b
	}
	if IsError(b) {
		return a
	}
	return Lub(inf.ts, a, b)
}

func (inf *Inferrer) typeClassLiteral(n *parser.Node) Type {
	classSym := inf.classNamed("java.lang.Class")
	if len(n.Children) == 0 {
		return NamedOf(classSym)
	}
	t := inf.resolveTypeNode(n.Children[0], inf.siteOf(n))
	if boxed := Box(inf.ts, t); boxed != nil {
		t = boxed
	}
	if t == Void {
		t = NamedOf(inf.classNamed("java.lang.Void"))
	}
	if IsError(t) {
		return NamedOf(classSym)
	}
	return NamedOf(classSym, t)
}

func (inf *Inferrer) typeArrayInit(n *parser.Node) Type {
	var elem Type
	for _, c := range n.Children {
		t := inf.TypeOf(c)
		if elem == nil {
			elem = t
		} else {
			elem = Lub(inf.ts, elem, t)
		}
	}
	if elem == nil || IsError(elem) {
		elem = NamedOf(inf.ts.Object)
	}
	return ArrayOf(elem)
}

func (inf *Inferrer) typeNewArray(n *parser.Node) Type {
	if len(n.Children) == 0 {
		return Error
	}
	site := inf.siteOf(n)
	elem := inf.resolveTypeNode(n.Children[0], site)
	dims := 0
	for _, c := range n.Children[1:] {
		if c.Kind == parser.KindArrayInit {
			inf.TypeOf(c)
			continue
		}
		if c.Kind != parser.KindArrayType {
			inf.TypeOf(c)
		}
		dims++
	}
	if dims == 0 {
		dims = 1
	}
	t := elem
	for i := 0; i < dims; i++ {
		t = ArrayOf(t)
	}
	return t
}

// argInfo keeps the argument node next to its type so poly arguments can be
// back-filled once a candidate is selected.
type argInfo struct {
	node *parser.Node
	typ  Type
}

func (inf *Inferrer) typeArguments(args *parser.Node) []argInfo {
	if args == nil {
		return nil
	}
	out := make([]argInfo, 0, len(args.Children))
	for _, c := range args.Children {
		switch c.Kind {
		case parser.KindLambdaExpr, parser.KindMethodRef:
			out = append(out, argInfo{node: c, typ: polyArg})
		default:
			out = append(out, argInfo{node: c, typ: inf.TypeOf(c)})
		}
	}
	return out
}

func argTypes(args []argInfo) []Type {
	out := make([]Type, len(args))
	for i, a := range args {
		out[i] = a.typ
	}
	return out
}

func describeCall(name string, args []argInfo) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.typ.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (inf *Inferrer) typeCall(n *parser.Node) Type {
	kids := n.Children
	if len(kids) == 2 && (kids[0].Kind == parser.KindThis || kids[0].Kind == parser.KindSuper) {
		return inf.typeExplicitCtorCall(n, kids[0], kids[1])
	}

	var recv Type
	var recvNode, nameNode, argsNode *parser.Node
	switch len(kids) {
	case 2:
		nameNode, argsNode = kids[0], kids[1]
	case 3:
		recvNode, nameNode, argsNode = kids[0], kids[1], kids[2]
	default:
		return Error
	}
	name := nameNode.TokenLiteral()
	args := inf.typeArguments(argsNode)

	var cls *symbols.ClassSymbol
	if recvNode != nil {
		recv = inf.TypeOf(recvNode)
		if IsError(recv) {
			return Error
		}
		cls = inf.receiverClass(recv)
		if cls == nil {
			inf.warnf(n, "cannot call %s on value of type %s", name, recv)
			return Error
		}
	} else {
		// Unqualified call: search the enclosing class, then the classes it
		// nests in.
		for c := inf.siteOf(n).class; c != nil; c = c.Enclosing {
			if len(c.LookupMethods(name)) > 0 {
				cls = c
				break
			}
		}
		if cls == nil {
			cls = inf.siteOf(n).class
		}
		if cls == nil {
			return Error
		}
		recv = NamedOf(cls)
	}

	cands := cls.LookupMethods(name)
	if len(cands) == 0 {
		if !cls.Unresolved {
			inf.warnf(n, "no method %s in %s", name, cls)
		}
		return Error
	}
	return inf.selectAndSolve(n, describeCall(cls.SimpleName+"."+name, args), recv, methodCandidates(cands), args)
}

func methodCandidates(cands []*symbols.MethodSymbol) []candidate {
	out := make([]candidate, 0, len(cands))
	for _, m := range cands {
		out = append(out, candidate{method: m})
	}
	return out
}

// candidate pairs a member symbol with the solver state its signature was
// materialized with.
type candidate struct {
	method *symbols.MethodSymbol
	ctor   *symbols.ConstructorSymbol
}

// materialize resolves a candidate's declared signature, instantiating class
// type parameters from the receiver and method type parameters as fresh
// inference variables.
func (inf *Inferrer) materialize(c candidate, recv Type, solver *Solver, classArgs map[*symbols.TypeParamSymbol]Type) Signature {
	var (
		params   []*symbols.VarSymbol
		tparams  []*symbols.TypeParamSymbol
		owner    *symbols.ClassSymbol
		varargs  bool
		retRef   symbols.TypeRef
		isMethod = c.method != nil
	)
	if isMethod {
		params, tparams, owner, varargs, retRef = c.method.Params, c.method.TypeParams, c.method.Owner, c.method.IsVarargs, c.method.Return
	} else {
		params, tparams, owner, varargs = c.ctor.Params, c.ctor.TypeParams, c.ctor.Owner, c.ctor.IsVarargs
	}

	site := typeSite{class: owner, method: c.method}
	m := make(map[*symbols.TypeParamSymbol]Type)
	if classArgs == nil {
		classArgs = typeArgsMap(recv)
	}
	for tp, t := range classArgs {
		m[tp] = t
	}
	for _, tp := range tparams {
		v := solver.Fresh(tp)
		m[tp] = v
	}

	sig := Signature{Method: c.method, Ctor: c.ctor, Varargs: varargs}
	for _, p := range params {
		sig.Params = append(sig.Params, subst(inf.resolveRef(p.Type, site), m))
	}
	if isMethod {
		sig.Result = subst(inf.resolveRef(retRef, site), m)
	} else if named, ok := recv.(*Named); ok {
		sig.Result = subst(NamedOf(named.Sym, namedArgsOrParams(named)...), m)
	} else {
		sig.Result = recv
	}
	return sig
}

// namedArgsOrParams returns the type arguments in use, falling back to the
// declared parameters so diamond creation can instantiate them.
func namedArgsOrParams(n *Named) []Type {
	if len(n.Args) > 0 || len(n.Sym.TypeParams) == 0 {
		return n.Args
	}
	out := make([]Type, len(n.Sym.TypeParams))
	for i, tp := range n.Sym.TypeParams {
		out[i] = &TypeParam{Sym: tp}
	}
	return out
}

// selectAndSolve runs applicability filtering, most-specific selection and
// constraint solving for one invocation. It always produces a type; failures
// degrade to the error type with a warning.
func (inf *Inferrer) selectAndSolve(n *parser.Node, desc string, recv Type, cands []candidate, args []argInfo) Type {
	inf.log.EnterInvocation(desc)
	solver := NewSolver(inf.ts, inf.log)

	sigs := make([]Signature, 0, len(cands))
	for _, c := range cands {
		sigs = append(sigs, inf.materialize(c, recv, solver, nil))
	}

	applicable, phase := Applicable(inf.ts, sigs, argTypes(args))
	if len(applicable) == 0 {
		inf.warnf(n, "no applicable candidate for %s", desc)
		return Error
	}
	winner, ambiguous := MostSpecific(applicable)
	inf.recordWinner(n, winner)
	if ambiguous {
		inf.log.Ambiguity(desc, len(applicable))
		inf.warnf(n, "ambiguous invocation %s", desc)
		return Error
	}

	inf.constrainArgs(solver, winner, args, phase)
	ok := solver.Solve()
	solver.Default(inf.boundResolver)
	result := solver.Apply(winner.Result)
	inf.backfillPolyArgs(solver, winner, args, phase)
	if !ok {
		inf.warnf(n, "cannot satisfy argument constraints for %s", desc)
		result = Error
	}
	inf.log.Solved(desc, result)
	return result
}

func (inf *Inferrer) recordWinner(n *parser.Node, sig Signature) {
	if sig.Method != nil {
		inf.methods[n] = sig.Method
	}
	if sig.Ctor != nil {
		inf.ctors[n] = sig.Ctor
	}
}

// paramForArg maps an argument position to the parameter it converts to,
// expanding the trailing array in the varargs phase. A single trailing
// argument that is itself array-shaped passes through unexpanded.
func paramForArg(sig Signature, phase Phase, i, nargs int, arg Type) Type {
	last := len(sig.Params) - 1
	if last < 0 {
		return Error
	}
	if phase == PhaseVarargs && sig.Varargs && i >= last {
		arr, ok := sig.Params[last].(*Array)
		if !ok {
			return sig.Params[last]
		}
		if i == last && nargs == len(sig.Params) && (arg == Null || StrictlyAssignable(arg, arr)) {
			return arr
		}
		return arr.Elem
	}
	if i <= last {
		return sig.Params[i]
	}
	return Error
}

func (inf *Inferrer) constrainArgs(solver *Solver, sig Signature, args []argInfo, phase Phase) {
	for i, a := range args {
		if a.typ == polyArg {
			continue
		}
		param := paramForArg(sig, phase, i, len(args), a.typ)
		if IsError(param) || IsError(a.typ) {
			continue
		}
		solver.Require(ConstraintAssignable, a.typ, param, fmt.Sprintf("argument %d", i+1))
	}
}

// backfillPolyArgs records the matched parameter type as the type of each
// lambda or method reference argument.
func (inf *Inferrer) backfillPolyArgs(solver *Solver, sig Signature, args []argInfo, phase Phase) {
	for i, a := range args {
		if a.typ != polyArg {
			continue
		}
		param := solver.Apply(paramForArg(sig, phase, i, len(args), a.typ))
		if named, ok := param.(*Named); ok && named.Sym.Kind == symbols.ClassKindInterface {
			inf.memo[a.node] = param
			continue
		}
		inf.warnf(a.node, "target type %s is not a functional interface", param)
		inf.memo[a.node] = Error
	}
}

func (inf *Inferrer) boundResolver(tp *symbols.TypeParamSymbol) Type {
	if len(tp.Bounds) == 0 {
		return nil
	}
	return inf.resolveRef(tp.Bounds[0], typeSite{class: tp.OwnerClass, method: tp.OwnerMethod})
}

func (inf *Inferrer) typeExplicitCtorCall(n, target, argsNode *parser.Node) Type {
	cls := inf.siteOf(n).class
	if cls == nil {
		return Error
	}
	if target.Kind == parser.KindSuper {
		cls = cls.Superclass
		if cls == nil {
			cls = inf.ts.Object
		}
	}
	args := inf.typeArguments(argsNode)
	cands := ctorCandidates(cls)
	inf.selectAndSolve(n, describeCall(cls.SimpleName, args), NamedOf(cls), cands, args)
	return Void
}

// ctorCandidates returns the declared constructors, synthesizing the
// implicit default constructor for source classes that declare none.
func ctorCandidates(cls *symbols.ClassSymbol) []candidate {
	if len(cls.Constructors) == 0 {
		return []candidate{{ctor: &symbols.ConstructorSymbol{Owner: cls, Mods: symbols.ModPublic}}}
	}
	out := make([]candidate, 0, len(cls.Constructors))
	for _, c := range cls.Constructors {
		out = append(out, candidate{ctor: c})
	}
	return out
}

func (inf *Inferrer) typeNew(n *parser.Node) Type {
	typeNode := n.FirstChildOfKind(parser.KindClassType)
	if typeNode == nil {
		return Error
	}
	site := inf.siteOf(n)
	t := inf.resolveClassTypeNode(typeNode, site)
	named, ok := t.(*Named)
	if !ok {
		return Error
	}

	args := inf.typeArguments(n.FirstChildOfKind(parser.KindArguments))
	diamond := isDiamond(typeNode)

	// Diamond creation instantiates the class parameters as inference
	// variables; explicit and raw creations take the written arguments.
	solver := NewSolver(inf.ts, inf.log)
	classArgs := typeArgsMap(named)
	resultArgs := named.Args
	if diamond && len(named.Args) == 0 && len(named.Sym.TypeParams) > 0 {
		classArgs = make(map[*symbols.TypeParamSymbol]Type, len(named.Sym.TypeParams))
		vars := make([]Type, len(named.Sym.TypeParams))
		for i, tp := range named.Sym.TypeParams {
			v := solver.Fresh(tp)
			classArgs[tp] = v
			vars[i] = v
		}
		resultArgs = vars
	}

	desc := describeCall("new "+named.Sym.SimpleName, args)
	inf.log.EnterInvocation(desc)
	sigs := make([]Signature, 0, len(named.Sym.Constructors)+1)
	for _, c := range ctorCandidates(named.Sym) {
		sigs = append(sigs, inf.materialize(c, named, solver, classArgs))
	}

	applicable, phase := Applicable(inf.ts, sigs, argTypes(args))
	if len(applicable) == 0 {
		if !named.Sym.Unresolved {
			inf.warnf(n, "no applicable candidate for %s", desc)
		}
		if diamond {
			return NamedOf(named.Sym)
		}
		return NamedOf(named.Sym, named.Args...)
	}
	winner, ambiguous := MostSpecific(applicable)
	inf.recordWinner(n, winner)
	if ambiguous {
		inf.log.Ambiguity(desc, len(applicable))
		inf.warnf(n, "ambiguous invocation %s", desc)
		return Error
	}

	inf.constrainArgs(solver, winner, args, phase)
	ok2 := solver.Solve()
	solver.Default(inf.boundResolver)
	inf.backfillPolyArgs(solver, winner, args, phase)
	result := solver.Apply(NamedOf(named.Sym, resultArgs...))
	if !ok2 {
		inf.warnf(n, "cannot satisfy argument constraints for %s", desc)
	}
	inf.log.Solved(desc, result)
	return result
}

// isDiamond reports whether the creation was written with <>, which turns
// the class type parameters into inference variables.
func isDiamond(typeNode *parser.Node) bool {
	var last *parser.Node
	for _, c := range typeNode.Children {
		if c.Kind == parser.KindTypeArguments {
			last = c
		}
	}
	return last != nil && len(last.Children) == 0
}
