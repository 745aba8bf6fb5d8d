package sema

import (
	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/types"
)

// resolveUsage types every expression in the unit and records which
// declaration each variable access, field access, call and instantiation
// landed on. Typing runs top-down so poly expressions such as lambda
// arguments see their call's target type before they are visited.
//
// Lambdas, method references and array initializers are not typed on their
// own; they only have a type in a target position and get it while the
// enclosing expression is typed.
func resolveUsage(unit *parser.Node, info *Info, inf *types.Inferrer) {
	if unit == nil || inf == nil {
		return
	}
	unit.Walk(func(n *parser.Node) bool {
		switch n.Kind {
		case parser.KindLiteral, parser.KindParenExpr, parser.KindThis, parser.KindSuper,
			parser.KindArrayAccess, parser.KindUnaryExpr, parser.KindPostfixExpr,
			parser.KindBinaryExpr, parser.KindInstanceofExpr, parser.KindCastExpr,
			parser.KindAssignExpr, parser.KindTernaryExpr, parser.KindNewArrayExpr,
			parser.KindClassLiteral:
			inf.TypeOf(n)

		case parser.KindVarAccess:
			inf.TypeOf(n)
			if b, ok := info.Bindings[n]; ok && b.Var != nil {
				info.VarUses[b.Var] = append(info.VarUses[b.Var], n)
			}
			if f := inf.FieldAt(n); f != nil {
				info.FieldUses[f] = append(info.FieldUses[f], n)
			}

		case parser.KindFieldAccess:
			inf.TypeOf(n)
			if f := inf.FieldAt(n); f != nil {
				info.FieldUses[f] = append(info.FieldUses[f], n)
			}

		case parser.KindCallExpr:
			inf.TypeOf(n)
			if m := inf.MethodAt(n); m != nil {
				info.MethodUses[m] = append(info.MethodUses[m], n)
			}
			if c := inf.CtorAt(n); c != nil {
				info.CtorUses[c] = append(info.CtorUses[c], n)
			}

		case parser.KindNewExpr:
			inf.TypeOf(n)
			if c := inf.CtorAt(n); c != nil {
				info.CtorUses[c] = append(info.CtorUses[c], n)
			}
		}
		return true
	})
}
