package types

import (
	"strings"

	"github.com/PaperTsar/javasema/java/symbols"
)

// Signature is the resolved view of one invocation candidate: a method or
// constructor with its parameter and result types materialized, possibly
// containing inference variables for generic candidates.
type Signature struct {
	Method  *symbols.MethodSymbol
	Ctor    *symbols.ConstructorSymbol
	Params  []Type
	Result  Type
	Varargs bool
}

func (sig Signature) Name() string {
	if sig.Method != nil {
		return sig.Method.Name
	}
	return "<init>"
}

func (sig Signature) String() string {
	var sb strings.Builder
	sb.WriteString(sig.Name())
	sb.WriteByte('(')
	for i, p := range sig.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Phase is the invocation applicability phase that admitted a candidate set.
type Phase int

const (
	PhaseStrict Phase = iota
	PhaseLoose
	PhaseVarargs
	PhaseNone
)

func (p Phase) String() string {
	switch p {
	case PhaseStrict:
		return "strict"
	case PhaseLoose:
		return "loose"
	case PhaseVarargs:
		return "varargs"
	}
	return "none"
}

func containsVar(t Type) bool {
	switch tt := t.(type) {
	case *Var:
		return true
	case *Named:
		for _, a := range tt.Args {
			if containsVar(a) {
				return true
			}
		}
	case *Array:
		return containsVar(tt.Elem)
	case *Wildcard:
		return tt.Upper != nil && containsVar(tt.Upper) || tt.Lower != nil && containsVar(tt.Lower)
	}
	return false
}

// paramAccepts checks one argument against one parameter for a phase. Types
// holding inference variables pass the filter; the solver verifies them
// afterwards. Lambda and method reference arguments accept any parameter and
// get checked against the winner's.
func paramAccepts(ts *symbols.TypeSystem, arg, param Type, loose bool) bool {
	if arg == polyArg {
		return true
	}
	if containsVar(param) || containsVar(arg) {
		return true
	}
	if loose {
		return LooselyAssignable(ts, arg, param)
	}
	return StrictlyAssignable(arg, param)
}

func applicableFixed(ts *symbols.TypeSystem, sig Signature, args []Type, loose bool) bool {
	if len(sig.Params) != len(args) {
		return false
	}
	for i, arg := range args {
		if !paramAccepts(ts, arg, sig.Params[i], loose) {
			return false
		}
	}
	return true
}

func applicableVarargs(ts *symbols.TypeSystem, sig Signature, args []Type) bool {
	if !sig.Varargs || len(sig.Params) == 0 {
		return false
	}
	fixed := len(sig.Params) - 1
	if len(args) < fixed {
		return false
	}
	last, ok := sig.Params[fixed].(*Array)
	if !ok {
		return false
	}
	for i := 0; i < fixed; i++ {
		if !paramAccepts(ts, args[i], sig.Params[i], true) {
			return false
		}
	}
	if len(args) == fixed+1 && paramAccepts(ts, args[fixed], last, true) {
		// A single trailing array argument passes through unchanged.
		return true
	}
	for i := fixed; i < len(args); i++ {
		if !paramAccepts(ts, args[i], last.Elem, true) {
			return false
		}
	}
	return true
}

// Applicable filters candidates the way invocation conversion does: strict
// invocation first (no boxing, no varargs), then loose invocation (boxing
// allowed), then varargs. The first phase that admits anyone wins.
func Applicable(ts *symbols.TypeSystem, cands []Signature, args []Type) ([]Signature, Phase) {
	var out []Signature
	for _, c := range cands {
		if applicableFixed(ts, c, args, false) {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out, PhaseStrict
	}
	for _, c := range cands {
		if applicableFixed(ts, c, args, true) {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out, PhaseLoose
	}
	for _, c := range cands {
		if applicableVarargs(ts, c, args) {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out, PhaseVarargs
	}
	return nil, PhaseNone
}

// moreSpecific reports whether a is at least as specific as b: every
// parameter of a converts to the corresponding parameter of b. With unequal
// arity (varargs phase) the longer fixed list is the more specific one.
func moreSpecific(a, b Signature) bool {
	if len(a.Params) != len(b.Params) {
		return len(a.Params) > len(b.Params)
	}
	for i := range a.Params {
		if !StrictlyAssignable(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}

func sameParams(a, b Signature) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !Identical(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}

// MostSpecific picks the most specific candidate. Candidates arrive nearest
// declaration first, so identical signatures collapse onto the overriding
// one. The second result reports a residual tie, which the caller surfaces
// as an ambiguity: the first-declared candidate is still returned so
// reference resolution has something to bind to.
func MostSpecific(cands []Signature) (Signature, bool) {
	if len(cands) == 0 {
		return Signature{}, false
	}

	unique := cands[:0:0]
	for _, c := range cands {
		dup := false
		for _, u := range unique {
			if sameParams(c, u) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, c)
		}
	}
	if len(unique) == 1 {
		return unique[0], false
	}

	var maximal []Signature
	for i, c := range unique {
		dominated := false
		for j, d := range unique {
			if i == j {
				continue
			}
			if moreSpecific(d, c) && !moreSpecific(c, d) {
				dominated = true
				break
			}
		}
		if !dominated {
			maximal = append(maximal, c)
		}
	}
	if len(maximal) == 1 {
		return maximal[0], false
	}
	if len(maximal) == 0 {
		return unique[0], true
	}
	return maximal[0], true
}
