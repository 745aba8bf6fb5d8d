package sema

import (
	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

// Symbol is any declared symbol: class, method, constructor, field,
// variable or type parameter.
type Symbol interface {
	String() string
}

// Result is the analyzed view of one compilation unit. The tree it holds is
// the rewritten one: ambiguous name chains have been replaced by their
// resolved access shapes.
type Result struct {
	Unit     *parser.Node
	Info     *Info
	Types    *types.Inferrer
	Resolver symbols.Resolver
	Reporter Reporter
	Timings  []StageTiming
}

// SymbolOf returns the symbol declared by a declaration node: the class of
// a type declaration, the method of a method declaration, and so on for
// constructors, fields, variables and type parameters.
func (r *Result) SymbolOf(n *parser.Node) (Symbol, bool) {
	if n == nil {
		return nil, false
	}
	if s, ok := r.Info.Classes[n]; ok {
		return s, true
	}
	if s, ok := r.Info.Methods[n]; ok {
		return s, true
	}
	if s, ok := r.Info.Ctors[n]; ok {
		return s, true
	}
	if s, ok := r.Info.Fields[n]; ok {
		return s, true
	}
	if s, ok := r.Info.Vars[n]; ok {
		return s, true
	}
	if s, ok := r.Info.TypeParams[n]; ok {
		return s, true
	}
	return nil, false
}

// TypeOf returns the inferred type of an expression node.
func (r *Result) TypeOf(expr *parser.Node) types.Type {
	return r.Types.TypeOf(expr)
}

// Ref is what a name reference resolved to. Unresolved reports that the
// reference leads into a placeholder: the named class itself, or the owner
// of the named field, is not known.
type Ref struct {
	Binding    types.Binding
	Unresolved bool
}

// RefOf returns the resolution of a reference node bound by the scope or
// disambiguation pass.
func (r *Result) RefOf(n *parser.Node) (Ref, bool) {
	b, ok := r.Info.Bindings[n]
	if !ok {
		return Ref{}, false
	}
	ref := Ref{Binding: b}
	switch {
	case b.Class != nil:
		ref.Unresolved = b.Class.Unresolved
	case b.Field != nil:
		ref.Unresolved = b.Field.Owner != nil && b.Field.Owner.Unresolved
	}
	return ref, true
}

// Diagnostics returns the collected findings when the processor's reporter
// is a Collector, nil otherwise.
func (r *Result) Diagnostics() []Diagnostic {
	if c, ok := r.Reporter.(*Collector); ok {
		return c.Diagnostics()
	}
	return nil
}
