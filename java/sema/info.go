package sema

import (
	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

// Info holds the per-unit side tables the passes fill in. Everything is
// keyed by node pointer; the AST carries no back-pointers into the tables.
type Info struct {
	PackageName string
	SourcePath  string

	// Declaration node to symbol, one map per declaration kind. Field
	// symbols are keyed by their declarator node, so a multi-declarator
	// field declaration yields one entry per declared name.
	Classes    map[*parser.Node]*symbols.ClassSymbol
	Methods    map[*parser.Node]*symbols.MethodSymbol
	Ctors      map[*parser.Node]*symbols.ConstructorSymbol
	Fields     map[*parser.Node]*symbols.FieldSymbol
	Vars       map[*parser.Node]*symbols.VarSymbol
	TypeParams map[*parser.Node]*symbols.TypeParamSymbol

	// UnitClasses lists every class symbol declared in this unit, nested,
	// local and anonymous ones included, in declaration order.
	UnitClasses []*symbols.ClassSymbol

	// Bindings records what a reference node resolved to: type nodes and
	// qualifiers from the scope pass, access chains from disambiguation.
	Bindings map[*parser.Node]types.Binding

	// ScopeAt maps every node the scope pass visited to its innermost
	// enclosing frame.
	ScopeAt map[*parser.Node]*Scope

	// Docs holds the doc comment text assigned to a declaration node.
	Docs map[*parser.Node]string

	// Usage tables, filled by the usage pass.
	VarUses    map[*symbols.VarSymbol][]*parser.Node
	FieldUses  map[*symbols.FieldSymbol][]*parser.Node
	MethodUses map[*symbols.MethodSymbol][]*parser.Node
	CtorUses   map[*symbols.ConstructorSymbol][]*parser.Node

	// Overrides maps a method declared in this unit to the nearest
	// supertype method it overrides.
	Overrides map[*symbols.MethodSymbol]*symbols.MethodSymbol

	// heads carries the scope pass's classification of the first segment
	// of each ambiguous name chain over to disambiguation. The chain node
	// is rewritten there, so these entries go stale afterwards.
	heads map[*parser.Node]types.Binding

	// pendingVars queues var-typed declarations for backpatching once
	// expressions can be typed, in declaration order.
	pendingVars []varPatch
}

type varPatch struct {
	sym *symbols.VarSymbol
	// init is the initializer expression, or the iterated expression for
	// an enhanced for loop.
	init    *parser.Node
	element bool
}

func NewInfo() *Info {
	return &Info{
		Classes:    make(map[*parser.Node]*symbols.ClassSymbol),
		Methods:    make(map[*parser.Node]*symbols.MethodSymbol),
		Ctors:      make(map[*parser.Node]*symbols.ConstructorSymbol),
		Fields:     make(map[*parser.Node]*symbols.FieldSymbol),
		Vars:       make(map[*parser.Node]*symbols.VarSymbol),
		TypeParams: make(map[*parser.Node]*symbols.TypeParamSymbol),
		Bindings:   make(map[*parser.Node]types.Binding),
		ScopeAt:    make(map[*parser.Node]*Scope),
		Docs:       make(map[*parser.Node]string),
		VarUses:    make(map[*symbols.VarSymbol][]*parser.Node),
		FieldUses:  make(map[*symbols.FieldSymbol][]*parser.Node),
		MethodUses: make(map[*symbols.MethodSymbol][]*parser.Node),
		CtorUses:   make(map[*symbols.ConstructorSymbol][]*parser.Node),
		Overrides:  make(map[*symbols.MethodSymbol]*symbols.MethodSymbol),
		heads:      make(map[*parser.Node]types.Binding),
	}
}

// ScopeKind tags what lexical boundary a frame was pushed for.
type ScopeKind int

const (
	// ScopeImplicitImport is the outermost frame, backing names with the
	// implicit java.lang import.
	ScopeImplicitImport ScopeKind = iota
	ScopeOnDemandImport
	ScopePackage
	ScopeSingleImport
	ScopeTypeBody
	ScopeMethod
	ScopeBlock
	ScopeForHeader
	ScopeCatch
	ScopeLambda
)

var scopeKindNames = map[ScopeKind]string{
	ScopeImplicitImport: "implicit-import",
	ScopeOnDemandImport: "on-demand-import",
	ScopePackage:        "package",
	ScopeSingleImport:   "single-import",
	ScopeTypeBody:       "type-body",
	ScopeMethod:         "method",
	ScopeBlock:          "block",
	ScopeForHeader:      "for-header",
	ScopeCatch:          "catch",
	ScopeLambda:         "lambda",
}

func (k ScopeKind) String() string {
	if name, ok := scopeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Scope is one frame of the lexical chain. Lookup runs innermost to
// outermost, first match wins. Declared names live in the Vars and Types
// maps; the import, package and type-body frames additionally answer from
// the resolver or the owning class so inherited and classpath names need no
// copying.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope

	// Owner is set on type-body frames.
	Owner *symbols.ClassSymbol
	// Method and Ctor identify method frames; at most one is set.
	Method *symbols.MethodSymbol
	Ctor   *symbols.ConstructorSymbol

	Vars  map[string]types.Binding
	Types map[string]types.Binding

	// Backing data for the resolver-answered frame kinds.
	pkg            string
	onDemand       []string
	staticOnDemand []*symbols.ClassSymbol
	res            symbols.Resolver
	ts             *symbols.TypeSystem
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{
		Kind:   kind,
		Parent: parent,
		Vars:   make(map[string]types.Binding),
		Types:  make(map[string]types.Binding),
	}
}

// lookupVar answers from this frame only.
func (s *Scope) lookupVar(name string) (types.Binding, bool) {
	if b, ok := s.Vars[name]; ok {
		return b, true
	}
	switch s.Kind {
	case ScopeTypeBody:
		if s.Owner != nil {
			if f := s.Owner.LookupField(name); f != nil {
				return types.Binding{Field: f}, true
			}
		}
	case ScopeOnDemandImport:
		for _, cls := range s.staticOnDemand {
			if f := cls.LookupField(name); f != nil {
				return types.Binding{Field: f}, true
			}
		}
	}
	return types.Binding{}, false
}

// lookupType answers from this frame only.
func (s *Scope) lookupType(name string) (types.Binding, bool) {
	if b, ok := s.Types[name]; ok {
		return b, true
	}
	switch s.Kind {
	case ScopeTypeBody:
		if s.Owner == nil {
			break
		}
		if s.Owner.SimpleName != "" && s.Owner.SimpleName == name {
			return types.Binding{Class: s.Owner}, true
		}
		if nested := s.Owner.LookupNested(name); nested != nil {
			return types.Binding{Class: nested}, true
		}
	case ScopePackage:
		if s.res == nil {
			break
		}
		qualified := name
		if s.pkg != "" {
			qualified = s.pkg + "." + name
		}
		if cls := s.res.ResolveClassFromCanonicalName(qualified); cls != nil {
			return types.Binding{Class: cls}, true
		}
	case ScopeOnDemandImport:
		if s.res == nil {
			break
		}
		for _, prefix := range s.onDemand {
			if cls := s.res.ResolveClassFromCanonicalName(prefix + "." + name); cls != nil {
				return types.Binding{Class: cls}, true
			}
		}
		for _, cls := range s.staticOnDemand {
			if nested := cls.LookupNested(name); nested != nil {
				return types.Binding{Class: nested}, true
			}
		}
	case ScopeImplicitImport:
		if s.ts != nil {
			if cls := s.ts.ResolveClassFromCanonicalName("java.lang." + name); cls != nil {
				return types.Binding{Class: cls}, true
			}
		}
	}
	return types.Binding{}, false
}

// ResolveVar searches this frame and then outward for a variable or field.
func (s *Scope) ResolveVar(name string) (types.Binding, bool) {
	for frame := s; frame != nil; frame = frame.Parent {
		if b, ok := frame.lookupVar(name); ok {
			return b, true
		}
	}
	return types.Binding{}, false
}

// ResolveType searches this frame and then outward for a type or type
// parameter.
func (s *Scope) ResolveType(name string) (types.Binding, bool) {
	for frame := s; frame != nil; frame = frame.Parent {
		if b, ok := frame.lookupType(name); ok {
			return b, true
		}
	}
	return types.Binding{}, false
}

// ResolveName classifies a leading name segment: a variable or field binding
// anywhere in the chain beats a type binding, however close the type is.
func (s *Scope) ResolveName(name string) (types.Binding, bool) {
	if b, ok := s.ResolveVar(name); ok {
		return b, true
	}
	return s.ResolveType(name)
}

// EnclosingClass returns the owner of the nearest type-body frame.
func (s *Scope) EnclosingClass() *symbols.ClassSymbol {
	for frame := s; frame != nil; frame = frame.Parent {
		if frame.Owner != nil {
			return frame.Owner
		}
	}
	return nil
}

// EnclosingMethod returns the method of the nearest method frame, or nil
// when the position sits at class level or inside a constructor.
func (s *Scope) EnclosingMethod() *symbols.MethodSymbol {
	for frame := s; frame != nil; frame = frame.Parent {
		if frame.Method != nil {
			return frame.Method
		}
		if frame.Ctor != nil {
			return nil
		}
	}
	return nil
}

// scopeTable adapts the side tables to the types.Scope interface the
// inference engine consumes.
type scopeTable struct {
	info *Info
}

func (t scopeTable) BindingOf(n *parser.Node) (types.Binding, bool) {
	b, ok := t.info.Bindings[n]
	return b, ok
}

func (t scopeTable) EnclosingClass(n *parser.Node) *symbols.ClassSymbol {
	if sc, ok := t.info.ScopeAt[n]; ok {
		return sc.EnclosingClass()
	}
	return nil
}

func (t scopeTable) EnclosingMethod(n *parser.Node) *symbols.MethodSymbol {
	if sc, ok := t.info.ScopeAt[n]; ok {
		return sc.EnclosingMethod()
	}
	return nil
}
