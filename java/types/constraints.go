package types

import "github.com/PaperTsar/javasema/java/symbols"

// ConstraintKind says how the two sides of a constraint must relate.
type ConstraintKind int

const (
	// ConstraintEqual demands the sides unify to the same type.
	ConstraintEqual ConstraintKind = iota
	// ConstraintAssignable demands the left side be assignable to the
	// right, boxing allowed.
	ConstraintAssignable
)

func (k ConstraintKind) String() string {
	if k == ConstraintEqual {
		return "="
	}
	return "<:"
}

// Constraint relates two types, one of which usually contains inference
// variables. Reason names the expression feature that generated it, for the
// inference log.
type Constraint struct {
	Kind   ConstraintKind
	Left   Type
	Right  Type
	Reason string
}

func (c Constraint) String() string {
	return c.Left.String() + " " + c.Kind.String() + " " + c.Right.String() + " (" + c.Reason + ")"
}

// Solver infers bindings for the variables of one invocation site. It
// collects constraints, then Solve unifies them in order. Unsatisfiable
// constraints do not abort the solve; they mark it failed and later
// constraints still refine the remaining variables, which keeps the reported
// types useful for downstream passes.
type Solver struct {
	ts       *symbols.TypeSystem
	log      InferenceLogger
	nextID   int
	vars     []*Var
	bindings map[*Var]Type
	queue    []Constraint
	failed   []Constraint
}

func NewSolver(ts *symbols.TypeSystem, log InferenceLogger) *Solver {
	if log == nil {
		log = NopLogger()
	}
	return &Solver{
		ts:       ts,
		log:      log,
		bindings: make(map[*Var]Type),
	}
}

// Fresh introduces a new inference variable, optionally tied to the declared
// type parameter it stands in for.
func (s *Solver) Fresh(origin *symbols.TypeParamSymbol) *Var {
	s.nextID++
	v := &Var{ID: s.nextID, Origin: origin}
	s.vars = append(s.vars, v)
	s.log.FreshVar(v)
	return v
}

// Require queues a constraint for Solve.
func (s *Solver) Require(kind ConstraintKind, left, right Type, reason string) {
	c := Constraint{Kind: kind, Left: left, Right: right, Reason: reason}
	s.queue = append(s.queue, c)
	s.log.Constraint(c)
}

// Solve processes the queued constraints and reports whether all of them
// held. After Solve, Apply substitutes the solution into any type.
func (s *Solver) Solve() bool {
	for len(s.queue) > 0 {
		c := s.queue[0]
		s.queue = s.queue[1:]
		if !s.solveOne(c) {
			s.failed = append(s.failed, c)
			s.log.Unsatisfied(c)
		}
	}
	return len(s.failed) == 0
}

// Failed returns the constraints Solve could not satisfy.
func (s *Solver) Failed() []Constraint {
	return s.failed
}

func (s *Solver) solveOne(c Constraint) bool {
	left := s.Apply(c.Left)
	right := s.Apply(c.Right)

	if lv, ok := left.(*Var); ok {
		return s.bind(lv, right, c)
	}
	if rv, ok := right.(*Var); ok {
		return s.bind(rv, left, c)
	}

	switch c.Kind {
	case ConstraintEqual:
		return s.unify(left, right, c)
	case ConstraintAssignable:
		if LooselyAssignable(s.ts, left, right) {
			return true
		}
		// The relation may become checkable only once nested variables
		// have bindings; try structural unification as a fallback so
		// List<#T> <: List<String> still binds #T.
		return s.unify(left, right, c)
	}
	return false
}

func (s *Solver) unify(left, right Type, c Constraint) bool {
	left = s.Apply(left)
	right = s.Apply(right)

	if lv, ok := left.(*Var); ok {
		return s.bind(lv, right, c)
	}
	if rv, ok := right.(*Var); ok {
		return s.bind(rv, left, c)
	}
	if left == Error || right == Error {
		return true
	}
	if Identical(left, right) {
		return true
	}

	switch lt := left.(type) {
	case *Named:
		rt, ok := right.(*Named)
		if !ok {
			return false
		}
		if lt.Sym != rt.Sym {
			// Same-symbol unification is the only shape that can bind
			// nested variables; across the hierarchy fall back to the
			// erased relation.
			return c.Kind == ConstraintAssignable && IsSubtype(left, right)
		}
		if len(lt.Args) == 0 || len(rt.Args) == 0 {
			return true
		}
		if len(lt.Args) != len(rt.Args) {
			return false
		}
		ok = true
		for i := range lt.Args {
			if !s.unify(stripWildcard(lt.Args[i]), stripWildcard(rt.Args[i]), c) {
				ok = false
			}
		}
		return ok
	case *Array:
		rt, ok := right.(*Array)
		if !ok {
			return c.Kind == ConstraintAssignable && IsSubtype(left, right)
		}
		return s.unify(lt.Elem, rt.Elem, c)
	}

	if c.Kind == ConstraintAssignable {
		return LooselyAssignable(s.ts, left, right)
	}
	return false
}

func (s *Solver) bind(v *Var, t Type, c Constraint) bool {
	t = s.Apply(t)
	if t == v {
		return true
	}
	if occurs(v, t) {
		return false
	}
	if existing, ok := s.bindings[v]; ok {
		// Later constraints must agree with the binding or widen it.
		if Identical(existing, t) {
			return true
		}
		if c.Kind == ConstraintAssignable {
			if t == Null || IsSubtype(t, existing) || LooselyAssignable(s.ts, t, existing) {
				return true
			}
			if join := Lub(s.ts, existing, t); join != Error {
				s.bindings[v] = join
				s.log.Bound(v, join)
				return true
			}
		}
		return s.unify(existing, t, c)
	}
	if t == Null {
		// null gives no information about the variable.
		return true
	}
	if boxed := Box(s.ts, t); boxed != nil {
		// Type arguments are reference types; primitives enter the
		// solution boxed.
		t = boxed
	}
	s.bindings[v] = t
	s.log.Bound(v, t)
	return true
}

func occurs(v *Var, t Type) bool {
	switch tt := t.(type) {
	case *Var:
		return tt == v
	case *Named:
		for _, a := range tt.Args {
			if occurs(v, a) {
				return true
			}
		}
	case *Array:
		return occurs(v, tt.Elem)
	case *Wildcard:
		if tt.Upper != nil && occurs(v, tt.Upper) {
			return true
		}
		if tt.Lower != nil && occurs(v, tt.Lower) {
			return true
		}
	}
	return false
}

// Apply substitutes solved bindings into t, leaving unbound variables in
// place.
func (s *Solver) Apply(t Type) Type {
	switch tt := t.(type) {
	case *Var:
		if bound, ok := s.bindings[tt]; ok {
			return s.Apply(bound)
		}
		return tt
	case *Named:
		if len(tt.Args) == 0 {
			return tt
		}
		args := make([]Type, len(tt.Args))
		changed := false
		for i, a := range tt.Args {
			args[i] = s.Apply(a)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return tt
		}
		return &Named{Sym: tt.Sym, Args: args}
	case *Array:
		elem := s.Apply(tt.Elem)
		if elem == tt.Elem {
			return tt
		}
		return &Array{Elem: elem}
	case *Wildcard:
		upper, lower := tt.Upper, tt.Lower
		if upper != nil {
			upper = s.Apply(upper)
		}
		if lower != nil {
			lower = s.Apply(lower)
		}
		if upper == tt.Upper && lower == tt.Lower {
			return tt
		}
		return &Wildcard{Upper: upper, Lower: lower}
	}
	return t
}

// Default binds every still-unbound variable to its declared bound, Object
// when the parameter declares none, and returns the substituted result type.
// It implements the fallback for invocations whose arguments leave a type
// parameter unconstrained.
func (s *Solver) Default(resolveBound func(*symbols.TypeParamSymbol) Type) {
	for _, v := range s.vars {
		if _, ok := s.bindings[v]; ok {
			continue
		}
		var t Type
		if v.Origin != nil && resolveBound != nil {
			t = resolveBound(v.Origin)
		}
		if t == nil {
			t = NamedOf(s.ts.Object)
		}
		s.bindings[v] = t
		s.log.Bound(v, t)
	}
}
