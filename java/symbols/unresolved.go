package symbols

import "strings"

type unresolvedKey struct {
	name  string
	arity int
}

type unresolvedOuterKey struct {
	outer *ClassSymbol
	name  string
	arity int
}

// UnresolvedStore creates and caches placeholder symbols for names that
// cannot be resolved. Placeholders are canonicalized: asking twice for the
// same name and arity returns the identical pointer, so identity comparisons
// on symbols stay meaningful even for unresolved types.
//
// One store belongs to one compilation unit and is not safe for concurrent
// use; units analyzed in parallel each get their own.
type UnresolvedStore struct {
	byName  map[unresolvedKey]*ClassSymbol
	byOuter map[unresolvedOuterKey]*ClassSymbol
}

func NewUnresolvedStore() *UnresolvedStore {
	return &UnresolvedStore{
		byName:  make(map[unresolvedKey]*ClassSymbol),
		byOuter: make(map[unresolvedOuterKey]*ClassSymbol),
	}
}

// MakeUnresolvedReference returns the placeholder for the given canonical
// name, assuming typeArity type parameters. The same name with different
// arities yields distinct placeholders: a reference to Foo<K, V> and one to
// Foo<T> agree on nothing except the name.
func (s *UnresolvedStore) MakeUnresolvedReference(canonicalName string, typeArity int) *ClassSymbol {
	key := unresolvedKey{name: canonicalName, arity: typeArity}
	if sym, ok := s.byName[key]; ok {
		return sym
	}

	simple := canonicalName
	pkg := ""
	if i := strings.LastIndex(canonicalName, "."); i >= 0 {
		simple = canonicalName[i+1:]
		pkg = canonicalName[:i]
	}
	sym := &ClassSymbol{
		BinaryName:    canonicalName,
		CanonicalName: canonicalName,
		SimpleName:    simple,
		PackageName:   pkg,
		Kind:          ClassKindClass,
		Unresolved:    true,
		TypeArity:     typeArity,
	}
	s.byName[key] = sym
	return sym
}

// MakeUnresolvedReferenceIn returns the placeholder for a member type of
// outer with the given simple name. outer may itself be unresolved; the
// placeholder chains its names and enclosing pointer off it either way.
func (s *UnresolvedStore) MakeUnresolvedReferenceIn(outer *ClassSymbol, simpleName string, typeArity int) *ClassSymbol {
	key := unresolvedOuterKey{outer: outer, name: simpleName, arity: typeArity}
	if sym, ok := s.byOuter[key]; ok {
		return sym
	}

	canonical := ""
	if outer.CanonicalName != "" {
		canonical = outer.CanonicalName + "." + simpleName
	}
	sym := &ClassSymbol{
		BinaryName:    outer.BinaryName + "$" + simpleName,
		CanonicalName: canonical,
		SimpleName:    simpleName,
		PackageName:   outer.PackageName,
		Kind:          ClassKindClass,
		Unresolved:    true,
		TypeArity:     typeArity,
		Enclosing:     outer,
	}
	s.byOuter[key] = sym
	return sym
}

// FindSymbolCannotFail resolves a canonical name through r, falling back to
// an arity-0 placeholder from store when the resolver does not know the
// name. It never returns nil, which lets supertype and field-type linking
// proceed without error paths.
func FindSymbolCannotFail(r Resolver, store *UnresolvedStore, canonicalName string) *ClassSymbol {
	if sym := r.ResolveClassFromCanonicalName(canonicalName); sym != nil {
		return sym
	}
	return store.MakeUnresolvedReference(canonicalName, 0)
}
