package symbols

// Resolver maps canonical names to class symbols. Returning nil means the
// resolver does not know the name; resolvers never report errors, callers
// that need a symbol no matter what go through FindSymbolCannotFail.
type Resolver interface {
	ResolveClassFromCanonicalName(name string) *ClassSymbol
}

// MapResolver resolves from an in-memory table. The symbol-resolution pass
// fills one per compilation unit with the classes the unit declares.
type MapResolver struct {
	classes map[string]*ClassSymbol
}

func NewMapResolver() *MapResolver {
	return &MapResolver{classes: make(map[string]*ClassSymbol)}
}

// Add registers sym under its canonical name. Symbols without a canonical
// name (local and anonymous classes) are not addressable by name and are
// ignored. The first registration of a name wins.
func (r *MapResolver) Add(sym *ClassSymbol) {
	if sym == nil || sym.CanonicalName == "" {
		return
	}
	if _, ok := r.classes[sym.CanonicalName]; ok {
		return
	}
	r.classes[sym.CanonicalName] = sym
}

func (r *MapResolver) ResolveClassFromCanonicalName(name string) *ClassSymbol {
	return r.classes[name]
}

func (r *MapResolver) Len() int {
	return len(r.classes)
}

type layeredResolver struct {
	first    Resolver
	fallback Resolver
}

// Layer stacks first over fallback: lookups try first and fall through on a
// miss. The driver layers each unit's own classes over the shared classpath
// exactly once, so unit-local declarations shadow classpath classes of the
// same name.
func Layer(first, fallback Resolver) Resolver {
	return &layeredResolver{first: first, fallback: fallback}
}

func (l *layeredResolver) ResolveClassFromCanonicalName(name string) *ClassSymbol {
	if sym := l.first.ResolveClassFromCanonicalName(name); sym != nil {
		return sym
	}
	return l.fallback.ResolveClassFromCanonicalName(name)
}
