package symbols

import (
	"bytes"
	"strconv"
	"strings"
	"sync"

	"github.com/PaperTsar/javasema/classfile"
)

// ClassBytesSource supplies raw class file bytes for a binary name. The
// classpath index implements it; tests stub it with a map.
type ClassBytesSource interface {
	Lookup(binaryName string) ([]byte, bool)
}

// TypeSystem owns the symbols shared by every compilation unit of an
// analysis: the primitive types, a built-in core of java.lang, and a
// memoized cache of classes loaded from the classpath. It is safe for
// concurrent use; units analyzed in parallel resolve against the same
// instance.
//
// Loading is idempotent under races. Two goroutines may both parse the same
// class file, but the first one to publish wins and every caller gets the
// cached instance, so pointer identity of loaded symbols holds across the
// whole analysis.
type TypeSystem struct {
	mu       sync.RWMutex
	classes  map[string]*ClassSymbol // by canonical name
	byBinary map[string]*ClassSymbol // by binary name
	arrays   map[*ClassSymbol]*ClassSymbol

	storeMu sync.Mutex
	store   *UnresolvedStore

	source ClassBytesSource

	primitives map[string]*ClassSymbol
	boxes      map[*ClassSymbol]*ClassSymbol // primitive -> box
	unboxes    map[*ClassSymbol]*ClassSymbol // box -> primitive

	// Object and String are resolved constantly; keep direct handles.
	Object *ClassSymbol
	String *ClassSymbol
}

// NewTypeSystem builds a type system backed by the given class byte source,
// which may be nil for source-only analysis. The primitives and a core slice
// of java.lang are defined up front so analysis works without any classpath.
func NewTypeSystem(source ClassBytesSource) *TypeSystem {
	ts := &TypeSystem{
		classes:    make(map[string]*ClassSymbol),
		byBinary:   make(map[string]*ClassSymbol),
		arrays:     make(map[*ClassSymbol]*ClassSymbol),
		store:      NewUnresolvedStore(),
		source:     source,
		primitives: make(map[string]*ClassSymbol),
		boxes:      make(map[*ClassSymbol]*ClassSymbol),
		unboxes:    make(map[*ClassSymbol]*ClassSymbol),
	}
	ts.definePrimitives()
	ts.defineCoreClasses()
	return ts
}

// Primitive returns the symbol for a primitive type keyword, including
// "void", or nil if name is not a primitive.
func (ts *TypeSystem) Primitive(name string) *ClassSymbol {
	return ts.primitives[name]
}

// Boxed returns the wrapper class of a primitive symbol, nil for anything
// else.
func (ts *TypeSystem) Boxed(prim *ClassSymbol) *ClassSymbol {
	return ts.boxes[prim]
}

// Unboxed returns the primitive behind a wrapper class, nil for anything
// else.
func (ts *TypeSystem) Unboxed(box *ClassSymbol) *ClassSymbol {
	return ts.unboxes[box]
}

// ArrayOf returns the array symbol with the given component, memoized so
// repeated requests share one symbol. Array symbols subclass Object and
// carry the implicit length field and clone method.
func (ts *TypeSystem) ArrayOf(component *ClassSymbol) *ClassSymbol {
	ts.mu.RLock()
	arr := ts.arrays[component]
	ts.mu.RUnlock()
	if arr != nil {
		return arr
	}

	canonical := ""
	if component.CanonicalName != "" {
		canonical = component.CanonicalName + "[]"
	}
	arr = &ClassSymbol{
		BinaryName:    component.BinaryName + "[]",
		CanonicalName: canonical,
		SimpleName:    component.SimpleName + "[]",
		PackageName:   component.PackageName,
		Kind:          ClassKindArray,
		Mods:          ModPublic | ModFinal,
		Superclass:    ts.Object,
		Component:     component,
	}
	arr.Fields = []*FieldSymbol{
		{Name: "length", Mods: ModPublic | ModFinal, Owner: arr, Type: TypeRef{Name: "int"}},
	}
	arr.Methods = []*MethodSymbol{
		{Name: "clone", Mods: ModPublic, Owner: arr, Return: TypeRef{Name: component.BinaryName, Dims: 1}},
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if existing := ts.arrays[component]; existing != nil {
		return existing
	}
	ts.arrays[component] = arr
	return arr
}

// ResolveClassFromCanonicalName implements Resolver against the built-in
// classes and the classpath. Canonical names do not reveal where the nested
// class boundary sits, so on a miss the trailing dots are folded into binary
// nesting separators one at a time: a.b.C.D is tried as a.b.C.D, then
// a.b.C$D, then a.b$C$D, and so on.
func (ts *TypeSystem) ResolveClassFromCanonicalName(name string) *ClassSymbol {
	if name == "" {
		return nil
	}
	ts.mu.RLock()
	sym := ts.classes[name]
	ts.mu.RUnlock()
	if sym != nil {
		return sym
	}

	binary := name
	for {
		if sym := ts.LoadClass(binary); sym != nil && sym.CanonicalName == name {
			return sym
		}
		i := strings.LastIndex(binary, ".")
		if i < 0 {
			return nil
		}
		binary = binary[:i] + "$" + binary[i+1:]
	}
}

// LoadClass returns the symbol for a binary name, parsing it from the class
// byte source on first use. It returns nil when the name is not on the
// classpath or its bytes do not parse.
func (ts *TypeSystem) LoadClass(binaryName string) *ClassSymbol {
	ts.mu.RLock()
	sym := ts.byBinary[binaryName]
	ts.mu.RUnlock()
	if sym != nil {
		return sym
	}
	return ts.loadClass(binaryName, map[string]bool{})
}

// loadClass is LoadClass with a per-call set of names currently being built,
// which breaks supertype cycles in malformed class files.
func (ts *TypeSystem) loadClass(binaryName string, loading map[string]bool) *ClassSymbol {
	ts.mu.RLock()
	sym := ts.byBinary[binaryName]
	ts.mu.RUnlock()
	if sym != nil {
		return sym
	}
	if ts.source == nil || loading[binaryName] {
		return nil
	}

	data, ok := ts.source.Lookup(binaryName)
	if !ok {
		return nil
	}
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil || cf.IsModule() {
		return nil
	}

	loading[binaryName] = true
	sym = ts.buildClassSymbol(cf, loading)
	delete(loading, binaryName)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if existing := ts.byBinary[binaryName]; existing != nil {
		return existing
	}
	ts.byBinary[binaryName] = sym
	if sym.CanonicalName != "" {
		if _, taken := ts.classes[sym.CanonicalName]; !taken {
			ts.classes[sym.CanonicalName] = sym
		}
	}
	return sym
}

// classRef resolves a supertype or enclosing reference while building a
// loaded symbol. Names missing from the classpath become shared placeholders
// so the link is never nil.
func (ts *TypeSystem) classRef(binaryName string, loading map[string]bool) *ClassSymbol {
	if sym := ts.loadClass(binaryName, loading); sym != nil {
		return sym
	}
	ts.storeMu.Lock()
	defer ts.storeMu.Unlock()
	return ts.store.MakeUnresolvedReference(strings.ReplaceAll(binaryName, "$", "."), 0)
}

func (ts *TypeSystem) buildClassSymbol(cf *classfile.ClassFile, loading map[string]bool) *ClassSymbol {
	cp := cf.ConstantPool
	binary := classfile.InternalToSourceName(cf.ClassName())

	sym := &ClassSymbol{
		BinaryName:  binary,
		PackageName: packageOf(binary),
		Mods:        Modifiers(cf.AccessFlags),
	}
	sym.SimpleName, sym.CanonicalName, sym.IsLocal, sym.IsAnonymous = splitBinaryName(binary)

	switch {
	case cf.IsAnnotation():
		sym.Kind = ClassKindAnnotation
	case cf.IsInterface():
		sym.Kind = ClassKindInterface
	case cf.IsEnum():
		sym.Kind = ClassKindEnum
	default:
		sym.Kind = ClassKindClass
	}

	if attr := cf.GetAttribute("Signature"); attr != nil {
		if sig := attr.AsSignature(); sig != nil {
			for i, name := range typeParamNames(cp.GetUtf8(sig.SignatureIndex)) {
				sym.TypeParams = append(sym.TypeParams, &TypeParamSymbol{
					Name:       name,
					Index:      i,
					OwnerClass: sym,
				})
			}
		}
	}

	if superName := cf.SuperClassName(); superName != "" {
		sym.Superclass = ts.classRef(classfile.InternalToSourceName(superName), loading)
	}
	for _, ifaceName := range cf.InterfaceNames() {
		sym.Interfaces = append(sym.Interfaces, ts.classRef(classfile.InternalToSourceName(ifaceName), loading))
	}
	if i := strings.LastIndex(binary, "$"); i > 0 {
		sym.Enclosing = ts.classRef(binary[:i], loading)
	}

	for i := range cf.Fields {
		f := &cf.Fields[i]
		if f.IsSynthetic() {
			continue
		}
		ft := f.ParsedDescriptor(cp)
		if ft == nil {
			continue
		}
		sym.Fields = append(sym.Fields, &FieldSymbol{
			Name:           f.Name(cp),
			Mods:           Modifiers(f.AccessFlags),
			Owner:          sym,
			Type:           typeRefOf(ft),
			IsEnumConstant: f.IsEnum(),
		})
	}

	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.IsSynthetic() || m.IsBridge() || m.IsStaticInitializer(cp) {
			continue
		}
		desc := m.ParsedDescriptor(cp)
		if desc == nil {
			continue
		}
		params := paramSymbols(m, cp, desc)
		thrown := thrownRefs(m, cp)
		if m.IsConstructor(cp) {
			sym.Constructors = append(sym.Constructors, &ConstructorSymbol{
				Mods:      Modifiers(m.AccessFlags),
				Owner:     sym,
				Params:    params,
				Thrown:    thrown,
				IsVarargs: m.IsVarargs(),
			})
			continue
		}
		ret := Void
		if desc.ReturnType != nil {
			ret = typeRefOf(desc.ReturnType)
		}
		sym.Methods = append(sym.Methods, &MethodSymbol{
			Name:      m.Name(cp),
			Mods:      Modifiers(m.AccessFlags),
			Owner:     sym,
			Params:    params,
			Return:    ret,
			Thrown:    thrown,
			IsVarargs: m.IsVarargs(),
		})
	}

	return sym
}

func paramSymbols(m *classfile.MethodInfo, cp classfile.ConstantPool, desc *classfile.MethodDescriptor) []*VarSymbol {
	var names []string
	if attr := m.GetAttribute(cp, "MethodParameters"); attr != nil {
		if mp := attr.AsMethodParameters(); mp != nil {
			for _, p := range mp.Parameters {
				names = append(names, cp.GetUtf8(p.NameIndex))
			}
		}
	}

	params := make([]*VarSymbol, len(desc.Parameters))
	for i := range desc.Parameters {
		name := "arg" + strconv.Itoa(i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		params[i] = &VarSymbol{
			Name:        name,
			Type:        typeRefOf(&desc.Parameters[i]),
			IsParameter: true,
		}
	}
	return params
}

func thrownRefs(m *classfile.MethodInfo, cp classfile.ConstantPool) []TypeRef {
	attr := m.GetAttribute(cp, "Exceptions")
	if attr == nil {
		return nil
	}
	ex := attr.AsExceptions()
	if ex == nil {
		return nil
	}
	refs := make([]TypeRef, 0, len(ex.ExceptionIndexTable))
	for _, idx := range ex.ExceptionIndexTable {
		name := cp.GetClassName(idx)
		if name == "" {
			continue
		}
		refs = append(refs, TypeRef{
			Name: strings.ReplaceAll(classfile.InternalToSourceName(name), "$", "."),
		})
	}
	return refs
}

func typeRefOf(ft *classfile.FieldType) TypeRef {
	name := ft.BaseType
	if ft.ClassName != "" {
		name = strings.ReplaceAll(classfile.InternalToSourceName(ft.ClassName), "$", ".")
	}
	return TypeRef{Name: name, Dims: ft.ArrayDepth}
}

// splitBinaryName derives the simple name, canonical name and locality flags
// from a binary name. Segments introduced by the compiler for local and
// anonymous classes start with a digit; such classes have no canonical name.
func splitBinaryName(binary string) (simple, canonical string, isLocal, isAnonymous bool) {
	simple = binary
	if i := strings.LastIndex(binary, "$"); i >= 0 {
		simple = binary[i+1:]
	} else if i := strings.LastIndex(binary, "."); i >= 0 {
		simple = binary[i+1:]
	}

	allDigits := simple != ""
	startsDigit := false
	if simple != "" {
		startsDigit = simple[0] >= '0' && simple[0] <= '9'
		for i := 0; i < len(simple); i++ {
			if simple[i] < '0' || simple[i] > '9' {
				allDigits = false
				break
			}
		}
	}
	if allDigits {
		return "", "", false, true
	}
	if startsDigit {
		// compiler names local classes Outer$1Name
		name := strings.TrimLeft(simple, "0123456789")
		return name, "", true, false
	}

	// Any earlier digit-led segment means we are nested inside a local or
	// anonymous class and likewise have no canonical name.
	for _, seg := range strings.Split(binary, "$")[1:] {
		if seg != "" && seg[0] >= '0' && seg[0] <= '9' {
			return simple, "", false, false
		}
	}
	return simple, strings.ReplaceAll(binary, "$", "."), false, false
}

func packageOf(binary string) string {
	if i := strings.LastIndex(binary, "."); i >= 0 {
		return binary[:i]
	}
	return ""
}

// typeParamNames extracts formal type parameter names from a generic
// signature, e.g. "<K:Ljava/lang/Object;V:...>..." yields ["K", "V"]. Bounds
// may nest type arguments; only colons at the top level of the leading
// bracket section separate parameters from their bounds.
func typeParamNames(sig string) []string {
	if sig == "" || sig[0] != '<' {
		return nil
	}
	var names []string
	depth := 1
	i := 1
	nameStart := 1
	inName := true
	for i < len(sig) && depth > 0 {
		c := sig[i]
		if inName {
			if c == ':' {
				names = append(names, sig[nameStart:i])
				inName = false
			}
			i++
			continue
		}
		switch c {
		case '<':
			depth++
		case '>':
			depth--
		case ';':
			if depth == 1 && i+1 < len(sig) && sig[i+1] != ':' && sig[i+1] != '>' {
				inName = true
				nameStart = i + 1
			}
		}
		i++
	}
	return names
}
