package symbols

// The type system carries a built-in core of java.lang so source analysis
// works without a JDK on the classpath: implicit supertypes (Object, Enum,
// Annotation), the primitives and their boxes, and the classes whose members
// expression typing leans on hardest. A real classpath never overrides these
// entries because the cache is checked before any class file is read.

var boxedNames = map[string]string{
	"boolean": "java.lang.Boolean",
	"byte":    "java.lang.Byte",
	"short":   "java.lang.Short",
	"char":    "java.lang.Character",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
}

func (ts *TypeSystem) definePrimitives() {
	for _, name := range []string{
		"boolean", "byte", "short", "char", "int", "long", "float", "double", "void",
	} {
		ts.primitives[name] = &ClassSymbol{
			BinaryName:    name,
			CanonicalName: name,
			SimpleName:    name,
			Kind:          ClassKindPrimitive,
			Mods:          ModPublic | ModFinal,
		}
	}
}

func (ts *TypeSystem) defineCoreClasses() {
	ref := func(name string) TypeRef { return TypeRef{Name: name} }

	cls := func(pkg, simple string, kind ClassKind, mods Modifiers, typeParams ...string) *ClassSymbol {
		sym := &ClassSymbol{
			BinaryName:    pkg + "." + simple,
			CanonicalName: pkg + "." + simple,
			SimpleName:    simple,
			PackageName:   pkg,
			Kind:          kind,
			Mods:          ModPublic | mods,
		}
		for i, tp := range typeParams {
			sym.TypeParams = append(sym.TypeParams, &TypeParamSymbol{
				Name:       tp,
				Index:      i,
				OwnerClass: sym,
			})
		}
		ts.classes[sym.CanonicalName] = sym
		ts.byBinary[sym.BinaryName] = sym
		return sym
	}
	method := func(owner *ClassSymbol, mods Modifiers, name string, ret TypeRef, params ...TypeRef) *MethodSymbol {
		m := &MethodSymbol{Name: name, Mods: ModPublic | mods, Owner: owner, Return: ret}
		for i, p := range params {
			m.Params = append(m.Params, &VarSymbol{Name: "arg" + string(rune('0'+i)), Type: p, IsParameter: true})
		}
		owner.Methods = append(owner.Methods, m)
		return m
	}
	varargs := func(owner *ClassSymbol, mods Modifiers, name string, ret TypeRef, params ...TypeRef) {
		m := method(owner, mods, name, ret, params...)
		m.IsVarargs = true
	}
	ctor := func(owner *ClassSymbol, params ...TypeRef) {
		c := &ConstructorSymbol{Mods: ModPublic, Owner: owner}
		for i, p := range params {
			c.Params = append(c.Params, &VarSymbol{Name: "arg" + string(rune('0'+i)), Type: p, IsParameter: true})
		}
		owner.Constructors = append(owner.Constructors, c)
	}
	field := func(owner *ClassSymbol, mods Modifiers, name string, typ TypeRef) {
		owner.Fields = append(owner.Fields, &FieldSymbol{Name: name, Mods: ModPublic | mods, Owner: owner, Type: typ})
	}

	object := ref("java.lang.Object")
	str := ref("java.lang.String")
	bool_ := ref("boolean")
	int_ := ref("int")
	long_ := ref("long")
	double_ := ref("double")
	char_ := ref("char")

	obj := cls("java.lang", "Object", ClassKindClass, 0)
	ctor(obj)
	method(obj, 0, "equals", bool_, object)
	method(obj, 0, "hashCode", int_)
	method(obj, 0, "toString", str)
	method(obj, ModFinal, "getClass", ref("java.lang.Class"))
	ts.Object = obj

	charSeq := cls("java.lang", "CharSequence", ClassKindInterface, ModAbstract)
	method(charSeq, ModAbstract, "length", int_)
	method(charSeq, ModAbstract, "charAt", char_, int_)
	method(charSeq, ModAbstract, "toString", str)

	comparable := cls("java.lang", "Comparable", ClassKindInterface, ModAbstract, "T")
	method(comparable, ModAbstract, "compareTo", int_, ref("T"))

	iterable := cls("java.lang", "Iterable", ClassKindInterface, ModAbstract, "T")
	method(iterable, ModAbstract, "iterator", TypeRef{Name: "java.util.Iterator", Args: []TypeRef{ref("T")}})

	s := cls("java.lang", "String", ClassKindClass, ModFinal)
	s.Superclass = obj
	s.Interfaces = []*ClassSymbol{charSeq, comparable}
	ctor(s)
	ctor(s, str)
	method(s, 0, "length", int_)
	method(s, 0, "isEmpty", bool_)
	method(s, 0, "charAt", char_, int_)
	method(s, 0, "substring", str, int_)
	method(s, 0, "substring", str, int_, int_)
	method(s, 0, "concat", str, str)
	method(s, 0, "indexOf", int_, str)
	method(s, 0, "equals", bool_, object)
	method(s, 0, "compareTo", int_, str)
	method(s, 0, "toString", str)
	method(s, ModStatic, "valueOf", str, int_)
	method(s, ModStatic, "valueOf", str, object)
	varargs(s, ModStatic, "format", str, str, TypeRef{Name: "java.lang.Object", Dims: 1})
	ts.String = s

	number := cls("java.lang", "Number", ClassKindClass, ModAbstract)
	number.Superclass = obj
	method(number, ModAbstract, "intValue", int_)
	method(number, ModAbstract, "longValue", long_)
	method(number, ModAbstract, "floatValue", ref("float"))
	method(number, ModAbstract, "doubleValue", double_)

	box := func(simple, prim string, super *ClassSymbol) *ClassSymbol {
		b := cls("java.lang", simple, ClassKindClass, ModFinal)
		b.Superclass = super
		b.Interfaces = []*ClassSymbol{comparable}
		p := ref(prim)
		method(b, ModStatic, "valueOf", ref("java.lang."+simple), p)
		method(b, 0, prim+"Value", p)
		field(b, ModStatic|ModFinal, "MIN_VALUE", p)
		field(b, ModStatic|ModFinal, "MAX_VALUE", p)
		ts.boxes[ts.primitives[prim]] = b
		ts.unboxes[b] = ts.primitives[prim]
		return b
	}
	integer := box("Integer", "int", number)
	method(integer, ModStatic, "parseInt", int_, str)
	long := box("Long", "long", number)
	method(long, ModStatic, "parseLong", long_, str)
	box("Short", "short", number)
	box("Byte", "byte", number)
	double := box("Double", "double", number)
	method(double, ModStatic, "parseDouble", double_, str)
	box("Float", "float", number)
	box("Character", "char", obj)
	booleanBox := box("Boolean", "boolean", obj)
	method(booleanBox, ModStatic, "parseBoolean", bool_, str)

	math := cls("java.lang", "Math", ClassKindClass, ModFinal)
	math.Superclass = obj
	method(math, ModStatic, "max", int_, int_, int_)
	method(math, ModStatic, "max", long_, long_, long_)
	method(math, ModStatic, "max", double_, double_, double_)
	method(math, ModStatic, "min", int_, int_, int_)
	method(math, ModStatic, "min", long_, long_, long_)
	method(math, ModStatic, "min", double_, double_, double_)
	method(math, ModStatic, "abs", int_, int_)
	method(math, ModStatic, "abs", long_, long_)
	method(math, ModStatic, "abs", double_, double_)
	method(math, ModStatic, "sqrt", double_, double_)
	field(math, ModStatic|ModFinal, "PI", double_)

	sb := cls("java.lang", "StringBuilder", ClassKindClass, ModFinal)
	sb.Superclass = obj
	sb.Interfaces = []*ClassSymbol{charSeq}
	sbRef := ref("java.lang.StringBuilder")
	ctor(sb)
	ctor(sb, int_)
	ctor(sb, str)
	method(sb, 0, "append", sbRef, str)
	method(sb, 0, "append", sbRef, int_)
	method(sb, 0, "append", sbRef, long_)
	method(sb, 0, "append", sbRef, char_)
	method(sb, 0, "append", sbRef, object)
	method(sb, 0, "length", int_)
	method(sb, 0, "charAt", char_, int_)
	method(sb, 0, "toString", str)

	throwable := cls("java.lang", "Throwable", ClassKindClass, 0)
	throwable.Superclass = obj
	throwableRef := ref("java.lang.Throwable")
	ctor(throwable)
	ctor(throwable, str)
	ctor(throwable, str, throwableRef)
	method(throwable, 0, "getMessage", str)
	method(throwable, 0, "getCause", throwableRef)
	method(throwable, 0, "printStackTrace", Void)

	exception := cls("java.lang", "Exception", ClassKindClass, 0)
	exception.Superclass = throwable
	ctor(exception)
	ctor(exception, str)
	ctor(exception, str, throwableRef)

	runtimeEx := cls("java.lang", "RuntimeException", ClassKindClass, 0)
	runtimeEx.Superclass = exception
	ctor(runtimeEx)
	ctor(runtimeEx, str)
	ctor(runtimeEx, str, throwableRef)

	for _, simple := range []string{
		"IllegalArgumentException", "IllegalStateException",
		"NullPointerException", "UnsupportedOperationException",
		"IndexOutOfBoundsException", "ClassCastException",
		"ArithmeticException",
	} {
		e := cls("java.lang", simple, ClassKindClass, 0)
		e.Superclass = runtimeEx
		ctor(e)
		ctor(e, str)
	}

	errCls := cls("java.lang", "Error", ClassKindClass, 0)
	errCls.Superclass = throwable
	ctor(errCls)
	ctor(errCls, str)

	assertionErr := cls("java.lang", "AssertionError", ClassKindClass, 0)
	assertionErr.Superclass = errCls
	ctor(assertionErr)
	ctor(assertionErr, object)

	class := cls("java.lang", "Class", ClassKindClass, ModFinal, "T")
	class.Superclass = obj
	method(class, 0, "getName", str)
	method(class, 0, "getSimpleName", str)
	method(class, 0, "isInstance", bool_, object)

	enum := cls("java.lang", "Enum", ClassKindClass, ModAbstract, "E")
	enum.Superclass = obj
	enum.Interfaces = []*ClassSymbol{comparable}
	method(enum, ModFinal, "name", str)
	method(enum, ModFinal, "ordinal", int_)
	method(enum, ModFinal, "compareTo", int_, ref("E"))

	void := cls("java.lang", "Void", ClassKindClass, ModFinal)
	void.Superclass = obj

	runnable := cls("java.lang", "Runnable", ClassKindInterface, ModAbstract)
	method(runnable, ModAbstract, "run", Void)

	thread := cls("java.lang", "Thread", ClassKindClass, 0)
	thread.Superclass = obj
	thread.Interfaces = []*ClassSymbol{runnable}
	ctor(thread)
	ctor(thread, ref("java.lang.Runnable"))
	method(thread, 0, "start", Void)
	method(thread, 0, "run", Void)
	method(thread, 0, "interrupt", Void)

	system := cls("java.lang", "System", ClassKindClass, ModFinal)
	system.Superclass = obj
	printStream := ref("java.io.PrintStream")
	field(system, ModStatic|ModFinal, "out", printStream)
	field(system, ModStatic|ModFinal, "err", printStream)
	method(system, ModStatic, "currentTimeMillis", long_)
	method(system, ModStatic, "nanoTime", long_)
	method(system, ModStatic, "lineSeparator", str)
	method(system, ModStatic, "exit", Void, int_)
	method(system, ModStatic, "getProperty", str, str)

	// Not java.lang, but the implicit superinterface of every annotation
	// declaration, so it must exist without a classpath.
	annotation := cls("java.lang.annotation", "Annotation", ClassKindInterface, ModAbstract)
	method(annotation, ModAbstract, "annotationType", ref("java.lang.Class"))

	override := cls("java.lang", "Override", ClassKindAnnotation, ModAbstract)
	override.Interfaces = []*ClassSymbol{annotation}
	deprecated := cls("java.lang", "Deprecated", ClassKindAnnotation, ModAbstract)
	deprecated.Interfaces = []*ClassSymbol{annotation}
	suppress := cls("java.lang", "SuppressWarnings", ClassKindAnnotation, ModAbstract)
	suppress.Interfaces = []*ClassSymbol{annotation}
	functional := cls("java.lang", "FunctionalInterface", ClassKindAnnotation, ModAbstract)
	functional.Interfaces = []*ClassSymbol{annotation}

	// Everything else descends from Object, interfaces included, so member
	// lookups for equals, hashCode and toString terminate there.
	for _, sym := range ts.classes {
		if sym != obj && sym.Superclass == nil {
			sym.Superclass = obj
		}
	}
}
