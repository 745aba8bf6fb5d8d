package sema

import (
	"strings"

	"github.com/PaperTsar/javasema/java/symbols"
)

// resolveOverrides links every declared method to the closest supertype
// method it overrides, comparing erased parameter lists. Static and private
// methods take part on neither side. Supertypes are searched breadth first,
// so a class method wins over the interface default it also matches.
func resolveOverrides(info *Info) {
	for _, cls := range info.UnitClasses {
		for _, m := range cls.Methods {
			if m.Mods.IsStatic() || m.Mods.IsPrivate() {
				continue
			}
			if sm := findOverridden(cls, m); sm != nil {
				info.Overrides[m] = sm
			}
		}
	}
}

func findOverridden(cls *symbols.ClassSymbol, m *symbols.MethodSymbol) *symbols.MethodSymbol {
	for _, super := range cls.Supertypes() {
		for _, sm := range super.DeclaredMethodsNamed(m.Name) {
			if sm.Mods.IsStatic() || sm.Mods.IsPrivate() {
				continue
			}
			if sameErasedParams(m, sm) {
				return sm
			}
		}
	}
	return nil
}

func sameErasedParams(a, b *symbols.MethodSymbol) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if erasedName(a.Params[i].Type, a) != erasedName(b.Params[i].Type, b) {
			return false
		}
	}
	return true
}

// erasedName renders a parameter type the way the JVM erases it: type
// parameters collapse to their first bound, type arguments disappear, and
// nesting separators are normalized so binary and canonical spellings of the
// same class compare equal.
func erasedName(ref symbols.TypeRef, m *symbols.MethodSymbol) string {
	name := ref.Name
	if tp := paramNamed(m, name); tp != nil {
		if len(tp.Bounds) > 0 {
			name = tp.Bounds[0].Name
		} else {
			name = "java.lang.Object"
		}
	}
	name = strings.ReplaceAll(name, "$", ".")
	return name + strings.Repeat("[]", ref.Dims)
}

func paramNamed(m *symbols.MethodSymbol, name string) *symbols.TypeParamSymbol {
	if name == "" || strings.Contains(name, ".") {
		return nil
	}
	for _, tp := range m.TypeParams {
		if tp.Name == name {
			return tp
		}
	}
	for c := m.Owner; c != nil; c = c.Enclosing {
		if tp := c.TypeParamNamed(name); tp != nil {
			return tp
		}
	}
	return nil
}
