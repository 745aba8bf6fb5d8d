package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapResolver(t *testing.T) {
	r := NewMapResolver()
	widget := newTestClass("com.example", "Widget")
	r.Add(widget)

	assert.Same(t, widget, r.ResolveClassFromCanonicalName("com.example.Widget"))
	assert.Nil(t, r.ResolveClassFromCanonicalName("com.example.Missing"))
	assert.Equal(t, 1, r.Len())
}

func TestMapResolverIgnoresUnnameable(t *testing.T) {
	r := NewMapResolver()
	r.Add(nil)
	r.Add(&ClassSymbol{BinaryName: "p.Outer$1", IsAnonymous: true})
	assert.Equal(t, 0, r.Len())
}

func TestMapResolverFirstRegistrationWins(t *testing.T) {
	r := NewMapResolver()
	first := newTestClass("p", "Dup")
	second := newTestClass("p", "Dup")
	r.Add(first)
	r.Add(second)
	assert.Same(t, first, r.ResolveClassFromCanonicalName("p.Dup"))
}

func TestLayer(t *testing.T) {
	unit := NewMapResolver()
	classpath := NewMapResolver()

	unitWidget := newTestClass("com.example", "Widget")
	classpathWidget := newTestClass("com.example", "Widget")
	classpathOnly := newTestClass("com.example", "Deep")
	unit.Add(unitWidget)
	classpath.Add(classpathWidget)
	classpath.Add(classpathOnly)

	layered := Layer(unit, classpath)

	// The unit's own declaration shadows the classpath class of the same
	// name.
	assert.Same(t, unitWidget, layered.ResolveClassFromCanonicalName("com.example.Widget"))
	assert.Same(t, classpathOnly, layered.ResolveClassFromCanonicalName("com.example.Deep"))
	assert.Nil(t, layered.ResolveClassFromCanonicalName("com.example.Missing"))
}
