package sema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperTsar/javasema/java/parser"
)

func parseUnitWithComments(t *testing.T, src string) (*parser.Node, []parser.Token) {
	t.Helper()
	p := parser.ParseCompilationUnit(strings.NewReader(src), parser.WithComments())
	unit := p.Finish()
	require.NotNil(t, unit, "source must parse")
	return unit, p.Comments()
}

func firstOfKind(unit *parser.Node, kind parser.NodeKind) *parser.Node {
	var found *parser.Node
	unit.Walk(func(n *parser.Node) bool {
		if found == nil && n.Kind == kind {
			found = n
		}
		return found == nil
	})
	return found
}

func TestDocCommentsAttachToDeclarations(t *testing.T) {
	unit, comments := parseUnitWithComments(t, `
/** File header, documents nothing. */
package app;

import java.util.List;

/** Stale widget doc. */
/** Widget does things. */
public class Widget {
    /** Counts things. */
    int count;

    // not a doc comment
    /* not a doc comment either */
    /** Runs the widget. */
    void run() {}
}

/** The colors. */
enum Color {
    /** The warm one. */
    RED
}

/** Trailing, documents nothing. */
`)
	info := NewInfo()
	assignComments(unit, comments, info)

	class := firstOfKind(unit, parser.KindClassDecl)
	require.NotNil(t, class)
	assert.Equal(t, "/** Widget does things. */", info.Docs[class], "the closest doc comment wins")

	field := firstOfKind(unit, parser.KindFieldDecl)
	require.NotNil(t, field)
	assert.Equal(t, "/** Counts things. */", info.Docs[field])

	method := firstOfKind(unit, parser.KindMethodDecl)
	require.NotNil(t, method)
	assert.Equal(t, "/** Runs the widget. */", info.Docs[method])

	enum := firstOfKind(unit, parser.KindEnumDecl)
	require.NotNil(t, enum)
	assert.Equal(t, "/** The colors. */", info.Docs[enum])

	constant := firstOfKind(unit, parser.KindEnumConstant)
	require.NotNil(t, constant)
	assert.Equal(t, "/** The warm one. */", info.Docs[constant])

	assert.Len(t, info.Docs, 5, "header and trailing comments bind nowhere")
}

func TestFileHeaderStopsAtPackageBarrier(t *testing.T) {
	unit, comments := parseUnitWithComments(t, `
/** Header above the package declaration. */
package app;

class A {}
`)
	info := NewInfo()
	assignComments(unit, comments, info)
	assert.Empty(t, info.Docs)
}

func TestImportBarrierBlocksHeaderDocs(t *testing.T) {
	unit, comments := parseUnitWithComments(t, `
package app;

/** Sits above an import, documents nothing. */
import java.util.List;

class A {}
`)
	info := NewInfo()
	assignComments(unit, comments, info)
	assert.Empty(t, info.Docs)
}

func TestNonDocCommentsIgnored(t *testing.T) {
	unit, comments := parseUnitWithComments(t, `
package app;

// line comment
/* block comment */
class A {}
`)
	info := NewInfo()
	assignComments(unit, comments, info)
	assert.Empty(t, info.Docs)
}

func TestCommentsWithoutParseOptionAreAbsent(t *testing.T) {
	unit := parseUnit(t, `
package app;
/** Doc. */
class A {}
`)
	info := NewInfo()
	assignComments(unit, nil, info)
	assert.Empty(t, info.Docs)
}
