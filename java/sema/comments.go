package sema

import (
	"sort"
	"strings"

	"github.com/PaperTsar/javasema/java/parser"
)

// assignComments attaches javadoc comments to the declarations they
// document. A doc comment belongs to the first documentable declaration
// that starts after it ends; package and import declarations act as
// barriers, so a file header comment above them documents nothing. When
// several doc comments precede one declaration, the closest one wins.
func assignComments(unit *parser.Node, comments []parser.Token, info *Info) {
	if unit == nil || len(comments) == 0 {
		return
	}

	var anchors []docAnchor
	unit.Walk(func(n *parser.Node) bool {
		switch n.Kind {
		case parser.KindPackageDecl, parser.KindImportDecl:
			anchors = append(anchors, docAnchor{offset: n.Span.Start.Offset})
		case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl,
			parser.KindAnnotationDecl, parser.KindMethodDecl, parser.KindConstructorDecl,
			parser.KindFieldDecl, parser.KindEnumConstant:
			anchors = append(anchors, docAnchor{offset: n.Span.Start.Offset, node: n})
		}
		return true
	})
	if len(anchors) == 0 {
		return
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].offset < anchors[j].offset })

	for _, c := range comments {
		if c.Kind != parser.TokenComment || !strings.HasPrefix(c.Literal, "/**") {
			continue
		}
		end := c.Span.End.Offset
		i := sort.Search(len(anchors), func(i int) bool { return anchors[i].offset >= end })
		if i == len(anchors) || anchors[i].node == nil {
			continue
		}
		info.Docs[anchors[i].node] = c.Literal
	}
}

// docAnchor is a position a doc comment can bind to. A nil node marks a
// barrier.
type docAnchor struct {
	offset int
	node   *parser.Node
}
