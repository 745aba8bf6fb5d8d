package parser

import (
	"encoding/json"
	"fmt"
)

// jsonNode is the dump shape of one tree node. Spans are compacted to a
// "line:col-line:col" string so dumps stay readable.
type jsonNode struct {
	Kind     string      `json:"kind"`
	Span     string      `json:"span,omitempty"`
	Token    string      `json:"token,omitempty"`
	Error    *jsonError  `json:"error,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonError struct {
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{Kind: n.Kind.String()}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		jn.Span = fmt.Sprintf("%d:%d-%d:%d",
			n.Span.Start.Line, n.Span.Start.Column,
			n.Span.End.Line, n.Span.End.Column)
	}
	if n.Token != nil {
		jn.Token = n.Token.Literal
	}

	if n.Error != nil {
		jn.Error = &jsonError{Message: n.Error.Message}
		for _, exp := range n.Error.Expected {
			jn.Error.Expected = append(jn.Error.Expected, exp.String())
		}
		if n.Error.Got != nil {
			jn.Error.Got = n.Error.Got.Literal
		}
	}

	for _, child := range n.Children {
		jn.Children = append(jn.Children, child.toJSON())
	}
	return jn
}
