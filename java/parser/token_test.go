package parser

import "testing"

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenKind
	}{
		{"class", TokenClass},
		{"instanceof", TokenInstanceof},
		{"synchronized", TokenSynchronized},
		{"var", TokenVar},
		{"yield", TokenYield},
		{"true", TokenTrue},
		{"null", TokenNull},
		{"record", TokenIdent},
		{"Class", TokenIdent},
		{"", TokenIdent},
	}
	for _, tt := range tests {
		if got := LookupKeyword(tt.ident); got != tt.want {
			t.Errorf("LookupKeyword(%q) = %v, want %v", tt.ident, got, tt.want)
		}
	}
}

// Every keyword must render as its own spelling, and every spelling must
// look itself up again. Catches drift between the two tables.
func TestKeywordTablesAgree(t *testing.T) {
	for spelling, kind := range keywords {
		if got := kind.String(); got != spelling {
			t.Errorf("TokenKind(%d).String() = %q, want %q", kind, got, spelling)
		}
		if got := LookupKeyword(spelling); got != kind {
			t.Errorf("LookupKeyword(%q) = %v, want %v", spelling, got, kind)
		}
	}
}

func TestTokenKindString(t *testing.T) {
	tests := []struct {
		kind TokenKind
		want string
	}{
		{TokenEOF, "EOF"},
		{TokenIdent, "Identifier"},
		{TokenTextBlock, "TextBlock"},
		{TokenEllipsis, "..."},
		{TokenColonColon, "::"},
		{TokenUShrAssign, ">>>="},
		{TokenKind(9999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("TokenKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPositionString(t *testing.T) {
	pos := Position{File: "Test.java", Offset: 42, Line: 5, Column: 10}
	if got := pos.String(); got != "5:10" {
		t.Errorf("Position.String() = %q, want %q", got, "5:10")
	}
}

func TestSpanContains(t *testing.T) {
	span := Span{
		Start: Position{Line: 2, Column: 5},
		End:   Position{Line: 4, Column: 3},
	}
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"before start line", Position{Line: 1, Column: 9}, false},
		{"start is inclusive", Position{Line: 2, Column: 5}, true},
		{"before start column", Position{Line: 2, Column: 4}, false},
		{"middle line", Position{Line: 3, Column: 1}, true},
		{"end is exclusive", Position{Line: 4, Column: 3}, false},
		{"just before end", Position{Line: 4, Column: 2}, true},
		{"after end line", Position{Line: 5, Column: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := span.Contains(tt.pos); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}
