// Package parser provides an error-tolerant parser for Java source code.
//
// # Overview
//
// The parser turns a byte stream into a uniform syntax tree whose nodes all
// share one struct. It is built for semantic tooling where malformed or
// incomplete input is common: instead of failing, it records error nodes in
// the tree and resynchronizes at statement and declaration boundaries.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (tree)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │                   │
//	                           ▼                   ▼
//	                    ┌─────────────┐     ┌─────────────┐
//	                    │  Position   │     │  ErrorNode  │
//	                    │  Tracking   │     │  Recovery   │
//	                    └─────────────┘     └─────────────┘
//
// # Entry Points
//
//	// ParseCompilationUnit parses a complete .java source file.
//	func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser
//
//	// ParseExpression parses a standalone expression, useful for
//	// snippets and tests.
//	func ParseExpression(r io.Reader, opts ...Option) *Parser
//
// Finish consumes the input and returns the root node, or nil when the
// input is empty or ends mid-construct.
//
// # Source Context
//
// Every node carries a span of two positions:
//
//	type Position struct {
//	    File   string // source file path
//	    Offset int    // byte offset from start of file
//	    Line   int    // 1-based line number
//	    Column int    // 1-based column (in bytes, not runes)
//	}
//
// # Error Recovery
//
// The parser never panics on malformed input. Unparsable stretches become
// error nodes that capture the diagnostic message, the expected token kinds,
// and the offending token. Recovery skips to the nearest synchronization
// token (';', '}' or a declaration keyword) and resumes.
//
// # Ambiguous Names
//
// Dotted names in expression position, such as "a.b.c", cannot be classified
// during parsing: each segment may be a package, a type, or a field. The
// parser emits them as KindAmbiguousName nodes holding the raw identifier
// chain. Semantic analysis later rewrites these in place into
// KindVarAccess, KindFieldAccess and KindTypeAccess nodes once symbol
// information is available.
//
// # Configuration
//
//	// WithFile sets the file path recorded in positions.
//	func WithFile(path string) Option
//
//	// WithComments collects comment tokens for later association with
//	// declarations. Comments are dropped otherwise.
//	func WithComments() Option
//
// # Thread Safety
//
// A Parser instance is not safe for concurrent use. Create separate
// instances for concurrent parsing of different files.
package parser
