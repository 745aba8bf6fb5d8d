package parser

import "io"

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithComments() Option {
	return func(p *Parser) {
		p.includeComments = true
	}
}

type parseFunc func(*Parser) *Node

type Parser struct {
	file            string
	includeComments bool
	reader          io.Reader
	input           []byte
	lexer           *Lexer
	tokens          []Token
	comments        []Token
	pos             int
	entry           parseFunc
	incomplete      bool
	pendingGT       int
}

func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		reader: r,
		entry:  (*Parser).parseCompilationUnit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func ParseExpression(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		reader: r,
		entry:  (*Parser).parseExpression,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) SourcePath() string {
	return p.file
}

func (p *Parser) Comments() []Token {
	return p.comments
}

func (p *Parser) readAll() error {
	if p.input != nil {
		return nil
	}
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return err
	}
	p.input = data
	return nil
}

func (p *Parser) Finish() *Node {
	if err := p.readAll(); err != nil {
		return nil
	}
	if len(p.input) == 0 {
		return nil
	}
	p.lexer = NewLexer(p.input, p.file)
	p.tokens = nil
	p.pos = 0
	p.incomplete = false
	p.pendingGT = 0
	p.tokenize()
	result := p.entry(p)
	if p.incomplete {
		return nil
	}
	return result
}

func (p *Parser) tokenize() {
	for {
		tok := p.lexer.NextToken()
		if tok.Kind == TokenWhitespace {
			continue
		}
		if tok.Kind == TokenComment || tok.Kind == TokenLineComment {
			if p.includeComments {
				p.comments = append(p.comments, tok)
			}
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind TokenKind) *Token {
	tok := p.peek()
	if tok.Kind == kind {
		p.advance()
		return &tok
	}
	return nil
}

func (p *Parser) expectIdentifier() *Token {
	if p.isIdentifierLike() {
		tok := p.advance()
		return &tok
	}
	return nil
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// isIdentifierLike treats contextual keywords as plain identifiers where the
// grammar allows them as names.
func (p *Parser) isIdentifierLike() bool {
	switch p.peek().Kind {
	case TokenIdent, TokenVar, TokenYield:
		return true
	}
	return false
}

func isIdentifierKind(kind TokenKind) bool {
	switch kind {
	case TokenIdent, TokenVar, TokenYield:
		return true
	}
	return false
}

// mustProgress returns a function that checks if the parser has advanced.
// Call it at the start of a loop iteration, then call the returned function
// at the end to break if no progress was made.
func (p *Parser) mustProgress() func() bool {
	saved := p.pos
	return func() bool {
		if p.pos == saved {
			if !p.check(TokenEOF) {
				p.advance()
			}
			return false
		}
		return true
	}
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

func (p *Parser) finishNode(n *Node) *Node {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		n.Span.End = p.tokens[p.pos-1].Span.End
	} else if len(p.tokens) > 0 {
		n.Span.End = p.tokens[len(p.tokens)-1].Span.End
	}
	return n
}

func (p *Parser) identNode(tok Token) *Node {
	return &Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span}
}

func (p *Parser) errorNode(msg string, recoverTo []TokenKind, expected ...TokenKind) *Node {
	tok := p.peek()
	if tok.Kind == TokenEOF {
		p.incomplete = true
	}
	node := &Node{
		Kind: KindError,
		Span: Span{Start: tok.Span.Start, End: tok.Span.End},
		Error: &Error{
			Message:  msg,
			Expected: expected,
			Got:      &tok,
		},
	}
	p.recoverTo(recoverTo)
	return node
}

func (p *Parser) recoverTo(kinds []TokenKind) {
	if !p.check(TokenEOF) {
		p.advance()
	}
	if len(kinds) == 0 {
		return
	}
	for !p.check(TokenEOF) {
		for _, kind := range kinds {
			if p.check(kind) {
				return
			}
		}
		p.advance()
	}
}

// checkCloseAngle and expectCloseAngle treat ">>" and ">>>" as stacked
// closing angle brackets so nested type arguments terminate correctly.
func (p *Parser) checkCloseAngle() bool {
	if p.pendingGT > 0 {
		return true
	}
	return p.match(TokenGT, TokenShr, TokenUShr)
}

func (p *Parser) expectCloseAngle() bool {
	if p.pendingGT > 0 {
		p.pendingGT--
		return true
	}
	switch p.peek().Kind {
	case TokenGT:
		p.advance()
		return true
	case TokenShr:
		p.advance()
		p.pendingGT = 1
		return true
	case TokenUShr:
		p.advance()
		p.pendingGT = 2
		return true
	}
	return false
}

// --- Compilation unit ---

func (p *Parser) parseCompilationUnit() *Node {
	node := p.startNode(KindCompilationUnit)

	if p.check(TokenPackage) || p.isAnnotatedPackage() {
		node.AddChild(p.parsePackageDecl())
	}

	for p.check(TokenImport) {
		node.AddChild(p.parseImportDecl())
	}

	for !p.check(TokenEOF) {
		if p.check(TokenSemicolon) {
			p.advance()
			continue
		}
		progress := p.mustProgress()
		node.AddChild(p.parseTypeDecl())
		if !progress() {
			break
		}
	}

	return p.finishNode(node)
}

func (p *Parser) isAnnotatedPackage() bool {
	if !p.check(TokenAt) {
		return false
	}
	save := p.pos
	incomplete := p.incomplete
	for p.check(TokenAt) {
		p.parseAnnotation()
	}
	isPackage := p.check(TokenPackage)
	p.pos = save
	p.incomplete = incomplete
	return isPackage
}

func (p *Parser) parsePackageDecl() *Node {
	node := p.startNode(KindPackageDecl)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	p.expect(TokenPackage)
	node.AddChild(p.parseQualifiedName())
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseImportDecl() *Node {
	node := p.startNode(KindImportDecl)
	p.expect(TokenImport)
	if tok := p.expect(TokenStatic); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	qn := p.startNode(KindQualifiedName)
	for {
		tok := p.expectIdentifier()
		if tok == nil {
			break
		}
		qn.AddChild(p.identNode(*tok))
		if !p.check(TokenDot) {
			break
		}
		p.advance()
		if star := p.expect(TokenStar); star != nil {
			node.AddChild(p.identNode(*star))
			break
		}
	}
	node.AddChild(p.finishNode(qn))
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseQualifiedName() *Node {
	node := p.startNode(KindQualifiedName)
	for {
		tok := p.expectIdentifier()
		if tok == nil {
			break
		}
		node.AddChild(p.identNode(*tok))
		if !p.check(TokenDot) || !isIdentifierKind(p.peekN(1).Kind) {
			break
		}
		p.advance()
	}
	return p.finishNode(node)
}

// --- Declarations ---

var modifierTokens = []TokenKind{
	TokenPublic, TokenProtected, TokenPrivate,
	TokenAbstract, TokenStatic, TokenFinal,
	TokenStrictfp, TokenNative, TokenSynchronized,
	TokenTransient, TokenVolatile, TokenDefault,
}

func (p *Parser) parseModifiers() *Node {
	if !p.check(TokenAt) && !p.match(modifierTokens...) {
		return nil
	}
	node := p.startNode(KindModifiers)
	for {
		if p.check(TokenAt) && p.peekN(1).Kind != TokenInterface {
			node.AddChild(p.parseAnnotation())
			continue
		}
		if p.match(modifierTokens...) {
			tok := p.advance()
			node.AddChild(p.identNode(tok))
			continue
		}
		break
	}
	if len(node.Children) == 0 {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseAnnotation() *Node {
	node := p.startNode(KindAnnotation)
	p.expect(TokenAt)
	node.AddChild(p.parseQualifiedName())
	if p.check(TokenLParen) {
		p.skipBalancedParens()
	}
	return p.finishNode(node)
}

// Annotation arguments carry no weight in semantic analysis; skip them but
// keep the enclosing span intact.
func (p *Parser) skipBalancedParens() {
	depth := 0
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseTypeDecl() *Node {
	mods := p.parseModifiers()
	switch {
	case p.check(TokenClass):
		return p.parseClassDecl(mods)
	case p.check(TokenInterface):
		return p.parseInterfaceDecl(mods)
	case p.check(TokenEnum):
		return p.parseEnumDecl(mods)
	case p.check(TokenAt) && p.peekN(1).Kind == TokenInterface:
		return p.parseAnnotationDecl(mods)
	}
	return p.errorNode("expected type declaration", []TokenKind{
		TokenClass, TokenInterface, TokenEnum, TokenRBrace,
	}, TokenClass, TokenInterface, TokenEnum)
}

func (p *Parser) parseClassDecl(mods *Node) *Node {
	node := p.startNode(KindClassDecl)
	if mods != nil {
		node.Span.Start = mods.Span.Start
		node.AddChild(mods)
	}
	p.expect(TokenClass)
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	if p.check(TokenExtends) {
		ext := p.startNode(KindExtendsClause)
		p.advance()
		ext.AddChild(p.parseClassType())
		node.AddChild(p.finishNode(ext))
	}
	if p.check(TokenImplements) {
		node.AddChild(p.parseImplementsClause())
	}
	node.AddChild(p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseInterfaceDecl(mods *Node) *Node {
	node := p.startNode(KindInterfaceDecl)
	if mods != nil {
		node.Span.Start = mods.Span.Start
		node.AddChild(mods)
	}
	p.expect(TokenInterface)
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	if p.check(TokenExtends) {
		ext := p.startNode(KindExtendsClause)
		p.advance()
		for {
			ext.AddChild(p.parseClassType())
			if p.expect(TokenComma) == nil {
				break
			}
		}
		node.AddChild(p.finishNode(ext))
	}
	node.AddChild(p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseEnumDecl(mods *Node) *Node {
	node := p.startNode(KindEnumDecl)
	if mods != nil {
		node.Span.Start = mods.Span.Start
		node.AddChild(mods)
	}
	p.expect(TokenEnum)
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	if p.check(TokenImplements) {
		node.AddChild(p.parseImplementsClause())
	}
	node.AddChild(p.parseEnumBody())
	return p.finishNode(node)
}

func (p *Parser) parseAnnotationDecl(mods *Node) *Node {
	node := p.startNode(KindAnnotationDecl)
	if mods != nil {
		node.Span.Start = mods.Span.Start
		node.AddChild(mods)
	}
	p.expect(TokenAt)
	p.expect(TokenInterface)
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	node.AddChild(p.parseClassBody())
	return p.finishNode(node)
}

func (p *Parser) parseImplementsClause() *Node {
	node := p.startNode(KindImplementsClause)
	p.expect(TokenImplements)
	for {
		node.AddChild(p.parseClassType())
		if p.expect(TokenComma) == nil {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseClassBody() *Node {
	node := p.startNode(KindClassBody)
	if p.expect(TokenLBrace) == nil {
		node.AddChild(p.errorNode("expected class body", []TokenKind{TokenLBrace, TokenRBrace}, TokenLBrace))
		return p.finishNode(node)
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		if p.check(TokenSemicolon) {
			p.advance()
			continue
		}
		progress := p.mustProgress()
		node.AddChild(p.parseClassMember())
		if !progress() {
			break
		}
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseEnumBody() *Node {
	node := p.startNode(KindClassBody)
	if p.expect(TokenLBrace) == nil {
		node.AddChild(p.errorNode("expected enum body", []TokenKind{TokenLBrace, TokenRBrace}, TokenLBrace))
		return p.finishNode(node)
	}

	for p.isIdentifierLike() || p.check(TokenAt) {
		node.AddChild(p.parseEnumConstant())
		if p.expect(TokenComma) == nil {
			break
		}
	}
	if p.check(TokenSemicolon) {
		p.advance()
		for !p.check(TokenRBrace) && !p.check(TokenEOF) {
			if p.check(TokenSemicolon) {
				p.advance()
				continue
			}
			progress := p.mustProgress()
			node.AddChild(p.parseClassMember())
			if !progress() {
				break
			}
		}
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseEnumConstant() *Node {
	node := p.startNode(KindEnumConstant)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	if p.check(TokenLParen) {
		node.AddChild(p.parseArguments())
	}
	if p.check(TokenLBrace) {
		node.AddChild(p.parseClassBody())
	}
	return p.finishNode(node)
}

func (p *Parser) parseClassMember() *Node {
	mods := p.parseModifiers()

	switch {
	case p.check(TokenClass):
		return p.parseClassDecl(mods)
	case p.check(TokenInterface):
		return p.parseInterfaceDecl(mods)
	case p.check(TokenEnum):
		return p.parseEnumDecl(mods)
	case p.check(TokenAt) && p.peekN(1).Kind == TokenInterface:
		return p.parseAnnotationDecl(mods)
	case p.check(TokenLBrace):
		node := p.startNode(KindInitializer)
		if mods != nil {
			node.Span.Start = mods.Span.Start
			node.AddChild(mods)
		}
		node.AddChild(p.parseBlock())
		return p.finishNode(node)
	}

	var typeParams *Node
	if p.check(TokenLT) {
		typeParams = p.parseTypeParameters()
	}

	// Constructor: the name is directly followed by the parameter list, with
	// no return type in between.
	if p.isIdentifierLike() && p.peekN(1).Kind == TokenLParen {
		return p.parseConstructorDecl(mods, typeParams)
	}

	return p.parseMethodOrFieldDecl(mods, typeParams)
}

func (p *Parser) parseConstructorDecl(mods, typeParams *Node) *Node {
	node := p.startNode(KindConstructorDecl)
	if mods != nil {
		node.Span.Start = mods.Span.Start
		node.AddChild(mods)
	}
	if typeParams != nil {
		node.AddChild(typeParams)
	}
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	node.AddChild(p.parseParameters())
	if p.check(TokenThrows) {
		node.AddChild(p.parseThrowsList())
	}
	node.AddChild(p.parseBlock())
	return p.finishNode(node)
}

func (p *Parser) parseMethodOrFieldDecl(mods, typeParams *Node) *Node {
	declType := p.parseType()

	nameTok := p.expectIdentifier()
	if nameTok == nil {
		return p.errorNode("expected member name", []TokenKind{TokenSemicolon, TokenRBrace}, TokenIdent)
	}

	if p.check(TokenLParen) {
		node := p.startNode(KindMethodDecl)
		node.Span.Start = declType.Span.Start
		if mods != nil {
			node.Span.Start = mods.Span.Start
			node.AddChild(mods)
		}
		if typeParams != nil {
			node.AddChild(typeParams)
		}
		node.AddChild(declType)
		node.AddChild(p.identNode(*nameTok))
		node.AddChild(p.parseParameters())
		if p.check(TokenThrows) {
			node.AddChild(p.parseThrowsList())
		}
		// Annotation type elements may declare a default value.
		if p.check(TokenDefault) {
			p.advance()
			node.AddChild(p.parseExpression())
		}
		if p.check(TokenLBrace) {
			node.AddChild(p.parseBlock())
		} else {
			p.expect(TokenSemicolon)
		}
		return p.finishNode(node)
	}

	node := p.startNode(KindFieldDecl)
	node.Span.Start = declType.Span.Start
	if mods != nil {
		node.Span.Start = mods.Span.Start
		node.AddChild(mods)
	}
	node.AddChild(declType)
	node.AddChild(p.parseVarDeclarator(*nameTok))
	for p.expect(TokenComma) != nil {
		tok := p.expectIdentifier()
		if tok == nil {
			break
		}
		node.AddChild(p.parseVarDeclarator(*tok))
	}
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseVarDeclarator(nameTok Token) *Node {
	node := &Node{Kind: KindVarDeclarator, Span: nameTok.Span}
	node.AddChild(p.identNode(nameTok))
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		dim := p.startNode(KindArrayType)
		p.advance()
		p.advance()
		node.AddChild(p.finishNode(dim))
	}
	if p.expect(TokenAssign) != nil {
		if p.check(TokenLBrace) {
			node.AddChild(p.parseArrayInit())
		} else {
			node.AddChild(p.parseExpression())
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseParameters() *Node {
	node := p.startNode(KindParameters)
	p.expect(TokenLParen)
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseParameter())
		if !progress() {
			break
		}
		if p.expect(TokenComma) == nil {
			break
		}
	}
	p.expect(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseParameter() *Node {
	node := p.startNode(KindParameter)
	if mods := p.parseModifiers(); mods != nil {
		node.AddChild(mods)
	}
	node.AddChild(p.parseType())
	if tok := p.expect(TokenEllipsis); tok != nil {
		node.Token = tok
	}
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		dim := p.startNode(KindArrayType)
		p.advance()
		p.advance()
		node.AddChild(p.finishNode(dim))
	}
	return p.finishNode(node)
}

func (p *Parser) parseThrowsList() *Node {
	node := p.startNode(KindThrowsList)
	p.expect(TokenThrows)
	for {
		node.AddChild(p.parseClassType())
		if p.expect(TokenComma) == nil {
			break
		}
	}
	return p.finishNode(node)
}

// --- Types ---

var primitiveTypeTokens = []TokenKind{
	TokenBoolean, TokenByte, TokenChar, TokenShort,
	TokenInt, TokenLong, TokenFloat, TokenDouble, TokenVoid,
}

func (p *Parser) isPrimitiveType() bool {
	return p.match(primitiveTypeTokens...)
}

func (p *Parser) parseType() *Node {
	var base *Node
	if p.isPrimitiveType() {
		base = p.startNode(KindPrimitiveType)
		tok := p.advance()
		base.Token = &tok
		p.finishNode(base)
	} else if p.check(TokenVar) && !isTypeFollows(p.peekN(1).Kind) {
		base = p.startNode(KindVarType)
		tok := p.advance()
		base.Token = &tok
		p.finishNode(base)
	} else {
		base = p.parseClassType()
	}
	return p.parseDims(base)
}

// isTypeFollows reports whether kind can follow a type name inside a type
// reference; used to decide whether "var" is the inferred-type marker or an
// ordinary class name.
func isTypeFollows(kind TokenKind) bool {
	switch kind {
	case TokenDot, TokenLT, TokenLBracket:
		return true
	}
	return false
}

func (p *Parser) parseDims(base *Node) *Node {
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		arr := &Node{Kind: KindArrayType, Span: Span{Start: base.Span.Start}}
		arr.AddChild(base)
		p.advance()
		p.advance()
		base = p.finishNode(arr)
	}
	return base
}

func (p *Parser) parseClassType() *Node {
	node := p.startNode(KindClassType)
	for {
		tok := p.expectIdentifier()
		if tok == nil {
			node.AddChild(p.errorNode("expected type name", nil, TokenIdent))
			break
		}
		node.AddChild(p.identNode(*tok))
		if p.check(TokenLT) {
			node.AddChild(p.parseTypeArguments())
		}
		if !p.check(TokenDot) || !isIdentifierKind(p.peekN(1).Kind) {
			break
		}
		p.advance()
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeArguments() *Node {
	node := p.startNode(KindTypeArguments)
	p.expect(TokenLT)
	if p.checkCloseAngle() {
		// Diamond form: <>
		p.expectCloseAngle()
		return p.finishNode(node)
	}
	for {
		node.AddChild(p.parseTypeArgument())
		if p.expect(TokenComma) == nil {
			break
		}
	}
	if !p.expectCloseAngle() {
		node.AddChild(p.errorNode("expected '>'", nil, TokenGT))
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeArgument() *Node {
	if p.check(TokenQuestion) {
		node := p.startNode(KindWildcard)
		p.advance()
		if p.match(TokenExtends, TokenSuper) {
			tok := p.advance()
			node.Token = &tok
			node.AddChild(p.parseType())
		}
		return p.finishNode(node)
	}
	return p.parseType()
}

func (p *Parser) parseTypeParameters() *Node {
	node := p.startNode(KindTypeParameters)
	p.expect(TokenLT)
	for {
		node.AddChild(p.parseTypeParameter())
		if p.expect(TokenComma) == nil {
			break
		}
	}
	if !p.expectCloseAngle() {
		node.AddChild(p.errorNode("expected '>'", nil, TokenGT))
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeParameter() *Node {
	node := p.startNode(KindTypeParameter)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	if tok := p.expectIdentifier(); tok != nil {
		node.AddChild(p.identNode(*tok))
	}
	if p.expect(TokenExtends) != nil {
		for {
			node.AddChild(p.parseClassType())
			if p.expect(TokenBitAnd) == nil {
				break
			}
		}
	}
	return p.finishNode(node)
}

// --- Statements ---

func (p *Parser) parseBlock() *Node {
	node := p.startNode(KindBlock)
	if p.expect(TokenLBrace) == nil {
		node.AddChild(p.errorNode("expected block", []TokenKind{TokenSemicolon, TokenRBrace}, TokenLBrace))
		return p.finishNode(node)
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseBlockStatement())
		if !progress() {
			break
		}
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseBlockStatement() *Node {
	switch p.peek().Kind {
	case TokenClass, TokenInterface, TokenEnum:
		node := p.startNode(KindLocalClassDecl)
		node.AddChild(p.parseTypeDecl())
		return p.finishNode(node)
	case TokenFinal, TokenAbstract, TokenStatic, TokenAt:
		if p.isLocalClassAhead() {
			node := p.startNode(KindLocalClassDecl)
			node.AddChild(p.parseTypeDecl())
			return p.finishNode(node)
		}
		return p.parseLocalVarDecl()
	}
	if p.isPrimitiveType() && p.peek().Kind != TokenVoid {
		return p.parseLocalVarDecl()
	}
	if p.check(TokenVar) && isIdentifierKind(p.peekN(1).Kind) {
		return p.parseLocalVarDecl()
	}
	if p.isLocalVarDeclAhead() {
		return p.parseLocalVarDecl()
	}
	return p.parseStatement()
}

// isLocalClassAhead skims modifiers and annotations and reports whether a
// type declaration keyword follows.
func (p *Parser) isLocalClassAhead() bool {
	save := p.pos
	incomplete := p.incomplete
	p.parseModifiers()
	isType := p.match(TokenClass, TokenInterface, TokenEnum) ||
		(p.check(TokenAt) && p.peekN(1).Kind == TokenInterface)
	p.pos = save
	p.incomplete = incomplete
	return isType
}

// isLocalVarDeclAhead performs a trial parse of a class type followed by an
// identifier, which distinguishes "List<String> xs" from "a.b.c()".
func (p *Parser) isLocalVarDeclAhead() bool {
	if !p.isIdentifierLike() {
		return false
	}
	save := p.pos
	pendingGT := p.pendingGT
	incomplete := p.incomplete
	p.parseType()
	isDecl := p.isIdentifierLike()
	p.pos = save
	p.pendingGT = pendingGT
	p.incomplete = incomplete
	return isDecl
}

func (p *Parser) parseLocalVarDecl() *Node {
	node := p.startNode(KindLocalVarDecl)
	if mods := p.parseModifiers(); mods != nil {
		node.AddChild(mods)
	}
	node.AddChild(p.parseType())
	tok := p.expectIdentifier()
	if tok == nil {
		node.AddChild(p.errorNode("expected variable name", []TokenKind{TokenSemicolon}, TokenIdent))
		p.expect(TokenSemicolon)
		return p.finishNode(node)
	}
	node.AddChild(p.parseVarDeclarator(*tok))
	for p.expect(TokenComma) != nil {
		tok := p.expectIdentifier()
		if tok == nil {
			break
		}
		node.AddChild(p.parseVarDeclarator(*tok))
	}
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseStatement() *Node {
	switch p.peek().Kind {
	case TokenLBrace:
		return p.parseBlock()
	case TokenSemicolon:
		node := p.startNode(KindEmptyStmt)
		p.advance()
		return p.finishNode(node)
	case TokenIf:
		return p.parseIfStmt()
	case TokenWhile:
		return p.parseWhileStmt()
	case TokenDo:
		return p.parseDoStmt()
	case TokenFor:
		return p.parseForStmt()
	case TokenSwitch:
		return p.parseSwitchStmt()
	case TokenReturn:
		node := p.startNode(KindReturnStmt)
		p.advance()
		if !p.check(TokenSemicolon) {
			node.AddChild(p.parseExpression())
		}
		p.expect(TokenSemicolon)
		return p.finishNode(node)
	case TokenBreak:
		node := p.startNode(KindBreakStmt)
		p.advance()
		if p.isIdentifierLike() {
			tok := p.advance()
			node.AddChild(p.identNode(tok))
		}
		p.expect(TokenSemicolon)
		return p.finishNode(node)
	case TokenContinue:
		node := p.startNode(KindContinueStmt)
		p.advance()
		if p.isIdentifierLike() {
			tok := p.advance()
			node.AddChild(p.identNode(tok))
		}
		p.expect(TokenSemicolon)
		return p.finishNode(node)
	case TokenThrow:
		node := p.startNode(KindThrowStmt)
		p.advance()
		node.AddChild(p.parseExpression())
		p.expect(TokenSemicolon)
		return p.finishNode(node)
	case TokenTry:
		return p.parseTryStmt()
	case TokenSynchronized:
		node := p.startNode(KindSynchronizedStmt)
		p.advance()
		p.expect(TokenLParen)
		node.AddChild(p.parseExpression())
		p.expect(TokenRParen)
		node.AddChild(p.parseBlock())
		return p.finishNode(node)
	case TokenAssert:
		node := p.startNode(KindAssertStmt)
		p.advance()
		node.AddChild(p.parseExpression())
		if p.expect(TokenColon) != nil {
			node.AddChild(p.parseExpression())
		}
		p.expect(TokenSemicolon)
		return p.finishNode(node)
	case TokenYield:
		if isStatementStart(p.peekN(1).Kind) || isExpressionStart(p.peekN(1).Kind) {
			node := p.startNode(KindYieldStmt)
			p.advance()
			node.AddChild(p.parseExpression())
			p.expect(TokenSemicolon)
			return p.finishNode(node)
		}
	}

	// Labeled statement: Ident ':' Statement
	if p.isIdentifierLike() && p.peekN(1).Kind == TokenColon {
		node := p.startNode(KindLabeledStmt)
		tok := p.advance()
		node.AddChild(p.identNode(tok))
		p.advance()
		node.AddChild(p.parseStatement())
		return p.finishNode(node)
	}

	node := p.startNode(KindExprStmt)
	node.AddChild(p.parseExpression())
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func isStatementStart(kind TokenKind) bool {
	switch kind {
	case TokenIdent, TokenThis, TokenSuper, TokenNew, TokenLParen:
		return true
	}
	return false
}

func isExpressionStart(kind TokenKind) bool {
	switch kind {
	case TokenIdent, TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral,
		TokenStringLiteral, TokenTextBlock, TokenTrue, TokenFalse, TokenNull,
		TokenThis, TokenSuper, TokenNew, TokenLParen, TokenNot, TokenBitNot,
		TokenPlus, TokenMinus, TokenIncrement, TokenDecrement:
		return true
	}
	return false
}

func (p *Parser) parseIfStmt() *Node {
	node := p.startNode(KindIfStmt)
	p.expect(TokenIf)
	p.expect(TokenLParen)
	node.AddChild(p.parseExpression())
	p.expect(TokenRParen)
	node.AddChild(p.parseStatement())
	if p.expect(TokenElse) != nil {
		node.AddChild(p.parseStatement())
	}
	return p.finishNode(node)
}

func (p *Parser) parseWhileStmt() *Node {
	node := p.startNode(KindWhileStmt)
	p.expect(TokenWhile)
	p.expect(TokenLParen)
	node.AddChild(p.parseExpression())
	p.expect(TokenRParen)
	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

func (p *Parser) parseDoStmt() *Node {
	node := p.startNode(KindDoStmt)
	p.expect(TokenDo)
	node.AddChild(p.parseStatement())
	p.expect(TokenWhile)
	p.expect(TokenLParen)
	node.AddChild(p.parseExpression())
	p.expect(TokenRParen)
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseForStmt() *Node {
	start := p.peek().Span.Start
	p.expect(TokenFor)
	p.expect(TokenLParen)

	if param, ok := p.tryParseEnhancedForHeader(); ok {
		node := &Node{Kind: KindEnhancedForStmt, Span: Span{Start: start}}
		node.AddChild(param)
		node.AddChild(p.parseExpression())
		p.expect(TokenRParen)
		node.AddChild(p.parseStatement())
		return p.finishNode(node)
	}

	node := &Node{Kind: KindForStmt, Span: Span{Start: start}}
	init := p.startNode(KindForInit)
	if !p.check(TokenSemicolon) {
		if p.check(TokenFinal) || p.isPrimitiveType() ||
			(p.check(TokenVar) && isIdentifierKind(p.peekN(1).Kind)) ||
			p.isLocalVarDeclAhead() {
			init.AddChild(p.parseForVarDecl())
		} else {
			for {
				init.AddChild(p.parseExpression())
				if p.expect(TokenComma) == nil {
					break
				}
			}
			p.expect(TokenSemicolon)
		}
	} else {
		p.advance()
	}
	node.AddChild(p.finishNode(init))

	if !p.check(TokenSemicolon) {
		node.AddChild(p.parseExpression())
	}
	p.expect(TokenSemicolon)

	update := p.startNode(KindForUpdate)
	if !p.check(TokenRParen) {
		for {
			update.AddChild(p.parseExpression())
			if p.expect(TokenComma) == nil {
				break
			}
		}
	}
	node.AddChild(p.finishNode(update))
	p.expect(TokenRParen)
	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

// parseForVarDecl parses the variable declaration of a basic for header,
// consuming the terminating semicolon.
func (p *Parser) parseForVarDecl() *Node {
	node := p.startNode(KindLocalVarDecl)
	if mods := p.parseModifiers(); mods != nil {
		node.AddChild(mods)
	}
	node.AddChild(p.parseType())
	tok := p.expectIdentifier()
	if tok == nil {
		p.expect(TokenSemicolon)
		return p.finishNode(node)
	}
	node.AddChild(p.parseVarDeclarator(*tok))
	for p.expect(TokenComma) != nil {
		tok := p.expectIdentifier()
		if tok == nil {
			break
		}
		node.AddChild(p.parseVarDeclarator(*tok))
	}
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) tryParseEnhancedForHeader() (*Node, bool) {
	save := p.pos
	pendingGT := p.pendingGT
	incomplete := p.incomplete
	param := p.startNode(KindParameter)
	if mods := p.parseModifiers(); mods != nil {
		param.AddChild(mods)
	}
	if !p.isPrimitiveType() && !p.isIdentifierLike() {
		p.pos = save
		p.pendingGT = pendingGT
		p.incomplete = incomplete
		return nil, false
	}
	param.AddChild(p.parseType())
	tok := p.expectIdentifier()
	if tok == nil || !p.check(TokenColon) {
		p.pos = save
		p.pendingGT = pendingGT
		p.incomplete = incomplete
		return nil, false
	}
	param.AddChild(p.identNode(*tok))
	p.advance()
	return p.finishNode(param), true
}

func (p *Parser) parseSwitchStmt() *Node {
	node := p.startNode(KindSwitchStmt)
	p.expect(TokenSwitch)
	p.expect(TokenLParen)
	node.AddChild(p.parseExpression())
	p.expect(TokenRParen)
	p.expect(TokenLBrace)
	for p.match(TokenCase, TokenDefault) {
		node.AddChild(p.parseSwitchCase())
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseSwitchCase() *Node {
	node := p.startNode(KindSwitchCase)
	tok := p.advance() // case or default
	node.Token = &tok
	if tok.Kind == TokenCase {
		for {
			node.AddChild(p.parseExpression())
			if p.expect(TokenComma) == nil {
				break
			}
		}
	}
	p.expect(TokenColon)
	for !p.match(TokenCase, TokenDefault, TokenRBrace, TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseBlockStatement())
		if !progress() {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseTryStmt() *Node {
	node := p.startNode(KindTryStmt)
	p.expect(TokenTry)
	if p.check(TokenLParen) {
		node.AddChild(p.parseResourceList())
	}
	node.AddChild(p.parseBlock())
	for p.check(TokenCatch) {
		node.AddChild(p.parseCatchClause())
	}
	if p.check(TokenFinally) {
		fin := p.startNode(KindFinallyClause)
		p.advance()
		fin.AddChild(p.parseBlock())
		node.AddChild(p.finishNode(fin))
	}
	return p.finishNode(node)
}

func (p *Parser) parseResourceList() *Node {
	node := p.startNode(KindResourceList)
	p.expect(TokenLParen)
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		res := p.startNode(KindLocalVarDecl)
		if mods := p.parseModifiers(); mods != nil {
			res.AddChild(mods)
		}
		res.AddChild(p.parseType())
		if tok := p.expectIdentifier(); tok != nil {
			res.AddChild(p.parseVarDeclarator(*tok))
		}
		node.AddChild(p.finishNode(res))
		if !progress() {
			break
		}
		if p.expect(TokenSemicolon) == nil {
			break
		}
	}
	p.expect(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseCatchClause() *Node {
	node := p.startNode(KindCatchClause)
	p.expect(TokenCatch)
	p.expect(TokenLParen)
	param := p.startNode(KindParameter)
	if mods := p.parseModifiers(); mods != nil {
		param.AddChild(mods)
	}
	for {
		param.AddChild(p.parseClassType())
		if p.expect(TokenBitOr) == nil {
			break
		}
	}
	if tok := p.expectIdentifier(); tok != nil {
		param.AddChild(p.identNode(*tok))
	}
	node.AddChild(p.finishNode(param))
	p.expect(TokenRParen)
	node.AddChild(p.parseBlock())
	return p.finishNode(node)
}

// --- Expressions ---

func (p *Parser) parseExpression() *Node {
	if node, ok := p.tryParseLambda(); ok {
		return node
	}
	return p.parseAssignment()
}

func (p *Parser) tryParseLambda() (*Node, bool) {
	if p.isIdentifierLike() && p.peekN(1).Kind == TokenArrow {
		node := p.startNode(KindLambdaExpr)
		params := p.startNode(KindParameters)
		tok := p.advance()
		params.AddChild(p.identNode(tok))
		node.AddChild(p.finishNode(params))
		p.expect(TokenArrow)
		if p.check(TokenLBrace) {
			node.AddChild(p.parseBlock())
		} else {
			node.AddChild(p.parseExpression())
		}
		return p.finishNode(node), true
	}
	if p.check(TokenLParen) && p.isLambdaAhead() {
		node := p.startNode(KindLambdaExpr)
		node.AddChild(p.parseLambdaParameters())
		p.expect(TokenArrow)
		if p.check(TokenLBrace) {
			node.AddChild(p.parseBlock())
		} else {
			node.AddChild(p.parseExpression())
		}
		return p.finishNode(node), true
	}
	return nil, false
}

// isLambdaAhead scans from the current '(' to its matching ')' and reports
// whether the next token is '->'.
func (p *Parser) isLambdaAhead() bool {
	depth := 0
	i := 0
	for {
		tok := p.peekN(i)
		switch tok.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return p.peekN(i + 1).Kind == TokenArrow
			}
		case TokenEOF, TokenSemicolon, TokenLBrace:
			return false
		}
		i++
	}
}

func (p *Parser) parseLambdaParameters() *Node {
	node := p.startNode(KindParameters)
	p.expect(TokenLParen)
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		if p.isIdentifierLike() && (p.peekN(1).Kind == TokenComma || p.peekN(1).Kind == TokenRParen) {
			tok := p.advance()
			node.AddChild(p.identNode(tok))
		} else {
			node.AddChild(p.parseParameter())
		}
		if p.expect(TokenComma) == nil {
			break
		}
	}
	p.expect(TokenRParen)
	return p.finishNode(node)
}

var assignOps = []TokenKind{
	TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign,
	TokenSlashAssign, TokenPercentAssign, TokenAndAssign, TokenOrAssign,
	TokenXorAssign, TokenShlAssign, TokenShrAssign, TokenUShrAssign,
}

func (p *Parser) parseAssignment() *Node {
	lhs := p.parseTernary()
	if p.match(assignOps...) {
		tok := p.advance()
		node := &Node{Kind: KindAssignExpr, Token: &tok, Span: Span{Start: lhs.Span.Start}}
		node.AddChild(lhs)
		node.AddChild(p.parseExpression())
		return p.finishNode(node)
	}
	return lhs
}

func (p *Parser) parseTernary() *Node {
	cond := p.parseBinary(0)
	if !p.check(TokenQuestion) {
		return cond
	}
	p.advance()
	node := &Node{Kind: KindTernaryExpr, Span: Span{Start: cond.Span.Start}}
	node.AddChild(cond)
	node.AddChild(p.parseExpression())
	p.expect(TokenColon)
	node.AddChild(p.parseExpression())
	return p.finishNode(node)
}

// binaryPrecedence orders the binary operator tiers from weakest ("||") to
// strongest ("*"). instanceof sits in the relational tier and is handled
// specially because its right operand is a type.
var binaryPrecedence = [][]TokenKind{
	{TokenOr},
	{TokenAnd},
	{TokenBitOr},
	{TokenBitXor},
	{TokenBitAnd},
	{TokenEQ, TokenNE},
	{TokenLT, TokenGT, TokenLE, TokenGE, TokenInstanceof},
	{TokenShl, TokenShr, TokenUShr},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash, TokenPercent},
}

func (p *Parser) parseBinary(level int) *Node {
	if level >= len(binaryPrecedence) {
		return p.parseUnary()
	}
	lhs := p.parseBinary(level + 1)
	for p.match(binaryPrecedence[level]...) {
		if p.check(TokenInstanceof) {
			p.advance()
			node := &Node{Kind: KindInstanceofExpr, Span: Span{Start: lhs.Span.Start}}
			node.AddChild(lhs)
			typ := p.parseType()
			if p.isIdentifierLike() {
				pattern := &Node{Kind: KindTypePattern, Span: Span{Start: typ.Span.Start}}
				pattern.AddChild(typ)
				tok := p.advance()
				pattern.AddChild(p.identNode(tok))
				node.AddChild(p.finishNode(pattern))
			} else {
				node.AddChild(typ)
			}
			lhs = p.finishNode(node)
			continue
		}
		tok := p.advance()
		node := &Node{Kind: KindBinaryExpr, Token: &tok, Span: Span{Start: lhs.Span.Start}}
		node.AddChild(lhs)
		node.AddChild(p.parseBinary(level + 1))
		lhs = p.finishNode(node)
	}
	return lhs
}

func (p *Parser) parseUnary() *Node {
	switch p.peek().Kind {
	case TokenPlus, TokenMinus, TokenNot, TokenBitNot:
		node := p.startNode(KindUnaryExpr)
		tok := p.advance()
		node.Token = &tok
		node.AddChild(p.parseUnary())
		return p.finishNode(node)
	case TokenIncrement, TokenDecrement:
		node := p.startNode(KindUnaryExpr)
		tok := p.advance()
		node.Token = &tok
		node.AddChild(p.parseUnary())
		return p.finishNode(node)
	case TokenLParen:
		if node, ok := p.tryParseCast(); ok {
			return node
		}
	}
	return p.parsePostfix()
}

// tryParseCast commits to a cast when the parenthesized prefix parses as a
// type and the following token can begin a cast operand. Per the language
// grammar, "(name) - x" stays a subtraction; only primitive casts accept a
// following +/-.
func (p *Parser) tryParseCast() (*Node, bool) {
	save := p.pos
	pendingGT := p.pendingGT
	incomplete := p.incomplete
	start := p.peek().Span.Start
	p.advance() // (

	primitive := p.isPrimitiveType() && p.peek().Kind != TokenVoid
	if !primitive && !p.isIdentifierLike() {
		p.pos = save
		p.pendingGT = pendingGT
		p.incomplete = incomplete
		return nil, false
	}
	typ := p.parseType()
	if typ.IsError() || p.expect(TokenRParen) == nil {
		p.pos = save
		p.pendingGT = pendingGT
		p.incomplete = incomplete
		return nil, false
	}

	next := p.peek().Kind
	ok := false
	switch next {
	case TokenIdent, TokenVar, TokenYield, TokenIntLiteral, TokenFloatLiteral,
		TokenCharLiteral, TokenStringLiteral, TokenTextBlock, TokenTrue,
		TokenFalse, TokenNull, TokenLParen, TokenNot, TokenBitNot,
		TokenThis, TokenSuper, TokenNew:
		ok = true
	case TokenPlus, TokenMinus, TokenIncrement, TokenDecrement:
		ok = primitive
	}
	if !ok {
		p.pos = save
		p.pendingGT = pendingGT
		p.incomplete = incomplete
		return nil, false
	}

	node := &Node{Kind: KindCastExpr, Span: Span{Start: start}}
	node.AddChild(typ)
	node.AddChild(p.parseUnary())
	return p.finishNode(node), true
}

func (p *Parser) parsePostfix() *Node {
	expr := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case TokenDot:
			next := p.peekN(1)
			if isIdentifierKind(next.Kind) {
				p.advance()
				nameTok := p.advance()
				if p.check(TokenLParen) {
					node := &Node{Kind: KindCallExpr, Span: Span{Start: expr.Span.Start}}
					node.AddChild(expr)
					node.AddChild(p.identNode(nameTok))
					node.AddChild(p.parseArguments())
					expr = p.finishNode(node)
				} else {
					node := &Node{Kind: KindFieldAccess, Span: Span{Start: expr.Span.Start}}
					node.AddChild(expr)
					node.AddChild(p.identNode(nameTok))
					expr = p.finishNode(node)
				}
				continue
			}
			if next.Kind == TokenClass && expr.Kind == KindAmbiguousName {
				p.advance()
				p.advance()
				node := &Node{Kind: KindClassLiteral, Span: Span{Start: expr.Span.Start}}
				node.AddChild(classTypeFromAmbiguousName(expr))
				expr = p.finishNode(node)
				continue
			}
			if next.Kind == TokenThis {
				p.advance()
				tok := p.advance()
				node := &Node{Kind: KindThis, Token: &tok, Span: Span{Start: expr.Span.Start}}
				node.AddChild(expr)
				expr = p.finishNode(node)
				continue
			}
			return expr
		case TokenLBracket:
			// "Type[]::new" and "Type[].class" keep the brackets in type
			// position; an expression bracket always has content.
			if p.peekN(1).Kind == TokenRBracket {
				if expr.Kind != KindAmbiguousName {
					return expr
				}
				return p.parseArrayTypeSuffix(expr)
			}
			p.advance()
			node := &Node{Kind: KindArrayAccess, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			node.AddChild(p.parseExpression())
			p.expect(TokenRBracket)
			expr = p.finishNode(node)
		case TokenLParen:
			// Explicit constructor invocation: this(args) or super(args).
			if (expr.Kind == KindThis || expr.Kind == KindSuper) && len(expr.Children) == 0 {
				node := &Node{Kind: KindCallExpr, Span: Span{Start: expr.Span.Start}}
				node.AddChild(expr)
				node.AddChild(p.parseArguments())
				expr = p.finishNode(node)
				continue
			}
			return expr
		case TokenIncrement, TokenDecrement:
			tok := p.advance()
			node := &Node{Kind: KindPostfixExpr, Token: &tok, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			expr = p.finishNode(node)
		case TokenColonColon:
			p.advance()
			node := &Node{Kind: KindMethodRef, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			if tok := p.expect(TokenNew); tok != nil {
				node.AddChild(p.identNode(*tok))
			} else if tok := p.expectIdentifier(); tok != nil {
				node.AddChild(p.identNode(*tok))
			}
			expr = p.finishNode(node)
		default:
			return expr
		}
	}
}

func (p *Parser) parseArrayTypeSuffix(expr *Node) *Node {
	typ := classTypeFromAmbiguousName(expr)
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		arr := &Node{Kind: KindArrayType, Span: Span{Start: typ.Span.Start}}
		arr.AddChild(typ)
		p.advance()
		p.advance()
		typ = p.finishNode(arr)
	}
	if p.check(TokenDot) && p.peekN(1).Kind == TokenClass {
		p.advance()
		p.advance()
		node := &Node{Kind: KindClassLiteral, Span: Span{Start: typ.Span.Start}}
		node.AddChild(typ)
		return p.finishNode(node)
	}
	if p.check(TokenColonColon) {
		p.advance()
		node := &Node{Kind: KindMethodRef, Span: Span{Start: typ.Span.Start}}
		node.AddChild(typ)
		if tok := p.expect(TokenNew); tok != nil {
			node.AddChild(p.identNode(*tok))
		} else if tok := p.expectIdentifier(); tok != nil {
			node.AddChild(p.identNode(*tok))
		}
		return p.finishNode(node)
	}
	return typ
}

func classTypeFromAmbiguousName(name *Node) *Node {
	typ := &Node{Kind: KindClassType, Span: name.Span}
	typ.Children = append(typ.Children, name.Children...)
	return typ
}

func (p *Parser) parseArguments() *Node {
	node := p.startNode(KindArguments)
	p.expect(TokenLParen)
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseExpression())
		if !progress() {
			break
		}
		if p.expect(TokenComma) == nil {
			break
		}
	}
	p.expect(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parsePrimary() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral,
		TokenStringLiteral, TokenTextBlock, TokenTrue, TokenFalse, TokenNull:
		node := p.startNode(KindLiteral)
		t := p.advance()
		node.Token = &t
		return p.finishNode(node)

	case TokenThis:
		node := p.startNode(KindThis)
		t := p.advance()
		node.Token = &t
		return p.finishNode(node)

	case TokenSuper:
		node := p.startNode(KindSuper)
		t := p.advance()
		node.Token = &t
		return p.finishNode(node)

	case TokenNew:
		return p.parseCreator()

	case TokenLParen:
		node := p.startNode(KindParenExpr)
		p.advance()
		node.AddChild(p.parseExpression())
		p.expect(TokenRParen)
		return p.finishNode(node)

	case TokenBoolean, TokenByte, TokenChar, TokenShort,
		TokenInt, TokenLong, TokenFloat, TokenDouble, TokenVoid:
		// Primitive class literals: int.class, int[].class
		typ := p.parseType()
		if p.check(TokenDot) && p.peekN(1).Kind == TokenClass {
			p.advance()
			p.advance()
			node := &Node{Kind: KindClassLiteral, Span: Span{Start: typ.Span.Start}}
			node.AddChild(typ)
			return p.finishNode(node)
		}
		return p.errorNode("expected '.class' after primitive type", nil, TokenDot)
	}

	if p.isIdentifierLike() {
		return p.parseNameChain()
	}

	return p.errorNode("expected expression", nil)
}

// parseNameChain collects "a.b.c" identifier chains whose classification
// (package, type, field) requires symbol information. When a segment is
// directly followed by an argument list, the chain up to that segment becomes
// the qualifier of a method call.
func (p *Parser) parseNameChain() *Node {
	node := p.startNode(KindAmbiguousName)
	tok := p.advance()
	node.AddChild(p.identNode(tok))

	for p.check(TokenDot) && isIdentifierKind(p.peekN(1).Kind) && p.peekN(2).Kind != TokenLParen {
		p.advance()
		tok := p.advance()
		node.AddChild(p.identNode(tok))
	}
	p.finishNode(node)

	if len(node.Children) == 1 && p.check(TokenLParen) {
		// Unqualified call: name(args)
		name := node.Children[0]
		call := &Node{Kind: KindCallExpr, Span: Span{Start: node.Span.Start}}
		call.AddChild(name)
		call.AddChild(p.parseArguments())
		return p.finishNode(call)
	}

	return node
}

func (p *Parser) parseCreator() *Node {
	start := p.peek().Span.Start
	p.expect(TokenNew)

	if p.isPrimitiveType() && p.peek().Kind != TokenVoid {
		base := p.startNode(KindPrimitiveType)
		tok := p.advance()
		base.Token = &tok
		p.finishNode(base)
		return p.parseArrayCreatorRest(start, base)
	}

	typ := p.parseClassType()
	if p.check(TokenLBracket) {
		return p.parseArrayCreatorRest(start, typ)
	}

	node := &Node{Kind: KindNewExpr, Span: Span{Start: start}}
	node.AddChild(typ)
	if p.check(TokenLParen) {
		node.AddChild(p.parseArguments())
	}
	if p.check(TokenLBrace) {
		node.AddChild(p.parseClassBody())
	}
	return p.finishNode(node)
}

func (p *Parser) parseArrayCreatorRest(start Position, elem *Node) *Node {
	node := &Node{Kind: KindNewArrayExpr, Span: Span{Start: start}}
	node.AddChild(elem)

	sawExpr := false
	for p.check(TokenLBracket) {
		p.advance()
		if p.check(TokenRBracket) {
			p.advance()
			dim := &Node{Kind: KindArrayType}
			node.AddChild(dim)
			continue
		}
		sawExpr = true
		node.AddChild(p.parseExpression())
		p.expect(TokenRBracket)
	}

	if p.check(TokenLBrace) {
		node.AddChild(p.parseArrayInit())
	} else if !sawExpr {
		node.AddChild(p.errorNode("array creator needs dimensions or initializer", nil, TokenLBracket, TokenLBrace))
	}
	return p.finishNode(node)
}

func (p *Parser) parseArrayInit() *Node {
	node := p.startNode(KindArrayInit)
	p.expect(TokenLBrace)
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		if p.check(TokenLBrace) {
			node.AddChild(p.parseArrayInit())
		} else {
			node.AddChild(p.parseExpression())
		}
		if !progress() {
			break
		}
		if p.expect(TokenComma) == nil {
			break
		}
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}
