package parser

type NodeKind int

const (
	KindError NodeKind = iota

	// Compilation unit level
	KindCompilationUnit
	KindPackageDecl
	KindImportDecl

	// Type declarations
	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindAnnotationDecl
	KindEnumConstant
	KindClassBody

	// Members
	KindFieldDecl
	KindMethodDecl
	KindConstructorDecl
	KindInitializer

	// Modifiers, annotations, generics
	KindModifiers
	KindAnnotation
	KindTypeParameters
	KindTypeParameter
	KindTypeArguments
	KindExtendsClause
	KindImplementsClause

	// Type references
	KindPrimitiveType
	KindClassType
	KindArrayType
	KindWildcard
	KindVarType

	// Method components
	KindParameters
	KindParameter
	KindThrowsList

	// Statements
	KindBlock
	KindEmptyStmt
	KindExprStmt
	KindLocalVarDecl
	KindVarDeclarator
	KindLocalClassDecl
	KindIfStmt
	KindWhileStmt
	KindDoStmt
	KindForStmt
	KindForInit
	KindForUpdate
	KindEnhancedForStmt
	KindSwitchStmt
	KindSwitchCase
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindThrowStmt
	KindTryStmt
	KindResourceList
	KindCatchClause
	KindFinallyClause
	KindSynchronizedStmt
	KindAssertStmt
	KindLabeledStmt
	KindYieldStmt

	// Expressions
	KindAssignExpr
	KindTernaryExpr
	KindBinaryExpr
	KindUnaryExpr
	KindPostfixExpr
	KindCastExpr
	KindInstanceofExpr
	KindTypePattern
	KindCallExpr
	KindArguments
	KindFieldAccess
	KindArrayAccess
	KindNewExpr
	KindNewArrayExpr
	KindArrayInit
	KindLambdaExpr
	KindMethodRef
	KindParenExpr
	KindLiteral
	KindIdentifier
	KindQualifiedName
	KindThis
	KindSuper
	KindClassLiteral

	// Name chains whose meaning (package, type, or value access) is not
	// decidable at parse time. Semantic analysis rewrites these in place.
	KindAmbiguousName

	// Produced by the disambiguation rewrite, never by the parser.
	KindPackageName
	KindTypeAccess
	KindVarAccess
)

var nodeKindNames = map[NodeKind]string{
	KindError:            "Error",
	KindCompilationUnit:  "CompilationUnit",
	KindPackageDecl:      "PackageDecl",
	KindImportDecl:       "ImportDecl",
	KindClassDecl:        "ClassDecl",
	KindInterfaceDecl:    "InterfaceDecl",
	KindEnumDecl:         "EnumDecl",
	KindAnnotationDecl:   "AnnotationDecl",
	KindEnumConstant:     "EnumConstant",
	KindClassBody:        "ClassBody",
	KindFieldDecl:        "FieldDecl",
	KindMethodDecl:       "MethodDecl",
	KindConstructorDecl:  "ConstructorDecl",
	KindInitializer:      "Initializer",
	KindModifiers:        "Modifiers",
	KindAnnotation:       "Annotation",
	KindTypeParameters:   "TypeParameters",
	KindTypeParameter:    "TypeParameter",
	KindTypeArguments:    "TypeArguments",
	KindExtendsClause:    "ExtendsClause",
	KindImplementsClause: "ImplementsClause",
	KindPrimitiveType:    "PrimitiveType",
	KindClassType:        "ClassType",
	KindArrayType:        "ArrayType",
	KindWildcard:         "Wildcard",
	KindVarType:          "VarType",
	KindParameters:       "Parameters",
	KindParameter:        "Parameter",
	KindThrowsList:       "ThrowsList",
	KindBlock:            "Block",
	KindEmptyStmt:        "EmptyStmt",
	KindExprStmt:         "ExprStmt",
	KindLocalVarDecl:     "LocalVarDecl",
	KindVarDeclarator:    "VarDeclarator",
	KindLocalClassDecl:   "LocalClassDecl",
	KindIfStmt:           "IfStmt",
	KindWhileStmt:        "WhileStmt",
	KindDoStmt:           "DoStmt",
	KindForStmt:          "ForStmt",
	KindForInit:          "ForInit",
	KindForUpdate:        "ForUpdate",
	KindEnhancedForStmt:  "EnhancedForStmt",
	KindSwitchStmt:       "SwitchStmt",
	KindSwitchCase:       "SwitchCase",
	KindReturnStmt:       "ReturnStmt",
	KindBreakStmt:        "BreakStmt",
	KindContinueStmt:     "ContinueStmt",
	KindThrowStmt:        "ThrowStmt",
	KindTryStmt:          "TryStmt",
	KindResourceList:     "ResourceList",
	KindCatchClause:      "CatchClause",
	KindFinallyClause:    "FinallyClause",
	KindSynchronizedStmt: "SynchronizedStmt",
	KindAssertStmt:       "AssertStmt",
	KindLabeledStmt:      "LabeledStmt",
	KindYieldStmt:        "YieldStmt",
	KindAssignExpr:       "AssignExpr",
	KindTernaryExpr:      "TernaryExpr",
	KindBinaryExpr:       "BinaryExpr",
	KindUnaryExpr:        "UnaryExpr",
	KindPostfixExpr:      "PostfixExpr",
	KindCastExpr:         "CastExpr",
	KindInstanceofExpr:   "InstanceofExpr",
	KindTypePattern:      "TypePattern",
	KindCallExpr:         "CallExpr",
	KindArguments:        "Arguments",
	KindFieldAccess:      "FieldAccess",
	KindArrayAccess:      "ArrayAccess",
	KindNewExpr:          "NewExpr",
	KindNewArrayExpr:     "NewArrayExpr",
	KindArrayInit:        "ArrayInit",
	KindLambdaExpr:       "LambdaExpr",
	KindMethodRef:        "MethodRef",
	KindParenExpr:        "ParenExpr",
	KindLiteral:          "Literal",
	KindIdentifier:       "Identifier",
	KindQualifiedName:    "QualifiedName",
	KindThis:             "This",
	KindSuper:            "Super",
	KindClassLiteral:     "ClassLiteral",
	KindAmbiguousName:    "AmbiguousName",
	KindPackageName:      "PackageName",
	KindTypeAccess:       "TypeAccess",
	KindVarAccess:        "VarAccess",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Error struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Walk calls fn for n and every descendant, top-down. If fn returns false
// the children of that node are skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

func (n *Node) String() string {
	return n.stringIndent(0, false)
}

func (n *Node) StringWithPositions() string {
	return n.stringIndent(0, true)
}

func (n *Node) stringIndent(indent int, showPositions bool) string {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}

	result := prefix + n.Kind.String()
	if showPositions {
		result += " [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]"
	}
	if n.Token != nil {
		result += " " + n.Token.Literal
	}
	if n.Error != nil {
		result += " ERROR: " + n.Error.Message
	}
	result += "\n"

	for _, child := range n.Children {
		result += child.stringIndent(indent+1, showPositions)
	}
	return result
}
