package parser

import (
	"strings"
	"testing"
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"42", KindLiteral},
		{"3.14", KindLiteral},
		{`"hello"`, KindLiteral},
		{"'a'", KindLiteral},
		{"true", KindLiteral},
		{"null", KindLiteral},
		{"x", KindAmbiguousName},
		{"a.b.c", KindAmbiguousName},
		{"x + y", KindBinaryExpr},
		{"x * y + z", KindBinaryExpr},
		{"x << 2", KindBinaryExpr},
		{"-x", KindUnaryExpr},
		{"!x", KindUnaryExpr},
		{"~x", KindUnaryExpr},
		{"++x", KindUnaryExpr},
		{"x++", KindPostfixExpr},
		{"a ? b : c", KindTernaryExpr},
		{"x = 5", KindAssignExpr},
		{"x += 5", KindAssignExpr},
		{"(x)", KindParenExpr},
		{"(x) - y", KindBinaryExpr},
		{"this", KindThis},
		{"this.field", KindFieldAccess},
		{"super.field", KindFieldAccess},
		{"foo()", KindCallExpr},
		{"obj.method()", KindCallExpr},
		{"a.b.c()", KindCallExpr},
		{"this()", KindCallExpr},
		{"super(1)", KindCallExpr},
		{"arr[0]", KindArrayAccess},
		{"new Foo()", KindNewExpr},
		{"new Foo<>()", KindNewExpr},
		{"new int[10]", KindNewArrayExpr},
		{"new String[] {}", KindNewArrayExpr},
		{"x -> x + 1", KindLambdaExpr},
		{"(a, b) -> a + b", KindLambdaExpr},
		{"() -> 42", KindLambdaExpr},
		{"obj::method", KindMethodRef},
		{"String::valueOf", KindMethodRef},
		{"Foo::new", KindMethodRef},
		{"x instanceof Foo", KindInstanceofExpr},
		{"x instanceof Foo f", KindInstanceofExpr},
		{"(int) x", KindCastExpr},
		{"(Foo) x", KindCastExpr},
		{"(int) -x", KindCastExpr},
		{"String.class", KindClassLiteral},
		{"String[].class", KindClassLiteral},
		{"int.class", KindClassLiteral},
		{"int[].class", KindClassLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := ParseExpression(strings.NewReader(tt.input))
			node := p.Finish()
			if node == nil {
				t.Fatal("got nil node")
			}
			if node.Kind != tt.kind {
				t.Errorf("got %v, want %v", node.Kind, tt.kind)
			}
		})
	}
}

func TestParseAmbiguousNames(t *testing.T) {
	t.Run("plain chain keeps all segments", func(t *testing.T) {
		p := ParseExpression(strings.NewReader("a.b.c.d"))
		node := p.Finish()
		if node.Kind != KindAmbiguousName {
			t.Fatalf("got %v, want AmbiguousName", node.Kind)
		}
		if len(node.Children) != 4 {
			t.Fatalf("got %d segments, want 4", len(node.Children))
		}
		want := []string{"a", "b", "c", "d"}
		for i, seg := range node.Children {
			if seg.TokenLiteral() != want[i] {
				t.Errorf("segment %d: got %q, want %q", i, seg.TokenLiteral(), want[i])
			}
		}
	})

	t.Run("call splits qualifier off the chain", func(t *testing.T) {
		p := ParseExpression(strings.NewReader("a.b.c(1, 2)"))
		node := p.Finish()
		if node.Kind != KindCallExpr {
			t.Fatalf("got %v, want CallExpr", node.Kind)
		}
		if len(node.Children) != 3 {
			t.Fatalf("got %d children, want 3", len(node.Children))
		}
		qual := node.Children[0]
		if qual.Kind != KindAmbiguousName || len(qual.Children) != 2 {
			t.Errorf("qualifier: got %v with %d segments, want AmbiguousName with 2", qual.Kind, len(qual.Children))
		}
		if node.Children[1].TokenLiteral() != "c" {
			t.Errorf("method name: got %q, want %q", node.Children[1].TokenLiteral(), "c")
		}
		args := node.Children[2]
		if args.Kind != KindArguments || len(args.Children) != 2 {
			t.Errorf("arguments: got %v with %d children", args.Kind, len(args.Children))
		}
	})

	t.Run("unqualified call has no qualifier", func(t *testing.T) {
		p := ParseExpression(strings.NewReader("foo(x)"))
		node := p.Finish()
		if node.Kind != KindCallExpr {
			t.Fatalf("got %v, want CallExpr", node.Kind)
		}
		if len(node.Children) != 2 {
			t.Fatalf("got %d children, want 2", len(node.Children))
		}
		if node.Children[0].Kind != KindIdentifier {
			t.Errorf("got %v, want Identifier", node.Children[0].Kind)
		}
	})

	t.Run("field access on call result is not ambiguous", func(t *testing.T) {
		p := ParseExpression(strings.NewReader("foo().bar"))
		node := p.Finish()
		if node.Kind != KindFieldAccess {
			t.Fatalf("got %v, want FieldAccess", node.Kind)
		}
		if node.Children[0].Kind != KindCallExpr {
			t.Errorf("qualifier: got %v, want CallExpr", node.Children[0].Kind)
		}
	})
}

func TestParsePrecedence(t *testing.T) {
	p := ParseExpression(strings.NewReader("x * y + z"))
	node := p.Finish()
	if node.Kind != KindBinaryExpr {
		t.Fatalf("got %v, want BinaryExpr", node.Kind)
	}
	if node.Token == nil || node.Token.Kind != TokenPlus {
		t.Errorf("root operator: got %v, want +", node.Token)
	}
	left := node.Children[0]
	if left.Kind != KindBinaryExpr || left.Token.Kind != TokenStar {
		t.Errorf("left: got %v %v, want BinaryExpr *", left.Kind, left.Token)
	}
}

func TestParseCompilationUnit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty class", "class Foo {}"},
		{"class with package", "package com.example;\nclass Foo {}"},
		{"class with import", "import java.util.List;\nclass Foo {}"},
		{"static import", "import static java.util.Collections.emptyList;\nclass Foo {}"},
		{"star import", "import java.util.*;\nclass Foo {}"},
		{"class with field", "class Foo { int x; }"},
		{"class with method", "class Foo { void bar() {} }"},
		{"class with constructor", "class Foo { Foo() {} }"},
		{"public class", "public class Foo {}"},
		{"class extends", "class Foo extends Bar {}"},
		{"class implements", "class Foo implements Bar, Baz {}"},
		{"generic class", "class Foo<T> {}"},
		{"bounded type param", "class Foo<T extends Comparable<T>> {}"},
		{"intersection bound", "class Foo<T extends A & B> {}"},
		{"interface", "interface Foo {}"},
		{"interface extends", "interface Foo extends Bar, Baz {}"},
		{"enum", "enum Color { RED, GREEN, BLUE }"},
		{"enum with members", "enum Color { RED, GREEN; int code() { return 0; } }"},
		{"enum constant with args", "enum Planet { EARTH(5.97e24) ; Planet(double mass) {} }"},
		{"annotation decl", "@interface Marker {}"},
		{"annotation element", "@interface Opts { String value() default \"\"; }"},
		{"method with params", "class Foo { void bar(int x, String y) {} }"},
		{"varargs method", "class Foo { void bar(String... args) {} }"},
		{"method with throws", "class Foo { void bar() throws Exception {} }"},
		{"generic method", "class Foo { <T> T id(T x) { return x; } }"},
		{"field with initializer", "class Foo { int x = 5; }"},
		{"multi declarator field", "class Foo { int x = 1, y = 2; }"},
		{"static field", "class Foo { static int x; }"},
		{"annotated class", "@Deprecated public class Foo {}"},
		{"annotation with args", "@SuppressWarnings(\"unchecked\") class Foo {}"},
		{"static initializer", "class Foo { static { } }"},
		{"instance initializer", "class Foo { { } }"},
		{"nested class", "class Foo { class Inner {} }"},
		{"nested interface", "class Foo { interface Inner {} }"},
		{"abstract method", "abstract class Foo { abstract void m(); }"},
		{"default method", "interface Foo { default int m() { return 1; } }"},
		{"array field", "class Foo { int[] xs; }"},
		{"generic field", "class Foo { Map<String, List<String>> index; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseCompilationUnit(strings.NewReader(tt.input), WithFile("test.java"))
			node := p.Finish()
			if node == nil {
				t.Fatal("got nil node")
			}
			if node.Kind != KindCompilationUnit {
				t.Errorf("got %v, want CompilationUnit", node.Kind)
			}
			if hasError(node) {
				t.Errorf("parse error in: %s", tt.input)
				printErrors(t, node, 0)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"if stmt", "class Foo { void m() { if (true) {} } }"},
		{"if-else stmt", "class Foo { void m() { if (true) {} else {} } }"},
		{"for stmt", "class Foo { void m() { for (int i = 0; i < 10; i++) {} } }"},
		{"bare for", "class Foo { void m() { for (;;) {} } }"},
		{"enhanced for", "class Foo { void m() { for (var x : list) {} } }"},
		{"enhanced for typed", "class Foo { void m() { for (String s : names) {} } }"},
		{"while stmt", "class Foo { void m() { while (true) {} } }"},
		{"do-while stmt", "class Foo { void m() { do {} while (true); } }"},
		{"switch stmt", "class Foo { void m() { switch (x) { case 1: break; default: break; } } }"},
		{"switch multi label", "class Foo { void m() { switch (x) { case 1, 2: break; } } }"},
		{"try-catch", "class Foo { void m() { try {} catch (Exception e) {} } }"},
		{"try multicatch", "class Foo { void m() { try {} catch (A | B e) {} } }"},
		{"try-finally", "class Foo { void m() { try {} finally {} } }"},
		{"try-with-resources", "class Foo { void m() { try (var r = open()) {} } }"},
		{"return stmt", "class Foo { int m() { return 1; } }"},
		{"throw stmt", "class Foo { void m() { throw new Exception(); } }"},
		{"assert stmt", "class Foo { void m() { assert x > 0; } }"},
		{"assert with message", "class Foo { void m() { assert x > 0 : \"bad\"; } }"},
		{"synchronized stmt", "class Foo { void m() { synchronized (this) {} } }"},
		{"labeled stmt", "class Foo { void m() { loop: for (;;) {} } }"},
		{"break label", "class Foo { void m() { loop: for (;;) { break loop; } } }"},
		{"local var", "class Foo { void m() { int x = 5; } }"},
		{"local var infer", "class Foo { void m() { var x = 5; } }"},
		{"local generic var", "class Foo { void m() { List<String> xs = new ArrayList<>(); } }"},
		{"local class", "class Foo { void m() { class Inner {} } }"},
		{"final local class", "class Foo { void m() { final class Inner {} } }"},
		{"annotated local", "class Foo { void m() { @A int x = 0; } }"},
		{"expr stmt", "class Foo { void m() { a.b.c(); } }"},
		{"assignment stmt", "class Foo { void m() { x = 5; } }"},
		{"array assign", "class Foo { void m() { a[0] = 1; } }"},
		{"instanceof pattern", "class Foo { void m() { if (x instanceof String s) {} } }"},
		{"ctor chain this", "class Foo { Foo() { this(1); } Foo(int x) {} }"},
		{"ctor chain super", "class Foo { Foo() { super(); } }"},
		{"anonymous class", "class Foo { void m() { r = new Runnable() { public void run() {} }; } }"},
		{"array init", "class Foo { void m() { String[] names = {\"a\", \"b\"}; } }"},
		{"class literal in if", "class Foo { void m() { if (String.class.equals(x)) {} } }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseCompilationUnit(strings.NewReader(tt.input))
			node := p.Finish()
			if node == nil {
				t.Fatal("got nil node")
			}
			if hasError(node) {
				t.Errorf("parse error in: %s", tt.input)
				printErrors(t, node, 0)
			}
		})
	}
}

func TestDiamondOperator(t *testing.T) {
	p := ParseExpression(strings.NewReader("new ArrayList<>()"))
	node := p.Finish()
	if node.Kind != KindNewExpr {
		t.Fatalf("got %v, want NewExpr", node.Kind)
	}
	typ := node.FirstChildOfKind(KindClassType)
	if typ == nil {
		t.Fatal("missing class type")
	}
	args := typ.FirstChildOfKind(KindTypeArguments)
	if args == nil {
		t.Fatal("missing type arguments")
	}
	if len(args.Children) != 0 {
		t.Errorf("diamond should be empty, got %d children", len(args.Children))
	}
}

func TestNestedGenerics(t *testing.T) {
	input := "class Foo { void m() { Map<String, List<String>> index = new HashMap<>(); } }"
	p := ParseCompilationUnit(strings.NewReader(input))
	node := p.Finish()
	if node == nil {
		t.Fatal("got nil node")
	}
	if hasError(node) {
		t.Error("parse error in nested generics")
		printErrors(t, node, 0)
	}
}

func TestPositionTracking(t *testing.T) {
	input := "class Foo {\n    int x;\n}"
	p := ParseCompilationUnit(strings.NewReader(input), WithFile("test.java"))
	node := p.Finish()

	if node.Span.Start.Line != 1 {
		t.Errorf("start line: got %d, want 1", node.Span.Start.Line)
	}
	if node.Span.Start.Column != 1 {
		t.Errorf("start column: got %d, want 1", node.Span.Start.Column)
	}
	field := node.Children[0].FirstChildOfKind(KindClassBody).FirstChildOfKind(KindFieldDecl)
	if field == nil {
		t.Fatal("missing field decl")
	}
	if field.Span.Start.Line != 2 {
		t.Errorf("field line: got %d, want 2", field.Span.Start.Line)
	}
}

func TestParseComments(t *testing.T) {
	input := "// header\nclass Foo {\n    /* doc */ int x;\n}"
	p := ParseCompilationUnit(strings.NewReader(input), WithComments())
	node := p.Finish()
	if node == nil {
		t.Fatal("got nil node")
	}
	comments := p.Comments()
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].Kind != TokenLineComment || comments[1].Kind != TokenComment {
		t.Errorf("comment kinds: got %v, %v", comments[0].Kind, comments[1].Kind)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing member name", "class Foo { int }"},
		{"missing if condition", "class Foo { void m() { if } }"},
		{"garbage member", "class Foo { ??? int x; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseCompilationUnit(strings.NewReader(tt.input))
			node := p.Finish()
			if node == nil {
				t.Fatal("got nil node, want tree with error nodes")
			}
			if !hasError(node) {
				t.Errorf("expected error nodes in: %s", tt.input)
			}
		})
	}
}

func TestParseIncompleteInput(t *testing.T) {
	p := ParseCompilationUnit(strings.NewReader("class Foo { int"))
	if node := p.Finish(); node != nil {
		t.Errorf("got %v, want nil for input cut off mid-declaration", node.Kind)
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := ParseCompilationUnit(strings.NewReader(""))
	if node := p.Finish(); node != nil {
		t.Errorf("got %v, want nil for empty input", node.Kind)
	}
}

func TestComplexJavaFile(t *testing.T) {
	input := `
package com.example;

import java.util.List;
import java.util.ArrayList;

/**
 * A sample class.
 */
@SuppressWarnings("unchecked")
public class Example<T extends Comparable<T>> implements Runnable {
    private static final int MAX = 100;
    private List<T> items = new ArrayList<>();

    public Example() {
        this.items = new ArrayList<>();
    }

    public void add(T item) {
        if (items.size() < MAX) {
            items.add(item);
        }
    }

    @Override
    public void run() {
        for (T item : items) {
            System.out.println(item);
        }
    }

    public static void main(String[] args) {
        var example = new Example<String>();
        example.add("Hello");
        example.run();
    }
}
`
	p := ParseCompilationUnit(strings.NewReader(input), WithFile("Example.java"))
	node := p.Finish()

	if node == nil {
		t.Fatal("got nil node")
	}
	if node.Kind != KindCompilationUnit {
		t.Errorf("got %v, want CompilationUnit", node.Kind)
	}
	if hasError(node) {
		t.Error("parse error in complex file")
		printErrors(t, node, 0)
	}
}

func hasError(node *Node) bool {
	if node == nil {
		return false
	}
	if node.Kind == KindError {
		return true
	}
	for _, child := range node.Children {
		if hasError(child) {
			return true
		}
	}
	return false
}

func printErrors(t *testing.T, node *Node, depth int) {
	if node == nil {
		return
	}
	if node.Kind == KindError && node.Error != nil {
		t.Logf("%s error: %s at line %d", strings.Repeat("  ", depth), node.Error.Message, node.Span.Start.Line)
	}
	for _, child := range node.Children {
		printErrors(t, child, depth+1)
	}
}
