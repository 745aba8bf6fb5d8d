package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

func runUsage(t *testing.T, src string) (*scopeHarness, []string) {
	t.Helper()
	h := runScopes(t, src)
	h.disambiguate()
	var warnings []string
	warn := func(n *parser.Node, format string, args ...any) {
		warnings = append(warnings, format)
	}
	inf := types.NewInferrer(h.ts, h.res, h.store, scopeTable{info: h.info}, nil, warn)
	patchVarTypes(h.info, inf)
	resolveUsage(h.unit, h.info, inf)
	return h, warnings
}

func methodNamed(t *testing.T, cls *symbols.ClassSymbol, name string) *symbols.MethodSymbol {
	t.Helper()
	for _, m := range cls.Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("class %s has no method %q", cls, name)
	return nil
}

func TestUsageRecordsEveryKindOfUse(t *testing.T) {
	h, _ := runUsage(t, `
package p;
class A {
    int count;
    A() { count = 1; }
    A(int seed) { this(); }
    int twice(int v) { return v + v; }
    int read() { return count; }
    A spawn() { return new A(); }
    int call() { return twice(3); }
}`)

	a := h.class(t, "A")

	twice := methodNamed(t, a, "twice")
	require.Len(t, twice.Params, 1)
	assert.Len(t, h.info.VarUses[twice.Params[0]], 2, "v is read twice in v + v")

	require.Len(t, a.Fields, 1)
	count := a.Fields[0]
	assert.Len(t, h.info.FieldUses[count], 2, "one write in the constructor, one read")

	assert.Len(t, h.info.MethodUses[twice], 1)

	require.Len(t, a.Constructors, 2)
	noArg := a.Constructors[0]
	uses := h.info.CtorUses[noArg]
	assert.Len(t, uses, 2, "new A() and the this() delegation both land on it")
}

func TestUsageDistinguishesLocalsFromFields(t *testing.T) {
	h, _ := runUsage(t, `
package p;
class A {
    int n;
    int m() {
        int n = 2;
        return n;
    }
    int f() { return n; }
}`)

	a := h.class(t, "A")
	field := a.Fields[0]
	require.Len(t, h.info.FieldUses[field], 1, "only f reads the field")

	var local *symbols.VarSymbol
	for v := range h.info.VarUses {
		if !v.IsParameter {
			local = v
		}
	}
	require.NotNil(t, local, "the shadowing local was used")
	assert.Len(t, h.info.VarUses[local], 1)
}

func TestUsageSkipsBareTargetTypedExpressions(t *testing.T) {
	_, warnings := runUsage(t, `
package p;
class A {
    Runnable task = () -> {};
    Runnable ref = A::work;
    int[] nums = {1, 2, 3};
    static void work() {}
}`)
	assert.Empty(t, warnings, "lambdas and method refs are typed only in target position")
}

func TestUsageResolvesChainedFieldReads(t *testing.T) {
	h, _ := runUsage(t, `
package p;
class Node {
    Node next;
    Node skip() { return next.next; }
}`)

	node := h.class(t, "Node")
	next := node.Fields[0]
	assert.Len(t, h.info.FieldUses[next], 2, "the head read and the chained read")
}
