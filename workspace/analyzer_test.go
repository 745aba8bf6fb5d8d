package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

func TestAnalyzeAll(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "Good.java")
	bad := filepath.Join(dir, "Bad.java")
	missing := filepath.Join(dir, "Missing.java")
	require.NoError(t, os.WriteFile(good, []byte(`package p;
class Good {
    int twice(int n) { return n + n; }
}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("%%%"), 0o644))

	a := NewAnalyzer(symbols.NewTypeSystem(nil), nil, WithConcurrency(2))
	results, err := a.AnalyzeAll(context.Background(), []string{good, bad, missing})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, good, results[0].Path)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Result)
	assert.Zero(t, results[0].Result.Reporter.NumErrors())

	assert.ErrorIs(t, results[1].Err, ErrUnparsable)
	assert.Nil(t, results[1].Result)

	assert.ErrorIs(t, results[2].Err, os.ErrNotExist)
}

func TestAnalyzeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAnalyzer(symbols.NewTypeSystem(nil), nil, WithConcurrency(1))
	results, err := a.AnalyzeAll(ctx, []string{"whatever.java"})
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestAnalyzeSource(t *testing.T) {
	a := NewAnalyzer(symbols.NewTypeSystem(nil), nil)
	res := a.AnalyzeSource(context.Background(), "Widget.java", []byte(`package p;
class Widget {}`))
	require.NoError(t, res.Err)
	require.NotNil(t, res.Result)

	require.Len(t, res.Result.Info.UnitClasses, 1)
	cls := res.Result.Info.UnitClasses[0]
	assert.Equal(t, "p.Widget", cls.CanonicalName)
	assert.Equal(t, "Widget", cls.SimpleName)
}

func TestInferenceLogForcesSequential(t *testing.T) {
	a := NewAnalyzer(symbols.NewTypeSystem(nil), nil,
		WithConcurrency(8),
		WithInferenceLog(types.LogSummary, os.Stderr))
	assert.Equal(t, 1, a.concurrency())
}
