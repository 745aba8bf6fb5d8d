package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperTsar/javasema/java/symbols"
)

func TestWatcherSweep(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Fresh.java")
	require.NoError(t, os.WriteFile(path, []byte("package p;\nclass Fresh {}"), 0o644))

	ws := New(root, symbols.NewTypeSystem(nil), nil)
	var fired []string
	w := NewWatcher(ws, func(p string) { fired = append(fired, p) })

	w.sweep()
	require.NotNil(t, ws.GetFile(path))
	assert.Equal(t, []string{path}, fired)

	// Unchanged file: a second sweep stays quiet.
	fired = nil
	w.sweep()
	assert.Empty(t, fired)

	// Touch the file with a newer timestamp.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	w.sweep()
	assert.Equal(t, []string{path}, fired)

	// Deleting the file drops it from the index.
	fired = nil
	require.NoError(t, os.Remove(path))
	w.sweep()
	assert.Nil(t, ws.GetFile(path))
	assert.Equal(t, []string{path}, fired)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	ws := New(t.TempDir(), symbols.NewTypeSystem(nil), nil)
	w := NewWatcher(ws, nil)
	w.Start()
	w.Stop()
	assert.NotPanics(t, func() { w.Stop() })
}

func TestWatcherSkipsOpenFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Open.java")
	require.NoError(t, os.WriteFile(path, []byte("package p;\nclass Open {}"), 0o644))

	ws := New(root, symbols.NewTypeSystem(nil), nil)
	ws.UpdateFile(path, []byte("package p;\nclass Open { int edited; }"))

	var fired []string
	w := NewWatcher(ws, func(p string) { fired = append(fired, p) })
	w.sweep()
	assert.Empty(t, fired)

	// Editor-owned files survive deletion from disk until closed.
	require.NoError(t, os.Remove(path))
	w.sweep()
	assert.NotNil(t, ws.GetFile(path))
}
