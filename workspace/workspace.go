// Package workspace holds the open-file index of a project under analysis
// and the LSP surface over it. Each tracked file keeps its parsed tree and
// semantic analysis; classes declared anywhere in the workspace resolve
// from every other file through a shared resolver layered over the
// classpath.
package workspace

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/sema"
	"github.com/PaperTsar/javasema/java/symbols"
)

var log = commonlog.GetLogger("javasema.workspace")

// File is the analyzed snapshot of one tracked source file. Snapshots are
// immutable; updating a file replaces the whole entry.
type File struct {
	Path     string
	Content  []byte
	Unit     *parser.Node // nil when the content does not parse
	Comments []parser.Token
	Analysis *sema.Result // nil when the content does not parse
	Diags    []sema.Diagnostic

	// ModTime is the disk timestamp of the last scan. Zero for content
	// that only ever arrived from an editor.
	ModTime time.Time
	// Open marks content owned by an editor buffer. Disk sweeps leave
	// open files alone.
	Open bool
}

// Workspace tracks the source files of one project root. All methods are
// safe for concurrent use; updates are serialized so every analysis sees a
// settled shared resolver.
type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	ts      *symbols.TypeSystem
	base    symbols.Resolver
	files   map[string]*File
	shared  *symbols.MapResolver
}

// New builds a workspace rooted at rootDir. Classes not declared in the
// workspace resolve through base; a nil base falls back to ts.
func New(rootDir string, ts *symbols.TypeSystem, base symbols.Resolver) *Workspace {
	if base == nil {
		base = ts
	}
	return &Workspace{
		rootDir: rootDir,
		ts:      ts,
		base:    base,
		files:   make(map[string]*File),
		shared:  symbols.NewMapResolver(),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// ScanAll walks the root directory and scans every .java file. Hidden
// directories are skipped. Unreadable files are logged and skipped.
func (w *Workspace) ScanAll() error {
	return filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != w.rootDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".java" {
			if err := w.ScanFile(path); err != nil {
				log.Errorf("scan %s: %s", path, err)
			}
		}
		return nil
	})
}

// ScanFile reads path from disk and analyzes it. An editor that owns the
// file stays the owner; the scan only refreshes the analyzed content.
func (w *Workspace) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var modTime time.Time
	if fi, err := os.Stat(path); err == nil {
		modTime = fi.ModTime()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	open := false
	if f := w.files[path]; f != nil {
		open = f.Open
	}
	w.setLocked(path, content, modTime, open)
	return nil
}

// UpdateFile replaces the file's content with an editor buffer and
// analyzes it. The file is marked open until CloseFile.
func (w *Workspace) UpdateFile(path string, content []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if f := w.files[path]; f != nil && bytes.Equal(f.Content, content) {
		if !f.Open {
			clone := *f
			clone.Open = true
			w.files[path] = &clone
		}
		return
	}
	w.setLocked(path, content, time.Time{}, true)
}

// CloseFile returns ownership of the file to disk: its analysis follows
// the on-disk content again, or the entry is dropped when the file no
// longer exists.
func (w *Workspace) CloseFile(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		w.RemoveFile(path)
		return
	}
	var modTime time.Time
	if fi, err := os.Stat(path); err == nil {
		modTime = fi.ModTime()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(path, content, modTime, false)
}

// RemoveFile drops the file and its declared classes from the workspace.
func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
	w.rebuildSharedLocked()
}

// GetFile returns the current snapshot of the file, or nil.
func (w *Workspace) GetFile(path string) *File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Files returns the tracked paths, sorted.
func (w *Workspace) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Resolver returns the workspace view: classes declared in tracked files
// first, then the classpath.
func (w *Workspace) Resolver() symbols.Resolver {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return symbols.Layer(w.shared, w.base)
}

func (w *Workspace) setLocked(path string, content []byte, modTime time.Time, open bool) {
	f := &File{
		Path:    path,
		Content: content,
		ModTime: modTime,
		Open:    open,
	}

	p := parser.ParseCompilationUnit(bytes.NewReader(content),
		parser.WithFile(filepath.Base(path)), parser.WithComments())
	f.Unit = p.Finish()
	if f.Unit == nil {
		f.Diags = []sema.Diagnostic{{
			Severity: sema.SeverityError,
			Pos:      parser.Position{File: filepath.Base(path), Line: 1, Column: 1},
			Message:  "syntax error: file does not parse",
		}}
		w.files[path] = f
		w.rebuildSharedLocked()
		return
	}
	f.Comments = p.Comments()

	proc := sema.NewProcessor(w.ts, symbols.Layer(w.shared, w.base), nil,
		sema.WithComments(f.Comments))
	res, err := proc.Process(context.Background(), f.Unit)
	if err != nil {
		log.Errorf("analyze %s: %s", path, err)
		w.files[path] = f
		w.rebuildSharedLocked()
		return
	}
	f.Analysis = res
	f.Diags = res.Diagnostics()

	w.files[path] = f
	w.rebuildSharedLocked()
}

// rebuildSharedLocked recollects every tracked file's declared classes.
// Files are visited in path order so duplicate declarations resolve to the
// same winner on every rebuild.
func (w *Workspace) rebuildSharedLocked() {
	shared := symbols.NewMapResolver()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		f := w.files[path]
		if f.Analysis == nil {
			continue
		}
		for _, cls := range f.Analysis.Info.UnitClasses {
			shared.Add(cls)
		}
	}
	w.shared = shared
}
