package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Watcher polls the workspace root and keeps the index in step with disk:
// new and modified files are rescanned, deleted files are dropped. Files
// owned by an editor buffer are never touched; their content arrives
// through the LSP notifications instead.
type Watcher struct {
	ws       *Workspace
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	onUpdate func(path string)
}

// NewWatcher builds a watcher over ws. onUpdate fires after every rescan
// or removal; nil is allowed.
func NewWatcher(ws *Workspace, onUpdate func(path string)) *Watcher {
	return &Watcher{
		ws:       ws,
		interval: time.Second,
		stopCh:   make(chan struct{}),
		onUpdate: onUpdate,
	}
}

func (w *Watcher) Start() {
	go w.run()
}

// Stop ends the polling loop. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *Watcher) sweep() {
	filepath.WalkDir(w.ws.RootDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != w.ws.RootDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".java" {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		f := w.ws.GetFile(path)
		if f != nil && (f.Open || !info.ModTime().After(f.ModTime)) {
			return nil
		}
		if err := w.ws.ScanFile(path); err != nil {
			return nil
		}
		w.fire(path)
		return nil
	})

	for _, path := range w.ws.Files() {
		f := w.ws.GetFile(path)
		if f == nil || f.Open {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			w.ws.RemoveFile(path)
			w.fire(path)
		}
	}
}

func (w *Watcher) fire(path string) {
	if w.onUpdate != nil {
		w.onUpdate(path)
	}
}
