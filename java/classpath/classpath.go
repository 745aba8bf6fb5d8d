// Package classpath indexes compiled Java classes on disk and serves their
// raw bytes by binary name. A classpath entry is either a directory of
// packages holding loose .class files, or a .jar/.zip archive. The index is
// the symbols.ClassBytesSource the shared type system loads from.
package classpath

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("javasema.classpath")

// classRef says where the bytes of one class live: a loose file, or an
// entry inside an archive.
type classRef struct {
	jar  string // archive path, empty for a loose .class file
	path string // file path, or entry name within the archive
}

// Index maps binary class names to their location on the classpath.
// Lookups are safe for concurrent use. Close releases the archive handles
// opened by lookups.
type Index struct {
	mu      sync.Mutex
	classes map[string]classRef
	jars    map[string]*jarHandle
}

type jarHandle struct {
	rc      *zip.ReadCloser
	entries map[string]*zip.File
}

// Option configures a Scan.
type Option func(*scanConfig)

type scanConfig struct {
	cache *Cache
}

// WithCache reuses and refreshes the on-disk archive index cache, so the
// central directory of an unchanged jar is read from the cache instead of
// the archive.
func WithCache(c *Cache) Option {
	return func(cfg *scanConfig) { cfg.cache = c }
}

// Scan indexes the given classpath entries in order; the first entry
// declaring a binary name wins, matching how the JVM picks classes.
// Unusable entries are skipped and their errors joined into the returned
// error alongside the partial index.
func Scan(entries []string, opts ...Option) (*Index, error) {
	var cfg scanConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ix := &Index{
		classes: make(map[string]classRef),
		jars:    make(map[string]*jarHandle),
	}
	var errs []error
	for _, entry := range entries {
		fi, err := os.Stat(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("classpath entry %s: %w", entry, err))
			continue
		}
		if fi.IsDir() {
			if err := ix.scanDir(entry); err != nil {
				errs = append(errs, fmt.Errorf("classpath entry %s: %w", entry, err))
			}
			continue
		}
		switch strings.ToLower(filepath.Ext(entry)) {
		case ".jar", ".zip":
			if err := ix.scanJar(entry, fi, cfg.cache); err != nil {
				errs = append(errs, fmt.Errorf("classpath entry %s: %w", entry, err))
			}
		default:
			errs = append(errs, fmt.Errorf("classpath entry %s: not a directory or archive", entry))
		}
	}
	log.Debugf("indexed %d classes from %d classpath entries", len(ix.classes), len(entries))
	return ix, errors.Join(errs...)
}

func (ix *Index) scanDir(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".class" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := binaryNameOf(filepath.ToSlash(rel))
		if name == "" {
			return nil
		}
		ix.add(name, classRef{path: path})
		return nil
	})
}

func (ix *Index) scanJar(path string, fi os.FileInfo, cache *Cache) error {
	if classes, ok := cache.loadJar(path, fi); ok {
		log.Debugf("archive index cache hit for %s (%d classes)", path, len(classes))
		for name, entry := range classes {
			ix.add(name, classRef{jar: path, path: entry})
		}
		return nil
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	classes := make(map[string]string)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := binaryNameOf(f.Name)
		if name == "" {
			continue
		}
		if _, dup := classes[name]; !dup {
			classes[name] = f.Name
		}
	}
	for name, entry := range classes {
		ix.add(name, classRef{jar: path, path: entry})
	}
	if err := cache.storeJar(path, fi, classes); err != nil {
		log.Debugf("could not cache archive index for %s: %s", path, err)
	}
	return nil
}

// binaryNameOf converts a slash-separated .class entry name to a binary
// class name. Non-class entries, module descriptors and multi-release
// shadow trees under META-INF yield "".
func binaryNameOf(entry string) string {
	if !strings.HasSuffix(entry, ".class") {
		return ""
	}
	if strings.HasPrefix(entry, "META-INF/") {
		return ""
	}
	name := strings.TrimSuffix(entry, ".class")
	if name == "module-info" || strings.HasSuffix(name, "/module-info") {
		return ""
	}
	return strings.ReplaceAll(name, "/", ".")
}

func (ix *Index) add(name string, ref classRef) {
	if _, ok := ix.classes[name]; ok {
		return
	}
	ix.classes[name] = ref
}

// Lookup returns the class file bytes for a binary name.
func (ix *Index) Lookup(binaryName string) ([]byte, bool) {
	ix.mu.Lock()
	ref, ok := ix.classes[binaryName]
	ix.mu.Unlock()
	if !ok {
		return nil, false
	}

	if ref.jar == "" {
		data, err := os.ReadFile(ref.path)
		if err != nil {
			log.Errorf("read %s: %s", ref.path, err)
			return nil, false
		}
		return data, true
	}

	h, err := ix.jarFor(ref.jar)
	if err != nil {
		log.Errorf("open %s: %s", ref.jar, err)
		return nil, false
	}
	f, ok := h.entries[ref.path]
	if !ok {
		return nil, false
	}
	rc, err := f.Open()
	if err != nil {
		log.Errorf("read %s!%s: %s", ref.jar, ref.path, err)
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		log.Errorf("read %s!%s: %s", ref.jar, ref.path, err)
		return nil, false
	}
	return data, true
}

func (ix *Index) jarFor(path string) (*jarHandle, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if h, ok := ix.jars[path]; ok {
		return h, nil
	}
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	h := &jarHandle{rc: rc, entries: make(map[string]*zip.File, len(rc.File))}
	for _, f := range rc.File {
		h.entries[f.Name] = f
	}
	ix.jars[path] = h
	return h, nil
}

// Len reports how many classes the index knows.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.classes)
}

// Names returns the indexed binary names, sorted. Meant for inspection
// commands, not for the resolution path.
func (ix *Index) Names() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	names := make([]string, 0, len(ix.classes))
	for name := range ix.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases the archive handles opened by lookups. The index stays
// usable; the next lookup reopens what it needs.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var errs []error
	for path, h := range ix.jars {
		if err := h.rc.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(ix.jars, path)
	}
	return errors.Join(errs...)
}

// JarsIn lists the .jar files directly inside dir, sorted by name. It is
// the conventional lib-directory expansion for building a classpath.
func JarsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read lib directory %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".jar" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
