package classpath

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchema invalidates every cached archive index when the payload
// format changes.
const cacheSchema uint16 = 1

// Cache persists per-archive class indexes so an unchanged jar's central
// directory is read once across runs. A nil *Cache is valid and caches
// nothing.
type Cache struct {
	dir string
}

// jarPayload is the cached index of one archive. Path, Size and ModTime
// fingerprint the archive; a mismatch on load means the jar changed and the
// entry is stale.
type jarPayload struct {
	Schema  uint16            `msgpack:"schema"`
	Path    string            `msgpack:"path"`
	Size    int64             `msgpack:"size"`
	ModTime int64             `msgpack:"mod_time"`
	Classes map[string]string `msgpack:"classes"`
}

// OpenCache opens the archive index cache at the standard user cache
// location: $XDG_CACHE_HOME/javasema, or ~/.cache/javasema.
func OpenCache() (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCache, err)
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCacheAt(filepath.Join(base, "javasema"))
}

// OpenCacheAt opens the cache rooted at dir, creating it if needed.
func OpenCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "jars"), 0o755); err != nil {
		return nil, fmt.Errorf("open classpath cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(jarPath string) string {
	sum := sha256.Sum256([]byte(jarPath))
	return filepath.Join(c.dir, "jars", hex.EncodeToString(sum[:])+".mp")
}

// loadJar returns the cached class index of the archive when the cached
// fingerprint still matches fi. Any read or decode problem is a miss.
func (c *Cache) loadJar(jarPath string, fi os.FileInfo) (map[string]string, bool) {
	if c == nil {
		return nil, false
	}
	f, err := os.Open(c.pathFor(jarPath))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var payload jarPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchema || payload.Path != jarPath {
		return nil, false
	}
	if payload.Size != fi.Size() || payload.ModTime != fi.ModTime().UnixNano() {
		return nil, false
	}
	return payload.Classes, true
}

// storeJar writes the class index of the archive, replacing any previous
// entry atomically.
func (c *Cache) storeJar(jarPath string, fi os.FileInfo, classes map[string]string) error {
	if c == nil {
		return nil
	}
	payload := jarPayload{
		Schema:  cacheSchema,
		Path:    jarPath,
		Size:    fi.Size(),
		ModTime: fi.ModTime().UnixNano(),
		Classes: classes,
	}

	target := c.pathFor(jarPath)
	f, err := os.CreateTemp(filepath.Dir(target), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), target)
}

// DropAll removes every cached archive index.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	jars := filepath.Join(c.dir, "jars")
	if err := os.RemoveAll(jars); err != nil {
		return err
	}
	if err := os.MkdirAll(jars, 0o755); err != nil {
		return err
	}
	return nil
}

// ErrNoCache reports that no cache directory could be determined, for
// example when the user has no home directory. Callers that consider the
// cache optional can test for it and scan uncached.
var ErrNoCache = errors.New("classpath: no cache directory")
