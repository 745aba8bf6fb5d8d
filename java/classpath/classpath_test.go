package classpath

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLooseClass(t *testing.T, root, entry string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(entry))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func buildArchive(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, data := range entries {
		ew, err := w.Create(name)
		require.NoError(t, err)
		_, err = ew.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestScanIndexesLooseClassesAndArchives(t *testing.T) {
	root := t.TempDir()
	writeLooseClass(t, root, "com/example/App.class", []byte("app bytes"))
	writeLooseClass(t, root, "com/example/App$Inner.class", []byte("inner bytes"))
	writeLooseClass(t, root, "com/example/notes.txt", []byte("ignored"))

	jar := filepath.Join(t.TempDir(), "lib.zip")
	buildArchive(t, jar, map[string][]byte{
		"org/lib/Util.class":                     []byte("util bytes"),
		"module-info.class":                      []byte("module"),
		"META-INF/versions/9/org/lib/Util.class": []byte("mr shadow"),
		"org/lib/util.properties":                []byte("props"),
	})

	ix, err := Scan([]string{root, jar})
	require.NoError(t, err)
	defer ix.Close()

	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, []string{"com.example.App", "com.example.App$Inner", "org.lib.Util"}, ix.Names())

	data, ok := ix.Lookup("com.example.App")
	require.True(t, ok)
	assert.Equal(t, []byte("app bytes"), data)

	data, ok = ix.Lookup("com.example.App$Inner")
	require.True(t, ok)
	assert.Equal(t, []byte("inner bytes"), data)

	data, ok = ix.Lookup("org.lib.Util")
	require.True(t, ok)
	assert.Equal(t, []byte("util bytes"), data)

	_, ok = ix.Lookup("module-info")
	assert.False(t, ok)
	_, ok = ix.Lookup("org.lib.Missing")
	assert.False(t, ok)
}

func TestScanFirstEntryWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeLooseClass(t, first, "p/Dup.class", []byte("from first"))
	writeLooseClass(t, second, "p/Dup.class", []byte("from second"))

	ix, err := Scan([]string{first, second})
	require.NoError(t, err)
	data, ok := ix.Lookup("p.Dup")
	require.True(t, ok)
	assert.Equal(t, []byte("from first"), data)

	ix, err = Scan([]string{second, first})
	require.NoError(t, err)
	data, ok = ix.Lookup("p.Dup")
	require.True(t, ok)
	assert.Equal(t, []byte("from second"), data)
}

func TestBinaryNameOf(t *testing.T) {
	cases := []struct {
		entry string
		want  string
	}{
		{"com/example/App.class", "com.example.App"},
		{"com/example/App$Inner.class", "com.example.App$Inner"},
		{"App.class", "App"},
		{"module-info.class", ""},
		{"com/example/module-info.class", ""},
		{"META-INF/versions/9/com/example/App.class", ""},
		{"com/example/app.properties", ""},
		{"com/example/", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, binaryNameOf(tc.entry), "entry %q", tc.entry)
	}
}

func TestScanReportsUnusableEntriesButKeepsGoing(t *testing.T) {
	root := t.TempDir()
	writeLooseClass(t, root, "q/Ok.class", []byte("ok"))

	text := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hi"), 0o644))
	missing := filepath.Join(t.TempDir(), "gone.jar")

	ix, err := Scan([]string{missing, text, root})
	require.Error(t, err)
	assert.ErrorContains(t, err, missing)
	assert.ErrorContains(t, err, "not a directory or archive")

	data, ok := ix.Lookup("q.Ok")
	require.True(t, ok)
	assert.Equal(t, []byte("ok"), data)
}

func TestArchiveIndexCache(t *testing.T) {
	cache, err := OpenCacheAt(t.TempDir())
	require.NoError(t, err)

	jar := filepath.Join(t.TempDir(), "lib.jar")
	buildArchive(t, jar, map[string][]byte{"r/Thing.class": []byte("thing")})
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(jar, stamp, stamp))

	ix, err := Scan([]string{jar}, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, []string{"r.Thing"}, ix.Names())

	cached, err := filepath.Glob(filepath.Join(cache.dir, "jars", "*.mp"))
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Replace the archive with same-size garbage at the same mtime. A
	// cache hit skips opening the file, so scanning still succeeds.
	fi, err := os.Stat(jar)
	require.NoError(t, err)
	garbage := bytes.Repeat([]byte{'x'}, int(fi.Size()))
	require.NoError(t, os.WriteFile(jar, garbage, 0o644))
	require.NoError(t, os.Chtimes(jar, stamp, stamp))

	ix, err = Scan([]string{jar}, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, []string{"r.Thing"}, ix.Names())

	// Growing the file changes the fingerprint; the stale entry is
	// ignored and the garbage archive surfaces as a scan error.
	require.NoError(t, os.WriteFile(jar, append(garbage, 'x'), 0o644))
	require.NoError(t, os.Chtimes(jar, stamp, stamp))

	_, err = Scan([]string{jar}, WithCache(cache))
	assert.Error(t, err)
}

func TestCacheIsNilSafe(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "lib.jar")
	buildArchive(t, jar, map[string][]byte{"s/Loose.class": []byte("loose")})

	ix, err := Scan([]string{jar}, WithCache(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())

	var c *Cache
	_, ok := c.loadJar(jar, mustStat(t, jar))
	assert.False(t, ok)
	assert.NoError(t, c.storeJar(jar, mustStat(t, jar), nil))
	assert.NoError(t, c.DropAll())
}

func mustStat(t *testing.T, path string) os.FileInfo {
	t.Helper()
	fi, err := os.Stat(path)
	require.NoError(t, err)
	return fi
}

func TestDropAllForgetsStoredArchives(t *testing.T) {
	cache, err := OpenCacheAt(t.TempDir())
	require.NoError(t, err)

	jar := filepath.Join(t.TempDir(), "lib.jar")
	buildArchive(t, jar, map[string][]byte{"u/Kept.class": []byte("kept")})
	fi := mustStat(t, jar)

	require.NoError(t, cache.storeJar(jar, fi, map[string]string{"u.Kept": "u/Kept.class"}))
	classes, ok := cache.loadJar(jar, fi)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"u.Kept": "u/Kept.class"}, classes)

	require.NoError(t, cache.DropAll())
	_, ok = cache.loadJar(jar, fi)
	assert.False(t, ok)

	// The cache stays writable after dropping everything.
	require.NoError(t, cache.storeJar(jar, fi, map[string]string{"u.Kept": "u/Kept.class"}))
	_, ok = cache.loadJar(jar, fi)
	assert.True(t, ok)
}

func TestCloseThenLookupReopens(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "lib.jar")
	buildArchive(t, jar, map[string][]byte{"v/Again.class": []byte("again")})

	ix, err := Scan([]string{jar})
	require.NoError(t, err)

	data, ok := ix.Lookup("v.Again")
	require.True(t, ok)
	assert.Equal(t, []byte("again"), data)

	require.NoError(t, ix.Close())

	data, ok = ix.Lookup("v.Again")
	require.True(t, ok)
	assert.Equal(t, []byte("again"), data)
	require.NoError(t, ix.Close())
}

func TestJarsIn(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jar", "a.jar", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.jar"), []byte("x"), 0o644))

	paths, err := JarsIn(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.jar"), filepath.Join(dir, "b.jar")}, paths)

	_, err = JarsIn(filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
}
