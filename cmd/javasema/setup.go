package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	"github.com/PaperTsar/javasema/java/classpath"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
	"github.com/PaperTsar/javasema/workspace"
)

var log = commonlog.GetLogger("javasema.cmd")

// classpathEntries collects the configured classpath, expanding a lib
// directory into its jars.
func classpathEntries() ([]string, error) {
	entries := viper.GetStringSlice("classpath")
	if lib := viper.GetString("lib"); lib != "" {
		jars, err := classpath.JarsIn(lib)
		if err != nil {
			return nil, err
		}
		entries = append(entries, jars...)
	}
	return entries, nil
}

// openIndex scans the configured classpath into a byte index. A nil index
// with a nil error means no classpath is configured; scan problems on
// individual entries are logged and the partial index is used.
func openIndex() (*classpath.Index, error) {
	entries, err := classpathEntries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	opts := []classpath.Option{}
	if cache, err := classpath.OpenCache(); err == nil {
		opts = append(opts, classpath.WithCache(cache))
	}

	ix, err := classpath.Scan(entries, opts...)
	if err != nil {
		if ix == nil || ix.Len() == 0 {
			return nil, err
		}
		log.Warningf("classpath partially indexed: %s", err)
	}
	return ix, nil
}

// newTypeSystem builds the shared type system over the configured
// classpath. The returned index may be nil; callers close it when non-nil.
func newTypeSystem() (*symbols.TypeSystem, *classpath.Index, error) {
	ix, err := openIndex()
	if err != nil {
		return nil, nil, err
	}
	var source symbols.ClassBytesSource
	if ix != nil {
		source = ix
	}
	return symbols.NewTypeSystem(source), ix, nil
}

// newAnalyzer wires an analyzer from the process configuration.
func newAnalyzer() (*workspace.Analyzer, *classpath.Index, error) {
	ts, ix, err := newTypeSystem()
	if err != nil {
		return nil, nil, err
	}
	var opts []workspace.AnalyzerOption
	if kind := types.ParseLogKind(viper.GetString("inference-log")); kind != types.LogOff {
		opts = append(opts, workspace.WithInferenceLog(kind, os.Stderr))
	}
	return workspace.NewAnalyzer(ts, nil, opts...), ix, nil
}

// collectJavaFiles expands the argument paths: files are taken as given,
// directories are walked for .java sources.
func collectJavaFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".java") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .java files under %s", strings.Join(args, ", "))
	}
	return paths, nil
}
