package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/sema"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

// ErrUnparsable marks a file whose content did not parse into a
// compilation unit.
var ErrUnparsable = errors.New("source does not parse")

// UnitResult is the analysis of one file from a batch run. Err covers read
// and parse failures; semantic findings are in Result's diagnostics.
type UnitResult struct {
	Path   string
	Unit   *parser.Node
	Result *sema.Result
	Err    error
}

// Analyzer runs the semantic passes over many files, concurrently, with
// every unit sharing one type system and cross-unit resolver. Each unit
// gets its own processor, so units never share mutable pass state.
type Analyzer struct {
	ts       *symbols.TypeSystem
	resolver symbols.Resolver
	limit    int
	logKind  types.LogKind
	logOut   io.Writer
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithConcurrency caps how many units are analyzed at once. Values below
// one fall back to the number of CPUs.
func WithConcurrency(n int) AnalyzerOption {
	return func(a *Analyzer) { a.limit = n }
}

// WithInferenceLog traces the inference engine for every unit to w. Any
// kind other than off also forces the units sequential, so traces of
// different files never interleave.
func WithInferenceLog(kind types.LogKind, w io.Writer) AnalyzerOption {
	return func(a *Analyzer) {
		a.logKind = kind
		a.logOut = w
	}
}

// NewAnalyzer builds an analyzer resolving foreign names through resolver
// and loading classpath types through ts. A nil resolver falls back to ts.
func NewAnalyzer(ts *symbols.TypeSystem, resolver symbols.Resolver, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{ts: ts, resolver: resolver}
	if a.resolver == nil {
		a.resolver = ts
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) concurrency() int {
	if a.logKind != types.LogOff {
		return 1
	}
	if a.limit > 0 {
		return a.limit
	}
	return runtime.NumCPU()
}

// AnalyzeAll analyzes every path and returns one result per path, in
// order. Unreadable or unparsable files carry their failure in the
// result's Err and never stop the batch. The context is honored between
// units: cancellation stops unstarted units, running ones finish.
func (a *Analyzer) AnalyzeAll(ctx context.Context, paths []string) ([]UnitResult, error) {
	results := make([]UnitResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = UnitResult{Path: path, Err: err}
				return err
			}
			results[i] = a.analyzeFile(ctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// AnalyzeSource analyzes one unit given directly as source text.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, content []byte) UnitResult {
	out := UnitResult{Path: path}

	p := parser.ParseCompilationUnit(bytes.NewReader(content),
		parser.WithFile(filepath.Base(path)), parser.WithComments())
	out.Unit = p.Finish()
	if out.Unit == nil {
		out.Err = fmt.Errorf("%s: %w", path, ErrUnparsable)
		return out
	}

	opts := []sema.ProcessorOption{sema.WithComments(p.Comments())}
	if a.logKind != types.LogOff {
		opts = append(opts, sema.WithInferenceLogger(types.NewLogger(a.logKind, a.logOut)))
	}
	proc := sema.NewProcessor(a.ts, a.resolver, nil, opts...)
	res, err := proc.Process(ctx, out.Unit)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res
	return out
}

func (a *Analyzer) analyzeFile(ctx context.Context, path string) UnitResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return UnitResult{Path: path, Err: err}
	}
	return a.AnalyzeSource(ctx, path, content)
}
