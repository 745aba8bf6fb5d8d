package sema

import (
	"context"
	"errors"
	"time"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/symbols"
	"github.com/PaperTsar/javasema/java/types"
)

var (
	// ErrNilCompilationUnit is returned when Process is handed no tree.
	// This is a caller bug, not a finding about the source under analysis.
	ErrNilCompilationUnit = errors.New("sema: nil compilation unit")
	// ErrNilResolver is returned when the processor was built without a
	// cross-unit resolver.
	ErrNilResolver = errors.New("sema: nil resolver")
)

var (
	tracer = otel.Tracer("javasema.sema")
	log    = commonlog.GetLogger("javasema.sema")
)

// Stage names one pass of the pipeline.
type Stage string

const (
	StageSymbols      Stage = "symbol resolution"
	StageScopes       Stage = "scope resolution"
	StageDisambiguate Stage = "disambiguation"
	StageComments     Stage = "comment assignment"
	StageUsage        Stage = "usage resolution"
	StageOverrides    Stage = "override resolution"
)

// StageTiming records how long one pass took on one unit.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

// Processor runs the semantic passes over one compilation unit in their
// fixed order: symbol resolution, scope resolution, disambiguation, comment
// assignment, usage resolution, override resolution. Type inference is set
// up between the symbol and scope passes and evaluated on demand; the usage
// pass forces it over every expression.
//
// A Processor analyzes one unit. Analyzing several units means one
// Processor each, sharing the type system and the cross-unit resolver.
type Processor struct {
	ts       *symbols.TypeSystem
	resolver symbols.Resolver
	store    *symbols.UnresolvedStore
	reporter Reporter
	logger   types.InferenceLogger
	comments []parser.Token
	timings  []StageTiming
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithInferenceLogger makes the inference engine report its work to l.
func WithInferenceLogger(l types.InferenceLogger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// WithComments supplies the unit's comment tokens so the comment assignment
// pass can attach javadoc to declarations. Parse with parser.WithComments
// to collect them.
func WithComments(comments []parser.Token) ProcessorOption {
	return func(p *Processor) { p.comments = comments }
}

// NewProcessor builds a processor resolving foreign names through resolver
// and loading classpath types through ts. A nil reporter collects into a
// fresh Collector reachable from the Result.
func NewProcessor(ts *symbols.TypeSystem, resolver symbols.Resolver, reporter Reporter, opts ...ProcessorOption) *Processor {
	p := &Processor{
		ts:       ts,
		resolver: resolver,
		store:    symbols.NewUnresolvedStore(),
		reporter: reporter,
		logger:   types.NopLogger(),
	}
	if p.reporter == nil {
		p.reporter = NewCollector()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the pipeline over unit. The returned error covers misuse
// only; findings about the source go through the reporter and never abort
// the pipeline.
func (p *Processor) Process(ctx context.Context, unit *parser.Node) (*Result, error) {
	if unit == nil {
		return nil, ErrNilCompilationUnit
	}
	if p.resolver == nil {
		return nil, ErrNilResolver
	}
	p.timings = p.timings[:0]

	info := NewInfo()
	var unitRes *symbols.MapResolver
	p.stage(ctx, StageSymbols, func() {
		unitRes = resolveSymbols(unit, info, p.reporter)
	})

	// The unit's own declarations shadow everything behind them. Layered
	// here, once; every later pass sees the same resolver.
	res := symbols.Layer(unitRes, p.resolver)

	inf := types.NewInferrer(p.ts, res, p.store, scopeTable{info: info}, p.logger, p.warnAt)

	p.stage(ctx, StageScopes, func() {
		resolveScopes(unit, info, p.reporter, res, p.store, p.ts)
	})
	p.stage(ctx, StageDisambiguate, func() {
		disambiguate(unit, info, res, p.store)
		patchVarTypes(info, inf)
	})
	p.stage(ctx, StageComments, func() {
		assignComments(unit, p.comments, info)
	})
	p.stage(ctx, StageUsage, func() {
		resolveUsage(unit, info, inf)
	})
	p.stage(ctx, StageOverrides, func() {
		resolveOverrides(info)
	})

	return &Result{
		Unit:     unit,
		Info:     info,
		Types:    inf,
		Resolver: res,
		Reporter: p.reporter,
		Timings:  append([]StageTiming(nil), p.timings...),
	}, nil
}

// Timings returns the per-stage durations of the last Process call.
func (p *Processor) Timings() []StageTiming {
	return p.timings
}

func (p *Processor) stage(ctx context.Context, name Stage, fn func()) {
	_, span := tracer.Start(ctx, string(name))
	start := time.Now()
	fn()
	d := time.Since(start)
	span.SetAttributes(attribute.Int64("duration_us", d.Microseconds()))
	span.End()
	p.timings = append(p.timings, StageTiming{Stage: name, Duration: d})
	log.Debugf("%s took %s", name, d)
}

func (p *Processor) warnAt(n *parser.Node, format string, args ...any) {
	var pos parser.Position
	if n != nil {
		pos = n.Span.Start
	}
	p.reporter.Report(SeverityWarning, pos, format, args...)
}
