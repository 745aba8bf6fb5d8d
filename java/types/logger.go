package types

import (
	"fmt"
	"io"
	"sync"
)

// InferenceLogger observes the inference engine. Verbosity never affects
// inferred results; implementations only record or print. The engine calls
// it from one goroutine per unit.
type InferenceLogger interface {
	// EnterInvocation is called once per invocation-site solve with a
	// printable description of the call.
	EnterInvocation(desc string)
	FreshVar(v *Var)
	Constraint(c Constraint)
	Bound(v *Var, t Type)
	Unsatisfied(c Constraint)
	// Solved closes an invocation solve with the selected signature and
	// result type, or the error type on failure.
	Solved(desc string, result Type)
	// Ambiguity reports an overload tie that degraded to the error type.
	Ambiguity(desc string, candidates int)
}

// LogKind selects an InferenceLogger implementation.
type LogKind int

const (
	LogOff LogKind = iota
	LogSummary
	LogFullTrace
)

// ParseLogKind maps a configuration string to a LogKind. Unrecognized values
// fall back to off.
func ParseLogKind(s string) LogKind {
	switch s {
	case "summary":
		return LogSummary
	case "full-trace":
		return LogFullTrace
	}
	return LogOff
}

// NewLogger builds the logger for a kind, writing to w. LogOff ignores w.
func NewLogger(kind LogKind, w io.Writer) InferenceLogger {
	switch kind {
	case LogSummary:
		return &summaryLogger{w: w}
	case LogFullTrace:
		return &traceLogger{w: w}
	}
	return NopLogger()
}

type nopLogger struct{}

func (nopLogger) EnterInvocation(string) {}
func (nopLogger) FreshVar(*Var)          {}
func (nopLogger) Constraint(Constraint)  {}
func (nopLogger) Bound(*Var, Type)       {}
func (nopLogger) Unsatisfied(Constraint) {}
func (nopLogger) Solved(string, Type)    {}
func (nopLogger) Ambiguity(string, int)  {}

var sharedNop nopLogger

// NopLogger returns the do-nothing logger.
func NopLogger() InferenceLogger { return sharedNop }

// summaryLogger counts events and prints one line per finished invocation
// plus totals through Summary.
type summaryLogger struct {
	mu          sync.Mutex
	w           io.Writer
	invocations int
	vars        int
	constraints int
	failures    int
	ambiguities int
}

func (l *summaryLogger) EnterInvocation(string) {
	l.mu.Lock()
	l.invocations++
	l.mu.Unlock()
}

func (l *summaryLogger) FreshVar(*Var) {
	l.mu.Lock()
	l.vars++
	l.mu.Unlock()
}

func (l *summaryLogger) Constraint(Constraint) {
	l.mu.Lock()
	l.constraints++
	l.mu.Unlock()
}

func (l *summaryLogger) Bound(*Var, Type) {}

func (l *summaryLogger) Unsatisfied(Constraint) {
	l.mu.Lock()
	l.failures++
	l.mu.Unlock()
}

func (l *summaryLogger) Solved(string, Type) {}

func (l *summaryLogger) Ambiguity(string, int) {
	l.mu.Lock()
	l.ambiguities++
	l.mu.Unlock()
}

// Summary writes the accumulated counters.
func (l *summaryLogger) Summary() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "inference: %d invocations, %d vars, %d constraints, %d unsatisfied, %d ambiguous\n",
		l.invocations, l.vars, l.constraints, l.failures, l.ambiguities)
}

// traceLogger prints every event as it happens.
type traceLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *traceLogger) EnterInvocation(desc string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "solve %s\n", desc)
}

func (l *traceLogger) FreshVar(v *Var) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "  fresh %s\n", v)
}

func (l *traceLogger) Constraint(c Constraint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "  require %s\n", c)
}

func (l *traceLogger) Bound(v *Var, t Type) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "  bind %s = %s\n", v, t)
}

func (l *traceLogger) Unsatisfied(c Constraint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "  UNSAT %s\n", c)
}

func (l *traceLogger) Solved(desc string, result Type) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "  => %s : %s\n", desc, result)
}

func (l *traceLogger) Ambiguity(desc string, candidates int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "  AMBIGUOUS %s (%d candidates)\n", desc, candidates)
}
