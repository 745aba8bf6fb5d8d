// Package sema runs the semantic passes over one parsed compilation unit:
// symbol resolution, scope resolution, disambiguation, comment assignment,
// usage resolution and override resolution, in that order. Results land in
// per-unit side tables keyed by node pointer; the tree itself only changes
// shape where disambiguation rewrites ambiguous name chains.
package sema

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/PaperTsar/javasema/java/parser"
)

// Severity ranks a diagnostic. Error is the only severity the error counter
// tracks; everything else is advisory.
type Severity int8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityDebug:   "debug",
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// Diagnostic is one reported semantic problem.
type Diagnostic struct {
	Severity Severity
	Pos      parser.Position
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Reporter receives semantic problems from the passes. Reporting never stops
// a pass; NumErrors lets the caller decide afterwards whether the unit is
// sound enough for downstream work.
type Reporter interface {
	Report(sev Severity, pos parser.Position, format string, args ...any)
	NumErrors() int
}

// Collector is the default Reporter. It keeps diagnostics in report order
// and counts error-severity reports. Safe for concurrent use.
type Collector struct {
	// Min drops diagnostics below this severity. Error reports are always
	// counted, even when dropped. Failures inside message formatting are
	// recorded as extra debug diagnostics only when Min admits them.
	Min Severity

	mu     sync.Mutex
	diags  []Diagnostic
	errors int
}

func NewCollector() *Collector {
	return &Collector{Min: SeverityInfo}
}

func (c *Collector) Report(sev Severity, pos parser.Position, format string, args ...any) {
	msg, formatted := renderMessage(format, args...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if sev == SeverityError {
		c.errors++
	}
	if sev >= c.Min {
		c.diags = append(c.diags, Diagnostic{Severity: sev, Pos: pos, Message: msg})
	}
	if !formatted && c.Min <= SeverityDebug {
		c.diags = append(c.diags, Diagnostic{
			Severity: SeverityDebug,
			Pos:      pos,
			Message:  fmt.Sprintf("formatting failed for %q\n%s", format, debug.Stack()),
		})
	}
}

// NumErrors returns how many error-severity reports were made.
func (c *Collector) NumErrors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}

// Diagnostics returns the recorded diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// renderMessage formats the diagnostic text. The fmt package recovers panics
// raised by an argument's String or Error method and embeds a PANIC marker in
// the output, so the original message always survives; the second result
// reports whether formatting went through cleanly. The marker text alone does
// not prove a failure, a legitimate message can contain the same substring,
// so the arguments are probed before the render is declared dirty.
func renderMessage(format string, args ...any) (string, bool) {
	msg := fmt.Sprintf(format, args...)
	if !strings.Contains(msg, "(PANIC=") {
		return msg, true
	}
	for _, arg := range args {
		if formatPanics(arg) {
			return msg, false
		}
	}
	return msg, true
}

// formatPanics reports whether arg blows up when stringified. fmt recovers
// such panics internally, so the methods are called directly here.
func formatPanics(arg any) (panicked bool) {
	defer func() { panicked = recover() != nil }()
	switch v := arg.(type) {
	case fmt.Formatter:
		v.Format(probeState{}, 'v')
	case error:
		_ = v.Error()
	case fmt.Stringer:
		_ = v.String()
	}
	return false
}

// probeState is the throwaway fmt.State handed to a Formatter under probe.
type probeState struct{}

func (probeState) Write(p []byte) (int, error) { return len(p), nil }
func (probeState) Width() (int, bool)          { return 0, false }
func (probeState) Precision() (int, bool)      { return 0, false }
func (probeState) Flag(int) bool               { return false }
