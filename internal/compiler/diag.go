package compiler

import "fmt"

// Severity mirrors the compiler's diagnostic severities.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityInfo
	SeverityHelp
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityInfo:
		return "info"
	case SeverityHelp:
		return "help"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Label attaches a message and a span to part of a diagnostic. The first
// label in a Diagnostic is primary; the rest are related.
type Label struct {
	Message  string
	Location Location
}

// Diagnostic is a single compiler diagnostic: a severity, a message, zero or
// more labels, zero or more help notes, and an optional error code.
type Diagnostic struct {
	Severity Severity
	Message  string
	Labels   []Label
	Help     []string
	Code     string
}

// DiagCtx accumulates diagnostics emitted during one compilation. It is
// drained and cleared exactly once per compile by the Diagnostic Router;
// it never accumulates across compiles.
type DiagCtx struct {
	diagnostics []Diagnostic
}

// NewDiagCtx returns an empty diagnostic context.
func NewDiagCtx() *DiagCtx {
	return &DiagCtx{}
}

// Emit records a diagnostic produced during compilation.
func (d *DiagCtx) Emit(diag Diagnostic) {
	d.diagnostics = append(d.diagnostics, diag)
}

// Errorf records a single-label error diagnostic at loc with no help notes.
func (d *DiagCtx) Errorf(loc Location, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.Emit(Diagnostic{
		Severity: SeverityError,
		Message:  msg,
		Labels:   []Label{{Message: msg, Location: loc}},
	})
}

// Drain returns the accumulated diagnostics and clears the context.
func (d *DiagCtx) Drain() []Diagnostic {
	out := d.diagnostics
	d.diagnostics = nil
	return out
}

// Len reports the number of diagnostics currently accumulated.
func (d *DiagCtx) Len() int { return len(d.diagnostics) }
