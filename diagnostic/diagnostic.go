// Package diagnostic formats and collects compiler diagnostics produced by
// analyses and transformers: parse errors are the parser's concern, but
// semantic errors and warnings raised while lowering and rewriting the AST
// are collected here with source position and a caret-pointing rendering,
// in the style of a traditional single-file compiler front end.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/datalogc/dlc/ast"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	// Error is a semantic error: the driver must abort the pipeline before
	// lowering when any Error-severity diagnostic is present.
	Error Severity = iota
	// Warning never aborts the pipeline.
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "Warning"
	}
	return "Error"
}

// Diagnostic is a single semantic error or warning, carrying the source
// Position it was raised at.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      ast.Position
}

// Format renders the diagnostic with a source-line caret, mirroring the
// file:line:column + caret convention used by the parser's own errors.
func (d Diagnostic) Format(source string) string {
	var sb strings.Builder

	if d.Pos.File != "" {
		fmt.Fprintf(&sb, "%s: %s:%d:%d\n", d.Severity, d.Pos.File, d.Pos.Line, d.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s: line %d:%d\n", d.Severity, d.Pos.Line, d.Pos.Column)
	}
	sb.WriteString("  ")
	sb.WriteString(d.Message)
	sb.WriteString("\n")

	line := sourceLine(source, d.Pos.Line)
	if line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		sb.WriteString("^\n")
	}

	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Report accumulates diagnostics for a single compilation session. It is
// owned by the TranslationUnit and borrowed by every transformer and
// analysis; none of them may panic or return a Go error for a semantic
// problem — they record a Diagnostic here and continue, so that later
// checkers can add context.
type Report struct {
	Source      string
	diagnostics []Diagnostic
}

// NewReport creates an empty Report. Source is the original program text,
// used only to render caret context; it may be empty.
func NewReport(source string) *Report {
	return &Report{Source: source}
}

// Errorf records a Severity-Error diagnostic at pos.
func (r *Report) Errorf(pos ast.Position, format string, args ...any) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Error, fmt.Sprintf(format, args...), pos})
}

// Warnf records a Severity-Warning diagnostic at pos.
func (r *Report) Warnf(pos ast.Position, format string, args ...any) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Warning, fmt.Sprintf(format, args...), pos})
}

// Diagnostics returns every diagnostic recorded so far, in emission order.
func (r *Report) Diagnostics() []Diagnostic {
	return r.diagnostics
}

// NumErrors returns the count of Severity-Error diagnostics. The driver
// inspects this once the whole transformer pipeline has run and aborts
// before lowering when it is non-zero; the pipeline does not stop after an
// individual checker pass.
func (r *Report) NumErrors() int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// NumWarnings returns the count of Severity-Warning diagnostics.
func (r *Report) NumWarnings() int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == Warning {
			n++
		}
	}
	return n
}

// String renders every diagnostic in emission order.
func (r *Report) String() string {
	var sb strings.Builder
	for _, d := range r.diagnostics {
		sb.WriteString(d.Format(r.Source))
	}
	return sb.String()
}
