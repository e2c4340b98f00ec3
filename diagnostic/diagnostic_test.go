package diagnostic_test

import (
	"strings"
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/diagnostic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCountsErrorsAndWarningsSeparately(t *testing.T) {
	r := diagnostic.NewReport("")
	r.Errorf(ast.Position{Line: 1}, "bad thing %d", 1)
	r.Warnf(ast.Position{Line: 2}, "minor thing")
	r.Errorf(ast.Position{Line: 3}, "another bad thing")

	assert.Equal(t, 2, r.NumErrors())
	assert.Equal(t, 1, r.NumWarnings())
	require.Len(t, r.Diagnostics(), 3)
	assert.Equal(t, "bad thing 1", r.Diagnostics()[0].Message, "emission order is preserved")
}

func TestDiagnosticFormatRendersCaretUnderColumn(t *testing.T) {
	source := "p(x,y) :- q(x,y), bogus(y).\n"
	d := diagnostic.Diagnostic{Severity: diagnostic.Error, Message: "relation bogus is undeclared", Pos: ast.Position{Line: 1, Column: 19}}
	out := d.Format(source)

	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "relation bogus is undeclared")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5) // header, message, source line, caret, trailing empty
	caretLine := lines[3]
	assert.True(t, strings.HasSuffix(caretLine, "^"))
}

func TestDiagnosticFormatOmitsSourceLineWhenSourceEmpty(t *testing.T) {
	d := diagnostic.Diagnostic{Severity: diagnostic.Warning, Message: "unused relation", Pos: ast.Position{Line: 5, Column: 1}}
	out := d.Format("")
	assert.NotContains(t, out, "^")
}

func TestDiagnosticFormatUsesFileWhenSet(t *testing.T) {
	d := diagnostic.Diagnostic{Severity: diagnostic.Error, Message: "boom", Pos: ast.Position{File: "prog.dl", Line: 1, Column: 1}}
	out := d.Format("x\n")
	assert.Contains(t, out, "prog.dl:1:1")
}

func TestReportStringConcatenatesInOrder(t *testing.T) {
	r := diagnostic.NewReport("a.\nb.\n")
	r.Errorf(ast.Position{Line: 1, Column: 1}, "first")
	r.Warnf(ast.Position{Line: 2, Column: 1}, "second")
	out := r.String()
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}
