package transform

import (
	"time"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
	"github.com/google/uuid"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// DebugReporter wraps Inner to emit a before/after snapshot of the printed
// Program (with each snapshot's byte length), the changed flag and timing
// into the TranslationUnit's debug-report JSON document, and a
// structured progress line through the driver's logger. Each run
// is tagged with a correlation UUID for cross-referencing the two; the
// UUID is bookkeeping only and never feeds any relation name the
// transformers emit (adornment/magic names stay purely counter-based).
type DebugReporter struct {
	Inner  Transformer
	Logger *zap.Logger
}

func NewDebugReporter(inner Transformer, logger *zap.Logger) *DebugReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebugReporter{Inner: inner, Logger: logger}
}

func (d *DebugReporter) Name() string { return "DebugReporter(" + d.Inner.Name() + ")" }

func (d *DebugReporter) Clone() Transformer {
	return &DebugReporter{Inner: d.Inner.Clone(), Logger: d.Logger}
}

func (d *DebugReporter) Apply(t *tu.TranslationUnit) bool {
	runID := uuid.New().String()
	before := ast.Sprint(t.Program)
	start := time.Now()

	changed := d.Inner.Apply(t)

	elapsed := time.Since(start)
	after := ast.Sprint(t.Program)

	section, err := t.DebugReportJSON()
	if err != nil {
		section = "{}"
	}
	section, err = sjson.Set(section, "transformers.-1", map[string]any{
		"name":        d.Inner.Name(),
		"runID":       runID,
		"changed":     changed,
		"elapsedMs":   elapsed.Milliseconds(),
		"before":      before,
		"after":       after,
		"beforeBytes": len(before),
		"afterBytes":  len(after),
	})
	if err == nil {
		t.SetDebugReportJSON(section)
	}

	d.Logger.Debug("transformer applied",
		zap.String("name", d.Inner.Name()),
		zap.String("runID", runID),
		zap.Bool("changed", changed),
		zap.Duration("elapsed", elapsed),
	)

	return changed
}
