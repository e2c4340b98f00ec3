// Package tu implements the TranslationUnit: the owner of a Program, the
// ErrorReport, and a lazily-populated, explicitly-invalidated analysis
// cache. No analysis may mutate the Program; invalidation drops
// every cached entry unconditionally.
package tu

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/diagnostic"
)

// TranslationUnit owns the Program, borrows an ErrorReport and a debug
// sink, and owns an analysis cache keyed by a per-analysis zero-sized
// token type, so two analyses can never collide the way string-named
// cache keys can.
type TranslationUnit struct {
	Program *ast.Program
	Report  *diagnostic.Report
	Config  *config.Store

	cache      map[any]any
	debugJSON  string
}

// New creates a TranslationUnit over program, with a fresh diagnostic
// report and the given (possibly nil) configuration store.
func New(program *ast.Program, source string, cfg *config.Store) *TranslationUnit {
	if cfg == nil {
		cfg = config.NewStore()
	}
	return &TranslationUnit{
		Program: program,
		Report:  diagnostic.NewReport(source),
		Config:  cfg,
		cache:   map[any]any{},
	}
}

// Invalidate drops every cached analysis. Called after any transformer
// reports a structural change that could affect them.
func (t *TranslationUnit) Invalidate() {
	t.cache = map[any]any{}
}

// DebugReportJSON returns the accumulated debug-report document built
// incrementally by DebugReporter sections (empty-object JSON if none has
// run yet).
func (t *TranslationUnit) DebugReportJSON() (string, error) {
	if t.debugJSON == "" {
		return "{}", nil
	}
	return t.debugJSON, nil
}

// SetDebugReportJSON overwrites the accumulated debug-report document.
func (t *TranslationUnit) SetDebugReportJSON(doc string) {
	t.debugJSON = doc
}

// getOrCompute is the generic workhorse behind every analysis's typed
// accessor: it looks up key in the cache, and on a miss calls compute(),
// caches, and returns the result. Creation is deterministic and
// side-effect-free with respect to the Program, as required by every
// concrete analysis in ast/analysis.
func getOrCompute[K comparable, V any](t *TranslationUnit, key K, compute func() V) V {
	if v, ok := t.cache[key]; ok {
		return v.(V)
	}
	v := compute()
	t.cache[key] = v
	return v
}

// Get is exported so ast/analysis (which cannot be imported here without a
// cycle) can implement its typed `FooOf(tu)` accessors in terms of the same
// single-flight cache.
func Get[K comparable, V any](t *TranslationUnit, key K, compute func() V) V {
	return getOrCompute(t, key, compute)
}
