// Package pipeline assembles the concrete transformer corpus into the
// root Sequence the driver runs over a TranslationUnit,
// and carries it through to the AST → RAM lowering, short-circuiting
// before lowering if the gated semantic check left errors in the report.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/datalogc/dlc/ast/transform"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/lower"
	"github.com/datalogc/dlc/ram"
	"github.com/datalogc/dlc/tu"
	"go.uber.org/zap"
)

// pinned names disableTransformers must never substitute with Null, even
// if listed in disable-transformers: later stages depend on the alias
// closure ResolveAliases establishes, so it cannot be switched off.
var pinned = map[string]bool{
	"ResolveAliases": true,
}

// Root builds the full concrete-transformer Sequence,
// optionally wrapping the whole Sequence in one DebugReporter when the
// `debug-report` config key is set.
func Root(cfg *config.Store, logger *zap.Logger) transform.Transformer {
	stages := []transform.Transformer{
		transform.ComponentChecker{},
		transform.ComponentInstantiationTransformer{},
		transform.PragmaChecker{},
		transform.NewFixpoint(transform.NewPipeline(
			transform.ResolveAliasesTransformer{},
			transform.ResolveAnonymousRecordAliases{},
			transform.FoldAnonymousRecords{},
		)),
		transform.NewFixpoint(transform.RemoveBooleanConstraints{}),
		transform.ReplaceSingletonVariables{},
		transform.NewFixpoint(transform.RemoveRelationCopies{}),
		transform.NewFixpoint(transform.NewPipeline(
			transform.RemoveEmptyRelations{},
			transform.RemoveRedundantRelations{},
		)),
		transform.NewFixpoint(transform.MinimiseProgram{}),
		transform.NewFixpoint(transform.InlineRelationsTransformer{}),
		transform.ExpandEqrels{},
		transform.ReduceExistentials{},
		transform.SimplifyAggregateTargetExpression{},
		transform.GroundWitnesses{},
		transform.IODefaults{},
		transform.MagicSetTransformer{},
		transform.ResolveAliasesTransformer{},
		transform.NewFixpoint(transform.RemoveRelationCopies{}),
		transform.NewFixpoint(transform.NewPipeline(
			transform.RemoveEmptyRelations{},
			transform.RemoveRedundantRelations{},
		)),
		transform.SemanticChecker{},
	}

	names := map[string]bool{}
	for _, n := range cfg.List(config.KeyDisableTransformers) {
		names[n] = true
	}

	root := transform.NewSequence(stages...)
	disabled := transform.DisableTransformers(root, names, pinned)

	if cfg.Has(config.KeyDebugReport) && logger != nil {
		return transform.NewDebugReporter(disabled, logger)
	}
	return disabled
}

// Result is everything a driver invocation produces: the possibly-lowered
// RAM program (nil if the pipeline aborted on errors), plus the summary a
// CLI reports to the user.
type Result struct {
	RAM      *ram.Program
	Aborted  bool
	NumErr   int
	NumWarn  int
}

// Run applies root to t, then — unless the report already carries errors —
// lowers the resulting Program into a RAM Program under strategy.
func Run(t *tu.TranslationUnit, root transform.Transformer, strategy lower.Strategy) *Result {
	root.Apply(t)
	t.Invalidate()

	res := &Result{NumErr: t.Report.NumErrors(), NumWarn: t.Report.NumWarnings()}
	if res.NumErr > 0 {
		res.Aborted = true
		return res
	}

	res.RAM = lower.Lower(t, strategy)
	return res
}

// StrategyFor selects the lowering Strategy the `provenance` config key
// names; any non-empty value enables provenance subroutines, since this
// core does not distinguish explain/explore beyond enabling them (that
// split governs the external provenance-explainer CLI, not this module).
func StrategyFor(cfg *config.Store) lower.Strategy {
	if strings.TrimSpace(cfg.Get(config.KeyProvenance)) != "" {
		return lower.Provenance{}
	}
	return lower.Seminaive{}
}

// Summary renders a one-line human-readable result summary, in the style
// of a CLI's terse status line.
func (r *Result) Summary() string {
	if r.Aborted {
		return fmt.Sprintf("aborted: %d error(s), %d warning(s)", r.NumErr, r.NumWarn)
	}
	return fmt.Sprintf("ok: %d warning(s)", r.NumWarn)
}
