package transform_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/tu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTransformer reports "changed" for a fixed number of calls, then
// false forever after — enough to exercise Fixpoint/Loop/While termination
// without depending on any concrete rewrite pass.
type countingTransformer struct {
	remaining int
	calls     int
}

func (c *countingTransformer) Name() string { return "Counting" }
func (c *countingTransformer) Clone() transform.Transformer {
	return &countingTransformer{remaining: c.remaining}
}
func (c *countingTransformer) Apply(t *tu.TranslationUnit) bool {
	c.calls++
	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

func newTU() *tu.TranslationUnit {
	return tu.New(ast.NewProgram(), "test", config.NewStore())
}

func TestSequenceReturnsLastFlagNotOR(t *testing.T) {
	// First transformer changes, second does not: Sequence is authoritative
	// on the LAST transformer, unlike Pipeline's logical OR.
	seq := transform.NewSequence(&countingTransformer{remaining: 1}, &countingTransformer{remaining: 0})
	assert.False(t, seq.Apply(newTU()))
}

func TestPipelineReturnsLogicalOR(t *testing.T) {
	pipe := transform.NewPipeline(&countingTransformer{remaining: 1}, &countingTransformer{remaining: 0})
	assert.True(t, pipe.Apply(newTU()))
}

func TestFixpointRepeatsUntilFalseAndReportsProductiveRun(t *testing.T) {
	inner := &countingTransformer{remaining: 3}
	fp := transform.NewFixpoint(inner)
	assert.True(t, fp.Apply(newTU()))
	assert.Equal(t, 4, inner.calls) // 3 productive + 1 terminating call
	assert.False(t, fp.Apply(newTU()), "next apply must be a no-op at the fixpoint")
}

func TestLoopCountsIterations(t *testing.T) {
	inner := &countingTransformer{remaining: 5}
	loop := transform.NewLoop(inner)
	require.True(t, loop.Apply(newTU()))
	assert.Equal(t, 5, loop.Iterations)
}

func TestConditionalRunsOnlyWhenPredicateHolds(t *testing.T) {
	inner := &countingTransformer{remaining: 1}
	cond := transform.NewConditional(func(*tu.TranslationUnit) bool { return false }, inner)
	assert.False(t, cond.Apply(newTU()))
	assert.Equal(t, 0, inner.calls)

	cond2 := transform.NewConditional(func(*tu.TranslationUnit) bool { return true }, inner)
	assert.True(t, cond2.Apply(newTU()))
	assert.Equal(t, 1, inner.calls)
}

func TestWhileRepeatsWhilePredicateHolds(t *testing.T) {
	calls := 0
	inner := &countingTransformer{remaining: 10}
	w := transform.NewWhile(func(*tu.TranslationUnit) bool {
		calls++
		return calls <= 2
	}, inner)
	assert.True(t, w.Apply(newTU()))
	assert.Equal(t, 2, inner.calls)
}

func TestNullAlwaysFalseAndNamesOriginal(t *testing.T) {
	n := &transform.Null{OriginalName: "MagicSet"}
	assert.False(t, n.Apply(newTU()))
	assert.Equal(t, "Null(MagicSet)", n.Name())
}

func TestDisableTransformersSubstitutesNamedAndSkipsPinned(t *testing.T) {
	root := transform.NewSequence(
		transform.ResolveAliasesTransformer{},
		transform.MinimiseProgram{},
	)
	out := transform.DisableTransformers(root, map[string]bool{"ResolveAliases": true, "MinimiseProgram": true},
		map[string]bool{"ResolveAliases": true})

	seq, ok := out.(*transform.Sequence)
	require.True(t, ok)
	_, stillResolveAliases := seq.Transformers[0].(transform.ResolveAliasesTransformer)
	assert.True(t, stillResolveAliases, "pinned transformer must survive disable-transformers")

	null, ok := seq.Transformers[1].(*transform.Null)
	require.True(t, ok, "unpinned named transformer must become Null")
	assert.Equal(t, "MinimiseProgram", null.OriginalName)
}

func TestDisableTransformersRecursesIntoMetaTransformers(t *testing.T) {
	inner := transform.MinimiseProgram{}
	fp := transform.NewFixpoint(inner)
	out := transform.DisableTransformers(fp, map[string]bool{"MinimiseProgram": true}, nil)

	gotFp, ok := out.(*transform.Fixpoint)
	require.True(t, ok)
	_, isNull := gotFp.Inner.(*transform.Null)
	assert.True(t, isNull, "DisableTransformers must recurse into Fixpoint.Inner")
}
