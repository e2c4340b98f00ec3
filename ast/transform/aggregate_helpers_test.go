package transform_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyAggregateTargetExpressionGroundsNonVariableTarget(t *testing.T) {
	// d(n) :- n = sum (y+1) : { e(y) }.
	agg := &ast.Aggregator{
		Op:     "sum",
		Target: &ast.UserDefinedFunctor{Name: ast.NewQualifiedName("+"), Args: []ast.Argument{v("y"), &ast.NumericConstant{Value: "1"}}},
		Body:   []ast.Literal{atom("e", v("y"))},
	}
	c := &ast.Clause{
		Head: atom("d", v("n")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}},
	}
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	require.True(t, transform.SimplifyAggregateTargetExpression{}.Apply(unit))

	fresh, ok := agg.Target.(*ast.Variable)
	require.True(t, ok, "target must become a bare variable")
	require.Len(t, agg.Body, 2)
	eq, ok := agg.Body[1].(*ast.BinaryConstraint)
	require.True(t, ok)
	assert.Equal(t, fresh.Name, eq.Left.(*ast.Variable).Name)
}

func TestSimplifyAggregateTargetExpressionLeavesCountAlone(t *testing.T) {
	agg := &ast.Aggregator{Op: "count", Body: []ast.Literal{atom("e", v("y"))}}
	c := &ast.Clause{Head: atom("d", v("n")), Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}}}
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	assert.False(t, transform.SimplifyAggregateTargetExpression{}.Apply(unit), "count has no target to ground")
}

func TestSimplifyAggregateTargetExpressionLeavesBareVariableTargetAlone(t *testing.T) {
	agg := &ast.Aggregator{Op: "sum", Target: v("y"), Body: []ast.Literal{atom("e", v("y"))}}
	c := &ast.Clause{Head: atom("d", v("n")), Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}}}
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	assert.False(t, transform.SimplifyAggregateTargetExpression{}.Apply(unit), "an already-bare variable target needs no grounding")
}

func TestGroundWitnessesAddsGroundingAtomForMinMaxTarget(t *testing.T) {
	agg := &ast.Aggregator{Op: "max", Target: v("y"), Body: []ast.Literal{atom("e", v("y"), v("k"))}}
	c := &ast.Clause{
		Head: atom("d", v("k"), v("n")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}},
	}
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	require.True(t, transform.GroundWitnesses{}.Apply(unit))
	require.Len(t, c.Body, 2)
	grounding, ok := c.Body[1].(*ast.Atom)
	require.True(t, ok)
	assert.Equal(t, "e", grounding.Name.String())
	require.Len(t, grounding.Args, 2)
	// The target position carries the aggregate's bound result; the
	// witness keeps its outer name.
	assert.Equal(t, "n", grounding.Args[0].(*ast.Variable).Name)
	assert.Equal(t, "k", grounding.Args[1].(*ast.Variable).Name)
	// The aggregate body's own copy of the witness is renamed away so it
	// no longer captures the outer k.
	inner, ok := agg.Body[0].(*ast.Atom)
	require.True(t, ok)
	assert.Equal(t, "y", inner.Args[0].(*ast.Variable).Name)
	assert.NotEqual(t, "k", inner.Args[1].(*ast.Variable).Name)
}

func TestGroundWitnessesSkipsSumAndCount(t *testing.T) {
	agg := &ast.Aggregator{Op: "sum", Target: v("y"), Body: []ast.Literal{atom("e", v("y"), v("k"))}}
	c := &ast.Clause{
		Head: atom("d", v("k"), v("n")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}},
	}
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	assert.False(t, transform.GroundWitnesses{}.Apply(unit), "only min/max witnesses need grounding")
}
