package transform_test

// Direct unit coverage for the remaining rewrite passes not already
// exercised by scenarios_test.go / transformer_test.go.

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/datalogc/dlc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveBooleanConstraintsPrunesTrueAndDropsFalseClauses(t *testing.T) {
	p := ast.NewProgram()
	// p(x) :- q(x), true.
	keep := atomClause("p", []ast.Argument{v("x")}, atom("q", v("x")))
	keep.Body = append(keep.Body, &ast.BooleanConstraint{Value: true})
	// p(x) :- q(x), false.  (dropped entirely)
	drop := atomClause("p", []ast.Argument{v("x")}, atom("q", v("x")))
	drop.Body = append(drop.Body, &ast.BooleanConstraint{Value: false})
	p.Clauses = append(p.Clauses, keep, drop)

	unit := newUnitFor(p)
	changed := transform.RemoveBooleanConstraints{}.Apply(unit)
	require.True(t, changed)
	require.Len(t, unit.Program.Clauses, 1)
	for _, lit := range unit.Program.Clauses[0].Body {
		_, isBool := lit.(*ast.BooleanConstraint)
		assert.False(t, isBool, "literal-level true must be pruned from the surviving clause")
	}
}

func TestRemoveBooleanConstraintsSimplifiesAggregatorBooleanBody(t *testing.T) {
	agg := &ast.Aggregator{Op: "count", Body: []ast.Literal{&ast.BooleanConstraint{Value: false}}}
	c := &ast.Clause{
		Head: atom("d", v("n")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}},
	}
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	require.True(t, transform.RemoveBooleanConstraints{}.Apply(unit))
	require.Len(t, agg.Body, 1)
	bc, ok := agg.Body[0].(*ast.BinaryConstraint)
	require.True(t, ok)
	assert.Equal(t, "=", bc.Op)
	assert.Equal(t, "0", bc.Left.(*ast.NumericConstant).Value)
	assert.Equal(t, "1", bc.Right.(*ast.NumericConstant).Value)
}

func TestReplaceSingletonVariablesBecomesUnnamed(t *testing.T) {
	// p(x) :- q(x, once).  'once' occurs exactly one time.
	c := atomClause("p", []ast.Argument{v("x")}, atom("q", v("x"), v("once")))
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	require.True(t, transform.ReplaceSingletonVariables{}.Apply(unit))

	qAtom := unit.Program.Clauses[0].Body[0].(*ast.Atom)
	_, isUnnamed := qAtom.Args[1].(*ast.UnnamedVariable)
	assert.True(t, isUnnamed, "a variable occurring exactly once must become unnamed")
	_, stillNamed := qAtom.Args[0].(*ast.Variable)
	assert.True(t, stillNamed, "x occurs twice (head and body) and must stay named")
}

func TestReduceExistentialsCollapsesAllWildcardRelation(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("exists_marker"))
	// exists_marker(_,_) :- q(x).   and   r(y) :- exists_marker(_,_).
	p.Clauses = append(p.Clauses,
		atomClause("exists_marker", []ast.Argument{&ast.UnnamedVariable{}, &ast.UnnamedVariable{}}, atom("q", v("x"))),
		atomClause("r", []ast.Argument{v("y")}, atom("exists_marker", &ast.UnnamedVariable{}, &ast.UnnamedVariable{})),
	)

	unit := newUnitFor(p)
	require.True(t, transform.ReduceExistentials{}.Apply(unit))

	var rel *ast.Relation
	for _, r := range unit.Program.Relations {
		if r.Name.String() == "exists_marker" {
			rel = r
		}
	}
	require.NotNil(t, rel)
	assert.Equal(t, 0, rel.Arity(), "an all-wildcard relation collapses to nullary")
}

func TestReduceExistentialsSkipsRelationWithABoundOccurrence(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("partial"))
	p.Clauses = append(p.Clauses,
		atomClause("partial", []ast.Argument{&ast.UnnamedVariable{}, &ast.UnnamedVariable{}}, atom("q", v("x"))),
		atomClause("r", []ast.Argument{v("y")}, atom("partial", v("y"), &ast.UnnamedVariable{})),
	)
	unit := newUnitFor(p)
	changed := transform.ReduceExistentials{}.Apply(unit)
	assert.False(t, changed, "a bound occurrence of the relation must disqualify it")
}

func TestExpandEqrelsAddsTransitivitySymmetryReflexivity(t *testing.T) {
	rel := xyRelation("eq")
	rel.RelationRepresentation = ast.RepresentationEqrel
	p := ast.NewProgram()
	p.Relations = append(p.Relations, rel)

	unit := newUnitFor(p)
	require.True(t, transform.ExpandEqrels{}.Apply(unit))
	assert.Equal(t, ast.RepresentationBTree, rel.RelationRepresentation)
	assert.Len(t, unit.Program.Clauses, 4, "symmetry, transitivity, and two reflexivity clauses")
}

func TestIODefaultsFillsMissingParametersAndPropagatesConfig(t *testing.T) {
	p := ast.NewProgram()
	d := &ast.Directive{Type: ast.DirectiveInput, Relation: ast.NewQualifiedName("edge")}
	p.Directives = append(p.Directives, d)

	cfg := config.NewStore()
	cfg.SetLocked(config.KeyFactDir, "/data/facts")
	unit := newUnitFor(p)
	unit.Config = cfg

	require.True(t, transform.IODefaults{}.Apply(unit))
	name, _ := d.Get("name")
	io, _ := d.Get("IO")
	op, _ := d.Get("operation")
	factDir, _ := d.Get("fact-dir")
	assert.Equal(t, "edge", name)
	assert.Equal(t, "file", io)
	assert.Equal(t, "input", op)
	assert.Equal(t, "/data/facts", factDir)
}

func TestIODefaultsStdoutGetsHeaders(t *testing.T) {
	p := ast.NewProgram()
	d := &ast.Directive{Type: ast.DirectiveOutput, Relation: ast.NewQualifiedName("path")}
	d.Set("IO", "stdout")
	p.Directives = append(p.Directives, d)

	unit := newUnitFor(p)
	require.True(t, transform.IODefaults{}.Apply(unit))
	headers, _ := d.Get("headers")
	assert.Equal(t, "true", headers)
}

func TestPragmaCheckerCopiesPragmasIntoConfig(t *testing.T) {
	p := ast.NewProgram()
	p.Pragmas = append(p.Pragmas, &ast.Pragma{Key: "magic-transform", Value: "*"})
	unit := newUnitFor(p)

	require.True(t, transform.PragmaChecker{}.Apply(unit))
	assert.Equal(t, "*", unit.Config.Get(config.KeyMagicTransform))
}

func TestPragmaCheckerDoesNotOverrideLockedValue(t *testing.T) {
	p := ast.NewProgram()
	p.Pragmas = append(p.Pragmas, &ast.Pragma{Key: "provenance", Value: "explain"})
	unit := newUnitFor(p)
	unit.Config.SetLocked(config.KeyProvenance, "explore")

	transform.PragmaChecker{}.Apply(unit)
	assert.Equal(t, "explore", unit.Config.Get(config.KeyProvenance), "a CLI-locked value must win over a pragma")
}
