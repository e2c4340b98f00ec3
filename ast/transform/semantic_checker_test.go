package transform_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemanticCheckerNeverMutatesTheProgram(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("p"))
	unit := newUnitFor(p)
	assert.False(t, transform.SemanticChecker{}.Apply(unit))
}

func TestSemanticCheckerFlagsRelationRedefinition(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("p"), xyRelation("p"))
	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	assert.Greater(t, unit.Report.NumErrors(), 0, "a relation declared twice must be reported")
}

func TestSemanticCheckerFlagsUngroundedHeadVariable(t *testing.T) {
	// p(x) :- q().  x never occurs in the body.
	c := &ast.Clause{Head: atom("p", v("x")), Body: []ast.Literal{atom("q")}}
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("q"))
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	assert.Greater(t, unit.Report.NumErrors(), 0, "an ungrounded head variable must be reported")
}

func TestSemanticCheckerAcceptsGroundedClause(t *testing.T) {
	c := atomClause("p", []ast.Argument{v("x")}, atom("q", v("x")))
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("q"))
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	assert.Equal(t, 0, unit.Report.NumErrors())
}

func TestSemanticCheckerDoesNotCheckGroundednessOnFacts(t *testing.T) {
	c := &ast.Clause{Head: atom("p", &ast.NumericConstant{Value: "1"})}
	p := ast.NewProgram()
	p.Clauses = append(p.Clauses, c)
	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	assert.Equal(t, 0, unit.Report.NumErrors())
}

func TestSemanticCheckerFlagsUngroundedNegatedVariable(t *testing.T) {
	// p(x) :- q(x), !r(y).  y only appears negated.
	c := &ast.Clause{
		Head: atom("p", v("x")),
		Body: []ast.Literal{
			atom("q", v("x")),
			&ast.Negation{Atom: atom("r", v("y"))},
		},
	}
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("q"), xyRelation("r"))
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	assert.Greater(t, unit.Report.NumErrors(), 0, "a negated atom's free variable must be reported")
}

func TestSemanticCheckerFlagsUnboundMinMaxWitness(t *testing.T) {
	agg := &ast.Aggregator{Op: "max", Target: v("y"), Body: []ast.Literal{atom("e", v("k"))}}
	c := &ast.Clause{
		Head: atom("d", v("n")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}},
	}
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("e"))
	p.Clauses = append(p.Clauses, c)

	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	assert.Greater(t, unit.Report.NumErrors(), 0, "a max witness not bound inside the aggregator body must be reported")
}

func TestSemanticCheckerWarnsOnUnrecognisedDirectiveParameter(t *testing.T) {
	d := &ast.Directive{Type: ast.DirectiveInput, Relation: ast.NewQualifiedName("edge")}
	d.Parameters = append(d.Parameters, ast.Param{Key: "bogus", Value: "1"})
	p := ast.NewProgram()
	p.Directives = append(p.Directives, d)

	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	require.Equal(t, 0, unit.Report.NumErrors())
	assert.Greater(t, unit.Report.NumWarnings(), 0, "an unrecognised directive parameter should warn, not error")
}

func TestSemanticCheckerRequiresLimitsizeN(t *testing.T) {
	d := &ast.Directive{Type: ast.DirectiveLimitsize, Relation: ast.NewQualifiedName("edge")}
	p := ast.NewProgram()
	p.Directives = append(p.Directives, d)

	unit := newUnitFor(p)
	transform.SemanticChecker{}.Apply(unit)
	assert.Greater(t, unit.Report.NumErrors(), 0, "limitsize without n must be reported")
}
