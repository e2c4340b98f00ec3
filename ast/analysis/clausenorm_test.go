package analysis_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qn(s string) ast.QualifiedName { return ast.NewQualifiedName(s) }

func atomLit(name string, args ...ast.Argument) *ast.Atom {
	return &ast.Atom{Name: qn(name), Args: args}
}

func TestNormaliseClauseFullyNormalisedOnPlainClause(t *testing.T) {
	c := &ast.Clause{
		Head: atomLit("p", &ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}),
		Body: []ast.Literal{atomLit("q", &ast.Variable{Name: "x"}, &ast.Variable{Name: "y"})},
	}
	nc := analysis.NormaliseClause(c)
	assert.True(t, nc.FullyNormalised)
	assert.Len(t, nc.Elements, 2)
	assert.True(t, nc.Variables["x"] && nc.Variables["y"])
}

func TestNormaliseClauseFlagsComplexAtomArgumentAsNotFullyNormalised(t *testing.T) {
	c := &ast.Clause{
		Head: atomLit("p", &ast.RecordInit{Args: []ast.Argument{&ast.Variable{Name: "x"}}}),
		Body: nil,
	}
	nc := analysis.NormaliseClause(c)
	assert.False(t, nc.FullyNormalised, "a RecordInit occurring directly as an atom argument is a complex term")
}

func TestNormaliseClauseStaysFullyNormalisedWithAnAggregator(t *testing.T) {
	// n = sum y : { e(y, k) }. — the aggregator is a legitimate argument
	// kind, not an opaque complex term, so it must not trip FullyNormalised.
	agg := &ast.Aggregator{
		Op:     "sum",
		Target: &ast.Variable{Name: "y"},
		Body:   []ast.Literal{atomLit("e", &ast.Variable{Name: "y"}, &ast.Variable{Name: "k"})},
	}
	c := &ast.Clause{
		Head: atomLit("d", &ast.Variable{Name: "n"}),
		Body: []ast.Literal{
			&ast.BinaryConstraint{Op: "=", Left: &ast.Variable{Name: "n"}, Right: agg},
		},
	}
	nc := analysis.NormaliseClause(c)
	require.True(t, nc.FullyNormalised)
	// head, the aggregate's own element, its body atom, and the equality.
	assert.Len(t, nc.Elements, 4)
}

func TestAreBijectivelyEquivalentHoldsAcrossAggregatorScopeRenaming(t *testing.T) {
	build := func(scopeVar, joinVar, op string) *ast.Clause {
		agg := &ast.Aggregator{
			Op:     op,
			Target: &ast.Variable{Name: scopeVar},
			Body:   []ast.Literal{atomLit("e", &ast.Variable{Name: scopeVar}, &ast.Variable{Name: joinVar})},
		}
		return &ast.Clause{
			Head: atomLit("d", &ast.Variable{Name: "n"}),
			Body: []ast.Literal{
				&ast.BinaryConstraint{Op: "=", Left: &ast.Variable{Name: "n"}, Right: agg},
			},
		}
	}

	sumA := analysis.NormaliseClause(build("y", "k", "sum"))
	sumB := analysis.NormaliseClause(build("v", "k", "sum"))
	minA := analysis.NormaliseClause(build("y", "k", "min"))

	assert.True(t, analysis.AreBijectivelyEquivalent(sumA, sumB), "renaming the aggregate-scope variable must not break equivalence")
	assert.False(t, analysis.AreBijectivelyEquivalent(sumA, minA), "a different aggregate operator must never be judged equivalent")
}

func TestAreBijectivelyEquivalentRespectsAggregatorScopes(t *testing.T) {
	// d(n) :- n = max y : { e(y,k) }, e(a,b).   versus
	// d(n) :- n = max y : { e(y,k), e(a,b) }.
	// Identical qualifier multiset and variable count, but the second e
	// atom lives in a different scope, so no permutation may pair them.
	insideAndOut := &ast.Clause{
		Head: atomLit("d", &ast.Variable{Name: "n"}),
		Body: []ast.Literal{
			&ast.BinaryConstraint{Op: "=", Left: &ast.Variable{Name: "n"}, Right: &ast.Aggregator{
				Op:     "max",
				Target: &ast.Variable{Name: "y"},
				Body:   []ast.Literal{atomLit("e", &ast.Variable{Name: "y"}, &ast.Variable{Name: "k"})},
			}},
			atomLit("e", &ast.Variable{Name: "a"}, &ast.Variable{Name: "b"}),
		},
	}
	bothInside := &ast.Clause{
		Head: atomLit("d", &ast.Variable{Name: "n"}),
		Body: []ast.Literal{
			&ast.BinaryConstraint{Op: "=", Left: &ast.Variable{Name: "n"}, Right: &ast.Aggregator{
				Op:     "max",
				Target: &ast.Variable{Name: "y"},
				Body: []ast.Literal{
					atomLit("e", &ast.Variable{Name: "y"}, &ast.Variable{Name: "k"}),
					atomLit("e", &ast.Variable{Name: "a"}, &ast.Variable{Name: "b"}),
				},
			}},
		},
	}

	na := analysis.NormaliseClause(insideAndOut)
	nb := analysis.NormaliseClause(bothInside)
	assert.False(t, analysis.AreBijectivelyEquivalent(na, nb), "an atom inside an aggregate body must never match a top-level atom")
	assert.False(t, analysis.AreBijectivelyEquivalent(nb, na), "scope mismatch must be rejected in both directions")
}

func TestAreBijectivelyEquivalentSymmetricAndReflexive(t *testing.T) {
	a := analysis.NormaliseClause(&ast.Clause{
		Head: atomLit("c", &ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}),
		Body: []ast.Literal{atomLit("r", &ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}), atomLit("s", &ast.Variable{Name: "y"}, &ast.Variable{Name: "x"})},
	})
	b := analysis.NormaliseClause(&ast.Clause{
		Head: atomLit("c", &ast.Variable{Name: "p"}, &ast.Variable{Name: "q"}),
		Body: []ast.Literal{atomLit("s", &ast.Variable{Name: "q"}, &ast.Variable{Name: "p"}), atomLit("r", &ast.Variable{Name: "p"}, &ast.Variable{Name: "q"})},
	})

	assert.True(t, analysis.AreBijectivelyEquivalent(a, a), "reflexivity on a fully-normalised clause")
	assert.True(t, analysis.AreBijectivelyEquivalent(a, b))
	assert.Equal(t, analysis.AreBijectivelyEquivalent(a, b), analysis.AreBijectivelyEquivalent(b, a), "bijective equivalence must be symmetric")
}
