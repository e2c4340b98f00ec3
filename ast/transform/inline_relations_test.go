package transform_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineRelationsExpandsCallSiteAndDropsTheRelation(t *testing.T) {
	inlineRel := xyRelation("double")
	inlineRel.Qualifiers[ast.QualifierInline] = true
	p := ast.NewProgram()
	p.Relations = append(p.Relations, inlineRel, xyRelation("p"))
	// double(x,y) :- y = x.
	p.Clauses = append(p.Clauses, &ast.Clause{
		Head: atom("double", v("x"), v("y")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("y"), Right: v("x")}},
	})
	// p(a,b) :- double(a,b).
	p.Clauses = append(p.Clauses, atomClause("p", []ast.Argument{v("a"), v("b")}, atom("double", v("a"), v("b"))))

	unit := newUnitFor(p)
	require.True(t, transform.InlineRelationsTransformer{}.Apply(unit))

	for _, r := range unit.Program.Relations {
		assert.NotEqual(t, "double", r.Name.String(), "an inlined relation is removed after expansion")
	}
	require.Len(t, unit.Program.Clauses, 1)
	pClause := unit.Program.Clauses[0]
	assert.Equal(t, "p", pClause.Head.Name.String())
	for _, lit := range pClause.Body {
		_, isAtom := lit.(*ast.Atom)
		assert.False(t, isAtom, "the call site should be replaced by the inlined rule's constraint body, not an atom")
	}
}

func TestInlineRelationsExpandsAtomInsideAggregateBody(t *testing.T) {
	inlineRel := xyRelation("double")
	inlineRel.Qualifiers[ast.QualifierInline] = true
	p := ast.NewProgram()
	p.Relations = append(p.Relations, inlineRel, xyRelation("p"))
	// double(x,y) :- y = x.
	p.Clauses = append(p.Clauses, &ast.Clause{
		Head: atom("double", v("x"), v("y")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("y"), Right: v("x")}},
	})
	// p(a,n) :- n = sum s : { double(a,s) }. — the only reference to the
	// inline relation sits inside the aggregate body.
	agg := &ast.Aggregator{Op: "sum", Target: v("s"), Body: []ast.Literal{atom("double", v("a"), v("s"))}}
	p.Clauses = append(p.Clauses, &ast.Clause{
		Head: atom("p", v("a"), v("n")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("n"), Right: agg}},
	})

	unit := newUnitFor(p)
	require.True(t, transform.InlineRelationsTransformer{}.Apply(unit))

	require.Len(t, unit.Program.Clauses, 1)
	out := unit.Program.Clauses[0]
	ast.Inspect(out, func(n ast.Node) bool {
		if a, ok := n.(*ast.Atom); ok {
			assert.NotEqual(t, "double", a.Name.String(), "no aggregate body may still reference the inline relation")
		}
		return true
	})
	var got *ast.Aggregator
	ast.Inspect(out, func(n ast.Node) bool {
		if ag, ok := n.(*ast.Aggregator); ok {
			got = ag
			return false
		}
		return true
	})
	require.NotNil(t, got)
	require.Len(t, got.Body, 1)
	_, isConstraint := got.Body[0].(*ast.BinaryConstraint)
	assert.True(t, isConstraint, "the call atom is replaced by the inlined rule's constraint body")
}

func TestInlineRelationsNoopWithoutAnyInlineQualifiedRelation(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("p"))
	p.Clauses = append(p.Clauses, atomClause("p", []ast.Argument{v("x"), v("y")}, atom("q", v("x"), v("y"))))

	unit := newUnitFor(p)
	assert.False(t, transform.InlineRelationsTransformer{}.Apply(unit))
}

// TestInlineRelationsExpandsNegatedMultiLiteralRuleAsCartesianProduct
// exercises De Morgan expansion over a two-literal inlined rule: `!mid(x,y)`
// must split into one output clause per negated disjunct
// (`!(a(x,y) ∧ x!=y) = !a(x,y) ∨ x=y`), not a single clause ANDing every
// negated literal together.
func TestInlineRelationsExpandsNegatedMultiLiteralRuleAsCartesianProduct(t *testing.T) {
	inlineRel := xyRelation("mid")
	inlineRel.Qualifiers[ast.QualifierInline] = true
	p := ast.NewProgram()
	p.Relations = append(p.Relations, inlineRel, xyRelation("a"), xyRelation("q"), xyRelation("p"))
	// mid(x,y) :- a(x,y), x != y.
	p.Clauses = append(p.Clauses, &ast.Clause{
		Head: atom("mid", v("x"), v("y")),
		Body: []ast.Literal{
			atom("a", v("x"), v("y")),
			&ast.BinaryConstraint{Op: "!=", Left: v("x"), Right: v("y")},
		},
	})
	// p(x,y) :- q(x,y), !mid(x,y).
	p.Clauses = append(p.Clauses, &ast.Clause{
		Head: atom("p", v("x"), v("y")),
		Body: []ast.Literal{
			atom("q", v("x"), v("y")),
			&ast.Negation{Atom: atom("mid", v("x"), v("y"))},
		},
	})

	unit := newUnitFor(p)
	require.True(t, transform.InlineRelationsTransformer{}.Apply(unit))

	require.Len(t, unit.Program.Clauses, 2, "De Morgan over a two-literal rule must split into two output clauses, one per negated disjunct")

	var sawNegatedAtom, sawInvertedConstraint bool
	for _, cl := range unit.Program.Clauses {
		require.Equal(t, "p", cl.Head.Name.String())
		for _, lit := range cl.Body {
			switch l := lit.(type) {
			case *ast.Negation:
				sawNegatedAtom = true
				assert.Equal(t, "a", l.Atom.Name.String())
			case *ast.BinaryConstraint:
				sawInvertedConstraint = true
				assert.Equal(t, "=", l.Op, "the != constraint must invert to = under negation")
			}
		}
	}
	assert.True(t, sawNegatedAtom, "expected one output clause negating the atom literal")
	assert.True(t, sawInvertedConstraint, "expected one output clause negating the != constraint into =")
}

func TestInlineRelationsRespectsExcludeList(t *testing.T) {
	inlineRel := xyRelation("double")
	inlineRel.Qualifiers[ast.QualifierInline] = true
	p := ast.NewProgram()
	p.Relations = append(p.Relations, inlineRel)
	p.Clauses = append(p.Clauses, &ast.Clause{
		Head: atom("double", v("x"), v("y")),
		Body: []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: v("y"), Right: v("x")}},
	})

	unit := newUnitFor(p)
	unit.Config.SetLocked("inline-exclude", "double")
	changed := transform.InlineRelationsTransformer{}.Apply(unit)
	assert.False(t, changed, "a relation on the inline-exclude list must not be expanded")
}
