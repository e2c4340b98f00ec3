package transform_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveEmptyRelationsDropsClauselessNonInput(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("unused"), xyRelation("q"))
	p.Clauses = append(p.Clauses, atomClause("q", []ast.Argument{v("x"), v("y")}, atom("q", v("x"), v("y"))))

	unit := newUnitFor(p)
	require.True(t, transform.RemoveEmptyRelations{}.Apply(unit))
	require.Len(t, unit.Program.Relations, 1)
	assert.Equal(t, "q", unit.Program.Relations[0].Name.String())
}

func TestRemoveEmptyRelationsKeepsClauselessInputRelation(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("edge"))
	p.Directives = append(p.Directives, &ast.Directive{Type: ast.DirectiveInput, Relation: ast.NewQualifiedName("edge")})

	unit := newUnitFor(p)
	changed := transform.RemoveEmptyRelations{}.Apply(unit)
	assert.False(t, changed, "an input relation with no clauses must survive")
}

func TestRemoveRedundantRelationsDropsUnreachableFromOutput(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("a"), xyRelation("b"), xyRelation("dead"))
	p.Directives = append(p.Directives, &ast.Directive{Type: ast.DirectiveOutput, Relation: ast.NewQualifiedName("b")})
	p.Clauses = append(p.Clauses,
		atomClause("b", []ast.Argument{v("x"), v("y")}, atom("a", v("x"), v("y"))),
		atomClause("dead", []ast.Argument{v("x"), v("y")}, atom("a", v("x"), v("y"))),
	)

	unit := newUnitFor(p)
	require.True(t, transform.RemoveRedundantRelations{}.Apply(unit))

	names := map[string]bool{}
	for _, r := range unit.Program.Relations {
		names[r.Name.String()] = true
	}
	assert.True(t, names["a"] && names["b"])
	assert.False(t, names["dead"], "a relation unreachable from any output must be dropped")
	for _, c := range unit.Program.Clauses {
		assert.NotEqual(t, "dead", c.Head.Name.String(), "clauses of a dropped relation must also be removed")
	}
}
