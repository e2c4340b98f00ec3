package ast_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplesProgram() *ast.Program {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, ast.NewRelation(
		ast.NewQualifiedName("edge"),
		[]ast.Attribute{{Name: "a", TypeName: ast.NewQualifiedName("symbol")}, {Name: "b", TypeName: ast.NewQualifiedName("symbol")}},
		ast.Position{},
	))
	p.Clauses = append(p.Clauses, &ast.Clause{
		Head: &ast.Atom{Name: ast.NewQualifiedName("path"), Args: []ast.Argument{
			&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"},
		}},
		Body: []ast.Literal{
			&ast.Atom{Name: ast.NewQualifiedName("edge"), Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
			&ast.BinaryConstraint{Op: "!=", Left: &ast.Variable{Name: "x"}, Right: &ast.Variable{Name: "y"}},
		},
	})
	return p
}

func TestCloneIdentity(t *testing.T) {
	p := samplesProgram()
	clone := p.Clone().(*ast.Program)

	require.True(t, p.Equal(clone))

	// Mutating the clone must not affect the original: no shared mutable state.
	clone.Clauses[0].Body = clone.Clauses[0].Body[:1]
	assert.Len(t, p.Clauses[0].Body, 2)
	assert.Len(t, clone.Clauses[0].Body, 1)
	assert.False(t, p.Equal(clone))
}

func TestMapperIdempotence(t *testing.T) {
	p := samplesProgram()
	before := p.Clone().(*ast.Program)

	var walk ast.Mapper
	walk = func(n ast.Node) ast.Node {
		return n.Apply(walk)
	}
	after := walk(p)

	assert.True(t, before.Equal(after.(*ast.Program)))
}

func TestWalkVisitsEveryNode(t *testing.T) {
	p := samplesProgram()
	count := 0
	ast.Inspect(p, func(n ast.Node) bool {
		count++
		return true
	})
	// program, relation, clause, head atom + 2 args, body atom + 2 args, constraint + 2 args
	assert.GreaterOrEqual(t, count, 10)
}

func TestFindAllAtoms(t *testing.T) {
	p := samplesProgram()
	atoms := ast.FindAll(p, func(n ast.Node) bool {
		_, ok := n.(*ast.Atom)
		return ok
	})
	assert.Len(t, atoms, 2) // head "path" + body "edge"
}

func TestQualifiedNameAppendPrepend(t *testing.T) {
	q := ast.NewQualifiedName("a", "b")
	assert.Equal(t, "a.b", q.String())
	assert.Equal(t, "a.b.c", q.Append("c").String())
	assert.Equal(t, "x.a.b", q.Prepend("x").String())
	assert.Equal(t, "b", q.DropFront(1).String())
}

func TestComponentEqualPointerShortCircuit(t *testing.T) {
	sharedBase := &ast.ComponentType{Name: ast.NewQualifiedName("Base")}
	c1 := &ast.Component{Name: "C", Base: []*ast.ComponentType{sharedBase}}
	c2 := &ast.Component{Name: "C", Base: []*ast.ComponentType{sharedBase}}
	assert.True(t, c1.Equal(c2))

	// Structurally identical but distinct pointer: still equal via
	// structural comparison (the short-circuit is an optimisation, not a
	// correctness requirement in the non-aliased case).
	c3 := &ast.Component{Name: "C", Base: []*ast.ComponentType{{Name: ast.NewQualifiedName("Base")}}}
	assert.True(t, c1.Equal(c3))
}
