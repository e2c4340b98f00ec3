package ast_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// Clause.Equal (like every Node.Equal) deliberately ignores Position, so a
// cmp.Diff over two *Clause values — which defers to that Equal method —
// must report no difference even when their positions diverge.
func TestCmpDiffIgnoresPositionViaNodeEqual(t *testing.T) {
	base := func(pos ast.Position) *ast.Clause {
		return &ast.Clause{
			Head: &ast.Atom{Name: ast.NewQualifiedName("path"), Args: []ast.Argument{&ast.Variable{Name: "x"}}, P: pos},
			Body: []ast.Literal{
				&ast.Atom{Name: ast.NewQualifiedName("node"), Args: []ast.Argument{&ast.Variable{Name: "x"}}},
			},
		}
	}
	a := base(ast.Position{File: "a.dl", Line: 1, Column: 1})
	b := base(ast.Position{File: "b.dl", Line: 99, Column: 7})

	assert.Empty(t, cmp.Diff(a, b), "positions must not surface in a structural diff")
}

func TestCmpDiffSurfacesRealStructuralChange(t *testing.T) {
	a := &ast.Clause{
		Head: &ast.Atom{Name: ast.NewQualifiedName("path"), Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		Body: []ast.Literal{
			&ast.Atom{Name: ast.NewQualifiedName("edge"), Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		},
	}
	b := &ast.Clause{
		Head: &ast.Atom{Name: ast.NewQualifiedName("path"), Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		Body: []ast.Literal{
			&ast.Atom{Name: ast.NewQualifiedName("other"), Args: []ast.Argument{&ast.Variable{Name: "x"}}},
		},
	}

	assert.NotEmpty(t, cmp.Diff(a, b), "a differing body relation must surface as a diff")
}
