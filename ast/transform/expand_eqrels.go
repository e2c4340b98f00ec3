package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// ExpandEqrels rewrites relations marked EQREL into BTREE relations
// augmented with transitivity/symmetry/reflexivity clauses, so that a
// downstream lowering need not special-case the equivalence-relation
// representation.
type ExpandEqrels struct{}

func (ExpandEqrels) Name() string      { return "ExpandEqrels" }
func (ExpandEqrels) Clone() Transformer { return ExpandEqrels{} }

func (ExpandEqrels) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, r := range t.Program.Relations {
		if r.RelationRepresentation != ast.RepresentationEqrel || r.Arity() != 2 {
			continue
		}
		r.RelationRepresentation = ast.RepresentationBTree
		pos := r.Pos()
		x := &ast.Variable{Name: "@eqx", P: pos}
		y := &ast.Variable{Name: "@eqy", P: pos}
		z := &ast.Variable{Name: "@eqz", P: pos}

		atom := func(a1, a2 ast.Argument) *ast.Atom {
			return &ast.Atom{Name: r.Name, Args: []ast.Argument{a1.Clone().(ast.Argument), a2.Clone().(ast.Argument)}, P: pos}
		}

		// Symmetry: r(y,x) :- r(x,y).
		t.Program.Clauses = append(t.Program.Clauses, &ast.Clause{Head: atom(y, x), Body: []ast.Literal{atom(x, y)}, P: pos})
		// Transitivity: r(x,z) :- r(x,y), r(y,z).
		t.Program.Clauses = append(t.Program.Clauses, &ast.Clause{Head: atom(x, z), Body: []ast.Literal{atom(x, y), atom(y, z)}, P: pos})
		// Reflexivity over both columns: r(x,x) :- r(x,_); r(y,y) :- r(_,y).
		t.Program.Clauses = append(t.Program.Clauses,
			&ast.Clause{Head: atom(x, x), Body: []ast.Literal{atom(x, &ast.UnnamedVariable{P: pos})}, P: pos},
			&ast.Clause{Head: atom(y, y), Body: []ast.Literal{atom(&ast.UnnamedVariable{P: pos}, y)}, P: pos},
		)
		changed = true
	}
	if changed {
		t.Invalidate()
	}
	return changed
}
