package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/tu"
)

// RemoveRelationCopies replaces a relation R defined by a single copying
// clause `R(X,Y) :- S(X,Y)` — not appearing as I/O — with S everywhere,
// then deletes R.
type RemoveRelationCopies struct{}

func (RemoveRelationCopies) Name() string      { return "RemoveRelationCopies" }
func (RemoveRelationCopies) Clone() Transformer { return RemoveRelationCopies{} }

func (RemoveRelationCopies) Apply(t *tu.TranslationUnit) bool {
	io := analysis.IOTypeOf(t)
	changed := false

	for {
		relPtr, rel, target, ok := findCopyRelation(t.Program, io)
		if !ok {
			break
		}
		removeRelationPointer(t.Program, relPtr)
		removeClausesForRelation(t.Program, rel)
		renameRelationEverywhere(t.Program, rel, target)
		changed = true
		t.Invalidate()
		io = analysis.IOTypeOf(t)
	}
	return changed
}

func removeRelationPointer(p *ast.Program, target *ast.Relation) {
	out := p.Relations[:0]
	for _, r := range p.Relations {
		if r != target {
			out = append(out, r)
		}
	}
	p.Relations = out
}

func removeClausesForRelation(p *ast.Program, rel ast.QualifiedName) {
	out := p.Clauses[:0]
	for _, c := range p.Clauses {
		if !c.Head.Name.Equal(rel) {
			out = append(out, c)
		}
	}
	p.Clauses = out
}

// findCopyRelation finds a relation R with exactly one clause whose body is
// a single positive atom S(args) that is a positional copy of R's head
// arguments (an exact permutation-free identity copy), where R is not I/O.
func findCopyRelation(p *ast.Program, io *analysis.IOType) (relPtr *ast.Relation, rel, target ast.QualifiedName, ok bool) {
	for _, r := range p.Relations {
		name := r.Name.String()
		if io.IsInput(name) || io.IsOutput(name) {
			continue
		}
		clauses := p.ClausesForRelation(r.Name)
		if len(clauses) != 1 {
			continue
		}
		c := clauses[0]
		if len(c.Body) != 1 {
			continue
		}
		atom, isAtom := c.Body[0].(*ast.Atom)
		if !isAtom || atom.Name.Equal(r.Name) {
			continue
		}
		if !isIdentityCopy(c.Head, atom) {
			continue
		}
		return r, r.Name, atom.Name, true
	}
	return nil, ast.QualifiedName{}, ast.QualifiedName{}, false
}

// isIdentityCopy reports whether head's arguments are exactly the same
// variables, in the same order, as body's.
func isIdentityCopy(head, body *ast.Atom) bool {
	if len(head.Args) != len(body.Args) {
		return false
	}
	for i := range head.Args {
		hv, ok1 := head.Args[i].(*ast.Variable)
		bv, ok2 := body.Args[i].(*ast.Variable)
		if !ok1 || !ok2 || hv.Name != bv.Name {
			return false
		}
	}
	return true
}

func renameRelationEverywhere(p *ast.Program, from, to ast.QualifiedName) {
	renameQualifiedNames(p, func(name ast.QualifiedName) ast.QualifiedName {
		if name.Equal(from) {
			return to
		}
		return name
	})
}
