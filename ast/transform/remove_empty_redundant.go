package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/tu"
)

// RemoveEmptyRelations eliminates relations with no clauses that are not
// themselves input relations.
type RemoveEmptyRelations struct{}

func (RemoveEmptyRelations) Name() string      { return "RemoveEmptyRelations" }
func (RemoveEmptyRelations) Clone() Transformer { return RemoveEmptyRelations{} }

func (RemoveEmptyRelations) Apply(t *tu.TranslationUnit) bool {
	io := analysis.IOTypeOf(t)
	changed := false
	var kept []*ast.Relation
	for _, r := range t.Program.Relations {
		if !io.IsInput(r.Name.String()) && len(t.Program.ClausesForRelation(r.Name)) == 0 {
			changed = true
			continue
		}
		kept = append(kept, r)
	}
	if changed {
		t.Program.Relations = kept
		t.Invalidate()
	}
	return changed
}

// RemoveRedundantRelations eliminates relations not reachable, via the
// precedence graph, from any output or printsize relation.
type RemoveRedundantRelations struct{}

func (RemoveRedundantRelations) Name() string      { return "RemoveRedundantRelations" }
func (RemoveRedundantRelations) Clone() Transformer { return RemoveRedundantRelations{} }

func (RemoveRedundantRelations) Apply(t *tu.TranslationUnit) bool {
	io := analysis.IOTypeOf(t)
	graph := analysis.PrecedenceGraphOf(t)

	reachable := map[string]bool{}
	var visit func(string)
	visit = func(rel string) {
		if reachable[rel] {
			return
		}
		reachable[rel] = true
		for _, pred := range graph.Predecessors(rel) {
			visit(pred)
		}
	}
	for _, out := range io.OutputRelations() {
		visit(out)
	}

	changed := false
	var kept []*ast.Relation
	for _, r := range t.Program.Relations {
		if io.IsInput(r.Name.String()) || reachable[r.Name.String()] {
			kept = append(kept, r)
			continue
		}
		changed = true
	}
	if !changed {
		return false
	}
	keptNames := map[string]bool{}
	for _, r := range kept {
		keptNames[r.Name.String()] = true
	}
	var clauses []*ast.Clause
	for _, c := range t.Program.Clauses {
		if keptNames[c.Head.Name.String()] {
			clauses = append(clauses, c)
		}
	}
	t.Program.Relations = kept
	t.Program.Clauses = clauses
	t.Invalidate()
	return true
}
