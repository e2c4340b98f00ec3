package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/tu"
)

// MinimiseProgram runs four sub-passes, each invalidating analyses on
// change: reduceClauseBodies, removeRedundantClauses,
// reduceLocallyEquivalentClauses, reduceSingletonRelations.
type MinimiseProgram struct{}

func (MinimiseProgram) Name() string      { return "MinimiseProgram" }
func (MinimiseProgram) Clone() Transformer { return MinimiseProgram{} }

func (MinimiseProgram) Apply(t *tu.TranslationUnit) bool {
	changed := false
	if reduceClauseBodies(t) {
		changed = true
		t.Invalidate()
	}
	if removeRedundantClauses(t) {
		changed = true
		t.Invalidate()
	}
	if reduceLocallyEquivalentClauses(t) {
		changed = true
		t.Invalidate()
	}
	if reduceSingletonRelations(t) {
		changed = true
		t.Invalidate()
	}
	return changed
}

// reduceClauseBodies deduplicates identical body literals within each
// clause, comparing by structural Equal.
func reduceClauseBodies(t *tu.TranslationUnit) bool {
	changed := false
	for _, c := range t.Program.Clauses {
		out := c.Body[:0:0]
		for _, lit := range c.Body {
			dup := false
			for _, kept := range out {
				if kept.Equal(lit) {
					dup = true
					break
				}
			}
			if dup {
				changed = true
				continue
			}
			out = append(out, lit)
		}
		c.Body = out
	}
	return changed
}

// removeRedundantClauses drops clauses whose head literally appears in the
// body (the clause concludes nothing new beyond what it already assumes).
func removeRedundantClauses(t *tu.TranslationUnit) bool {
	changed := false
	var out []*ast.Clause
	for _, c := range t.Program.Clauses {
		redundant := false
		for _, lit := range c.Body {
			if atom, ok := lit.(*ast.Atom); ok && atom.Equal(c.Head) {
				redundant = true
				break
			}
		}
		if redundant {
			changed = true
			continue
		}
		out = append(out, c)
	}
	if changed {
		t.Program.Clauses = out
	}
	return changed
}

// reduceLocallyEquivalentClauses keeps one representative per
// bijective-equivalence class, within each relation.
func reduceLocallyEquivalentClauses(t *tu.TranslationUnit) bool {
	byRelation := map[string][]*ast.Clause{}
	var order []string
	for _, c := range t.Program.Clauses {
		key := c.Head.Name.String()
		if _, ok := byRelation[key]; !ok {
			order = append(order, key)
		}
		byRelation[key] = append(byRelation[key], c)
	}

	changed := false
	var out []*ast.Clause
	for _, key := range order {
		clauses := byRelation[key]
		var representatives []*ast.Clause
		var normals []*analysis.NormalisedClause
		for _, c := range clauses {
			nc := analysis.NormaliseClause(c)
			dup := false
			for _, rn := range normals {
				if analysis.AreBijectivelyEquivalent(nc, rn) {
					dup = true
					break
				}
			}
			if dup {
				changed = true
				continue
			}
			representatives = append(representatives, c)
			normals = append(normals, nc)
		}
		out = append(out, representatives...)
	}
	if changed {
		t.Program.Clauses = out
	}
	return changed
}

// reduceSingletonRelations merges relations that each have exactly one
// non-I/O clause, are bijectively equivalent to one another, and share
// qualifiers/representation/attribute types — one canonical name replaces
// the other everywhere.
func reduceSingletonRelations(t *tu.TranslationUnit) bool {
	io := analysis.IOTypeOf(t)
	var singles []*ast.Relation
	for _, r := range t.Program.Relations {
		name := r.Name.String()
		if io.IsInput(name) || io.IsOutput(name) {
			continue
		}
		if len(t.Program.ClausesForRelation(r.Name)) == 1 {
			singles = append(singles, r)
		}
	}

	changed := false
	merged := map[string]bool{}
	for i := 0; i < len(singles); i++ {
		a := singles[i]
		if merged[a.Name.String()] {
			continue
		}
		for j := i + 1; j < len(singles); j++ {
			b := singles[j]
			if merged[b.Name.String()] {
				continue
			}
			if !relationsCompatible(a, b) {
				continue
			}
			ca := t.Program.ClausesForRelation(a.Name)[0]
			cb := t.Program.ClausesForRelation(b.Name)[0]
			if !analysis.AreBijectivelyEquivalent(analysis.NormaliseClause(ca), analysis.NormaliseClause(cb)) {
				continue
			}
			removeRelationPointer(t.Program, b)
			removeClausesForRelation(t.Program, b.Name)
			renameRelationEverywhere(t.Program, b.Name, a.Name)
			merged[b.Name.String()] = true
			changed = true
		}
	}
	return changed
}

func relationsCompatible(a, b *ast.Relation) bool {
	if a.RelationRepresentation != b.RelationRepresentation || len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for i := range a.Attributes {
		if !a.Attributes[i].TypeName.Equal(b.Attributes[i].TypeName) {
			return false
		}
	}
	if len(a.Qualifiers) != len(b.Qualifiers) {
		return false
	}
	for k, v := range a.Qualifiers {
		if b.Qualifiers[k] != v {
			return false
		}
	}
	return true
}
