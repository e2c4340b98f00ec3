package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// ResolveAnonymousRecordAliases resolves `v = [a,b,c]` by substituting the
// record for v throughout the clause, unconditionally — unlike
// ResolveAliases's scalar substitution, groundedness of the record's own
// fields is not required, since the point is purely to eliminate the
// indirection through v before FoldAnonymousRecords can destructure it.
type ResolveAnonymousRecordAliases struct{}

func (ResolveAnonymousRecordAliases) Name() string      { return "ResolveAnonymousRecordAliases" }
func (ResolveAnonymousRecordAliases) Clone() Transformer { return ResolveAnonymousRecordAliases{} }

func (ResolveAnonymousRecordAliases) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, c := range t.Program.Clauses {
		for {
			if !substituteOneRecordAlias(c) {
				break
			}
			changed = true
		}
	}
	if changed {
		t.Invalidate()
	}
	return changed
}

func substituteOneRecordAlias(c *ast.Clause) bool {
	for idx, lit := range c.Body {
		bc, ok := lit.(*ast.BinaryConstraint)
		if !ok || !bc.IsEquality() {
			continue
		}
		if v, ok := bc.Left.(*ast.Variable); ok {
			if isRecordOrBranch(bc.Right) {
				c.Body = append(append([]ast.Literal(nil), c.Body[:idx]...), c.Body[idx+1:]...)
				substituteVariable(c, v.Name, bc.Right)
				return true
			}
		}
		if v, ok := bc.Right.(*ast.Variable); ok {
			if isRecordOrBranch(bc.Left) {
				c.Body = append(append([]ast.Literal(nil), c.Body[:idx]...), c.Body[idx+1:]...)
				substituteVariable(c, v.Name, bc.Left)
				return true
			}
		}
	}
	return false
}

func isRecordOrBranch(a ast.Argument) bool {
	switch a.(type) {
	case *ast.RecordInit, *ast.BranchInit:
		return true
	default:
		return false
	}
}

// FoldAnonymousRecords folds `[x,y]=[a,b]` into `x=a,y=b` and `[x,y]≠[a,b]`
// into a disjunction split across cloned clauses. Empty-record
// equalities reduce to the boolean constant true/false.
type FoldAnonymousRecords struct{}

func (FoldAnonymousRecords) Name() string      { return "FoldAnonymousRecords" }
func (FoldAnonymousRecords) Clone() Transformer { return FoldAnonymousRecords{} }

func (FoldAnonymousRecords) Apply(t *tu.TranslationUnit) bool {
	changed := false
	var out []*ast.Clause
	for _, c := range t.Program.Clauses {
		folded, did := foldRecordEqualities(c)
		if did {
			changed = true
		}
		out = append(out, folded...)
	}
	if changed {
		t.Program.Clauses = out
		t.Invalidate()
	}
	return changed
}

// foldRecordEqualities returns the (possibly multiple, for ≠) clauses that
// replace c, and whether anything changed.
func foldRecordEqualities(c *ast.Clause) ([]*ast.Clause, bool) {
	changed := false
	for {
		idx, bc := findRecordEqualityLiteral(c)
		if idx < 0 {
			break
		}
		changed = true
		if bc.Op == "=" {
			replaceLiteralAt(c, idx, foldEqualRecords(bc))
			continue
		}
		// Disequality: split into one clause per differing field position,
		// each asserting that one field differs (the disjunction).
		return foldDisequalRecords(c, idx, bc), true
	}
	return []*ast.Clause{c}, changed
}

func findRecordEqualityLiteral(c *ast.Clause) (int, *ast.BinaryConstraint) {
	for i, lit := range c.Body {
		bc, ok := lit.(*ast.BinaryConstraint)
		if !ok || (bc.Op != "=" && bc.Op != "!=") {
			continue
		}
		if isRecordOrBranch(bc.Left) && isRecordOrBranch(bc.Right) {
			return i, bc
		}
	}
	return -1, nil
}

func fieldsOf(a ast.Argument) []ast.Argument {
	switch v := a.(type) {
	case *ast.RecordInit:
		return v.Args
	case *ast.BranchInit:
		return v.Args
	default:
		return nil
	}
}

func foldEqualRecords(bc *ast.BinaryConstraint) []ast.Literal {
	lf, rf := fieldsOf(bc.Left), fieldsOf(bc.Right)
	if len(lf) == 0 {
		return []ast.Literal{&ast.BooleanConstraint{Value: true, P: bc.P}}
	}
	out := make([]ast.Literal, 0, len(lf))
	for i := range lf {
		if i < len(rf) {
			out = append(out, &ast.BinaryConstraint{Op: "=", Left: lf[i], Right: rf[i], P: bc.P})
		}
	}
	return out
}

func foldDisequalRecords(c *ast.Clause, idx int, bc *ast.BinaryConstraint) []*ast.Clause {
	lf, rf := fieldsOf(bc.Left), fieldsOf(bc.Right)
	if len(lf) == 0 {
		replaceLiteralAt(c, idx, []ast.Literal{&ast.BooleanConstraint{Value: false, P: bc.P}})
		return []*ast.Clause{c}
	}
	var out []*ast.Clause
	for i := range lf {
		if i >= len(rf) {
			continue
		}
		clone := c.CloneClause()
		replaceLiteralAt(clone, idx, []ast.Literal{&ast.BinaryConstraint{Op: "!=", Left: lf[i], Right: rf[i], P: bc.P}})
		out = append(out, clone)
	}
	return out
}

func replaceLiteralAt(c *ast.Clause, idx int, replacement []ast.Literal) {
	body := make([]ast.Literal, 0, len(c.Body)-1+len(replacement))
	body = append(body, c.Body[:idx]...)
	body = append(body, replacement...)
	body = append(body, c.Body[idx+1:]...)
	c.Body = body
}
