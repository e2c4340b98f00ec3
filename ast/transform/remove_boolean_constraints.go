package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// RemoveBooleanConstraints prunes literal-level `true` from bodies, drops
// clauses containing literal `false`, and simplifies aggregator bodies the
// same way, substituting `0=1`/`1=1` for an emptied aggregator body.
type RemoveBooleanConstraints struct{}

func (RemoveBooleanConstraints) Name() string      { return "RemoveBooleanConstraints" }
func (RemoveBooleanConstraints) Clone() Transformer { return RemoveBooleanConstraints{} }

func (RemoveBooleanConstraints) Apply(t *tu.TranslationUnit) bool {
	changed := false
	var out []*ast.Clause
	for _, c := range t.Program.Clauses {
		simplifyAggregatorBooleans(c, &changed)
		if containsFalse(c.Body) {
			changed = true
			continue
		}
		newBody, did := pruneTrue(c.Body)
		if did {
			c.Body = newBody
			changed = true
		}
		out = append(out, c)
	}
	if changed {
		t.Program.Clauses = out
		t.Invalidate()
	}
	return changed
}

func containsFalse(body []ast.Literal) bool {
	for _, lit := range body {
		if bc, ok := lit.(*ast.BooleanConstraint); ok && !bc.Value {
			return true
		}
	}
	return false
}

func pruneTrue(body []ast.Literal) ([]ast.Literal, bool) {
	changed := false
	out := body[:0:0]
	for _, lit := range body {
		if bc, ok := lit.(*ast.BooleanConstraint); ok && bc.Value {
			changed = true
			continue
		}
		out = append(out, lit)
	}
	return out, changed
}

func simplifyAggregatorBooleans(c *ast.Clause, changed *bool) {
	ast.Inspect(c, func(n ast.Node) bool {
		agg, ok := n.(*ast.Aggregator)
		if !ok {
			return true
		}
		if containsFalse(agg.Body) {
			agg.Body = []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: &ast.NumericConstant{Value: "0"}, Right: &ast.NumericConstant{Value: "1"}}}
			*changed = true
			return true
		}
		pruned, did := pruneTrue(agg.Body)
		if did {
			*changed = true
			if len(pruned) == 0 {
				pruned = []ast.Literal{&ast.BinaryConstraint{Op: "=", Left: &ast.NumericConstant{Value: "1"}, Right: &ast.NumericConstant{Value: "1"}}}
			}
			agg.Body = pruned
		}
		return true
	})
}
