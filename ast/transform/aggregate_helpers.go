package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// SimplifyAggregateTargetExpression rewrites an aggregator whose target
// expression is non-variable into `op x : { ..., x = <expr> }` with x a
// freshly named `@targetN` variable. Variables of the target expression
// are left as they are: an outer-scope variable sharing a name with one
// of them is not renamed.
type SimplifyAggregateTargetExpression struct{}

func (SimplifyAggregateTargetExpression) Name() string { return "SimplifyAggregateTargetExpression" }
func (SimplifyAggregateTargetExpression) Clone() Transformer {
	return SimplifyAggregateTargetExpression{}
}

func (SimplifyAggregateTargetExpression) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, c := range t.Program.Clauses {
		fresh := ast.NewNameGenerator("@target")
		ast.Inspect(c, func(n ast.Node) bool {
			agg, ok := n.(*ast.Aggregator)
			if !ok || agg.Op == "count" || agg.Target == nil {
				return true
			}
			if _, isVar := agg.Target.(*ast.Variable); isVar {
				return true
			}
			v := fresh.FreshVariable(agg.Target.Pos())
			eq := &ast.BinaryConstraint{Op: "=", Left: v, Right: agg.Target, P: agg.Target.Pos()}
			agg.Body = append(agg.Body, eq)
			agg.Target = v
			changed = true
			return true
		})
	}
	if changed {
		t.Invalidate()
	}
	return changed
}

// GroundWitnesses grounds witness variables bound by a selection
// aggregator (min/max). For `n = max y : { S(w, y) }` with w used outside
// the aggregate, it appends a copy of the aggregate body with the target
// position rebound to the result — `S(w, n)` — so the outer w names the
// witness of the selected extremal tuple, and renames the aggregate
// body's own copy of w to a fresh variable so the inner occurrence no
// longer captures the outer one.
type GroundWitnesses struct{}

func (GroundWitnesses) Name() string      { return "GroundWitnesses" }
func (GroundWitnesses) Clone() Transformer { return GroundWitnesses{} }

func (GroundWitnesses) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, c := range t.Program.Clauses {
		fresh := ast.NewNameGenerator("@witness")
		var grounding []ast.Literal
		for _, lit := range c.Body {
			bc, ok := lit.(*ast.BinaryConstraint)
			if !ok || !bc.IsEquality() {
				continue
			}
			result, agg := selectionAggregate(bc)
			if agg == nil {
				continue
			}
			targetVar, ok := agg.Target.(*ast.Variable)
			if !ok {
				continue
			}
			witnesses := witnessVariables(c, bc, agg, targetVar.Name)
			if len(witnesses) == 0 {
				continue
			}

			// The grounding copy keeps witness variables at their outer
			// names but carries the aggregate's bound result in place of
			// the target, tying the witnesses to the extremal tuple.
			copied := make([]ast.Literal, len(agg.Body))
			for i, bodyLit := range agg.Body {
				copied[i] = bodyLit.Clone().(ast.Literal)
			}
			renameVariablesInLiterals(copied, map[string]string{targetVar.Name: result.Name})
			grounding = append(grounding, copied...)

			renames := make(map[string]string, len(witnesses))
			for _, w := range witnesses {
				renames[w] = fresh.Next()
			}
			renameVariablesInLiterals(agg.Body, renames)
			changed = true
		}
		c.Body = append(c.Body, grounding...)
	}
	if changed {
		t.Invalidate()
	}
	return changed
}

// selectionAggregate returns the bound result variable and the min/max
// aggregator of an equality `v = agg` (either orientation), or nils when
// bc is not that shape.
func selectionAggregate(bc *ast.BinaryConstraint) (*ast.Variable, *ast.Aggregator) {
	if v, ok := bc.Left.(*ast.Variable); ok {
		if agg, ok := bc.Right.(*ast.Aggregator); ok && (agg.Op == "min" || agg.Op == "max") {
			return v, agg
		}
	}
	if v, ok := bc.Right.(*ast.Variable); ok {
		if agg, ok := bc.Left.(*ast.Aggregator); ok && (agg.Op == "min" || agg.Op == "max") {
			return v, agg
		}
	}
	return nil, nil
}

// witnessVariables returns, in first-occurrence order, the variables of
// agg's body (other than the target) that the rest of the clause also
// mentions — the variables the selected extremal tuple must keep visible
// outside the aggregate.
func witnessVariables(c *ast.Clause, self *ast.BinaryConstraint, agg *ast.Aggregator, target string) []string {
	outer := map[string]bool{}
	collect := func(n ast.Node) {
		ast.Inspect(n, func(m ast.Node) bool {
			if v, ok := m.(*ast.Variable); ok {
				outer[v.Name] = true
			}
			return true
		})
	}
	collect(c.Head)
	for _, lit := range c.Body {
		if lit == ast.Literal(self) {
			continue
		}
		collect(lit)
	}

	var out []string
	seen := map[string]bool{}
	for _, lit := range agg.Body {
		ast.Inspect(lit, func(m ast.Node) bool {
			if v, ok := m.(*ast.Variable); ok && v.Name != target && outer[v.Name] && !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v.Name)
			}
			return true
		})
	}
	return out
}

// renameVariablesInLiterals applies the name→name table to every variable
// occurrence in lits, in place.
func renameVariablesInLiterals(lits []ast.Literal, renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	mapper := ast.Mapper(func(n ast.Node) ast.Node {
		if v, ok := n.(*ast.Variable); ok {
			if to, ok := renames[v.Name]; ok {
				return &ast.Variable{Name: to, P: v.P}
			}
		}
		return n
	})
	var apply func(n ast.Node) ast.Node
	apply = func(n ast.Node) ast.Node {
		n = mapper(n)
		n.Apply(func(child ast.Node) ast.Node { return apply(child) })
		return n
	}
	for i, lit := range lits {
		lits[i] = apply(lit).(ast.Literal)
	}
}
