package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/tu"
)

// InlineRelationsTransformer expands atoms referencing an INLINE relation
// (and not excluded via inline-exclude) into the disjunction of its own
// rule bodies, using standard term unification at the call site.
// Termination is guaranteed upstream by SemanticChecker forbidding cyclic
// INLINE dependencies.
type InlineRelationsTransformer struct{}

func (InlineRelationsTransformer) Name() string      { return "InlineRelations" }
func (InlineRelationsTransformer) Clone() Transformer { return InlineRelationsTransformer{} }

func (InlineRelationsTransformer) Apply(t *tu.TranslationUnit) bool {
	excluded := map[string]bool{}
	for _, name := range t.Config.List(config.KeyInlineExclude) {
		excluded[name] = true
	}

	inlineClauses := map[string][]*ast.Clause{}
	inlineSet := map[string]bool{}
	for _, r := range t.Program.Relations {
		if r.HasQualifier(ast.QualifierInline) && !excluded[r.Name.String()] {
			inlineSet[r.Name.String()] = true
		}
	}
	for _, c := range t.Program.Clauses {
		if inlineSet[c.Head.Name.String()] {
			inlineClauses[c.Head.Name.String()] = append(inlineClauses[c.Head.Name.String()], c)
		}
	}
	if len(inlineSet) == 0 {
		return false
	}

	normaliseInlineHeads(inlineClauses)

	changed := false
	for iter := 0; iter < 256; iter++ {
		var out []*ast.Clause
		progressed := false
		for _, c := range t.Program.Clauses {
			if inlineSet[c.Head.Name.String()] {
				// An inlined relation's own clauses are only used as
				// substitution material, not retained in the output.
				continue
			}
			expansions, did := inlineOneStep(c, inlineSet, inlineClauses)
			if did {
				progressed = true
				changed = true
			}
			out = append(out, expansions...)
		}
		t.Program.Clauses = out
		if !progressed {
			break
		}
	}

	if changed {
		var toRemove []ast.QualifiedName
		for _, r := range t.Program.Relations {
			if inlineSet[r.Name.String()] {
				toRemove = append(toRemove, r.Name)
			}
		}
		for _, name := range toRemove {
			t.Program.RemoveRelation(name)
		}
		t.Invalidate()
	}
	return changed
}

// normaliseInlineHeads ensures every head argument of an inlined clause is
// a fresh variable constrained by equality to its original value, and
// every unnamed variable inside an inlined atom becomes a fresh named
// variable — both are prerequisites for sound unification at call sites.
func normaliseInlineHeads(inlineClauses map[string][]*ast.Clause) {
	for _, clauses := range inlineClauses {
		for _, c := range clauses {
			fresh := ast.NewNameGenerator("@inlinehead")
			for i, arg := range c.Head.Args {
				if _, ok := arg.(*ast.Variable); ok {
					continue
				}
				v := fresh.FreshVariable(arg.Pos())
				c.Body = append(c.Body, &ast.BinaryConstraint{Op: "=", Left: v, Right: arg, P: arg.Pos()})
				c.Head.Args[i] = v
			}
			freshWild := ast.NewNameGenerator("@inlinewild")
			ast.Inspect(c, func(n ast.Node) bool {
				if atom, ok := n.(*ast.Atom); ok {
					for i, arg := range atom.Args {
						if _, ok := arg.(*ast.UnnamedVariable); ok {
							atom.Args[i] = freshWild.FreshVariable(arg.Pos())
						}
					}
				}
				return true
			})
		}
	}
}

// inlineOneStep returns the clause(s) that replace c after expanding the
// first body atom (at any nesting depth) referencing an inline relation.
// Top-level body atoms and negations are expanded directly; references
// sitting below an argument of a non-inline literal — inside an
// aggregator body reached through an equality RHS or a functor argument —
// are handled by one sub-step of inlining within that aggregator per
// call. If no reference is found anywhere, c is returned unchanged.
func inlineOneStep(c *ast.Clause, inlineSet map[string]bool, inlineClauses map[string][]*ast.Clause) ([]*ast.Clause, bool) {
	for idx, lit := range c.Body {
		switch l := lit.(type) {
		case *ast.Atom:
			if !inlineSet[l.Name.String()] {
				continue
			}
			return expandPositiveAtom(c, idx, l, inlineClauses[l.Name.String()]), true
		case *ast.Negation:
			if !inlineSet[l.Atom.Name.String()] {
				continue
			}
			return expandNegatedAtom(c, idx, l, inlineClauses[l.Atom.Name.String()]), true
		}
	}
	return inlineOneAggregateStep(c, inlineSet, inlineClauses)
}

// inlineOneAggregateStep finds the first aggregator in c (pre-order) whose
// body references an inline relation and expands exactly one such
// reference, treating the aggregator body as a sub-clause: each resulting
// alternative body yields its own clone of the enclosing clause, so a
// disjunction introduced inside the aggregate distributes across clauses
// the same way top-level expansion does.
func inlineOneAggregateStep(c *ast.Clause, inlineSet map[string]bool, inlineClauses map[string][]*ast.Clause) ([]*ast.Clause, bool) {
	ordinal := -1
	count := 0
	var target *ast.Aggregator
	ast.Inspect(c, func(n ast.Node) bool {
		if target != nil {
			return false
		}
		if agg, ok := n.(*ast.Aggregator); ok {
			if literalsReferenceInline(agg.Body, inlineSet) {
				ordinal = count
				target = agg
				return false
			}
			count++
		}
		return true
	})
	if target == nil {
		return []*ast.Clause{c}, false
	}

	// Head normalisation guarantees every rule-head argument is a fresh
	// variable, so the substitutions recorded during unification only bind
	// renamed rule variables; nothing outside the aggregate body needs
	// rewriting.
	sub := &ast.Clause{Head: &ast.Atom{Name: ast.NewQualifiedName("@aggbody")}, Body: target.Body}
	expansions, _ := inlineOneStep(sub, inlineSet, inlineClauses)

	var out []*ast.Clause
	for _, exp := range expansions {
		clone := c.CloneClause()
		nthAggregator(clone, ordinal).Body = exp.Body
		out = append(out, clone)
	}
	return out, true
}

// literalsReferenceInline reports whether any atom at any depth of lits
// names an inline relation.
func literalsReferenceInline(lits []ast.Literal, inlineSet map[string]bool) bool {
	for _, lit := range lits {
		found := false
		ast.Inspect(lit, func(n ast.Node) bool {
			if atom, ok := n.(*ast.Atom); ok && inlineSet[atom.Name.String()] {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// nthAggregator returns the ordinal-th aggregator of c in pre-order; the
// numbering matches the scan in inlineOneAggregateStep, so the same
// ordinal locates the corresponding aggregator in a clone.
func nthAggregator(c *ast.Clause, ordinal int) *ast.Aggregator {
	count := 0
	var found *ast.Aggregator
	ast.Inspect(c, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if agg, ok := n.(*ast.Aggregator); ok {
			if count == ordinal {
				found = agg
				return false
			}
			count++
		}
		return true
	})
	return found
}

// expandPositiveAtom produces one clause per inline rule whose head
// unifies with the call site, splicing in a renamed copy of that rule's
// body in place of the original atom.
func expandPositiveAtom(c *ast.Clause, idx int, call *ast.Atom, rules []*ast.Clause) []*ast.Clause {
	var out []*ast.Clause
	for ruleIdx, rule := range rules {
		renamed := rule.CloneClause()
		renameClauseVariables(renamed, ruleIdx, c)

		subst := map[string]ast.Argument{}
		if !unifyArgs(call.Args, renamed.Head.Args, subst) {
			continue
		}

		clone := c.CloneClause()
		newBody := make([]ast.Literal, 0, len(clone.Body)-1+len(renamed.Body))
		newBody = append(newBody, clone.Body[:idx]...)
		newBody = append(newBody, renamed.Body...)
		newBody = append(newBody, clone.Body[idx+1:]...)
		clone.Body = newBody
		applySubstMap(clone, subst)
		out = append(out, clone)
	}
	return out
}

// expandNegatedAtom applies De Morgan: `!R(args)` becomes the conjunction,
// over every rule of R whose head unifies with the call site, of the
// disjunction of negating each of that rule's own (unified) body literals
// — `!(l1∧l2) = !l1∨!l2`. Since a clause body can only express a
// conjunction, the disjunction-of-conjunctions is distributed out into the
// full cartesian product: one output clause per selection of exactly one
// negated literal from each matching rule. A rule with an empty
// (fact) body that still unifies means R(args) is unconditionally true
// for this call, so `!R(args)` is unconditionally false and the cartesian
// product correctly collapses to zero output clauses; a call with no
// unifying rule at all means `!R(args)` is unconditionally true and
// contributes no literal.
func expandNegatedAtom(c *ast.Clause, idx int, call *ast.Negation, rules []*ast.Clause) []*ast.Clause {
	var perRuleChoices [][]ast.Literal
	for ruleIdx, rule := range rules {
		renamed := rule.CloneClause()
		renameClauseVariables(renamed, ruleIdx, c)
		subst := map[string]ast.Argument{}
		if !unifyArgs(call.Atom.Args, renamed.Head.Args, subst) {
			continue
		}
		applySubstMap(renamed, subst)

		choices := make([]ast.Literal, 0, len(renamed.Body))
		for _, lit := range renamed.Body {
			choices = append(choices, negateLiteral(lit, call.P))
		}
		perRuleChoices = append(perRuleChoices, choices)
	}

	combos := [][]ast.Literal{nil}
	for _, choices := range perRuleChoices {
		var next [][]ast.Literal
		for _, combo := range combos {
			for _, choice := range choices {
				next = append(next, append(append([]ast.Literal(nil), combo...), choice))
			}
		}
		combos = next
	}

	var out []*ast.Clause
	for _, combo := range combos {
		clone := c.CloneClause()
		newBody := make([]ast.Literal, 0, len(clone.Body)-1+len(combo))
		newBody = append(newBody, clone.Body[:idx]...)
		for _, lit := range combo {
			newBody = append(newBody, lit.Clone().(ast.Literal))
		}
		newBody = append(newBody, clone.Body[idx+1:]...)
		clone.Body = newBody
		out = append(out, clone)
	}
	return out
}

// negateLiteral returns the negation of a single clause-body literal: a
// positive atom becomes a Negation, a Negation cancels back to its atom,
// a BinaryConstraint's operator inverts, and a BooleanConstraint flips.
func negateLiteral(lit ast.Literal, pos ast.Position) ast.Literal {
	switch l := lit.(type) {
	case *ast.Atom:
		return &ast.Negation{Atom: l.CloneAtom(), P: pos}
	case *ast.Negation:
		return l.Atom.CloneAtom()
	case *ast.BinaryConstraint:
		return &ast.BinaryConstraint{Op: invertComparisonOp(l.Op), Left: l.Left.Clone().(ast.Argument), Right: l.Right.Clone().(ast.Argument), P: pos}
	case *ast.BooleanConstraint:
		return &ast.BooleanConstraint{Value: !l.Value, P: pos}
	default:
		return lit
	}
}

func invertComparisonOp(op string) string {
	switch op {
	case "=":
		return "!="
	case "!=":
		return "="
	case "<":
		return ">="
	case "<=":
		return ">"
	case ">":
		return "<="
	case ">=":
		return "<"
	default:
		return op
	}
}

func renameClauseVariables(c *ast.Clause, callSiteID int, outer *ast.Clause) {
	used := map[string]bool{}
	ast.Inspect(outer, func(n ast.Node) bool {
		if v, ok := n.(*ast.Variable); ok {
			used[v.Name] = true
		}
		return true
	})
	renames := map[string]string{}
	gen := ast.NewNameGenerator("@inlinecall")
	_ = callSiteID
	ast.Inspect(c, func(n ast.Node) bool {
		if v, ok := n.(*ast.Variable); ok {
			if _, done := renames[v.Name]; !done {
				renames[v.Name] = gen.Next()
			}
		}
		return true
	})
	mapper := ast.Mapper(func(n ast.Node) ast.Node {
		if v, ok := n.(*ast.Variable); ok {
			if newName, ok := renames[v.Name]; ok {
				return &ast.Variable{Name: newName, P: v.P}
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
	c.Head = apply(c.Head).(*ast.Atom)
	for i, lit := range c.Body {
		c.Body[i] = apply(lit).(ast.Literal)
	}
}

// unifyArgs attempts standard term unification between call-site arguments
// and a rule head's arguments, treating records structurally and failing
// on constant mismatch; successful bindings are recorded into subst as
// call-site-variable -> rule-head-term.
func unifyArgs(callArgs, headArgs []ast.Argument, subst map[string]ast.Argument) bool {
	if len(callArgs) != len(headArgs) {
		return false
	}
	for i := range callArgs {
		if !unifyOne(callArgs[i], headArgs[i], subst) {
			return false
		}
	}
	return true
}

func unifyOne(call, head ast.Argument, subst map[string]ast.Argument) bool {
	if hv, ok := head.(*ast.Variable); ok {
		// Rule-head variable bound to whatever the call site provides.
		subst[hv.Name] = call
		return true
	}
	switch c := call.(type) {
	case *ast.Variable:
		// Call site provides a free variable for a non-variable head
		// position: the equality is added as a constraint at the splice
		// point via a binding from the call variable to the head term.
		subst[c.Name] = head
		return true
	case *ast.RecordInit:
		hr, ok := head.(*ast.RecordInit)
		if !ok || len(c.Args) != len(hr.Args) {
			return false
		}
		for i := range c.Args {
			if !unifyOne(c.Args[i], hr.Args[i], subst) {
				return false
			}
		}
		return true
	case *ast.NumericConstant:
		hc, ok := head.(*ast.NumericConstant)
		return ok && hc.Value == c.Value
	case *ast.StringConstant:
		hc, ok := head.(*ast.StringConstant)
		return ok && hc.Value == c.Value
	default:
		return call.Equal(head)
	}
}

// applySubstMap rewrites every variable occurrence in c matching a subst
// key with its bound replacement.
func applySubstMap(c *ast.Clause, subst map[string]ast.Argument) {
	for name, repl := range subst {
		substituteVariable(c, name, repl)
	}
}
