package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// ResolveAliasesTransformer is non-disableable: it is pinned against
// DisableTransformers and so always present in a well-formed pipeline
// regardless of what `disable-transformers` names, since later stages
// assume its post-condition.
type ResolveAliasesTransformer struct{}

func (ResolveAliasesTransformer) Name() string      { return "ResolveAliases" }
func (ResolveAliasesTransformer) Clone() Transformer { return ResolveAliasesTransformer{} }

func (ResolveAliasesTransformer) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for i, c := range t.Program.Clauses {
		next, did := resolveAliases(c)
		if did {
			t.Program.Clauses[i] = next
			changed = true
		}
	}
	if changed {
		t.Invalidate()
	}
	return changed
}

// resolveAliases is the published helper entry point: it repeatedly
// (i) substitutes an alias variable for its grounded right-hand-side, (ii)
// resolves `v = term` for ground term, (iii) removes trivial `x = x`
// equalities, (iv) lifts complex atom arguments to a fresh variable plus an
// explicit equality, until no rule applies.
func resolveAliases(c *ast.Clause) (*ast.Clause, bool) {
	cur := c
	changedOverall := false
	for iter := 0; iter < 64; iter++ {
		next, did := removeTrivialEquality(cur)
		if did {
			cur = next
			changedOverall = true
		}

		substituted, didSub := substituteOneAlias(cur)
		if didSub {
			cur = substituted
			changedOverall = true
			continue
		}

		lifted, didLift := liftOneComplexArgument(cur)
		if didLift {
			cur = lifted
			changedOverall = true
			continue
		}
		break
	}
	return cur, changedOverall
}

// removeTrivialEquality is the second published helper entry point:
// it drops every `x = x` equality from the body.
func removeTrivialEquality(c *ast.Clause) (*ast.Clause, bool) {
	changed := false
	body := c.Body[:0:0]
	for _, lit := range c.Body {
		if bc, ok := lit.(*ast.BinaryConstraint); ok && bc.IsEquality() {
			if lv, ok1 := bc.Left.(*ast.Variable); ok1 {
				if rv, ok2 := bc.Right.(*ast.Variable); ok2 && lv.Name == rv.Name {
					changed = true
					continue
				}
			}
		}
		body = append(body, lit)
	}
	if !changed {
		return c, false
	}
	c.Body = body
	return c, true
}

// substituteOneAlias finds the first equality `V = term` in the body where
// V is a variable and term is either another variable or a scalar ground
// constant, substitutes term for every occurrence of V in the clause, and
// removes the equality. Variable-to-variable aliases prefer eliminating
// whichever variable does not occur in a positive body atom, so that a
// chain of pure equalities collapses onto the name actually used to join.
func substituteOneAlias(c *ast.Clause) (*ast.Clause, bool) {
	strong := strongVariables(c)

	for idx, lit := range c.Body {
		bc, ok := lit.(*ast.BinaryConstraint)
		if !ok || !bc.IsEquality() {
			continue
		}
		from, to, ok := aliasDirection(bc, strong)
		if !ok {
			continue
		}
		c.Body = append(append([]ast.Literal(nil), c.Body[:idx]...), c.Body[idx+1:]...)
		substituteVariable(c, from, to)
		return c, true
	}
	return c, false
}

// aliasDirection decides, for an equality Left = Right, whether it is a
// substitutable alias, and if so which variable name to eliminate (from)
// in favour of which replacement argument (to).
func aliasDirection(bc *ast.BinaryConstraint, strong map[string]bool) (from string, to ast.Argument, ok bool) {
	lv, lok := bc.Left.(*ast.Variable)
	rv, rok := bc.Right.(*ast.Variable)

	switch {
	case lok && rok:
		// Prefer eliminating the variable that is NOT strongly bound by a
		// positive body atom, keeping the one the rest of the clause
		// actually joins on.
		if !strong[lv.Name] {
			return lv.Name, rv, true
		}
		if !strong[rv.Name] {
			return rv.Name, lv, true
		}
		return lv.Name, rv, true
	case lok && isScalarGround(bc.Right):
		return lv.Name, bc.Right, true
	case rok && isScalarGround(bc.Left):
		return rv.Name, bc.Left, true
	default:
		return "", nil, false
	}
}

func isScalarGround(a ast.Argument) bool {
	switch a.(type) {
	case *ast.NumericConstant, *ast.StringConstant, *ast.NilConstant, *ast.Counter:
		return true
	default:
		return false
	}
}

// strongVariables returns the set of variable names occurring in a positive
// body atom.
func strongVariables(c *ast.Clause) map[string]bool {
	out := map[string]bool{}
	for _, lit := range c.Body {
		if atom, ok := lit.(*ast.Atom); ok {
			for _, arg := range atom.Args {
				if v, ok := arg.(*ast.Variable); ok {
					out[v.Name] = true
				}
			}
		}
	}
	return out
}

// substituteVariable replaces every occurrence of variable name with
// replacement throughout the whole clause (head and body).
func substituteVariable(c *ast.Clause, name string, replacement ast.Argument) {
	mapper := ast.Mapper(func(n ast.Node) ast.Node {
		if v, ok := n.(*ast.Variable); ok && v.Name == name {
			return replacement.Clone()
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

// liftOneComplexArgument finds the first non-trivial argument (anything
// other than a variable, wildcard, or scalar constant) occurring directly
// in an atom's argument list, replaces it with a fresh variable, and
// appends an explicit equality constraint to the body.
func liftOneComplexArgument(c *ast.Clause) (*ast.Clause, bool) {
	fresh := ast.NewNameGenerator("@alias")
	lifted := false

	liftAtom := func(a *ast.Atom) bool {
		for i, arg := range a.Args {
			if isSimpleArgument(arg) {
				continue
			}
			v := fresh.FreshVariable(arg.Pos())
			eq := &ast.BinaryConstraint{Op: "=", Left: v, Right: arg, P: arg.Pos()}
			a.Args[i] = v
			c.Body = append(c.Body, eq)
			return true
		}
		return false
	}

	if liftAtom(c.Head) {
		return c, true
	}
	for _, lit := range c.Body {
		if atom, ok := lit.(*ast.Atom); ok {
			if liftAtom(atom) {
				lifted = true
				break
			}
		}
	}
	return c, lifted
}

func isSimpleArgument(a ast.Argument) bool {
	switch a.(type) {
	case *ast.Variable, *ast.UnnamedVariable, *ast.NumericConstant, *ast.StringConstant, *ast.NilConstant, *ast.Counter:
		return true
	default:
		return false
	}
}
