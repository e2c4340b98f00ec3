package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// ReplaceSingletonVariables turns variables that occur exactly once in a
// clause, outside records/ADTs/constraints, into unnamed variables.
type ReplaceSingletonVariables struct{}

func (ReplaceSingletonVariables) Name() string      { return "ReplaceSingletonVariables" }
func (ReplaceSingletonVariables) Clone() Transformer { return ReplaceSingletonVariables{} }

func (ReplaceSingletonVariables) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, c := range t.Program.Clauses {
		if replaceSingletonsInClause(c) {
			changed = true
		}
	}
	if changed {
		t.Invalidate()
	}
	return changed
}

func replaceSingletonsInClause(c *ast.Clause) bool {
	counts := map[string]int{}
	ast.Inspect(c, func(n ast.Node) bool {
		if v, ok := n.(*ast.Variable); ok {
			counts[v.Name]++
		}
		return true
	})

	changed := false
	// eligible applies only to a variable sitting directly as an atom
	// argument — never inside a record/ADT, and constraint operands are
	// excluded from eligibility, since `x = y`
	// with a singleton x would lose meaning if turned into `_ = y`.
	eligible := func(parent ast.Node) bool {
		switch parent.(type) {
		case *ast.Atom:
			return true
		default:
			return false
		}
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if atom, ok := n.(*ast.Atom); ok {
			for i, arg := range atom.Args {
				if v, ok := arg.(*ast.Variable); ok && counts[v.Name] == 1 && eligible(atom) {
					atom.Args[i] = &ast.UnnamedVariable{P: v.P}
					changed = true
					continue
				}
				walk(arg)
			}
			return
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(c.Head)
	for _, lit := range c.Body {
		walk(lit)
	}
	return changed
}
