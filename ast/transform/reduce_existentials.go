package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/tu"
)

// ReduceExistentials collapses relations used only as `A(_,…,_)` — every
// occurrence is the all-wildcard pattern — into nullary equivalents.
type ReduceExistentials struct{}

func (ReduceExistentials) Name() string      { return "ReduceExistentials" }
func (ReduceExistentials) Clone() Transformer { return ReduceExistentials{} }

func (ReduceExistentials) Apply(t *tu.TranslationUnit) bool {
	io := analysis.IOTypeOf(t)
	candidates := map[string]bool{}
	for _, r := range t.Program.Relations {
		name := r.Name.String()
		if r.Arity() == 0 || io.IsInput(name) || io.IsOutput(name) {
			continue
		}
		candidates[name] = true
	}
	if len(candidates) == 0 {
		return false
	}

	ast.Inspect(t.Program, func(n ast.Node) bool {
		atom, ok := n.(*ast.Atom)
		if !ok {
			return true
		}
		name := atom.Name.String()
		if !candidates[name] {
			return true
		}
		for _, arg := range atom.Args {
			if _, isWild := arg.(*ast.UnnamedVariable); !isWild {
				delete(candidates, name)
				return true
			}
		}
		return true
	})
	if len(candidates) == 0 {
		return false
	}

	changed := false
	for _, r := range t.Program.Relations {
		if candidates[r.Name.String()] {
			r.Attributes = nil
			changed = true
		}
	}
	ast.Inspect(t.Program, func(n ast.Node) bool {
		atom, ok := n.(*ast.Atom)
		if ok && candidates[atom.Name.String()] {
			atom.Args = nil
		}
		return true
	})
	if changed {
		t.Invalidate()
	}
	return changed
}
