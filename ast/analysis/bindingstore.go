package analysis

import "github.com/datalogc/dlc/ast"

// BindingStore tracks, for a fixed Clause (or a fixed prefix of one, as
// MagicSet's Adorn stage needs), which variables are "bound" — determined
// by a body atom or by dependency on other bound variables.
type BindingStore struct {
	strong map[string]bool // bound directly by a positive body atom
	bound  map[string]bool // strong ∪ closure
	deps   []dependency
}

type dependency struct {
	variable string
	requires []string     // variable becomes bound once all of these are bound
	record   []recordDep  // V = [w1..wn]: each wi becomes bound once V is bound
}

type recordDep struct {
	variable string
}

// NewBindingStore builds an empty store with no bound variables yet.
func NewBindingStore() *BindingStore {
	return &BindingStore{strong: map[string]bool{}, bound: map[string]bool{}}
}

// NewBindingStoreForClause builds a BindingStore for the given clause's
// full body, iterating dependency reduction to a fixpoint. The starting
// point: every variable occurring in a positive body atom is strongly
// bound.
func NewBindingStoreForClause(c *ast.Clause) *BindingStore {
	bs := NewBindingStore()
	for _, lit := range c.Body {
		bs.AddPositiveAtom(lit)
	}
	for _, lit := range c.Body {
		bs.AddEqualityConstraint(lit)
	}
	bs.Close()
	return bs
}

// AddPositiveAtom marks every variable occurring in a positive Atom literal
// (not a Negation, not a Constraint, and not inside an Aggregator) as
// strongly bound.
func (bs *BindingStore) AddPositiveAtom(lit ast.Literal) {
	atom, ok := lit.(*ast.Atom)
	if !ok {
		return
	}
	for _, arg := range atom.Args {
		bs.markStrong(arg)
	}
}

func (bs *BindingStore) markStrong(a ast.Argument) {
	switch v := a.(type) {
	case *ast.Variable:
		bs.strong[v.Name] = true
		bs.bound[v.Name] = true
	case *ast.RecordInit:
		for _, sub := range v.Args {
			bs.markStrong(sub)
		}
	case *ast.BranchInit:
		for _, sub := range v.Args {
			bs.markStrong(sub)
		}
	}
}

// AddEqualityConstraint registers the binding dependency contributed by a
// binary-equality constraint that is not inside an aggregator: `V = expr`
// means V becomes bound when every variable in expr is bound; `V =
// RecordInit(w1..wn)` additionally means each wi becomes bound once V is
// bound.
func (bs *BindingStore) AddEqualityConstraint(lit ast.Literal) {
	bc, ok := lit.(*ast.BinaryConstraint)
	if !ok || !bc.IsEquality() {
		return
	}
	leftVar, leftIsVar := bc.Left.(*ast.Variable)
	rightVar, rightIsVar := bc.Right.(*ast.Variable)

	if leftIsVar {
		bs.addDependency(leftVar.Name, bc.Right)
	}
	if rightIsVar {
		bs.addDependency(rightVar.Name, bc.Left)
	}
}

func (bs *BindingStore) addDependency(target string, expr ast.Argument) {
	requires := variablesOf(expr)
	dep := dependency{variable: target, requires: requires}
	if rec, ok := expr.(*ast.RecordInit); ok {
		for _, f := range rec.Args {
			if v, ok := f.(*ast.Variable); ok {
				dep.record = append(dep.record, recordDep{variable: v.Name})
			}
		}
	}
	bs.deps = append(bs.deps, dep)
}

func variablesOf(a ast.Argument) []string {
	var out []string
	ast.Inspect(a, func(n ast.Node) bool {
		if v, ok := n.(*ast.Variable); ok {
			out = append(out, v.Name)
		}
		return true
	})
	return out
}

// Close iterates dependency reduction to a fixpoint.
func (bs *BindingStore) Close() {
	changed := true
	for changed {
		changed = false
		for _, dep := range bs.deps {
			if bs.bound[dep.variable] {
				continue
			}
			allBound := true
			for _, req := range dep.requires {
				if !bs.bound[req] {
					allBound = false
					break
				}
			}
			if allBound {
				bs.bound[dep.variable] = true
				changed = true
			}
		}
		for _, dep := range bs.deps {
			if !bs.bound[dep.variable] {
				continue
			}
			for _, rd := range dep.record {
				if !bs.bound[rd.variable] {
					bs.bound[rd.variable] = true
					changed = true
				}
			}
		}
	}
}

// IsBound reports whether a is bound: true iff it is a Variable that is
// bound, or a term whose sub-arguments are all bound, or a Constant.
func (bs *BindingStore) IsBound(a ast.Argument) bool {
	switch v := a.(type) {
	case *ast.Variable:
		return bs.bound[v.Name]
	case *ast.UnnamedVariable:
		return false
	case *ast.NumericConstant, *ast.StringConstant, *ast.NilConstant, *ast.Counter:
		return true
	case *ast.RecordInit:
		for _, sub := range v.Args {
			if !bs.IsBound(sub) {
				return false
			}
		}
		return true
	case *ast.BranchInit:
		for _, sub := range v.Args {
			if !bs.IsBound(sub) {
				return false
			}
		}
		return true
	case *ast.TypeCast:
		return bs.IsBound(v.Expr)
	case *ast.IntrinsicFunctor:
		for _, sub := range v.Args {
			if !bs.IsBound(sub) {
				return false
			}
		}
		return true
	case *ast.UserDefinedFunctor:
		for _, sub := range v.Args {
			if !bs.IsBound(sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// BindVariable marks name as bound directly, used by the Adorn stage when
// extending a BindingStore incrementally as it walks a rule body atom by
// atom.
func (bs *BindingStore) BindVariable(name string) {
	bs.strong[name] = true
	bs.bound[name] = true
	bs.Close()
}

// Clone returns an independent copy, used by Adorn to fork a BindingStore
// per candidate rule without disturbing the shared starting point.
func (bs *BindingStore) Clone() *BindingStore {
	out := NewBindingStore()
	for k, v := range bs.strong {
		out.strong[k] = v
	}
	for k, v := range bs.bound {
		out.bound[k] = v
	}
	out.deps = append(out.deps, bs.deps...)
	return out
}
