package analysis

import (
	"fmt"
	"sort"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// NormalisedElement is one `(qualifier, params)` entry of a
// NormalisedClause. The head atom contributes the qualifier "@h".
// Positive atoms use their qualified name; negations get an "@n" prefix;
// binary constraints use "@" followed by their operator as qualifier.
// Aggregators contribute an "@agg:<op>" element recording the fresh scope
// id they open in OpensScope, and recursively emit their body elements
// with Scope set to that id (top-level elements carry Scope 0).
// AreBijectivelyEquivalent only matches elements whose scopes correspond
// under the scope mapping established by matching their opening
// aggregator elements, so a body element can never be paired with one
// from a different aggregator scope.
type NormalisedElement struct {
	Qualifier  string
	Params     []string
	Scope      int
	OpensScope int
}

// NormalisedClause is the normalised representation of a Clause,
// used by MinimiseProgram's bijective-equivalence check and by MagicSet's
// adornment stage (via BindingStore, built over the same clause).
type NormalisedClause struct {
	FullyNormalised bool
	Variables       map[string]bool
	Constants       map[string]bool
	Elements        []NormalisedElement
	numScopes       int
}

// ClauseNormalisation is the analysis computing a NormalisedClause per
// Clause in the Program.
type ClauseNormalisation struct {
	byClause map[*ast.Clause]*NormalisedClause
}

type clauseNormalisationKey struct{}

// ClauseNormalisationOf returns the (cached) clause-normalisation analysis
// for tu.
func ClauseNormalisationOf(t *tu.TranslationUnit) *ClauseNormalisation {
	return tu.Get(t, clauseNormalisationKey{}, func() *ClauseNormalisation {
		cn := &ClauseNormalisation{byClause: map[*ast.Clause]*NormalisedClause{}}
		for _, c := range t.Program.Clauses {
			cn.byClause[c] = NormaliseClause(c)
		}
		return cn
	})
}

// Of returns the NormalisedClause for c, computing it directly if it is
// not one of the clauses present when the analysis was cached (e.g. a
// clause synthesised mid-pipeline by a transformer that has not yet
// invalidated the analysis cache).
func (cn *ClauseNormalisation) Of(c *ast.Clause) *NormalisedClause {
	if nc, ok := cn.byClause[c]; ok {
		return nc
	}
	return NormaliseClause(c)
}

// NormaliseClause computes c's NormalisedClause directly, independent of
// any cache.
func NormaliseClause(c *ast.Clause) *NormalisedClause {
	nc := &NormalisedClause{
		FullyNormalised: true,
		Variables:       map[string]bool{},
		Constants:       map[string]bool{},
	}
	fresh := ast.NewNameGenerator("@normanon")

	var normArg func(a ast.Argument, scope int) string
	var emitLiteral func(lit ast.Literal, scope int)

	// normArg special-cases Aggregator before delegating: an aggregator
	// opens a fresh scope, emits its own element (qualified by operator, so
	// two aggregators with different operators can never be matched as
	// bijectively equivalent — see AreBijectivelyEquivalent's qualifier-gated
	// candidate search), and has its body literals recursively emitted into
	// that scope, rather than being treated as an opaque complex term
	// that would flag the clause as not fully normalised.
	normArg = func(a ast.Argument, scope int) string {
		agg, ok := a.(*ast.Aggregator)
		if !ok {
			return normaliseArgument(a, nc, fresh)
		}
		nc.numScopes++
		opened := nc.numScopes
		var targetParams []string
		if agg.Target != nil {
			targetParams = []string{normArg(agg.Target, opened)}
		}
		nc.Elements = append(nc.Elements, NormalisedElement{
			Qualifier:  "@agg:" + agg.Op,
			Params:     targetParams,
			Scope:      scope,
			OpensScope: opened,
		})
		for _, bodyLit := range agg.Body {
			emitLiteral(bodyLit, opened)
		}
		// The aggregate's own result is a plain fresh variable from the
		// enclosing clause's point of view; the operator/body distinction
		// lives entirely in the element just emitted above.
		name := fresh.Next()
		nc.Variables[name] = true
		return "$" + name
	}

	emitLiteral = func(lit ast.Literal, scope int) {
		switch l := lit.(type) {
		case *ast.Atom:
			params := make([]string, len(l.Args))
			for i, a := range l.Args {
				params[i] = normArg(a, scope)
			}
			nc.Elements = append(nc.Elements, NormalisedElement{Qualifier: l.Name.String(), Params: params, Scope: scope})
		case *ast.Negation:
			params := make([]string, len(l.Atom.Args))
			for i, a := range l.Atom.Args {
				params[i] = normArg(a, scope)
			}
			nc.Elements = append(nc.Elements, NormalisedElement{Qualifier: "@n" + l.Atom.Name.String(), Params: params, Scope: scope})
		case *ast.BinaryConstraint:
			nc.Elements = append(nc.Elements, NormalisedElement{
				Qualifier: "@" + l.Op,
				Params:    []string{normArg(l.Left, scope), normArg(l.Right, scope)},
				Scope:     scope,
			})
		case *ast.BooleanConstraint:
			v := "0"
			if l.Value {
				v = "1"
			}
			nc.Elements = append(nc.Elements, NormalisedElement{Qualifier: "@bool", Params: []string{v}, Scope: scope})
		}
	}

	// The head element is reserved at index 0 before its params are
	// normalised, since a head argument holding an aggregator emits that
	// aggregator's elements as a side effect.
	nc.Elements = append(nc.Elements, NormalisedElement{Qualifier: "@h"})
	headParams := make([]string, len(c.Head.Args))
	for i, a := range c.Head.Args {
		headParams[i] = normArg(a, 0)
	}
	nc.Elements[0].Params = headParams

	for _, lit := range c.Body {
		emitLiteral(lit, 0)
	}

	return nc
}

// normaliseArgument stabilises a single argument to a string: variables
// and constants verbatim, everything else to a fresh anonymous variable
// (flagging the clause as not fully normalised).
func normaliseArgument(a ast.Argument, nc *NormalisedClause, fresh *ast.NameGenerator) string {
	switch v := a.(type) {
	case *ast.Variable:
		nc.Variables[v.Name] = true
		return "$" + v.Name
	case *ast.UnnamedVariable:
		name := fresh.Next()
		nc.Variables[name] = true
		return "$" + name
	case *ast.NumericConstant:
		nc.Constants[v.Value] = true
		return "#" + v.Value
	case *ast.StringConstant:
		nc.Constants[v.Value] = true
		return "#\"" + v.Value + "\""
	case *ast.NilConstant:
		nc.Constants["nil"] = true
		return "#nil"
	default:
		nc.FullyNormalised = false
		name := fresh.Next()
		nc.Variables[name] = true
		return "$" + name
	}
}

// AreBijectivelyEquivalent holds iff both clauses are fully normalised;
// have the same element count; head arities match; variable-set sizes
// match; constant sets are identical; and there exists a permutation of
// body elements and a consistent variable renaming making them identical
// modulo that renaming. The permutation must respect aggregator scopes:
// an element is only matched against one whose scope corresponds under
// the injective scope mapping established when the two opening aggregator
// elements were matched, so body elements can never leak across scope
// boundaries (an atom inside a `max` body never pairs with a top-level
// atom of the same name).
//
// Implementation strategy: build a permutation matrix P where P[i][j] = 1
// iff qualifiers match, then DFS-enumerate permutations consistent with P,
// attempting to extend the variable substitution (and, for aggregator
// elements, the scope mapping) at each step and backtracking on
// inconsistency.
func AreBijectivelyEquivalent(a, b *NormalisedClause) bool {
	if !a.FullyNormalised || !b.FullyNormalised {
		return false
	}
	if len(a.Elements) != len(b.Elements) {
		return false
	}
	if a.numScopes != b.numScopes {
		return false
	}
	if len(a.Elements[0].Params) != len(b.Elements[0].Params) {
		return false // head arity
	}
	if len(a.Variables) != len(b.Variables) {
		return false
	}
	if !sameStringSet(a.Constants, b.Constants) {
		return false
	}

	n := len(a.Elements)
	candidates := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if a.Elements[i].Qualifier == b.Elements[j].Qualifier && len(a.Elements[i].Params) == len(b.Elements[j].Params) {
				candidates[i] = append(candidates[i], j)
			}
		}
	}
	// Head element (index 0) must map to itself: its qualifier "@h" is
	// unique, so this falls out of the qualifier match automatically.

	used := make([]bool, n)
	sigma := map[string]string{}   // a-variable -> b-variable
	inverse := map[string]string{} // b-variable -> a-variable
	scopeMap := map[int]int{0: 0}  // a-scope -> b-scope
	scopeInv := map[int]int{0: 0}  // b-scope -> a-scope

	var tryExtend func(i int) bool
	tryExtend = func(i int) bool {
		if i == n {
			return true
		}
		for _, j := range candidates[i] {
			if used[j] {
				continue
			}
			ea, eb := a.Elements[i], b.Elements[j]
			// Elements are listed with every aggregator element preceding
			// its body elements, so ea.Scope is already mapped (or the
			// pairing is inconsistent and skipped).
			if mapped, ok := scopeMap[ea.Scope]; !ok || mapped != eb.Scope {
				continue
			}
			opens := ea.OpensScope != 0
			if opens != (eb.OpensScope != 0) {
				continue
			}
			if opens {
				if _, taken := scopeInv[eb.OpensScope]; taken {
					continue
				}
			}
			snapshot := cloneStrMap(sigma)
			snapshotInv := cloneStrMap(inverse)
			if extendSubstitution(ea.Params, eb.Params, sigma, inverse) {
				used[j] = true
				if opens {
					scopeMap[ea.OpensScope] = eb.OpensScope
					scopeInv[eb.OpensScope] = ea.OpensScope
				}
				if tryExtend(i + 1) {
					return true
				}
				if opens {
					delete(scopeMap, ea.OpensScope)
					delete(scopeInv, eb.OpensScope)
				}
				used[j] = false
			}
			sigma = snapshot
			inverse = snapshotInv
		}
		return false
	}

	return tryExtend(0)
}

// extendSubstitution tries to extend sigma/inverse so that applying sigma
// to left's params yields right's params, where constants (prefixed "#")
// must match exactly and variables (prefixed "$") are free to map
// consistently.
func extendSubstitution(left, right []string, sigma, inverse map[string]string) bool {
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		l, r := left[i], right[i]
		if l[0] == '#' || r[0] == '#' {
			if l != r {
				return false
			}
			continue
		}
		if mapped, ok := sigma[l]; ok {
			if mapped != r {
				return false
			}
			continue
		}
		if mappedBack, ok := inverse[r]; ok {
			if mappedBack != l {
				return false
			}
			continue
		}
		sigma[l] = r
		inverse[r] = l
	}
	return true
}

func cloneStrMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sameStringSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// Signature renders a deterministic debug string, useful for debug-report
// sections and tests.
func (nc *NormalisedClause) Signature() string {
	out := ""
	elems := append([]NormalisedElement(nil), nc.Elements...)
	sort.Slice(elems, func(i, j int) bool { return elems[i].Qualifier < elems[j].Qualifier })
	for _, e := range elems {
		out += fmt.Sprintf("%s(%v);", e.Qualifier, e.Params)
	}
	return out
}
