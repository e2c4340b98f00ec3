// Package lower implements the AST → RAM translation: a
// strategy-selected translator (mirroring the original's ast2ram
// TranslationStrategy split into seminaive/ and provenance/ sub-packages)
// that maps a transformed ast.Program to a ram.Program.
package lower

import (
	"fmt"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/ram"
	"github.com/datalogc/dlc/tu"
)

// Strategy selects how a Clause lowers and what (if any) extra subroutines
// a Program gets. The seminaive strategy produces the standard
// semi-naive fixpoint evaluation plan; the provenance strategy wraps it
// and additionally emits one subroutine per clause reconstructing proof
// steps.
type Strategy interface {
	Name() string
	// Subroutines returns the extra named subroutines this strategy
	// contributes for clause c, in addition to the shared main-program
	// evaluation every strategy produces identically.
	Subroutines(t *tu.TranslationUnit, c *ast.Clause, index int) map[string]ram.Statement
}

// Lower runs the full AST → RAM translation over t's Program using
// strategy, returning the RAM Program.
func Lower(t *tu.TranslationUnit, strategy Strategy) *ram.Program {
	prog := &ram.Program{Subroutines: map[string]ram.Statement{}}

	for _, r := range t.Program.Relations {
		prog.Relations = append(prog.Relations, ram.RelationDecl{
			Name:           r.Name.String(),
			Arity:          r.Arity(),
			AuxiliaryArity: r.AuxiliaryArity,
			Representation: string(r.RelationRepresentation),
		})
	}

	scc := analysis.SCCGraphOf(t)
	detail := analysis.RelationDetailCacheOf(t)

	var strataStatements []ram.Statement
	for _, sccIdx := range scc.TopologicalOrder() {
		members := scc.GetInternalRelations(sccIdx)
		stmt := lowerStratum(t, detail, scc, sccIdx, members, strategy)
		if stmt != nil {
			strataStatements = append(strataStatements, stmt)
		}
	}

	for _, d := range t.Program.Directives {
		strataStatements = append(strataStatements, lowerDirective(t, d))
	}

	prog.Main = ram.Sequence{Statements: strataStatements}

	clauseIndex := 0
	for _, c := range t.Program.Clauses {
		for name, sub := range strategy.Subroutines(t, c, clauseIndex) {
			prog.Subroutines[name] = sub
		}
		clauseIndex++
	}

	return prog
}

func lowerStratum(t *tu.TranslationUnit, detail *analysis.RelationDetailCache, scc *analysis.SCCGraph, sccIdx int, members []string, strategy Strategy) ram.Statement {
	var clauses []*ast.Clause
	for _, rel := range members {
		clauses = append(clauses, detail.Clauses(rel)...)
	}
	if len(clauses) == 0 {
		return nil
	}

	recursive := isStratumSelfRecursive(members, clauses)

	if !recursive {
		var stmts []ram.Statement
		for _, c := range clauses {
			stmts = append(stmts, ram.Query{Root: lowerClauseBody(t, c, nil)})
		}
		return ram.Sequence{Statements: stmts}
	}

	return lowerRecursiveStratum(t, members, clauses)
}

// isStratumSelfRecursive reports whether any clause in the stratum has a
// positive body atom naming a relation that is itself a member of the
// stratum (i.e. the stratum is more than a DAG of singleton relations).
func isStratumSelfRecursive(members []string, clauses []*ast.Clause) bool {
	if len(members) > 1 {
		return true
	}
	self := members[0]
	for _, c := range clauses {
		for _, lit := range c.Body {
			if atom, ok := lit.(*ast.Atom); ok && atom.Name.String() == self {
				return true
			}
		}
	}
	return false
}

// lowerRecursiveStratum emits the semi-naive evaluation loop for a
// recursive stratum: a loop over the stratum's clauses driven by
// Δ-relations. Each member relation R gets a
// delta_R (this iteration's newly derived tuples) and new_R (next
// iteration's candidates); the loop runs each clause once per recursive
// body atom occurrence, rotating that occurrence to read from delta_R
// while the rest read from the full (stable) relation, merges new_R into
// R, and exits once every new_R stayed empty.
func lowerRecursiveStratum(t *tu.TranslationUnit, members []string, clauses []*ast.Clause) ram.Statement {
	memberSet := map[string]bool{}
	for _, m := range members {
		memberSet[m] = true
	}

	var pre []ram.Statement
	for _, m := range members {
		pre = append(pre, ram.MergeInto{From: m, Into: deltaName(m)})
	}

	var body []ram.Statement
	for _, m := range members {
		body = append(body, ram.Clear{Relation: newName(m)})
	}
	for _, c := range clauses {
		recIdx := recursiveAtomIndices(c, memberSet)
		if len(recIdx) == 0 {
			continue // a non-recursive clause of a relation in this stratum, evaluated once in pre
		}
		for _, i := range recIdx {
			source := func(atomIndex int, name string) string {
				if atomIndex == i {
					return deltaName(name)
				}
				return name
			}
			body = append(body, ram.Query{Root: lowerClauseBodyIndexed(t, c, source, newName(c.Head.Name.String()))})
		}
	}
	var exitConds []ram.Statement
	for _, m := range members {
		body = append(body, ram.MergeInto{From: newName(m), Into: m})
		body = append(body, ram.Swap{A: newName(m), B: deltaName(m)})
	}
	for _, m := range members {
		exitConds = append(exitConds, ram.Exit{Condition: ram.Compare{
			Op:    "eq_u",
			Left:  ram.RelationSize{Relation: deltaName(m)},
			Right: ram.UnsignedConstant{Value: "0"},
		}})
	}
	loopBody := append(body, exitConds...)

	// Prime the delta relations with the non-recursive facts/clauses of
	// this stratum before the first iteration.
	for _, c := range clauses {
		if len(recursiveAtomIndices(c, memberSet)) == 0 {
			pre = append(pre, ram.Query{Root: lowerClauseBody(t, c, nil)})
		}
	}
	for _, m := range members {
		pre = append(pre, ram.MergeInto{From: m, Into: deltaName(m)})
	}

	return ram.Sequence{Statements: append(pre, ram.Loop{Body: ram.Sequence{Statements: loopBody}})}
}

func deltaName(rel string) string { return "@delta_" + rel }
func newName(rel string) string   { return "@new_" + rel }

func recursiveAtomIndices(c *ast.Clause, members map[string]bool) []int {
	var idx []int
	i := 0
	for _, lit := range c.Body {
		if atom, ok := lit.(*ast.Atom); ok {
			if members[atom.Name.String()] {
				idx = append(idx, i)
			}
			i++
		}
	}
	return idx
}

func lowerDirective(t *tu.TranslationUnit, d *ast.Directive) ram.Statement {
	params := map[string]string{}
	for _, p := range d.Parameters {
		params[p.Key] = p.Value
	}
	switch d.Type {
	case ast.DirectiveInput:
		return ram.Load{Relation: d.Relation.String(), Params: params}
	default:
		return ram.Store{Relation: d.Relation.String(), Params: params}
	}
}

func unsupportedArgument(a ast.Argument) ram.Expression {
	return ram.StringConstant{Value: fmt.Sprintf("<unsupported:%T>", a)}
}
