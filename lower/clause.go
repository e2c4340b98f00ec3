package lower

import (
	"fmt"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/ram"
	"github.com/datalogc/dlc/tu"
)

// atomSource picks which relation name a body atom at the given zero-based
// atom position actually scans — the identity function for a
// non-recursive clause, or the delta/new-relation rename a semi-naive
// iteration needs for one rotated recursive atom.
type atomSource func(atomIndex int, name string) string

func identitySource(_ int, name string) string { return name }

// lowerClauseBody lowers c into a single nested Operation terminating in
// an Insert into c's own head relation.
func lowerClauseBody(t *tu.TranslationUnit, c *ast.Clause, source atomSource) ram.Operation {
	return lowerClauseBodyIndexed(t, c, source, c.Head.Name.String())
}

// lowerClauseBodyIndexed is lowerClauseBody generalised over the Insert
// target, used by the semi-naive loop to write into a stratum's @new_R
// relation instead of R directly.
func lowerClauseBodyIndexed(t *tu.TranslationUnit, c *ast.Clause, source atomSource, target string) ram.Operation {
	return lowerClauseOperation(t, c, source, func(ctx *clauseLowerer) ram.Operation {
		args := make([]ram.Expression, len(c.Head.Args))
		for i, a := range c.Head.Args {
			args[i] = ctx.lowerExpression(a)
		}
		return ram.Insert{Relation: target, Args: args}
	})
}

// lowerClauseOperation is the shared entry point for turning c's body into
// a nested Operation: every body literal lowers identically regardless of
// what the leaf does with the resulting bindings (an Insert for ordinary
// evaluation, a Return for a provenance subproof subroutine).
func lowerClauseOperation(t *tu.TranslationUnit, c *ast.Clause, source atomSource, leaf func(ctx *clauseLowerer) ram.Operation) ram.Operation {
	if source == nil {
		source = identitySource
	}
	ctx := &clauseLowerer{t: t, env: map[string]ram.Expression{}, source: source}
	return ctx.lowerLiterals(c.Body, 0, func() ram.Operation {
		return leaf(ctx)
	})
}

type clauseLowerer struct {
	t      *tu.TranslationUnit
	env    map[string]ram.Expression
	source atomSource
}

func (ctx *clauseLowerer) lowerLiterals(lits []ast.Literal, atomIdx int, leaf func() ram.Operation) ram.Operation {
	if len(lits) == 0 {
		return leaf()
	}

	switch l := lits[0].(type) {
	case *ast.Atom:
		return ctx.lowerAtomScan(l, atomIdx, lits[1:], leaf)
	case *ast.Negation:
		pattern := ctx.patternFor(l.Atom)
		rel := ctx.source(atomIdx, l.Atom.Name.String())
		nested := ctx.lowerLiterals(lits[1:], atomIdx+1, leaf)
		return ram.Filter{Condition: ram.Not{Inner: ram.Exists{Relation: rel, Pattern: pattern}}, Nested: nested}
	case *ast.BinaryConstraint:
		if agg, ok := asAggregator(l.Left); ok {
			return ctx.lowerAggregatorAssignment(assignmentTarget(l.Right), agg, lits[1:], atomIdx, leaf)
		}
		if agg, ok := asAggregator(l.Right); ok {
			return ctx.lowerAggregatorAssignment(assignmentTarget(l.Left), agg, lits[1:], atomIdx, leaf)
		}
		left := ctx.lowerExpression(l.Left)
		right := ctx.lowerExpression(l.Right)
		nested := ctx.lowerLiterals(lits[1:], atomIdx, leaf)
		return ram.Filter{Condition: ram.Compare{Op: ctx.resolvedOp(l), Left: left, Right: right}, Nested: nested}
	case *ast.BooleanConstraint:
		if !l.Value {
			return ram.Filter{Condition: ram.BoolLiteral{Value: false}, Nested: ctx.lowerLiterals(lits[1:], atomIdx, leaf)}
		}
		return ctx.lowerLiterals(lits[1:], atomIdx, leaf)
	default:
		return ctx.lowerLiterals(lits[1:], atomIdx, leaf)
	}
}

func (ctx *clauseLowerer) lowerAtomScan(a *ast.Atom, atomIdx int, rest []ast.Literal, leaf func() ram.Operation) ram.Operation {
	rel := ctx.source(atomIdx, a.Name.String())
	ident := fmt.Sprintf("%s_%d", sanitizeIdent(rel), atomIdx)

	var conds []ram.Expression
	for j, arg := range a.Args {
		elem := ram.TupleElement{Ident: ident, Index: j}
		switch v := arg.(type) {
		case *ast.Variable:
			if existing, bound := ctx.env[v.Name]; bound {
				conds = append(conds, ram.Compare{Op: "eq", Left: existing, Right: elem})
			} else {
				ctx.env[v.Name] = elem
			}
		case *ast.UnnamedVariable:
			// unconstrained: no binding, no condition
		default:
			conds = append(conds, ram.Compare{Op: "eq", Left: ctx.lowerExpression(arg), Right: elem})
		}
	}

	nested := ctx.lowerLiterals(rest, atomIdx+1, leaf)
	for i := len(conds) - 1; i >= 0; i-- {
		nested = ram.Filter{Condition: conds[i], Nested: nested}
	}
	return ram.Scan{Relation: rel, Ident: ident, Nested: nested}
}

// patternFor builds an IndexScan-style bound pattern for a (used by a
// Negation's membership test): nil entries are unconstrained.
func (ctx *clauseLowerer) patternFor(a *ast.Atom) []ram.Expression {
	pattern := make([]ram.Expression, len(a.Args))
	for i, arg := range a.Args {
		switch v := arg.(type) {
		case *ast.Variable:
			if e, ok := ctx.env[v.Name]; ok {
				pattern[i] = e
			}
		case *ast.UnnamedVariable:
			// unconstrained
		default:
			pattern[i] = ctx.lowerExpression(arg)
		}
	}
	return pattern
}

func (ctx *clauseLowerer) resolvedOp(bc *ast.BinaryConstraint) string {
	if ta := analysis.TypeAnalysisOf(ctx.t); ta != nil {
		if op, ok := ta.ResolvedOperator(bc); ok {
			return op.Name
		}
	}
	return bc.Op
}

// lowerAggregatorAssignment lowers `target = agg.Op agg.Target : { agg.Body }`
// into a RAM Aggregate operation binding target's TupleElement, then
// continues lowering the rest of the outer clause body.
func (ctx *clauseLowerer) lowerAggregatorAssignment(target string, agg *ast.Aggregator, rest []ast.Literal, atomIdx int, leaf func() ram.Operation) ram.Operation {
	inner := &clauseLowerer{t: ctx.t, env: map[string]ram.Expression{}, source: ctx.source}
	for k, v := range ctx.env {
		inner.env[k] = v
	}

	ident := fmt.Sprintf("agg_%d", atomIdx)

	var innerTarget ram.Expression
	body := inner.lowerLiterals(agg.Body, atomIdx+1000, func() ram.Operation {
		if agg.Target != nil && !isNilArgument(agg.Target) {
			innerTarget = inner.lowerExpression(agg.Target)
			return ram.Project{Args: []ram.Expression{innerTarget}}
		}
		return ram.Project{Args: nil}
	})

	ctx.env[target] = ram.TupleElement{Ident: ident, Index: 0}
	nested := ctx.lowerLiterals(rest, atomIdx+1, leaf)

	return ram.Aggregate{
		Op:     ctx.resolvedAggregatorOp(agg),
		Target: innerTarget,
		Body:   body,
		Ident:  ident,
		Nested: nested,
	}
}

func (ctx *clauseLowerer) resolvedAggregatorOp(agg *ast.Aggregator) string {
	if ta := analysis.TypeAnalysisOf(ctx.t); ta != nil {
		if op, ok := ta.ResolvedOperator(agg); ok {
			return op.Name
		}
	}
	return agg.Op
}

func (ctx *clauseLowerer) lowerExpression(a ast.Argument) ram.Expression {
	switch v := a.(type) {
	case *ast.Variable:
		if e, ok := ctx.env[v.Name]; ok {
			return e
		}
		return ram.StringConstant{Value: "<ungrounded:" + v.Name + ">"}
	case *ast.UnnamedVariable:
		return ram.StringConstant{Value: "_"}
	case *ast.NumericConstant:
		return ctx.lowerNumericConstant(v)
	case *ast.StringConstant:
		return ram.StringConstant{Value: v.Value}
	case *ast.NilConstant:
		// the null-record sentinel: record id 0, matching the original's
		// representation of `nil` as the zero record reference.
		return ram.SignedConstant{Value: "0"}
	case *ast.Counter:
		return ram.AutoIncrement{}
	case *ast.RecordInit:
		args := make([]ram.Expression, len(v.Args))
		for i, f := range v.Args {
			args[i] = ctx.lowerExpression(f)
		}
		return ram.PackRecord{Args: args}
	case *ast.BranchInit:
		args := make([]ram.Expression, len(v.Args))
		for i, f := range v.Args {
			args[i] = ctx.lowerExpression(f)
		}
		branchID := branchIndex(ctx.t, v.Constructor)
		if len(args) == 0 {
			return ram.PackBranch{BranchID: branchID}
		}
		payload := ram.Expression(ram.PackRecord{Args: args})
		return ram.PackBranch{BranchID: branchID, Payload: payload}
	case *ast.IntrinsicFunctor:
		args := make([]ram.Expression, len(v.Args))
		for i, f := range v.Args {
			args[i] = ctx.lowerExpression(f)
		}
		op := v.Op
		if ta := analysis.TypeAnalysisOf(ctx.t); ta != nil {
			if resolved, ok := ta.ResolvedOperator(v); ok {
				op = resolved.Name
			}
		}
		return ram.IntrinsicOperator{Op: op, Args: args}
	case *ast.UserDefinedFunctor:
		args := make([]ram.Expression, len(v.Args))
		for i, f := range v.Args {
			args[i] = ctx.lowerExpression(f)
		}
		stateful := false
		for _, f := range ctx.t.Program.Functors {
			if f.Name.Equal(v.Name) {
				stateful = f.Stateful
				break
			}
		}
		return ram.UserDefinedOperator{Name: v.Name.String(), Args: args, Stateful: stateful}
	case *ast.TypeCast:
		return ctx.lowerExpression(v.Expr)
	default:
		return unsupportedArgument(a)
	}
}

func (ctx *clauseLowerer) lowerNumericConstant(v *ast.NumericConstant) ram.Expression {
	kind := v.Fixed
	if kind == ast.Unspecified {
		if ta := analysis.TypeAnalysisOf(ctx.t); ta != nil {
			if op, ok := ta.ResolvedOperator(v); ok {
				kind = op.Kind
			}
		}
	}
	switch kind {
	case ast.Uint:
		return ram.UnsignedConstant{Value: v.Value}
	case ast.Float:
		return ram.FloatConstant{Value: v.Value}
	default:
		return ram.SignedConstant{Value: v.Value}
	}
}

// branchIndex resolves constructor's declared position within its owning
// algebraic data type, defaulting to 0 if no declaration is found (a
// SemanticChecker-reported error in that case, not this lowering's job to
// flag again).
func branchIndex(t *tu.TranslationUnit, constructor string) int {
	for _, ty := range t.Program.Types {
		adt, ok := ty.(*ast.AlgebraicDataType)
		if !ok {
			continue
		}
		for i, b := range adt.Branches {
			if b.Name == constructor {
				return i
			}
		}
	}
	return 0
}

func asAggregator(a ast.Argument) (*ast.Aggregator, bool) {
	agg, ok := a.(*ast.Aggregator)
	return agg, ok
}

// assignmentTarget returns the variable name of the non-aggregator side of
// an aggregator-assignment BinaryConstraint, or "" when that side is not a
// plain variable.
func assignmentTarget(a ast.Argument) string {
	if v, ok := a.(*ast.Variable); ok {
		return v.Name
	}
	return ""
}

func isNilArgument(a ast.Argument) bool { return a == nil }

func sanitizeIdent(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '.' || r == '@' {
			out = append(out, '_')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
