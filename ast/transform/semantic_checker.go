package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/tu"
)

// SemanticChecker orchestrates the omnibus set of static checks that do not
// belong to a narrower, named analysis: relation/type/directive
// redefinition, variable groundedness, min/max witness validity,
// directive parameter validity, and the deprecated overridable
// qualifier. Override legality is not checked here. It never mutates
// the Program; diagnostics go to tu.Report.
type SemanticChecker struct{}

func (SemanticChecker) Name() string       { return "SemanticChecker" }
func (SemanticChecker) Clone() Transformer { return SemanticChecker{} }

var validDirectiveParams = map[string]bool{
	"IO": true, "name": true, "operation": true, "filename": true,
	"fact-dir": true, "output-dir": true, "headers": true,
	"delimiter": true, "rfc4180": true, "n": true,
}

func (SemanticChecker) Apply(t *tu.TranslationUnit) bool {
	checkRedefinitions(t)
	checkGroundedness(t)
	checkAggregatorWitnesses(t)
	checkDirectiveParameters(t)
	checkDeprecatedSyntax(t)
	// Type analysis reports functors redeclared with a different arity as
	// a side effect of being computed; force that now so those errors
	// surface alongside everything else here.
	analysis.TypeAnalysisOf(t)
	return false
}

func checkRedefinitions(t *tu.TranslationUnit) {
	seenRelations := map[string]ast.Position{}
	for _, r := range t.Program.Relations {
		name := r.Name.String()
		if pos, ok := seenRelations[name]; ok {
			t.Report.Errorf(r.Pos(), "relation %s redefined (first declared at line %d)", name, pos.Line)
			continue
		}
		seenRelations[name] = r.Pos()
	}

	seenTypes := map[string]ast.Position{}
	for _, ty := range t.Program.Types {
		name := ty.TypeName().String()
		if pos, ok := seenTypes[name]; ok {
			t.Report.Errorf(ty.Pos(), "type %s redefined (first declared at line %d)", name, pos.Line)
			continue
		}
		seenTypes[name] = ty.Pos()
	}

	type directiveKey struct {
		rel string
		typ ast.DirectiveType
	}
	seenDirectives := map[directiveKey]bool{}
	for _, d := range t.Program.Directives {
		key := directiveKey{d.Relation.String(), d.Type}
		if seenDirectives[key] {
			t.Report.Warnf(d.Pos(), "duplicate %s directive for relation %s", d.Type, d.Relation.String())
			continue
		}
		seenDirectives[key] = true
	}
}

// checkGroundedness reports every clause head variable that is never bound
// by a positive body atom or a grounded equality chain.
func checkGroundedness(t *tu.TranslationUnit) {
	for _, c := range t.Program.Clauses {
		if c.IsFact() {
			continue
		}
		bs := analysis.NewBindingStoreForClause(c)
		for _, arg := range c.Head.Args {
			checkArgumentGrounded(t, bs, arg)
		}
		for _, lit := range c.Body {
			neg, ok := lit.(*ast.Negation)
			if !ok {
				continue
			}
			for _, arg := range neg.Atom.Args {
				if v, isVar := arg.(*ast.Variable); isVar && !bs.IsBound(v) {
					t.Report.Errorf(neg.Pos(), "variable %s in negated atom %s is ungrounded", v.Name, neg.Atom.Name.String())
				}
			}
		}
	}
}

func checkArgumentGrounded(t *tu.TranslationUnit, bs *analysis.BindingStore, arg ast.Argument) {
	v, ok := arg.(*ast.Variable)
	if !ok {
		return
	}
	if !bs.IsBound(v) {
		t.Report.Errorf(v.Pos(), "variable %s is ungrounded in clause head", v.Name)
	}
}

// checkAggregatorWitnesses reports a min or max aggregator whose target
// variable is not an argument of any atom in the aggregator's own body.
// Other operators and non-variable targets are not checked.
func checkAggregatorWitnesses(t *tu.TranslationUnit) {
	for _, c := range t.Program.Clauses {
		ast.Inspect(c, func(n ast.Node) bool {
			agg, ok := n.(*ast.Aggregator)
			if !ok {
				return true
			}
			if agg.Op != "min" && agg.Op != "max" {
				return true
			}
			targetVar, ok := agg.Target.(*ast.Variable)
			if !ok {
				return true
			}
			boundInBody := false
			for _, lit := range agg.Body {
				atom, ok := lit.(*ast.Atom)
				if !ok {
					continue
				}
				for _, a := range atom.Args {
					if v, ok := a.(*ast.Variable); ok && v.Name == targetVar.Name {
						boundInBody = true
					}
				}
			}
			if !boundInBody {
				t.Report.Errorf(agg.Pos(), "%s witness %s is not bound by the aggregator body", agg.Op, targetVar.Name)
			}
			return true
		})
	}
}

func checkDirectiveParameters(t *tu.TranslationUnit) {
	for _, d := range t.Program.Directives {
		for _, p := range d.Parameters {
			if !validDirectiveParams[p.Key] {
				t.Report.Warnf(d.Pos(), "unrecognised directive parameter %s on %s", p.Key, d.Relation.String())
			}
		}
		if d.Type == ast.DirectiveLimitsize {
			if _, ok := d.Get("n"); !ok {
				t.Report.Errorf(d.Pos(), "limitsize directive on %s missing required parameter n", d.Relation.String())
			}
		}
	}
}

// checkDeprecatedSyntax warns on the deprecated `overridable` qualifier
// spelling, kept for backward compatibility with programs written against
// the original component-override mechanism.
func checkDeprecatedSyntax(t *tu.TranslationUnit) {
	for _, r := range t.Program.Relations {
		if r.HasQualifier(ast.QualifierOverridable) {
			t.Report.Warnf(r.Pos(), "relation %s uses the deprecated overridable qualifier spelling", r.Name.String())
		}
	}
}
