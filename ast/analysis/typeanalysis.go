package analysis

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// PolymorphicOperator is the resolved, type-specific opcode a polymorphic
// source-level operator (`+`, `<`, `min`, a numeric constant's suffix)
// lowers to, once type analysis narrows the operand types.
type PolymorphicOperator struct {
	Kind ast.NumericType
	// Name is the resolved operator mnemonic, e.g. "+" resolves to
	// "+_i" / "+_u" / "+_f" depending on Kind — the RAM lowering
	// reads this to choose its IntrinsicOperator opcode.
	Name string
}

// TypeAnalysis computes, per argument node, the possible NumericType
// lattice, and resolves the polymorphic operator for every
// IntrinsicFunctor, numeric BinaryConstraint, Aggregator, and
// NumericConstant. Its only check of user-defined functor declarations
// is that a functor name is not declared twice with different arities;
// parameter and return types are not checked.
type TypeAnalysis struct {
	types      map[ast.Argument]map[ast.NumericType]bool
	polymorphic map[ast.Node]PolymorphicOperator
	errors     []string
}

type typeAnalysisKey struct{}

// TypeAnalysisOf returns the (cached) type analysis for tu, recording any
// functor-declaration well-typedness errors into tu.Report.
func TypeAnalysisOf(t *tu.TranslationUnit) *TypeAnalysis {
	return tu.Get(t, typeAnalysisKey{}, func() *TypeAnalysis {
		ta := computeTypeAnalysis(t.Program)
		for _, msg := range ta.errors {
			t.Report.Errorf(ast.Position{}, "%s", msg)
		}
		return ta
	})
}

func computeTypeAnalysis(p *ast.Program) *TypeAnalysis {
	ta := &TypeAnalysis{
		types:       map[ast.Argument]map[ast.NumericType]bool{},
		polymorphic: map[ast.Node]PolymorphicOperator{},
	}

	functorArity := map[string]int{}
	for _, f := range p.Functors {
		key := f.Name.String()
		if other, ok := functorArity[key]; ok && other != len(f.Params) {
			ta.errors = append(ta.errors, "functor "+key+" redeclared with a different arity")
		}
		functorArity[key] = len(f.Params)
	}

	for _, c := range p.Clauses {
		for _, lit := range c.Body {
			ta.visitLiteral(lit)
		}
		ta.visitAtom(c.Head)
	}
	return ta
}

func (ta *TypeAnalysis) visitLiteral(lit ast.Literal) {
	switch l := lit.(type) {
	case *ast.Atom:
		ta.visitAtom(l)
	case *ast.Negation:
		ta.visitAtom(l.Atom)
	case *ast.BinaryConstraint:
		lt := ta.visitArgument(l.Left)
		rt := ta.visitArgument(l.Right)
		kind := unify(lt, rt)
		ta.polymorphic[l] = PolymorphicOperator{Kind: kind, Name: resolveComparison(l.Op, kind)}
	}
}

func (ta *TypeAnalysis) visitAtom(a *ast.Atom) {
	for _, arg := range a.Args {
		ta.visitArgument(arg)
	}
}

// visitArgument returns the inferred NumericType for a, defaulting to
// Unspecified for non-numeric arguments.
func (ta *TypeAnalysis) visitArgument(a ast.Argument) ast.NumericType {
	switch v := a.(type) {
	case *ast.NumericConstant:
		kind := v.Fixed
		if kind == ast.Unspecified {
			kind = ast.Int // the default numeric type absent a suffix/context
		}
		ta.polymorphic[v] = PolymorphicOperator{Kind: kind, Name: "const"}
		ta.record(v, kind)
		return kind
	case *ast.IntrinsicFunctor:
		kind := ast.Unspecified
		for _, sub := range v.Args {
			kind = unify(kind, ta.visitArgument(sub))
		}
		if kind == ast.Unspecified {
			kind = ast.Int
		}
		ta.polymorphic[v] = PolymorphicOperator{Kind: kind, Name: resolveIntrinsic(v.Op, kind)}
		ta.record(v, kind)
		return kind
	case *ast.Aggregator:
		if !isNilArgument(v.Target) {
			kind := ta.visitArgument(v.Target)
			ta.polymorphic[v] = PolymorphicOperator{Kind: kind, Name: resolveAggregator(v.Op, kind)}
			for _, bodyLit := range v.Body {
				ta.visitLiteral(bodyLit)
			}
			return kind
		}
		ta.polymorphic[v] = PolymorphicOperator{Kind: ast.Uint, Name: "count"}
		for _, bodyLit := range v.Body {
			ta.visitLiteral(bodyLit)
		}
		return ast.Uint
	case *ast.TypeCast:
		return ta.visitArgument(v.Expr)
	case *ast.RecordInit:
		for _, f := range v.Args {
			ta.visitArgument(f)
		}
		return ast.Unspecified
	case *ast.BranchInit:
		for _, f := range v.Args {
			ta.visitArgument(f)
		}
		return ast.Unspecified
	case *ast.UserDefinedFunctor:
		for _, f := range v.Args {
			ta.visitArgument(f)
		}
		return ast.Unspecified
	default:
		return ast.Unspecified
	}
}

func isNilArgument(a ast.Argument) bool {
	return a == nil
}

func (ta *TypeAnalysis) record(a ast.Argument, kind ast.NumericType) {
	if ta.types[a] == nil {
		ta.types[a] = map[ast.NumericType]bool{}
	}
	ta.types[a][kind] = true
}

func unify(a, b ast.NumericType) ast.NumericType {
	if a == ast.Unspecified {
		return b
	}
	if b == ast.Unspecified || a == b {
		return a
	}
	if a == ast.Float || b == ast.Float {
		return ast.Float
	}
	return ast.Int
}

func resolveIntrinsic(op string, kind ast.NumericType) string {
	suffix := numericSuffix(kind)
	return op + "_" + suffix
}

func resolveComparison(op string, kind ast.NumericType) string {
	switch op {
	case "=", "!=":
		return op // untyped equality, same opcode for every type
	default:
		return op + "_" + numericSuffix(kind)
	}
}

func resolveAggregator(op string, kind ast.NumericType) string {
	return op + "_" + numericSuffix(kind)
}

func numericSuffix(kind ast.NumericType) string {
	switch kind {
	case ast.Uint:
		return "u"
	case ast.Float:
		return "f"
	default:
		return "i"
	}
}

// PossibleTypes returns the NumericType lattice computed for argument a.
func (ta *TypeAnalysis) PossibleTypes(a ast.Argument) []ast.NumericType {
	set := ta.types[a]
	out := make([]ast.NumericType, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// ResolvedOperator returns the resolved PolymorphicOperator for n (an
// IntrinsicFunctor, BinaryConstraint, Aggregator, or NumericConstant).
func (ta *TypeAnalysis) ResolvedOperator(n ast.Node) (PolymorphicOperator, bool) {
	op, ok := ta.polymorphic[n]
	return op, ok
}

// PolymorphicObjects is a thin facade over TypeAnalysis exposing just the
// resolved-operator lookups.
type PolymorphicObjects struct {
	ta *TypeAnalysis
}

type polymorphicObjectsKey struct{}

// PolymorphicObjectsOf returns the (cached) facade for tu.
func PolymorphicObjectsOf(t *tu.TranslationUnit) *PolymorphicObjects {
	return tu.Get(t, polymorphicObjectsKey{}, func() *PolymorphicObjects {
		return &PolymorphicObjects{ta: TypeAnalysisOf(t)}
	})
}

// ResolvedOperator delegates to the underlying TypeAnalysis.
func (po *PolymorphicObjects) ResolvedOperator(n ast.Node) (PolymorphicOperator, bool) {
	return po.ta.ResolvedOperator(n)
}
