package lower

import (
	"fmt"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ram"
	"github.com/datalogc/dlc/tu"
)

// Provenance wraps Seminaive and additionally emits, per clause, a
// subproof subroutine and a negation-subproof subroutine. Enabled by the
// `provenance` pragma/CLI flag (config.KeyProvenance).
//
// The subroutines this emits describe proof structure, they are not
// executable proof search: this core stops at
// producing and dumping a RAM program, so a subproof
// subroutine's job here is to make the clause's derivation steps visible
// in the dump, not to be run by an evaluator.
type Provenance struct {
	Seminaive
}

func (Provenance) Name() string { return "provenance" }

func (Provenance) Subroutines(t *tu.TranslationUnit, c *ast.Clause, index int) map[string]ram.Statement {
	base := c.Head.Name.String()
	subproofName := fmt.Sprintf("%s_%d_subproof", base, index)
	negName := fmt.Sprintf("%s_%d_negation_subproof", base, index)
	return map[string]ram.Statement{
		subproofName: makeSubproofSubroutine(t, c),
		negName:      makeNegationSubproofSubroutine(t, c),
	}
}

// makeSubproofSubroutine builds the subroutine that attempts to derive c's
// head from its body, projecting a `true` witness the moment every body
// literal is satisfied and falling back to `false`.
func makeSubproofSubroutine(t *tu.TranslationUnit, c *ast.Clause) ram.Statement {
	root := lowerClauseOperation(t, c, nil, func(*clauseLowerer) ram.Operation {
		return ram.Project{Args: []ram.Expression{ram.BoolLiteral{Value: true}}}
	})
	return ram.Sequence{Statements: []ram.Statement{
		ram.Query{Root: root},
		ram.Return{Args: []ram.Expression{ram.BoolLiteral{Value: false}}},
	}}
}

// makeNegationSubproofSubroutine builds the dual subroutine used to
// justify a negated atom's absence: it walks the same body pattern and
// projects `false` the moment a matching derivation is found (meaning the
// negation does NOT hold), falling back to `true`.
func makeNegationSubproofSubroutine(t *tu.TranslationUnit, c *ast.Clause) ram.Statement {
	root := lowerClauseOperation(t, c, nil, func(*clauseLowerer) ram.Operation {
		return ram.Project{Args: []ram.Expression{ram.BoolLiteral{Value: false}}}
	})
	return ram.Sequence{Statements: []ram.Statement{
		ram.Query{Root: root},
		ram.Return{Args: []ram.Expression{ram.BoolLiteral{Value: true}}},
	}}
}
