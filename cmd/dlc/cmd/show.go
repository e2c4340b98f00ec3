package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/fixture"
)

var showCmd = &cobra.Command{
	Use:   "show [fixture]",
	Short: "Load a YAML AST fixture and print its structure",
	Long: `show loads a YAML AST fixture (see fixture.Load) without running the
transformer pipeline, and prints a depth-indented dump of every node
reachable from the Program, one line per node, in Children() order.

Useful for checking a fixture decodes the way you expect before handing
it to "dlc compile".`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}
	program, err := fixture.Load(data)
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}

	fmt.Printf("Program: %d relations, %d clauses, %d types, %d functors, %d directives\n",
		len(program.Relations), len(program.Clauses), len(program.Types),
		len(program.Functors), len(program.Directives))

	dumpNode(program, 0)
	return nil
}

func dumpNode(n ast.Node, depth int) {
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), describeNode(n))
	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		dumpNode(child, depth+1)
	}
}

func describeNode(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Program:
		return "Program"
	case *ast.Relation:
		return fmt.Sprintf("Relation %s", v.Name)
	case *ast.Clause:
		return "Clause"
	case *ast.Atom:
		return fmt.Sprintf("Atom %s", v.Name)
	case *ast.Negation:
		return "Negation"
	case *ast.BinaryConstraint:
		return fmt.Sprintf("BinaryConstraint %s", v.Op)
	case *ast.BooleanConstraint:
		return fmt.Sprintf("BooleanConstraint %v", v.Value)
	case *ast.Variable:
		return fmt.Sprintf("Variable %s", v.Name)
	case *ast.UnnamedVariable:
		return "UnnamedVariable"
	case *ast.NumericConstant:
		return fmt.Sprintf("NumericConstant %s", v.Value)
	case *ast.StringConstant:
		return fmt.Sprintf("StringConstant %q", v.Value)
	case *ast.NilConstant:
		return "NilConstant"
	case *ast.Counter:
		return "Counter"
	case *ast.RecordInit:
		return "RecordInit"
	case *ast.BranchInit:
		return fmt.Sprintf("BranchInit %s", v.Constructor)
	case *ast.IntrinsicFunctor:
		return fmt.Sprintf("IntrinsicFunctor %s", v.Op)
	case *ast.UserDefinedFunctor:
		return fmt.Sprintf("UserDefinedFunctor %s", v.Name)
	case *ast.TypeCast:
		return fmt.Sprintf("TypeCast %s", v.Type)
	case *ast.Aggregator:
		return fmt.Sprintf("Aggregator %s", v.Op)
	case *ast.Directive:
		return fmt.Sprintf("Directive %s %s", v.Type, v.Relation)
	case *ast.FunctorDeclaration:
		return fmt.Sprintf("FunctorDeclaration %s", v.Name)
	case *ast.SubsetType:
		return fmt.Sprintf("SubsetType %s", v.Name)
	case *ast.UnionType:
		return fmt.Sprintf("UnionType %s", v.Name)
	case *ast.RecordType:
		return fmt.Sprintf("RecordType %s", v.Name)
	case *ast.AlgebraicDataType:
		return fmt.Sprintf("AlgebraicDataType %s", v.Name)
	default:
		return fmt.Sprintf("%T", n)
	}
}
