package fixture

import (
	"fmt"

	"github.com/datalogc/dlc/ast"
)

func buildClause(m map[string]any) (*ast.Clause, error) {
	head, err := buildAtom(firstOf(m, "head"))
	if err != nil {
		return nil, err
	}
	c := &ast.Clause{Head: head}
	for _, raw := range listOf(m, "body") {
		lit, err := buildLiteral(raw)
		if err != nil {
			return nil, err
		}
		c.Body = append(c.Body, lit)
	}
	return c, nil
}

func firstOf(m map[string]any, key string) map[string]any {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	mm, _ := raw.(map[string]any)
	return mm
}

func buildAtom(m map[string]any) (*ast.Atom, error) {
	args, err := buildArgs(listOf(m, "args"))
	if err != nil {
		return nil, err
	}
	return &ast.Atom{Name: qname(m, "name"), Args: args}, nil
}

func buildArgs(raw []map[string]any) ([]ast.Argument, error) {
	out := make([]ast.Argument, 0, len(raw))
	for _, a := range raw {
		arg, err := buildArgument(a)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
	}
	return out, nil
}

func buildLiteral(m map[string]any) (ast.Literal, error) {
	switch kind := str(m, "kind"); kind {
	case "atom":
		return buildAtom(m)
	case "negation":
		atom, err := buildAtom(firstOf(m, "atom"))
		if err != nil {
			return nil, err
		}
		return &ast.Negation{Atom: atom}, nil
	case "binary_constraint":
		left, err := buildArgument(firstOf(m, "left"))
		if err != nil {
			return nil, err
		}
		right, err := buildArgument(firstOf(m, "right"))
		if err != nil {
			return nil, err
		}
		return &ast.BinaryConstraint{Op: str(m, "op"), Left: left, Right: right}, nil
	case "boolean_constraint":
		return &ast.BooleanConstraint{Value: boolVal(m, "value")}, nil
	default:
		return nil, fmt.Errorf("fixture: literal: unknown kind %q", kind)
	}
}

func buildArgument(m map[string]any) (ast.Argument, error) {
	if m == nil {
		return nil, fmt.Errorf("fixture: missing argument")
	}
	switch kind := str(m, "kind"); kind {
	case "variable":
		return &ast.Variable{Name: str(m, "name")}, nil
	case "unnamed":
		return &ast.UnnamedVariable{}, nil
	case "number":
		return &ast.NumericConstant{Value: str(m, "value"), Fixed: numericTypeOf(str(m, "type"))}, nil
	case "string":
		return &ast.StringConstant{Value: str(m, "value")}, nil
	case "nil":
		return &ast.NilConstant{}, nil
	case "counter":
		return &ast.Counter{}, nil
	case "record":
		args, err := buildArgs(listOf(m, "fields"))
		if err != nil {
			return nil, err
		}
		return &ast.RecordInit{Args: args}, nil
	case "branch":
		args, err := buildArgs(listOf(m, "fields"))
		if err != nil {
			return nil, err
		}
		return &ast.BranchInit{Constructor: str(m, "constructor"), Args: args}, nil
	case "intrinsic":
		args, err := buildArgs(listOf(m, "args"))
		if err != nil {
			return nil, err
		}
		return &ast.IntrinsicFunctor{Op: str(m, "op"), Args: args}, nil
	case "functor":
		args, err := buildArgs(listOf(m, "args"))
		if err != nil {
			return nil, err
		}
		return &ast.UserDefinedFunctor{Name: qname(m, "name"), Args: args}, nil
	case "cast":
		expr, err := buildArgument(firstOf(m, "expr"))
		if err != nil {
			return nil, err
		}
		return &ast.TypeCast{Expr: expr, Type: qname(m, "type")}, nil
	case "aggregate":
		agg := &ast.Aggregator{Op: str(m, "op")}
		if target := firstOf(m, "target"); target != nil {
			t, err := buildArgument(target)
			if err != nil {
				return nil, err
			}
			agg.Target = t
		}
		for _, raw := range listOf(m, "body") {
			lit, err := buildLiteral(raw)
			if err != nil {
				return nil, err
			}
			agg.Body = append(agg.Body, lit)
		}
		return agg, nil
	default:
		return nil, fmt.Errorf("fixture: argument: unknown kind %q", kind)
	}
}

func numericTypeOf(s string) ast.NumericType {
	switch s {
	case "int":
		return ast.Int
	case "uint":
		return ast.Uint
	case "float":
		return ast.Float
	default:
		return ast.Unspecified
	}
}
