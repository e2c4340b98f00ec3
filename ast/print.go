package ast

import (
	"fmt"
	"strings"
)

// Sprint renders p as a compact, deterministic text dump: one line per
// top-level declaration in list order. It is not a surface-syntax printer
//; it exists
// so DebugReporter and the CLI's `--show transformed-ram` sibling
// for the AST side have something stable to snapshot.
func Sprint(p *Program) string {
	var sb strings.Builder
	for _, ty := range p.Types {
		fmt.Fprintf(&sb, ".type %s\n", ty.TypeName().String())
	}
	for _, r := range p.Relations {
		fmt.Fprintf(&sb, ".decl %s(%s)\n", r.Name.String(), sprintAttrs(r.Attributes))
	}
	for _, f := range p.Functors {
		fmt.Fprintf(&sb, ".declfun %s(%s)\n", f.Name.String(), sprintAttrs(f.Params))
	}
	for _, c := range p.Clauses {
		fmt.Fprintf(&sb, "%s\n", sprintClause(c))
	}
	for _, d := range p.Directives {
		fmt.Fprintf(&sb, ".%s %s\n", d.Type, d.Relation.String())
	}
	for _, pr := range p.Pragmas {
		fmt.Fprintf(&sb, ".pragma %s %s\n", pr.Key, pr.Value)
	}
	return sb.String()
}

func sprintAttrs(attrs []Attribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Name + ":" + a.TypeName.String()
	}
	return strings.Join(parts, ", ")
}

func sprintClause(c *Clause) string {
	if c.IsFact() {
		return sprintAtom(c.Head) + "."
	}
	parts := make([]string, len(c.Body))
	for i, lit := range c.Body {
		parts[i] = sprintLiteral(lit)
	}
	return sprintAtom(c.Head) + " :- " + strings.Join(parts, ", ") + "."
}

func sprintAtom(a *Atom) string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = sprintArgument(arg)
	}
	return a.Name.String() + "(" + strings.Join(parts, ", ") + ")"
}

func sprintLiteral(lit Literal) string {
	switch l := lit.(type) {
	case *Atom:
		return sprintAtom(l)
	case *Negation:
		return "!" + sprintAtom(l.Atom)
	case *BinaryConstraint:
		return sprintArgument(l.Left) + " " + l.Op + " " + sprintArgument(l.Right)
	case *BooleanConstraint:
		if l.Value {
			return "true"
		}
		return "false"
	default:
		return "?"
	}
}

func sprintArgument(a Argument) string {
	switch v := a.(type) {
	case *Variable:
		return v.Name
	case *UnnamedVariable:
		return "_"
	case *NumericConstant:
		return v.Value
	case *StringConstant:
		return "\"" + v.Value + "\""
	case *NilConstant:
		return "nil"
	case *Counter:
		return "$"
	case *RecordInit:
		parts := make([]string, len(v.Args))
		for i, f := range v.Args {
			parts[i] = sprintArgument(f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *BranchInit:
		parts := make([]string, len(v.Args))
		for i, f := range v.Args {
			parts[i] = sprintArgument(f)
		}
		return "$" + v.Constructor + "(" + strings.Join(parts, ", ") + ")"
	case *IntrinsicFunctor:
		parts := make([]string, len(v.Args))
		for i, f := range v.Args {
			parts[i] = sprintArgument(f)
		}
		return v.Op + "(" + strings.Join(parts, ", ") + ")"
	case *UserDefinedFunctor:
		parts := make([]string, len(v.Args))
		for i, f := range v.Args {
			parts[i] = sprintArgument(f)
		}
		return "@" + v.Name.String() + "(" + strings.Join(parts, ", ") + ")"
	case *TypeCast:
		return sprintArgument(v.Expr) + " as " + v.Type.String()
	case *Aggregator:
		op := v.Op
		if v.Target != nil && !isNilPointer(v.Target) {
			parts := make([]string, len(v.Body))
			for i, l := range v.Body {
				parts[i] = sprintLiteral(l)
			}
			return op + " " + sprintArgument(v.Target) + " : {" + strings.Join(parts, ", ") + "}"
		}
		parts := make([]string, len(v.Body))
		for i, l := range v.Body {
			parts[i] = sprintLiteral(l)
		}
		return op + " : {" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}
