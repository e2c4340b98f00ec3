// Package ram implements the relational-algebra intermediate
// representation that the AST lowers into: relation declarations, a
// main statement tree organised by stratum, and a set of named
// subroutines. It is a small Go sum type in the style of this module's
// own `ast` package: a common Node interface plus concrete variants.
package ram

import "fmt"

// Node is the base interface of every RAM IR node: expressions,
// operations, and statements all implement it so the text dumper can
// walk an arbitrary subtree uniformly.
type Node interface {
	// Dump renders the node as an indented line (or lines) of the
	// canonical text form, at the given indent depth.
	Dump(depth int) string
}

// Expression is the sum type of every value-producing RAM term: the
// lowered form of an AST Argument.
type Expression interface {
	Node
	isExpression()
}

// TupleElement reads one column of a tuple bound earlier in the current
// operation nest, e.g. the value of `x` at the point a Scan over `edge`
// bound it. Ident names the Scan/Search that bound it (for readability in
// the dump); Index is its tuple position.
type TupleElement struct {
	Ident string
	Index int
}

func (TupleElement) isExpression() {}
func (e TupleElement) Dump(int) string {
	return fmt.Sprintf("t_%s.%d", e.Ident, e.Index)
}

// NumericType mirrors ast.NumericType without importing the ast package,
// keeping ram a leaf package the way the original's ram:: layer does not
// depend back on ast::.
type NumericType int

const (
	TypeUnspecified NumericType = iota
	TypeInt
	TypeUint
	TypeFloat
)

func (t NumericType) String() string {
	switch t {
	case TypeInt:
		return "i"
	case TypeUint:
		return "u"
	case TypeFloat:
		return "f"
	default:
		return "?"
	}
}

// SignedConstant, UnsignedConstant and FloatConstant are typed numeric
// literals: the inferred
// NumericType selects which of the three a NumericConstant lowers to.
type SignedConstant struct{ Value string }

func (SignedConstant) isExpression()    {}
func (c SignedConstant) Dump(int) string { return fmt.Sprintf("number(%s)", c.Value) }

type UnsignedConstant struct{ Value string }

func (UnsignedConstant) isExpression()    {}
func (c UnsignedConstant) Dump(int) string { return fmt.Sprintf("unsigned(%s)", c.Value) }

type FloatConstant struct{ Value string }

func (FloatConstant) isExpression()    {}
func (c FloatConstant) Dump(int) string { return fmt.Sprintf("float(%s)", c.Value) }

// StringConstant is a symbol-table-interned string literal.
type StringConstant struct{ Value string }

func (StringConstant) isExpression()    {}
func (c StringConstant) Dump(int) string { return fmt.Sprintf("%q", c.Value) }

// AutoIncrement lowers an AST Counter (`$`): a monotonically increasing
// per-evaluation counter.
type AutoIncrement struct{}

func (AutoIncrement) isExpression()    {}
func (AutoIncrement) Dump(int) string { return "autoinc()" }

// IntrinsicOperator lowers an AST IntrinsicFunctor once its polymorphic
// opcode is resolved, e.g. `+_i(t_a.0, number(1))`.
type IntrinsicOperator struct {
	Op   string
	Args []Expression
}

func (IntrinsicOperator) isExpression() {}
func (o IntrinsicOperator) Dump(int) string {
	return o.Op + "(" + dumpExprList(o.Args) + ")"
}

// UserDefinedOperator lowers a `.declfun`-declared functor call.
type UserDefinedOperator struct {
	Name     string
	Args     []Expression
	Stateful bool
}

func (UserDefinedOperator) isExpression() {}
func (o UserDefinedOperator) Dump(int) string {
	return "@" + o.Name + "(" + dumpExprList(o.Args) + ")"
}

// PackRecord lowers a RecordInit into the flat-tuple packed
// representation.
type PackRecord struct {
	Args []Expression
}

func (PackRecord) isExpression() {}
func (p PackRecord) Dump(int) string {
	return "PACK(" + dumpExprList(p.Args) + ")"
}

// PackBranch lowers a BranchInit into a two-field `[branch_id, payload]`
// packed record (a tagged constant is used instead for nullary-field
// branches, i.e. enum-like ADTs).
type PackBranch struct {
	BranchID int
	Payload  Expression // nil for a nullary branch
}

func (PackBranch) isExpression() {}
func (p PackBranch) Dump(int) string {
	if p.Payload == nil {
		return fmt.Sprintf("branch(%d)", p.BranchID)
	}
	return fmt.Sprintf("branch(%d, %s)", p.BranchID, p.Payload.Dump(0))
}

// RelationSize reads the current cardinality of a relation, used by the
// semi-naive loop's Exit check.
type RelationSize struct{ Relation string }

func (RelationSize) isExpression()    {}
func (r RelationSize) Dump(int) string { return fmt.Sprintf("size(%s)", r.Relation) }

// Compare lowers an AST BinaryConstraint once its polymorphic operator is
// resolved, e.g. `<_i(t_a.0, number(1))`. It is boolean-valued and only
// ever appears as a Filter condition.
type Compare struct {
	Op          string
	Left, Right Expression
}

func (Compare) isExpression() {}
func (c Compare) Dump(int) string {
	return fmt.Sprintf("%s(%s, %s)", c.Op, c.Left.Dump(0), c.Right.Dump(0))
}

// Exists is a boolean membership test: does Relation contain a tuple
// matching Pattern (nil entries unconstrained)? It lowers a negated atom's
// positive form, wrapped in a logical NOT for the Negation case.
type Exists struct {
	Relation string
	Pattern  []Expression
}

func (Exists) isExpression() {}
func (e Exists) Dump(int) string {
	return fmt.Sprintf("EXISTS %s(%s)", e.Relation, dumpExprList(e.Pattern))
}

// Not negates a boolean Expression.
type Not struct{ Inner Expression }

func (Not) isExpression() {}
func (n Not) Dump(int) string { return "NOT " + n.Inner.Dump(0) }

// BoolLiteral is a literal boolean condition, the lowering of
// BooleanConstraint.
type BoolLiteral struct{ Value bool }

func (BoolLiteral) isExpression() {}
func (b BoolLiteral) Dump(int) string {
	if b.Value {
		return "true"
	}
	return "false"
}

func dumpExprList(exprs []Expression) string {
	out := ""
	for i, e := range exprs {
		if i > 0 {
			out += ", "
		}
		out += e.Dump(0)
	}
	return out
}
