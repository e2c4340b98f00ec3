package ram

import (
	"fmt"
	"strings"
)

// Operation is the sum type of a query's nested relational-algebra
// operations: a Scan/IndexScan per atom, Filter for constraints,
// UnpackRecord for records, Aggregate for aggregators, Insert at the leaf.
type Operation interface {
	Node
	isOperation()
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

// Scan iterates every tuple of Relation, binding it as Ident, then runs
// Nested.
type Scan struct {
	Relation string
	Ident    string
	Nested   Operation
}

func (Scan) isOperation() {}
func (s Scan) Dump(depth int) string {
	return fmt.Sprintf("%sSCAN %s AS t_%s\n%s", indent(depth), s.Relation, s.Ident, s.Nested.Dump(depth+1))
}

// IndexScan iterates only the tuples of Relation whose columns named in
// Pattern match the corresponding Bounds expression (nil entries are
// unconstrained), then runs Nested. Package lower emits a Scan for every
// body atom and does not produce IndexScan.
type IndexScan struct {
	Relation string
	Ident    string
	Pattern  []Expression // one entry per column, nil = unconstrained
	Nested   Operation
}

func (IndexScan) isOperation() {}
func (s IndexScan) Dump(depth int) string {
	parts := make([]string, len(s.Pattern))
	for i, p := range s.Pattern {
		if p == nil {
			parts[i] = "_"
		} else {
			parts[i] = p.Dump(0)
		}
	}
	return fmt.Sprintf("%sINDEXSCAN %s(%s) AS t_%s\n%s",
		indent(depth), s.Relation, strings.Join(parts, ", "), s.Ident, s.Nested.Dump(depth+1))
}

// Filter runs Nested only when Condition holds.
type Filter struct {
	Condition Expression
	Nested    Operation
}

func (Filter) isOperation() {}
func (f Filter) Dump(depth int) string {
	return fmt.Sprintf("%sIF %s\n%s", indent(depth), f.Condition.Dump(0), f.Nested.Dump(depth+1))
}

// UnpackRecord destructures the record bound to Ref into Fields (fresh
// bound names, one per field), then runs Nested. Package lower does not
// produce UnpackRecord: a RecordInit body-atom argument lowers to an
// equality Filter against a PackRecord.
type UnpackRecord struct {
	Ref    Expression
	Ident  string
	Fields int
	Nested Operation
}

func (UnpackRecord) isOperation() {}
func (u UnpackRecord) Dump(depth int) string {
	return fmt.Sprintf("%sUNPACK %s AS t_%s (%d fields)\n%s",
		indent(depth), u.Ref.Dump(0), u.Ident, u.Fields, u.Nested.Dump(depth+1))
}

// Aggregate computes Op (count/sum/min/max/mean) of Target over the
// tuples Body selects, binds the result as Ident, then runs Nested.
type Aggregate struct {
	Op     string
	Target Expression // nil for count
	Body   Operation
	Ident  string
	Nested Operation
}

func (Aggregate) isOperation() {}
func (a Aggregate) Dump(depth int) string {
	target := "*"
	if a.Target != nil {
		target = a.Target.Dump(0)
	}
	return fmt.Sprintf("%sAGGREGATE %s %s AS t_%s\n%s%s",
		indent(depth), a.Op, target, a.Ident, a.Body.Dump(depth+1), a.Nested.Dump(depth+1))
}

// Project is the leaf of a Filter/Scan nest that is not an Insert:
// evaluates Args in the current binding environment without writing to a
// relation. Used inside Aggregate bodies and provenance subroutines.
type Project struct {
	Args []Expression
}

func (Project) isOperation() {}
func (p Project) Dump(depth int) string {
	return fmt.Sprintf("%sPROJECT (%s)\n", indent(depth), dumpExprList(p.Args))
}

// Insert is the terminal leaf operation: evaluates Args and inserts the
// resulting tuple into Relation.
type Insert struct {
	Relation string
	Args     []Expression
}

func (Insert) isOperation() {}
func (i Insert) Dump(depth int) string {
	return fmt.Sprintf("%sINSERT (%s) INTO %s\n", indent(depth), dumpExprList(i.Args), i.Relation)
}

// noop is the nested operation of a clause with no further nesting to
// do beyond its terminal Insert/Project — a convenience alias so a leaf
// operation never needs a special-cased nil-nested check.
type noop struct{}

func (noop) isOperation() {}
func (noop) Dump(int) string { return "" }
