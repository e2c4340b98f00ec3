package ram

import "fmt"

// Statement is the sum type of top-level RAM control-flow nodes: one
// Statement per stratum (non-recursive query or semi-naive loop), plus the
// store/load statements a directive lowers to.
type Statement interface {
	Node
	isStatement()
}

// Query runs a single Operation tree to completion: the lowering of one
// non-recursive clause.
type Query struct {
	Root Operation
}

func (Query) isStatement() {}
func (q Query) Dump(depth int) string {
	return fmt.Sprintf("%sQUERY\n%s", indent(depth), q.Root.Dump(depth+1))
}

// Sequence runs each statement in turn, used to group a stratum's several
// clauses or a block of directive statements.
type Sequence struct {
	Statements []Statement
}

func (Sequence) isStatement() {}
func (s Sequence) Dump(depth int) string {
	out := fmt.Sprintf("%sBEGIN\n", indent(depth))
	for _, st := range s.Statements {
		out += st.Dump(depth + 1)
	}
	return out + fmt.Sprintf("%sEND\n", indent(depth))
}

// Parallel runs each statement concurrently; this only ever appears as a
// marker in the tree, and downstream execution decides whether to honour
// it. Package lower does not emit Parallel.
type Parallel struct {
	Statements []Statement
}

func (Parallel) isStatement() {}
func (p Parallel) Dump(depth int) string {
	out := fmt.Sprintf("%sPARALLEL\n", indent(depth))
	for _, st := range p.Statements {
		out += st.Dump(depth + 1)
	}
	return out + fmt.Sprintf("%sEND PARALLEL\n", indent(depth))
}

// Loop repeats Body until a fixpoint is reached (the semi-naive evaluation
// loop for one recursive stratum): Body clears each "new" relation first,
// then runs the clauses, merges "new" into the stable relation, swaps
// "new" with the Δ-relation and ends with the Exit checks. The Loop itself
// is only a textual marker; iteration control is an execution-engine
// concern out of scope for this core.
type Loop struct {
	Body Statement
}

func (Loop) isStatement() {}
func (l Loop) Dump(depth int) string {
	return fmt.Sprintf("%sLOOP\n%s%sEND LOOP\n", indent(depth), l.Body.Dump(depth+1), indent(depth))
}

// Exit breaks out of the innermost enclosing Loop once Condition holds —
// the semi-naive loop's "no new tuples" termination check.
type Exit struct {
	Condition Expression
}

func (Exit) isStatement() {}
func (e Exit) Dump(depth int) string {
	return fmt.Sprintf("%sEXIT %s\n", indent(depth), e.Condition.Dump(0))
}

// Swap exchanges the contents of two relations — the Δ/new-relation swap
// at the end of one semi-naive iteration.
type Swap struct {
	A, B string
}

func (Swap) isStatement() {}
func (s Swap) Dump(depth int) string {
	return fmt.Sprintf("%sSWAP %s, %s\n", indent(depth), s.A, s.B)
}

// Clear empties a relation — used to reset a "new" Δ-relation at the top
// of each semi-naive iteration.
type Clear struct {
	Relation string
}

func (Clear) isStatement() {}
func (c Clear) Dump(depth int) string {
	return fmt.Sprintf("%sCLEAR %s\n", indent(depth), c.Relation)
}

// MergeInto copies every tuple of From into Into (used to fold a
// semi-naive "new" relation's contents into the stable accumulator).
type MergeInto struct {
	From, Into string
}

func (MergeInto) isStatement() {}
func (m MergeInto) Dump(depth int) string {
	return fmt.Sprintf("%sMERGE %s INTO %s\n", indent(depth), m.From, m.Into)
}

// Store is the lowering of an `.output`/`.printsize` directive: dump
// Relation's tuples per Params.
type Store struct {
	Relation string
	Params   map[string]string
}

func (Store) isStatement() {}
func (s Store) Dump(depth int) string {
	return fmt.Sprintf("%sSTORE %s %s\n", indent(depth), s.Relation, dumpParams(s.Params))
}

// Load is the lowering of an `.input` directive: populate Relation from
// the source Params describes.
type Load struct {
	Relation string
	Params   map[string]string
}

func (Load) isStatement() {}
func (l Load) Dump(depth int) string {
	return fmt.Sprintf("%sLOAD %s %s\n", indent(depth), l.Relation, dumpParams(l.Params))
}

// Call invokes a named subroutine. Package lower does not emit Call; the
// provenance strategy only registers its subroutines on the Program.
type Call struct {
	Subroutine string
}

func (Call) isStatement() {}
func (c Call) Dump(depth int) string {
	return fmt.Sprintf("%sCALL %s\n", indent(depth), c.Subroutine)
}

// Return terminates a subroutine, evaluating Args as its result tuple.
type Return struct {
	Args []Expression
}

func (Return) isStatement() {}
func (r Return) Dump(depth int) string {
	return fmt.Sprintf("%sRETURN (%s)\n", indent(depth), dumpExprList(r.Args))
}

func dumpParams(params map[string]string) string {
	out := "{"
	first := true
	for _, k := range sortedKeys(params) {
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s=%q", k, params[k])
	}
	return out + "}"
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// simple insertion sort: params maps are always small (directive
	// parameter counts), not worth importing sort for.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
