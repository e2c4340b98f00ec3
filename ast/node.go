// Package ast implements the Datalog abstract syntax tree: a recursive sum
// of syntactic categories with position info, uniform child enumeration,
// structural equality, deep cloning, and in-place child substitution.
//
// A Node exclusively owns its children (no parent pointers, no sharing);
// copy-construction is forbidden — duplication goes through Clone.
// Equality is structural and type-tag aware. Children are enumerable in a
// stable, documented order for every concrete variant.
package ast

// Node is the base interface implemented by every AST entity: Arguments,
// Literals, Clauses, Relations, Directives, Type declarations, Components,
// ComponentInits, FunctorDeclarations, and Program itself.
type Node interface {
	// Pos returns the node's source position, for diagnostics only.
	Pos() Position
	// Children returns the node's owned children in stable, documented
	// order. The returned slice must not be mutated by the caller.
	Children() []Node
	// Apply replaces each owned child slot with mapper(child), preserving
	// slot order and multiplicity, and returns the receiver. It visits
	// exactly one level: it never re-enters a replaced child automatically
	// — the mapper itself decides whether to recurse.
	Apply(m Mapper) Node
	// Clone returns a semantically identical, fully independent subtree.
	// Positions are carried forward.
	Clone() Node
	// Equal reports structural equality: type-tag plus each field in
	// order. Positions are never compared.
	Equal(Node) bool
}

// Mapper is any function from Node to Node, threaded through Apply. It is
// free to return its argument unchanged, build a replacement, or recurse
// into the argument's own children before returning.
type Mapper func(Node) Node

// Identity is the Mapper that returns its argument unchanged. Used to test
// the mapper-idempotence invariant: Apply(Identity) must leave every node
// and child slot unchanged.
func Identity(n Node) Node { return n }

// applyList maps a homogeneous slice of typed nodes through m, type
// asserting the result back to T. It is the workhorse every concrete
// Apply implementation uses for its list-valued child slots.
func applyList[T Node](list []T, m Mapper) []T {
	if list == nil {
		return nil
	}
	out := make([]T, len(list))
	for i, n := range list {
		out[i] = m(n).(T)
	}
	return out
}

// applyOne maps a single optional (possibly nil) typed child through m.
func applyOne[T Node](n T, m Mapper) T {
	var zero T
	if isNilNode(n) {
		return zero
	}
	return m(n).(T)
}

// isNilNode reports whether a generic Node-typed value holds a nil pointer,
// guarding against the classic Go "non-nil interface holding nil pointer"
// trap when a node's optional child slot is unset.
func isNilNode[T Node](n T) bool {
	var asNode Node = n
	return asNode == nil || isNilPointer(asNode)
}
