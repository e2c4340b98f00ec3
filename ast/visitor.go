package ast

// Visitor is dispatched on the dynamic variant tag of a Node. Visit is
// called for every node in depth-first pre-order; returning a non-nil
// Visitor causes Walk to recurse into the node's children with the
// returned Visitor (allowing per-subtree state), while returning nil stops
// descent into that node's children. Visitors are purely read-only;
// mutation goes through Mapper/Apply instead.
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk traverses the AST rooted at n in depth-first pre-order, calling
// v.Visit(n) before recursing into n's children. This is the traversal
// mode used by most analyses.
func Walk(v Visitor, n Node) {
	if v == nil || isNilInterface(n) {
		return
	}
	w := v.Visit(n)
	if w == nil {
		return
	}
	for _, child := range n.Children() {
		Walk(w, child)
	}
}

func isNilInterface(n Node) bool {
	return n == nil || isNilPointer(n)
}

// inspector adapts a plain func(Node) bool to the Visitor interface, the
// same trick used by go/ast.Inspect: returning false stops descent.
type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect traverses the AST rooted at n in depth-first pre-order, calling f
// for every node. Descent into a node's children stops when f returns
// false for that node.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}

// FindAll returns every node in the tree rooted at n for which match
// returns true, in pre-order. This is the "visit all nested of type T"
// traversal mode required alongside plain pre-order Walk; callers
// typically pass a type switch as match, e.g.:
//
//	var atoms []*Atom
//	ast.FindAll(clause, func(n ast.Node) bool {
//		a, ok := n.(*Atom)
//		if ok { atoms = append(atoms, a) }
//		return ok
//	})
func FindAll(n Node, match func(Node) bool) []Node {
	var found []Node
	Inspect(n, func(cur Node) bool {
		if match(cur) {
			found = append(found, cur)
		}
		return true
	})
	return found
}
