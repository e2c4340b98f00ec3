package ast

// Literal is the sum type of everything that can appear as a clause body
// conjunct: positive atoms, negated atoms, and constraints.
type Literal interface {
	Node
	isLiteral()
}

// Atom is a positive predicate application, used both as a clause's head
// and, undecorated, as a positive body literal.
type Atom struct {
	Name QualifiedName
	Args []Argument
	P    Position
}

func (a *Atom) isLiteral()   {}
func (a *Atom) Pos() Position { return a.P }
func (a *Atom) Children() []Node {
	out := make([]Node, len(a.Args))
	for i, arg := range a.Args {
		out[i] = arg
	}
	return out
}
func (a *Atom) Apply(m Mapper) Node {
	a.Args = applyList(a.Args, m)
	return a
}
func (a *Atom) Clone() Node {
	return &Atom{Name: a.Name, Args: cloneArgs(a.Args), P: a.P}
}
func (a *Atom) Equal(o Node) bool {
	oa, ok := o.(*Atom)
	return ok && oa.Name.Equal(a.Name) && equalArgSlices(a.Args, oa.Args)
}
func (a *Atom) CloneAtom() *Atom { return a.Clone().(*Atom) }

// Negation wraps an Atom with `!`, e.g. `!p(x,y)`.
type Negation struct {
	Atom *Atom
	P    Position
}

func (n *Negation) isLiteral()    {}
func (n *Negation) Pos() Position { return n.P }
func (n *Negation) Children() []Node { return []Node{n.Atom} }
func (n *Negation) Apply(m Mapper) Node {
	n.Atom = m(n.Atom).(*Atom)
	return n
}
func (n *Negation) Clone() Node {
	return &Negation{Atom: n.Atom.CloneAtom(), P: n.P}
}
func (n *Negation) Equal(o Node) bool {
	on, ok := o.(*Negation)
	return ok && n.Atom.Equal(on.Atom)
}

// Constraint is the sub-variant of Literal representing binary comparisons
// and the boolean constants `true`/`false`.
type Constraint interface {
	Literal
	isConstraint()
}

// BinaryConstraint is `Left Op Right`, e.g. `x = y`, `x < y+1`.
type BinaryConstraint struct {
	Op    string
	Left  Argument
	Right Argument
	P     Position
}

func (c *BinaryConstraint) isLiteral()    {}
func (c *BinaryConstraint) isConstraint() {}
func (c *BinaryConstraint) Pos() Position { return c.P }
func (c *BinaryConstraint) Children() []Node { return []Node{c.Left, c.Right} }
func (c *BinaryConstraint) Apply(m Mapper) Node {
	c.Left = m(c.Left).(Argument)
	c.Right = m(c.Right).(Argument)
	return c
}
func (c *BinaryConstraint) Clone() Node {
	return &BinaryConstraint{Op: c.Op, Left: c.Left.Clone().(Argument), Right: c.Right.Clone().(Argument), P: c.P}
}
func (c *BinaryConstraint) Equal(o Node) bool {
	oc, ok := o.(*BinaryConstraint)
	return ok && oc.Op == c.Op && c.Left.Equal(oc.Left) && c.Right.Equal(oc.Right)
}

// IsEquality reports whether this is an `=` constraint.
func (c *BinaryConstraint) IsEquality() bool { return c.Op == "=" }

// BooleanConstraint is the literal constant `true` or `false` appearing in
// a clause body or aggregator body.
type BooleanConstraint struct {
	Value bool
	P     Position
}

func (c *BooleanConstraint) isLiteral()    {}
func (c *BooleanConstraint) isConstraint() {}
func (c *BooleanConstraint) Pos() Position { return c.P }
func (c *BooleanConstraint) Children() []Node { return nil }
func (c *BooleanConstraint) Apply(m Mapper) Node { return c }
func (c *BooleanConstraint) Clone() Node { d := *c; return &d }
func (c *BooleanConstraint) Equal(o Node) bool {
	oc, ok := o.(*BooleanConstraint)
	return ok && oc.Value == c.Value
}

func cloneLiterals(lits []Literal) []Literal {
	if lits == nil {
		return nil
	}
	out := make([]Literal, len(lits))
	for i, l := range lits {
		out[i] = l.Clone().(Literal)
	}
	return out
}
