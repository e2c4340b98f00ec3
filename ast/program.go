package ast

// Pragma is a `.pragma K V` directive, consumed by PragmaChecker.
type Pragma struct {
	Key   string
	Value string
	P     Position
}

func (p *Pragma) Pos() Position    { return p.P }
func (p *Pragma) Children() []Node { return nil }
func (p *Pragma) Apply(m Mapper) Node { return p }
func (p *Pragma) Clone() Node       { c := *p; return &c }
func (p *Pragma) Equal(o Node) bool {
	op, ok := o.(*Pragma)
	return ok && p.Key == op.Key && p.Value == op.Value
}

// Program is the root node: it owns flat lists of every top-level
// declaration kind. The invariant after ComponentInstantiation is that
// Components and Instantiations are both empty.
type Program struct {
	Types          []Type
	Relations      []*Relation
	Functors       []*FunctorDeclaration
	Clauses        []*Clause
	Directives     []*Directive
	Components     []*Component
	Instantiations []*ComponentInit
	Pragmas        []*Pragma
	P              Position
}

// NewProgram returns an empty Program.
func NewProgram() *Program { return &Program{} }

func (p *Program) Pos() Position { return p.P }

func (p *Program) Children() []Node {
	out := make([]Node, 0)
	for _, t := range p.Types {
		out = append(out, t)
	}
	for _, r := range p.Relations {
		out = append(out, r)
	}
	for _, f := range p.Functors {
		out = append(out, f)
	}
	for _, c := range p.Clauses {
		out = append(out, c)
	}
	for _, d := range p.Directives {
		out = append(out, d)
	}
	for _, c := range p.Components {
		out = append(out, c)
	}
	for _, i := range p.Instantiations {
		out = append(out, i)
	}
	for _, pr := range p.Pragmas {
		out = append(out, pr)
	}
	return out
}

func (p *Program) Apply(m Mapper) Node {
	for i, t := range p.Types {
		p.Types[i] = m(t).(Type)
	}
	for i, r := range p.Relations {
		p.Relations[i] = m(r).(*Relation)
	}
	for i, f := range p.Functors {
		p.Functors[i] = m(f).(*FunctorDeclaration)
	}
	for i, c := range p.Clauses {
		p.Clauses[i] = m(c).(*Clause)
	}
	for i, d := range p.Directives {
		p.Directives[i] = m(d).(*Directive)
	}
	for i, c := range p.Components {
		p.Components[i] = m(c).(*Component)
	}
	for i, in := range p.Instantiations {
		p.Instantiations[i] = m(in).(*ComponentInit)
	}
	for i, pr := range p.Pragmas {
		p.Pragmas[i] = m(pr).(*Pragma)
	}
	return p
}

func (p *Program) Clone() Node {
	out := NewProgram()
	out.P = p.P
	for _, t := range p.Types {
		out.Types = append(out.Types, t.Clone().(Type))
	}
	for _, r := range p.Relations {
		out.Relations = append(out.Relations, r.CloneRelation())
	}
	for _, f := range p.Functors {
		out.Functors = append(out.Functors, f.Clone().(*FunctorDeclaration))
	}
	for _, c := range p.Clauses {
		out.Clauses = append(out.Clauses, c.CloneClause())
	}
	for _, d := range p.Directives {
		out.Directives = append(out.Directives, d.Clone().(*Directive))
	}
	for _, c := range p.Components {
		out.Components = append(out.Components, c.Clone().(*Component))
	}
	for _, in := range p.Instantiations {
		out.Instantiations = append(out.Instantiations, in.Clone().(*ComponentInit))
	}
	for _, pr := range p.Pragmas {
		out.Pragmas = append(out.Pragmas, pr.Clone().(*Pragma))
	}
	return out
}

func (p *Program) Equal(o Node) bool {
	op, ok := o.(*Program)
	if !ok {
		return false
	}
	if len(p.Types) != len(op.Types) || len(p.Relations) != len(op.Relations) ||
		len(p.Functors) != len(op.Functors) || len(p.Clauses) != len(op.Clauses) ||
		len(p.Directives) != len(op.Directives) || len(p.Components) != len(op.Components) ||
		len(p.Instantiations) != len(op.Instantiations) || len(p.Pragmas) != len(op.Pragmas) {
		return false
	}
	for i := range p.Types {
		if !p.Types[i].Equal(op.Types[i]) {
			return false
		}
	}
	for i := range p.Relations {
		if !p.Relations[i].Equal(op.Relations[i]) {
			return false
		}
	}
	for i := range p.Functors {
		if !p.Functors[i].Equal(op.Functors[i]) {
			return false
		}
	}
	for i := range p.Clauses {
		if !p.Clauses[i].Equal(op.Clauses[i]) {
			return false
		}
	}
	for i := range p.Directives {
		if !p.Directives[i].Equal(op.Directives[i]) {
			return false
		}
	}
	for i := range p.Components {
		if !p.Components[i].Equal(op.Components[i]) {
			return false
		}
	}
	for i := range p.Instantiations {
		if !p.Instantiations[i].Equal(op.Instantiations[i]) {
			return false
		}
	}
	for i := range p.Pragmas {
		if !p.Pragmas[i].Equal(op.Pragmas[i]) {
			return false
		}
	}
	return true
}

// RelationByName returns the declared Relation with the given name, or nil.
func (p *Program) RelationByName(name QualifiedName) *Relation {
	for _, r := range p.Relations {
		if r.Name.Equal(name) {
			return r
		}
	}
	return nil
}

// ClausesForRelation returns every clause whose head names rel, in
// declaration order.
func (p *Program) ClausesForRelation(rel QualifiedName) []*Clause {
	var out []*Clause
	for _, c := range p.Clauses {
		if c.Head.Name.Equal(rel) {
			out = append(out, c)
		}
	}
	return out
}

// RemoveRelation deletes the relation named rel and every clause whose head
// names it.
func (p *Program) RemoveRelation(rel QualifiedName) {
	rels := p.Relations[:0]
	for _, r := range p.Relations {
		if !r.Name.Equal(rel) {
			rels = append(rels, r)
		}
	}
	p.Relations = rels

	clauses := p.Clauses[:0]
	for _, c := range p.Clauses {
		if !c.Head.Name.Equal(rel) {
			clauses = append(clauses, c)
		}
	}
	p.Clauses = clauses
}
