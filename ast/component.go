package ast

// ComponentType is a reference to a component name with actual type
// arguments, e.g. the `Set<Symbol>` in `.init s = Set<Symbol>`.
type ComponentType struct {
	Name     QualifiedName
	TypeArgs []QualifiedName
	P        Position
}

func (t *ComponentType) Pos() Position    { return t.P }
func (t *ComponentType) Children() []Node { return nil }
func (t *ComponentType) Apply(m Mapper) Node { return t }
func (t *ComponentType) Clone() Node {
	return &ComponentType{Name: t.Name, TypeArgs: append([]QualifiedName(nil), t.TypeArgs...), P: t.P}
}
func (t *ComponentType) Equal(o Node) bool {
	ot, ok := o.(*ComponentType)
	if !ok || !t.Name.Equal(ot.Name) || len(t.TypeArgs) != len(ot.TypeArgs) {
		return false
	}
	for i := range t.TypeArgs {
		if !t.TypeArgs[i].Equal(ot.TypeArgs[i]) {
			return false
		}
	}
	return true
}

// TypeBinding maps a component's formal type parameters to actual
// QualifiedNames for one instantiation. The zero-segment QualifiedName is
// the sentinel used when a formal parameter has no entry yet.
type TypeBinding struct {
	parent *TypeBinding
	bound  map[string]QualifiedName
}

// NewTypeBinding creates a root binding with no parent scope.
func NewTypeBinding() *TypeBinding {
	return &TypeBinding{bound: map[string]QualifiedName{}}
}

// Extend creates a child binding that resolves formals against actuals
// first, falling back to the parent scope — used when instantiating a
// component nested inside an already-instantiated one.
func (b *TypeBinding) Extend(formals []string, actuals []QualifiedName) *TypeBinding {
	child := &TypeBinding{parent: b, bound: map[string]QualifiedName{}}
	for i, f := range formals {
		if i < len(actuals) {
			child.bound[f] = actuals[i]
		}
	}
	return child
}

// Resolve looks up name, walking outward through parent scopes, and falls
// back to returning name unresolved (global scope) if no binding matches.
func (b *TypeBinding) Resolve(name QualifiedName) QualifiedName {
	for cur := b; cur != nil; cur = cur.parent {
		if len(name.segments) == 1 {
			if bound, ok := cur.bound[name.segments[0]]; ok {
				return bound
			}
		}
	}
	return name
}

// Component declares `.comp C<T1,...> : Base<...> = { ... }`.
type Component struct {
	Name            string
	TypeParams      []string
	Base            []*ComponentType
	Types           []Type
	Relations       []*Relation
	Clauses         []*Clause
	Directives      []*Directive
	Components      []*Component
	Instantiations  []*ComponentInit
	Overrides       map[string]bool
	P               Position
}

func (c *Component) Pos() Position { return c.P }

func (c *Component) Children() []Node {
	out := make([]Node, 0)
	for _, b := range c.Base {
		out = append(out, b)
	}
	for _, t := range c.Types {
		out = append(out, t)
	}
	for _, r := range c.Relations {
		out = append(out, r)
	}
	for _, cl := range c.Clauses {
		out = append(out, cl)
	}
	for _, d := range c.Directives {
		out = append(out, d)
	}
	for _, nc := range c.Components {
		out = append(out, nc)
	}
	for _, ci := range c.Instantiations {
		out = append(out, ci)
	}
	return out
}

func (c *Component) Apply(m Mapper) Node {
	for i, b := range c.Base {
		c.Base[i] = m(b).(*ComponentType)
	}
	for i, t := range c.Types {
		c.Types[i] = m(t).(Type)
	}
	for i, r := range c.Relations {
		c.Relations[i] = m(r).(*Relation)
	}
	for i, cl := range c.Clauses {
		c.Clauses[i] = m(cl).(*Clause)
	}
	for i, d := range c.Directives {
		c.Directives[i] = m(d).(*Directive)
	}
	for i, nc := range c.Components {
		c.Components[i] = m(nc).(*Component)
	}
	for i, ci := range c.Instantiations {
		c.Instantiations[i] = m(ci).(*ComponentInit)
	}
	return c
}

func (c *Component) Clone() Node {
	out := &Component{
		Name:       c.Name,
		TypeParams: append([]string(nil), c.TypeParams...),
		Overrides:  make(map[string]bool, len(c.Overrides)),
		P:          c.P,
	}
	for k, v := range c.Overrides {
		out.Overrides[k] = v
	}
	for _, b := range c.Base {
		out.Base = append(out.Base, b.Clone().(*ComponentType))
	}
	for _, t := range c.Types {
		out.Types = append(out.Types, t.Clone().(Type))
	}
	for _, r := range c.Relations {
		out.Relations = append(out.Relations, r.CloneRelation())
	}
	for _, cl := range c.Clauses {
		out.Clauses = append(out.Clauses, cl.CloneClause())
	}
	for _, d := range c.Directives {
		out.Directives = append(out.Directives, d.Clone().(*Directive))
	}
	for _, nc := range c.Components {
		out.Components = append(out.Components, nc.Clone().(*Component))
	}
	for _, ci := range c.Instantiations {
		out.Instantiations = append(out.Instantiations, ci.Clone().(*ComponentInit))
	}
	return out
}

// Equal uses a documented conservative rule: for each base ComponentType
// pair, a pointer-identical componentType subfield short-circuits to equal
// without descending into structural comparison. This diverges from
// Program.Equal, which is always fully structural.
func (c *Component) Equal(o Node) bool {
	oc, ok := o.(*Component)
	if !ok || c.Name != oc.Name || len(c.Base) != len(oc.Base) {
		return false
	}
	for i := range c.Base {
		if c.Base[i] == oc.Base[i] {
			continue // pointer-identical: short-circuit
		}
		if !c.Base[i].Equal(oc.Base[i]) {
			return false
		}
	}
	if len(c.TypeParams) != len(oc.TypeParams) {
		return false
	}
	for i := range c.TypeParams {
		if c.TypeParams[i] != oc.TypeParams[i] {
			return false
		}
	}
	if len(c.Types) != len(oc.Types) || len(c.Relations) != len(oc.Relations) ||
		len(c.Clauses) != len(oc.Clauses) || len(c.Directives) != len(oc.Directives) ||
		len(c.Components) != len(oc.Components) || len(c.Instantiations) != len(oc.Instantiations) {
		return false
	}
	for i := range c.Types {
		if !c.Types[i].Equal(oc.Types[i]) {
			return false
		}
	}
	for i := range c.Relations {
		if !c.Relations[i].Equal(oc.Relations[i]) {
			return false
		}
	}
	for i := range c.Clauses {
		if !c.Clauses[i].Equal(oc.Clauses[i]) {
			return false
		}
	}
	for i := range c.Directives {
		if !c.Directives[i].Equal(oc.Directives[i]) {
			return false
		}
	}
	for i := range c.Components {
		if !c.Components[i].Equal(oc.Components[i]) {
			return false
		}
	}
	for i := range c.Instantiations {
		if !c.Instantiations[i].Equal(oc.Instantiations[i]) {
			return false
		}
	}
	if len(c.Overrides) != len(oc.Overrides) {
		return false
	}
	for k, v := range c.Overrides {
		if oc.Overrides[k] != v {
			return false
		}
	}
	return true
}

// ComponentInit declares `.init X = C<...>`: an instance name plus a
// reference to the component and its actual type arguments.
type ComponentInit struct {
	InstanceName string
	Type         *ComponentType
	P            Position
}

func (i *ComponentInit) Pos() Position    { return i.P }
func (i *ComponentInit) Children() []Node { return []Node{i.Type} }
func (i *ComponentInit) Apply(m Mapper) Node {
	i.Type = m(i.Type).(*ComponentType)
	return i
}
func (i *ComponentInit) Clone() Node {
	return &ComponentInit{InstanceName: i.InstanceName, Type: i.Type.Clone().(*ComponentType), P: i.P}
}
func (i *ComponentInit) Equal(o Node) bool {
	oi, ok := o.(*ComponentInit)
	return ok && i.InstanceName == oi.InstanceName && i.Type.Equal(oi.Type)
}
