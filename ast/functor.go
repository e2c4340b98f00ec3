package ast

// FunctorDeclaration declares `.declfun name(p1: T1, ...): Tret`, optionally
// `stateful` if the functor may observe evaluation order / external state.
type FunctorDeclaration struct {
	Name      QualifiedName
	Params    []Attribute
	Return    Attribute
	Stateful  bool
	P         Position
}

func (f *FunctorDeclaration) Pos() Position    { return f.P }
func (f *FunctorDeclaration) Children() []Node { return nil }
func (f *FunctorDeclaration) Apply(m Mapper) Node { return f }
func (f *FunctorDeclaration) Clone() Node {
	return &FunctorDeclaration{
		Name:     f.Name,
		Params:   append([]Attribute(nil), f.Params...),
		Return:   f.Return,
		Stateful: f.Stateful,
		P:        f.P,
	}
}
func (f *FunctorDeclaration) Equal(o Node) bool {
	of, ok := o.(*FunctorDeclaration)
	if !ok || !f.Name.Equal(of.Name) || f.Stateful != of.Stateful || !f.Return.Equal(of.Return) {
		return false
	}
	if len(f.Params) != len(of.Params) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equal(of.Params[i]) {
			return false
		}
	}
	return true
}
