package ast

// Attribute is a single `name: type` pair, used for relation columns,
// record fields, ADT branch fields, and functor parameters/return.
type Attribute struct {
	Name     string
	TypeName QualifiedName
}

func (a Attribute) Equal(o Attribute) bool {
	return a.Name == o.Name && a.TypeName.Equal(o.TypeName)
}

// Qualifier is a relation-level flag set via `.decl ... qualifier`.
type Qualifier string

const (
	QualifierInput       Qualifier = "input"
	QualifierOutput      Qualifier = "output"
	QualifierPrintsize   Qualifier = "printsize"
	QualifierOverridable Qualifier = "overridable"
	QualifierInline      Qualifier = "inline"
	QualifierNoInline    Qualifier = "no_inline"
	QualifierMagic       Qualifier = "magic"
	QualifierNoMagic     Qualifier = "no_magic"
	QualifierSuppressed  Qualifier = "suppressed"
)

// Representation picks the relation's backing data structure.
type Representation string

const (
	RepresentationDefault    Representation = "default"
	RepresentationBTree      Representation = "btree"
	RepresentationBrie       Representation = "brie"
	RepresentationEqrel      Representation = "eqrel"
	RepresentationInfo       Representation = "info"
	RepresentationProvenance Representation = "provenance"
)

// FunctionalDependency records a `.functional_dependency keys -> values`
// annotation, consulted by MinimiseProgram's singleton-relation merge
// precondition and by MagicSet's weakly-ignored-relation rule.
type FunctionalDependency struct {
	Keys   []string
	Values []string
}

func (f FunctionalDependency) Equal(o FunctionalDependency) bool {
	return equalStrSlice(f.Keys, o.Keys) && equalStrSlice(f.Values, o.Values)
}

func equalStrSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Relation is a `.decl` declaration: a QualifiedName, an ordered Attribute
// list, a set of Qualifiers, a Representation, an auxiliary-arity count
//, and
// functional-dependency annotations.
type Relation struct {
	Name                  QualifiedName
	Attributes            []Attribute
	Qualifiers            map[Qualifier]bool
	RelationRepresentation Representation
	AuxiliaryArity        int
	FunctionalDependencies []FunctionalDependency
	P                     Position
}

// NewRelation builds a Relation with default representation and an empty
// qualifier set.
func NewRelation(name QualifiedName, attrs []Attribute, p Position) *Relation {
	return &Relation{
		Name:                   name,
		Attributes:             attrs,
		Qualifiers:             map[Qualifier]bool{},
		RelationRepresentation: RepresentationDefault,
		P:                      p,
	}
}

func (r *Relation) Pos() Position    { return r.P }
func (r *Relation) Children() []Node { return nil }
func (r *Relation) Apply(m Mapper) Node { return r }

func (r *Relation) Clone() Node {
	out := &Relation{
		Name:                   r.Name,
		Attributes:             append([]Attribute(nil), r.Attributes...),
		Qualifiers:             make(map[Qualifier]bool, len(r.Qualifiers)),
		RelationRepresentation: r.RelationRepresentation,
		AuxiliaryArity:         r.AuxiliaryArity,
		FunctionalDependencies: append([]FunctionalDependency(nil), r.FunctionalDependencies...),
		P:                      r.P,
	}
	for k, v := range r.Qualifiers {
		out.Qualifiers[k] = v
	}
	return out
}

func (r *Relation) Equal(o Node) bool {
	or, ok := o.(*Relation)
	if !ok || !r.Name.Equal(or.Name) || len(r.Attributes) != len(or.Attributes) {
		return false
	}
	for i := range r.Attributes {
		if !r.Attributes[i].Equal(or.Attributes[i]) {
			return false
		}
	}
	if r.RelationRepresentation != or.RelationRepresentation || r.AuxiliaryArity != or.AuxiliaryArity {
		return false
	}
	if len(r.Qualifiers) != len(or.Qualifiers) {
		return false
	}
	for k, v := range r.Qualifiers {
		if or.Qualifiers[k] != v {
			return false
		}
	}
	if len(r.FunctionalDependencies) != len(or.FunctionalDependencies) {
		return false
	}
	for i := range r.FunctionalDependencies {
		if !r.FunctionalDependencies[i].Equal(or.FunctionalDependencies[i]) {
			return false
		}
	}
	return true
}

// HasQualifier reports whether q is set.
func (r *Relation) HasQualifier(q Qualifier) bool { return r.Qualifiers[q] }

// SetQualifier sets q on the relation.
func (r *Relation) SetQualifier(q Qualifier) {
	if r.Qualifiers == nil {
		r.Qualifiers = map[Qualifier]bool{}
	}
	r.Qualifiers[q] = true
}

// Arity returns the relation's declared (non-auxiliary) column count.
func (r *Relation) Arity() int { return len(r.Attributes) }

// CloneRelation is a typed convenience wrapper over Clone.
func (r *Relation) CloneRelation() *Relation { return r.Clone().(*Relation) }
