package ast

import "fmt"

// NameGenerator hands out fresh, deterministic variable names scoped to a
// single clause rewrite (e.g. ResolveAliases replacing a complex term with
// a fresh variable, or Normalise lifting a literal argument to `@abdulN`).
// Determinism matters here: the generated names are part of several
// transformers' observable behaviour once they reach the debug report.
type NameGenerator struct {
	prefix string
	next   int
}

// NewNameGenerator creates a generator producing "prefixN" for N = 0, 1, ...
func NewNameGenerator(prefix string) *NameGenerator {
	return &NameGenerator{prefix: prefix}
}

// Next returns the next fresh name.
func (g *NameGenerator) Next() string {
	name := fmt.Sprintf("%s%d", g.prefix, g.next)
	g.next++
	return name
}

// FreshVariable returns a new named Variable at pos using the generator.
func (g *NameGenerator) FreshVariable(pos Position) *Variable {
	return &Variable{Name: g.Next(), P: pos}
}
