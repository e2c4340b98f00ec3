// Package analysis implements the side-effect-free passes that compute
// derived facts about a Program: the precedence/SCC graph, I/O
// classification, relation-detail index, type inference, polymorphic-
// operator resolution, component lookup, clause normalisation, and the
// binding store. No analysis mutates the Program; each analysis
// is deterministic and is cached by the owning TranslationUnit.
package analysis

import (
	"sort"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// PrecedenceGraph has a node per declared Relation and an edge
// rel(body) → rel(head) for every top-level body atom of a clause, whether
// the atom appears positively or negated. A negated reference still forces
// rel(body) to be fully computed before rel(head) can be; only the
// direction of the dependency matters here; a cycle crossing a negated
// edge is a separate stratification-legality concern checked elsewhere.
// Atoms inside aggregator bodies (or anywhere inside an argument) are not
// inspected and add no edges.
type PrecedenceGraph struct {
	nodes map[string]bool
	edges map[string]map[string]bool // body -> set of heads
	preds map[string]map[string]bool // head -> set of bodies
}

type precedenceGraphKey struct{}

// PrecedenceGraphOf returns the (cached) precedence graph for tu.
func PrecedenceGraphOf(t *tu.TranslationUnit) *PrecedenceGraph {
	return tu.Get(t, precedenceGraphKey{}, func() *PrecedenceGraph {
		return computePrecedenceGraph(t.Program)
	})
}

func computePrecedenceGraph(p *ast.Program) *PrecedenceGraph {
	g := &PrecedenceGraph{
		nodes: map[string]bool{},
		edges: map[string]map[string]bool{},
		preds: map[string]map[string]bool{},
	}
	for _, r := range p.Relations {
		g.nodes[r.Name.String()] = true
	}
	for _, c := range p.Clauses {
		head := c.Head.Name.String()
		for _, lit := range c.Body {
			switch v := lit.(type) {
			case *ast.Atom:
				g.addEdge(v.Name.String(), head)
			case *ast.Negation:
				g.addEdge(v.Atom.Name.String(), head)
			}
		}
	}
	return g
}

func (g *PrecedenceGraph) addEdge(from, to string) {
	if g.edges[from] == nil {
		g.edges[from] = map[string]bool{}
	}
	g.edges[from][to] = true
	if g.preds[to] == nil {
		g.preds[to] = map[string]bool{}
	}
	g.preds[to][from] = true
	g.nodes[from] = true
	g.nodes[to] = true
}

// Nodes returns every relation name in the graph, sorted for determinism.
func (g *PrecedenceGraph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Successors returns the relations that rel feeds directly: the heads of
// clauses whose bodies mention rel (rel -> head edges).
func (g *PrecedenceGraph) Successors(rel string) []string {
	return setToSortedSlice(g.edges[rel])
}

// Predecessors returns the relations that feed rel directly (body atoms of
// rel's own clauses).
func (g *PrecedenceGraph) Predecessors(rel string) []string {
	return setToSortedSlice(g.preds[rel])
}

func setToSortedSlice(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
