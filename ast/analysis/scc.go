package analysis

import (
	"sort"

	"github.com/datalogc/dlc/tu"
)

// SCCGraph holds the strongly-connected components of the PrecedenceGraph
// and a topological order over them. Each SCC is a "stratum" of
// mutually recursive relations.
type SCCGraph struct {
	sccOf   map[string]int   // relation -> scc index
	members [][]string       // scc index -> member relations
	order   []int            // topological order of scc indices, sources first
}

type sccGraphKey struct{}

// SCCGraphOf returns the (cached) SCC decomposition for tu.
func SCCGraphOf(t *tu.TranslationUnit) *SCCGraph {
	return tu.Get(t, sccGraphKey{}, func() *SCCGraph {
		return computeSCCGraph(PrecedenceGraphOf(t))
	})
}

// tarjan state.
type tarjanState struct {
	g         *PrecedenceGraph
	index     map[string]int
	lowlink   map[string]int
	onStack   map[string]bool
	stack     []string
	counter   int
	sccs      [][]string
}

func computeSCCGraph(g *PrecedenceGraph) *SCCGraph {
	st := &tarjanState{
		g:       g,
		index:   map[string]int{},
		lowlink: map[string]int{},
		onStack: map[string]bool{},
	}
	for _, n := range g.Nodes() {
		if _, ok := st.index[n]; !ok {
			st.strongConnect(n)
		}
	}

	out := &SCCGraph{sccOf: map[string]int{}, members: st.sccs}
	for i, members := range st.sccs {
		for _, m := range members {
			out.sccOf[m] = i
		}
	}
	out.order = topologicalOrder(g, out)
	return out
}

func (st *tarjanState) strongConnect(v string) {
	st.index[v] = st.counter
	st.lowlink[v] = st.counter
	st.counter++
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	for _, w := range st.g.Successors(v) {
		if _, ok := st.index[w]; !ok {
			st.strongConnect(w)
			st.lowlink[v] = min(st.lowlink[v], st.lowlink[w])
		} else if st.onStack[w] {
			st.lowlink[v] = min(st.lowlink[v], st.index[w])
		}
	}

	if st.lowlink[v] == st.index[v] {
		var component []string
		for {
			n := len(st.stack) - 1
			w := st.stack[n]
			st.stack = st.stack[:n]
			st.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		sort.Strings(component) // deterministic member order within a stratum
		st.sccs = append(st.sccs, component)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// topologicalOrder returns SCC indices ordered so that every edge of the
// precedence graph is internal to, or directed forward in, this order.
func topologicalOrder(g *PrecedenceGraph, out *SCCGraph) []int {
	n := len(out.members)
	indegree := make([]int, n)
	adj := make([]map[int]bool, n)
	for i := range adj {
		adj[i] = map[int]bool{}
	}
	for from, tos := range g.edges {
		fi := out.sccOf[from]
		for to := range tos {
			ti := out.sccOf[to]
			if fi != ti && !adj[fi][ti] {
				adj[fi][ti] = true
				indegree[ti]++
			}
		}
	}

	var queue []int
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)

	var order []int
	for len(queue) > 0 {
		sort.Ints(queue)
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		next := make([]int, 0, len(adj[v]))
		for w := range adj[v] {
			next = append(next, w)
		}
		sort.Ints(next)
		for _, w := range next {
			indegree[w]--
			if indegree[w] == 0 {
				queue = append(queue, w)
			}
		}
	}
	return order
}

// GetSCC returns the stratum index containing relation rel.
func (g *SCCGraph) GetSCC(rel string) int { return g.sccOf[rel] }

// GetInternalRelations returns every relation belonging to stratum scc.
func (g *SCCGraph) GetInternalRelations(scc int) []string {
	if scc < 0 || scc >= len(g.members) {
		return nil
	}
	return g.members[scc]
}

// GetNumberOfSCCs returns the stratum count.
func (g *SCCGraph) GetNumberOfSCCs() int { return len(g.members) }

// TopologicalOrder returns SCC indices in dependency order, sources first.
func (g *SCCGraph) TopologicalOrder() []int { return g.order }

// IsRecursive reports whether stratum scc contains more than one relation,
// or a single relation with a self-loop.
func (g *SCCGraph) IsRecursive(scc int, selfLoop func(rel string) bool) bool {
	members := g.GetInternalRelations(scc)
	if len(members) > 1 {
		return true
	}
	if len(members) == 1 && selfLoop != nil {
		return selfLoop(members[0])
	}
	return false
}
