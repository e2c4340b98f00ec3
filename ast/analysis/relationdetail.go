package analysis

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// RelationDetailCache maps a QualifiedName to its Relation declaration and
// to the clauses whose head names it.
type RelationDetailCache struct {
	byName   map[string]*ast.Relation
	clauses  map[string][]*ast.Clause
}

type relationDetailCacheKey struct{}

// RelationDetailCacheOf returns the (cached) relation-detail index for tu.
func RelationDetailCacheOf(t *tu.TranslationUnit) *RelationDetailCache {
	return tu.Get(t, relationDetailCacheKey{}, func() *RelationDetailCache {
		return computeRelationDetailCache(t.Program)
	})
}

func computeRelationDetailCache(p *ast.Program) *RelationDetailCache {
	c := &RelationDetailCache{
		byName:  map[string]*ast.Relation{},
		clauses: map[string][]*ast.Clause{},
	}
	for _, r := range p.Relations {
		c.byName[r.Name.String()] = r
	}
	for _, cl := range p.Clauses {
		name := cl.Head.Name.String()
		c.clauses[name] = append(c.clauses[name], cl)
	}
	return c
}

// Relation returns the declared Relation named name, or nil.
func (c *RelationDetailCache) Relation(name string) *ast.Relation { return c.byName[name] }

// Clauses returns every clause whose head names name.
func (c *RelationDetailCache) Clauses(name string) []*ast.Clause { return c.clauses[name] }
