package analysis

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// ComponentLookup resolves a component name from any enclosing-component
// scope, walking outward then falling back to global scope. It is
// queried directly by name (not cached per-scope, since the scope chain is
// supplied by the caller at query time); ComponentLookupOf only caches the
// flat name→*ast.Component index that backs every query.
type ComponentLookup struct {
	byName map[string]*ast.Component
}

type componentLookupKey struct{}

// ComponentLookupOf returns the (cached) component-lookup analysis for tu.
func ComponentLookupOf(t *tu.TranslationUnit) *ComponentLookup {
	return tu.Get(t, componentLookupKey{}, func() *ComponentLookup {
		return computeComponentLookup(t.Program)
	})
}

func computeComponentLookup(p *ast.Program) *ComponentLookup {
	cl := &ComponentLookup{byName: map[string]*ast.Component{}}
	var index func(comps []*ast.Component)
	index = func(comps []*ast.Component) {
		for _, c := range comps {
			cl.byName[c.Name] = c
			index(c.Components)
		}
	}
	index(p.Components)
	return cl
}

// Resolve looks up name under binding, then under every component in
// scope (outer to global), matching the component-lookup contract: walk
// outward from the innermost scope, then fall back to global scope.
func (cl *ComponentLookup) Resolve(scope []*ast.Component, binding *ast.TypeBinding, name ast.QualifiedName) (*ast.Component, *ast.TypeBinding) {
	resolved := name
	if binding != nil {
		resolved = binding.Resolve(name)
	}
	key := resolved.String()

	for i := len(scope) - 1; i >= 0; i-- {
		for _, nested := range scope[i].Components {
			if nested.Name == key {
				return nested, binding
			}
		}
	}
	if c, ok := cl.byName[key]; ok {
		return c, binding
	}
	return nil, binding
}
