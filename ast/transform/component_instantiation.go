package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/tu"
)

// maxInstantiationDepth bounds recursive component expansion.
const maxInstantiationDepth = 1000

// ComponentInstantiationTransformer expands every top-level ComponentInit
// by deep-cloning the named Component's body, substituting formal type
// parameters with actual QualifiedNames, prefixing every locally declared
// type/relation with the instance name, recursing into nested
// instantiations, dropping overridden base clauses, and relocating orphan
// clauses to the enclosing scope that declares their head relation.
type ComponentInstantiationTransformer struct{}

func (ComponentInstantiationTransformer) Name() string { return "ComponentInstantiation" }
func (ComponentInstantiationTransformer) Clone() Transformer { return ComponentInstantiationTransformer{} }

// instantiationResult is what expanding one component instance contributes
// to its enclosing scope.
type instantiationResult struct {
	types      []ast.Type
	relations  []*ast.Relation
	clauses    []*ast.Clause
	directives []*ast.Directive
	// orphans are clauses whose head relation was not declared locally;
	// the caller re-attempts matching them against its own local names,
	// bubbling them further out if still unmatched.
	orphans []*ast.Clause
}

func (ComponentInstantiationTransformer) Apply(t *tu.TranslationUnit) bool {
	if len(t.Program.Instantiations) == 0 && len(t.Program.Components) == 0 {
		return false
	}
	lookup := analysis.ComponentLookupOf(t)

	for _, init := range t.Program.Instantiations {
		res := instantiateOne(t, lookup, init, ast.NewTypeBinding(), []string{init.InstanceName}, nil, 1)
		t.Program.Types = append(t.Program.Types, res.types...)
		t.Program.Relations = append(t.Program.Relations, res.relations...)
		t.Program.Clauses = append(t.Program.Clauses, res.clauses...)
		t.Program.Directives = append(t.Program.Directives, res.directives...)
		// Top-level orphans have nowhere further to go: attach them as-is,
		// letting SemanticChecker flag any that still reference nothing.
		t.Program.Clauses = append(t.Program.Clauses, res.orphans...)
	}

	t.Program.Components = nil
	t.Program.Instantiations = nil
	return true
}

func instantiateOne(
	t *tu.TranslationUnit,
	lookup *analysis.ComponentLookup,
	init *ast.ComponentInit,
	binding *ast.TypeBinding,
	prefix []string,
	scope []*ast.Component,
	depth int,
) instantiationResult {
	if depth > maxInstantiationDepth {
		t.Report.Errorf(init.Pos(), "component instantiation depth limit (%d) exceeded for %s", maxInstantiationDepth, init.InstanceName)
		return instantiationResult{}
	}

	comp, resolvedBinding := lookup.Resolve(scope, binding, init.Type.Name)
	if comp == nil {
		t.Report.Errorf(init.Pos(), "reference to undeclared component %s", init.Type.Name.String())
		return instantiationResult{}
	}

	actuals := make([]ast.QualifiedName, len(init.Type.TypeArgs))
	for i, a := range init.Type.TypeArgs {
		actuals[i] = resolvedBinding.Resolve(a)
	}
	childBinding := resolvedBinding.Extend(comp.TypeParams, actuals)

	cloned := comp.Clone().(*ast.Component)

	// Type-parameter substitution: rewrite every formal-parameter reference
	// to its actual QualifiedName throughout the cloned body.
	renameQualifiedNames(cloned, childBinding.Resolve)

	localNames := map[string]bool{}
	for _, r := range cloned.Relations {
		localNames[r.Name.String()] = true
	}
	for _, ty := range cloned.Types {
		localNames[ty.TypeName().String()] = true
	}
	// An override target is, by definition, a relation this component does
	// not itself declare (it is inherited from a base); its own override
	// clause still needs the same instance prefix as the base's copy of
	// that relation, so the override name is treated as local too.
	for name := range cloned.Overrides {
		localNames[name] = true
	}

	// Instance-name prefixing of locally declared types/relations only;
	// references to names outside this component's own declarations are
	// left untouched so they still resolve in the enclosing scope.
	renameQualifiedNames(cloned, func(name ast.QualifiedName) ast.QualifiedName {
		if localNames[name.String()] {
			return prefixedName(prefix, name)
		}
		return name
	})

	baseTypes, baseRelations, baseClauses, baseDirectives := mergeBaseComponents(t, lookup, cloned.Base, prefix, scope, depth)
	cloned.Relations = append(baseRelations, cloned.Relations...)

	res := instantiationResult{
		types:      append(baseTypes, cloned.Types...),
		relations:  cloned.Relations,
		directives: append(baseDirectives, cloned.Directives...),
	}

	overridden := map[string]bool{}
	for name := range cloned.Overrides {
		overridden[prefixedName(prefix, ast.ParseQualifiedName(name)).String()] = true
	}

	newScope := append(append([]*ast.Component(nil), scope...), cloned)

	// Base clauses matching an override target are dropped; the
	// component's own clauses are never filtered by its own Overrides —
	// they are the replacement, not the thing being replaced.
	for _, cl := range baseClauses {
		if overridden[cl.Head.Name.String()] {
			continue
		}
		if containsRelationName(cloned.Relations, cl.Head.Name) {
			res.clauses = append(res.clauses, cl)
		} else {
			res.orphans = append(res.orphans, cl)
		}
	}
	for _, cl := range cloned.Clauses {
		if containsRelationName(cloned.Relations, cl.Head.Name) {
			res.clauses = append(res.clauses, cl)
		} else {
			res.orphans = append(res.orphans, cl)
		}
	}

	for _, nestedInit := range cloned.Instantiations {
		nestedPrefix := append(append([]string(nil), prefix...), nestedInit.InstanceName)
		nested := instantiateOne(t, lookup, nestedInit, childBinding, nestedPrefix, newScope, depth+1)
		res.types = append(res.types, nested.types...)
		res.relations = append(res.relations, nested.relations...)
		res.directives = append(res.directives, nested.directives...)
		res.clauses = append(res.clauses, nested.clauses...)
		// Re-test each nested orphan against this level's own local names
		// before bubbling it further out.
		for _, orphan := range nested.orphans {
			if containsRelationName(cloned.Relations, orphan.Head.Name) {
				res.clauses = append(res.clauses, orphan)
			} else {
				res.orphans = append(res.orphans, orphan)
			}
		}
	}

	return res
}

// mergeBaseComponents resolves every `.comp Derived : Base<...>` base
// reference, substitutes Base's formal type parameters with the actual
// type arguments already resolved against the derived instantiation's own
// binding, prefixes Base's locally declared names with the same instance
// prefix as the derived component (so the two share one namespace and
// Overrides can shadow a base clause by head-name match), and recurses
// into Base's own bases before returning its contribution. Errors
// resolving a base component are left to ComponentChecker; this function
// just skips what it cannot find.
func mergeBaseComponents(
	t *tu.TranslationUnit,
	lookup *analysis.ComponentLookup,
	bases []*ast.ComponentType,
	prefix []string,
	scope []*ast.Component,
	depth int,
) ([]ast.Type, []*ast.Relation, []*ast.Clause, []*ast.Directive) {
	if depth > maxInstantiationDepth {
		return nil, nil, nil, nil
	}

	var types []ast.Type
	var relations []*ast.Relation
	var clauses []*ast.Clause
	var directives []*ast.Directive

	for _, b := range bases {
		baseComp, _ := lookup.Resolve(scope, nil, b.Name)
		if baseComp == nil {
			continue
		}

		baseBinding := ast.NewTypeBinding().Extend(baseComp.TypeParams, b.TypeArgs)
		baseCloned := baseComp.Clone().(*ast.Component)
		renameQualifiedNames(baseCloned, baseBinding.Resolve)

		baseLocalNames := map[string]bool{}
		for _, r := range baseCloned.Relations {
			baseLocalNames[r.Name.String()] = true
		}
		for _, ty := range baseCloned.Types {
			baseLocalNames[ty.TypeName().String()] = true
		}
		renameQualifiedNames(baseCloned, func(name ast.QualifiedName) ast.QualifiedName {
			if baseLocalNames[name.String()] {
				return prefixedName(prefix, name)
			}
			return name
		})

		grandTypes, grandRelations, grandClauses, grandDirectives := mergeBaseComponents(t, lookup, baseCloned.Base, prefix, scope, depth+1)
		types = append(types, grandTypes...)
		relations = append(relations, grandRelations...)
		clauses = append(clauses, grandClauses...)
		directives = append(directives, grandDirectives...)

		types = append(types, baseCloned.Types...)
		relations = append(relations, baseCloned.Relations...)
		clauses = append(clauses, baseCloned.Clauses...)
		directives = append(directives, baseCloned.Directives...)
	}

	return types, relations, clauses, directives
}

func containsRelationName(rels []*ast.Relation, name ast.QualifiedName) bool {
	for _, r := range rels {
		if r.Name.Equal(name) {
			return true
		}
	}
	return false
}
