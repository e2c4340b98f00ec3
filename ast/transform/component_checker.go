package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// ComponentChecker validates component references, type-parameter arity,
// absence of inheritance cycles, override legality, and disjointness of
// component names from type/relation names. It never mutates the
// Program; it only records diagnostics.
type ComponentChecker struct{}

func (ComponentChecker) Name() string      { return "ComponentChecker" }
func (ComponentChecker) Clone() Transformer { return ComponentChecker{} }

func (cc ComponentChecker) Apply(t *tu.TranslationUnit) bool {
	byName := map[string]*ast.Component{}
	var index func([]*ast.Component)
	index = func(comps []*ast.Component) {
		for _, c := range comps {
			byName[c.Name] = c
			index(c.Components)
		}
	}
	index(t.Program.Components)

	globalRelations := map[string]bool{}
	for _, r := range t.Program.Relations {
		globalRelations[r.Name.String()] = true
	}
	globalTypes := map[string]bool{}
	for _, ty := range t.Program.Types {
		globalTypes[ty.TypeName().String()] = true
	}

	for name := range byName {
		if globalRelations[name] || globalTypes[name] {
			t.Report.Errorf(byName[name].Pos(), "component name %s collides with a relation or type name", name)
		}
	}

	for _, c := range t.Program.Components {
		cc.checkComponent(t, byName, c)
	}
	return false
}

func (cc ComponentChecker) checkComponent(t *tu.TranslationUnit, byName map[string]*ast.Component, c *ast.Component) {
	cc.checkAcyclic(t, byName, c, map[string]bool{})

	ancestorOverridable := map[string]bool{}
	collectAncestorOverridables(byName, c, ancestorOverridable, map[string]bool{})
	for rel := range c.Overrides {
		if !ancestorOverridable[rel] {
			t.Report.Errorf(c.Pos(), "component %s overrides %s which is not declared overridable by any base", c.Name, rel)
		}
	}

	for _, base := range c.Base {
		baseComp, ok := byName[base.Name.String()]
		if !ok {
			t.Report.Errorf(base.Pos(), "component %s references undeclared base %s", c.Name, base.Name.String())
			continue
		}
		if len(base.TypeArgs) != len(baseComp.TypeParams) {
			t.Report.Errorf(base.Pos(), "component %s instantiates base %s with %d type arguments, expected %d",
				c.Name, base.Name.String(), len(base.TypeArgs), len(baseComp.TypeParams))
		}
	}

	for _, init := range c.Instantiations {
		if _, ok := byName[init.Type.Name.String()]; !ok {
			t.Report.Errorf(init.Pos(), "instantiation %s references undeclared component %s", init.InstanceName, init.Type.Name.String())
		}
	}

	for _, nested := range c.Components {
		cc.checkComponent(t, byName, nested)
	}
}

func (cc ComponentChecker) checkAcyclic(t *tu.TranslationUnit, byName map[string]*ast.Component, c *ast.Component, visiting map[string]bool) {
	if visiting[c.Name] {
		t.Report.Errorf(c.Pos(), "component inheritance cycle involving %s", c.Name)
		return
	}
	visiting[c.Name] = true
	defer delete(visiting, c.Name)
	for _, base := range c.Base {
		if baseComp, ok := byName[base.Name.String()]; ok {
			cc.checkAcyclic(t, byName, baseComp, visiting)
		}
	}
}

func collectAncestorOverridables(byName map[string]*ast.Component, c *ast.Component, out map[string]bool, seen map[string]bool) {
	for _, base := range c.Base {
		baseComp, ok := byName[base.Name.String()]
		if !ok || seen[baseComp.Name] {
			continue
		}
		seen[baseComp.Name] = true
		for _, r := range baseComp.Relations {
			if r.HasQualifier(ast.QualifierOverridable) {
				out[r.Name.String()] = true
			}
		}
		collectAncestorOverridables(byName, baseComp, out, seen)
	}
}
