package fixture

import (
	"fmt"

	"github.com/datalogc/dlc/ast"
)

var qualifierNames = map[string]ast.Qualifier{
	"input":       ast.QualifierInput,
	"output":      ast.QualifierOutput,
	"printsize":   ast.QualifierPrintsize,
	"overridable": ast.QualifierOverridable,
	"inline":      ast.QualifierInline,
	"no_inline":   ast.QualifierNoInline,
	"magic":       ast.QualifierMagic,
	"no_magic":    ast.QualifierNoMagic,
	"suppressed":  ast.QualifierSuppressed,
}

var representationNames = map[string]ast.Representation{
	"default":    ast.RepresentationDefault,
	"btree":      ast.RepresentationBTree,
	"brie":       ast.RepresentationBrie,
	"eqrel":      ast.RepresentationEqrel,
	"info":       ast.RepresentationInfo,
	"provenance": ast.RepresentationProvenance,
}

func buildRelation(m map[string]any) (*ast.Relation, error) {
	r := ast.NewRelation(qname(m, "name"), buildAttrs(listOf(m, "attributes")), ast.Position{})
	for _, q := range strList(m, "qualifiers") {
		qual, ok := qualifierNames[q]
		if !ok {
			return nil, fmt.Errorf("fixture: relation %s: unknown qualifier %q", str(m, "name"), q)
		}
		r.SetQualifier(qual)
	}
	if repr := str(m, "representation"); repr != "" {
		rep, ok := representationNames[repr]
		if !ok {
			return nil, fmt.Errorf("fixture: relation %s: unknown representation %q", str(m, "name"), repr)
		}
		r.RelationRepresentation = rep
	}
	if aux, ok := m["auxiliary_arity"]; ok {
		r.AuxiliaryArity = intOf(aux)
	}
	for _, fd := range listOf(m, "functional_dependencies") {
		r.FunctionalDependencies = append(r.FunctionalDependencies, ast.FunctionalDependency{
			Keys:   strList(fd, "keys"),
			Values: strList(fd, "values"),
		})
	}
	return r, nil
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func buildFunctor(m map[string]any) *ast.FunctorDeclaration {
	params := buildAttrs(listOf(m, "params"))
	ret := ast.Attribute{Name: str(m, "return_name"), TypeName: qname(m, "return_type")}
	return &ast.FunctorDeclaration{
		Name:     qname(m, "name"),
		Params:   params,
		Return:   ret,
		Stateful: boolVal(m, "stateful"),
	}
}

var directiveTypeNames = map[string]ast.DirectiveType{
	"input":     ast.DirectiveInput,
	"output":    ast.DirectiveOutput,
	"printsize": ast.DirectivePrintsize,
	"limitsize": ast.DirectiveLimitsize,
}

func buildDirective(m map[string]any) *ast.Directive {
	d := &ast.Directive{
		Type:     directiveTypeNames[str(m, "type")],
		Relation: qname(m, "relation"),
	}
	for _, p := range listOf(m, "parameters") {
		d.Parameters = append(d.Parameters, ast.Param{Key: str(p, "key"), Value: str(p, "value")})
	}
	return d
}

func buildType(m map[string]any) (ast.Type, error) {
	name := qname(m, "name")
	switch kind := str(m, "kind"); kind {
	case "subset":
		return &ast.SubsetType{Name: name, Base: qname(m, "base")}, nil
	case "union":
		var elems []ast.QualifiedName
		for _, s := range strList(m, "elements") {
			elems = append(elems, ast.ParseQualifiedName(s))
		}
		return &ast.UnionType{Name: name, Elements: elems}, nil
	case "record":
		return &ast.RecordType{Name: name, Fields: buildAttrs(listOf(m, "fields"))}, nil
	case "adt":
		var branches []ast.Branch
		for _, b := range listOf(m, "branches") {
			branches = append(branches, ast.Branch{Name: str(b, "name"), Fields: buildAttrs(listOf(b, "fields"))})
		}
		return &ast.AlgebraicDataType{Name: name, Branches: branches}, nil
	default:
		return nil, fmt.Errorf("fixture: type %s: unknown kind %q", str(m, "name"), kind)
	}
}
