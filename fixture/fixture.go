// Package fixture implements the YAML-based AST interchange format: a
// structural dump of the ast package's node shapes, decoded with goccy/go-yaml,
// used by the CLI's `--program` flag and by tests that want a Program
// without hand-building one through the `ast` constructors. It is a
// convenience, not a second parser: no error recovery, no surface-syntax
// features, one YAML node shape per Node variant named by a `kind` key.
//
// Component declarations and instantiations are intentionally not part of
// this format — a fixture always describes an already-instantiated
// Program (Components/Instantiations empty), matching the post-
// ComponentInstantiationTransformer invariant that every other stage
// of this core assumes.
package fixture

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/datalogc/dlc/ast"
)

// doc mirrors the top-level YAML shape of a fixture file.
type doc struct {
	Types      []map[string]any `yaml:"types"`
	Relations  []map[string]any `yaml:"relations"`
	Functors   []map[string]any `yaml:"functors"`
	Clauses    []map[string]any `yaml:"clauses"`
	Directives []map[string]any `yaml:"directives"`
	Pragmas    []map[string]any `yaml:"pragmas"`
}

// Load decodes a YAML fixture document into a Program.
func Load(data []byte) (*ast.Program, error) {
	var d doc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("fixture: decode: %w", err)
	}

	p := ast.NewProgram()
	for _, raw := range d.Types {
		ty, err := buildType(raw)
		if err != nil {
			return nil, err
		}
		p.Types = append(p.Types, ty)
	}
	for _, raw := range d.Relations {
		rel, err := buildRelation(raw)
		if err != nil {
			return nil, err
		}
		p.Relations = append(p.Relations, rel)
	}
	for _, raw := range d.Functors {
		p.Functors = append(p.Functors, buildFunctor(raw))
	}
	for _, raw := range d.Clauses {
		c, err := buildClause(raw)
		if err != nil {
			return nil, err
		}
		p.Clauses = append(p.Clauses, c)
	}
	for _, raw := range d.Directives {
		p.Directives = append(p.Directives, buildDirective(raw))
	}
	for _, raw := range d.Pragmas {
		p.Pragmas = append(p.Pragmas, &ast.Pragma{Key: str(raw, "key"), Value: str(raw, "value")})
	}
	return p, nil
}

func str(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func boolVal(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func listOf(m map[string]any, key string) []map[string]any {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if mm, ok := it.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}

func strList(m map[string]any, key string) []string {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func qname(m map[string]any, key string) ast.QualifiedName {
	return ast.ParseQualifiedName(str(m, key))
}

func buildAttrs(raw []map[string]any) []ast.Attribute {
	out := make([]ast.Attribute, 0, len(raw))
	for _, a := range raw {
		out = append(out, ast.Attribute{Name: str(a, "name"), TypeName: qname(a, "type")})
	}
	return out
}
