package pipeline_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/pipeline"
	"github.com/datalogc/dlc/tu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transitiveClosureProgram() *ast.Program {
	p := ast.NewProgram()
	p.Relations = append(p.Relations,
		ast.NewRelation(ast.NewQualifiedName("edge"),
			[]ast.Attribute{{Name: "a", TypeName: ast.NewQualifiedName("symbol")}, {Name: "b", TypeName: ast.NewQualifiedName("symbol")}},
			ast.Position{}),
		ast.NewRelation(ast.NewQualifiedName("path"),
			[]ast.Attribute{{Name: "a", TypeName: ast.NewQualifiedName("symbol")}, {Name: "b", TypeName: ast.NewQualifiedName("symbol")}},
			ast.Position{}),
	)
	p.Relations[0].SetQualifier(ast.QualifierInput)
	p.Relations[1].SetQualifier(ast.QualifierOutput)

	p.Directives = append(p.Directives,
		&ast.Directive{Type: ast.DirectiveInput, Relation: ast.NewQualifiedName("edge")},
		&ast.Directive{Type: ast.DirectiveOutput, Relation: ast.NewQualifiedName("path")},
	)

	p.Clauses = append(p.Clauses,
		&ast.Clause{
			Head: &ast.Atom{Name: ast.NewQualifiedName("path"), Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
			Body: []ast.Literal{
				&ast.Atom{Name: ast.NewQualifiedName("edge"), Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
			},
		},
		&ast.Clause{
			Head: &ast.Atom{Name: ast.NewQualifiedName("path"), Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "z"}}},
			Body: []ast.Literal{
				&ast.Atom{Name: ast.NewQualifiedName("edge"), Args: []ast.Argument{&ast.Variable{Name: "x"}, &ast.Variable{Name: "y"}}},
				&ast.Atom{Name: ast.NewQualifiedName("path"), Args: []ast.Argument{&ast.Variable{Name: "y"}, &ast.Variable{Name: "z"}}},
			},
		},
	)
	return p
}

func TestRunLowersAValidProgramWithoutAborting(t *testing.T) {
	cfg := config.NewStore()
	u := tu.New(transitiveClosureProgram(), "test", cfg)

	root := pipeline.Root(cfg, nil)
	strategy := pipeline.StrategyFor(cfg)

	result := pipeline.Run(u, root, strategy)

	require.False(t, result.Aborted, "unexpected abort: %s", result.Summary())
	require.NotNil(t, result.RAM)
	assert.Contains(t, result.RAM.Dump(), "PROGRAM")
}

func TestStrategyForSelectsProvenanceWhenConfigured(t *testing.T) {
	cfg := config.NewStore()
	cfg.SetLocked(config.KeyProvenance, "explain")
	assert.Equal(t, "provenance", pipeline.StrategyFor(cfg).Name())

	assert.Equal(t, "seminaive", pipeline.StrategyFor(config.NewStore()).Name())
}

func TestRootPinsResolveAliasesAgainstDisableTransformers(t *testing.T) {
	cfg := config.NewStore()
	cfg.SetLocked(config.KeyDisableTransformers, "ResolveAliases,MagicSet")

	root := pipeline.Root(cfg, nil)
	seq, ok := root.(*transform.Sequence)
	require.True(t, ok, "expected a *Sequence, got %T", root)

	foundResolveAliases, foundNullMagicSet := false, false
	for _, stage := range seq.Transformers {
		inner := stage
		if fp, ok := stage.(*transform.Fixpoint); ok {
			inner = fp.Inner
		}
		if pipe, ok := inner.(*transform.Pipeline); ok {
			for _, p := range pipe.Transformers {
				if _, ok := p.(transform.ResolveAliasesTransformer); ok {
					foundResolveAliases = true
				}
			}
		}
		if n, ok := stage.(*transform.Null); ok && n.OriginalName == "MagicSet" {
			foundNullMagicSet = true
		}
	}
	assert.True(t, foundResolveAliases, "ResolveAliases must survive disable-transformers (pinned)")
	assert.True(t, foundNullMagicSet, "MagicSet should have been substituted with Null")
}
