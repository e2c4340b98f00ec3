package transform_test

import (
	"strings"
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagicSetTransformerNoopWithoutAnyTrigger(t *testing.T) {
	p := ast.NewProgram()
	p.Relations = append(p.Relations, xyRelation("anc"))
	p.Clauses = append(p.Clauses, atomClause("anc", []ast.Argument{v("x"), v("y")}, atom("par", v("x"), v("y"))))
	unit := newUnitFor(p)
	assert.False(t, transform.MagicSetTransformer{}.Apply(unit), "no magic-transform flag and no MAGIC-qualified relation means no-op")
}

// TestMagicSetTransformerAdornsRecursiveSelfJoin exercises the Normalise ->
// Label -> Adorn -> MagicCore sub-pipeline on a self-recursive
// ancestor-style program, where the recursive call's first argument is bound
// by the preceding join. This is the textbook magic-set closure case: a
// magic seeding relation must appear to push the bound argument into the
// recursion instead of computing the relation unrestricted.
func TestMagicSetTransformerAdornsRecursiveSelfJoin(t *testing.T) {
	par := xyRelation("par")
	anc := xyRelation("anc")
	anc.Qualifiers[ast.QualifierMagic] = true
	p := ast.NewProgram()
	p.Relations = append(p.Relations, par, anc)
	p.Directives = append(p.Directives, &ast.Directive{Type: ast.DirectiveOutput, Relation: ast.NewQualifiedName("anc")})
	p.Clauses = append(p.Clauses,
		atomClause("anc", []ast.Argument{v("x"), v("y")}, atom("par", v("x"), v("y"))),
		atomClause("anc", []ast.Argument{v("x"), v("y")}, atom("par", v("x"), v("z")), atom("anc", v("z"), v("y"))),
	)

	unit := newUnitFor(p)
	require.True(t, transform.MagicSetTransformer{}.Apply(unit))

	var sawMagicRelation bool
	for _, r := range unit.Program.Relations {
		if strings.HasPrefix(r.Name.String(), "@magic.") {
			sawMagicRelation = true
		}
	}
	assert.True(t, sawMagicRelation, "the recursive bound self-join must introduce a magic seeding relation")
}

func numAttr(name string) ast.Attribute {
	return ast.Attribute{Name: name, TypeName: ast.NewQualifiedName("number")}
}

// TestMagicSetComprehensiveScenario drives the full four-stage pipeline
// over an eight-relation, multi-stratum program: two negated calls (C, R)
// inside D's body, with D and Query downstream of them only positively.
// Negative labelling must clone every non-ignored stratum (not just C and
// R's own), and positive labelling must re-point every such clone's
// surviving positive reference at a fresh copy of its dependency stratum,
// so that once dead copies are pruned the program lands on exactly the
// expected shape: 19 relations, 26 clauses.
func TestMagicSetComprehensiveScenario(t *testing.T) {
	baseOne := ast.NewRelation(ast.NewQualifiedName("BaseOne"), []ast.Attribute{numAttr("X")}, ast.Position{})
	baseTwo := ast.NewRelation(ast.NewQualifiedName("BaseTwo"), []ast.Attribute{numAttr("X")}, ast.Position{})
	relA := ast.NewRelation(ast.NewQualifiedName("A"), []ast.Attribute{numAttr("X")}, ast.Position{})
	relB := ast.NewRelation(ast.NewQualifiedName("B"), []ast.Attribute{numAttr("X")}, ast.Position{})
	relC := ast.NewRelation(ast.NewQualifiedName("C"), []ast.Attribute{numAttr("X")}, ast.Position{})
	relR := ast.NewRelation(ast.NewQualifiedName("R"), []ast.Attribute{numAttr("X")}, ast.Position{})
	relD := ast.NewRelation(ast.NewQualifiedName("D"), []ast.Attribute{numAttr("X")}, ast.Position{})
	query := ast.NewRelation(ast.NewQualifiedName("Query"), []ast.Attribute{numAttr("X")}, ast.Position{})
	for _, r := range []*ast.Relation{relA, relB, relC, relR, relD, query} {
		r.Qualifiers[ast.QualifierMagic] = true
	}

	p := ast.NewProgram()
	p.Relations = append(p.Relations, baseOne, baseTwo, relA, relB, relC, relR, relD, query)
	p.Directives = append(p.Directives,
		&ast.Directive{Type: ast.DirectiveInput, Relation: ast.NewQualifiedName("BaseOne")},
		&ast.Directive{Type: ast.DirectiveInput, Relation: ast.NewQualifiedName("BaseTwo")},
		&ast.Directive{Type: ast.DirectiveOutput, Relation: ast.NewQualifiedName("Query")},
	)
	p.Clauses = append(p.Clauses,
		atomClause("A", []ast.Argument{v("X")}, atom("BaseOne", v("X"))),
		atomClause("A", []ast.Argument{v("X")}, atom("BaseOne", v("X")), atom("B", v("X"))),
		atomClause("B", []ast.Argument{v("X")}, atom("BaseTwo", v("X")), atom("A", v("X"))),
		&ast.Clause{
			Head: &ast.Atom{Name: ast.NewQualifiedName("C"), Args: []ast.Argument{v("X")}},
			Body: []ast.Literal{
				atom("BaseTwo", v("X")), atom("A", v("X")), atom("B", v("X")),
				&ast.BinaryConstraint{Op: "!=", Left: v("X"), Right: &ast.NumericConstant{Value: "1"}},
			},
		},
		&ast.Clause{
			Head: &ast.Atom{Name: ast.NewQualifiedName("R"), Args: []ast.Argument{v("X")}},
			Body: []ast.Literal{
				atom("BaseTwo", v("X")), atom("A", v("X")), atom("B", v("X")),
				&ast.BinaryConstraint{Op: "!=", Left: v("X"), Right: &ast.NumericConstant{Value: "0"}},
			},
		},
		&ast.Clause{
			Head: &ast.Atom{Name: ast.NewQualifiedName("D"), Args: []ast.Argument{v("X")}},
			Body: []ast.Literal{
				atom("BaseOne", v("X")), atom("A", v("X")),
				&ast.Negation{Atom: atom("C", v("X"))},
				&ast.Negation{Atom: atom("R", v("X"))},
			},
		},
		atomClause("Query", []ast.Argument{v("X")}, atom("BaseOne", v("X")), atom("D", v("X")), atom("A", v("X"))),
	)

	unit := newUnitFor(p)
	require.True(t, transform.MagicSetTransformer{}.Apply(unit))
	unit.Invalidate()

	cleanup := transform.NewPipeline(
		transform.ResolveAliasesTransformer{},
		transform.NewFixpoint(transform.RemoveRelationCopies{}),
		transform.NewFixpoint(transform.NewPipeline(
			transform.RemoveEmptyRelations{},
			transform.RemoveRedundantRelations{},
		)),
	)
	cleanup.Apply(unit)

	require.Len(t, unit.Program.Relations, 19, "expected the 19-relation shape of the magic-set comprehensive scenario, got %s", ast.Sprint(unit.Program))
	require.Len(t, unit.Program.Clauses, 26, "expected the 26-clause shape of the magic-set comprehensive scenario, got %s", ast.Sprint(unit.Program))

	names := map[string]bool{}
	for _, r := range unit.Program.Relations {
		names[r.Name.String()] = true
	}
	for _, want := range []string{"BaseOne", "BaseTwo", "Query", "@neglabel.C", "@neglabel.R", "A.{b}", "B.{b}", "D.{b}"} {
		assert.True(t, names[want], "expected relation %s to survive, got %v", want, names)
	}

	poscopyGenerations := map[string]bool{}
	for name := range names {
		if strings.HasPrefix(name, "@poscopy_") && strings.HasSuffix(name, ".{b}") {
			gen := strings.SplitN(strings.TrimPrefix(name, "@poscopy_"), ".", 2)[0]
			poscopyGenerations[gen] = true
		}
	}
	assert.Len(t, poscopyGenerations, 2, "expected exactly two surviving poscopy generations (one for C, one for R), got %v", poscopyGenerations)
	for gen := range poscopyGenerations {
		for _, suffix := range []string{"A.{b}", "B.{b}"} {
			want := "@poscopy_" + gen + "." + suffix
			assert.True(t, names[want], "expected %s to survive alongside its generation sibling, got %v", want, names)
			assert.True(t, names["@magic."+want], "expected a magic relation for %s, got %v", want, names)
		}
	}
	assert.True(t, names["@magic.A.{b}"] && names["@magic.B.{b}"] && names["@magic.D.{b}"], "expected magic relations for A, B, D, got %v", names)
}
