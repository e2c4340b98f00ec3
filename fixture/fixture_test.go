package fixture_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFixture = `
relations:
  - name: edge
    attributes:
      - {name: a, type: symbol}
      - {name: b, type: symbol}
    qualifiers: [input]
  - name: path
    attributes:
      - {name: a, type: symbol}
      - {name: b, type: symbol}
    qualifiers: [output]
clauses:
  - head: {kind: atom, name: path, args: [{kind: variable, name: x}, {kind: variable, name: y}]}
    body:
      - {kind: atom, name: edge, args: [{kind: variable, name: x}, {kind: variable, name: y}]}
  - head: {kind: atom, name: path, args: [{kind: variable, name: x}, {kind: variable, name: z}]}
    body:
      - {kind: atom, name: edge, args: [{kind: variable, name: x}, {kind: variable, name: y}]}
      - {kind: atom, name: path, args: [{kind: variable, name: y}, {kind: variable, name: z}]}
directives:
  - type: input
    relation: edge
  - type: output
    relation: path
`

func TestLoadDecodesRelationsClausesAndDirectives(t *testing.T) {
	p, err := fixture.Load([]byte(sampleFixture))
	require.NoError(t, err)

	require.Len(t, p.Relations, 2)
	assert.Equal(t, "edge", p.Relations[0].Name.String())
	assert.True(t, p.Relations[0].HasQualifier(ast.QualifierInput))

	require.Len(t, p.Clauses, 2)
	assert.Equal(t, "path", p.Clauses[0].Head.Name.String())
	require.Len(t, p.Clauses[1].Body, 2)

	require.Len(t, p.Directives, 2)
	assert.Equal(t, "edge", p.Directives[0].Relation.String())
}

func TestLoadRejectsUnknownLiteralKind(t *testing.T) {
	_, err := fixture.Load([]byte(`
clauses:
  - head: {kind: atom, name: p, args: []}
    body:
      - {kind: bogus}
`))
	assert.Error(t, err)
}
