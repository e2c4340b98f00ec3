package transform_test

import (
	"testing"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/transform"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/tu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// noopNamed is a minimal Transformer stub so the test can control exactly
// what DebugReporter wraps, without depending on a concrete rewrite pass.
type noopNamed struct {
	name    string
	changed bool
}

func (n noopNamed) Name() string                  { return n.name }
func (n noopNamed) Clone() transform.Transformer   { return n }
func (n noopNamed) Apply(_ *tu.TranslationUnit) bool { return n.changed }

func TestDebugReporterRecordsASection(t *testing.T) {
	reporter := transform.NewDebugReporter(noopNamed{name: "Fake", changed: true}, zap.NewNop())
	u := tu.New(ast.NewProgram(), "test", config.NewStore())

	changed := reporter.Apply(u)
	assert.True(t, changed)

	doc, err := u.DebugReportJSON()
	require.NoError(t, err)

	result := gjson.Get(doc, "transformers.0")
	require.True(t, result.Exists())
	assert.Equal(t, "Fake", result.Get("name").String())
	assert.True(t, result.Get("changed").Bool())
	assert.True(t, result.Get("runID").Exists())
}

func TestDebugReporterAccumulatesMultipleSections(t *testing.T) {
	u := tu.New(ast.NewProgram(), "test", config.NewStore())

	transform.NewDebugReporter(noopNamed{name: "First", changed: false}, zap.NewNop()).Apply(u)
	transform.NewDebugReporter(noopNamed{name: "Second", changed: true}, zap.NewNop()).Apply(u)

	doc, err := u.DebugReportJSON()
	require.NoError(t, err)

	arr := gjson.Get(doc, "transformers.#.name")
	names := []string{}
	for _, r := range arr.Array() {
		names = append(names, r.String())
	}
	assert.Equal(t, []string{"First", "Second"}, names)
}
