package config_test

import (
	"testing"

	"github.com/datalogc/dlc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetDefaultsToEmptyString(t *testing.T) {
	s := config.NewStore()
	assert.Equal(t, "", s.Get(config.KeyProvenance))
	assert.False(t, s.Has(config.KeyProvenance))
}

func TestStoreGetBoolRecognisesTruthyStrings(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		s := config.NewStore()
		s.SetLocked(config.KeyMagicTransform, v)
		assert.True(t, s.GetBool(config.KeyMagicTransform), "expected %q to be truthy", v)
	}
	s := config.NewStore()
	s.SetLocked(config.KeyMagicTransform, "nope")
	assert.False(t, s.GetBool(config.KeyMagicTransform))
}

func TestStoreSetFromPragmaSkipsLockedKeys(t *testing.T) {
	s := config.NewStore()
	s.SetLocked(config.KeyProvenance, "explore")
	changed := s.SetFromPragma(config.KeyProvenance, "explain")
	assert.False(t, changed)
	assert.Equal(t, "explore", s.Get(config.KeyProvenance))
	assert.True(t, s.IsLocked(config.KeyProvenance))
}

func TestStoreSetFromPragmaAppliesWhenUnlocked(t *testing.T) {
	s := config.NewStore()
	changed := s.SetFromPragma(config.KeyProvenance, "explain")
	assert.True(t, changed)
	assert.Equal(t, "explain", s.Get(config.KeyProvenance))
	assert.False(t, s.IsLocked(config.KeyProvenance), "a pragma-set value is not locked against a later pragma")
}

func TestStoreSetFromPragmaReportsNoChangeOnIdenticalValue(t *testing.T) {
	s := config.NewStore()
	s.SetFromPragma(config.KeyProvenance, "explain")
	changed := s.SetFromPragma(config.KeyProvenance, "explain")
	assert.False(t, changed, "setting the same value again is not a change")
}

func TestStoreListSplitsTrimsAndDropsEmpties(t *testing.T) {
	s := config.NewStore()
	s.SetLocked(config.KeyDisableTransformers, "Foo,  Bar ,,Baz")
	assert.Equal(t, []string{"Foo", "Bar", "Baz"}, s.List(config.KeyDisableTransformers))
}

func TestStoreListEmptyOnUnsetKey(t *testing.T) {
	s := config.NewStore()
	assert.Nil(t, s.List(config.KeyDisableTransformers))
}

func TestLoadYAMLLocksEveryDecodedKey(t *testing.T) {
	doc := []byte("provenance: explain\nfact-dir: /data\n")
	s, err := config.LoadYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "explain", s.Get(config.KeyProvenance))
	assert.Equal(t, "/data", s.Get(config.KeyFactDir))
	assert.True(t, s.IsLocked(config.KeyProvenance))
	assert.True(t, s.IsLocked(config.KeyFactDir))
}

func TestLoadYAMLRejectsMalformedDocument(t *testing.T) {
	_, err := config.LoadYAML([]byte("not: [valid: yaml"))
	assert.Error(t, err)
}
