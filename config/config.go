// Package config implements the string-keyed global configuration store.
// There is no package-level singleton: the driver owns a Store and
// threads it explicitly through the pipeline, and PragmaChecker applies
// pragma values onto it rather than mutating shared global state. Values
// are decoded from YAML with goccy/go-yaml.
package config

import (
	"strings"

	"github.com/goccy/go-yaml"
)

// Recognised keys that affect the core.
const (
	KeyMagicTransform        = "magic-transform"
	KeyMagicTransformExclude = "magic-transform-exclude"
	KeyInlineExclude         = "inline-exclude"
	KeyProvenance            = "provenance"
	KeyDisableTransformers   = "disable-transformers"
	KeyDebugReport           = "debug-report"
	KeyLegacy                = "legacy"
	KeyFactDir               = "fact-dir"
	KeyOutputDir             = "output-dir"
)

// Store is an immutable-from-the-pipeline's-perspective key/value
// configuration. Missing keys default to empty-string/false. It
// distinguishes values set explicitly on the command line (locked) from
// ones a transformer (PragmaChecker) may still fill in.
type Store struct {
	values map[string]string
	locked map[string]bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{values: map[string]string{}, locked: map[string]bool{}}
}

// LoadYAML decodes a YAML document (`key: value` mapping) into a new Store
// whose entries are all treated as command-line-set (locked against
// PragmaChecker overwriting them), matching how a real CLI's flags take
// precedence over in-program pragmas.
func LoadYAML(doc []byte) (*Store, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, err
	}
	s := NewStore()
	for k, v := range raw {
		s.SetLocked(k, v)
	}
	return s, nil
}

// Get returns the value for key, defaulting to "".
func (s *Store) Get(key string) string {
	return s.values[key]
}

// GetBool reports whether key's value is a recognised truthy string.
func (s *Store) GetBool(key string) bool {
	switch strings.ToLower(s.values[key]) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Has reports whether key has any value set (by either path).
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// IsLocked reports whether key was set on the command line (or via
// LoadYAML), meaning PragmaChecker must not overwrite it.
func (s *Store) IsLocked(key string) bool {
	return s.locked[key]
}

// SetLocked sets key as if from the command line: PragmaChecker will skip
// it.
func (s *Store) SetLocked(key, value string) {
	s.values[key] = value
	s.locked[key] = true
}

// SetFromPragma sets key's value only if it is not already locked,
// reporting whether the assignment took effect — this is exactly
// PragmaChecker's "changed" signal.
func (s *Store) SetFromPragma(key, value string) bool {
	if s.locked[key] {
		return false
	}
	if existing, ok := s.values[key]; ok && existing == value {
		return false
	}
	s.values[key] = value
	return true
}

// List splits a comma-separated configuration value into its parts,
// trimming whitespace and dropping empties. Used for magic-transform,
// magic-transform-exclude, inline-exclude, disable-transformers.
func (s *Store) List(key string) []string {
	raw := s.values[key]
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
