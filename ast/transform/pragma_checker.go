package transform

import "github.com/datalogc/dlc/tu"

// PragmaChecker copies each Program-level pragma key/value into the global
// configuration, unless already set on the command line.
type PragmaChecker struct{}

func (PragmaChecker) Name() string  { return "PragmaChecker" }
func (PragmaChecker) Clone() Transformer { return PragmaChecker{} }

func (PragmaChecker) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, p := range t.Program.Pragmas {
		if t.Config.SetFromPragma(p.Key, p.Value) {
			changed = true
		}
	}
	return changed
}
