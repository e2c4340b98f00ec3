package transform

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/tu"
)

// IODefaults fills in missing directive parameters: `IO` defaults to
// "file", `name` defaults to the directive's dotted qualified name,
// `operation` is derived from the DirectiveType, and `fact-dir`/
// `output-dir` are propagated from global configuration. `stdout` is
// special-cased with `headers=true`.
type IODefaults struct{}

func (IODefaults) Name() string       { return "IODefaults" }
func (IODefaults) Clone() Transformer { return IODefaults{} }

func (IODefaults) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, d := range t.Program.Directives {
		if applyIODefaults(t, d) {
			changed = true
		}
	}
	return changed
}

func applyIODefaults(t *tu.TranslationUnit, d *ast.Directive) bool {
	changed := false

	if _, ok := d.Get("name"); !ok {
		d.Set("name", d.Relation.String())
		changed = true
	}

	io, hasIO := d.Get("IO")
	if !hasIO {
		io = "file"
		d.Set("IO", io)
		changed = true
	}

	if _, ok := d.Get("operation"); !ok {
		d.Set("operation", string(d.Type))
		changed = true
	}

	if io == "file" {
		switch d.Type {
		case ast.DirectiveInput:
			if dir := t.Config.Get(config.KeyFactDir); dir != "" {
				if _, ok := d.Get("fact-dir"); !ok {
					d.Set("fact-dir", dir)
					changed = true
				}
			}
		case ast.DirectiveOutput, ast.DirectivePrintsize:
			if dir := t.Config.Get(config.KeyOutputDir); dir != "" {
				if _, ok := d.Get("output-dir"); !ok {
					d.Set("output-dir", dir)
					changed = true
				}
			}
		}
	}

	if io == "stdout" {
		if _, ok := d.Get("headers"); !ok {
			d.Set("headers", "true")
			changed = true
		}
	}

	return changed
}
