// Package transform implements the Transformer framework: the base
// Transformer contract plus meta-transformers (Sequence, Fixpoint, Loop,
// Conditional, Pipeline, While, Null, DebugReporter) and the concrete
// rewrite corpus.
package transform

import (
	"github.com/datalogc/dlc/tu"
)

// Transformer is the base contract every rewrite pass implements. Apply
// returns whether the Program changed; the enclosing meta-transformer
// composes that flag, and a transformer that changes the Program
// invalidates the analysis cache itself; meta-transformers do not
// invalidate it. Transformers and analyses must never panic for a semantic
// problem — they record a diagnostic on tu.Report and continue.
type Transformer interface {
	Name() string
	Clone() Transformer
	Apply(t *tu.TranslationUnit) bool
}

// Sequence runs each transformer in turn; the result is the LAST
// transformer's flag — later transformers are authoritative.
type Sequence struct {
	Transformers []Transformer
}

func NewSequence(ts ...Transformer) *Sequence { return &Sequence{Transformers: ts} }

func (s *Sequence) Name() string { return "Sequence" }

func (s *Sequence) Clone() Transformer {
	out := &Sequence{Transformers: make([]Transformer, len(s.Transformers))}
	for i, t := range s.Transformers {
		out.Transformers[i] = t.Clone()
	}
	return out
}

func (s *Sequence) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, inner := range s.Transformers {
		changed = inner.Apply(t)
	}
	return changed
}

// Pipeline runs each transformer in turn; the result is the logical OR of
// every flag.
type Pipeline struct {
	Transformers []Transformer
}

func NewPipeline(ts ...Transformer) *Pipeline { return &Pipeline{Transformers: ts} }

func (p *Pipeline) Name() string { return "Pipeline" }

func (p *Pipeline) Clone() Transformer {
	out := &Pipeline{Transformers: make([]Transformer, len(p.Transformers))}
	for i, t := range p.Transformers {
		out.Transformers[i] = t.Clone()
	}
	return out
}

func (p *Pipeline) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for _, inner := range p.Transformers {
		if inner.Apply(t) {
			changed = true
		}
	}
	return changed
}

// Fixpoint repeats t until it returns false; the result is true iff it ran
// productively at least once.
type Fixpoint struct {
	Inner Transformer
}

func NewFixpoint(inner Transformer) *Fixpoint { return &Fixpoint{Inner: inner} }

func (f *Fixpoint) Name() string { return "Fixpoint(" + f.Inner.Name() + ")" }

func (f *Fixpoint) Clone() Transformer { return &Fixpoint{Inner: f.Inner.Clone()} }

func (f *Fixpoint) Apply(t *tu.TranslationUnit) bool {
	changedOnce := false
	for f.Inner.Apply(t) {
		changedOnce = true
	}
	return changedOnce
}

// Loop is Fixpoint that additionally counts iterations.
type Loop struct {
	Inner      Transformer
	Iterations int
}

func NewLoop(inner Transformer) *Loop { return &Loop{Inner: inner} }

func (l *Loop) Name() string { return "Loop(" + l.Inner.Name() + ")" }

func (l *Loop) Clone() Transformer { return &Loop{Inner: l.Inner.Clone()} }

func (l *Loop) Apply(t *tu.TranslationUnit) bool {
	changedOnce := false
	l.Iterations = 0
	for l.Inner.Apply(t) {
		changedOnce = true
		l.Iterations++
	}
	return changedOnce
}

// Conditional runs Inner iff Predicate() is true at apply-time.
type Conditional struct {
	Predicate func(*tu.TranslationUnit) bool
	Inner     Transformer
}

func NewConditional(pred func(*tu.TranslationUnit) bool, inner Transformer) *Conditional {
	return &Conditional{Predicate: pred, Inner: inner}
}

func (c *Conditional) Name() string { return "Conditional(" + c.Inner.Name() + ")" }

func (c *Conditional) Clone() Transformer { return &Conditional{Predicate: c.Predicate, Inner: c.Inner.Clone()} }

func (c *Conditional) Apply(t *tu.TranslationUnit) bool {
	if c.Predicate == nil || !c.Predicate(t) {
		return false
	}
	return c.Inner.Apply(t)
}

// While repeats Inner while Predicate() holds.
type While struct {
	Predicate func(*tu.TranslationUnit) bool
	Inner     Transformer
}

func NewWhile(pred func(*tu.TranslationUnit) bool, inner Transformer) *While {
	return &While{Predicate: pred, Inner: inner}
}

func (w *While) Name() string { return "While(" + w.Inner.Name() + ")" }

func (w *While) Clone() Transformer { return &While{Predicate: w.Predicate, Inner: w.Inner.Clone()} }

func (w *While) Apply(t *tu.TranslationUnit) bool {
	changed := false
	for w.Predicate != nil && w.Predicate(t) {
		if w.Inner.Apply(t) {
			changed = true
		} else {
			break
		}
	}
	return changed
}

// Null always returns false and never touches the Program. It is what
// disableTransformers substitutes a disabled transformer with Null.
type Null struct {
	OriginalName string
}

func (n *Null) Name() string {
	if n.OriginalName != "" {
		return "Null(" + n.OriginalName + ")"
	}
	return "Null"
}

func (n *Null) Clone() Transformer       { return &Null{OriginalName: n.OriginalName} }
func (n *Null) Apply(t *tu.TranslationUnit) bool { return false }

// DisableTransformers recursively replaces any transformer whose name is
// in names — and which is not pinned — with Null. pinned is
// consulted so that non-disableable transformers such as ResolveAliases
// are left untouched even if named.
func DisableTransformers(root Transformer, names map[string]bool, pinned map[string]bool) Transformer {
	if pinned[root.Name()] {
		return root
	}
	if names[root.Name()] {
		return &Null{OriginalName: root.Name()}
	}
	switch r := root.(type) {
	case *Sequence:
		for i, inner := range r.Transformers {
			r.Transformers[i] = DisableTransformers(inner, names, pinned)
		}
	case *Pipeline:
		for i, inner := range r.Transformers {
			r.Transformers[i] = DisableTransformers(inner, names, pinned)
		}
	case *Fixpoint:
		r.Inner = DisableTransformers(r.Inner, names, pinned)
	case *Loop:
		r.Inner = DisableTransformers(r.Inner, names, pinned)
	case *Conditional:
		r.Inner = DisableTransformers(r.Inner, names, pinned)
	case *While:
		r.Inner = DisableTransformers(r.Inner, names, pinned)
	case *DebugReporter:
		r.Inner = DisableTransformers(r.Inner, names, pinned)
	}
	return root
}
