package ast

import "strings"

// QualifiedName is an ordered sequence of identifier segments, used as a
// relation, type, or component name. A QualifiedName compares and hashes
// structurally; the zero-length QualifiedName is a sentinel reserved for
// TypeBinding's "no mapping" entry and otherwise invalid as a
// reference to a declared entity.
type QualifiedName struct {
	segments []string
}

// NewQualifiedName builds a QualifiedName from its dot-ordered segments.
func NewQualifiedName(segments ...string) QualifiedName {
	out := make([]string, len(segments))
	copy(out, segments)
	return QualifiedName{segments: out}
}

// ParseQualifiedName splits a dotted string such as "a.b.c" into segments.
func ParseQualifiedName(s string) QualifiedName {
	if s == "" {
		return QualifiedName{}
	}
	return NewQualifiedName(strings.Split(s, ".")...)
}

// Empty reports whether this is the zero-segment sentinel.
func (q QualifiedName) Empty() bool { return len(q.segments) == 0 }

// Segments returns the ordered segments. The caller must not mutate it.
func (q QualifiedName) Segments() []string { return q.segments }

// Append returns a new QualifiedName with extra segments appended.
func (q QualifiedName) Append(segments ...string) QualifiedName {
	out := make([]string, 0, len(q.segments)+len(segments))
	out = append(out, q.segments...)
	out = append(out, segments...)
	return QualifiedName{segments: out}
}

// Prepend returns a new QualifiedName with extra segments inserted before
// the existing ones. ComponentInstantiation uses this to prefix every
// locally declared type/relation name with the instance name.
func (q QualifiedName) Prepend(segments ...string) QualifiedName {
	out := make([]string, 0, len(q.segments)+len(segments))
	out = append(out, segments...)
	out = append(out, q.segments...)
	return QualifiedName{segments: out}
}

// DropFront returns the QualifiedName with its first n segments removed.
func (q QualifiedName) DropFront(n int) QualifiedName {
	if n >= len(q.segments) {
		return QualifiedName{}
	}
	out := make([]string, len(q.segments)-n)
	copy(out, q.segments[n:])
	return QualifiedName{segments: out}
}

// Equal reports structural equality.
func (q QualifiedName) Equal(o QualifiedName) bool {
	if len(q.segments) != len(o.segments) {
		return false
	}
	for i := range q.segments {
		if q.segments[i] != o.segments[i] {
			return false
		}
	}
	return true
}

// String renders the dot-joined form, e.g. "a.b.c".
func (q QualifiedName) String() string {
	return strings.Join(q.segments, ".")
}
