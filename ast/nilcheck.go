package ast

import "reflect"

// isNilPointer reports whether a Node interface value wraps a nil pointer.
// Optional child slots (e.g. Aggregator.Target, TypeCast.Expr) are typed
// pointers; a nil *Variable stored in a Node interface is itself
// non-nil as an interface, so a plain "== nil" check does not detect it.
// There is no third-party substitute for this reflection primitive; it is
// a mechanical guard, not a design concern.
func isNilPointer(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
