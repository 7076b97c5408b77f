// Package coerce converts decoded scalar values to the kinds a schema
// declares. A Registry maps kind names to conversion funcs; New returns one
// preloaded with the built-in kinds and callers may register their own.
package coerce

import (
	"fmt"
	"sort"
)

// Built-in kind names.
const (
	KindString  = "string"
	KindNumber  = "number"
	KindInteger = "integer"
	KindBoolean = "boolean"
	KindDate    = "date"
	KindUUID    = "uuid"
)

// Func converts v to a kind. It is never called with a nil value.
type Func func(v any) (any, error)

// Error reports a value that could not be converted.
type Error struct {
	Kind  string
	Value any
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot cast %s to %s: %v", describe(e.Value), e.Kind, e.Err)
	}
	return fmt.Sprintf("cannot cast %s to %s", describe(e.Value), e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Registry holds conversion funcs by kind name. It is not safe for concurrent
// mutation; schemas take a private copy when compiled.
type Registry struct {
	funcs map[string]Func
}

// New returns a registry holding the built-in kinds.
func New() *Registry {
	return &Registry{funcs: map[string]Func{
		KindString:  toString,
		KindNumber:  toNumber,
		KindInteger: toInteger,
		KindBoolean: toBoolean,
		KindDate:    toDate,
		KindUUID:    toUUID,
	}}
}

// Register adds or replaces the func for kind and returns r for chaining.
func (r *Registry) Register(kind string, fn Func) *Registry {
	if r.funcs == nil {
		r.funcs = map[string]Func{}
	}
	r.funcs[kind] = fn
	return r
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	_, ok := r.funcs[kind]
	return ok
}

// Kinds lists registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.funcs))
	for k := range r.funcs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	cp := &Registry{funcs: make(map[string]Func, len(r.funcs))}
	for k, fn := range r.funcs {
		cp.funcs[k] = fn
	}
	return cp
}

// Cast converts v to kind. nil passes through untouched. Failures are
// returned as *Error.
func (r *Registry) Cast(kind string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	fn, ok := r.funcs[kind]
	if !ok {
		return nil, &Error{Kind: kind, Value: v, Err: fmt.Errorf("unknown kind %q", kind)}
	}
	out, err := fn(v)
	if err != nil {
		if ce, ok := err.(*Error); ok {
			return nil, ce
		}
		return nil, &Error{Kind: kind, Value: v, Err: err}
	}
	return out, nil
}

// Into converts container[key] in place.
func (r *Registry) Into(container map[string]any, key, kind string) error {
	out, err := r.Cast(kind, container[key])
	if err != nil {
		return err
	}
	if _, ok := container[key]; ok {
		container[key] = out
	}
	return nil
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%v (%T)", v, v)
	}
}
