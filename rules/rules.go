// Package rules builds reusable archetype.ValidateFunc values: conditionals
// over other document paths, collection checks and combinators.
package rules

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/archetype"
	"github.com/reoring/archetype/internal/docpath"
)

var (
	// ErrTooShort is returned by AtLeastOne for an empty collection.
	ErrTooShort = errors.New("at least 1 item is required")
	// ErrDuplicate is returned by UniqueBy.
	ErrDuplicate = errors.New("duplicate value")
	// ErrBlank is returned by NonBlank.
	ErrBlank = errors.New("must not be blank")
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of validators.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional comparing the document value at path with want.
// path is a dotted document path; with "$" segments the condition holds when
// any element satisfies it.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: path, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then returns a validator running fns only when the condition holds.
func (c Conditional) Then(fns ...archetype.ValidateFunc) archetype.ValidateFunc {
	all := All(fns...)
	return func(v any, info archetype.PathInfo, doc map[string]any) error {
		if !c.eval(doc) {
			return nil
		}
		return all(v, info, doc)
	}
}

func (c Conditional) eval(doc map[string]any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(doc) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(doc) {
				return true
			}
		}
		return false
	}
	for _, m := range docpath.Resolve(doc, c.path) {
		if m.Found && compare(m.Value, c.op, c.want) {
			return true
		}
	}
	return false
}

// AtLeastOne requires the value to be a non-empty array. Non-arrays pass.
func AtLeastOne() archetype.ValidateFunc {
	return func(v any, _ archetype.PathInfo, _ map[string]any) error {
		if arr, ok := docpath.AsSlice(v); ok && len(arr) == 0 {
			return ErrTooShort
		}
		return nil
	}
}

// UniqueBy requires the elements of an array to have distinct values at the
// dotted key inside each element. Elements without the key are skipped.
// Keys compare by their printed form, so keep the key a single kind.
func UniqueBy(key string) archetype.ValidateFunc {
	return func(v any, _ archetype.PathInfo, _ map[string]any) error {
		arr, ok := docpath.AsSlice(v)
		if !ok {
			return nil
		}
		seen := map[string]int{}
		var errs []error
		for i, elem := range arr {
			kv, ok := valueWithin(elem, key)
			if !ok {
				continue
			}
			k := fmt.Sprint(kv)
			if j, dup := seen[k]; dup {
				errs = append(errs, fmt.Errorf("%w: %s=%s at %d (first at %d)", ErrDuplicate, key, k, i, j))
				continue
			}
			seen[k] = i
		}
		return errors.Join(errs...)
	}
}

// NonBlank rejects strings that are empty after trimming spaces.
func NonBlank() archetype.ValidateFunc {
	return func(v any, _ archetype.PathInfo, _ map[string]any) error {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return ErrBlank
		}
		return nil
	}
}

// All runs every validator and joins their errors.
func All(fns ...archetype.ValidateFunc) archetype.ValidateFunc {
	return func(v any, info archetype.PathInfo, doc map[string]any) error {
		var errs []error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(v, info, doc); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// Any succeeds when one validator passes. When all fail it returns the first
// error.
func Any(fns ...archetype.ValidateFunc) archetype.ValidateFunc {
	return func(v any, info archetype.PathInfo, doc map[string]any) error {
		var first error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			err := fn(v, info, doc)
			if err == nil {
				return nil
			}
			if first == nil {
				first = err
			}
		}
		return first
	}
}

// Builtins lists the parameterless validators by the names schema files use
// in $validate.
func Builtins() map[string]archetype.ValidateFunc {
	return map[string]archetype.ValidateFunc{
		"atLeastOne": AtLeastOne(),
		"nonBlank":   NonBlank(),
	}
}

// ------- helpers -------

func valueWithin(v any, rel string) (any, bool) {
	if rel == "" {
		return v, true
	}
	for _, m := range docpath.Resolve(v, rel) {
		if m.Found {
			return m.Value, true
		}
	}
	return nil, false
}

func compare(cur any, op Op, want any) bool {
	a, aok := toFloat64(cur)
	b, bok := toFloat64(want)
	numeric := aok && bok
	switch op {
	case Eq:
		if numeric {
			return a == b
		}
		return reflect.DeepEqual(cur, want)
	case Ne:
		if numeric {
			return a != b
		}
		return !reflect.DeepEqual(cur, want)
	}
	if !numeric {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
