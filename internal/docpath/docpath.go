// Package docpath holds the dotted-path helpers shared by the compiler, the
// caster and the validators: joining, wildcard stripping, multi-match reads,
// and deep copies of decoded documents.
package docpath

import (
	"reflect"
	"strconv"
	"strings"
)

// Wildcard is the pattern segment standing for "every element of an array".
const Wildcard = "$"

// Join appends key to path.
func Join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// JoinIndex appends an array index to path.
func JoinIndex(path string, i int) string { return Join(path, strconv.Itoa(i)) }

// Split splits a dotted path into its segments. The empty path has none.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// HasWildcard reports whether pattern crosses an array.
func HasWildcard(pattern string) bool {
	for _, seg := range Split(pattern) {
		if seg == Wildcard {
			return true
		}
	}
	return false
}

// Strip removes wildcard segments: "items.$.tags.$" becomes "items.tags".
func Strip(pattern string) string {
	if !strings.Contains(pattern, Wildcard) {
		return pattern
	}
	segs := Split(pattern)
	out := segs[:0:0]
	for _, seg := range segs {
		if seg != Wildcard {
			out = append(out, seg)
		}
	}
	return strings.Join(out, ".")
}

// Prefixes returns every ancestor-or-self path of p, shortest first.
func Prefixes(p string) []string {
	segs := Split(p)
	out := make([]string, 0, len(segs))
	cur := ""
	for _, seg := range segs {
		cur = Join(cur, seg)
		out = append(out, cur)
	}
	return out
}

// AsSlice returns v as []any when it is any slice or array other than a byte
// slice. Typed slices are copied into a fresh []any.
func AsSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Clone deep-copies the map and slice structure of a decoded document. Leaf
// values are shared.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = Clone(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Clone(t[i])
		}
		return out
	default:
		return v
	}
}
