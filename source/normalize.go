package source

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// normalize converts decoder output (which may contain map[any]any) into
// JSON-like values. Non-string keys are formatted with %v.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = normalize(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalize(t[i])
		}
		return arr
	default:
		return v
	}
}

// Encode writes v to w. indent pretty-prints JSON and YAML; MessagePack
// ignores it.
func Encode(w io.Writer, v any, f Format, indent bool) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		if indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(prepare(v)); err != nil {
			return err
		}
		return enc.Close()
	case MsgPack:
		return msgpack.NewEncoder(w).Encode(prepare(v))
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// prepare rewrites leaves that only JSON knows how to print: json.Number
// becomes int64 or float64 and uuid.UUID its string form.
func prepare(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = prepare(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = prepare(t[i])
		}
		return arr
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case uuid.UUID:
		return t.String()
	default:
		return v
	}
}
