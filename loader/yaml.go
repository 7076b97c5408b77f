package loader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/archetype"
)

// DuplicateKeyError reports a key declared twice in one mapping, with both
// positions.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("loader: duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrSyntax }

// LoadYAML parses a YAML descriptor file.
func LoadYAML(b []byte, opts ...Option) (*archetype.Object, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return newOptions(opts).root(&root)
}

func (o *options) root(n *yaml.Node) (*archetype.Object, error) {
	n = resolve(n)
	if n == nil {
		return nil, &Error{Msg: "empty descriptor file"}
	}
	if n.Kind != yaml.MappingNode || isLeaf(n) {
		return nil, errAt(n, "root must be an object")
	}
	return o.object(n)
}

// resolve skips document wrappers and follows aliases.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case 0:
			return nil
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func errAt(n *yaml.Node, format string, args ...any) error {
	return &Error{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

func (o *options) node(n *yaml.Node) (archetype.Descriptor, error) {
	n = resolve(n)
	if n == nil {
		return nil, &Error{Msg: "missing descriptor"}
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!str" {
			return nil, errAt(n, "expected a kind name, got %s", n.Tag)
		}
		k, ok := o.kind(n.Value)
		if !ok {
			return nil, errAt(n, "unknown kind %q", n.Value)
		}
		return k, nil
	case yaml.SequenceNode:
		switch len(n.Content) {
		case 0:
			return archetype.ArrayOf(nil), nil
		case 1:
			elem, err := o.node(n.Content[0])
			if err != nil {
				return nil, err
			}
			return archetype.ArrayOf(elem), nil
		}
		return nil, errAt(n, "array sample must hold at most one element, got %d", len(n.Content))
	case yaml.MappingNode:
		if isLeaf(n) {
			return o.leaf(n)
		}
		return o.object(n)
	}
	return nil, errAt(n, "unsupported node")
}

func isLeaf(n *yaml.Node) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "$type" {
			return true
		}
	}
	return false
}

// pairs walks a mapping, rejecting duplicate keys.
func pairs(n *yaml.Node, fn func(k, v *yaml.Node) error) error {
	first := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if prev, dup := first[k.Value]; dup {
			return &DuplicateKeyError{Key: k.Value, FirstLine: prev.Line, FirstCol: prev.Column, Line: k.Line, Col: k.Column}
		}
		first[k.Value] = k
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) object(n *yaml.Node) (*archetype.Object, error) {
	obj := archetype.NewObject()
	err := pairs(n, func(k, v *yaml.Node) error {
		if strings.HasPrefix(k.Value, "$") {
			return errAt(k, "unexpected key %q outside a $type leaf", k.Value)
		}
		d, err := o.node(v)
		if err != nil {
			return err
		}
		obj.Fields = append(obj.Fields, archetype.F(k.Value, d))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *options) leaf(n *yaml.Node) (*archetype.Leaf, error) {
	l := &archetype.Leaf{}
	err := pairs(n, func(k, v *yaml.Node) error {
		switch k.Value {
		case "$type":
			t, err := o.node(v)
			if err != nil {
				return err
			}
			l.Type = t
		case "$schema":
			if rv := resolve(v); rv == nil || rv.Kind != yaml.MappingNode || isLeaf(rv) {
				return errAt(v, "$schema must be an object")
			}
			s, err := o.object(resolve(v))
			if err != nil {
				return err
			}
			l.Schema = s
		case "$enum":
			rv := resolve(v)
			if rv == nil || rv.Kind != yaml.SequenceNode {
				return errAt(v, "$enum must be a list")
			}
			l.Enum = make([]any, 0, len(rv.Content))
			for _, e := range rv.Content {
				val, err := value(e)
				if err != nil {
					return err
				}
				l.Enum = append(l.Enum, val)
			}
		case "$default":
			val, err := value(v)
			if err != nil {
				return err
			}
			l.Default = val
		case "$required":
			if err := v.Decode(&l.Required); err != nil {
				return errAt(v, "$required must be a boolean")
			}
		case "$validate":
			var name string
			if err := v.Decode(&name); err != nil {
				return errAt(v, "$validate must be a validator name")
			}
			fn, ok := o.validators[name]
			if !ok {
				return errAt(v, "unknown validator %q", name)
			}
			l.Validate = fn
		default:
			if !strings.HasPrefix(k.Value, "$") {
				return errAt(k, "unexpected key %q in a $type leaf", k.Value)
			}
			val, err := value(v)
			if err != nil {
				return err
			}
			if l.Meta == nil {
				l.Meta = map[string]any{}
			}
			l.Meta[strings.TrimPrefix(k.Value, "$")] = val
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func value(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, errAt(n, "%v", err)
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = normalize(vv)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalize(vv)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}
