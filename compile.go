package archetype

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/reoring/archetype/coerce"
	"github.com/reoring/archetype/internal/docpath"
)

// Tag is the compiled shape of a pattern path.
type Tag int

const (
	TagScalar    Tag = iota // a leaf coerced to Kind
	TagArray                // an array; its elements live at path + ".$"
	TagObject               // a mapping; structural when Schema is set
	TagAny                  // declared with no constraint
	TagUnsampled            // element of an empty sample array
)

func (t Tag) String() string {
	switch t {
	case TagScalar:
		return "scalar"
	case TagArray:
		return "array"
	case TagObject:
		return "object"
	case TagAny:
		return "any"
	case TagUnsampled:
		return "unsampled"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// PathInfo is the compiled descriptor of one pattern path.
type PathInfo struct {
	Path     string // Dotted pattern path; "$" stands for array elements.
	Tag      Tag
	Kind     Kind    // Set for TagScalar.
	Schema   *Object // Set for structural TagObject paths.
	Enum     []any
	Validate ValidateFunc
	Default  any
	Required bool
	Meta     map[string]any
}

// HasWildcard reports whether the path crosses an array.
func (p PathInfo) HasWildcard() bool { return docpath.HasWildcard(p.Path) }

// clone copies p so callers cannot reach the schema's own tree.
func (p *PathInfo) clone() PathInfo {
	cp := *p
	cp.Schema = cloneObject(p.Schema)
	cp.Enum = slices.Clone(p.Enum)
	cp.Default = docpath.Clone(p.Default)
	if p.Meta != nil {
		cp.Meta = make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			cp.Meta[k] = docpath.Clone(v)
		}
	}
	return cp
}

func (p *PathInfo) merge(l *Leaf) {
	p.Enum = l.Enum
	p.Validate = l.Validate
	p.Default = l.Default
	p.Required = l.Required
	p.Meta = l.Meta
}

// pathMap is the compiled, insertion-ordered map of pattern paths.
type pathMap struct {
	order  []string
	byPath map[string]*PathInfo
}

func newPathMap() *pathMap { return &pathMap{byPath: map[string]*PathInfo{}} }

func (m *pathMap) put(info *PathInfo) {
	if _, ok := m.byPath[info.Path]; !ok {
		m.order = append(m.order, info.Path)
	}
	m.byPath[info.Path] = info
}

func (m *pathMap) lookup(path string) (*PathInfo, bool) {
	info, ok := m.byPath[path]
	return info, ok
}

func (m *pathMap) each(fn func(*PathInfo)) {
	for _, p := range m.order {
		fn(m.byPath[p])
	}
}

// ErrInvalidDescriptor wraps every compile failure.
var ErrInvalidDescriptor = errors.New("archetype: invalid descriptor")

func invalid(path, format string, args ...any) error {
	if path == "" {
		path = "<root>"
	}
	return fmt.Errorf("%w at %s: %s", ErrInvalidDescriptor, path, fmt.Sprintf(format, args...))
}

// compile flattens root into a pathMap. The accumulator is passed down
// explicitly; nothing outlives the call except the result.
func compile(root *Object, reg *coerce.Registry) (*pathMap, error) {
	if root == nil {
		return nil, invalid("", "nil root object")
	}
	paths := newPathMap()
	if err := compileObject(root, "", paths, reg); err != nil {
		return nil, err
	}
	return paths, nil
}

func compileNode(d Descriptor, path string, paths *pathMap, reg *coerce.Registry) error {
	switch n := d.(type) {
	case nil:
		return invalid(path, "nil descriptor")
	case Kind:
		return compileKind(n, path, paths, reg)
	case *Object:
		if n == nil {
			return invalid(path, "nil object")
		}
		return compileObject(n, path, paths, reg)
	case *Array:
		if n == nil {
			return invalid(path, "nil array")
		}
		return compileArray(n, path, paths, reg)
	case *Leaf:
		if n == nil {
			return invalid(path, "nil leaf")
		}
		return compileLeaf(n, path, paths, reg)
	default:
		return invalid(path, "unsupported descriptor %T", d)
	}
}

func compileObject(obj *Object, path string, paths *pathMap, reg *coerce.Registry) error {
	if path != "" {
		paths.put(&PathInfo{Path: path, Tag: TagObject, Schema: obj})
	}
	seen := make(map[string]struct{}, len(obj.Fields))
	for _, f := range obj.Fields {
		switch {
		case f.Name == "":
			return invalid(path, "empty field name")
		case strings.Contains(f.Name, "."):
			return invalid(path, "field name %q contains '.'", f.Name)
		case strings.HasPrefix(f.Name, "$"):
			return invalid(path, "field name %q starts with '$'", f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return invalid(path, "duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := compileNode(f.Desc, docpath.Join(path, f.Name), paths, reg); err != nil {
			return err
		}
	}
	return nil
}

// compileArray registers path as an array and infers the element shape from
// the sample alone.
func compileArray(arr *Array, path string, paths *pathMap, reg *coerce.Registry) error {
	paths.put(&PathInfo{Path: path, Tag: TagArray})
	elemPath := docpath.Join(path, docpath.Wildcard)
	if arr.Elem == nil {
		paths.put(&PathInfo{Path: elemPath, Tag: TagUnsampled})
		return nil
	}
	return compileNode(arr.Elem, elemPath, paths, reg)
}

func compileKind(k Kind, path string, paths *pathMap, reg *coerce.Registry) error {
	switch k {
	case Any:
		paths.put(&PathInfo{Path: path, Tag: TagAny})
	case Map:
		paths.put(&PathInfo{Path: path, Tag: TagObject})
	default:
		if !reg.Has(string(k)) {
			return invalid(path, "unknown kind %q", string(k))
		}
		paths.put(&PathInfo{Path: path, Tag: TagScalar, Kind: k})
	}
	return nil
}

func compileLeaf(l *Leaf, path string, paths *pathMap, reg *coerce.Registry) error {
	if l.Schema != nil && l.Type != Map {
		return invalid(path, "schema requires type %q, got %v", Map, l.Type)
	}
	switch t := l.Type.(type) {
	case nil:
		return invalid(path, "leaf without type")
	case *Array:
		if t == nil {
			return invalid(path, "nil array type")
		}
		if err := compileArray(t, path, paths, reg); err != nil {
			return err
		}
	case *Object:
		if t == nil {
			return invalid(path, "nil object type")
		}
		if err := compileObject(t, path, paths, reg); err != nil {
			return err
		}
	case Kind:
		if t == Map && l.Schema != nil {
			if err := compileObject(l.Schema, path, paths, reg); err != nil {
				return err
			}
			break
		}
		if err := compileKind(t, path, paths, reg); err != nil {
			return err
		}
	default:
		return invalid(path, "unsupported leaf type %T", l.Type)
	}
	info, _ := paths.lookup(path)
	info.merge(l)
	return nil
}
