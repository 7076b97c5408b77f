package archetype

import (
	"maps"
	"slices"

	"github.com/reoring/archetype/coerce"
	"github.com/reoring/archetype/internal/docpath"
)

// Descriptor is a node of a schema description tree. The variants are Kind,
// *Object, *Array and *Leaf.
type Descriptor interface {
	descriptor()
}

// Kind is a scalar type tag. A bare Kind in a tree declares a leaf of that
// kind with no further metadata.
type Kind string

const (
	String  Kind = coerce.KindString
	Number  Kind = coerce.KindNumber
	Integer Kind = coerce.KindInteger
	Boolean Kind = coerce.KindBoolean
	Date    Kind = coerce.KindDate
	UUID    Kind = coerce.KindUUID
	// Any declares a path with no type constraint; values are left untouched.
	Any Kind = "any"
	// Map declares a mapping. Without a Leaf.Schema it is free-form.
	Map Kind = "object"
)

func (Kind) descriptor() {}

// Field is one named child of an Object.
type Field struct {
	Name string
	Desc Descriptor
}

// F is shorthand for Field{Name: name, Desc: d}.
func F(name string, d Descriptor) Field { return Field{Name: name, Desc: d} }

// Object is a structural node: an ordered list of named children.
type Object struct {
	Fields []Field
}

// NewObject builds an Object from fields, in order.
func NewObject(fields ...Field) *Object { return &Object{Fields: fields} }

func (*Object) descriptor() {}

// Lookup returns the child named name.
func (o *Object) Lookup(name string) (Descriptor, bool) {
	if i := o.index(name); i >= 0 {
		return o.Fields[i].Desc, true
	}
	return nil, false
}

// Names lists the field names in order.
func (o *Object) Names() []string {
	out := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		out[i] = f.Name
	}
	return out
}

func (o *Object) index(name string) int {
	return slices.IndexFunc(o.Fields, func(f Field) bool { return f.Name == name })
}

// Array declares an array whose elements follow Elem. A nil Elem is an empty
// sample: the array is declared but its elements are not.
type Array struct {
	Elem Descriptor
}

// ArrayOf is shorthand for &Array{Elem: elem}.
func ArrayOf(elem Descriptor) *Array { return &Array{Elem: elem} }

func (*Array) descriptor() {}

// ValidateFunc checks a resolved value. info describes the compiled path and
// doc is the whole document being cast. A non-nil error marks the value
// invalid.
type ValidateFunc func(value any, info PathInfo, doc map[string]any) error

// DefaultFunc produces a default value each time one is needed.
type DefaultFunc func() any

// Leaf is a typed node carrying metadata.
type Leaf struct {
	// Type is a Kind or an *Array. An *Array type declares the path as an
	// array; the remaining metadata then applies to the array itself.
	Type Descriptor
	// Schema describes a nested object when Type is Map.
	Schema *Object
	// Enum lists the allowed values.
	Enum []any
	// Validate runs after casting.
	Validate ValidateFunc
	// Default is a value or a DefaultFunc, applied when the path is empty.
	Default any
	// Required reports a missing value as an issue.
	Required bool
	// Meta carries arbitrary extra metadata through to PathInfo.
	Meta map[string]any
}

func (*Leaf) descriptor() {}

// Embed declares a nested object leaf shaped like s.
func Embed(s *Schema) *Leaf {
	return &Leaf{Type: Map, Schema: cloneObject(s.root)}
}

func cloneDescriptor(d Descriptor) Descriptor {
	switch n := d.(type) {
	case *Object:
		return cloneObject(n)
	case *Array:
		if n == nil {
			return n
		}
		return &Array{Elem: cloneDescriptor(n.Elem)}
	case *Leaf:
		if n == nil {
			return n
		}
		cp := *n
		cp.Type = cloneDescriptor(n.Type)
		cp.Schema = cloneObject(n.Schema)
		cp.Enum = slices.Clone(n.Enum)
		cp.Default = docpath.Clone(n.Default)
		if n.Meta != nil {
			cp.Meta = maps.Clone(n.Meta)
			for k, v := range cp.Meta {
				cp.Meta[k] = docpath.Clone(v)
			}
		}
		return &cp
	default:
		return d
	}
}

func cloneObject(o *Object) *Object {
	if o == nil {
		return nil
	}
	cp := &Object{Fields: make([]Field, len(o.Fields))}
	for i, f := range o.Fields {
		cp.Fields[i] = Field{Name: f.Name, Desc: cloneDescriptor(f.Desc)}
	}
	return cp
}
