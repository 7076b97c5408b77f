package archetype

import (
	"fmt"

	js "github.com/reoring/archetype/jsonschema"
)

// JSONSchema projects the descriptor tree into a JSON Schema document.
// Unknown keys are pruned rather than rejected by Cast, so objects do not set
// additionalProperties. Custom kinds export as unconstrained schemas.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	out, err := objectSchema(s.root)
	if err != nil {
		return nil, err
	}
	out.SchemaURI = js.Draft
	return out, nil
}

func objectSchema(o *Object) (*js.Schema, error) {
	out := &js.Schema{Type: "object"}
	if len(o.Fields) > 0 {
		out.Properties = make(map[string]*js.Schema, len(o.Fields))
	}
	for _, f := range o.Fields {
		child, err := descriptorSchema(f.Desc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out.Properties[f.Name] = child
		if l, ok := f.Desc.(*Leaf); ok && l.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out, nil
}

func descriptorSchema(d Descriptor) (*js.Schema, error) {
	switch n := d.(type) {
	case Kind:
		return kindSchema(n), nil
	case *Object:
		return objectSchema(n)
	case *Array:
		out := &js.Schema{Type: "array"}
		if n.Elem != nil {
			items, err := descriptorSchema(n.Elem)
			if err != nil {
				return nil, err
			}
			out.Items = items
		}
		return out, nil
	case *Leaf:
		var (
			out *js.Schema
			err error
		)
		if n.Schema != nil {
			out, err = objectSchema(n.Schema)
		} else {
			out, err = descriptorSchema(n.Type)
		}
		if err != nil {
			return nil, err
		}
		out.Enum = n.Enum
		switch n.Default.(type) {
		case nil, DefaultFunc, func() any:
		default:
			out.Default = n.Default
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported descriptor %T", ErrInvalidDescriptor, d)
	}
}

func kindSchema(k Kind) *js.Schema {
	switch k {
	case String:
		return &js.Schema{Type: "string"}
	case Number:
		return &js.Schema{Type: "number"}
	case Integer:
		return &js.Schema{Type: "integer"}
	case Boolean:
		return &js.Schema{Type: "boolean"}
	case Date:
		return &js.Schema{Type: "string", Format: "date-time"}
	case UUID:
		return &js.Schema{Type: "string", Format: "uuid"}
	case Map:
		return &js.Schema{Type: "object"}
	default:
		return &js.Schema{}
	}
}
