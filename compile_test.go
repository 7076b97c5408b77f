package archetype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/archetype"
	"github.com/reoring/archetype/coerce"
)

func pathNames(s *archetype.Schema) []string {
	var out []string
	for _, p := range s.Paths() {
		out = append(out, p.Path)
	}
	return out
}

func TestCompile_NestedObjectRegistersImplicitParent(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("a", archetype.NewObject(
			archetype.F("b", &archetype.Leaf{Type: archetype.String}),
		)),
	))

	ps := s.Paths()
	require.Len(t, ps, 2)
	assert.Equal(t, "a", ps[0].Path)
	assert.Equal(t, archetype.TagObject, ps[0].Tag)
	require.NotNil(t, ps[0].Schema)
	assert.Equal(t, []string{"b"}, ps[0].Schema.Names())

	assert.Equal(t, "a.b", ps[1].Path)
	assert.Equal(t, archetype.TagScalar, ps[1].Tag)
	assert.Equal(t, archetype.String, ps[1].Kind)
}

func TestCompile_ArraySugarRegistersElement(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("a", &archetype.Leaf{Type: archetype.ArrayOf(&archetype.Leaf{Type: archetype.Number})}),
	))

	arr, ok := s.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, archetype.TagArray, arr.Tag)

	elem, ok := s.Lookup("a.$")
	require.True(t, ok)
	assert.Equal(t, archetype.TagScalar, elem.Tag)
	assert.Equal(t, archetype.Number, elem.Kind)
	assert.True(t, elem.HasWildcard())
}

func TestCompile_ArrayLeafMetadataStaysOnArrayPath(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("tags", &archetype.Leaf{
			Type:     archetype.ArrayOf(archetype.String),
			Enum:     []any{"x", "y"},
			Required: true,
			Meta:     map[string]any{"label": "Tags"},
		}),
	))

	arr, _ := s.Lookup("tags")
	assert.Equal(t, []any{"x", "y"}, arr.Enum)
	assert.True(t, arr.Required)
	assert.Equal(t, "Tags", arr.Meta["label"])

	elem, _ := s.Lookup("tags.$")
	assert.Nil(t, elem.Enum)
	assert.False(t, elem.Required)
}

func TestCompile_Shapes(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("items", archetype.ArrayOf(archetype.NewObject(
			archetype.F("price", archetype.Number),
		))),
		archetype.F("matrix", archetype.ArrayOf(archetype.ArrayOf(archetype.Integer))),
		archetype.F("bag", archetype.ArrayOf(nil)),
		archetype.F("blob", archetype.Any),
		archetype.F("meta", archetype.Map),
	))

	assert.Equal(t, []string{
		"items", "items.$", "items.$.price",
		"matrix", "matrix.$", "matrix.$.$",
		"bag", "bag.$",
		"blob",
		"meta",
	}, pathNames(s))

	tags := map[string]archetype.Tag{}
	for _, p := range s.Paths() {
		tags[p.Path] = p.Tag
	}
	assert.Equal(t, archetype.TagObject, tags["items.$"])
	assert.Equal(t, archetype.TagArray, tags["matrix.$"])
	assert.Equal(t, archetype.TagScalar, tags["matrix.$.$"])
	assert.Equal(t, archetype.TagUnsampled, tags["bag.$"])
	assert.Equal(t, archetype.TagAny, tags["blob"])
	assert.Equal(t, archetype.TagObject, tags["meta"])

	meta, _ := s.Lookup("meta")
	assert.Nil(t, meta.Schema, "a bare Map is free-form")
}

func TestCompile_LeafWithSchemaCompilesChildren(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("address", &archetype.Leaf{
			Type:     archetype.Map,
			Schema:   archetype.NewObject(archetype.F("city", archetype.String)),
			Required: true,
		}),
	))
	assert.Equal(t, []string{"address", "address.city"}, pathNames(s))
	addr, _ := s.Lookup("address")
	assert.NotNil(t, addr.Schema)
	assert.True(t, addr.Required)
}

func TestCompile_Embed(t *testing.T) {
	address := archetype.MustCompile(archetype.NewObject(
		archetype.F("street", archetype.String),
		archetype.F("zip", archetype.Integer),
	))
	user := archetype.MustCompile(archetype.NewObject(
		archetype.F("name", archetype.String),
		archetype.F("home", archetype.Embed(address)),
	))
	assert.Equal(t, []string{"name", "home", "home.street", "home.zip"}, pathNames(user))
}

func TestCompile_Errors(t *testing.T) {
	cases := map[string]*archetype.Object{
		"nil field":      archetype.NewObject(archetype.F("a", nil)),
		"empty name":     archetype.NewObject(archetype.F("", archetype.String)),
		"dotted name":    archetype.NewObject(archetype.F("a.b", archetype.String)),
		"dollar name":    archetype.NewObject(archetype.F("$a", archetype.String)),
		"duplicate":      archetype.NewObject(archetype.F("a", archetype.String), archetype.F("a", archetype.Number)),
		"leaf no type":   archetype.NewObject(archetype.F("a", &archetype.Leaf{})),
		"unknown kind":   archetype.NewObject(archetype.F("a", archetype.Kind("email"))),
		"schema no map":  archetype.NewObject(archetype.F("a", &archetype.Leaf{Type: archetype.String, Schema: archetype.NewObject()})),
		"nested in leaf": archetype.NewObject(archetype.F("a", &archetype.Leaf{Type: &archetype.Leaf{Type: archetype.String}})),
	}
	for name, root := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := archetype.Compile(root)
			assert.ErrorIs(t, err, archetype.ErrInvalidDescriptor)
		})
	}

	_, err := archetype.Compile(nil)
	assert.ErrorIs(t, err, archetype.ErrInvalidDescriptor)
}

func TestCompile_CustomKind(t *testing.T) {
	reg := coerce.New().Register("email", func(v any) (any, error) { return v, nil })
	s, err := archetype.Compile(archetype.NewObject(archetype.F("contact", archetype.Kind("email"))), archetype.WithCoercers(reg))
	require.NoError(t, err)

	info, ok := s.Lookup("contact")
	require.True(t, ok)
	assert.Equal(t, archetype.Kind("email"), info.Kind)
}

func TestCompile_CopiesInput(t *testing.T) {
	root := archetype.NewObject(archetype.F("a", archetype.String))
	s := archetype.MustCompile(root)

	root.Fields[0].Name = "changed"
	root.Fields = append(root.Fields, archetype.F("b", archetype.Number))
	assert.Equal(t, []string{"a"}, pathNames(s))

	d := s.Descriptor()
	d.Fields[0].Name = "zzz"
	assert.Equal(t, []string{"a"}, pathNames(s))
}
