package archetype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/archetype"
)

func TestDefaults_FillEmptySlots(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("status", &archetype.Leaf{Type: archetype.String, Default: "draft"}),
		archetype.F("count", &archetype.Leaf{Type: archetype.Integer, Default: "0"}),
		archetype.F("name", &archetype.Leaf{Type: archetype.String, Default: "anon"}),
	))
	doc, err := s.Cast(map[string]any{"status": nil, "name": "bob"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "draft", "count": int64(0), "name": "bob"}, doc)
}

func TestDefaults_FuncRunsPerSlot(t *testing.T) {
	n := 0
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("items", archetype.ArrayOf(archetype.NewObject(
			archetype.F("seq", &archetype.Leaf{Type: archetype.Integer, Default: archetype.DefaultFunc(func() any {
				n++
				return n
			})}),
		))),
	))
	doc, err := s.Cast(map[string]any{"items": []any{
		map[string]any{},
		map[string]any{"seq": 10},
		map[string]any{},
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"seq": int64(1)},
		map[string]any{"seq": int64(10)},
		map[string]any{"seq": int64(2)},
	}, doc["items"])
}

func TestDefaults_ValuesAreCopiedPerDocument(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("labels", &archetype.Leaf{Type: archetype.Map, Default: map[string]any{"env": "dev"}}),
	))
	first, err := s.Cast(map[string]any{}, nil)
	require.NoError(t, err)
	first["labels"].(map[string]any)["env"] = "prod"

	second, err := s.Cast(map[string]any{}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"env": "dev"}, second["labels"])
}

func TestDefaults_CreateIntermediateObjects(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("opts", archetype.NewObject(
			archetype.F("retry", archetype.NewObject(
				archetype.F("max", &archetype.Leaf{Type: archetype.Integer, Default: 3}),
			)),
		)),
	))
	doc, err := s.Cast(map[string]any{}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"opts": map[string]any{"retry": map[string]any{"max": int64(3)}},
	}, doc)
}

func TestDefaults_NeverCreateArrays(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("items", archetype.ArrayOf(archetype.NewObject(
			archetype.F("qty", &archetype.Leaf{Type: archetype.Integer, Default: 1}),
		))),
	))
	doc, err := s.Cast(map[string]any{}, nil)
	require.NoError(t, err)
	assert.Empty(t, doc)

	doc, err = s.Cast(map[string]any{"items": []any{map[string]any{}, map[string]any{"qty": "4"}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"qty": int64(1)},
		map[string]any{"qty": int64(4)},
	}, doc["items"])
}

func TestDefaults_RespectProjection(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("a", &archetype.Leaf{Type: archetype.String, Default: "x"}),
		archetype.F("b", &archetype.Leaf{Type: archetype.String, Default: "y"}),
	))
	doc, err := s.Cast(map[string]any{}, archetype.Exclude("a"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": "y"}, doc)
}

func TestRequired_ReportsMissingAndNil(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("id", &archetype.Leaf{Type: archetype.String, Required: true}),
		archetype.F("name", &archetype.Leaf{Type: archetype.String, Required: true}),
		archetype.F("note", archetype.String),
	))
	_, err := s.Cast(map[string]any{"name": nil}, nil)

	iss := mustIssues(t, err)
	assert.Equal(t, []string{"id", "name"}, iss.Paths())
	for _, it := range iss {
		assert.Equal(t, archetype.CodeRequired, it.Code)
		assert.Equal(t, "required property missing", it.Message)
	}
	assert.ErrorIs(t, err, archetype.ErrRequired)
}

func TestRequired_SatisfiedByDefault(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("id", &archetype.Leaf{Type: archetype.String, Required: true, Default: "generated"}),
	))
	doc, err := s.Cast(map[string]any{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "generated", doc["id"])
}

func TestRequired_SkippedOutsideProjection(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("id", &archetype.Leaf{Type: archetype.String, Required: true}),
		archetype.F("name", archetype.String),
	))
	doc, err := s.Cast(map[string]any{"name": "n"}, archetype.Include("name"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "n"}, doc)
}

func TestRequired_PerElement(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("items", archetype.ArrayOf(archetype.NewObject(
			archetype.F("id", &archetype.Leaf{Type: archetype.String, Required: true}),
		))),
	))
	_, err := s.Cast(map[string]any{"items": []any{
		map[string]any{"id": "a"},
		map[string]any{},
		map[string]any{"id": "c"},
	}}, nil)

	iss := mustIssues(t, err)
	assert.Equal(t, []string{"items.1.id"}, iss.Paths())
}

func TestRequired_NotReportedUnderMissingParent(t *testing.T) {
	s := archetype.MustCompile(archetype.NewObject(
		archetype.F("address", archetype.NewObject(
			archetype.F("city", &archetype.Leaf{Type: archetype.String, Required: true}),
		)),
	))
	_, err := s.Cast(map[string]any{}, nil)
	require.NoError(t, err)

	_, err = s.Cast(map[string]any{"address": map[string]any{}}, nil)
	iss := mustIssues(t, err)
	assert.Equal(t, []string{"address.city"}, iss.Paths())
}
