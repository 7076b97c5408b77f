package rules_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/archetype"
	"github.com/reoring/archetype/rules"
)

func orderSchema(t *testing.T) *archetype.Schema {
	t.Helper()
	s, err := archetype.Compile(archetype.NewObject(
		archetype.F("status", archetype.String),
		archetype.F("total", archetype.Number),
		archetype.F("note", &archetype.Leaf{
			Type: archetype.String,
			Validate: rules.If("status", rules.Eq, "rejected").Then(rules.NonBlank()),
		}),
		archetype.F("items", &archetype.Leaf{
			Type: archetype.ArrayOf(archetype.NewObject(
				archetype.F("sku", archetype.String),
				archetype.F("qty", archetype.Integer),
			)),
			Validate: rules.All(rules.AtLeastOne(), rules.UniqueBy("sku")),
		}),
	))
	require.NoError(t, err)
	return s
}

func TestRules_Order(t *testing.T) {
	s := orderSchema(t)

	_, err := s.Cast(map[string]any{
		"status": "open",
		"note":   " ",
		"items":  []any{map[string]any{"sku": "a"}, map[string]any{"sku": "b"}},
	}, nil)
	require.NoError(t, err, "note only matters when rejected")

	_, err = s.Cast(map[string]any{
		"status": "rejected",
		"note":   " ",
		"items":  []any{map[string]any{"sku": "a"}, map[string]any{"sku": "a"}},
	}, nil)
	iss, ok := archetype.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{"note", "items"}, iss.Paths())
	assert.ErrorIs(t, err, rules.ErrBlank)
	assert.ErrorIs(t, err, rules.ErrDuplicate)

	_, err = s.Cast(map[string]any{"items": []any{}}, nil)
	assert.ErrorIs(t, err, rules.ErrTooShort)
}

func TestRules_Conditionals(t *testing.T) {
	fail := errors.New("fail")
	always := func(any, archetype.PathInfo, map[string]any) error { return fail }
	doc := map[string]any{
		"total": 120.0,
		"kind":  "b2b",
		"lines": []any{map[string]any{"qty": int64(1)}, map[string]any{"qty": int64(9)}},
	}

	cases := []struct {
		name string
		cond rules.Conditional
		want bool
	}{
		{"eq numeric across types", rules.If("total", rules.Eq, 120), true},
		{"ne", rules.If("kind", rules.Ne, "b2c"), true},
		{"gt", rules.If("total", rules.Gt, 100), true},
		{"le", rules.If("total", rules.Le, 100), false},
		{"missing path", rules.If("nope", rules.Eq, nil), false},
		{"ordered on strings", rules.If("kind", rules.Lt, "z"), false},
		{"wildcard any element", rules.If("lines.$.qty", rules.Ge, 5), true},
		{"and", rules.If("total", rules.Gt, 100).And(rules.If("kind", rules.Eq, "b2b")), true},
		{"and fails", rules.IfAll(rules.If("total", rules.Gt, 100), rules.If("kind", rules.Eq, "b2c")), false},
		{"or", rules.If("total", rules.Lt, 0).Or(rules.If("kind", rules.Eq, "b2b")), true},
		{"or fails", rules.IfAny(rules.If("total", rules.Lt, 0)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cond.Then(always)(nil, archetype.PathInfo{}, doc)
			if tc.want {
				assert.ErrorIs(t, err, fail)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRules_Combinators(t *testing.T) {
	a := errors.New("a")
	b := errors.New("b")
	failWith := func(err error) archetype.ValidateFunc {
		return func(any, archetype.PathInfo, map[string]any) error { return err }
	}
	pass := failWith(nil)

	err := rules.All(failWith(a), nil, pass, failWith(b))(nil, archetype.PathInfo{}, nil)
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)
	assert.NoError(t, rules.All()(nil, archetype.PathInfo{}, nil))

	assert.NoError(t, rules.Any(failWith(a), pass)(nil, archetype.PathInfo{}, nil))
	assert.Equal(t, a, rules.Any(failWith(a), failWith(b))(nil, archetype.PathInfo{}, nil))
}

func TestRules_UniqueByNestedKey(t *testing.T) {
	fn := rules.UniqueBy("ref.id")
	err := fn([]any{
		map[string]any{"ref": map[string]any{"id": 1}},
		map[string]any{"other": true},
		map[string]any{"ref": map[string]any{"id": 1}},
	}, archetype.PathInfo{}, nil)
	require.ErrorIs(t, err, rules.ErrDuplicate)
	assert.Contains(t, err.Error(), "ref.id=1 at 2 (first at 0)")

	assert.NoError(t, fn("not an array", archetype.PathInfo{}, nil))
}

func TestBuiltins(t *testing.T) {
	b := rules.Builtins()
	require.Contains(t, b, "atLeastOne")
	require.Contains(t, b, "nonBlank")
	assert.ErrorIs(t, b["atLeastOne"]([]any{}, archetype.PathInfo{}, nil), rules.ErrTooShort)
	assert.NoError(t, b["nonBlank"]("x", archetype.PathInfo{}, nil))
}
