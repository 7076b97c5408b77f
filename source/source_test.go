package source_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reoring/archetype/source"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]source.Format{
		"json": source.JSON, "JSON": source.JSON,
		"yaml": source.YAML, "yml": source.YAML,
		"msgpack": source.MsgPack, "mp": source.MsgPack,
	}
	for in, want := range cases {
		got, err := source.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := source.ParseFormat("toml")
	assert.ErrorIs(t, err, source.ErrUnknownFormat)

	f, err := source.FormatFromPath("dir/doc.yml")
	require.NoError(t, err)
	assert.Equal(t, source.YAML, f)
	_, err = source.FormatFromPath("README")
	assert.ErrorIs(t, err, source.ErrUnknownFormat)
}

func TestDecode_JSONKeepsNumberText(t *testing.T) {
	doc, err := source.DecodeDocument(strings.NewReader(`{"n": 12345678901234567890, "f": 1.5, "a": [1, "x"]}`), source.JSON)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), doc["n"])
	assert.Equal(t, json.Number("1.5"), doc["f"])
	assert.Equal(t, []any{json.Number("1"), "x"}, doc["a"])
}

func TestDecode_YAMLNormalizesKeys(t *testing.T) {
	in := "name: x\nports:\n  80: http\n  443: https\nlist:\n  - {a: 1}\n"
	doc, err := source.DecodeDocument(strings.NewReader(in), source.YAML)
	require.NoError(t, err)
	assert.Equal(t, "x", doc["name"])
	assert.Equal(t, map[string]any{"80": "http", "443": "https"}, doc["ports"])
	assert.Equal(t, []any{map[string]any{"a": 1}}, doc["list"])
}

func TestDecode_MsgPack(t *testing.T) {
	b, err := msgpack.Marshal(map[string]any{"a": 1, "b": []any{"x", true}})
	require.NoError(t, err)

	doc, err := source.DecodeDocument(bytes.NewReader(b), source.MsgPack)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc["a"])
	assert.Equal(t, []any{"x", true}, doc["b"])
}

func TestDecode_Failures(t *testing.T) {
	for _, f := range []source.Format{source.JSON, source.YAML, source.MsgPack} {
		_, err := source.Decode(strings.NewReader(""), f)
		assert.ErrorIs(t, err, source.ErrEmpty, string(f))
	}

	_, err := source.DecodeDocument(strings.NewReader(`[1,2]`), source.JSON)
	assert.ErrorIs(t, err, source.ErrNotObject)

	_, err = source.Decode(strings.NewReader(`{} {}`), source.JSON)
	assert.Error(t, err)

	_, err = source.Decode(strings.NewReader(`{`), source.JSON)
	assert.Error(t, err)

	_, err = source.Decode(strings.NewReader(`{}`), source.Format("toml"))
	assert.ErrorIs(t, err, source.ErrUnknownFormat)
}

func TestEncode(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := map[string]any{"id": id, "at": at, "n": json.Number("7"), "tags": []any{"a"}}

	var buf bytes.Buffer
	require.NoError(t, source.Encode(&buf, doc, source.JSON, false))
	assert.JSONEq(t, `{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","at":"2024-01-02T03:04:05Z","n":7,"tags":["a"]}`, buf.String())

	buf.Reset()
	require.NoError(t, source.Encode(&buf, doc, source.YAML, true))
	back, err := source.DecodeDocument(&buf, source.YAML)
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", back["id"])
	assert.Equal(t, 7, back["n"])
	assert.Equal(t, []any{"a"}, back["tags"])

	buf.Reset()
	require.NoError(t, source.Encode(&buf, doc, source.MsgPack, false))
	back, err = source.DecodeDocument(&buf, source.MsgPack)
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", back["id"])
	assert.Equal(t, int64(7), back["n"])
}
