// Package source decodes and encodes documents for archetype.Schema.Cast.
//
// Every format decodes into JSON-like values: map[string]any, []any and
// scalars. JSON numbers stay json.Number so coercers see the original text.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	MsgPack Format = "msgpack"
)

var (
	// ErrEmpty is returned when the input holds no document.
	ErrEmpty = errors.New("source: empty input")
	// ErrNotObject is returned by DecodeDocument when the root is not a mapping.
	ErrNotObject = errors.New("source: document root is not an object")
	// ErrUnknownFormat is returned for unsupported format names.
	ErrUnknownFormat = errors.New("source: unknown format")
)

// ParseFormat resolves a format name. Matching is case-insensitive.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mp", "mpk":
		return MsgPack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: no extension in %q", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Decode reads a single document from r.
func Decode(r io.Reader, f Format) (any, error) {
	switch f {
	case JSON:
		return decodeJSON(r)
	case YAML:
		return decodeYAML(r)
	case MsgPack:
		return decodeMsgPack(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// DecodeDocument is Decode for inputs whose root must be a mapping.
func DecodeDocument(r io.Reader, f Format) (map[string]any, error) {
	v, err := Decode(r, f)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}
	return doc, nil
}

func decodeJSON(r io.Reader) (any, error) {
	br, err := nonEmpty(r)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(br)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	if dec.More() {
		return nil, errors.New("source: decode json: trailing data after document")
	}
	return v, nil
}

func decodeYAML(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	return normalize(v), nil
}

func decodeMsgPack(r io.Reader) (any, error) {
	br, err := nonEmpty(r)
	if err != nil {
		return nil, err
	}
	dec := msgpack.NewDecoder(br)
	dec.UseLooseInterfaceDecoding(true)
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("source: decode msgpack: %w", err)
	}
	return normalize(v), nil
}

// nonEmpty fails with ErrEmpty when r has no bytes left.
func nonEmpty(r io.Reader) (*bufio.Reader, error) {
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	return br, nil
}
