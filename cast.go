package archetype

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/reoring/archetype/coerce"
	"github.com/reoring/archetype/internal/docpath"
)

// Cast coerces doc in place against the schema and returns it.
//
// Keys the schema does not know, or the projection excludes, are deleted;
// declared scalars are converted; defaults are applied before casting and
// required, enum and custom checks run after it. Every failure is collected
// and returned at once as Issues. A nil doc or a malformed projection fails
// immediately, before doc is touched.
//
// doc is mutated even when Cast fails. Use CloneDocument first to keep the
// original.
func (s *Schema) Cast(doc map[string]any, projection map[string]int) (map[string]any, error) {
	proj, err := ParseProjection(projection)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNilDocument
	}
	s.applyDefaults(doc, proj)

	var iss Issues
	iss.Merge(s.visitObject(doc, proj, "", ""))
	iss.Merge(s.checkRequired(doc, proj))
	iss.Merge(s.runValidation(doc, proj))
	if iss.HasError() {
		s.cfg.logger.Debug("cast failed", "issues", len(iss))
		return nil, iss
	}
	return doc, nil
}

// CastValue is Cast for a decoded value of unknown shape. It fails with
// ErrNilDocument or ErrNotObject unless v is a mapping.
func (s *Schema) CastValue(v any, projection map[string]int) (map[string]any, error) {
	if v == nil {
		return nil, ErrNilDocument
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotObject, v)
	}
	return s.Cast(doc, projection)
}

// CloneDocument deep-copies the maps and slices of a decoded document.
func CloneDocument(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	return docpath.Clone(doc).(map[string]any)
}

// visitObject casts the mapping found at a concrete path. pattern is the same
// path with array indices replaced by "$".
func (s *Schema) visitObject(v any, proj *Projection, path, pattern string) Issues {
	var iss Issues
	obj, ok := v.(map[string]any)
	if !ok {
		iss.MarkError(path, CodeInvalidType, s.typeError("object", v))
		return iss
	}
	if pattern != "" {
		if info, ok := s.paths.lookup(pattern); ok && info.Schema == nil {
			return nil
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		childPattern := docpath.Join(pattern, key)
		childPath := docpath.Join(path, key)
		info, ok := s.paths.lookup(childPattern)
		if !ok || proj.Skip(childPattern) {
			s.cfg.logger.Debug("prune key", "path", childPath)
			delete(obj, key)
			continue
		}
		switch info.Tag {
		case TagAny, TagUnsampled:
		case TagArray:
			var sub Issues
			obj[key], sub = s.visitArray(obj[key], proj, childPath, childPattern)
			iss.Merge(sub)
		case TagObject:
			if obj[key] == nil {
				delete(obj, key)
				continue
			}
			iss.Merge(s.visitObject(obj[key], proj, childPath, childPattern))
		case TagScalar:
			if err := s.cfg.coercers.Into(obj, key, string(info.Kind)); err != nil {
				iss.MarkError(childPath, CodeInvalidCast, s.castError(err))
			}
		}
	}
	return iss
}

// visitArray casts every element of the array at path. A non-array value is
// treated as a one-element array.
func (s *Schema) visitArray(v any, proj *Projection, path, pattern string) (any, Issues) {
	elemPattern := docpath.Join(pattern, docpath.Wildcard)
	info, ok := s.paths.lookup(elemPattern)
	if !ok || info.Tag == TagAny || info.Tag == TagUnsampled {
		s.cfg.logger.Debug("skip elements", "path", path)
		return v, nil
	}
	if v == nil {
		return nil, nil
	}
	arr, isArr := docpath.AsSlice(v)
	if !isArr {
		arr = []any{v}
	}

	var iss Issues
	for i := range arr {
		elemPath := docpath.JoinIndex(path, i)
		switch info.Tag {
		case TagArray:
			var sub Issues
			arr[i], sub = s.visitArray(arr[i], proj, elemPath, elemPattern)
			iss.Merge(sub)
		case TagObject:
			if arr[i] == nil {
				continue
			}
			iss.Merge(s.visitObject(arr[i], proj, elemPath, elemPattern))
		case TagScalar:
			out, err := s.cfg.coercers.Cast(string(info.Kind), arr[i])
			if err != nil {
				iss.MarkError(elemPath, CodeInvalidCast, s.castError(err))
				continue
			}
			arr[i] = out
		}
	}
	return arr, iss
}

func (s *Schema) typeError(expected string, got any) error {
	msg := s.cfg.tr.Message(CodeInvalidType, map[string]string{"expected": expected, "got": kindOf(got)})
	return &messageError{msg: msg, kind: ErrExpectedObject}
}

// castError translates a coercion failure. The *coerce.Error stays
// reachable through errors.As for the underlying reason.
func (s *Schema) castError(err error) error {
	var ce *coerce.Error
	if !errors.As(err, &ce) {
		return err
	}
	msg := s.cfg.tr.Message(CodeInvalidCast, map[string]string{"value": valueText(ce.Value), "kind": ce.Kind})
	return &messageError{msg: msg, kind: ce}
}

func valueText(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case map[string]any:
		return "object"
	}
	if _, ok := docpath.AsSlice(v); ok {
		return "array"
	}
	return fmt.Sprint(v)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := docpath.AsSlice(v); ok {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}
