package archetype

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/reoring/archetype/internal/docpath"
)

// runValidation applies enum and custom checks to every compiled path. A
// pattern with "$" segments resolves to one match per element, so Validate
// runs once per element there and once on the whole value otherwise.
func (s *Schema) runValidation(doc map[string]any, proj *Projection) Issues {
	var iss Issues
	s.paths.each(func(info *PathInfo) {
		if info.Enum == nil && info.Validate == nil {
			return
		}
		if proj.Skip(info.Path) {
			return
		}
		for _, m := range docpath.Resolve(doc, info.Path) {
			if m.Value == nil {
				continue
			}
			if info.Enum != nil {
				s.checkEnum(&iss, info, m)
			}
			if info.Validate != nil {
				if err := info.Validate(m.Value, info.clone(), doc); err != nil {
					iss.MarkError(m.Path, CodeCustomValidation, err)
				}
			}
		}
	})
	return iss
}

func (s *Schema) checkEnum(iss *Issues, info *PathInfo, m docpath.Match) {
	if arr, ok := docpath.AsSlice(m.Value); ok {
		for i, v := range arr {
			if !enumContains(info.Enum, v) {
				iss.MarkError(docpath.JoinIndex(m.Path, i), CodeInvalidEnum, s.enumError(info.Enum, v))
			}
		}
		return
	}
	if !enumContains(info.Enum, m.Value) {
		iss.MarkError(m.Path, CodeInvalidEnum, s.enumError(info.Enum, m.Value))
	}
}

func (s *Schema) enumError(enum []any, v any) error {
	allowed := make([]string, len(enum))
	for i, e := range enum {
		allowed[i] = fmt.Sprintf("%#v", e)
	}
	msg := s.cfg.tr.Message(CodeInvalidEnum, map[string]string{
		"value":   fmt.Sprintf("%#v", v),
		"allowed": "[" + strings.Join(allowed, ", ") + "]",
	})
	return &messageError{msg: msg, kind: ErrNotInEnum}
}

// enumContains compares numbers by value, so an enum declared with ints
// matches the float64 a number cast produces.
func enumContains(enum []any, v any) bool {
	for _, e := range enum {
		if enumEqual(e, v) {
			return true
		}
	}
	return false
}

func enumEqual(a, b any) bool {
	if fa, ok := numeric(a); ok {
		fb, ok := numeric(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

func numeric(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
