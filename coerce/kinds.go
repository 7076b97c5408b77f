package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	errNotScalar  = errors.New("not a scalar")
	errNotFinite  = errors.New("not a finite number")
	errFraction   = errors.New("has a fractional part")
	errBadBoolean = errors.New("not a boolean literal")
)

// floater matches json.Number from encoding/json and goccy/go-json.
type floater interface {
	Float64() (float64, error)
	String() string
}

func toString(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return t.String(), nil
	case floater:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	if i, ok := asInt64(v); ok {
		return strconv.FormatInt(i, 10), nil
	}
	if u, ok := asUint64(v); ok {
		return strconv.FormatUint(u, 10), nil
	}
	return nil, errNotScalar
}

func toNumber(v any) (any, error) {
	f, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotFinite
	}
	return f, nil
}

func toInteger(v any) (any, error) {
	if i, ok := asInt64(v); ok {
		return i, nil
	}
	if u, ok := asUint64(v); ok {
		if u > math.MaxInt64 {
			return nil, strconv.ErrRange
		}
		return int64(u), nil
	}
	var text string
	switch t := v.(type) {
	case string:
		text = strings.TrimSpace(t)
	case floater:
		text = t.String()
	}
	if text != "" {
		i, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return i, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return nil, strconv.ErrRange
		}
	}
	f, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotFinite
	}
	if f != math.Trunc(f) {
		return nil, errFraction
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= 0x1p63 || f < -0x1p63 {
		return nil, strconv.ErrRange
	}
	return int64(f), nil
}

func toBoolean(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return nil, errBadBoolean
	}
	f, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	switch f {
	case 1:
		return true, nil
	case 0:
		return false, nil
	}
	return nil, errBadBoolean
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func toDate(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		var firstErr error
		for _, layout := range dateLayouts {
			tm, err := time.Parse(layout, s)
			if err == nil {
				return tm, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, firstErr
	case bool:
		return nil, errNotScalar
	}
	f, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotFinite
	}
	return time.UnixMilli(int64(f)).UTC(), nil
}

func toUUID(v any) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case [16]byte:
		return uuid.UUID(t), nil
	case string:
		return uuid.Parse(strings.TrimSpace(t))
	case []byte:
		if len(t) == 16 {
			return uuid.FromBytes(t)
		}
		return uuid.ParseBytes(t)
	}
	return nil, errNotScalar
}

func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case floater:
		return t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, strconv.ErrSyntax
		}
		return strconv.ParseFloat(s, 64)
	case bool:
		return 0, errNotScalar
	}
	if i, ok := asInt64(v); ok {
		return float64(i), nil
	}
	if u, ok := asUint64(v); ok {
		return float64(u), nil
	}
	return 0, errNotScalar
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func asUint64(v any) (uint64, bool) {
	switch t := v.(type) {
	case uint:
		return uint64(t), true
	case uint8:
		return uint64(t), true
	case uint16:
		return uint64(t), true
	case uint32:
		return uint64(t), true
	case uint64:
		return t, true
	}
	return 0, false
}
