package archetype

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeInvalidType      = "invalid_type"      // wrong container kind at a path
	CodeInvalidCast      = "invalid_cast"      // leaf failed type conversion
	CodeInvalidEnum      = "invalid_enum"      // value outside the declared set
	CodeCustomValidation = "custom_validation" // caller validator returned an error
	CodeRequired         = "required"          // required path missing
)

var (
	// ErrNilDocument is returned by Cast for a nil document.
	ErrNilDocument = errors.New("archetype: can't cast nil document")
	// ErrNotObject is returned by CastValue when the input is not a mapping.
	ErrNotObject = errors.New("archetype: document is not an object")
	// ErrMixedProjection is returned for projections mixing inclusion and exclusion.
	ErrMixedProjection = errors.New("archetype: can't mix inclusive and exclusive in projection")
)

// Issue is a single failure recorded at a concrete document path.
type Issue struct {
	Path    string // Dotted path with real array indices (for example: items.2.price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
}

// Issues aggregates every failure of one cast and implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_cast at age: cannot cast "x" to number
		fmt.Fprintf(b, "%s at %s: %s", it.Code, it.Path, it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As can reach them.
func (iss Issues) Unwrap() []error {
	out := make([]error, 0, len(iss))
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// HasError reports whether any issue was recorded.
func (iss Issues) HasError() bool { return len(iss) > 0 }

// MarkError records err at path under code.
func (iss *Issues) MarkError(path, code string, err error) {
	*iss = append(*iss, IssueAt(path, code, err))
}

// Merge appends other to iss.
func (iss *Issues) Merge(other Issues) {
	if len(other) == 0 {
		return
	}
	*iss = append(*iss, other...)
}

// ByPath groups issues by path.
func (iss Issues) ByPath() map[string][]Issue {
	out := make(map[string][]Issue, len(iss))
	for _, it := range iss {
		out[it.Path] = append(out[it.Path], it)
	}
	return out
}

// Paths lists the distinct issue paths in first-seen order.
func (iss Issues) Paths() []string {
	seen := make(map[string]struct{}, len(iss))
	var out []string
	for _, it := range iss {
		if _, ok := seen[it.Path]; ok {
			continue
		}
		seen[it.Path] = struct{}{}
		out = append(out, it.Path)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// messageError carries a translated message while still matching the
// sentinel it stands for.
type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.kind }

// Causes attached to the issues the package produces itself.
var (
	ErrExpectedObject = errors.New("expected object")
	ErrNotInEnum      = errors.New("value not in enum")
	ErrRequired       = errors.New("required value missing")
)
