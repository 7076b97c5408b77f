package archetype

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/archetype/internal/docpath"
)

// Projection narrows which paths a cast touches. It is built by
// ParseProjection from a raw mask of path -> flag, where a positive flag
// includes the path and zero or a negative flag excludes it.
//
// Keys are matched against pattern paths with their "$" segments removed, so
// "items.name" and "items.$.name" address the same path.
type Projection struct {
	inclusive bool
	explicit  map[string]int
	implied   map[string]struct{}
}

// ParseProjection normalizes a raw projection. A nil mask keeps everything.
// Keys starting with "$" are ignored. Mixing positive and non-positive keys
// fails with ErrMixedProjection.
func ParseProjection(raw map[string]int) (*Projection, error) {
	p := &Projection{inclusive: true}
	if raw == nil {
		return p, nil
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if strings.HasPrefix(k, "$") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p.explicit = make(map[string]int, len(keys))
	p.implied = map[string]struct{}{}
	mode := 0
	for _, k := range keys {
		v := raw[k]
		norm := docpath.Strip(k)
		if v > 0 {
			if mode < 0 {
				return nil, fmt.Errorf("%w: %q", ErrMixedProjection, k)
			}
			mode = 1
			for _, prefix := range docpath.Prefixes(norm) {
				p.implied[prefix] = struct{}{}
			}
		} else {
			if mode > 0 {
				return nil, fmt.Errorf("%w: %q", ErrMixedProjection, k)
			}
			mode = -1
		}
		p.explicit[norm] = v
	}
	p.inclusive = mode <= 0
	return p, nil
}

// Inclusive reports whether the projection keeps everything except explicitly
// excluded paths. When false only included paths and their descendants are
// kept.
func (p *Projection) Inclusive() bool { return p == nil || p.inclusive }

// Skip reports whether the pattern path falls outside the projection.
func (p *Projection) Skip(pattern string) bool {
	if p == nil || len(p.explicit) == 0 {
		return false
	}
	path := docpath.Strip(pattern)
	if path == "" {
		return false
	}
	if p.inclusive {
		for _, prefix := range docpath.Prefixes(path) {
			if _, ok := p.explicit[prefix]; ok {
				return true
			}
		}
		return false
	}
	if _, ok := p.implied[path]; ok {
		return false
	}
	for _, prefix := range docpath.Prefixes(path) {
		if _, ok := p.explicit[prefix]; ok {
			return false
		}
	}
	return true
}

// Include builds a raw projection keeping only paths.
func Include(paths ...string) map[string]int {
	out := make(map[string]int, len(paths))
	for _, p := range paths {
		out[p] = 1
	}
	return out
}

// Exclude builds a raw projection dropping paths.
func Exclude(paths ...string) map[string]int {
	out := make(map[string]int, len(paths))
	for _, p := range paths {
		out[p] = 0
	}
	return out
}
