package docpath

// Match is one concrete slot reached by a pattern path.
type Match struct {
	// Path is the concrete path with real array indices.
	Path string
	// Value is the current value, nil when the slot is empty.
	Value any
	// Found is false when the final key is absent from its parent mapping.
	Found bool

	set func(any)
}

// Set stores v into the slot.
func (m Match) Set(v any) {
	if m.set != nil {
		m.set(v)
	}
}

// Resolve reads pattern against doc. Each wildcard segment expands across
// every element of the array found there, so the result is flat: one Match
// per concrete path, in document order. A slot whose parent is missing or has
// the wrong container kind yields no match; a missing final key yields a
// Match with Found == false.
func Resolve(doc any, pattern string) []Match {
	var out []Match
	walk(doc, Split(pattern), "", false, &out)
	return out
}

// ResolveCreate is Resolve, except that missing or nil intermediate mappings
// addressed by a plain key are created on the way down. Intermediate arrays
// are never created.
func ResolveCreate(doc map[string]any, pattern string) []Match {
	var out []Match
	walk(doc, Split(pattern), "", true, &out)
	return out
}

func walk(cur any, segs []string, path string, create bool, out *[]Match) {
	if len(segs) == 0 {
		return
	}
	seg, rest := segs[0], segs[1:]
	if seg == Wildcard {
		arr, ok := cur.([]any)
		if !ok {
			return
		}
		for i := range arr {
			p := JoinIndex(path, i)
			if len(rest) == 0 {
				idx := i
				*out = append(*out, Match{Path: p, Value: arr[i], Found: true, set: func(v any) { arr[idx] = v }})
				continue
			}
			walk(arr[i], rest, p, create, out)
		}
		return
	}
	obj, ok := cur.(map[string]any)
	if !ok {
		return
	}
	p := Join(path, seg)
	v, found := obj[seg]
	if len(rest) == 0 {
		*out = append(*out, Match{Path: p, Value: v, Found: found, set: func(nv any) { obj[seg] = nv }})
		return
	}
	if v == nil && create && rest[0] != Wildcard {
		v = map[string]any{}
		obj[seg] = v
	}
	walk(v, rest, p, create, out)
}
