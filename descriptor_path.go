package archetype

import (
	"errors"
	"fmt"
	"slices"

	"github.com/reoring/archetype/internal/docpath"
)

// Descriptor trees are treated as persistent values: the helpers below copy
// the spine from the root down to the touched node and share every other
// subtree with their input.

var errEmptyPath = errors.New("archetype: empty descriptor path")

// getIn walks segs from d. Object fields are addressed by name; the element
// of an array (or of an array-typed leaf) by "$" or "0"; a nested-object
// leaf is entered through its Schema or its *Object type.
func getIn(d Descriptor, segs []string) (Descriptor, bool) {
	if len(segs) == 0 {
		return d, d != nil
	}
	seg, rest := segs[0], segs[1:]
	switch n := d.(type) {
	case *Object:
		child, ok := n.Lookup(seg)
		if !ok {
			return nil, false
		}
		return getIn(child, rest)
	case *Array:
		if !isElemSegment(seg) || n.Elem == nil {
			return nil, false
		}
		return getIn(n.Elem, rest)
	case *Leaf:
		if n.Schema != nil {
			return getIn(n.Schema, segs)
		}
		if isContainer(n.Type) {
			return getIn(n.Type, segs)
		}
	}
	return nil, false
}

// setIn returns a copy of d with v stored at segs. Missing intermediate
// objects are created.
func setIn(d Descriptor, segs []string, v Descriptor) (Descriptor, error) {
	if len(segs) == 0 {
		return v, nil
	}
	seg, rest := segs[0], segs[1:]
	switch n := d.(type) {
	case nil:
		child, err := setIn(nil, rest, v)
		if err != nil {
			return nil, err
		}
		return &Object{Fields: []Field{{Name: seg, Desc: child}}}, nil
	case *Object:
		var cur Descriptor
		i := n.index(seg)
		if i >= 0 {
			cur = n.Fields[i].Desc
		}
		child, err := setIn(cur, rest, v)
		if err != nil {
			return nil, err
		}
		cp := &Object{Fields: slices.Clone(n.Fields)}
		if i >= 0 {
			cp.Fields[i].Desc = child
		} else {
			cp.Fields = append(cp.Fields, Field{Name: seg, Desc: child})
		}
		return cp, nil
	case *Array:
		if !isElemSegment(seg) {
			return nil, fmt.Errorf("archetype: array element must be addressed by %q, got %q", docpath.Wildcard, seg)
		}
		elem, err := setIn(n.Elem, rest, v)
		if err != nil {
			return nil, err
		}
		return &Array{Elem: elem}, nil
	case *Leaf:
		cp := *n
		switch {
		case n.Schema != nil:
			sub, err := setIn(n.Schema, segs, v)
			if err != nil {
				return nil, err
			}
			obj, ok := sub.(*Object)
			if !ok {
				return nil, fmt.Errorf("archetype: cannot replace schema of %q", seg)
			}
			cp.Schema = obj
		case isContainer(n.Type):
			typ, err := setIn(n.Type, segs, v)
			if err != nil {
				return nil, err
			}
			cp.Type = typ
		default:
			return nil, fmt.Errorf("archetype: cannot descend into scalar leaf at %q", seg)
		}
		return &cp, nil
	default:
		return nil, fmt.Errorf("archetype: cannot descend into %v at %q", d, seg)
	}
}

// unsetIn returns a copy of d without segs. The second result is false when
// nothing was there, in which case d is returned as is.
func unsetIn(d Descriptor, segs []string) (Descriptor, bool) {
	if len(segs) == 0 {
		return d, false
	}
	seg, rest := segs[0], segs[1:]
	switch n := d.(type) {
	case *Object:
		i := n.index(seg)
		if i < 0 {
			return d, false
		}
		cp := &Object{Fields: slices.Clone(n.Fields)}
		if len(rest) == 0 {
			cp.Fields = slices.Delete(cp.Fields, i, i+1)
			return cp, true
		}
		child, ok := unsetIn(n.Fields[i].Desc, rest)
		if !ok {
			return d, false
		}
		cp.Fields[i].Desc = child
		return cp, true
	case *Array:
		if !isElemSegment(seg) || n.Elem == nil {
			return d, false
		}
		if len(rest) == 0 {
			return &Array{}, true
		}
		elem, ok := unsetIn(n.Elem, rest)
		if !ok {
			return d, false
		}
		return &Array{Elem: elem}, true
	case *Leaf:
		cp := *n
		switch {
		case n.Schema != nil:
			sub, ok := unsetIn(n.Schema, segs)
			if !ok {
				return d, false
			}
			cp.Schema = sub.(*Object)
		case isContainer(n.Type):
			typ, ok := unsetIn(n.Type, segs)
			if !ok {
				return d, false
			}
			cp.Type = typ
		default:
			return d, false
		}
		return &cp, true
	}
	return d, false
}

func isElemSegment(seg string) bool { return seg == docpath.Wildcard || seg == "0" }

func isContainer(d Descriptor) bool {
	switch d.(type) {
	case *Array, *Object:
		return true
	}
	return false
}
