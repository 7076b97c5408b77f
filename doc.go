// Package archetype casts and validates loosely typed documents against a
// schema described as a tree of descriptors.
//
// A schema is compiled once into a flat map of pattern paths such as
// "items.$.price", where "$" stands for every element of an array. Casting a
// document walks it against that map:
//
//   - keys the schema does not declare are removed;
//   - declared scalars are converted to their kind (see package coerce);
//   - a scalar found where an array is declared becomes a one-element array;
//   - defaults are applied first, required/enum/custom checks run last.
//
// Failures never stop the walk. They are collected into Issues, keyed by the
// concrete path of the offending value, and returned together.
//
// Typical usage:
//
//	s := archetype.MustCompile(archetype.NewObject(
//	    archetype.F("name", &archetype.Leaf{Type: archetype.String, Required: true}),
//	    archetype.F("tags", archetype.ArrayOf(archetype.String)),
//	))
//	doc, err := s.Cast(map[string]any{"name": "x", "tags": "a"}, nil)
//	// doc == {"name": "x", "tags": ["a"]}
//
// Schemas are immutable. WithPath, Omit, Pick and Transform derive new ones.
//
// Design policy:
//   - Keep only public APIs in the root package; put helpers under internal/.
//   - Loading descriptors from files lives in loader/, document formats in
//     source/, the CLI in cmd/archetype.
package archetype
