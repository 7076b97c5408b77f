// Package jsonschema holds the JSON Schema document produced by
// archetype.Schema.JSONSchema.
package jsonschema

// Draft is the dialect Schema documents declare.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	SchemaURI string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Core
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty" yaml:"enum,omitempty"`

	// Object
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty" yaml:"items,omitempty"`
}
