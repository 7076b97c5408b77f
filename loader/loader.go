// Package loader reads schema descriptors from YAML or JSON files.
//
// A file describes the root object. Each value is one of:
//
//	name: string            # a kind name
//	tags: [string]          # an array of that kind; [] leaves elements open
//	address:                # a nested object
//	  city: string
//	status:                 # a leaf with metadata
//	  $type: string
//	  $enum: [open, closed]
//	  $default: open
//	  $required: true
//	  $validate: nonBlank   # registered with WithValidator
//	  $label: Status        # any other $key lands in Meta as "label"
//
// $schema on a leaf declares a nested object with metadata of its own.
// Field order follows the file.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/archetype"
	"github.com/reoring/archetype/coerce"
)

// ErrSyntax wraps every structural problem found in a descriptor file.
var ErrSyntax = errors.New("loader: invalid descriptor")

// Error locates a problem in the input. Line and Column are zero when the
// position is unknown.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return "loader: " + e.Msg
	}
	return fmt.Sprintf("loader: %d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *Error) Unwrap() error { return ErrSyntax }

// Option configures a load.
type Option func(*options)

type options struct {
	validators map[string]archetype.ValidateFunc
	coercers   *coerce.Registry
}

// WithValidator makes fn available to $validate under name.
func WithValidator(name string, fn archetype.ValidateFunc) Option {
	return func(o *options) {
		if o.validators == nil {
			o.validators = map[string]archetype.ValidateFunc{}
		}
		o.validators[name] = fn
	}
}

// WithCoercers accepts the custom kinds registered on reg. Pass the same
// registry to archetype.WithCoercers when compiling.
func WithCoercers(reg *coerce.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.coercers = reg
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{coercers: coerce.New()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadFile reads path and loads it as JSON or YAML according to its
// extension.
func LoadFile(path string, opts ...Option) (*archetype.Object, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(b, opts...)
	case ".yaml", ".yml":
		return LoadYAML(b, opts...)
	}
	return nil, fmt.Errorf("loader: unsupported schema file %q", path)
}

var kindAliases = map[string]archetype.Kind{
	"string":  archetype.String,
	"number":  archetype.Number,
	"integer": archetype.Integer,
	"int":     archetype.Integer,
	"boolean": archetype.Boolean,
	"bool":    archetype.Boolean,
	"date":    archetype.Date,
	"uuid":    archetype.UUID,
	"any":     archetype.Any,
	"mixed":   archetype.Any,
	"object":  archetype.Map,
	"map":     archetype.Map,
}

func (o *options) kind(name string) (archetype.Kind, bool) {
	if k, ok := kindAliases[strings.ToLower(name)]; ok {
		return k, true
	}
	if o.coercers.Has(name) {
		return archetype.Kind(name), true
	}
	return "", false
}
