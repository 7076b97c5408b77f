package archetype

import (
	"fmt"
	"log/slog"

	"github.com/reoring/archetype/coerce"
	"github.com/reoring/archetype/i18n"
	"github.com/reoring/archetype/internal/docpath"
)

// Schema owns a descriptor tree and the path map compiled from it. A Schema
// is immutable: branch operations return new schemas and leave the receiver
// and its compiled paths untouched, so one Schema may be used by concurrent
// Cast calls on distinct documents.
type Schema struct {
	root  *Object
	paths *pathMap
	cfg   config
}

type config struct {
	coercers *coerce.Registry
	logger   *slog.Logger
	tr       i18n.Translator
}

// Option configures Compile.
type Option func(*config)

// WithCoercers sets the registry used to resolve and cast scalar kinds. The
// registry is copied; later registrations do not affect the schema.
func WithCoercers(reg *coerce.Registry) Option {
	return func(c *config) {
		if reg != nil {
			c.coercers = reg.Clone()
		}
	}
}

// WithLogger enables debug tracing of compile and cast decisions.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTranslator selects the catalog used for issue messages.
func WithTranslator(tr i18n.Translator) Option {
	return func(c *config) {
		if tr != nil {
			c.tr = tr
		}
	}
}

// Compile deep-copies root and compiles it.
func Compile(root *Object, opts ...Option) (*Schema, error) {
	cfg := config{
		coercers: coerce.New(),
		logger:   slog.New(slog.DiscardHandler),
		tr:       i18n.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return build(cloneObject(root), cfg)
}

// MustCompile is like Compile but panics on error. It is intended for
// package-level schema variables.
func MustCompile(root *Object, opts ...Option) *Schema {
	s, err := Compile(root, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// build compiles a tree the schema already owns.
func build(root *Object, cfg config) (*Schema, error) {
	paths, err := compile(root, cfg.coercers)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("schema compiled", "paths", len(paths.order))
	return &Schema{root: root, paths: paths, cfg: cfg}, nil
}

// Paths lists the compiled pattern paths in depth-first declaration order.
func (s *Schema) Paths() []PathInfo {
	out := make([]PathInfo, 0, len(s.paths.order))
	s.paths.each(func(info *PathInfo) { out = append(out, info.clone()) })
	return out
}

// Lookup returns the compiled descriptor of a pattern path.
func (s *Schema) Lookup(pattern string) (PathInfo, bool) {
	info, ok := s.paths.lookup(pattern)
	if !ok {
		return PathInfo{}, false
	}
	return info.clone(), true
}

// Descriptor returns a copy of the descriptor tree.
func (s *Schema) Descriptor() *Object { return cloneObject(s.root) }

// Get returns a copy of the descriptor at a dotted path.
func (s *Schema) Get(path string) (Descriptor, bool) {
	d, ok := getIn(s.root, docpath.Split(path))
	if !ok {
		return nil, false
	}
	return cloneDescriptor(d), true
}

// WithPath returns a schema with d stored at path, creating intermediate
// objects as needed.
func (s *Schema) WithPath(path string, d Descriptor) (*Schema, error) {
	segs := docpath.Split(path)
	if len(segs) == 0 {
		return nil, errEmptyPath
	}
	next, err := setIn(s.root, segs, cloneDescriptor(d))
	if err != nil {
		return nil, err
	}
	return s.derive(next)
}

// Omit returns a schema without path. Omitting a missing path yields an
// equivalent schema.
func (s *Schema) Omit(path string) (*Schema, error) {
	segs := docpath.Split(path)
	if len(segs) == 0 {
		return nil, errEmptyPath
	}
	next, _ := unsetIn(s.root, segs)
	return s.derive(next)
}

// Pick returns a schema keeping only the named top-level fields, in schema
// order. Unknown names are ignored.
func (s *Schema) Pick(names ...string) (*Schema, error) {
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}
	next := &Object{}
	for _, f := range s.root.Fields {
		if _, ok := keep[f.Name]; ok {
			next.Fields = append(next.Fields, f)
		}
	}
	return s.derive(next)
}

// Transform returns a schema where each top-level field is replaced by
// fn(name, copy of its descriptor). It does not recurse.
func (s *Schema) Transform(fn func(name string, d Descriptor) Descriptor) (*Schema, error) {
	next := &Object{Fields: make([]Field, len(s.root.Fields))}
	for i, f := range s.root.Fields {
		next.Fields[i] = Field{Name: f.Name, Desc: cloneDescriptor(fn(f.Name, cloneDescriptor(f.Desc)))}
	}
	return s.derive(next)
}

func (s *Schema) derive(next Descriptor) (*Schema, error) {
	root, ok := next.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w: root must stay an object, got %T", ErrInvalidDescriptor, next)
	}
	return build(root, s.cfg)
}
