package archetype

import "github.com/reoring/archetype/internal/docpath"

// applyDefaults fills empty slots of paths declaring a Default. Paths crossing
// arrays are filled for existing elements only; missing intermediate objects
// are created.
func (s *Schema) applyDefaults(doc map[string]any, proj *Projection) {
	s.paths.each(func(info *PathInfo) {
		if info.Default == nil || proj.Skip(info.Path) {
			return
		}
		for _, m := range docpath.ResolveCreate(doc, info.Path) {
			if m.Value != nil {
				continue
			}
			s.cfg.logger.Debug("apply default", "path", m.Path)
			m.Set(defaultValue(info.Default))
		}
	})
}

func defaultValue(d any) any {
	switch fn := d.(type) {
	case DefaultFunc:
		return fn()
	case func() any:
		return fn()
	default:
		return docpath.Clone(d)
	}
}
