package archetype

import "github.com/reoring/archetype/internal/docpath"

// checkRequired reports required slots that are missing or nil. A slot is
// only checked when its parent exists.
func (s *Schema) checkRequired(doc map[string]any, proj *Projection) Issues {
	var iss Issues
	s.paths.each(func(info *PathInfo) {
		if !info.Required || proj.Skip(info.Path) {
			return
		}
		for _, m := range docpath.Resolve(doc, info.Path) {
			if m.Value != nil {
				continue
			}
			msg := s.cfg.tr.Message(CodeRequired, map[string]string{"path": m.Path})
			iss.MarkError(m.Path, CodeRequired, &messageError{msg: msg, kind: ErrRequired})
		}
	})
	return iss
}
