// Package middleware casts HTTP request bodies against an archetype.Schema.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/elnormous/contenttype"

	"github.com/reoring/archetype"
	"github.com/reoring/archetype/source"
)

type ctxKeyDocument struct{}

// ContextWithDocument attaches a cast document to the context.
func ContextWithDocument(ctx context.Context, doc map[string]any) context.Context {
	return context.WithValue(ctx, ctxKeyDocument{}, doc)
}

// DocumentFromContext retrieves the document stored by Cast.
func DocumentFromContext(ctx context.Context) (map[string]any, bool) {
	v, ok := ctx.Value(ctxKeyDocument{}).(map[string]any)
	return v, ok
}

// IssuePayload is the wire shape of one issue.
type IssuePayload struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(iss archetype.Issues) map[string]any {
	out := make([]IssuePayload, len(iss))
	for i, it := range iss {
		out[i] = IssuePayload{Path: it.Path, Code: it.Code, Message: it.Message}
	}
	return map[string]any{"issues": out}
}

var mediaTypes = []struct {
	media  contenttype.MediaType
	format source.Format
}{
	{contenttype.NewMediaType("application/json"), source.JSON},
	{contenttype.NewMediaType("application/yaml"), source.YAML},
	{contenttype.NewMediaType("application/x-yaml"), source.YAML},
	{contenttype.NewMediaType("application/msgpack"), source.MsgPack},
	{contenttype.NewMediaType("application/x-msgpack"), source.MsgPack},
}

func formatOf(r *http.Request) (source.Format, bool) {
	ctype, err := contenttype.GetMediaType(r)
	if err != nil {
		return "", false
	}
	for _, m := range mediaTypes {
		if ctype.Matches(m.media) {
			return m.format, true
		}
	}
	return "", false
}

// Option configures Cast.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger reports failed response writes at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Cast decodes the request body by its Content-Type, casts it with s and
// passes the document to next through the request context. Unsupported
// media types get 415, undecodable bodies 400 and documents with issues 422.
func Cast(s *archetype.Schema, projection map[string]int, opts ...Option) func(http.Handler) http.Handler {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f, ok := formatOf(r)
			if !ok {
				cfg.writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{"error": "unsupported content type"})
				return
			}
			doc, err := source.DecodeDocument(r.Body, f)
			if err != nil {
				cfg.writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			doc, err = s.Cast(doc, projection)
			if err != nil {
				if iss, ok := archetype.AsIssues(err); ok {
					cfg.writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(iss))
					return
				}
				cfg.writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDocument(r.Context(), doc)))
		})
	}
}

func (c config) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := source.Encode(w, v, source.JSON, false); err != nil {
		c.logger.Debug("write response", "status", status, "error", err)
	}
}
