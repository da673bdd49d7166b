package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
// The server logs request metadata; these are the keys that could carry
// a player's credentials.
var sensitiveKeys = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"token":         true,
	"auth_token":    true,
	"bearer":        true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// MaxValueLen is the maximum logged length of a string attribute.
// Longer values (typically article HTML) are cut and suffixed with a
// truncation marker.
const MaxValueLen = 512

// GameHandler wraps an slog.Handler to mask credentials and truncate
// oversized values.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
type GameHandler struct {
	// handler is the underlying slog handler that receives cleaned records.
	handler slog.Handler
}

// NewGameHandler creates a new GameHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewGameHandler(handler slog.Handler) *GameHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &GameHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *GameHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle cleans the record's attributes and passes it on.
func (h *GameHandler) Handle(ctx context.Context, r slog.Record) error {
	cleaned := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		cleaned.AddAttrs(h.cleanAttr(a))
		return true
	})
	return h.handler.Handle(ctx, cleaned)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *GameHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = h.cleanAttr(a)
	}
	return &GameHandler{handler: h.handler.WithAttrs(cleaned)}
}

// WithGroup returns a new handler with the given group name.
func (h *GameHandler) WithGroup(name string) slog.Handler {
	return &GameHandler{handler: h.handler.WithGroup(name)}
}

// cleanAttr masks or truncates a single attribute, recursing into groups.
func (h *GameHandler) cleanAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		cleaned := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			cleaned[i] = h.cleanAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleaned...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if v := a.Value.String(); len(v) > MaxValueLen {
			return slog.String(a.Key, fmt.Sprintf("%s...(%d bytes truncated)", v[:MaxValueLen], len(v)-MaxValueLen))
		}
	}

	return a
}

// NewGameLogger creates an slog.Logger with masking and truncation over
// a text handler. Verbose switches the level from WARN to DEBUG.
func NewGameLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(NewGameHandler(slog.NewTextHandler(w, opts)))
}
