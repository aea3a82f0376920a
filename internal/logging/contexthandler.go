// Package logging carries request-scoped [slog.Attr] through
// [context.Context] so that every log line in a request includes attributes
// like the trace ID and authenticated user without threading them manually.
package logging

import (
	"context"
	"fmt"
	"log/slog"
)

type contextKey string

const slogAttrs contextKey = "slogAttrs"

// ContextHandler decorates an [slog.Handler] with attributes stored in the
// context with [WithAttrs].
type ContextHandler struct {
	handler slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{handler: h}
}

// Enabled delegates to the underlying handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle appends the context attributes to the record before delegating.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogAttrs).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	if err := h.handler.Handle(ctx, r); err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}
	return nil
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

// WithAttrs returns a context whose log records handled by [ContextHandler]
// carry the given attributes in addition to any already present.
func WithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	if existing, ok := ctx.Value(slogAttrs).([]slog.Attr); ok {
		merged := make([]slog.Attr, 0, len(existing)+len(attr))
		merged = append(merged, existing...)
		merged = append(merged, attr...)
		return context.WithValue(ctx, slogAttrs, merged)
	}
	return context.WithValue(ctx, slogAttrs, attr)
}
