package logger

import (
	"context"
	"log/slog"
	"strings"
)

// SlogHandler implements slog.Handler on top of a namespaced Logger so that
// slog-based components share the DEBUG switch.
type SlogHandler struct {
	logger *Logger
	attrs  []slog.Attr
}

// NewSlogHandler wraps logger.
func NewSlogHandler(logger *Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// Enabled ignores the level; the namespace decides.
func (h *SlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return h.logger.Enabled()
}

// Handle formats the record as "[LEVEL] message key=value ...".
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.logger.Enabled() {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("[" + r.Level.String() + "] ")
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		sb.WriteString(" " + a.Key + "=" + a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(" " + a.Key + "=" + a.Value.String())
		return true
	})

	h.logger.Print(sb.String())
	return nil
}

// WithAttrs returns a handler that prefixes attrs to every record.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &SlogHandler{logger: h.logger, attrs: merged}
}

// WithGroup does not nest keys.
func (h *SlogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// NewSlogLogger returns an slog.Logger writing to the namespace.
func NewSlogLogger(namespace string) *slog.Logger {
	return slog.New(NewSlogHandler(New(namespace)))
}
