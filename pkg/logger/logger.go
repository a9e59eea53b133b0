// Package logger provides slog-based structured logging for the sending
// engine: a JSON logger with context-extracted attributes (such as the
// batch ID tagged on every record of one send operation) and optional
// Sentry forwarding for errors.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor pulls a log attribute out of a context, e.g. the current
// batch ID. Extraction runs per log call so request-scoped values stay
// fresh.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// New creates a JSON logger writing to stdout with the given context
// extractors applied to every record.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(decorate(h, extractors...))
}

// NewNope creates a no-op logger that discards all output. Used as the
// default wherever logging is optional.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// extractHandler wraps a slog.Handler and injects context-extracted
// attributes into each record before delegating.
type extractHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func decorate(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &extractHandler{next: next, extractors: clean}
}

func (h *extractHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *extractHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *extractHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &extractHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *extractHandler) WithGroup(name string) slog.Handler {
	return &extractHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

// fanoutHandler delivers each record to every target that accepts its
// level. A failing target never starves the others; their errors are
// joined and reported together.
type fanoutHandler struct {
	targets []slog.Handler
}

func fanout(targets ...slog.Handler) slog.Handler {
	return &fanoutHandler{targets: targets}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, target := range h.targets {
		if target.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, target := range h.targets {
		if !target.Enabled(ctx, rec.Level) {
			continue
		}
		if err := target.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	targets := make([]slog.Handler, 0, len(h.targets))
	for _, target := range h.targets {
		targets = append(targets, target.WithAttrs(attrs))
	}
	return &fanoutHandler{targets: targets}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	targets := make([]slog.Handler, 0, len(h.targets))
	for _, target := range h.targets {
		targets = append(targets, target.WithGroup(name))
	}
	return &fanoutHandler{targets: targets}
}
