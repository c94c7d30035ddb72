package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler sends each record to every handler enabled for its level.
// The terminal and the rotated JSON file are fed this way.
type teeHandler []slog.Handler

// Tee combines handlers. Nil handlers are dropped, nested tees are
// flattened, and a single remaining handler is returned as is.
func Tee(handlers ...slog.Handler) slog.Handler {
	var flat teeHandler

	for _, h := range handlers {
		switch h := h.(type) {
		case nil:
		case teeHandler:
			flat = append(flat, h...)
		default:
			flat = append(flat, h)
		}
	}

	if len(flat) == 1 {
		return flat[0]
	}

	return flat
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle passes a clone of r to each enabled handler and joins their errors.
func (t teeHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var errs []error

	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}

	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return t
	}

	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}

	return out
}
