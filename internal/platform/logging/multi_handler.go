package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler fans one slog record out to several handlers. The radar client
// uses it to keep a pretty console stream and a rotated JSON file in sync,
// each with its own level.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler wraps the given handlers into a single slog.Handler.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled is true when at least one destination accepts the level. Handle
// re-checks per destination, so a debug record still skips an info-level file.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, dest := range h.handlers {
		if dest.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every destination that accepts its level.
// Each destination gets its own clone; errors are joined so one failing sink
// does not hide another.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var errs []error
	for _, dest := range h.handlers {
		if !dest.Enabled(ctx, r.Level) {
			continue
		}
		if err := dest.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs applies the attributes to every destination.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.fan(func(dest slog.Handler) slog.Handler { return dest.WithAttrs(attrs) })
}

// WithGroup applies the group to every destination.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.fan(func(dest slog.Handler) slog.Handler { return dest.WithGroup(name) })
}

func (h *MultiHandler) fan(derive func(slog.Handler) slog.Handler) slog.Handler {
	derived := make([]slog.Handler, len(h.handlers))
	for i, dest := range h.handlers {
		derived[i] = derive(dest)
	}
	return NewMultiHandler(derived...)
}
