package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes bench events to an slog.Logger.
// Useful for development when you want to see registry calls in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Successful calls are logged at
// Debug level, failed calls at Warn.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.Uint64("handle", uint64(event.Handle)),
		slog.String("op", event.Operation.String()),
		slog.String("result", event.Result.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Model != "" {
		attrs = append(attrs, slog.String("model", event.Model))
	}

	switch {
	case event.Setpoint != nil:
		attrs = append(attrs,
			slog.String("quantity", event.Setpoint.Quantity.String()),
			slog.Float64("value", event.Setpoint.Value),
		)
	case event.Status != nil:
		attrs = append(attrs,
			slog.Bool("output", event.Status.OutputState),
			slog.Float64("voltage", event.Status.Voltage),
			slog.Float64("current", event.Status.Current),
			slog.Float64("power", event.Status.Power),
			slog.Bool("loaded", event.Status.Loaded),
		)
	case event.Load != nil:
		attrs = append(attrs, slog.Bool("uut_connected", event.Load.Connected))
		if event.Load.Description != "" {
			attrs = append(attrs, slog.String("uut", event.Load.Description))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	level := slog.LevelDebug
	if event.Result.IsError() {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "vdc", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
