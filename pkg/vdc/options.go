package vdc

import (
	"fmt"
	"log/slog"

	"github.com/vdcsim/vdc-go/pkg/log"
)

// Option configures a Registry during construction via New.
//
// WithProfile panics on an invalid profile. Profiles are normally
// compile-time values or validated by the config loader first, so an
// invalid one is a programmer error.
type Option func(*Registry)

// WithProfile sets the model profile used by Create.
// Panics if p.Validate fails.
func WithProfile(p ModelProfile) Option {
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("vdc: %v", err))
	}
	return func(r *Registry) {
		r.profile = p
	}
}

// WithEventLogger sets the bench event sink. Nil disables capture.
func WithEventLogger(l log.Logger) Option {
	return func(r *Registry) {
		if l == nil {
			l = log.NoopLogger{}
		}
		r.events = l
	}
}

// WithSlogLogger sets the operational logger. Nil restores the default
// (slog.Default() with a component attribute).
func WithSlogLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l == nil {
			l = defaultSlogLogger()
		}
		r.logger = l
	}
}

// WithSessionID overrides the generated session ID stamped on events.
// Panics if id is empty.
func WithSessionID(id string) Option {
	if id == "" {
		panic("vdc: session ID must not be empty")
	}
	return func(r *Registry) {
		r.sessionID = id
	}
}

func defaultSlogLogger() *slog.Logger {
	return slog.Default().With("component", "vdc")
}
