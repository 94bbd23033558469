package lattice

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/storage"
)

// WorldOption augments how a World is constructed.
type WorldOption func(*World)

// WithLogger replaces the world's base logger. The instance id and any
// configured trace id are still attached to it.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.baseLogger = logger
	}
}

// WithPrettyLog renders log output for humans instead of machines. Meant
// for local development.
func WithPrettyLog() WorldOption {
	return func(w *World) {
		w.baseLogger = w.baseLogger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// WithPolicy overrides the growth and shrink tuning from the environment.
func WithPolicy(pol storage.Policy) WorldOption {
	return func(w *World) {
		w.pol = &pol
	}
}

// WithObserver attaches a lifecycle observer before any entities exist.
func WithObserver(o storage.Observer) WorldOption {
	return func(w *World) {
		w.observers = append(w.observers, o)
	}
}
