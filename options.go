package pingwatch

import (
	"errors"
	"log/slog"
	"time"
)

// watcherConfig holds mutable state during Watcher construction.
type watcherConfig struct {
	verbosity       Verbosity
	timeout         time.Duration
	logger          *slog.Logger
	prober          Prober
	sinks           []Sink
	resultCallbacks []func(ProbeResult)
}

// Option is a function that configures a [Watcher] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithVerbosity], [WithTimeout], [WithLogger],
// [WithProber], [WithSink], [WithResultCallback].
type Option func(*watcherConfig) error

// WithVerbosity sets how much the default log sink reports.
//
// Defaults to [VerbosityAll]. The verbosity only affects the built-in log
// sink; sinks added with [WithSink] and callbacks added with
// [WithResultCallback] always receive every result.
//
// Returns an error for a verbosity that is not one of the defined constants.
func WithVerbosity(v Verbosity) Option {
	return func(cfg *watcherConfig) error {
		switch v {
		case VerbosityAll, VerbosityError, VerbosityNone:
			cfg.verbosity = v
			return nil
		default:
			return errors.New("verbosity must be 'all', 'error', or 'none'")
		}
	}
}

// WithTimeout sets the per-probe HTTP timeout for the default Prober.
//
// Defaults to 10 seconds. A probe that exceeds the timeout fails with a
// network error and counts as that tick's outcome; the task keeps ticking.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *watcherConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithLogger sets the logger used by the watcher, the scheduler, and the
// default log sink.
//
// Defaults to [slog.Default] if not specified.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *watcherConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithProber replaces the default HTTP prober.
//
// The prober is invoked once per tick per entry, with at most one invocation
// in flight per entry at any time. It must return a network failure as a
// [ProbeResult] with Err set rather than panicking. Useful for tests and
// custom transports.
func WithProber(p Prober) Option {
	return func(cfg *watcherConfig) error {
		if p == nil {
			return errors.New("prober cannot be nil")
		}
		cfg.prober = p
		return nil
	}
}

// WithSink adds a result sink in addition to the built-in log sink.
//
// Can be called multiple times. Sinks are invoked sequentially, in
// registration order, from the single result-consuming goroutine; a slow
// sink delays delivery to later sinks but never drops or reorders results
// from any one entry.
func WithSink(s Sink) Option {
	return func(cfg *watcherConfig) error {
		if s == nil {
			return errors.New("sink cannot be nil")
		}
		cfg.sinks = append(cfg.sinks, s)
		return nil
	}
}

// WithResultCallback registers a function invoked for every probe result.
//
// Can be called multiple times. Callbacks run on the result-consuming
// goroutine with panic recovery: a panicking callback is logged and does
// not affect probing or other callbacks.
func WithResultCallback(cb func(ProbeResult)) Option {
	return func(cfg *watcherConfig) error {
		if cb == nil {
			return errors.New("callback cannot be nil")
		}
		cfg.resultCallbacks = append(cfg.resultCallbacks, cb)
		return nil
	}
}
