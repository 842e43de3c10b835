// Package sink delivers probe results to their consumers.
//
// The only implementation here is the verbosity-filtered log sink used by
// default; user-supplied sinks and callbacks are handled by the root
// package.
package sink

import (
	"log/slog"
	"time"
)

// Verbosity modes recognized by [LogSink]. These mirror the public
// pingwatch.Verbosity constants; the sink package keeps its own plain
// strings to avoid a circular dependency.
const (
	ModeAll   = "all"
	ModeError = "error"
	ModeNone  = "none"
)

// Result is the sink-internal view of one probe outcome.
type Result struct {
	// URL is the effective request URL.
	URL string

	// StatusCode is the HTTP status code, zero on network failure.
	StatusCode int

	// CheckedAt is the instant the probe completed.
	CheckedAt time.Time

	// Err is the network error, if the probe failed.
	Err error
}

// OK reports whether the result is a completed 2xx exchange.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// LogSink writes probe results to a [slog.Logger], filtered by verbosity.
//
// With ModeAll every result produces exactly one log line; with ModeError
// only network failures and non-2xx statuses do; with ModeNone nothing is
// logged. Filtering happens here, at the sink, not in the scheduler.
type LogSink struct {
	mode   string
	logger *slog.Logger
}

// NewLogSink creates a [LogSink] with the given verbosity mode.
// An unrecognized mode behaves like ModeAll.
func NewLogSink(mode string, logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{mode: mode, logger: logger}
}

// Consume logs one result according to the sink's verbosity.
func (s *LogSink) Consume(r Result) {
	if s.mode == ModeNone {
		return
	}
	if s.mode == ModeError && r.OK() {
		return
	}

	attrs := []any{
		"status", r.StatusCode,
		"url", r.URL,
		"checked_at", r.CheckedAt.Format(time.RFC3339),
	}
	switch {
	case r.Err != nil:
		// a network failure still records that the tick occurred
		s.logger.Warn("probe failed", append(attrs, "error", r.Err.Error())...)
	case !r.OK():
		s.logger.Warn("probe completed with error status", attrs...)
	default:
		s.logger.Info("probe completed", attrs...)
	}
}
