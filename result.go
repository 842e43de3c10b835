package pingwatch

import (
	"fmt"
	"strings"
	"time"
)

// Verbosity controls which probe results the default log sink reports.
//
// Verbosity is a string type that can hold one of three predefined values:
// [VerbosityAll], [VerbosityError], or [VerbosityNone]. Using a string type
// allows direct use in configuration documents and human-readable logging
// while maintaining type safety through the defined constants.
type Verbosity string

const (
	// VerbosityAll logs every probe result.
	VerbosityAll Verbosity = "all"

	// VerbosityError logs only failed results: network failures and
	// non-2xx HTTP status codes.
	VerbosityError Verbosity = "error"

	// VerbosityNone logs nothing.
	VerbosityNone Verbosity = "none"
)

// String returns the string representation of the verbosity.
// This implements the fmt.Stringer interface.
func (v Verbosity) String() string {
	return string(v)
}

// ParseVerbosity converts a string into a [Verbosity].
//
// Matching is case-insensitive, so configuration documents may use ALL,
// ERROR, or NONE. Returns an error for any unrecognized value.
func ParseVerbosity(s string) (Verbosity, error) {
	switch Verbosity(strings.ToLower(s)) {
	case VerbosityAll:
		return VerbosityAll, nil
	case VerbosityError:
		return VerbosityError, nil
	case VerbosityNone:
		return VerbosityNone, nil
	default:
		return "", fmt.Errorf("unknown verbosity %q (expected 'all', 'error', or 'none')", s)
	}
}

// ProbeResult holds the outcome of one probe of one endpoint.
//
// ProbeResult is ephemeral: it is delivered to the configured sinks and
// callbacks once and never stored. A network failure is carried in Err with
// a zero StatusCode; an HTTP error status is not a failure of the probe,
// only of the remote endpoint.
type ProbeResult struct {
	// URL is the effective request URL, after any redirects. For a request
	// that failed before a response was received it is the configured URL.
	URL string

	// StatusCode is the HTTP status code returned by the endpoint.
	// Zero if the request failed before receiving a response.
	StatusCode int

	// CheckedAt is the instant the probe completed.
	CheckedAt time.Time

	// Err contains the network error if the probe failed (DNS failure,
	// connection refused, timeout). nil for any completed HTTP exchange,
	// whatever its status code.
	Err error
}

// OK reports whether the probe completed with a 2xx status.
func (r ProbeResult) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}
