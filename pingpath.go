package pingwatch

import "time"

// PingPath describes one endpoint to probe: an HTTP method, a target URL,
// a polling interval in minutes, and optional request headers.
//
// PingPath values are read from configuration snapshots and are treated as
// immutable: a new snapshot produces entirely new values, and nothing in the
// system mutates an entry after it has been read. Fractional intervals are
// allowed (0.5 means every thirty seconds).
//
// A PingPath is not validated on construction. Snapshots may carry malformed
// entries; [IsValid] decides which entries become running tasks and which
// are silently dropped.
type PingPath struct {
	// Method is the HTTP method for the probe request.
	// Must be exactly one of GET, POST, PUT, DELETE to be valid.
	Method string

	// Path is the target URL. Must start with http:// or https://.
	Path string

	// IntervalMinutes is the polling interval in minutes. Must be positive.
	IntervalMinutes float64

	// Headers are optional request headers sent with every probe.
	// Every key and every value must be non-empty for the entry to be valid.
	Headers map[string]string
}

// Interval returns the polling interval as a [time.Duration].
func (p PingPath) Interval() time.Duration {
	return time.Duration(p.IntervalMinutes * float64(time.Minute))
}

// Snapshot is one complete description of all endpoints to probe,
// replacing any prior description.
//
// Order is preserved from the configuration document. No identity is carried
// across snapshots: the scheduler replaces its whole task set on every
// snapshot rather than diffing entries.
type Snapshot []PingPath

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
