package config

import "github.com/pingwatch/pingwatch"

// BuildSnapshot converts a parsed document into a configuration snapshot.
//
// Entries are converted one-to-one, preserving document order. No validity
// filtering happens here; the core drops invalid entries when the snapshot
// is applied.
func BuildSnapshot(doc *Document) pingwatch.Snapshot {
	snap := make(pingwatch.Snapshot, len(doc.Paths))
	for i, p := range doc.Paths {
		snap[i] = pingwatch.PingPath{
			Method:          p.Method,
			Path:            p.Path,
			IntervalMinutes: p.IntervalMinutes,
			Headers:         copyHeaders(p.Headers),
		}
	}
	return snap
}

// copyHeaders detaches the snapshot's header maps from the parsed document,
// keeping PingPath values immutable even if the document is reused.
func copyHeaders(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
