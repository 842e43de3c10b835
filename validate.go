package pingwatch

import "regexp"

// pathPattern is the scheme check applied to every entry's URL.
// The match is case-sensitive: HTTPS:// is not accepted.
var pathPattern = regexp.MustCompile(`^https?://`)

// allowedMethods are the only HTTP methods an entry may use.
// Matching is exact; lowercase method names are rejected.
var allowedMethods = map[string]struct{}{
	"GET":    {},
	"POST":   {},
	"PUT":    {},
	"DELETE": {},
}

// rule pairs one validity requirement with the message reported when an
// entry fails it.
type rule struct {
	ok     func(PingPath) bool
	reason string
}

// rules are evaluated in order; the first failing rule names the drop
// reason. IsValid and InvalidReason share this list so the two can never
// disagree about what makes an entry invalid.
var rules = []rule{
	{
		ok:     func(p PingPath) bool { return p.IntervalMinutes > 0 },
		reason: "interval_minutes must be positive",
	},
	{
		ok: func(p PingPath) bool {
			_, ok := allowedMethods[p.Method]
			return ok
		},
		reason: "method must be GET, POST, PUT, or DELETE",
	},
	{
		ok:     func(p PingPath) bool { return pathPattern.MatchString(p.Path) },
		reason: "path must start with http:// or https://",
	},
	{
		ok: func(p PingPath) bool {
			for k, v := range p.Headers {
				if k == "" || v == "" {
					return false
				}
			}
			return true
		},
		reason: "header names and values must be non-empty",
	},
}

// IsValid reports whether a configuration entry is well-formed.
//
// IsValid is a pure predicate with no side effects. All of the following
// must hold:
//
//   - IntervalMinutes is positive
//   - Method is exactly one of GET, POST, PUT, DELETE
//   - Path starts with http:// or https://
//   - every header key and every header value is non-empty
//
// Entries failing any rule are dropped from the active set rather than
// surfaced as errors: malformed configuration degrades gracefully instead
// of halting the prober.
func IsValid(p PingPath) bool {
	for _, r := range rules {
		if !r.ok(p) {
			return false
		}
	}
	return true
}

// InvalidReason names the first validation rule an entry fails, or ""
// for a valid entry. Intended for diagnostics; a running watcher drops
// invalid entries without reporting a reason.
func InvalidReason(p PingPath) string {
	for _, r := range rules {
		if !r.ok(p) {
			return r.reason
		}
	}
	return ""
}

// FilterValid returns the entries of a snapshot that pass [IsValid],
// preserving order. The input snapshot is not modified.
func FilterValid(s Snapshot) Snapshot {
	valid := make(Snapshot, 0, len(s))
	for _, p := range s {
		if IsValid(p) {
			valid = append(valid, p)
		}
	}
	return valid
}
