// Package pingwatch provides a dynamically reconfigurable URL health-prober.
//
// pingwatch watches a live configuration source describing a set of HTTP
// endpoints, each with its own polling interval, and maintains exactly one
// active periodic probing task per endpoint. Whenever a new configuration
// snapshot arrives the entire running task set is cancelled and replaced;
// there is no entry-level diffing. An endpoint is never probed concurrently
// with itself: if a probe is still in flight when its next tick is due, the
// tick is skipped entirely.
//
// # Quick Start
//
// Watch a local configuration file and probe until interrupted:
//
//	src := watch.NewFile("pingwatch.yaml")
//	w, _ := pingwatch.New(src)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	w.Start(ctx) // blocks until the context is cancelled or the source fails
//
// # Configuration
//
// The Watcher is configured with the functional options pattern:
//
//	w, err := pingwatch.New(src,
//	    pingwatch.WithVerbosity(pingwatch.VerbosityError),
//	    pingwatch.WithTimeout(5 * time.Second),
//	    pingwatch.WithResultCallback(func(r pingwatch.ProbeResult) { ... }),
//	)
//
// # Boundaries
//
// The core is a pure in-process orchestration layer between three pluggable
// boundaries:
//
//   - [Source]: supplies a live sequence of configuration snapshots. The
//     watch package ships file, HTTP poll, websocket, and HTTP push sources.
//   - [Prober]: performs one HTTP request for one entry. A pooled default is
//     provided; replace it with [WithProber] for testing or custom transports.
//   - [Sink]: consumes probe results, filtered by the configured [Verbosity].
//
// Malformed configuration entries are silently dropped rather than failing
// the whole snapshot, and a failed probe is an ordinary result rather than an
// error: neither ever terminates a sibling task or the watcher itself. Only
// a terminal failure of the configuration source stops [Watcher.Start].
//
// # Architecture
//
// The engine lives in internal packages:
//
//   - internal/schedule: the reconfiguration loop, per-snapshot generation
//     swap, and per-entry tickers with overlap suppression
//   - internal/probe: the pooled HTTP client used by the default Prober
//   - internal/sink: verbosity-filtered result logging
//
// The internal packages are not part of the public API and may change
// without notice.
package pingwatch
