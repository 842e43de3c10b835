package pingwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pingwatch/pingwatch/internal/probe"
	"github.com/pingwatch/pingwatch/internal/schedule"
	"github.com/pingwatch/pingwatch/internal/sink"
)

const defaultProbeTimeout = 10 * time.Second

// Prober performs one probe for one entry.
//
// A network failure (DNS, connection refused, timeout) must be reported as
// a [ProbeResult] with Err set and StatusCode zero. An HTTP error status is
// a completed probe, not a failure. The default prober is backed by a
// pooled HTTP client; replace it with [WithProber].
type Prober func(ctx context.Context, p PingPath) ProbeResult

// Sink consumes probe results.
//
// Each result is delivered exactly once, from a single goroutine, in
// per-entry order. The built-in log sink filters by [Verbosity]; sinks
// added with [WithSink] receive every result unfiltered.
type Sink interface {
	Consume(ProbeResult)
}

// Watcher is the orchestrator: it consumes configuration snapshots from a
// [Source] and maintains exactly one active, non-overlapping probing task
// per valid entry of the latest snapshot.
//
// The typical lifecycle is:
//
//	w, err := pingwatch.New(watch.NewFile("pingwatch.yaml"))
//	if err != nil {
//	    slog.Error("failed to create watcher", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	w.Start(ctx) // blocks until context cancelled or the source fails
type Watcher struct {
	source          Source
	verbosity       Verbosity
	timeout         time.Duration
	logger          *slog.Logger
	prober          Prober
	sinks           []Sink
	resultCallbacks []func(ProbeResult)
}

// New creates a [Watcher] consuming snapshots from the given [Source].
//
// Options have sensible defaults:
//   - Verbosity: all
//   - Per-probe timeout: 10 seconds
//   - Logger: slog.Default()
//   - Prober: pooled HTTP client
//
// Returns an error if source is nil or any option is invalid.
func New(source Source, opts ...Option) (*Watcher, error) {
	if source == nil {
		return nil, errors.New("a configuration source is required")
	}

	cfg := &watcherConfig{
		verbosity: VerbosityAll,
		timeout:   defaultProbeTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		source:          source,
		verbosity:       cfg.verbosity,
		timeout:         cfg.timeout,
		logger:          logger,
		prober:          cfg.prober,
		sinks:           cfg.sinks,
		resultCallbacks: cfg.resultCallbacks,
	}, nil
}

// Verbosity returns the configured log sink verbosity.
func (w *Watcher) Verbosity() Verbosity {
	return w.verbosity
}

// Timeout returns the configured per-probe timeout.
func (w *Watcher) Timeout() time.Duration {
	return w.timeout
}

// Start watches the configuration source and probes until ctx is cancelled.
//
// Start is a blocking call. For each arriving snapshot it filters the
// entries through [IsValid], cancels every currently running task, and
// starts one fresh task per valid entry. Invalid entries are dropped
// silently (logged at debug level only); an all-invalid or empty snapshot
// simply stops all probing until the next snapshot.
//
// Returns nil on context cancellation. Returns an error if the source
// cannot start or fails terminally; individual probe failures never
// propagate here.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return nil
	}

	events, err := w.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start config watch: %w", err)
	}

	probeFunc, closeProber := w.buildProbeFunc()
	defer closeProber()

	scheduler := schedule.NewScheduler(probeFunc, w.logger)
	scheduler.Start(ctx)

	logSink := sink.NewLogSink(string(w.verbosity), w.logger)

	// track the results consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range scheduler.Results() {
			logSink.Consume(sink.Result{
				URL:        result.URL,
				StatusCode: result.StatusCode,
				CheckedAt:  result.CheckedAt,
				Err:        result.Err,
			})

			if len(w.sinks) == 0 && len(w.resultCallbacks) == 0 {
				continue
			}
			publicResult := scheduleResultToProbeResult(result)
			for _, s := range w.sinks {
				s.Consume(publicResult)
			}
			for _, cb := range w.resultCallbacks {
				invokeCallbackSafe(cb, publicResult, w.logger)
			}
		}
	}()

	// cleanup ensures the scheduler is stopped and all results are processed
	cleanup := func() {
		scheduler.Stop() // closes results channel
		wg.Wait()        // wait for all results to be processed
	}

	w.logger.Info("pingwatch started", "verbosity", w.verbosity.String())

	for {
		select {
		case <-ctx.Done():
			cleanup()
			w.logger.Info("pingwatch stopped")
			return nil

		case ev, ok := <-events:
			if !ok {
				// source ended its stream without a terminal error;
				// nothing further can change, so shut down cleanly
				cleanup()
				w.logger.Info("config stream ended, pingwatch stopped")
				return nil
			}
			if ev.Err != nil {
				cleanup()
				return fmt.Errorf("config source failed: %w", ev.Err)
			}
			w.apply(scheduler, ev.Snapshot)
		}
	}
}

// apply validates one snapshot and hands the surviving entries to the
// scheduler as a complete replacement task set.
func (w *Watcher) apply(scheduler *schedule.Scheduler, snap Snapshot) {
	valid := make(Snapshot, 0, len(snap))
	for _, p := range snap {
		if !IsValid(p) {
			w.logger.Debug("config entry dropped",
				"method", p.Method,
				"path", p.Path,
				"interval_minutes", p.IntervalMinutes,
			)
			continue
		}
		valid = append(valid, p)
	}

	w.logger.Info("snapshot received",
		"entries", len(snap),
		"valid", len(valid),
	)
	scheduler.Apply(snapshotToEntries(valid))
}

// buildProbeFunc returns the scheduler-facing probe function and a cleanup
// func releasing any resources it holds.
func (w *Watcher) buildProbeFunc() (schedule.ProbeFunc, func()) {
	if w.prober != nil {
		prober := w.prober
		return func(ctx context.Context, e schedule.Entry) schedule.Result {
			return probeResultToScheduleResult(prober(ctx, entryToPingPath(e)))
		}, func() {}
	}

	client := probe.NewClient()
	timeout := w.timeout
	return func(ctx context.Context, e schedule.Entry) schedule.Result {
		resp := client.Do(ctx, e.Method, e.URL, e.Headers, timeout)
		return schedule.Result{
			URL:        resp.FinalURL,
			StatusCode: resp.StatusCode,
			CheckedAt:  time.Now(),
			Err:        resp.Err,
		}
	}, client.Close
}

// NewProber returns a [Prober] backed by a fresh pooled HTTP client with
// the given per-probe timeout.
//
// Intended for one-shot probing outside a running [Watcher] (the check CLI
// command uses it). Idle connections are released by the pool's own idle
// timeout.
func NewProber(timeout time.Duration) Prober {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	client := probe.NewClient()
	return func(ctx context.Context, p PingPath) ProbeResult {
		resp := client.Do(ctx, p.Method, p.Path, p.Headers, timeout)
		return ProbeResult{
			URL:        resp.FinalURL,
			StatusCode: resp.StatusCode,
			CheckedAt:  time.Now(),
			Err:        resp.Err,
		}
	}
}

// snapshotToEntries converts validated entries to the scheduler's format.
func snapshotToEntries(snap Snapshot) []schedule.Entry {
	entries := make([]schedule.Entry, len(snap))
	for i, p := range snap {
		entries[i] = schedule.Entry{
			Method:   p.Method,
			URL:      p.Path,
			Headers:  copyMap(p.Headers),
			Interval: p.Interval(),
		}
	}
	return entries
}

// entryToPingPath converts a scheduler entry back to the public type for
// user-supplied probers.
func entryToPingPath(e schedule.Entry) PingPath {
	return PingPath{
		Method:          e.Method,
		Path:            e.URL,
		IntervalMinutes: e.Interval.Minutes(),
		Headers:         copyMap(e.Headers),
	}
}

// scheduleResultToProbeResult converts an internal result to the public type.
func scheduleResultToProbeResult(r schedule.Result) ProbeResult {
	return ProbeResult{
		URL:        r.URL,
		StatusCode: r.StatusCode,
		CheckedAt:  r.CheckedAt,
		Err:        r.Err,
	}
}

// probeResultToScheduleResult converts a public result to the internal type.
func probeResultToScheduleResult(r ProbeResult) schedule.Result {
	return schedule.Result{
		URL:        r.URL,
		StatusCode: r.StatusCode,
		CheckedAt:  r.CheckedAt,
		Err:        r.Err,
	}
}

// invokeCallbackSafe calls a result callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(ProbeResult), result ProbeResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("result callback panicked",
				"panic", r,
				"url", result.URL,
			)
		}
	}()
	cb(result)
}
