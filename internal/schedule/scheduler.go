package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// resultBuffer is the capacity of the scheduler's results channel. Task sets
// vary in size across snapshots, so the buffer is a fixed bound rather than
// sized per set; the consumer is expected to drain continuously.
const resultBuffer = 64

// Entry is the scheduler-internal description of one periodic probing task.
//
// This is decoupled from the public pingwatch.PingPath type to avoid a
// circular dependency; the root package converts between the two.
type Entry struct {
	// Method is the HTTP method for the probe request.
	Method string

	// URL is the target URL to probe.
	URL string

	// Headers are request headers sent with every probe.
	Headers map[string]string

	// Interval is the time between tick boundaries, measured from task start.
	Interval time.Duration
}

// Result is the outcome of one probe execution.
type Result struct {
	// URL is the effective request URL, after redirects. For a request that
	// failed before a response was received it is the entry's URL.
	URL string

	// StatusCode is the HTTP status code. Zero if the request failed.
	StatusCode int

	// CheckedAt is the instant the probe completed.
	CheckedAt time.Time

	// Err is the network error, if the probe failed.
	Err error
}

// ProbeFunc performs one probe for one entry.
//
// A network failure is returned as a Result with Err set, not as a panic or
// a separate error value; the runner forwards it like any other result and
// proceeds to its next tick.
type ProbeFunc func(ctx context.Context, e Entry) Result

// Scheduler owns the running task set and replaces it wholesale on every
// applied snapshot.
//
// Each call to [Scheduler.Apply] starts a new generation: all runners of the
// current generation are cancelled and a fresh runner is started per entry.
// Cancellation is non-blocking with respect to in-flight probes; a probe
// already started under the old generation is allowed to complete, and its
// result may still appear on [Scheduler.Results] after the new generation
// has started. Results carry no generation tag.
//
// All lifecycle methods (Start, Apply, Stop) are safe for concurrent use,
// though in practice a single control goroutine drives Apply.
type Scheduler struct {
	probe   ProbeFunc
	results chan Result
	logger  *slog.Logger

	snapshots chan []Entry
	done      chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
	doneOnce  sync.Once
}

// NewScheduler creates a [Scheduler] that executes probes with the given
// [ProbeFunc].
//
// The scheduler must be started with [Scheduler.Start] before task sets are
// applied, and stopped with [Scheduler.Stop]. Results are available via
// [Scheduler.Results].
func NewScheduler(probe ProbeFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		probe:     probe,
		results:   make(chan Result, resultBuffer),
		logger:    logger,
		snapshots: make(chan []Entry),
		done:      make(chan struct{}),
	}
}

// Results returns a receive-only channel that emits [Result] values from
// all runners of all generations.
//
// The channel is closed when the scheduler stops. Consumers should read from
// this channel until it is closed.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Start launches the control loop in a background goroutine.
//
// Start is non-blocking. The control loop receives task sets from
// [Scheduler.Apply] and performs the cancel-all-then-spawn-all transition
// for each one, until [Scheduler.Stop] is called or the context is
// cancelled.
//
// If ctx is nil, context.Background() is used. Start is idempotent, and a
// no-op after Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	loopCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		// done must be closed on every exit path, not just Stop's, so an
		// Apply racing a context cancellation cannot block on a snapshot
		// send that no longer has a receiver
		defer s.doneOnce.Do(func() { close(s.done) })

		var current *generation
		for {
			select {
			case <-loopCtx.Done():
				if current != nil {
					current.cancel()
				}
				return
			case entries := <-s.snapshots:
				current = s.replace(loopCtx, current, entries)
			}
		}
	}()
}

// Apply submits a complete task set, replacing whatever is currently
// running.
//
// An empty set is valid: it cancels all running tasks without starting
// replacements. A set identical to the previous one still triggers a full
// cancel/restart cycle; the scheduler performs no deduplication.
//
// Apply blocks until the control loop accepts the set, or returns
// immediately once the control loop has exited, whether through
// [Scheduler.Stop] or cancellation of the Start context.
func (s *Scheduler) Apply(entries []Entry) {
	select {
	case s.snapshots <- entries:
	case <-s.done:
	}
}

// Stop halts the scheduler and waits for all goroutines to complete.
//
// Stop cancels every running task and blocks until the control loop and all
// probe goroutines have exited, then closes the results channel. In-flight
// probes observe the cancellation through their context, so Stop does not
// wait out slow network I/O.
//
// Stop is idempotent. Calling Stop before Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.doneOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	s.closeOnce.Do(func() { close(s.results) })
}

// generation is one running task set: the runners started in response to
// one particular snapshot.
type generation struct {
	id     string
	cancel context.CancelFunc
}

// replace performs the per-snapshot transition: cancel the entire current
// generation, then start one runner per entry.
//
// Cancellation is issued before any new runner starts, but replace does not
// wait for in-flight probes of the old generation; their results may still
// land after the new generation is running.
func (s *Scheduler) replace(ctx context.Context, old *generation, entries []Entry) *generation {
	if old != nil {
		old.cancel()
	}

	gen := &generation{id: uuid.NewString()}
	genCtx, cancel := context.WithCancel(ctx)
	gen.cancel = cancel

	for _, e := range entries {
		r := &runner{
			entry:   e,
			probe:   s.probe,
			results: s.results,
			logger:  s.logger,
			gen:     gen.id,
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			// probes run under the scheduler context, not the generation
			// context: replacing the task set must not abort a probe that
			// has already started.
			r.run(genCtx, ctx, &s.wg)
		}()
	}

	s.logger.Info("task set replaced",
		"generation", gen.id,
		"tasks", len(entries),
	)
	return gen
}
