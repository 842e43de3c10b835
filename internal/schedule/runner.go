package schedule

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// runner drives the periodic probing of a single entry.
//
// A runner probes immediately on start (tick 0), then on every interval
// boundary measured from start. If a probe is still in flight when the next
// boundary arrives, that tick is skipped entirely rather than queued or run
// in parallel, so a hanging endpoint degrades only its own effective
// interval.
type runner struct {
	entry   Entry
	probe   ProbeFunc
	results chan<- Result
	logger  *slog.Logger
	gen     string

	// inFlight is the single-permit slot enforcing overlap suppression.
	inFlight atomic.Bool
}

// run executes the tick loop until genCtx is cancelled.
//
// genCtx bounds the lifetime of the task (cancelled when its generation is
// replaced); probeCtx bounds probe I/O and result delivery (cancelled only
// when the whole scheduler shuts down). Keeping the two apart means
// replacing a generation never aborts or blocks on a probe that has already
// started.
func (r *runner) run(genCtx, probeCtx context.Context, wg *sync.WaitGroup) {
	r.fire(probeCtx, wg)

	ticker := time.NewTicker(r.entry.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-genCtx.Done():
			return
		case <-ticker.C:
			r.fire(probeCtx, wg)
		}
	}
}

// fire attempts one tick. The probe runs in its own goroutine so the tick
// loop keeps observing interval boundaries; a boundary reached while the
// previous probe is still running is dropped here.
func (r *runner) fire(probeCtx context.Context, wg *sync.WaitGroup) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Debug("tick skipped, previous probe still in flight",
			"url", r.entry.URL,
			"generation", r.gen,
		)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer r.inFlight.Store(false)

		result := r.probe(probeCtx, r.entry)

		select {
		case r.results <- result:
		case <-probeCtx.Done():
			// scheduler is shutting down; nobody is consuming results
		}
	}()
}
