package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingProbe returns a ProbeFunc that records the URL of every probe it
// executes, plus an accessor returning a snapshot of the recorded URLs.
func recordingProbe() (ProbeFunc, func() []string) {
	var mu sync.Mutex
	var urls []string

	probe := func(ctx context.Context, e Entry) Result {
		mu.Lock()
		urls = append(urls, e.URL)
		mu.Unlock()
		return Result{URL: e.URL, StatusCode: 200, CheckedAt: time.Now()}
	}
	snapshot := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), urls...)
	}
	return probe, snapshot
}

// drain consumes the results channel in the background so runners never
// block on delivery.
func drain(s *Scheduler) {
	go func() {
		for range s.Results() {
		}
	}()
}

func entry(url string, interval time.Duration) Entry {
	return Entry{Method: "GET", URL: url, Interval: interval}
}

// TestScheduler_StopBeforeStart verifies that calling Stop() on a scheduler
// that was never started does not panic and is a safe no-op.
func TestScheduler_StopBeforeStart(t *testing.T) {
	probe, _ := recordingProbe()
	s := NewScheduler(probe, testLogger())

	// this must not panic
	s.Stop()
}

// TestScheduler_StopTwice verifies that Stop() is idempotent and can be
// called multiple times without panic or deadlock.
func TestScheduler_StopTwice(t *testing.T) {
	probe, _ := recordingProbe()
	s := NewScheduler(probe, testLogger())
	s.Start(context.Background())

	// both calls must complete without panic or deadlock
	s.Stop()
	s.Stop()
}

// TestScheduler_StartTwice verifies that Start() is idempotent and calling
// it multiple times does not spawn multiple control loops.
func TestScheduler_StartTwice(t *testing.T) {
	probe, recorded := recordingProbe()
	s := NewScheduler(probe, testLogger())
	drain(s)

	s.Start(context.Background())
	s.Start(context.Background()) // second call should be no-op

	s.Apply([]Entry{entry("http://a.test/h", time.Minute)})
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	// one control loop means exactly one immediate probe for the entry
	if got := len(recorded()); got != 1 {
		t.Errorf("expected exactly 1 probe, got %d", got)
	}
}

// TestScheduler_ApplyAfterStop verifies that Apply on a stopped scheduler
// returns instead of blocking forever.
func TestScheduler_ApplyAfterStop(t *testing.T) {
	probe, _ := recordingProbe()
	s := NewScheduler(probe, testLogger())
	s.Start(context.Background())
	s.Stop()

	done := make(chan struct{})
	go func() {
		s.Apply([]Entry{entry("http://a.test/h", time.Minute)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Apply blocked after Stop")
	}
}

// TestScheduler_ApplyAfterContextCancel verifies that Apply returns
// instead of blocking forever once the Start context has been cancelled,
// even though Stop was never called.
func TestScheduler_ApplyAfterContextCancel(t *testing.T) {
	probe, _ := recordingProbe()
	s := NewScheduler(probe, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	cancel()
	time.Sleep(50 * time.Millisecond) // control loop exits

	done := make(chan struct{})
	go func() {
		s.Apply([]Entry{entry("http://a.test/h", time.Minute)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Apply blocked after context cancellation")
	}

	s.Stop()
}

// TestScheduler_ResultsClosedAfterStop verifies the results channel closes
// on Stop so consumers ranging over it terminate.
func TestScheduler_ResultsClosedAfterStop(t *testing.T) {
	probe, _ := recordingProbe()
	s := NewScheduler(probe, testLogger())
	s.Start(context.Background())
	s.Stop()

	select {
	case _, ok := <-s.Results():
		if ok {
			t.Error("expected results channel to be closed after Stop()")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for results channel to close")
	}
}

// TestScheduler_ReplacementIsTotal verifies that after a snapshot is
// applied, the active tasks are exactly that snapshot's entries regardless
// of prior state.
func TestScheduler_ReplacementIsTotal(t *testing.T) {
	probe, recorded := recordingProbe()
	s := NewScheduler(probe, testLogger())
	drain(s)
	s.Start(context.Background())
	defer s.Stop()

	interval := 40 * time.Millisecond
	s.Apply([]Entry{
		entry("http://a.test/h", interval),
		entry("http://b.test/h", interval),
	})
	time.Sleep(20 * time.Millisecond)

	s.Apply([]Entry{entry("http://c.test/h", interval)})

	// let the old generation's cancellation settle, then observe a window
	// of several intervals
	time.Sleep(20 * time.Millisecond)
	mark := len(recorded())
	time.Sleep(4 * interval)

	for _, url := range recorded()[mark:] {
		if url != "http://c.test/h" {
			t.Errorf("probe for %s observed after replacement", url)
		}
	}
	if got := len(recorded()); got == mark {
		t.Error("expected probes for the replacement entry, got none")
	}
}

// TestScheduler_EmptySnapshotCancelsAll verifies that an empty task set is
// valid and stops all probing: after one interval's wait, zero further
// probes are observed.
func TestScheduler_EmptySnapshotCancelsAll(t *testing.T) {
	probe, recorded := recordingProbe()
	s := NewScheduler(probe, testLogger())
	drain(s)
	s.Start(context.Background())
	defer s.Stop()

	interval := 30 * time.Millisecond
	s.Apply([]Entry{
		entry("http://a.test/h", interval),
		entry("http://b.test/h", interval),
	})
	time.Sleep(20 * time.Millisecond)

	s.Apply(nil)
	time.Sleep(20 * time.Millisecond) // cancellation settles
	mark := len(recorded())

	time.Sleep(3 * interval)
	if got := len(recorded()); got != mark {
		t.Errorf("observed %d probes after cancelling all tasks", got-mark)
	}
}

// TestScheduler_DuplicateSnapshotRestarts verifies that a snapshot
// identical to the previous one still triggers a full cancel/restart
// cycle: the replacement task's immediate tick fires even though its
// interval has not elapsed.
func TestScheduler_DuplicateSnapshotRestarts(t *testing.T) {
	probe, recorded := recordingProbe()
	s := NewScheduler(probe, testLogger())
	drain(s)
	s.Start(context.Background())
	defer s.Stop()

	set := []Entry{entry("http://a.test/h", time.Minute)}

	s.Apply(set)
	time.Sleep(50 * time.Millisecond)
	if got := len(recorded()); got != 1 {
		t.Fatalf("expected 1 immediate probe, got %d", got)
	}

	s.Apply(set)
	time.Sleep(50 * time.Millisecond)
	if got := len(recorded()); got != 2 {
		t.Errorf("expected restart to probe immediately again, got %d probes", got)
	}
}

// TestScheduler_ReplaceDoesNotWaitForInFlight verifies the non-blocking
// cancellation contract: replacing the task set returns control promptly
// even while a probe is hung.
func TestScheduler_ReplaceDoesNotWaitForInFlight(t *testing.T) {
	release := make(chan struct{})
	probe := func(ctx context.Context, e Entry) Result {
		if e.URL == "http://hang.test/h" {
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
		return Result{URL: e.URL, StatusCode: 200, CheckedAt: time.Now()}
	}

	s := NewScheduler(probe, testLogger())
	drain(s)
	s.Start(context.Background())

	s.Apply([]Entry{entry("http://hang.test/h", time.Minute)})
	time.Sleep(30 * time.Millisecond) // hung probe is now in flight

	done := make(chan struct{})
	go func() {
		s.Apply([]Entry{entry("http://a.test/h", time.Minute)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Apply blocked on an in-flight probe")
	}

	close(release)
	s.Stop()
}

// TestScheduler_StopAbortsInFlightProbes verifies that shutdown cancels
// the probe context, so Stop does not wait out slow network I/O.
func TestScheduler_StopAbortsInFlightProbes(t *testing.T) {
	probe := func(ctx context.Context, e Entry) Result {
		<-ctx.Done() // hang until cancelled
		return Result{URL: e.URL, Err: ctx.Err(), CheckedAt: time.Now()}
	}

	s := NewScheduler(probe, testLogger())
	drain(s)
	s.Start(context.Background())
	s.Apply([]Entry{entry("http://hang.test/h", time.Minute)})
	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not abort the in-flight probe")
	}
}

// TestScheduler_ConcurrentStartStop verifies that calling Start() and
// Stop() concurrently does not cause a race condition or panic.
// Run with: go test -race ./internal/schedule/...
func TestScheduler_ConcurrentStartStop(t *testing.T) {
	probe, _ := recordingProbe()

	// run multiple iterations to increase chance of catching races
	for i := 0; i < 100; i++ {
		s := NewScheduler(probe, testLogger())

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			s.Start(context.Background())
		}()

		go func() {
			defer wg.Done()
			s.Stop()
		}()

		wg.Wait()

		// drain any remaining results
		for range s.Results() {
		}
	}
}

// TestScheduler_ContextCancelStopsTicks verifies that cancelling the Start
// context ends all probing.
func TestScheduler_ContextCancelStopsTicks(t *testing.T) {
	probe, recorded := recordingProbe()
	s := NewScheduler(probe, testLogger())
	drain(s)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	interval := 30 * time.Millisecond
	s.Apply([]Entry{entry("http://a.test/h", interval)})
	time.Sleep(20 * time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	mark := len(recorded())

	time.Sleep(3 * interval)
	if got := len(recorded()); got != mark {
		t.Errorf("observed %d probes after context cancellation", got-mark)
	}

	s.Stop()
}
