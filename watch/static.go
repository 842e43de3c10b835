package watch

import (
	"context"

	"github.com/pingwatch/pingwatch"
)

// StaticSource delivers a fixed sequence of snapshots and then goes quiet.
//
// The stream stays open after the last snapshot (the configuration simply
// never changes again) until the context is cancelled. Useful for tests,
// one-shot probing, and running against a configuration that is known not
// to change.
type StaticSource struct {
	snapshots []pingwatch.Snapshot
}

// NewStatic creates a [StaticSource] delivering the given snapshots in
// order.
func NewStatic(snapshots ...pingwatch.Snapshot) *StaticSource {
	return &StaticSource{snapshots: snapshots}
}

// Watch implements pingwatch.Source.
func (s *StaticSource) Watch(ctx context.Context) (<-chan pingwatch.Event, error) {
	events := make(chan pingwatch.Event, len(s.snapshots))
	for _, snap := range s.snapshots {
		events <- pingwatch.Event{Snapshot: snap}
	}

	go func() {
		<-ctx.Done()
		close(events)
	}()

	return events, nil
}
