package pingwatch

import "context"

// Event is one item on a configuration watch stream: either a new
// [Snapshot] or a terminal source error.
//
// A delivered snapshot completely replaces the previous one. An Event with
// Err set means the source has failed in a way it cannot recover from
// (a ConfigSourceError); it is the last event on the stream and causes
// [Watcher.Start] to return the error.
type Event struct {
	// Snapshot is the complete desired probing state at this instant.
	// Ignored when Err is non-nil.
	Snapshot Snapshot

	// Err is the terminal source failure, if any.
	Err error
}

// Source supplies a live sequence of configuration snapshots.
//
// The concrete transport (a file watch, a remote document poll, a websocket
// push stream) is a pluggable collaborator; the core only consumes the
// resulting stream. The watch package provides several implementations.
type Source interface {
	// Watch starts delivery of configuration events.
	//
	// The first snapshot is delivered as soon as it is available; the core
	// never polls. The returned channel is closed when ctx is cancelled or
	// after a terminal event (Err != nil) has been delivered. Watch returns
	// an error only if the source cannot start at all.
	Watch(ctx context.Context) (<-chan Event, error)
}
