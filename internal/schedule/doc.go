// Package schedule implements the reconfiguration-and-scheduling engine.
//
// A Scheduler consumes complete task-set descriptions via Apply. Every
// applied set starts a new generation: the previous generation's runners
// are cancelled (without waiting for any in-flight probe) and one runner is
// started per entry. A runner ticks on a fixed interval measured from its
// start, probing immediately on start and skipping any tick whose previous
// probe is still in flight, so at most one probe per entry is ever in
// flight. Results from all runners of all generations are emitted on a
// single channel for the lifetime of the scheduler.
package schedule
