// Package stats collects per-worker benchmark counters and turns them
// into fairness reports: per-worker and per-group throughput, wait and
// hold times, slice violations, and the Jain fairness index.
package stats

import "sync/atomic"

// Counters accumulates one worker's progress. Workers add to these with
// atomic operations so the live dashboard can sample a run in flight.
type Counters struct {
	Acquires   atomic.Uint64
	Inserts    atomic.Uint64
	Finds      atomic.Uint64
	Updates    atomic.Uint64
	Failures   atomic.Uint64
	WaitTicks  atomic.Uint64
	HoldTicks  atomic.Uint64
	Violations atomic.Uint64
}

// Ops returns the operations completed so far
func (c *Counters) Ops() uint64 {
	return c.Inserts.Load() + c.Finds.Load() + c.Updates.Load()
}
