package fairlock

import (
	"sync/atomic"
	"time"
)

// Clock is the lock's monotonic time source. Now returns the current tick.
// Slice lengths, ban penalties and the values returned by Release are all
// expressed in the clock's own unit.
type Clock interface {
	Now() uint64
}

// wallClock counts nanoseconds since construction using the runtime's
// monotonic reading.
type wallClock struct {
	base time.Time
}

// NewWallClock returns the default clock: nanoseconds elapsed since the
// clock was created, immune to wall-time adjustments.
func NewWallClock() Clock {
	return &wallClock{base: time.Now()}
}

func (c *wallClock) Now() uint64 {
	return uint64(time.Since(c.base))
}

// ManualClock is a Clock advanced explicitly by the caller. It is intended
// for deterministic tests and simulations.
type ManualClock struct {
	ticks atomic.Uint64
}

// NewManualClock returns a ManualClock starting at start ticks.
func NewManualClock(start uint64) *ManualClock {
	c := &ManualClock{}
	c.ticks.Store(start)
	return c
}

// Now returns the current tick.
func (c *ManualClock) Now() uint64 {
	return c.ticks.Load()
}

// Advance moves the clock forward by d ticks and returns the new reading.
func (c *ManualClock) Advance(d uint64) uint64 {
	return c.ticks.Add(d)
}

// Set jumps the clock to t. The clock is monotonic; Set panics if t is
// behind the current reading.
func (c *ManualClock) Set(t uint64) {
	for {
		cur := c.ticks.Load()
		if t < cur {
			panic("fairlock: ManualClock set backwards")
		}
		if c.ticks.CompareAndSwap(cur, t) {
			return
		}
	}
}
