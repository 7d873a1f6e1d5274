// Package bench drives weighted lock benchmarks over a key-value
// workload.
//
// A Runner expands a compiled scenario into one goroutine per worker.
// Each iteration picks insert, find or update by the configured mix,
// enters the lock under test, touches the shared store, and leaves.
// Wait ticks, hold ticks and slice violations accumulate in per-worker
// lock-free counters so a dashboard can sample a run in flight.
package bench

import (
	"fmt"

	"github.com/Iron-Ham/fairlock"
	"github.com/Iron-Ham/fairlock/internal/scenario"
)

// Handle is one worker's endpoint on a shared lock.
type Handle interface {
	// Acquire blocks until the lock is granted.
	Acquire()

	// Release hands the lock back. It returns the slice deadline the
	// holder had been given, in clock ticks, or 0 when the locker does
	// not enforce slices.
	Release() uint64
}

// ReadHandle is implemented by handles that can serve lookups under a
// shared lock instead of the exclusive one.
type ReadHandle interface {
	AcquireRead()
	ReleaseRead()
}

// Locker hands out per-worker handles on one shared lock.
type Locker interface {
	// Register attaches a worker with the given weight under the group
	// node parent. Lockers without a hierarchy ignore both.
	Register(weight, parent int) (Handle, error)

	// Close tears the lock down once every worker is done with it.
	Close() error
}

// Snapshotter is implemented by lockers that expose scheduler state.
type Snapshotter interface {
	Snapshot() fairlock.Snapshot
}

// NewLocker builds the named locker over the compiled hierarchy. The
// clock and slice only apply to lockers that meter their holders.
func NewLocker(name string, c *scenario.Compiled, clock fairlock.Clock, slice uint64) (Locker, error) {
	switch name {
	case "", "hfl":
		return newHFL(c, clock, slice)
	case "mutex":
		return newMutex(), nil
	case "rwmutex":
		return newRWMutex(), nil
	default:
		return nil, fmt.Errorf("unknown locker %q", name)
	}
}
