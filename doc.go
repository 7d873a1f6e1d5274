// Package fairlock implements a hierarchical fair lock: a mutual exclusion
// lock that picks the next holder by weighted fair-share rules applied
// recursively over a tree of groups, the way weighted CPU shares work in
// cgroups, but for lock acquisition order.
//
// Contenders are leaves of the tree; interior nodes are groups carrying
// weights. Every completed hold is charged to the leaf and all its
// ancestors as weighted service (hold time divided by weight). When the
// lock is released the engine descends from the root and at every level
// picks the pending child with the least service, so grant order tracks
// entitlement rather than arrival order. A node that holds the lock past
// its slice is banned for a while, which throttles long critical sections
// without ever excluding a node for good.
//
// # Main Types
//
//   - [Lock]: the lock itself, built over a group hierarchy with [New]
//   - [Node]: one group node in the construction spec
//   - [Thread]: a contender's handle, created with [Lock.Register]
//   - [Clock]: the injected monotonic time source
//   - [ManualClock]: a hand-driven clock for deterministic tests
//   - [Snapshot], [NodeInfo]: point-in-time state for stats and dashboards
//
// # Usage
//
// Build a hierarchy, register one Thread per contending goroutine, then
// bracket critical sections with Acquire and Release:
//
//	lock, err := fairlock.New([]fairlock.Node{
//		{ID: 0, Parent: 0, Weight: 0},    // root
//		{ID: 1, Parent: 0, Weight: 1024}, // interactive
//		{ID: 2, Parent: 0, Weight: 256},  // batch
//	})
//	if err != nil {
//		return err
//	}
//	th, err := lock.Register(1024, 1) // a leaf under "interactive"
//	if err != nil {
//		return err
//	}
//
//	th.Acquire()
//	// critical section
//	sliceEnd := th.Release()
//	if clockNow > sliceEnd {
//		// we overstayed our slice and will be banned for a bit
//	}
//
// With the nodes above, leaves under node 1 collectively receive about four
// times the lock time of leaves under node 2, regardless of how many leaves
// each group has.
//
// # Concurrency
//
// All bookkeeping runs in one short internal critical section. A blocked
// Acquire parks on its own channel and is woken individually when selected;
// a release never wakes more than one waiter. Release happens-before the
// next grant. Misuse is loud: releasing a lock you do not hold, acquiring
// on a closed lock, or re-entering Acquire panics.
//
// # Time
//
// The lock never reads system time directly. All durations are ticks of
// the injected [Clock]; the default counts nanoseconds monotonically. Slice
// length defaults to [DefaultSlice] and scales with node weight relative to
// [DefaultWeight].
package fairlock
