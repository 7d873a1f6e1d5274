package fairlock

import (
	"fmt"
	"sync"
)

const (
	// DefaultWeight is the reference weight. A node of this weight receives
	// exactly the base slice and accrues service at face value.
	DefaultWeight = 1024

	// DefaultSlice is the base slice in clock ticks, one millisecond at the
	// default clock's nanosecond resolution.
	DefaultSlice = 1_000_000
)

// State is the lock's coarse condition as reported by Snapshot.
type State int

const (
	// StateIdle means no holder and no waiters.
	StateIdle State = iota
	// StateHeld means a holder and no waiters.
	StateHeld
	// StateContended means a holder plus at least one parked waiter.
	StateContended
	// StateClosed means the lock was torn down.
	StateClosed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHeld:
		return "held"
	case StateContended:
		return "contended"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Lock is a hierarchical fair lock. It grants mutual exclusion in the order
// dictated by weighted fair-share rules applied recursively over a tree of
// groups, not in FIFO order. See the package documentation for the model.
//
// All methods are safe for concurrent use. The zero value is not usable;
// construct with New.
type Lock struct {
	mu        sync.Mutex
	nodes     []node
	clock     Clock
	slice     uint64
	holder    int
	grantedAt uint64
	waiting   int
	closed    bool
}

// Option configures a Lock at construction.
type Option func(*Lock)

// WithClock replaces the default wall clock. All ticks the lock handles are
// then in c's unit.
func WithClock(c Clock) Option {
	return func(l *Lock) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithSlice sets the base slice in clock ticks. A node of DefaultWeight
// gets exactly this much; others get it scaled by weight.
func WithSlice(ticks uint64) Option {
	return func(l *Lock) {
		if ticks > 0 {
			l.slice = ticks
		}
	}
}

// New builds a lock over the given group hierarchy. The node list must
// satisfy the invariants documented on Node; violations return an error
// wrapping ErrInvalidHierarchy. The lock starts idle.
func New(nodes []Node, opts ...Option) (*Lock, error) {
	arena, err := buildArena(nodes)
	if err != nil {
		return nil, err
	}
	l := &Lock{
		nodes:  arena,
		slice:  DefaultSlice,
		holder: -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.clock == nil {
		l.clock = NewWallClock()
	}
	return l, nil
}

// Thread is one contender's handle. Each goroutine that wants the lock
// registers its own Thread; handles must not be shared between goroutines
// that acquire concurrently.
type Thread struct {
	lock *Lock
	id   int
}

// Node returns the id of the leaf backing this handle.
func (t *Thread) Node() int {
	return t.id
}

// Register attaches a new leaf with the given weight under the group node
// parent and returns its handle. The leaf starts with zero service, so it
// may be granted ahead of longer-waiting high-service leaves at first.
//
// Registration is allowed while other threads contend. It fails with
// ErrUnknownParent if parent does not name a group node, ErrInvalidWeight
// if weight is not positive, and ErrClosed after Close.
func (l *Lock) Register(weight, parent int) (*Thread, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if weight <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeight, weight)
	}
	if parent < 0 || parent >= len(l.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParent, parent)
	}
	if l.nodes[parent].leaf {
		return nil, fmt.Errorf("%w: node %d is a registered leaf", ErrUnknownParent, parent)
	}
	id := len(l.nodes)
	l.nodes = append(l.nodes, node{
		id:     id,
		parent: parent,
		weight: weight,
		leaf:   true,
		ready:  make(chan struct{}, 1),
	})
	l.nodes[parent].children = append(l.nodes[parent].children, id)
	return &Thread{lock: l, id: id}, nil
}

// Acquire blocks until the lock is granted to this handle. When the lock is
// idle the caller takes it immediately; otherwise the leaf parks and is
// woken individually once the grant engine selects it. There is no
// broadcast: each release wakes at most one waiter.
//
// Acquire panics on misuse: on a closed lock, re-entered by the current
// holder, or called concurrently on a single handle.
func (t *Thread) Acquire() {
	l := t.lock
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		panic("fairlock: acquire of closed lock")
	}
	if l.holder == t.id {
		l.mu.Unlock()
		panic("fairlock: acquire re-entered by current holder")
	}
	if l.nodes[t.id].pending != 0 {
		l.mu.Unlock()
		panic("fairlock: concurrent acquire on a single thread")
	}
	if l.holder == -1 {
		// Idle implies no waiters, so this is not a scheduling decision.
		l.grantLocked(t.id, l.clock.Now())
		l.mu.Unlock()
		return
	}
	ready := l.parkLocked(t.id)
	l.mu.Unlock()
	<-ready
}

// Release hands the lock back. It charges the hold to the leaf and its
// ancestors, bans any node that overran its slice, wakes the next selected
// waiter if there is one, and returns the slice-end deadline the holder had
// been given. Callers that compare the deadline with the current clock
// reading can tell whether they overstayed.
//
// Release panics when called by a handle that does not hold the lock.
// Everything Release mutates is ordered before the next grant.
func (t *Thread) Release() uint64 {
	l := t.lock
	l.mu.Lock()
	if l.holder != t.id {
		l.mu.Unlock()
		panic("fairlock: release of lock not held by this thread")
	}
	now := l.clock.Now()
	held := now - l.grantedAt
	l.chargeLocked(t.id, held)
	sliceEnd := l.nodes[t.id].sliceEnd
	l.banLocked(t.id, held, now)
	if l.waiting > 0 {
		l.unparkLocked(l.pickNextLocked(now), now)
	} else {
		l.holder = -1
	}
	l.mu.Unlock()
	return sliceEnd
}

// Close tears the lock down. It fails with ErrBusy while the lock is held
// or has waiters, succeeds exactly once, and returns ErrClosed on any later
// call. Acquire after Close panics; Register after Close returns ErrClosed.
func (l *Lock) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if l.holder != -1 {
		return fmt.Errorf("%w: held by node %d", ErrBusy, l.holder)
	}
	if l.waiting > 0 {
		return fmt.Errorf("%w: %d waiters", ErrBusy, l.waiting)
	}
	l.closed = true
	return nil
}

// NodeInfo is a point-in-time copy of one node's accounting state.
type NodeInfo struct {
	ID     int
	Parent int
	Weight int
	Leaf   bool

	Service     uint64
	BannedUntil uint64
	SliceEnd    uint64
	Grants      uint64
	Waiting     bool
}

// Snapshot is a consistent copy of the lock's observable state, taken in
// one critical section.
type Snapshot struct {
	State   State
	Holder  int
	Waiting int
	Now     uint64
	Nodes   []NodeInfo
}

// Snapshot returns the lock's current state for inspection. It is meant for
// statistics, dashboards and tests; the copy is consistent but immediately
// stale.
func (l *Lock) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Snapshot{
		Holder:  l.holder,
		Waiting: l.waiting,
		Now:     l.clock.Now(),
		Nodes:   make([]NodeInfo, len(l.nodes)),
	}
	switch {
	case l.closed:
		s.State = StateClosed
	case l.holder == -1:
		s.State = StateIdle
	case l.waiting == 0:
		s.State = StateHeld
	default:
		s.State = StateContended
	}
	for i := range l.nodes {
		nd := &l.nodes[i]
		s.Nodes[i] = NodeInfo{
			ID:          nd.id,
			Parent:      nd.parent,
			Weight:      nd.weight,
			Leaf:        nd.leaf,
			Service:     nd.service,
			BannedUntil: nd.bannedUntil,
			SliceEnd:    nd.sliceEnd,
			Grants:      nd.grants,
			Waiting:     nd.leaf && nd.pending > 0,
		}
	}
	return s
}
