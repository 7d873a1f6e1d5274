package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/fairlock"
	"github.com/Iron-Ham/fairlock/internal/kvstore"
	"github.com/Iron-Ham/fairlock/internal/logging"
	"github.com/Iron-Ham/fairlock/internal/scenario"
	"github.com/Iron-Ham/fairlock/internal/stats"
)

type opKind int

const (
	opInsert opKind = iota
	opFind
	opUpdate
)

func (o opKind) String() string {
	switch o {
	case opInsert:
		return "insert"
	case opFind:
		return "find"
	case opUpdate:
		return "update"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Options configure a benchmark run.
type Options struct {
	// Locker names the lock under test: hfl, mutex or rwmutex. Empty
	// selects hfl.
	Locker string

	// Slice is the base slice in clock ticks. Zero keeps the lock's
	// default.
	Slice uint64

	// InsertRatio and FindRatio pick the operation mix; the remainder
	// of the unit interval goes to updates.
	InsertRatio float64
	FindRatio   float64

	// ValueSize is the payload size of inserted and updated values.
	ValueSize int

	// CSSpin busy-waits inside the critical section after the store
	// operation, to provoke slice overruns.
	CSSpin time.Duration

	// ThinkEvery and ThinkFor pause a worker outside the lock every
	// ThinkEvery operations. ThinkEvery 0 disables thinking.
	ThinkEvery int
	ThinkFor   time.Duration

	// Seed makes worker randomness reproducible. Zero draws a seed
	// from the current time.
	Seed int64

	Logger *logging.Logger
}

// Runner drives one benchmark: a set of workers hammering a shared
// store through the lock under test.
type Runner struct {
	compiled *scenario.Compiled
	store    kvstore.Store
	opts     Options

	clock    fairlock.Clock
	locker   Locker
	handles  []Handle
	counters []*stats.Counters

	// nextKey hands out globally unique key ids, starting at 1
	nextKey atomic.Int64
}

// NewRunner builds the locker for the compiled scenario and registers
// one handle per worker placement. The caller keeps ownership of the
// store; the runner owns the locker and releases it in Close.
func NewRunner(c *scenario.Compiled, store kvstore.Store, opts Options) (*Runner, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.ValueSize <= 0 {
		opts.ValueSize = 256
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	clock := fairlock.NewWallClock()
	locker, err := NewLocker(opts.Locker, c, clock, opts.Slice)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		compiled: c,
		store:    store,
		opts:     opts,
		clock:    clock,
		locker:   locker,
		handles:  make([]Handle, 0, len(c.Workers)),
		counters: make([]*stats.Counters, 0, len(c.Workers)),
	}
	r.nextKey.Store(1)

	for i, p := range c.Workers {
		h, err := locker.Register(p.Weight, p.Parent)
		if err != nil {
			locker.Close()
			return nil, fmt.Errorf("register worker %d: %w", i, err)
		}
		r.handles = append(r.handles, h)
		r.counters = append(r.counters, &stats.Counters{})
	}
	return r, nil
}

// Counters exposes the per-worker counters. They are updated with
// atomics, so sampling them while Run is in flight is fine.
func (r *Runner) Counters() []*stats.Counters {
	return r.counters
}

// Keys reports how many key ids have been handed out so far.
func (r *Runner) Keys() uint64 {
	return uint64(r.nextKey.Load() - 1)
}

// Snapshot returns the locker's scheduler state when it exposes one.
func (r *Runner) Snapshot() (fairlock.Snapshot, bool) {
	if s, ok := r.locker.(Snapshotter); ok {
		return s.Snapshot(), true
	}
	return fairlock.Snapshot{}, false
}

// Close tears the locker down. Call it after Run has returned.
func (r *Runner) Close() error {
	return r.locker.Close()
}

// Run starts every worker and blocks until the context ends and all
// workers have drained. A panic in a worker resurfaces here.
func (r *Runner) Run(ctx context.Context) {
	var wg conc.WaitGroup
	for i := range r.handles {
		wg.Go(func() {
			r.work(ctx, i)
		})
	}
	wg.Wait()
}

func (r *Runner) work(ctx context.Context, worker int) {
	h := r.handles[worker]
	ctr := r.counters[worker]
	rng := rand.New(rand.NewSource(r.opts.Seed + int64(worker)))
	log := r.opts.Logger.WithWorker(worker)
	reader, _ := h.(ReadHandle)

	placement := r.compiled.Workers[worker]
	log.Debug("worker started", "weight", placement.Weight, "parent", placement.Parent)

	spin := uint64(r.opts.CSSpin)
	var ops uint64

	for ctx.Err() == nil {
		op := r.pickOp(rng)

		waitStart := r.clock.Now()
		shared := op == opFind && reader != nil
		if shared {
			reader.AcquireRead()
		} else {
			h.Acquire()
		}
		granted := r.clock.Now()
		ctr.WaitTicks.Add(granted - waitStart)
		ctr.Acquires.Add(1)

		var err error
		switch op {
		case opInsert:
			id := int(r.nextKey.Add(1) - 1)
			err = r.store.Insert(kvstore.Key(worker, id), kvstore.Value(rng, r.opts.ValueSize))
			if errors.Is(err, kvstore.ErrDuplicateKey) {
				err = nil
			}
			ctr.Inserts.Add(1)
		case opFind:
			if key, ok := r.randomKey(rng); ok {
				_, err = r.store.Find(key)
				if errors.Is(err, kvstore.ErrKeyNotFound) {
					err = nil
				}
			}
			ctr.Finds.Add(1)
		case opUpdate:
			if key, ok := r.randomKey(rng); ok {
				err = r.store.Update(key, kvstore.Value(rng, r.opts.ValueSize))
				if errors.Is(err, kvstore.ErrKeyNotFound) {
					err = nil
				}
			}
			ctr.Updates.Add(1)
		}

		if spin > 0 {
			r.spinFor(spin)
		}

		var deadline uint64
		if shared {
			reader.ReleaseRead()
		} else {
			deadline = h.Release()
		}
		now := r.clock.Now()
		ctr.HoldTicks.Add(now - granted)
		if deadline != 0 && now > deadline {
			ctr.Violations.Add(1)
		}

		if err != nil {
			ctr.Failures.Add(1)
			log.Warn("store operation failed", "op", op.String(), "error", err)
		}

		ops++
		if r.opts.ThinkEvery > 0 && r.opts.ThinkFor > 0 && ops%uint64(r.opts.ThinkEvery) == 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.opts.ThinkFor):
			}
		}
	}

	log.Debug("worker finished",
		"ops", ops,
		"inserts", ctr.Inserts.Load(),
		"finds", ctr.Finds.Load(),
		"updates", ctr.Updates.Load(),
		"violations", ctr.Violations.Load())
}

func (r *Runner) pickOp(rng *rand.Rand) opKind {
	x := rng.Float64()
	switch {
	case x < r.opts.InsertRatio:
		return opInsert
	case x < r.opts.InsertRatio+r.opts.FindRatio:
		return opFind
	default:
		return opUpdate
	}
}

// randomKey picks an existing key id and a random owner prefix. Misses
// are part of the workload: the id may belong to a different worker
// than the chosen prefix.
func (r *Runner) randomKey(rng *rand.Rand) (string, bool) {
	next := r.nextKey.Load()
	if next <= 1 {
		return "", false
	}
	id := 1 + rng.Intn(int(next)-1)
	return kvstore.Key(rng.Intn(len(r.handles)), id), true
}

func (r *Runner) spinFor(ticks uint64) {
	end := r.clock.Now() + ticks
	for r.clock.Now() < end {
	}
}
