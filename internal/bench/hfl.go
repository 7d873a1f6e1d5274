package bench

import (
	"github.com/Iron-Ham/fairlock"
	"github.com/Iron-Ham/fairlock/internal/scenario"
)

// hflLocker adapts the hierarchical fair lock to the Locker interface.
type hflLocker struct {
	lock *fairlock.Lock
}

func newHFL(c *scenario.Compiled, clock fairlock.Clock, slice uint64) (*hflLocker, error) {
	opts := []fairlock.Option{fairlock.WithClock(clock)}
	if slice > 0 {
		opts = append(opts, fairlock.WithSlice(slice))
	}
	lock, err := fairlock.New(c.Nodes, opts...)
	if err != nil {
		return nil, err
	}
	return &hflLocker{lock: lock}, nil
}

func (l *hflLocker) Register(weight, parent int) (Handle, error) {
	t, err := l.lock.Register(weight, parent)
	if err != nil {
		return nil, err
	}
	return &hflHandle{thread: t}, nil
}

func (l *hflLocker) Close() error {
	return l.lock.Close()
}

func (l *hflLocker) Snapshot() fairlock.Snapshot {
	return l.lock.Snapshot()
}

type hflHandle struct {
	thread *fairlock.Thread
}

func (h *hflHandle) Acquire() {
	h.thread.Acquire()
}

func (h *hflHandle) Release() uint64 {
	return h.thread.Release()
}
