package bench

import "sync"

// mutexLocker is the unfair baseline: a single sync.Mutex shared by
// every worker, no weights, no slices.
type mutexLocker struct {
	mu sync.Mutex
}

func newMutex() *mutexLocker {
	return &mutexLocker{}
}

func (l *mutexLocker) Register(weight, parent int) (Handle, error) {
	return &mutexHandle{mu: &l.mu}, nil
}

func (l *mutexLocker) Close() error {
	return nil
}

type mutexHandle struct {
	mu *sync.Mutex
}

func (h *mutexHandle) Acquire() {
	h.mu.Lock()
}

func (h *mutexHandle) Release() uint64 {
	h.mu.Unlock()
	return 0
}

// rwmutexLocker is the reader-writer baseline. Lookups run under the
// shared lock, mutations under the exclusive one.
type rwmutexLocker struct {
	mu sync.RWMutex
}

func newRWMutex() *rwmutexLocker {
	return &rwmutexLocker{}
}

func (l *rwmutexLocker) Register(weight, parent int) (Handle, error) {
	return &rwmutexHandle{mu: &l.mu}, nil
}

func (l *rwmutexLocker) Close() error {
	return nil
}

type rwmutexHandle struct {
	mu *sync.RWMutex
}

func (h *rwmutexHandle) Acquire() {
	h.mu.Lock()
}

func (h *rwmutexHandle) Release() uint64 {
	h.mu.Unlock()
	return 0
}

func (h *rwmutexHandle) AcquireRead() {
	h.mu.RLock()
}

func (h *rwmutexHandle) ReleaseRead() {
	h.mu.RUnlock()
}
