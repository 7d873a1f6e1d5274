package bench

import (
	"testing"
	"time"

	"github.com/Iron-Ham/fairlock"
	"github.com/Iron-Ham/fairlock/internal/scenario"
)

func flatCompiled(t *testing.T, workers int) *scenario.Compiled {
	t.Helper()
	c, err := scenario.Preset("flat", workers)
	if err != nil {
		t.Fatalf("Preset() error = %v", err)
	}
	compiled, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return compiled
}

func TestNewLockerUnknown(t *testing.T) {
	c := flatCompiled(t, 2)
	if _, err := NewLocker("spinlock", c, fairlock.NewWallClock(), 0); err == nil {
		t.Error("NewLocker(spinlock) should fail")
	}
}

func TestNewLockerKinds(t *testing.T) {
	c := flatCompiled(t, 2)
	clock := fairlock.NewWallClock()

	tests := []struct {
		name         string
		wantSnapshot bool
		wantReader   bool
	}{
		{"hfl", true, false},
		{"mutex", false, false},
		{"rwmutex", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLocker(tt.name, c, clock, 0)
			if err != nil {
				t.Fatalf("NewLocker(%s) error = %v", tt.name, err)
			}
			defer l.Close()

			if _, ok := l.(Snapshotter); ok != tt.wantSnapshot {
				t.Errorf("Snapshotter = %v, want %v", ok, tt.wantSnapshot)
			}

			h, err := l.Register(fairlock.DefaultWeight, 0)
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if _, ok := h.(ReadHandle); ok != tt.wantReader {
				t.Errorf("ReadHandle = %v, want %v", ok, tt.wantReader)
			}
		})
	}
}

func TestNewLockerEmptyNameIsHFL(t *testing.T) {
	c := flatCompiled(t, 1)
	l, err := NewLocker("", c, fairlock.NewWallClock(), 0)
	if err != nil {
		t.Fatalf("NewLocker() error = %v", err)
	}
	defer l.Close()
	if _, ok := l.(Snapshotter); !ok {
		t.Error("empty locker name should select hfl")
	}
}

func TestHFLHandleDeadline(t *testing.T) {
	c := flatCompiled(t, 1)
	l, err := NewLocker("hfl", c, fairlock.NewWallClock(), 0)
	if err != nil {
		t.Fatalf("NewLocker() error = %v", err)
	}
	defer l.Close()

	h, err := l.Register(fairlock.DefaultWeight, 0)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	h.Acquire()
	if deadline := h.Release(); deadline == 0 {
		t.Error("hfl Release() should report a slice deadline")
	}
}

func TestBaselineHandlesExclude(t *testing.T) {
	for _, name := range []string{"mutex", "rwmutex"} {
		t.Run(name, func(t *testing.T) {
			l, err := NewLocker(name, nil, nil, 0)
			if err != nil {
				t.Fatalf("NewLocker(%s) error = %v", name, err)
			}
			defer l.Close()

			a, _ := l.Register(fairlock.DefaultWeight, 0)
			b, _ := l.Register(fairlock.DefaultWeight, 0)

			a.Acquire()
			got := make(chan struct{})
			go func() {
				b.Acquire()
				close(got)
				b.Release()
			}()

			select {
			case <-got:
				t.Fatal("second handle acquired while first held the lock")
			case <-time.After(20 * time.Millisecond):
			}

			if deadline := a.Release(); deadline != 0 {
				t.Errorf("baseline Release() = %d, want 0", deadline)
			}
			<-got
		})
	}
}

func TestRWMutexSharedReads(t *testing.T) {
	l := newRWMutex()
	a, _ := l.Register(fairlock.DefaultWeight, 0)
	b, _ := l.Register(fairlock.DefaultWeight, 0)

	ra := a.(ReadHandle)
	rb := b.(ReadHandle)

	ra.AcquireRead()
	done := make(chan struct{})
	go func() {
		rb.AcquireRead()
		rb.ReleaseRead()
		close(done)
	}()
	<-done
	ra.ReleaseRead()
}
