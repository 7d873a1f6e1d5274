package fairlock_test

import (
	"fmt"

	"github.com/Iron-Ham/fairlock"
)

func Example() {
	clk := fairlock.NewManualClock(0)
	lock, err := fairlock.New([]fairlock.Node{
		{ID: 0, Parent: 0, Weight: 0},    // root
		{ID: 1, Parent: 0, Weight: 1024}, // interactive
		{ID: 2, Parent: 0, Weight: 256},  // batch
	}, fairlock.WithClock(clk), fairlock.WithSlice(1000))
	if err != nil {
		fmt.Println("build:", err)
		return
	}

	th, err := lock.Register(1024, 1)
	if err != nil {
		fmt.Println("register:", err)
		return
	}

	th.Acquire()
	clk.Advance(400) // 400 ticks of critical section
	sliceEnd := th.Release()

	fmt.Println("slice end:", sliceEnd)
	fmt.Println("overran:", clk.Now() > sliceEnd)
	fmt.Println("state:", lock.Snapshot().State)
	// Output:
	// slice end: 1000
	// overran: false
	// state: idle
}

func ExampleLock_Snapshot() {
	lock, err := fairlock.New([]fairlock.Node{
		{ID: 0, Parent: 0, Weight: 0},
		{ID: 1, Parent: 0, Weight: 512},
	}, fairlock.WithClock(fairlock.NewManualClock(0)))
	if err != nil {
		fmt.Println("build:", err)
		return
	}
	th, err := lock.Register(256, 1)
	if err != nil {
		fmt.Println("register:", err)
		return
	}

	th.Acquire()
	snap := lock.Snapshot()
	fmt.Println("state:", snap.State)
	fmt.Println("holder:", snap.Holder)
	fmt.Println("grants:", snap.Nodes[th.Node()].Grants)
	th.Release()
	// Output:
	// state: held
	// holder: 2
	// grants: 1
}
