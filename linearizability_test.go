package fairlock

import (
	"sync"
	"testing"
	"time"

	"github.com/anishathalye/porcupine"
)

// Fetch-and-increment on a shared counter, protected only by the lock. If
// mutual exclusion ever broke, two clients would observe the same value and
// the history would stop being linearizable.
func TestFetchIncrementHistoryLinearizable(t *testing.T) {
	l := newTestLock(t, []Node{
		{ID: 0, Parent: 0, Weight: 0},
		{ID: 1, Parent: 0, Weight: 1024},
		{ID: 2, Parent: 0, Weight: 512},
	})

	const (
		clients   = 4
		perClient = 50
	)
	counter := 0
	histories := make([][]porcupine.Operation, clients)

	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		th := register(t, l, 1024, 1+i%2)
		wg.Add(1)
		go func(client int, th *Thread) {
			defer wg.Done()
			ops := make([]porcupine.Operation, 0, perClient)
			for j := 0; j < perClient; j++ {
				call := time.Now().UnixNano()
				th.Acquire()
				got := counter
				counter = got + 1
				th.Release()
				ops = append(ops, porcupine.Operation{
					ClientId: client,
					Input:    nil,
					Call:     call,
					Output:   got,
					Return:   time.Now().UnixNano(),
				})
			}
			histories[client] = ops
		}(i, th)
	}
	wg.Wait()

	if counter != clients*perClient {
		t.Fatalf("counter = %d, want %d", counter, clients*perClient)
	}

	var history []porcupine.Operation
	for _, ops := range histories {
		history = append(history, ops...)
	}
	model := porcupine.Model{
		Init: func() interface{} { return 0 },
		Step: func(state, input, output interface{}) (bool, interface{}) {
			st := state.(int)
			return output.(int) == st, st + 1
		},
		Equal: func(a, b interface{}) bool { return a.(int) == b.(int) },
	}
	if !porcupine.CheckOperations(model, history) {
		t.Fatal("fetch-and-increment history is not linearizable")
	}
}
