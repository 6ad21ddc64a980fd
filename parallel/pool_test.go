package parallel

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsAllWork(t *testing.T) {
	for _, workers := range []int{0, 1, 4} {
		pool := Start(workers)

		var count atomic.Int64
		for i := 0; i < 100; i++ {
			pool.Do(func() { count.Add(1) })
		}
		pool.Wait(true)

		if got := count.Load(); got != 100 {
			t.Errorf("workers=%d: have %d, want 100", workers, got)
		}
	}
}

func TestPoolSingleWorkerRunsInline(t *testing.T) {
	pool := Start(1)

	ran := false
	pool.Do(func() { ran = true })
	if !ran {
		t.Error("single-worker pool should run work inline")
	}
	pool.Wait(true)
}

func TestPoolCancelIdempotent(t *testing.T) {
	pool := Start(2)
	pool.Do(func() {})
	pool.Cancel()
	pool.Cancel()
	pool.Wait(false)
}
