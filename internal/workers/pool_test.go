package workers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := NewPool(4, 16, zap.NewNop())
	pool.Start()
	defer pool.Stop()

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
			wg.Done()
		})
	}
	wg.Wait()

	if got := atomic.LoadInt64(&counter); got != 100 {
		t.Errorf("ran %d jobs, want 100", got)
	}
}

func TestPoolSurvivesPanickingJob(t *testing.T) {
	pool := NewPool(1, 4, zap.NewNop())
	pool.Start()
	defer pool.Stop()

	pool.Submit(func() { panic("boom") })

	done := make(chan struct{})
	pool.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool stopped processing after a panicking job")
	}
}

func TestPoolStopIsIdempotent(t *testing.T) {
	pool := NewPool(2, 4, zap.NewNop())
	pool.Start()
	pool.Stop()
	pool.Stop()
}
