// Package workers provides a bounded goroutine pool. It is injected where
// needed rather than held as a process-global.
package workers

import (
	"sync"

	"go.uber.org/zap"
)

type Pool struct {
	jobs   chan func()
	size   int
	logger *zap.Logger

	wg   sync.WaitGroup
	quit chan struct{}
	once sync.Once
}

func NewPool(size, queueSize int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		jobs:   make(chan func(), queueSize),
		size:   size,
		logger: logger,
		quit:   make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobs:
					p.run(workerID, job)
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

// run isolates a single job so a panic cannot take the worker down.
func (p *Pool) run(workerID int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker recovered from panic",
				zap.Int("worker_id", workerID),
				zap.Any("panic", r),
			)
		}
	}()
	job()
}

// Submit enqueues a job, blocking while the queue is full.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
