package utils

import (
	"context"
	"sync"
	"time"
)

// WorkerPool runs jobs on a bounded number of goroutines, spacing job
// starts at least interval apart.
type WorkerPool struct {
	interval  time.Duration
	semaphore chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	lastStart time.Time
}

// NewWorkerPool creates a WorkerPool. maxWorkers below one is treated as one.
func NewWorkerPool(maxWorkers int, interval time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		interval:  interval,
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// Submit blocks until a worker slot is free, then runs job on it. When ctx
// is cancelled first the job is dropped and false is returned.
func (wp *WorkerPool) Submit(ctx context.Context, job func()) bool {
	select {
	case wp.semaphore <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	wp.wg.Add(1)

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		if err := wp.throttle(ctx); err != nil {
			return
		}
		job()
	}()
	return true
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) throttle(ctx context.Context) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wait := wp.interval - time.Since(wp.lastStart); !wp.lastStart.IsZero() && wait > 0 {
		if err := SleepContext(ctx, wait); err != nil {
			return err
		}
	}
	wp.lastStart = time.Now()
	return nil
}
