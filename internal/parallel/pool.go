// Package parallel runs independent synthesis runs concurrently for the
// CLI's batch subcommand: cmd/modalsynth submits one task per experiment
// in a batch file, each owning its own pair of smt.Session values, sharing
// no solver state. The workload is a fixed list of one-shot tasks, so the
// pool is deliberately static: a bounded task queue drained by a fixed
// number of workers, with no scaling, statistics, or scheduling beyond
// that.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("parallel: pool is shut down")

// WorkerPool executes submitted tasks on a fixed number of goroutines. The
// task queue is bounded, so Submit blocks (honoring its context) once the
// workers fall behind.
type WorkerPool struct {
	mu     sync.Mutex
	closed bool
	tasks  chan func()
	wg     sync.WaitGroup
}

// NewWorkerPool starts a pool of the given number of workers. A
// non-positive count defaults to the number of CPU cores.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &WorkerPool{tasks: make(chan func(), workers*2)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues task for execution, blocking while the queue is full.
// It fails if ctx is done before the task is accepted, or if the pool has
// been shut down.
func (p *WorkerPool) Submit(ctx context.Context, task func()) error {
	if task == nil {
		return errors.New("parallel: nil task")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting new tasks and waits for every queued and
// in-flight task to finish. Safe to call more than once.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
