// internal/infra/executor/pool.go
package executor

import (
	"context"
	"sync"
	"time"
)

const overflowIdleTimeout = 30 * time.Second

// Pool is a bounded worker pool with a fixed set of core workers, extra
// overflow workers up to a maximum, and a bounded task queue. When the queue
// is full and no overflow slot is free, Submit runs the task on the calling
// goroutine: submission throttles itself instead of queueing without bound or
// dropping work.
//
// One shared Pool runs both the per-user dispatch tasks of a batch and the
// narrative-generation calls issued from inside them.
type Pool struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup

	mu    sync.Mutex
	extra int // currently running overflow workers

	core int
	max  int
}

// NewPool starts core workers immediately. max bounds the total worker count
// (core plus overflow); queueSize bounds the pending task queue.
func NewPool(core, max, queueSize int) *Pool {
	if core < 1 {
		core = 1
	}
	if max < core {
		max = core
	}
	p := &Pool{
		tasks: make(chan func(), queueSize),
		quit:  make(chan struct{}),
		core:  core,
		max:   max,
	}
	for i := 0; i < core; i++ {
		p.wg.Add(1)
		go p.coreWorker()
	}
	return p
}

// Submit schedules task for execution. It never blocks on a full queue and
// never drops the task: past saturation the caller runs it inline.
// Submit must not be called after Shutdown.
func (p *Pool) Submit(task func()) {
	select {
	case p.tasks <- task:
		return
	default:
	}

	p.mu.Lock()
	if p.core+p.extra < p.max {
		p.extra++
		p.mu.Unlock()
		p.wg.Add(1)
		go p.overflowWorker(task)
		return
	}
	p.mu.Unlock()

	// Caller-runs backpressure.
	task()
}

func (p *Pool) coreWorker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.quit:
			p.drain()
			return
		}
	}
}

func (p *Pool) overflowWorker(first func()) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		p.extra--
		p.mu.Unlock()
	}()

	first()
	idle := time.NewTimer(overflowIdleTimeout)
	defer idle.Stop()
	for {
		select {
		case task := <-p.tasks:
			task()
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(overflowIdleTimeout)
		case <-idle.C:
			return
		case <-p.quit:
			p.drain()
			return
		}
	}
}

// drain runs whatever is still queued so shutdown never loses accepted work.
func (p *Pool) drain() {
	for {
		select {
		case task := <-p.tasks:
			task()
		default:
			return
		}
	}
}

// Shutdown stops all workers after the queue is drained, waiting up to the
// context deadline. Call it exactly once.
func (p *Pool) Shutdown(ctx context.Context) error {
	close(p.quit)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
