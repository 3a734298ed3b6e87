package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Job is one unit of work run on a pool goroutine.
type Job func(ctx context.Context) error

// ResultCallback is invoked from the worker goroutine once a job returns.
type ResultCallback func(err error)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan task
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type task struct {
	ctx  context.Context
	name string
	run  Job
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan task, 1)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for t := range p.jobs {
		if err := t.ctx.Err(); err != nil {
			log.Printf("Worker: skipping %s: %v", t.name, err)
			if t.cb != nil {
				t.cb(err)
			}
			continue
		}
		err := t.run(t.ctx)
		log.Printf("Worker: %s finished, err=%v", t.name, err)
		if t.cb != nil {
			t.cb(err)
		}
	}
}

// Submit enqueues a job if the queue slot is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, name string, run Job, cb ResultCallback) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- task{ctx: ctx, name: name, run: run, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining queued work. It is safe to call twice.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
