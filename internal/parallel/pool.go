package parallel

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// Common errors.
var (
	// ErrPoolClosed is returned for tasks submitted after Close, or still
	// queued when Close ran.
	ErrPoolClosed = errors.New("pool closed")
	// ErrTaskPanic wraps a panic recovered from a task.
	ErrTaskPanic = errors.New("task panicked")
)

// job is one queued unit of work.
type job struct {
	run    func()
	cancel func(error)
}

// Pool runs submitted tasks on a fixed set of worker goroutines.
//
// Tasks are independent; the pool promises no ordering between them.
// A task runs to completion once a worker has dequeued it.
type Pool struct {
	mu     sync.Mutex
	closed bool
	queue  *Queue[job]
	wg     sync.WaitGroup
	size   int
}

// NewPool starts cfg.Workers() workers.
func NewPool(cfg Config) *Pool {
	p := &Pool{
		queue: NewQueue[job](),
		size:  cfg.Workers(),
	}

	p.wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		j, ok := p.queue.Pop()
		if !ok {
			return
		}
		j.run()
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Close stops the queue and waits for every worker to exit.
//
// Tasks still queued are never started; their futures fail with
// ErrPoolClosed. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.queue.Stop()
	p.wg.Wait()

	for _, j := range p.queue.Drain() {
		j.cancel(ErrPoolClosed)
	}
}

// Future is the pending result of a submitted task.
type Future[R any] struct {
	done  chan struct{}
	value R
	err   error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

func (f *Future[R]) resolve(value R, err error) {
	f.value, f.err = value, err
	close(f.done)
}

// Wait blocks until the task has finished and returns its result.
func (f *Future[R]) Wait() (R, error) {
	<-f.done
	return f.value, f.err
}

// Done is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Submit schedules fn on p and returns a future for its result.
//
// A panic inside fn is recovered and reported as an error wrapping
// ErrTaskPanic. After Close, the future fails immediately with ErrPoolClosed.
func Submit[R any](p *Pool, fn func() (R, error)) *Future[R] {
	f := newFuture[R]()
	j := job{
		run: func() {
			f.resolve(call(fn))
		},
		cancel: func(err error) {
			var zero R
			f.resolve(zero, err)
		},
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		j.cancel(ErrPoolClosed)
		return f
	}
	p.queue.Push(j)
	return f
}

func call[R any](fn func() (R, error)) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero R
			value = zero
			err = fmt.Errorf("%w: %v\n%s", ErrTaskPanic, r, debug.Stack())
		}
	}()
	return fn()
}
