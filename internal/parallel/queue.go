package parallel

import "sync"

// Queue is an unbounded FIFO safe for concurrent producers and consumers.
//
// Pop blocks until an item arrives or the queue is stopped. Once stopped,
// Pop returns false even if items remain; Drain retrieves them. Restart
// clears the stop flag so the queue can be reused.
type Queue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []T
	stopped bool
}

// NewQueue creates an empty, running queue.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues item and wakes one waiting consumer.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop removes and returns the oldest item.
//
// It blocks while the queue is empty and running, and returns false once
// the queue is stopped.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.stopped {
		q.cond.Wait()
	}

	var zero T
	if q.stopped {
		return zero, false
	}

	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Stop wakes every waiting consumer; subsequent Pops return false.
// Stop is idempotent.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Restart clears the stop flag.
func (q *Queue[T]) Restart() {
	q.mu.Lock()
	q.stopped = false
	q.mu.Unlock()
}

// Stopped reports whether Stop was called since the last Restart.
func (q *Queue[T]) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// Len returns the number of pending items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns every pending item.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
