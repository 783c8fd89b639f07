package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO between one producer and one consumer. Push
// never blocks on a slow consumer; buffered items live in memory until
// popped. Capacity is unbounded by design: the dispatch layer eliminates
// excess items by coalescing policy, not by backpressure.
type Queue[T any] struct {
	mu     sync.Mutex
	buf    []T
	closed bool

	// ready carries at most one wake-up for the single consumer.
	ready chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		ready: make(chan struct{}, 1),
	}
}

// Push appends v to the queue. It must not be called after Close; doing so
// is a producer-side invariant violation and panics.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		panic("queue: Push after Close")
	}
	q.buf = append(q.buf, v)
	q.mu.Unlock()
	q.wake()
}

// Pop blocks until an item is available and returns it. It returns false
// once the queue is closed and fully drained, or once ctx is cancelled.
func (q *Queue[T]) Pop(ctx context.Context) (T, bool) {
	var zero T
	for {
		q.mu.Lock()
		if ctx.Err() != nil {
			q.mu.Unlock()
			return zero, false
		}
		if len(q.buf) > 0 {
			v := q.popLocked()
			q.mu.Unlock()
			return v, true
		}
		if q.closed {
			q.mu.Unlock()
			return zero, false
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return zero, false
		}
	}
}

// TryPop returns the next item without blocking, or false when the queue is
// currently empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// Depth reports the number of buffered items.
func (q *Queue[T]) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops intake. Buffered items remain poppable; once drained, Pop
// returns false. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *Queue[T]) popLocked() T {
	v := q.buf[0]
	q.buf = q.buf[1:]
	if len(q.buf) == 0 {
		// Let the backing array be collected between bursts.
		q.buf = nil
	}
	return v
}

func (q *Queue[T]) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
