// Package queue provides an unbounded, concurrency-safe FIFO used as the
// hand-off point between pipeline stages. Push never blocks, so producers are
// never slowed down by a lagging consumer.
package queue

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

// Queue is an unbounded FIFO. Any number of goroutines may Push; consumers
// use TryPop to drain without waiting or Pop to wait for the next item.
type Queue[T any] struct {
	mu    sync.Mutex
	items deque.Deque[T]
	// ready holds a token whenever items may be available.
	ready chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		ready: make(chan struct{}, 1),
	}
}

// Push appends item to the tail of the queue.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items.PushBack(item)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryPop removes and returns the head of the queue without waiting.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// PopBatch removes up to limit items from the head of the queue without
// waiting. It returns nil when the queue is empty.
func (q *Queue[T]) PopBatch(limit int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := min(limit, q.items.Len())
	if n <= 0 {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		item, _ := q.popLocked()
		out = append(out, item)
	}
	return out
}

// Pop waits for the next item or for ctx to be done.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	for {
		if item, ok := q.TryPop(); ok {
			return item, nil
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *Queue[T]) popLocked() (T, bool) {
	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}

	item := q.items.PopFront()

	// Leave a token for the next waiter if items remain.
	if q.items.Len() > 0 {
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}

	return item, true
}
