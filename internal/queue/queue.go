// Package queue provides the unbounded single-consumer FIFO that
// serializes message processing.
package queue

import (
	"log/slog"
	"sync"
)

// Queue serializes handler invocations over an unbounded FIFO. At most
// one handler call is in flight at any instant; the next item is
// dequeued only after the current one settles. Handler failures and
// panics never terminate the drain loop.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	draining bool
	handle   func(T)
}

// New creates a Queue that processes items with handle, one at a time,
// in arrival order.
func New[T any](handle func(T)) *Queue[T] {
	return &Queue[T]{handle: handle}
}

// Enqueue appends item and starts a drain if none is active. It never
// processes its argument synchronously.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	go q.drain()
}

func (q *Queue[T]) drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		q.run(item)
	}
}

// run settles one item. A panic counts as settled so the drain loop
// survives to process the next item.
func (q *Queue[T]) run(item T) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("queue handler panicked", "panic", r)
		}
	}()
	q.handle(item)
}

// Len returns the number of items waiting to be processed.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
