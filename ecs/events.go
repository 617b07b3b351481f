package ecs

// Queue is a FIFO of deferred work. Items pushed while a drained batch is
// being processed land in the next batch.
type Queue[T any] struct {
	items []T
}

// Push adds an item.
func (q *Queue[T]) Push(item T) {
	q.items = append(q.items, item)
}

// Drain returns all items and clears the queue.
func (q *Queue[T]) Drain() []T {
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}
