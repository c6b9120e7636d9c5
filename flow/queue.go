package flow

import "sync"

// Queue is a thread-safe unbounded FIFO hand-off between the flow worker
// and the relay loop. Push never blocks, so the worker can keep producing
// even when the consumer is slow; Pop blocks until an item is available.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an event to the tail of the queue.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop removes and returns the event at the head of the queue, blocking
// until one is available.
func (q *Queue) Pop() Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	ev := q.items[0]
	q.items = q.items[1:]
	return ev
}

// Len reports the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
