// Package dispatch moves expensive producer work off the controlling
// goroutine and delivers each result back to it exactly once.
package dispatch

import "sync"

// Requester accepts producer/callback pairs. It exists so consumers
// can be driven by a deterministic fake in tests.
type Requester interface {
	// Request schedules produce off-thread. The callback runs later,
	// on the goroutine that drains the queue, never inline.
	Request(produce func() any, callback func(any))
}

// Queue executes producers on their own goroutines and buffers the
// finished callbacks until the controlling goroutine drains them.
// Arrival is unbounded: a submitted request always completes and its
// result is always delivered, even if the caller has lost interest.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// NewQueue creates an empty dispatch queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Request runs produce on a new goroutine and queues the callback
// with its result for the next Drain.
func (q *Queue) Request(produce func() any, callback func(any)) {
	go func() {
		result := produce()
		q.mu.Lock()
		q.pending = append(q.pending, func() { callback(result) })
		q.mu.Unlock()
	}()
}

// Drain runs all completion callbacks queued so far on the calling
// goroutine and reports how many ran. Callbacks queued by producers
// finishing during the drain wait for the next call, so one drain is
// bounded work at a fixed point in the controlling cycle.
func (q *Queue) Drain() int {
	q.mu.Lock()
	ready := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, deliver := range ready {
		deliver()
	}
	return len(ready)
}

// Pending reports how many completed results await delivery.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
