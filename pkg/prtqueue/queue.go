// Package prtqueue holds call events waiting for display.
package prtqueue

import (
	"sync"

	"github.com/txn2/parrot/pkg/prtcall"
)

// Queue is an unbounded FIFO of call events, safe for one producer and one
// consumer on different goroutines.
type Queue struct {
	mu    sync.Mutex
	items []prtcall.CallEvent
	head  int
}

// New creates an empty queue
func New() *Queue {
	return &Queue{}
}

// Enqueue appends an event. It never blocks and never drops.
func (q *Queue) Enqueue(ev prtcall.CallEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, ev)
}

// DequeueOldest removes and returns the oldest event. ok is false when the
// queue is empty.
func (q *Queue) DequeueOldest() (prtcall.CallEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		return prtcall.CallEvent{}, false
	}

	ev := q.items[q.head]
	q.items[q.head] = prtcall.CallEvent{}
	q.head++

	// Compact once the consumed prefix dominates the backing array
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}

	return ev, true
}

// Len returns the number of pending events
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Clear drops all pending events
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.head = 0
}
