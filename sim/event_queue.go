package sim

import "container/heap"

type queuedEvent struct {
	ev  Event
	seq uint64
}

// EventQueue implements a priority queue with deterministic ordering.
// Ordering: timestamp → priority hash → insertion sequence.
// The sequence only matters when two events share both time and hash.
type EventQueue struct {
	events  []queuedEvent
	nextSeq uint64
}

// NewEventQueue creates a new event queue
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		events: make([]queuedEvent, 0),
	}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Less implements heap.Interface with deterministic ordering
func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]

	// Primary: timestamp (lower first)
	if ei.ev.Timestamp() != ej.ev.Timestamp() {
		return ei.ev.Timestamp() < ej.ev.Timestamp()
	}

	// Secondary: priority hash (lower first)
	if pi, pj := ei.ev.Priority(), ej.ev.Priority(); pi != pj {
		return pi < pj
	}

	// Tertiary: insertion order
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (q *EventQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
}

// Push implements heap.Interface
func (q *EventQueue) Push(x interface{}) {
	q.events = append(q.events, x.(queuedEvent))
}

// Pop implements heap.Interface
func (q *EventQueue) Pop() interface{} {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the queue
func (q *EventQueue) Schedule(e Event) {
	heap.Push(q, queuedEvent{ev: e, seq: q.nextSeq})
	q.nextSeq++
}

// PopNext removes and returns the next event
func (q *EventQueue) PopNext() Event {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(queuedEvent).ev
}

// Peek returns the next event without removing it
func (q *EventQueue) Peek() Event {
	if q.Len() == 0 {
		return nil
	}
	return q.events[0].ev
}
