package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trasdn/netsim/sim/trace"
)

// stubEvent has a fixed time and priority and records its label when
// popped.
type stubEvent struct {
	time     Time
	priority uint32
	label    string
}

func (e *stubEvent) Timestamp() Time              { return e.time }
func (e *stubEvent) Type() EventType              { return "stub" }
func (e *stubEvent) Priority() uint32             { return e.priority }
func (e *stubEvent) Trigger(*Simulator)           {}
func (e *stubEvent) Record(now Time) trace.Record { return trace.Record{Time: uint64(now)} }

func drain(q *EventQueue) []string {
	var out []string
	for q.Len() > 0 {
		out = append(out, q.PopNext().(*stubEvent).label)
	}
	return out
}

func TestEventQueue_OrdersByTimeThenPriorityThenInsertion(t *testing.T) {
	q := NewEventQueue()
	q.Schedule(&stubEvent{time: 20, priority: 1, label: "late"})
	q.Schedule(&stubEvent{time: 10, priority: 9, label: "b"})
	q.Schedule(&stubEvent{time: 10, priority: 3, label: "a"})
	q.Schedule(&stubEvent{time: 10, priority: 9, label: "c"})
	q.Schedule(&stubEvent{time: 5, priority: 100, label: "first"})

	assert.Equal(t, []string{"first", "a", "b", "c", "late"}, drain(q))
}

func TestEventQueue_EmptyPeekAndPop(t *testing.T) {
	q := NewEventQueue()
	assert.Nil(t, q.Peek())
	assert.Nil(t, q.PopNext())
}

func TestEventQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewEventQueue()
	q.Schedule(&stubEvent{time: 1, label: "x"})
	assert.Equal(t, "x", q.Peek().(*stubEvent).label)
	assert.Equal(t, 1, q.Len())
}
