package input

import "sync/atomic"

// EventKind tags the payload of an Event
type EventKind uint8

const (
	EventNone EventKind = iota
	EventEncoder
	EventButton
	EventClockEstimate
)

// Event is one decoded input, passed from interrupt context to the main loop
type Event struct {
	Kind      EventKind
	Rotation  Rotation     // EventEncoder
	Button    ButtonAction // EventButton
	CycleTime uint32       // EventClockEstimate, microseconds
	Time      uint32
}

// QueueSize is the number of events the queue holds
const QueueSize = 32

// Queue is a single-producer single-consumer ring of events. Interrupt
// handlers Push, the main loop Pops. Indices run free and are reduced
// modulo QueueSize on access.
type Queue struct {
	buf     [QueueSize]Event
	head    atomic.Uint32 // Next slot to read, owned by the consumer
	tail    atomic.Uint32 // Next slot to write, owned by the producer
	dropped atomic.Uint32
}

// Push appends an event. A full queue drops the event and counts it.
func (q *Queue) Push(e Event) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= QueueSize {
		q.dropped.Add(1)
		return false
	}
	q.buf[tail%QueueSize] = e
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest event
func (q *Queue) Pop() (Event, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Event{}, false
	}
	e := q.buf[head%QueueSize]
	q.head.Store(head + 1)
	return e, true
}

// Len returns the number of queued events
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Dropped returns the number of events lost to overflow
func (q *Queue) Dropped() uint32 {
	return q.dropped.Load()
}

// Reset empties the queue. Call with interrupts disabled.
func (q *Queue) Reset() {
	q.head.Store(q.tail.Load())
	q.dropped.Store(0)
}
