package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a noteworthy control-loop event for post-mortem analysis
type Event struct {
	EventType uint8  // Event type code
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtBoot        = 1 // Settings loaded at boot (v1=source)
	EvtStoreWrite  = 2 // Settings written (v1=address, v2=bytes)
	EvtStoreError  = 3 // Store reported an error (v1=error code)
	EvtClockLock   = 4 // Tempo estimate received (v1=cycle time us)
	EvtClockLost   = 5 // External clock timed out
	EvtQueueDrop   = 6 // Event queue overflow (v1=dropped total)
	EvtModeChange  = 7 // Controller mode changed (v1=mode, v2=fine tune)
	EvtEffectFixed = 8 // Loaded field replaced by its default (v1=effect)
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, for post-mortem)
	eventRing     [EventRingSize]Event
	eventRingHead uint8  // Next write position
	eventCount    uint32 // Events recorded since start, never reset
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugWriterScoped installs writer until the returned function is called
func SetDebugWriterScoped(writer DebugWriter) (restore func()) {
	prev := debugPrintln
	debugPrintln = writer
	return func() { debugPrintln = prev }
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures an event in the ring buffer
// This is always non-blocking and allocation free
func RecordEvent(eventType uint8, value1, value2 uint32) {
	idx := eventRingHead
	eventRing[idx] = Event{
		EventType: eventType,
		Clock:     GetTime(),
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
	eventCount++
}

// EventCount returns the number of events recorded so far
func EventCount() uint32 {
	return eventCount
}

// EventsSince calls fn, oldest first, for the events recorded after count
// seq and returns the current count. Events already overwritten in the ring
// or cleared are skipped.
func EventsSince(seq uint32, fn func(Event)) uint32 {
	n := eventCount - seq
	if n > EventRingSize {
		n = EventRingSize
	}
	for i := n; i > 0; i-- {
		evt := eventRing[(uint32(eventRingHead)+EventRingSize-i)%EventRingSize]
		if evt.EventType != 0 {
			fn(evt)
		}
	}
	return eventCount
}

// LastEvent returns the most recently recorded event
func LastEvent() Event {
	return eventRing[(eventRingHead+EventRingSize-1)%EventRingSize]
}

// DumpEvents outputs the event ring buffer, oldest first
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")

	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		idx := (start + i) % EventRingSize
		evt := &eventRing[idx]
		if evt.EventType == 0 {
			continue // Empty slot
		}

		debugPrintln("[EVENTS] " + EventName(evt.EventType) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// EventName returns the printable name of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtBoot:
		return "BOOT"
	case EvtStoreWrite:
		return "STORE_WRITE"
	case EvtStoreError:
		return "STORE_ERROR!"
	case EvtClockLock:
		return "CLOCK_LOCK"
	case EvtClockLost:
		return "CLOCK_LOST"
	case EvtQueueDrop:
		return "QUEUE_DROP!"
	case EvtModeChange:
		return "MODE"
	case EvtEffectFixed:
		return "FIELD_FIXED"
	default:
		return "UNKNOWN"
	}
}

// ClearEvents clears the event buffer
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
