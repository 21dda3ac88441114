package core

import "testing"

func TestEventsSince(t *testing.T) {
	ClearEvents()
	seq := EventCount()

	RecordEvent(EvtClockLock, 1, 0)
	RecordEvent(EvtClockLost, 2, 0)
	var got []uint32
	seq = EventsSince(seq, func(e Event) { got = append(got, e.Value1) })
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected events 1 and 2 in order, got %v", got)
	}

	got = nil
	if EventsSince(seq, func(e Event) { got = append(got, e.Value1) }) != seq || len(got) != 0 {
		t.Errorf("Expected nothing new, got %v", got)
	}

	// Only the ring survives an overflow
	for i := uint32(0); i < EventRingSize+5; i++ {
		RecordEvent(EvtStoreWrite, 100+i, 0)
	}
	got = nil
	EventsSince(seq, func(e Event) { got = append(got, e.Value1) })
	if len(got) != EventRingSize || got[0] != 105 || got[len(got)-1] != 100+EventRingSize+4 {
		t.Errorf("Expected the last %d events, got %v", EventRingSize, got)
	}

	seq = EventCount()
	ClearEvents()
	RecordEvent(EvtBoot, 7, 0)
	got = nil
	EventsSince(seq, func(e Event) { got = append(got, e.Value1) })
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("Expected only the event after clearing, got %v", got)
	}
}
