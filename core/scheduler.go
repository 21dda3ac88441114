package core

// Timer represents a scheduled main-loop event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer

	queued bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// TimerList is a wake-time ordered list of timers polled from the main loop.
// Handlers never run in interrupt context.
type TimerList struct {
	head *Timer
}

// NewTimerList creates an empty timer list
func NewTimerList() *TimerList {
	return &TimerList{}
}

// Schedule adds a timer to the list. A timer that is already queued is
// moved to its new WakeTime.
func (l *TimerList) Schedule(t *Timer) {
	if t.queued {
		l.remove(t)
	}
	l.insert(t)
}

// Cancel removes a timer if it is queued
func (l *TimerList) Cancel(t *Timer) {
	if t.queued {
		l.remove(t)
	}
}

// Pending reports whether the timer is queued
func (l *TimerList) Pending(t *Timer) bool {
	return t.queued
}

// insert inserts a timer in sorted order by WakeTime
func (l *TimerList) insert(t *Timer) {
	t.queued = true
	if l.head == nil || TimeBefore(t.WakeTime, l.head.WakeTime) {
		t.Next = l.head
		l.head = t
		return
	}

	current := l.head
	for current.Next != nil && !TimeBefore(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

func (l *TimerList) remove(t *Timer) {
	if l.head == t {
		l.head = t.Next
	} else {
		for current := l.head; current != nil; current = current.Next {
			if current.Next == t {
				current.Next = t.Next
				break
			}
		}
	}
	t.Next = nil
	t.queued = false
}

// Dispatch runs every timer whose WakeTime is not after now
func (l *TimerList) Dispatch(now uint32) {
	for l.head != nil && !TimeBefore(now, l.head.WakeTime) {
		timer := l.head
		l.head = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references
		timer.queued = false

		// A handler may reschedule itself through Schedule as well
		if timer.Handler(timer) == SF_RESCHEDULE && !timer.queued {
			l.insert(timer)
		}
	}
}
