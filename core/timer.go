package core

import "sync/atomic"

// The system timer counts microseconds and wraps every ~71 minutes.
// All deadlines are compared with wrap-safe arithmetic.
const (
	TimerFreq = 1000000 // 1MHz, matches the RP2040 hardware timer
)

var (
	systemTicks atomic.Uint32 // Written by the main loop, read from interrupt handlers
	bootTime    uint32        // Time at boot for uptime calculation
)

// GetTime returns the current system time in timer ticks (microseconds)
func GetTime() uint32 {
	return systemTicks.Load()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	systemTicks.Store(ticks)
}

// GetUptime returns ticks elapsed since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return ms * (TimerFreq / 1000)
}

// TimerToMS converts timer ticks to milliseconds
func TimerToMS(ticks uint32) uint32 {
	return ticks / (TimerFreq / 1000)
}

// TimeBefore reports whether a is earlier than b, tolerating counter wrap
func TimeBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// TimeSince returns the ticks from since to now. A since that is later than
// now, such as an interrupt timestamp taken after now was sampled, counts as
// no time at all.
func TimeSince(now, since uint32) uint32 {
	if TimeBefore(now, since) {
		return 0
	}
	return now - since
}

// TimerInit initializes the system timer
func TimerInit() {
	bootTime = GetTime()
}
