package input

import "warpomatic/core"

// Clock input defaults
const (
	DefaultClockWindow    = 3       // Pulses per estimate, the first one is the reference
	DefaultClockTimeoutUS = 2000000 // Silence after which the clock is absent
)

// ClockEstimator derives the cycle time of an external clock from its pulse
// timestamps. Pulse runs in the clock interrupt; Poll runs in the main loop
// with interrupts disabled.
type ClockEstimator struct {
	window  uint32
	timeout uint32

	running bool   // A reference pulse has been seen
	present bool   // At least one estimate since the last timeout
	count   uint32 // Pulses in the current window, reference included
	sum     uint32
	last    uint32
	cycle   uint32
}

// NewClockEstimator creates an estimator averaging window-1 intervals
func NewClockEstimator(window int, timeoutUs uint32) *ClockEstimator {
	if window < 2 {
		window = 2
	}
	return &ClockEstimator{
		window:  uint32(window),
		timeout: timeoutUs,
	}
}

// Pulse records a pulse at now (microseconds). When the window is complete
// it returns the mean interval and true, then starts a new window with this
// pulse as its reference.
func (c *ClockEstimator) Pulse(now uint32) (uint32, bool) {
	// Pulses are stamped in order by the same interrupt
	interval := now - c.last
	if !c.running || interval > c.timeout {
		c.restart(now)
		return 0, false
	}

	c.sum += interval
	c.last = now
	c.count++
	if c.count < c.window {
		return 0, false
	}

	n := c.count - 1
	c.cycle = (c.sum + n/2) / n
	c.present = true
	c.count = 1
	c.sum = 0
	return c.cycle, true
}

// Poll checks for a clock timeout. It returns true once when a clock that
// produced an estimate has gone silent for longer than the timeout.
func (c *ClockEstimator) Poll(now uint32) bool {
	if !c.running || core.TimeSince(now, c.last) <= c.timeout {
		return false
	}
	c.running = false
	c.count = 0
	c.sum = 0
	if c.present {
		c.present = false
		return true
	}
	return false
}

// Present reports whether the clock produced an estimate and has not timed out
func (c *ClockEstimator) Present() bool {
	return c.present
}

// CycleTime returns the last estimate in microseconds
func (c *ClockEstimator) CycleTime() uint32 {
	return c.cycle
}

func (c *ClockEstimator) restart(now uint32) {
	c.running = true
	c.count = 1
	c.sum = 0
	c.last = now
}
