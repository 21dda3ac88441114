package input

import "warpomatic/core"

// ButtonAction is a decoded gesture of the push button
type ButtonAction uint8

const (
	NoAction ButtonAction = iota
	Click
	DoubleClick
	LongPressStart
)

func (a ButtonAction) String() string {
	switch a {
	case Click:
		return "click"
	case DoubleClick:
		return "double click"
	case LongPressStart:
		return "long press"
	}
	return "none"
}

// Default button timing in milliseconds
const (
	DefaultDebounceMS  = 50
	DefaultClickMS     = 400
	DefaultLongPressMS = 800
)

type buttonState uint8

const (
	btnIdle      buttonState = iota
	btnDown                  // First press held
	btnReleased              // Released once, waiting for a second press
	btnDownAgain             // Second press held
	btnLong                  // Long press reported, waiting for release
)

// Button turns the raw button level into clicks, double clicks and long
// presses. Update is called on every button edge and periodically from the
// main loop so that pending windows expire without further edges.
type Button struct {
	debounce  uint32
	clickTime uint32
	longTime  uint32

	raw      bool
	rawSince uint32
	stable   bool

	state buttonState
	since uint32 // Time of the edge that entered state
}

// NewButton creates a decoder with the given timing in milliseconds
func NewButton(debounceMS, clickMS, longPressMS uint32) *Button {
	return &Button{
		debounce:  core.TimerFromMS(debounceMS),
		clickTime: core.TimerFromMS(clickMS),
		longTime:  core.TimerFromMS(longPressMS),
	}
}

// Update feeds the raw level (true = pressed) at time now in microseconds
func (b *Button) Update(pressed bool, now uint32) ButtonAction {
	if pressed != b.raw {
		b.raw = pressed
		b.rawSince = now
	}

	if b.raw != b.stable && core.TimeSince(now, b.rawSince) >= b.debounce {
		b.stable = b.raw
		if action := b.edge(b.stable, b.rawSince); action != NoAction {
			return action
		}
	}
	return b.expire(now)
}

// Pressed returns the debounced level
func (b *Button) Pressed() bool {
	return b.stable
}

// Reset forgets any gesture in progress
func (b *Button) Reset() {
	b.state = btnIdle
}

func (b *Button) edge(pressed bool, at uint32) ButtonAction {
	switch b.state {
	case btnIdle:
		if pressed {
			b.enter(btnDown, at)
		}
	case btnDown:
		if !pressed {
			b.enter(btnReleased, at)
		}
	case btnReleased:
		if pressed {
			b.enter(btnDownAgain, at)
		}
	case btnDownAgain:
		if !pressed {
			b.enter(btnIdle, at)
			return DoubleClick
		}
	case btnLong:
		if !pressed {
			b.enter(btnIdle, at)
		}
	}
	return NoAction
}

func (b *Button) expire(now uint32) ButtonAction {
	elapsed := core.TimeSince(now, b.since)
	switch b.state {
	case btnDown, btnDownAgain:
		if elapsed >= b.longTime {
			b.enter(btnLong, now)
			return LongPressStart
		}
	case btnReleased:
		if elapsed >= b.clickTime {
			b.enter(btnIdle, now)
			return Click
		}
	}
	return NoAction
}

func (b *Button) enter(state buttonState, at uint32) {
	b.state = state
	b.since = at
}
