package controller

import (
	"testing"

	"warpomatic/effects"
	"warpomatic/input"
	"warpomatic/settings"
)

type countingNotifier struct {
	count int
}

func (n *countingNotifier) MarkDirty() {
	n.count++
}

func newTestController(effect int) (*Controller, *settings.Settings, *countingNotifier) {
	s := settings.Defaults(&effects.Default, settings.DefaultInitial)
	s.Effect = int8(effect)
	n := &countingNotifier{}
	return New(&s, &effects.Default, effects.DefaultSymbolic, n), &s, n
}

func TestInitialState(t *testing.T) {
	c, _, _ := newTestController(effects.ShortDelay)
	if c.State() != (State{Mode: SelectEffect}) {
		t.Errorf("Unexpected initial state %+v", c.State())
	}
	if c.ClockPresent() || c.SymbolicActive() {
		t.Error("No clock expected at start")
	}
}

func TestEffectWraparound(t *testing.T) {
	c, s, n := newTestController(effects.NumEffects - 1)

	c.Rotate(input.Clockwise)
	if s.Effect != 0 {
		t.Errorf("CW from last effect should wrap to 0, got %d", s.Effect)
	}

	c.Rotate(input.CounterClockwise)
	if s.Effect != effects.NumEffects-1 {
		t.Errorf("CCW from 0 should wrap to %d, got %d", effects.NumEffects-1, s.Effect)
	}

	if n.count != 2 {
		t.Errorf("Expected 2 dirty marks, got %d", n.count)
	}
}

func TestSetParameterDirection(t *testing.T) {
	testCases := []struct {
		name     string
		effect   int
		start    uint8
		rotation input.Rotation
		expected uint8
	}{
		{"delay CW lengthens", effects.ShortDelay, 100, input.Clockwise, 101},
		{"delay CCW shortens", effects.ShortDelay, 100, input.CounterClockwise, 99},
		{"reverb CW inverted", effects.Reverb, 100, input.Clockwise, 99},
		{"psycho CCW inverted", effects.Psycho, 100, input.CounterClockwise, 101},
		{"clamp at max", effects.ShortDelay, 255, input.Clockwise, 255},
		{"clamp at min", effects.LongDelay, 7, input.CounterClockwise, 7},
		{"decelerator max", effects.Decelerator, 100, input.Clockwise, 100},
		{"decelerator min", effects.Decelerator, 10, input.CounterClockwise, 10},
		{"wow max inverted", effects.WowNotFlutter, 60, input.CounterClockwise, 60},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, s, n := newTestController(tc.effect)
			s.Counter[tc.effect] = tc.start
			c.Click()

			c.Rotate(tc.rotation)
			if s.Counter[tc.effect] != tc.expected {
				t.Errorf("Counter %d, expected %d", s.Counter[tc.effect], tc.expected)
			}
			dirty := tc.expected != tc.start
			if (n.count > 0) != dirty {
				t.Errorf("Dirty marks %d, expected change=%v", n.count, dirty)
			}
		})
	}
}

func TestSymbolicTiming(t *testing.T) {
	c, s, n := newTestController(effects.ShortDelay)
	c.Click()

	c.ClockEstimate(500000)
	if !c.SymbolicActive() {
		t.Fatal("Short delay should follow the clock")
	}
	// ratio 7 (1/6) at 500ms
	if s.Counter[effects.ShortDelay] != 197 {
		t.Errorf("Expected counter 197, got %d", s.Counter[effects.ShortDelay])
	}
	if n.count != 1 {
		t.Errorf("Expected 1 dirty mark, got %d", n.count)
	}

	c.Rotate(input.Clockwise)
	if s.Ratio[effects.ShortDelay] != 8 || s.Counter[effects.ShortDelay] != 193 {
		t.Errorf("Expected ratio 8 counter 193, got %d %d", s.Ratio[effects.ShortDelay], s.Counter[effects.ShortDelay])
	}

	// New tempo recomputes without input
	c.ClockEstimate(400000)
	if s.Counter[effects.ShortDelay] != 201 {
		t.Errorf("Expected counter 201 at 400ms, got %d", s.Counter[effects.ShortDelay])
	}

	// Same estimate again changes nothing
	before := n.count
	c.ClockEstimate(400000)
	if n.count != before {
		t.Error("Unchanged estimate should not mark dirty")
	}
}

func TestRatioSaturates(t *testing.T) {
	c, s, _ := newTestController(effects.ShortDelay)
	c.Click()
	c.ClockEstimate(500000)

	for i := 0; i < 20; i++ {
		c.Rotate(input.Clockwise)
	}
	if s.Ratio[effects.ShortDelay] != effects.NumRatios-1 {
		t.Errorf("Ratio should saturate at %d, got %d", effects.NumRatios-1, s.Ratio[effects.ShortDelay])
	}
	if s.Counter[effects.ShortDelay] != 79 {
		t.Errorf("Expected counter 79 for a whole period, got %d", s.Counter[effects.ShortDelay])
	}

	for i := 0; i < 20; i++ {
		c.Rotate(input.CounterClockwise)
	}
	if s.Ratio[effects.ShortDelay] != 0 {
		t.Errorf("Ratio should saturate at 0, got %d", s.Ratio[effects.ShortDelay])
	}
}

func TestSymbolicClampsToEffectBounds(t *testing.T) {
	c, s, _ := newTestController(effects.Decelerator)
	c.Click()
	s.Ratio[effects.Decelerator] = 7

	c.ClockEstimate(500000)
	if s.Counter[effects.Decelerator] != 100 {
		t.Errorf("Expected clamp to 100, got %d", s.Counter[effects.Decelerator])
	}
}

func TestFineTune(t *testing.T) {
	c, s, _ := newTestController(effects.ShortDelay)
	c.Click()
	c.ClockEstimate(500000)

	c.DoubleClick()
	if !c.State().FineTune || c.SymbolicActive() {
		t.Fatal("Double click should enter fine tuning")
	}

	c.Rotate(input.Clockwise)
	c.Rotate(input.Clockwise)
	if s.Counter[effects.ShortDelay] != 199 || s.Ratio[effects.ShortDelay] != 7 {
		t.Errorf("Fine tune: counter %d ratio %d", s.Counter[effects.ShortDelay], s.Ratio[effects.ShortDelay])
	}
	if c.FineOffset() != 2 {
		t.Errorf("Expected fine offset 2, got %d", c.FineOffset())
	}

	// The clock does not overwrite a fine tuned value
	c.ClockEstimate(400000)
	if s.Counter[effects.ShortDelay] != 199 {
		t.Errorf("Clock overwrote fine tuned counter: %d", s.Counter[effects.ShortDelay])
	}
}

func TestClockLossFreezesValue(t *testing.T) {
	c, s, n := newTestController(effects.ShortDelay)
	c.Click()
	c.ClockEstimate(500000)
	c.Rotate(input.Clockwise)
	frozen := s.Counter[effects.ShortDelay]
	marks := n.count

	c.ClockLost()
	if c.ClockPresent() || c.SymbolicActive() {
		t.Error("Clock should be absent")
	}
	if s.Counter[effects.ShortDelay] != frozen || n.count != marks {
		t.Errorf("Clock loss changed the counter: %d -> %d", frozen, s.Counter[effects.ShortDelay])
	}

	// Manual adjustment continues from the frozen value
	c.Rotate(input.Clockwise)
	if s.Counter[effects.ShortDelay] != frozen+1 {
		t.Errorf("Expected %d, got %d", frozen+1, s.Counter[effects.ShortDelay])
	}
	if s.Ratio[effects.ShortDelay] != 8 {
		t.Errorf("Manual adjustment must not change the ratio, got %d", s.Ratio[effects.ShortDelay])
	}
}

func TestNonSymbolicEffectIgnoresClock(t *testing.T) {
	c, s, n := newTestController(effects.Chorus)
	s.Counter[effects.Chorus] = 50

	c.ClockEstimate(500000)
	if s.Counter[effects.Chorus] != 50 || n.count != 0 {
		t.Errorf("Chorus must not follow the clock: %d", s.Counter[effects.Chorus])
	}
}

func TestWetDryToggle(t *testing.T) {
	c, s, n := newTestController(effects.ShortDelay)
	s.WetDry = true

	c.LongPress()
	if s.WetDry {
		t.Error("Long press should toggle wet/dry on short delay")
	}
	if n.count != 1 {
		t.Errorf("Expected 1 dirty mark, got %d", n.count)
	}

	c2, s2, n2 := newTestController(effects.Chorus)
	s2.WetDry = true
	c2.LongPress()
	if !s2.WetDry || n2.count != 0 {
		t.Error("Long press on chorus should do nothing")
	}
}

func TestModeTransitions(t *testing.T) {
	c, _, n := newTestController(effects.Echo)

	c.Click()
	if c.State().Mode != SetParameter {
		t.Error("Click should enter SetParameter")
	}
	c.DoubleClick()
	c.Click()
	if c.State() != (State{Mode: SelectEffect, FineTune: true}) {
		t.Errorf("Fine tune is orthogonal to the mode, got %+v", c.State())
	}
	if n.count != 0 {
		t.Error("Mode changes are not settings changes")
	}
}

func TestHandleDispatch(t *testing.T) {
	c, s, _ := newTestController(effects.ShortDelay)

	c.Handle(input.Event{Kind: input.EventButton, Button: input.Click})
	c.Handle(input.Event{Kind: input.EventEncoder, Rotation: input.Clockwise})
	if s.Counter[effects.ShortDelay] != 221 {
		t.Errorf("Expected counter 221, got %d", s.Counter[effects.ShortDelay])
	}

	c.Handle(input.Event{Kind: input.EventClockEstimate, CycleTime: 500000})
	if !c.ClockPresent() || c.CycleTime() != 500000 {
		t.Error("Clock estimate not dispatched")
	}

	c.Handle(input.Event{Kind: input.EventButton, Button: input.LongPressStart})
	if s.WetDry {
		t.Error("Long press not dispatched")
	}
}
