// Package controller applies decoded user input and clock estimates to the
// pedal settings.
package controller

import (
	"warpomatic/core"
	"warpomatic/effects"
	"warpomatic/input"
	"warpomatic/settings"
)

// Mode is what the encoder currently adjusts
type Mode uint8

const (
	SelectEffect Mode = iota
	SetParameter
)

func (m Mode) String() string {
	if m == SetParameter {
		return "set"
	}
	return "select"
}

// State is the user interface state
type State struct {
	Mode     Mode
	FineTune bool
}

// DirtyNotifier is told about every change to the settings
type DirtyNotifier interface {
	MarkDirty()
}

// Controller owns the settings while the pedal runs. All methods are called
// from the main loop.
type Controller struct {
	settings *settings.Settings
	table    *effects.Table
	symbolic effects.Symbolic
	notify   DirtyNotifier

	state        State
	clockPresent bool
	cycleTime    uint32

	// Last counter computed from the clock, per effect
	coarse [effects.NumEffects]uint8
}

// New creates a controller in {SelectEffect, Normal}. notify may be nil.
func New(s *settings.Settings, table *effects.Table, symbolic effects.Symbolic, notify DirtyNotifier) *Controller {
	c := &Controller{
		settings: s,
		table:    table,
		symbolic: symbolic,
		notify:   notify,
	}
	c.coarse = s.Counter
	return c
}

// Handle dispatches one event from the input queue
func (c *Controller) Handle(e input.Event) {
	switch e.Kind {
	case input.EventEncoder:
		c.Rotate(e.Rotation)
	case input.EventButton:
		switch e.Button {
		case input.Click:
			c.Click()
		case input.DoubleClick:
			c.DoubleClick()
		case input.LongPressStart:
			c.LongPress()
		}
	case input.EventClockEstimate:
		c.ClockEstimate(e.CycleTime)
	}
}

// Rotate handles one encoder detent
func (c *Controller) Rotate(r input.Rotation) {
	var step int
	switch r {
	case input.Clockwise:
		step = 1
	case input.CounterClockwise:
		step = -1
	default:
		return
	}

	if c.state.Mode == SelectEffect {
		effect := (int(c.settings.Effect) + step + effects.NumEffects) % effects.NumEffects
		c.settings.Effect = int8(effect)
		c.markDirty()
		return
	}

	effect := c.Effect()
	step *= int(c.table.Get(effect).Direction)

	if c.SymbolicActive() {
		ratio := int(c.settings.Ratio[effect]) + step
		if ratio < 0 {
			ratio = 0
		} else if ratio > effects.NumRatios-1 {
			ratio = effects.NumRatios - 1
		}
		changed := uint8(ratio) != c.settings.Ratio[effect]
		c.settings.Ratio[effect] = uint8(ratio)
		if c.applySymbolic(effect) || changed {
			c.markDirty()
		}
		return
	}

	lo, hi := c.table.Bounds(effect)
	counter := int(c.settings.Counter[effect]) + step
	if counter < int(lo) {
		counter = int(lo)
	} else if counter > int(hi) {
		counter = int(hi)
	}
	if uint8(counter) != c.settings.Counter[effect] {
		c.settings.Counter[effect] = uint8(counter)
		c.markDirty()
	}
}

// Click toggles between selecting an effect and setting its parameter
func (c *Controller) Click() {
	if c.state.Mode == SelectEffect {
		c.state.Mode = SetParameter
	} else {
		c.state.Mode = SelectEffect
	}
	c.recordMode()
}

// DoubleClick toggles fine tuning
func (c *Controller) DoubleClick() {
	c.state.FineTune = !c.state.FineTune
	c.recordMode()
}

// LongPress toggles the dry signal on effects that can mix it in
func (c *Controller) LongPress() {
	if !c.table.Get(c.Effect()).WetDry {
		return
	}
	c.settings.WetDry = !c.settings.WetDry
	c.markDirty()
}

// ClockEstimate takes a new cycle time in microseconds. The active effect
// follows the clock unless it is being fine tuned.
func (c *Controller) ClockEstimate(cycleUs uint32) {
	if !c.clockPresent {
		core.RecordEvent(core.EvtClockLock, cycleUs, 0)
		core.DebugPrintln("clock: locked at " + core.Utoa(cycleUs) + "us")
	}
	c.clockPresent = true
	c.cycleTime = cycleUs

	if c.SymbolicActive() && c.applySymbolic(c.Effect()) {
		c.markDirty()
	}
}

// ClockLost falls back to manual values. Counters keep their last value.
func (c *Controller) ClockLost() {
	if !c.clockPresent {
		return
	}
	c.clockPresent = false
	core.RecordEvent(core.EvtClockLost, c.cycleTime, 0)
	core.DebugPrintln("clock: lost")
}

// SymbolicActive reports whether the encoder selects note durations
func (c *Controller) SymbolicActive() bool {
	return c.clockPresent && !c.state.FineTune && c.table.Get(c.Effect()).Symbolic
}

// State returns the user interface state
func (c *Controller) State() State {
	return c.state
}

// Settings returns the settings owned by the controller
func (c *Controller) Settings() *settings.Settings {
	return c.settings
}

// Effect returns the active effect
func (c *Controller) Effect() int {
	return int(c.settings.Effect)
}

// Counter returns the counter of the active effect
func (c *Controller) Counter() uint8 {
	return c.settings.Counter[c.Effect()]
}

// ClockPresent reports whether an external clock is running
func (c *Controller) ClockPresent() bool {
	return c.clockPresent
}

// CycleTime returns the last clock estimate in microseconds
func (c *Controller) CycleTime() uint32 {
	return c.cycleTime
}

// FineOffset returns how far fine tuning moved the active counter away from
// the value derived from the clock
func (c *Controller) FineOffset() int {
	effect := c.Effect()
	return int(c.settings.Counter[effect]) - int(c.coarse[effect])
}

// applySymbolic sets the counter of effect from its ratio and the cycle time
func (c *Controller) applySymbolic(effect int) bool {
	v := settings.Clamp(c.symbolic.Counter(int(c.settings.Ratio[effect]), c.cycleTime), c.table, effect)
	c.coarse[effect] = v
	if v == c.settings.Counter[effect] {
		return false
	}
	c.settings.Counter[effect] = v
	return true
}

func (c *Controller) markDirty() {
	if c.notify != nil {
		c.notify.MarkDirty()
	}
}

func (c *Controller) recordMode() {
	var fine uint32
	if c.state.FineTune {
		fine = 1
	}
	core.RecordEvent(core.EvtModeChange, uint32(c.state.Mode), fine)
}
