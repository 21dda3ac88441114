package pedal

import (
	"warpomatic/controller"
	"warpomatic/core"
	"warpomatic/effects"
)

// Display positions, in 8 pixel character cells
const (
	nameLen      = 12
	valueCol     = 7
	statusRow    = 3
	statusCol    = nameLen + 1
	fineTuneCol  = 0
	fineTuneRow  = 2
	clockMarkCol = 15
)

// screen is everything the view shows
type screen struct {
	mode     controller.Mode
	fineTune bool
	effect   int
	value    string
	status   string
	clock    bool
}

// View renders the controller state on a DisplayPort. Only fields that
// changed since the last render are redrawn.
type View struct {
	display core.DisplayPort
	table   *effects.Table
	last    screen
	valid   bool
}

// NewView creates a view on display
func NewView(display core.DisplayPort, table *effects.Table) *View {
	return &View{display: display, table: table}
}

// Render draws the current state
func (v *View) Render(c *controller.Controller, pedal bool) {
	next := v.build(c, pedal)
	if v.valid && next == v.last {
		return
	}

	if !v.valid || next.mode != v.last.mode {
		v.display.Clear()
		v.valid = false
	}

	if next.mode == controller.SelectEffect {
		if !v.valid || next.effect != v.last.effect {
			v.display.Text(v.table.Get(next.effect).Name, nameLen, 0, 0, core.ClearLine)
		}
	} else if !v.valid || next.value != v.last.value {
		v.display.Text(next.value, 0, 0, valueCol, core.ClearLine)
	}

	if !v.valid || next.fineTune != v.last.fineTune {
		text := ""
		if next.fineTune {
			text = "fine"
		}
		v.display.Text(text, 4, fineTuneRow, fineTuneCol, core.ClearLocal)
	}
	if !v.valid || next.clock != v.last.clock {
		text := " "
		if next.clock {
			text = "*"
		}
		v.display.Text(text, 1, statusRow, clockMarkCol, core.ClearLocal)
	}
	if !v.valid || next.status != v.last.status {
		v.display.Text(next.status, 4, statusRow, statusCol, core.ClearLocal)
	}

	v.last = next
	v.valid = true
}

func (v *View) build(c *controller.Controller, pedal bool) screen {
	state := c.State()
	effect := c.Effect()
	d := v.table.Get(effect)

	s := screen{
		mode:     state.Mode,
		fineTune: state.FineTune,
		effect:   effect,
		clock:    c.ClockPresent(),
	}

	// Symbolic values show the note duration, fine tuning shows the offset
	switch {
	case c.ClockPresent() && d.Symbolic && !state.FineTune:
		s.value = effects.RatioLabels[c.Settings().Ratio[effect]]
	case c.ClockPresent() && d.Symbolic:
		s.value = effects.RatioLabels[c.Settings().Ratio[effect]] + signed(c.FineOffset())
	case d.Direction == effects.Inverted:
		// Speeds are shown so that a larger number is faster
		s.value = core.Itoa(int(d.Max) - int(c.Counter()))
	default:
		s.value = core.Itoa(int(c.Counter()))
	}

	switch {
	case effect == effects.TeleVerb:
		s.status = wetDryLabel(pedal)
	case d.WetDry:
		s.status = wetDryLabel(c.Settings().WetDry)
	default:
		s.status = wetDryLabel(false)
	}
	return s
}

func wetDryLabel(dry bool) string {
	if dry {
		return "W+D"
	}
	return "WET"
}

func signed(v int) string {
	if v >= 0 {
		return "+" + core.Itoa(v)
	}
	return core.Itoa(v)
}
