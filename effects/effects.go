// Package effects describes the effects of the pedal: parameter bounds, how
// the encoder maps onto the counter, and how each effect routes the analog
// section.
package effects

import "warpomatic/settings"

// Effect indices
const (
	Decelerator = iota
	ShortDelay
	LongDelay
	Echo
	EchoPlus
	EchoPlusPlus
	Chorus
	ChorusPlus
	Reverb
	WowNotFlutter
	Telegraph
	TeleVerb
	Psycho
	NumEffects
)

// Counter limits
const (
	CounterMin = 7
	CounterMax = 255
)

// Direction maps a clockwise detent onto a counter step. Effects whose
// counter is a speed run Inverted: turning right slows them down.
type Direction int8

const (
	Forward  Direction = 1
	Inverted Direction = -1
)

// Source selects what drives an analog switch
type Source uint8

const (
	Off    Source = iota
	On            // Always closed
	WetDry        // Follows the wet/dry flag
	Pedal         // Closed while the foot switch is pressed
)

// DelayMode selects how the counter maps onto the two delay lines
type DelayMode uint8

const (
	DelayEqual    DelayMode = iota // Both lines at the counter
	DelayHalfFrom                  // First line at Base, second at Base - counter/2
)

// Descriptor is the static description of one effect
type Descriptor struct {
	Name      string
	Min       uint8
	Max       uint8
	Direction Direction
	WetDry    bool // Dry signal can be mixed in
	Symbolic  bool // Counter follows the external clock
	Switches  [4]Source
	Delay     DelayMode
	Base      uint8 // Used by DelayHalfFrom
}

// Table is the set of effects. It satisfies settings.Limits.
type Table [NumEffects]Descriptor

// Default is the effect set of the pedal
var Default = Table{
	Decelerator: {
		Name: "Deceleratr", Min: 10, Max: 100, Direction: Forward,
		Symbolic: true,
		Switches: [4]Source{Off, Pedal, Off, Off},
	},
	ShortDelay: {
		Name: "Shrt dly", Min: CounterMin, Max: CounterMax, Direction: Forward,
		WetDry: true, Symbolic: true,
		Switches: [4]Source{On, Off, WetDry, Off},
	},
	LongDelay: {
		Name: "Lng Delay", Min: CounterMin, Max: CounterMax, Direction: Forward,
		WetDry: true, Symbolic: true,
		Switches: [4]Source{Off, On, WetDry, Off},
	},
	Echo: {
		Name: "Echo", Min: CounterMin, Max: CounterMax, Direction: Forward,
		WetDry: true, Symbolic: true,
		Switches: [4]Source{Off, On, WetDry, On},
	},
	EchoPlus: {
		Name: "Echo+", Min: CounterMin, Max: CounterMax, Direction: Forward,
		WetDry: true, Symbolic: true,
		Switches: [4]Source{On, On, WetDry, Off},
	},
	EchoPlusPlus: {
		Name: "Echo++", Min: CounterMin, Max: CounterMax, Direction: Forward,
		WetDry: true, Symbolic: true,
		Switches: [4]Source{On, On, WetDry, On},
	},
	Chorus: {
		Name: "Chorus", Min: CounterMin, Max: CounterMax, Direction: Forward,
		Switches: [4]Source{On, Off, Pedal, On},
	},
	ChorusPlus: {
		Name: "Chorus+", Min: CounterMin, Max: CounterMax, Direction: Forward,
		Switches: [4]Source{On, Off, Pedal, On},
	},
	Reverb: {
		Name: "Reverb", Min: CounterMin, Max: CounterMax, Direction: Inverted,
		WetDry:   true,
		Switches: [4]Source{On, Off, WetDry, On},
		Delay:    DelayHalfFrom, Base: 255,
	},
	WowNotFlutter: {
		Name: "WowNotFlut", Min: CounterMin, Max: 60, Direction: Inverted,
		Symbolic: true,
		Switches: [4]Source{On, Off, Off, Off},
	},
	Telegraph: {
		Name: "Telegraph", Min: CounterMin, Max: CounterMax, Direction: Inverted,
		Symbolic: true,
		Switches: [4]Source{Pedal, Off, On, Off},
	},
	TeleVerb: {
		Name: "TeleVerb", Min: CounterMin, Max: CounterMax, Direction: Inverted,
		Symbolic: true,
		Switches: [4]Source{Pedal, Off, Pedal, Pedal},
		Delay:    DelayHalfFrom, Base: 220,
	},
	Psycho: {
		Name: "Psycho", Min: CounterMin, Max: CounterMax, Direction: Inverted,
		WetDry: true, Symbolic: true,
		Switches: [4]Source{On, On, WetDry, On},
	},
}

// Bounds returns the inclusive counter range of effect
func (t *Table) Bounds(effect int) (uint8, uint8) {
	d := &t[effect]
	return d.Min, d.Max
}

// NumRatios returns the size of the ratio table
func (t *Table) NumRatios() int {
	return NumRatios
}

// Get returns the descriptor of effect
func (t *Table) Get(effect int) *Descriptor {
	return &t[effect]
}

var _ settings.Limits = (*Table)(nil)
