// Package settings holds the persisted parameters of the pedal and their
// fixed-size binary record.
package settings

import (
	"errors"

	"warpomatic/core"
)

// NumEffects is the number of selectable effects
const NumEffects = 13

// Settings is the complete persisted state
type Settings struct {
	Counter [NumEffects]uint8 // Delay counter per effect
	Ratio   [NumEffects]uint8 // Symbolic ratio index per effect
	Effect  int8              // Active effect
	WetDry  bool              // Dry signal mixed in
}

// Limits describes the valid parameter ranges. Implemented by the effect table.
type Limits interface {
	// Bounds returns the inclusive counter range of an effect
	Bounds(effect int) (lo, hi uint8)
	// NumRatios returns the size of the symbolic ratio table
	NumRatios() int
}

// Initial holds the values used on first boot and to replace invalid fields
type Initial struct {
	Effect  int8
	Counter uint8
	Ratio   uint8
	WetDry  bool
}

// DefaultInitial matches a factory-fresh pedal
var DefaultInitial = Initial{
	Effect:  1,
	Counter: 220,
	Ratio:   7,
	WetDry:  true,
}

// ErrCorrupt is returned when a located record fails its integrity check
var ErrCorrupt = errors.New("settings: record checksum mismatch")

// OutOfRangeError reports a loaded field that was replaced by its default
type OutOfRangeError struct {
	Field  string
	Effect int // -1 when the field is not per effect
	Value  int
}

func (e *OutOfRangeError) Error() string {
	msg := "settings: " + e.Field + " out of range (" + core.Itoa(e.Value) + ")"
	if e.Effect >= 0 {
		msg += " for effect " + core.Itoa(e.Effect)
	}
	return msg
}

// Defaults returns factory settings, each counter clamped to its effect's bounds
func Defaults(limits Limits, initial Initial) Settings {
	var s Settings
	s.Effect = initial.Effect
	if int(s.Effect) < 0 || int(s.Effect) >= NumEffects {
		s.Effect = 0
	}
	s.WetDry = initial.WetDry

	ratio := initial.Ratio
	if int(ratio) >= limits.NumRatios() {
		ratio = uint8(limits.NumRatios() - 1)
	}
	for i := 0; i < NumEffects; i++ {
		s.Counter[i] = Clamp(initial.Counter, limits, i)
		s.Ratio[i] = ratio
	}
	return s
}

// Clamp limits a counter value to the bounds of effect
func Clamp(v uint8, limits Limits, effect int) uint8 {
	lo, hi := limits.Bounds(effect)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Repair replaces every out-of-range field with its default. The returned
// error joins one *OutOfRangeError per replaced field, nil if nothing changed.
func (s *Settings) Repair(limits Limits, initial Initial) error {
	def := Defaults(limits, initial)
	var errs []error

	if int(s.Effect) < 0 || int(s.Effect) >= NumEffects {
		errs = append(errs, &OutOfRangeError{Field: "effect", Effect: -1, Value: int(s.Effect)})
		s.Effect = def.Effect
	}

	for i := 0; i < NumEffects; i++ {
		lo, hi := limits.Bounds(i)
		if c := s.Counter[i]; c < lo || c > hi {
			errs = append(errs, &OutOfRangeError{Field: "counter", Effect: i, Value: int(c)})
			s.Counter[i] = def.Counter[i]
		}
		if r := s.Ratio[i]; int(r) >= limits.NumRatios() {
			errs = append(errs, &OutOfRangeError{Field: "ratio", Effect: i, Value: int(r)})
			s.Ratio[i] = def.Ratio[i]
		}
	}

	return errors.Join(errs...)
}
