package sim

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// MIDI clock runs at 24 ticks per quarter note
const ticksPerBeat = 24

// ClockDivider turns MIDI timing ticks into one pulse per beat
type ClockDivider struct {
	ticks int
}

// Tick counts one timing clock and reports whether a beat is complete
func (d *ClockDivider) Tick() bool {
	d.ticks++
	if d.ticks < ticksPerBeat {
		return false
	}
	d.ticks = 0
	return true
}

// Reset aligns the next beat with the next tick, as on a MIDI start
func (d *ClockDivider) Reset() {
	d.ticks = ticksPerBeat - 1
}

// MIDIPorts returns the names of the MIDI inputs
func MIDIPorts() []string {
	var names []string
	for _, in := range midi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

// ListenMIDIClock calls beat once per quarter note of the MIDI clock received
// on the first input whose name contains portName. beat runs on the MIDI
// driver's goroutine.
func ListenMIDIClock(portName string, beat func()) (stop func(), err error) {
	for _, in := range midi.GetInPorts() {
		if !strings.Contains(strings.ToLower(in.String()), strings.ToLower(portName)) {
			continue
		}

		var divider ClockDivider
		divider.Reset()
		stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
			switch {
			case msg.Is(midi.TimingClockMsg):
				if divider.Tick() {
					beat()
				}
			case msg.Is(midi.StartMsg):
				divider.Reset()
			}
		}, midi.UseTimeCode())
		if err != nil {
			return nil, fmt.Errorf("listen to %s: %w", in.String(), err)
		}
		return stop, nil
	}
	return nil, fmt.Errorf("no MIDI input matching %q", portName)
}
