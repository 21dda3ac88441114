package effects

import "warpomatic/core"

// Route computes the analog section for effect at counter. pedal is true
// while the foot switch is pressed.
func (t *Table) Route(effect int, counter uint8, wetDry, pedal bool) core.OutputFrame {
	var frame core.OutputFrame
	d := &t[effect]

	for i, src := range d.Switches {
		switch src {
		case On:
			frame.Switches[i] = true
		case WetDry:
			frame.Switches[i] = wetDry
		case Pedal:
			frame.Switches[i] = pedal
		}
	}

	switch d.Delay {
	case DelayHalfFrom:
		frame.Delay[0] = d.Base
		half := counter >> 1
		if half > d.Base {
			half = d.Base
		}
		frame.Delay[1] = d.Base - half
	default:
		frame.Delay[0] = counter
		frame.Delay[1] = counter
	}
	return frame
}
