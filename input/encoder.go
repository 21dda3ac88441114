// Package input decodes the raw signals of the pedal: the rotary encoder,
// its push button and the external clock. Decoders are called from interrupt
// handlers and hand their results to the main loop through a Queue.
package input

// Rotation is the result of one encoder edge
type Rotation uint8

const (
	NoRotation       Rotation = 0
	Clockwise        Rotation = 0x10
	CounterClockwise Rotation = 0x20
)

func (r Rotation) String() string {
	switch r {
	case Clockwise:
		return "CW"
	case CounterClockwise:
		return "CCW"
	}
	return "none"
}

// Full-step decoder states. The encoder rests with both phases high.
const (
	encStart    = 0x0
	encCWFinal  = 0x1
	encCWBegin  = 0x2
	encCWNext   = 0x3
	encCCWBegin = 0x4
	encCCWFinal = 0x5
	encCCWNext  = 0x6
)

// encTable[state][pins] gives the next state; the upper nibble carries a
// completed detent. pins is (b << 1) | a.
var encTable = [7][4]uint8{
	encStart:    {encStart, encCWBegin, encCCWBegin, encStart},
	encCWFinal:  {encCWNext, encStart, encCWFinal, encStart | uint8(Clockwise)},
	encCWBegin:  {encCWNext, encCWBegin, encStart, encStart},
	encCWNext:   {encCWNext, encCWBegin, encCWFinal, encStart},
	encCCWBegin: {encCCWNext, encStart, encCCWBegin, encStart},
	encCCWFinal: {encCCWNext, encCCWFinal, encStart, encStart | uint8(CounterClockwise)},
	encCCWNext:  {encCCWNext, encCCWFinal, encCCWBegin, encStart},
}

// Encoder decodes a quadrature rotary encoder one detent at a time.
// Contact bounce moves the state machine back and forth without ever
// completing a detent, so it produces no rotation.
type Encoder struct {
	state uint8
}

// Process feeds the current levels of both phases. Call it on every edge of
// either line; it runs in constant time and does not allocate.
func (e *Encoder) Process(a, b bool) Rotation {
	var pins uint8
	if a {
		pins |= 1
	}
	if b {
		pins |= 2
	}
	e.state = encTable[e.state&0x0f][pins]
	return Rotation(e.state & 0x30)
}

// Reset returns the decoder to its rest state
func (e *Encoder) Reset() {
	e.state = encStart
}
