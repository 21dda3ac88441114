package effects

import "math"

const (
	triplet = 2.0 / 3.0
	dotted  = 3.0 / 2.0
)

// NumRatios is the number of selectable note durations
const NumRatios = 16

// Ratios are note durations relative to one clock period (a quarter note)
var Ratios = [NumRatios]float64{
	triplet / 32, 1.0 / 32, triplet / 16, 1.0 / 16,
	triplet / 8, dotted / 16, 1.0 / 8, triplet / 4,
	dotted / 8, 1.0 / 4, triplet / 2, dotted / 4,
	1.0 / 2, triplet, dotted / 2, 1,
}

// RatioLabels are the display names of Ratios
var RatioLabels = [NumRatios]string{
	"1/48", "1/32", "1/24", "1/16",
	"1/12", "1/16.", "1/8", "1/6",
	"1/8.", "1/4", "1/3", "1/4.",
	"1/2", "2/3", "1/2.", "1",
}

// Symbolic converts a note duration at a given tempo into a delay counter:
//
//	counter = round(K1 * K2^(ratio * cycleTime / Div))
//
// The curve approximates the PT2399 clock versus delay time response.
type Symbolic struct {
	K1  float64
	K2  float64
	Div float64
}

// DefaultSymbolic is calibrated for the delay lines of the pedal
var DefaultSymbolic = Symbolic{K1: 236.88, K2: 0.9978, Div: 1000}

// Counter returns the counter for ratio index at the given cycle time in
// microseconds, limited to [0, 255]. Callers clamp to effect bounds.
func (p Symbolic) Counter(ratio int, cycleTimeUs uint32) uint8 {
	if ratio < 0 {
		ratio = 0
	} else if ratio >= NumRatios {
		ratio = NumRatios - 1
	}
	v := math.Round(p.K1 * math.Pow(p.K2, Ratios[ratio]*float64(cycleTimeUs)/p.Div))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
