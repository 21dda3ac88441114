// Package sim runs the pedal firmware on the host, with the front panel in
// a terminal and the EEPROM kept in an image file.
package sim

import (
	"strings"

	"warpomatic/core"
)

const (
	DisplayRows = 4
	DisplayCols = 16
)

// Output records the last frame applied
type Output struct {
	Frame   core.OutputFrame
	Applied int
}

// Apply implements core.OutputPort
func (o *Output) Apply(frame core.OutputFrame) {
	o.Frame = frame
	o.Applied++
}

// Display is a character grid standing in for the OLED
type Display struct {
	cells [DisplayRows][DisplayCols]byte
}

// NewDisplay creates a blank display
func NewDisplay() *Display {
	d := &Display{}
	d.Clear()
	return d
}

// Text implements core.DisplayPort
func (d *Display) Text(text string, fieldLen, row, col int, mode core.ClearMode) {
	if row < 0 || row >= DisplayRows || col < 0 || col >= DisplayCols {
		return
	}
	if fieldLen == 0 {
		fieldLen = len(text)
	}

	line := &d.cells[row]
	switch mode {
	case core.ClearLocal:
		for i := col; i < col+fieldLen && i < DisplayCols; i++ {
			line[i] = ' '
		}
	case core.ClearLine:
		for i := col; i < DisplayCols; i++ {
			line[i] = ' '
		}
	}
	for i := 0; i < len(text) && i < fieldLen && col+i < DisplayCols; i++ {
		line[col+i] = text[i]
	}
}

// Clear implements core.DisplayPort
func (d *Display) Clear() {
	for r := range d.cells {
		for c := range d.cells[r] {
			d.cells[r][c] = ' '
		}
	}
}

// Row returns one display row
func (d *Display) Row(row int) string {
	return string(d.cells[row][:])
}

// Lines returns the whole display, one string per row
func (d *Display) Lines() []string {
	lines := make([]string, DisplayRows)
	for r := range lines {
		lines[r] = d.Row(r)
	}
	return lines
}

// String returns the display with trailing blanks removed from each row
func (d *Display) String() string {
	lines := d.Lines()
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

// LED records the status LED level and counts its changes
type LED struct {
	On      bool
	Toggles int
}

// SetLED implements core.StatusLED
func (l *LED) SetLED(on bool) {
	if on != l.On {
		l.Toggles++
	}
	l.On = on
}
