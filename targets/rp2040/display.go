//go:build rp2040

package main

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"warpomatic/core"
)

// 128x64 panel as 4 rows of 16 cells
const (
	oledWidth  = 128
	oledHeight = 64
	cellWidth  = 8
	cellHeight = 16
	numCols    = oledWidth / cellWidth
	baseline   = 12
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

// OLED implements core.DisplayPort on an SSD1306
type OLED struct {
	dev    *ssd1306.Device
	errors uint32
}

// NewOLED configures the panel on bus
func NewOLED(bus drivers.I2C) (*OLED, error) {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Width:   oledWidth,
		Height:  oledHeight,
		Address: ssd1306.Address_128_32,
	})
	dev.ClearBuffer()
	if err := dev.Display(); err != nil {
		return nil, err
	}
	return &OLED{dev: dev}, nil
}

// Text draws text at a cell position, erasing according to mode
func (o *OLED) Text(text string, fieldLen, row, col int, mode core.ClearMode) {
	if fieldLen == 0 {
		fieldLen = len(text)
	}
	if col >= numCols {
		return
	}

	x := int16(col * cellWidth)
	y := int16(row * cellHeight)
	switch mode {
	case core.ClearLocal:
		o.dev.FillRectangle(x, y, int16(min(fieldLen, numCols-col)*cellWidth), cellHeight, black)
	case core.ClearLine:
		o.dev.FillRectangle(x, y, oledWidth-x, cellHeight, black)
	}

	if len(text) > fieldLen {
		text = text[:fieldLen]
	}
	tinyfont.WriteLine(o.dev, &proggy.TinySZ8pt7b, x, y+baseline, text, white)
	o.flush()
}

// Clear blanks the panel
func (o *OLED) Clear() {
	o.dev.ClearBuffer()
	o.flush()
}

func (o *OLED) flush() {
	if err := o.dev.Display(); err != nil {
		o.errors++
	}
}
