// Package serial opens the USB console of the pedal
package serial

import (
	"io"
)

// Port is a byte stream to the pedal console. host/mcu reads lines from it
// on its own goroutine, so Read must return after the read timeout when the
// pedal is silent.
type Port interface {
	io.ReadWriteCloser

	// Flush drops input that arrived before the caller was ready for it
	Flush() error
}

// Config selects the console device
type Config struct {
	Device string // e.g. /dev/ttyACM0 or COM3

	// Baud only matters for a USB-UART bridge; the RP2040 CDC port ignores it
	Baud int

	// ReadTimeout bounds a silent Read in milliseconds, 0 blocks
	ReadTimeout int
}

// DefaultConfig returns the settings of the pedal's USB console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
