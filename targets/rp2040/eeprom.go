//go:build rp2040

package main

import (
	"errors"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"
)

var errOutOfRange = errors.New("eeprom: access beyond end of memory")

// EEPROM exposes an AT24Cxx as core.Memory
type EEPROM struct {
	dev  at24cx.Device
	size int64
}

// NewEEPROM creates the memory on bus. size is the device capacity in bytes.
func NewEEPROM(bus drivers.I2C, size int64) *EEPROM {
	e := &EEPROM{dev: at24cx.New(bus), size: size}
	e.dev.Configure(at24cx.Config{
		PageSize:      32,
		EndRAMAddress: uint16(size),
	})
	return e
}

// ReadAt reads len(p) bytes at off
func (e *EEPROM) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > e.size {
		return 0, errOutOfRange
	}
	return e.dev.ReadAt(p, off)
}

// WriteAt writes p at off, page by page
func (e *EEPROM) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > e.size {
		return 0, errOutOfRange
	}
	return e.dev.WriteAt(p, off)
}

// Size returns the capacity in bytes
func (e *EEPROM) Size() int64 {
	return e.size
}
