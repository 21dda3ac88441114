//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"warpomatic/core"
)

// RP2040 timer peripheral
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching
)

var (
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// InitClock prepares the hardware timer. It counts microseconds from reset,
// which is the core tick rate, so there is nothing to configure.
func InitClock() {
	core.SetTime(GetHardwareTime())
}

// GetHardwareTime returns the low 32 bits of the microsecond counter.
// Safe to call from interrupt handlers.
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime copies the hardware time into the core timer
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
