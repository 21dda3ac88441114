//go:build rp2040

package main

import (
	"machine"
)

// Console output is dropped after this many failed writes in a row,
// until the host sends something again
const maxWriteFailures = 10

var (
	usbDisconnected   bool
	usbWriteFailures  uint32
	consoleLineBuffer [64]byte
	consoleLineLen    int
)

// InitUSB configures the USB CDC serial port
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// ConsoleWrite sends a line to the USB console
func ConsoleWrite(s string) {
	if usbDisconnected {
		return
	}
	if !usbWrite([]byte(s)) || !usbWrite([]byte("\r\n")) {
		usbWriteFailures++
		if usbWriteFailures > maxWriteFailures {
			usbDisconnected = true
		}
		return
	}
	usbWriteFailures = 0
}

func usbWrite(data []byte) bool {
	written := 0
	for written < len(data) {
		n, err := machine.Serial.Write(data[written:])
		if err != nil || n == 0 {
			return false
		}
		written += n
	}
	return true
}

// serviceConsole runs console commands received over USB. A command is
// its first byte; the rest of the line is ignored.
func serviceConsole() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return
		}
		usbDisconnected = false

		if b != '\n' && b != '\r' {
			if consoleLineLen < len(consoleLineBuffer) {
				consoleLineBuffer[consoleLineLen] = b
				consoleLineLen++
			}
			continue
		}
		if consoleLineLen == 0 {
			continue
		}
		cmd := consoleLineBuffer[0]
		consoleLineLen = 0
		manager.Console(cmd, ConsoleWrite)
	}
}
