//go:build rp2040

package main

import (
	"machine"
)

var (
	debugUART    *machine.UART
	debugEnabled bool
)

// InitDebugUART initializes UART1 on GPIO20 (TX) and GPIO21 (RX) at 115200
func InitDebugUART() {
	debugUART = machine.UART1

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO20,
		RX:       machine.GPIO21,
	})
	if err != nil {
		debugEnabled = false
		return
	}
	debugEnabled = true

	DebugPrintln("=== Time-Warp-O-Matic ===")
}

// DebugPrintln writes a line to the debug UART and the USB console
func DebugPrintln(s string) {
	if debugEnabled && debugUART != nil {
		debugUART.Write([]byte(s))
		debugUART.Write([]byte("\r\n"))
	}
	ConsoleWrite(s)
}
