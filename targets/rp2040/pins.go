//go:build rp2040

package main

import (
	"machine"

	"warpomatic/core"
)

// Board wiring
const (
	encoderAPin core.GPIOPin = 2
	encoderBPin core.GPIOPin = 3
	buttonPin   core.GPIOPin = 4
	clockPin    core.GPIOPin = 5
	pedalPinNum core.GPIOPin = 6

	i2cSDA = machine.GPIO8
	i2cSCL = machine.GPIO9

	ledPin core.GPIOPin = 25

	eepromSize = 4096 // AT24C32
)

// Both delay intensities share PWM slice 7
var delayPins = [2]core.PWMPin{14, 15}

var switchPins = [core.NumSwitches]core.GPIOPin{16, 17, 18, 19}

// 20kHz, above the audio band
const pwmCycleTicks = core.TimerFreq / 20000

var pedalPin machine.Pin
