//go:build rp2040

package main

import (
	"errors"
	"machine"

	"warpomatic/core"
)

const numGPIO = 30

// RPGPIODriver implements core.GPIODriver for the RP2040
type RPGPIODriver struct {
	// Configured pins, to catch wiring mistakes
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output, initially low
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinOutput)
}

// ConfigureInputPullUp configures a pin as an input with pull-up
func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPullup)
}

func (d *RPGPIODriver) configure(pin core.GPIOPin, mode machine.PinMode) error {
	if pin >= numGPIO {
		return errors.New("gpio: invalid pin")
	}
	if _, exists := d.configuredPins[pin]; exists {
		return errors.New("gpio: pin already in use")
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: mode})
	if mode == machine.PinOutput {
		machinePin.Low()
	}
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return errors.New("gpio: pin not configured")
	}
	machinePin.Set(value)
	return nil
}

// ReadPin reads the current pin level
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return false
	}
	return machinePin.Get()
}

// Pin returns the machine pin, for interrupt setup
func (d *RPGPIODriver) Pin(pin core.GPIOPin) machine.Pin {
	return machine.Pin(pin)
}

// StatusLED drives the indicator LED through the GPIO driver
type StatusLED struct {
	gpio core.GPIODriver
	pin  core.GPIOPin
}

// NewStatusLED configures pin as the status LED
func NewStatusLED(gpio core.GPIODriver, pin core.GPIOPin) *StatusLED {
	gpio.ConfigureOutput(pin)
	return &StatusLED{gpio: gpio, pin: pin}
}

// SetLED switches the LED
func (l *StatusLED) SetLED(on bool) {
	l.gpio.SetPin(l.pin, on)
}
