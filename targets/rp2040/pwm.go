//go:build rp2040

package main

import (
	"errors"
	"machine"

	"warpomatic/core"
)

// PWM_MAX is the duty cycle resolution exposed to core
const PWM_MAX = 255

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements core.PWMDriver on the 8 hardware PWM slices.
// Both pins of a slice share one period.
type RP2040PWMDriver struct {
	// Key: slice number (0-7), Value: configured period in nanoseconds
	slices map[uint8]uint64

	// Key: pin number, Value: PWM channel
	channels map[core.PWMPin]uint8
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		slices:   make(map[uint8]uint64),
		channels: make(map[core.PWMPin]uint8),
	}
}

// GetMaxValue returns the maximum PWM value
func (d *RP2040PWMDriver) GetMaxValue() uint32 {
	return PWM_MAX
}

// ConfigureHardwarePWM configures a pin for hardware PWM with a period of
// cycleTicks core timer ticks
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	if pin >= numGPIO {
		return 0, errors.New("pwm: invalid pin")
	}
	// GPIO N is on slice (N >> 1) & 7, channel A for even pins
	sliceNum := sliceOf(pin)
	period := uint64(cycleTicks) * (1000000000 / core.TimerFreq)

	pwm := pwmSlice(sliceNum)
	if existing, ok := d.slices[sliceNum]; !ok {
		if err := pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
			return 0, err
		}
		d.slices[sliceNum] = period
	} else if existing != period {
		return 0, errors.New("pwm: slice already runs at another period")
	}

	channel, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return 0, err
	}
	d.channels[pin] = channel
	pwm.Set(channel, 0)

	return cycleTicks, nil
}

// SetDutyCycle sets the duty cycle, 0 (off) to PWM_MAX (fully on)
func (d *RP2040PWMDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	channel, exists := d.channels[pin]
	if !exists {
		return errors.New("pwm: pin not configured")
	}
	if value > PWM_MAX {
		value = PWM_MAX
	}

	pwm := pwmSlice(sliceOf(pin))
	pwm.Set(channel, uint32(value)*pwm.Top()/PWM_MAX)
	return nil
}

func sliceOf(pin core.PWMPin) uint8 {
	return uint8((pin >> 1) & 0x7)
}

// pwmSlice returns the peripheral for a slice number
func pwmSlice(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
