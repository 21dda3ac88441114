package core

// Analog switch indices (CD4066 sections)
const (
	SwitchA = iota
	SwitchB
	SwitchC
	SwitchD
	NumSwitches
)

// OutputFrame is one complete update of the analog section: the two delay
// line intensities and the four analog switch states.
type OutputFrame struct {
	Delay    [2]uint8
	Switches [NumSwitches]bool
}

// OutputPort accepts output frames. Updates are fire-and-forget.
type OutputPort interface {
	Apply(frame OutputFrame)
}

// StatusLED is the single indicator LED
type StatusLED interface {
	SetLED(on bool)
}

// AnalogOutput drives an OutputFrame onto PWM and GPIO pins through the HAL
type AnalogOutput struct {
	gpio       GPIODriver
	pwm        PWMDriver
	delayPins  [2]PWMPin
	switchPins [NumSwitches]GPIOPin

	last    OutputFrame
	written bool
	errors  uint32
}

// NewAnalogOutput configures the PWM pair and the switch pins
func NewAnalogOutput(gpio GPIODriver, pwm PWMDriver, delayPins [2]PWMPin, switchPins [NumSwitches]GPIOPin, cycleTicks uint32) (*AnalogOutput, error) {
	o := &AnalogOutput{
		gpio:       gpio,
		pwm:        pwm,
		delayPins:  delayPins,
		switchPins: switchPins,
	}
	for _, pin := range delayPins {
		if _, err := pwm.ConfigureHardwarePWM(pin, cycleTicks); err != nil {
			return nil, err
		}
	}
	for _, pin := range switchPins {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Apply writes the frame; pins whose value did not change are skipped
func (o *AnalogOutput) Apply(frame OutputFrame) {
	max := o.pwm.GetMaxValue()
	for i, pin := range o.delayPins {
		if o.written && o.last.Delay[i] == frame.Delay[i] {
			continue
		}
		// Scale 0-255 to the driver's range
		value := PWMValue(uint32(frame.Delay[i]) * max / 255)
		if err := o.pwm.SetDutyCycle(pin, value); err != nil {
			o.errors++
		}
	}
	for i, pin := range o.switchPins {
		if o.written && o.last.Switches[i] == frame.Switches[i] {
			continue
		}
		if err := o.gpio.SetPin(pin, frame.Switches[i]); err != nil {
			o.errors++
		}
	}
	o.last = frame
	o.written = true
}

// Errors returns the number of failed pin updates
func (o *AnalogOutput) Errors() uint32 {
	return o.errors
}
