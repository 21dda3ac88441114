package core

import "testing"

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	pins   map[GPIOPin]bool
	writes int
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		pins: make(map[GPIOPin]bool),
	}
}

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.pins[pin] = false
	return nil
}

func (m *MockGPIODriver) ConfigureInputPullUp(pin GPIOPin) error {
	m.pins[pin] = true
	return nil
}

func (m *MockGPIODriver) SetPin(pin GPIOPin, value bool) error {
	m.pins[pin] = value
	m.writes++
	return nil
}

func (m *MockGPIODriver) ReadPin(pin GPIOPin) bool {
	return m.pins[pin]
}

// MockPWMDriver records duty cycles with a 16-bit range
type MockPWMDriver struct {
	duty map[PWMPin]PWMValue
}

func (m *MockPWMDriver) ConfigureHardwarePWM(pin PWMPin, cycleTicks uint32) (uint32, error) {
	m.duty[pin] = 0
	return cycleTicks, nil
}

func (m *MockPWMDriver) SetDutyCycle(pin PWMPin, value PWMValue) error {
	m.duty[pin] = value
	return nil
}

func (m *MockPWMDriver) GetMaxValue() uint32 {
	return 65535
}

func TestAnalogOutputApply(t *testing.T) {
	gpio := NewMockGPIODriver()
	pwm := &MockPWMDriver{duty: make(map[PWMPin]PWMValue)}

	out, err := NewAnalogOutput(gpio, pwm, [2]PWMPin{10, 9}, [NumSwitches]GPIOPin{6, 7, 5, 4}, 1000)
	if err != nil {
		t.Fatalf("NewAnalogOutput failed: %v", err)
	}

	out.Apply(OutputFrame{
		Delay:    [2]uint8{255, 0},
		Switches: [NumSwitches]bool{true, false, true, false},
	})

	if pwm.duty[10] != 65535 {
		t.Errorf("Expected full duty on pin 10, got %d", pwm.duty[10])
	}
	if pwm.duty[9] != 0 {
		t.Errorf("Expected zero duty on pin 9, got %d", pwm.duty[9])
	}
	if !gpio.pins[6] || gpio.pins[7] || !gpio.pins[5] || gpio.pins[4] {
		t.Errorf("Switch pins mismatch: %v", gpio.pins)
	}

	// Only the changed switch is rewritten
	writes := gpio.writes
	out.Apply(OutputFrame{
		Delay:    [2]uint8{255, 0},
		Switches: [NumSwitches]bool{true, true, true, false},
	})
	if gpio.writes != writes+1 {
		t.Errorf("Expected one pin write, got %d", gpio.writes-writes)
	}
}

func TestStringHelpers(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{Itoa(0), "0"},
		{Itoa(-42), "-42"},
		{Itoa(2000000), "2000000"},
		{Utoa(4294967295), "4294967295"},
		{Hex32(0x66666666), "66666666"},
		{Hex32(0x1f), "0000001f"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, tc.got)
		}
	}
}
