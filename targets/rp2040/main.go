//go:build rp2040

package main

import (
	_ "embed"
	"machine"
	"time"

	"warpomatic/core"
	"warpomatic/pedal"
	"warpomatic/pedal/config"
)

//go:embed pedal.json
var configJSON []byte

var (
	manager *pedal.Manager

	// Debug counters
	loopPanics uint32
	lastPedal  bool
)

func main() {
	// Disable the watchdog so a previous reset does not carry over
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()

	InitClock()
	core.TimerInit()

	cfg, err := config.LoadConfig(configJSON)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(cfg.Debug)
	if err != nil {
		core.DebugPrintln("config: " + err.Error())
	}

	gpioDriver := NewRPGPIODriver()
	pwmDriver := NewRP2040PWMDriver()

	output, err := core.NewAnalogOutput(gpioDriver, pwmDriver, delayPins, switchPins, pwmCycleTicks)
	if err != nil {
		core.DebugPrintln("output: " + err.Error())
		return
	}

	ports := pedal.Ports{
		Output: output,
		LED:    NewStatusLED(gpioDriver, ledPin),
	}
	if bus, err := ConfigureI2C(); err != nil {
		core.DebugPrintln("i2c: " + err.Error())
	} else {
		ports.Memory = NewEEPROM(bus, eepromSize)
		if display, err := NewOLED(bus); err != nil {
			core.DebugPrintln("display: " + err.Error())
		} else {
			ports.Display = display
		}
	}

	manager, err = pedal.NewManager(cfg, ports)
	if err != nil {
		core.DebugPrintln("pedal: " + err.Error())
		return
	}

	configureInputs(gpioDriver)

	UpdateSystemTime()
	if err := manager.Boot(core.GetTime()); err != nil {
		core.DebugPrintln("boot: " + err.Error())
	}

	for {
		// Recover from panics in the main loop to keep the pedal running
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopPanics++
				}
			}()

			UpdateSystemTime()

			if level := !pedalPin.Get(); level != lastPedal {
				lastPedal = level
				manager.SetPedal(level)
			}

			manager.Poll(core.GetTime())
			serviceConsole()
		}()

		time.Sleep(100 * time.Microsecond)
	}
}

// configureInputs sets up the front panel pins and their interrupts.
// All inputs are active low.
func configureInputs(gpio *RPGPIODriver) {
	for _, pin := range []core.GPIOPin{encoderAPin, encoderBPin, buttonPin, clockPin, pedalPinNum} {
		gpio.ConfigureInputPullUp(pin)
	}

	encoderA := gpio.Pin(encoderAPin)
	encoderB := gpio.Pin(encoderBPin)
	encoderEdge := func(machine.Pin) {
		manager.EncoderEdge(encoderA.Get(), encoderB.Get())
	}
	encoderA.SetInterrupt(machine.PinToggle, encoderEdge)
	encoderB.SetInterrupt(machine.PinToggle, encoderEdge)

	button := gpio.Pin(buttonPin)
	button.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
		manager.ButtonEdge(!p.Get(), GetHardwareTime())
	})

	gpio.Pin(clockPin).SetInterrupt(machine.PinFalling, func(machine.Pin) {
		manager.ClockPulse(GetHardwareTime())
	})

	pedalPin = gpio.Pin(pedalPinNum)
	lastPedal = !pedalPin.Get()
	manager.SetPedal(lastPedal)
}
