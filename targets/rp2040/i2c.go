//go:build rp2040

package main

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers"
)

// EEPROM and display share I2C0. Both are only used from the main loop.
const i2cFrequency = 400 * machine.KHz

// ConfigureI2C sets up the shared bus
func ConfigureI2C() (drivers.I2C, error) {
	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		Frequency: i2cFrequency,
		SDA:       i2cSDA,
		SCL:       i2cSCL,
	})
	if err != nil {
		return nil, errors.New("i2c0 configure failed: " + err.Error())
	}
	return i2c, nil
}
