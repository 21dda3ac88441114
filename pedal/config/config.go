package config

import (
	"encoding/json"

	"warpomatic/effects"
	"warpomatic/input"
	"warpomatic/pedal"
	"warpomatic/persist"
	"warpomatic/settings"
)

// LoadConfig parses a JSON configuration. Keys that are absent keep their
// default value.
func LoadConfig(jsonData []byte) (*pedal.Config, error) {
	config := DefaultConfig()

	err := json.Unmarshal(jsonData, config)
	if err != nil {
		return nil, err
	}

	// Replace unusable values
	applyDefaults(config)

	return config, nil
}

// applyDefaults fills in zero or out-of-range values
func applyDefaults(config *pedal.Config) {
	def := DefaultConfig()

	if config.QuiescenceMS == 0 {
		config.QuiescenceMS = def.QuiescenceMS
	}
	if config.ClockTimeoutUS == 0 {
		config.ClockTimeoutUS = def.ClockTimeoutUS
	}
	if config.ClockWindow < 2 {
		config.ClockWindow = def.ClockWindow
	}
	if config.MemoryCapacity <= 0 {
		config.MemoryCapacity = def.MemoryCapacity
	}

	if config.InitialEffect < 0 || int(config.InitialEffect) >= effects.NumEffects {
		config.InitialEffect = def.InitialEffect
	}
	if config.InitialCounter < effects.CounterMin {
		config.InitialCounter = def.InitialCounter
	}
	if int(config.InitialRatio) >= effects.NumRatios {
		config.InitialRatio = def.InitialRatio
	}

	if config.DebounceMS == 0 {
		config.DebounceMS = def.DebounceMS
	}
	if config.ClickMS == 0 {
		config.ClickMS = def.ClickMS
	}
	if config.LongPressMS == 0 {
		config.LongPressMS = def.LongPressMS
	}

	if config.SymbolicK1 <= 0 {
		config.SymbolicK1 = def.SymbolicK1
	}
	if config.SymbolicK2 <= 0 || config.SymbolicK2 >= 1 {
		config.SymbolicK2 = def.SymbolicK2
	}
	if config.SymbolicDiv <= 0 {
		config.SymbolicDiv = def.SymbolicDiv
	}

	if config.LEDPeriodMS == 0 {
		config.LEDPeriodMS = def.LEDPeriodMS
	}
}

// DefaultConfig returns the configuration of the stock pedal with an AT24C32
func DefaultConfig() *pedal.Config {
	return &pedal.Config{
		QuiescenceMS:   persist.DefaultQuiescenceMS,
		ClockTimeoutUS: input.DefaultClockTimeoutUS,
		ClockWindow:    input.DefaultClockWindow,
		MemoryCapacity: 4096,

		InitialEffect:  settings.DefaultInitial.Effect,
		InitialCounter: settings.DefaultInitial.Counter,
		InitialRatio:   settings.DefaultInitial.Ratio,
		InitialWetDry:  settings.DefaultInitial.WetDry,

		DebounceMS:  input.DefaultDebounceMS,
		ClickMS:     input.DefaultClickMS,
		LongPressMS: input.DefaultLongPressMS,

		SymbolicK1:  effects.DefaultSymbolic.K1,
		SymbolicK2:  effects.DefaultSymbolic.K2,
		SymbolicDiv: effects.DefaultSymbolic.Div,

		LEDPeriodMS: 1000,
	}
}
