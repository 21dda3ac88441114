package pedal

import "warpomatic/core"

// Config holds the tunables of the pedal firmware
type Config struct {
	QuiescenceMS   uint32 `json:"quiescence_ms"`    // Quiet time before settings are written
	ClockTimeoutUS uint32 `json:"clock_timeout_us"` // Silence before the external clock is absent
	ClockWindow    int    `json:"clock_window"`     // Pulses per tempo estimate
	MemoryCapacity int    `json:"memory_capacity"`  // Bytes of persistent memory used for settings

	InitialEffect  int8  `json:"initial_effect"`
	InitialCounter uint8 `json:"initial_counter"`
	InitialRatio   uint8 `json:"initial_ratio"`
	InitialWetDry  bool  `json:"initial_wet_dry"`

	DebounceMS  uint32 `json:"debounce_ms"`
	ClickMS     uint32 `json:"click_ms"`
	LongPressMS uint32 `json:"long_press_ms"`

	SymbolicK1  float64 `json:"symbolic_k1"`
	SymbolicK2  float64 `json:"symbolic_k2"`
	SymbolicDiv float64 `json:"symbolic_div"`

	LEDPeriodMS uint32 `json:"led_period_ms"` // Blink period without external clock
	Debug       bool   `json:"debug"`
}

// Ports are the hardware the manager drives. Display and LED may be nil.
// Without Memory settings live in RAM only.
type Ports struct {
	Memory  core.Memory
	Output  core.OutputPort
	Display core.DisplayPort
	LED     core.StatusLED
}

// Boot sources recorded with core.EvtBoot
const (
	BootLoaded   = 0 // Settings read from memory
	BootDefaults = 1 // Nothing stored yet, or the store is unusable
	BootRepaired = 2 // Stored settings were corrupt or out of range
)
