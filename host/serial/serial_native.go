package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// consolePort is a Port on a tarm/serial device
type consolePort struct {
	*serial.Port
	device string
}

// Open opens the console device described by cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial: nil config")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}
	return &consolePort{Port: port, device: cfg.Device}, nil
}

// Close releases the device
func (p *consolePort) Close() error {
	if err := p.Port.Close(); err != nil {
		return fmt.Errorf("serial: close %s: %w", p.device, err)
	}
	return nil
}
