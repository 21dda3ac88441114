// Package mcu talks to the pedal's USB console
package mcu

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"warpomatic/host/serial"
	"warpomatic/pedal"
)

// ErrTimeout is returned when a reply does not end in time
var ErrTimeout = errors.New("mcu: reply timed out")

// MCU represents a connection to the pedal
type MCU struct {
	port serial.Port

	lines chan string
	done  chan struct{}

	// OnLog receives lines that are not part of a reply, such as debug
	// output. Called from the reader goroutine.
	OnLog func(string)

	timeout time.Duration

	mu        sync.Mutex // One command at a time
	waiting   atomic.Bool
	connected atomic.Bool
	readErr   error
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{timeout: 2 * time.Second}
}

// Connect connects to the pedal via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("mcu: %w", err)
	}
	// Drop console output from before we connected
	if err := port.Flush(); err != nil {
		port.Close()
		return fmt.Errorf("failed to flush serial port: %w", err)
	}
	m.Attach(port)
	return nil
}

// Attach starts using an open port
func (m *MCU) Attach(port serial.Port) {
	m.port = port
	m.lines = make(chan string, 256)
	m.done = make(chan struct{})
	m.connected.Store(true)
	go m.readLoop()
}

// Close closes the connection
func (m *MCU) Close() error {
	if !m.connected.Swap(false) {
		return nil
	}
	err := m.port.Close()
	<-m.done
	return err
}

// IsConnected returns whether the pedal is connected
func (m *MCU) IsConnected() bool {
	return m.connected.Load()
}

// SetTimeout sets how long to wait for a complete reply
func (m *MCU) SetTimeout(d time.Duration) {
	m.timeout = d
}

// Command sends a console command and returns the reply lines. Error lines
// from the pedal are returned as errors.
func (m *MCU) Command(cmd byte) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected.Load() {
		return nil, fmt.Errorf("not connected to MCU")
	}

	// Lines left over from a timed out reply belong to nobody
	m.drain()
	m.waiting.Store(true)
	defer m.waiting.Store(false)

	if _, err := m.port.Write([]byte{cmd, '\n'}); err != nil {
		return nil, fmt.Errorf("failed to send command %q: %w", cmd, err)
	}

	var reply []string
	deadline := time.After(m.timeout)
	for {
		select {
		case line, ok := <-m.lines:
			if !ok {
				return reply, fmt.Errorf("connection lost: %w", m.readErr)
			}
			if line == pedal.EndLine {
				return reply, replyError(reply)
			}
			reply = append(reply, line)
		case <-deadline:
			return reply, ErrTimeout
		}
	}
}

// Status requests and parses the pedal status
func (m *MCU) Status() (*Status, error) {
	reply, err := m.Command(pedal.CmdStatus)
	if err != nil {
		return nil, err
	}
	for _, line := range reply {
		if strings.HasPrefix(line, pedal.StatusPrefix) {
			return ParseStatus(line)
		}
		m.log(line)
	}
	return nil, fmt.Errorf("no status in reply %q", reply)
}

func replyError(reply []string) error {
	for _, line := range reply {
		if strings.HasPrefix(line, pedal.ErrorPrefix) {
			return errors.New("pedal: " + strings.TrimPrefix(line, pedal.ErrorPrefix))
		}
	}
	return nil
}

func (m *MCU) drain() {
	for {
		select {
		case line, ok := <-m.lines:
			if !ok {
				return
			}
			m.log(line)
		default:
			return
		}
	}
}

func (m *MCU) log(line string) {
	if m.OnLog != nil {
		m.OnLog(line)
	}
}

// deliver hands a line to a waiting command, or to OnLog
func (m *MCU) deliver(line string) {
	if m.waiting.Load() {
		select {
		case m.lines <- line:
			return
		default:
		}
	}
	m.log(line)
}

// readLoop splits the byte stream into lines. Reads that time out return
// io.EOF and are retried.
func (m *MCU) readLoop() {
	defer close(m.done)
	defer close(m.lines)

	buf := make([]byte, 256)
	var line []byte
	for {
		n, err := m.port.Read(buf)
		for _, b := range buf[:n] {
			switch b {
			case '\r':
			case '\n':
				m.deliver(string(line))
				line = line[:0]
			default:
				line = append(line, b)
			}
		}
		if err != nil {
			if err != io.EOF || !m.connected.Load() {
				m.readErr = err
				return
			}
		}
	}
}
