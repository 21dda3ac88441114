package mcu

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"warpomatic/core"
	"warpomatic/pedal"
	"warpomatic/pedal/config"
	"warpomatic/storage"
)

type nopOutput struct{}

func (nopOutput) Apply(core.OutputFrame) {}

// consolePort answers commands with a real pedal console
type consolePort struct {
	mgr   *pedal.Manager
	r     *io.PipeReader
	w     *io.PipeWriter
	noise []string // Written ahead of every reply
	mute  bool
}

func newConsolePort(t *testing.T) *consolePort {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.MemoryCapacity = 512
	mgr, err := pedal.NewManager(cfg, pedal.Ports{Memory: storage.NewRAM(512), Output: nopOutput{}})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if err := mgr.Boot(0); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}
	r, w := io.Pipe()
	return &consolePort{mgr: mgr, r: r, w: w}
}

func (p *consolePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *consolePort) Write(b []byte) (int, error) {
	if p.mute {
		return len(b), nil
	}
	cmd := b[0]
	go func() {
		for _, line := range p.noise {
			p.w.Write([]byte(line + "\r\n"))
		}
		p.mgr.Console(cmd, func(s string) { p.w.Write([]byte(s + "\r\n")) })
	}()
	return len(b), nil
}

func (p *consolePort) Close() error {
	p.r.Close()
	return p.w.Close()
}

func (p *consolePort) Flush() error { return nil }

func TestStatusRoundTrip(t *testing.T) {
	port := newConsolePort(t)
	m := NewMCU()
	m.Attach(port)
	defer m.Close()

	s, err := m.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if s.Effect != 1 || s.Name != "Shrt dly" || s.Counter != 220 || s.Mode != "select" {
		t.Errorf("Unexpected status %+v", s)
	}
	if s.Clock || s.Pending || s.Writes != 0 {
		t.Errorf("Fresh pedal should be idle, got %+v", s)
	}
}

func TestCommandErrorsAndNoise(t *testing.T) {
	port := newConsolePort(t)
	port.noise = []string{"persist: wrote 36 bytes at 0"}

	var mu sync.Mutex
	var logged []string
	m := NewMCU()
	m.OnLog = func(s string) {
		mu.Lock()
		logged = append(logged, s)
		mu.Unlock()
	}
	m.Attach(port)
	defer m.Close()

	if _, err := m.Status(); err != nil {
		t.Fatalf("Status with debug output failed: %v", err)
	}
	mu.Lock()
	if len(logged) != 1 || logged[0] != port.noise[0] {
		t.Errorf("Debug line should go to OnLog, got %q", logged)
	}
	mu.Unlock()

	port.noise = nil
	_, err := m.Command('z')
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Expected unknown command error, got %v", err)
	}

	reply, err := m.Command(pedal.CmdFlush)
	if err != nil || len(reply) != 1 || reply[0] != pedal.OKLine {
		t.Errorf("Expected ok from flush, got %q, %v", reply, err)
	}
}

func TestCommandTimeout(t *testing.T) {
	port := newConsolePort(t)
	port.mute = true
	m := NewMCU()
	m.SetTimeout(50 * time.Millisecond)
	m.Attach(port)
	defer m.Close()

	if _, err := m.Command(pedal.CmdStatus); !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

func TestCommandAfterClose(t *testing.T) {
	m := NewMCU()
	m.Attach(newConsolePort(t))
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if m.IsConnected() {
		t.Error("Should not be connected after Close")
	}
	if _, err := m.Command(pedal.CmdStatus); err == nil {
		t.Error("Expected error after Close")
	}
}

func TestParseStatus(t *testing.T) {
	line := `status effect=9 name="WowNotFlut" counter=30 ratio=7 wetdry=1 mode=set fine=0 clock=1 cycle=500000 pedal=0 pending=1 writes=4 cursor=108 dropped=0 uptime=75 last_error="storage: no record found"`
	s, err := ParseStatus(line)
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}
	want := Status{
		Effect: 9, Name: "WowNotFlut", Counter: 30, Ratio: 7, WetDry: true, Mode: "set",
		Clock: true, CycleUS: 500000, Pending: true, Writes: 4, Cursor: 108, UptimeS: 75,
		LastError: "storage: no record found",
	}
	if *s != want {
		t.Errorf("Expected %+v, got %+v", want, *s)
	}
	if !strings.Contains(s.String(), "120.0 bpm") {
		t.Errorf("Expected tempo in %q", s.String())
	}

	bad := []string{
		"effect=1",
		`status effect=1 name="open`,
		"status effect=x",
		"status effect=1",
	}
	for _, line := range bad {
		if _, err := ParseStatus(line); err == nil {
			t.Errorf("Expected error for %q", line)
		}
	}
}
