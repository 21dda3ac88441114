package sim

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"warpomatic/core"
	"warpomatic/pedal"
)

// Main loop period of the simulated firmware
const pollInterval = 2 * time.Millisecond

// Encoder phase levels (a, b) for one detent, ending at rest
var (
	cwDetent  = [][2]bool{{true, false}, {false, false}, {false, true}, {true, true}}
	ccwDetent = [][2]bool{{false, true}, {false, false}, {true, false}, {true, true}}
)

// Button gestures as (delay since previous step, level) steps
var (
	clickGesture  = []buttonStep{{0, true}, {100 * time.Millisecond, false}}
	doubleGesture = []buttonStep{{0, true}, {100 * time.Millisecond, false}, {100 * time.Millisecond, true}, {100 * time.Millisecond, false}}
	longGesture   = []buttonStep{{0, true}, {time.Second, false}}
)

const maxEventLines = 6

type buttonStep struct {
	after   time.Duration
	pressed bool
}

type tickMsg time.Time

type buttonMsg []buttonStep

// BeatMsg is one external clock pulse, sent by the MIDI listener
type BeatMsg struct{}

// Model is the bubbletea model of the simulated pedal
type Model struct {
	Manager *pedal.Manager
	Output  *Output
	Display *Display
	LED     *LED

	clock    func() time.Time
	start    time.Time
	pedal    bool
	message  string
	events   []string
	eventSeq uint32
	quitting bool
}

// New builds the pedal on mem and boots it
func New(cfg *pedal.Config, mem core.Memory) (*Model, error) {
	return newModel(cfg, mem, time.Now)
}

func newModel(cfg *pedal.Config, mem core.Memory, clock func() time.Time) (*Model, error) {
	m := &Model{
		Output:  &Output{},
		Display: NewDisplay(),
		LED:     &LED{},
		clock:   clock,
		start:   clock(),
		// Only events of this pedal
		eventSeq: core.EventCount(),
	}
	core.SetDebugEnabled(cfg.Debug)
	core.SetDebugWriter(m.log)

	mgr, err := pedal.NewManager(cfg, pedal.Ports{
		Memory:  mem,
		Output:  m.Output,
		Display: m.Display,
		LED:     m.LED,
	})
	if err != nil {
		return nil, err
	}
	m.Manager = mgr
	if err := mgr.Boot(m.now()); err != nil {
		return nil, err
	}
	m.collectEvents()
	return m, nil
}

// now returns simulated microseconds since start and updates the core timer
func (m *Model) now() uint32 {
	t := uint32(m.clock().Sub(m.start).Microseconds())
	core.SetTime(t)
	return t
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg.String())

	case tickMsg:
		cmd = tick()

	case buttonMsg:
		cmd = m.runGesture(msg)

	case BeatMsg:
		m.Manager.ClockPulse(m.now())
	}

	if !m.quitting {
		m.Manager.Poll(m.now())
		m.collectEvents()
	}
	return m, cmd
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		if err := m.Manager.Flush(); err != nil {
			m.message = "flush failed: " + err.Error()
		}
		return tea.Quit

	case "right", "k", "+":
		m.turn(cwDetent)
	case "left", "j", "-":
		m.turn(ccwDetent)

	case " ":
		return m.runGesture(clickGesture)
	case "d":
		return m.runGesture(doubleGesture)
	case "l":
		return m.runGesture(longGesture)

	case "t":
		m.Manager.ClockPulse(m.now())
	case "p":
		m.pedal = !m.pedal
		m.Manager.SetPedal(m.pedal)

	case "f":
		if err := m.Manager.Flush(); err != nil {
			m.message = "flush failed: " + err.Error()
		} else {
			m.message = "settings written"
		}
	}
	return nil
}

// turn feeds one detent of phase edges to the encoder decoder
func (m *Model) turn(detent [][2]bool) {
	m.now()
	for _, s := range detent {
		m.Manager.EncoderEdge(s[0], s[1])
	}
}

// runGesture applies the first step and schedules the rest
func (m *Model) runGesture(steps []buttonStep) tea.Cmd {
	if len(steps) == 0 {
		return nil
	}
	m.Manager.ButtonEdge(steps[0].pressed, m.now())

	rest := steps[1:]
	if len(rest) == 0 {
		return nil
	}
	return tea.Tick(rest[0].after, func(time.Time) tea.Msg {
		return buttonMsg(rest)
	})
}

// collectEvents appends newly recorded events to the log pane
func (m *Model) collectEvents() {
	m.eventSeq = core.EventsSince(m.eventSeq, func(e core.Event) {
		m.log(core.EventName(e.EventType) + " v1=" + core.Utoa(e.Value1) + " v2=" + core.Utoa(e.Value2))
	})
}

func (m *Model) log(line string) {
	m.events = append(m.events, line)
	if len(m.events) > maxEventLines {
		m.events = m.events[len(m.events)-maxEventLines:]
	}
}
