// Package pedal ties the pedal together: it loads the settings at boot,
// accepts input from interrupt handlers and runs the main loop work.
package pedal

import (
	"errors"
	"sync/atomic"

	"warpomatic/controller"
	"warpomatic/core"
	"warpomatic/effects"
	"warpomatic/input"
	"warpomatic/persist"
	"warpomatic/settings"
	"warpomatic/storage"
)

// Manager coordinates all pedal components
type Manager struct {
	config *Config
	ports  Ports
	table  *effects.Table

	settings   settings.Settings
	store      *storage.Store
	adapter    *persist.StoreAdapter
	scheduler  *persist.Scheduler
	controller *controller.Controller
	view       *View

	// Main-loop timers
	timers   *core.TimerList
	ledTimer core.Timer
	ledOn    bool

	// Interrupt side. The decoders are only touched by the main loop with
	// interrupts disabled.
	encoder     input.Encoder
	button      *input.Button
	buttonLevel bool
	clock       *input.ClockEstimator
	queue       input.Queue
	pedal       atomic.Bool

	now         uint32
	lastDropped uint32
	frame       core.OutputFrame
	frameValid  bool
	booted      bool
}

// NewManager creates a manager. Interrupt entry points may be called as soon
// as it exists; events are processed once Boot has run.
func NewManager(cfg *Config, ports Ports) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("pedal: no configuration")
	}
	if ports.Output == nil {
		return nil, errors.New("pedal: no output port")
	}

	m := &Manager{
		config: cfg,
		ports:  ports,
		table:  &effects.Default,
		timers: core.NewTimerList(),
		button: input.NewButton(cfg.DebounceMS, cfg.ClickMS, cfg.LongPressMS),
		clock:  input.NewClockEstimator(cfg.ClockWindow, cfg.ClockTimeoutUS),
	}
	if ports.Display != nil {
		m.view = NewView(ports.Display, m.table)
	}
	m.ledTimer.Handler = m.blink
	return m, nil
}

// Boot loads the settings, falling back to defaults, and drives the outputs
func (m *Manager) Boot(now uint32) error {
	if m.booted {
		return errors.New("pedal: already booted")
	}
	m.now = now

	initial := settings.Initial{
		Effect:  m.config.InitialEffect,
		Counter: m.config.InitialCounter,
		Ratio:   m.config.InitialRatio,
		WetDry:  m.config.InitialWetDry,
	}

	mem := m.ports.Memory
	capacity := m.config.MemoryCapacity
	if mem == nil {
		core.DebugPrintln("pedal: no persistent memory, settings are kept in RAM")
		mem = storage.NewRAM(capacity)
	}
	if size := int(mem.Size()); capacity > size {
		capacity = size
	}

	store, err := persist.Open(mem, capacity)
	switch {
	case errors.Is(err, storage.ErrCapacity):
		core.DebugPrintln("pedal: memory too small for wear leveling")
	case err != nil:
		core.RecordEvent(core.EvtStoreError, 0, 0)
		core.DebugPrintln("pedal: store unusable: " + err.Error())
	}
	m.store = store
	m.adapter = persist.NewStoreAdapter(store, m.table, initial)

	s, err := m.adapter.Load()
	m.settings = s
	source := uint32(BootLoaded)
	rewrite := persist.NeedsRewrite(err)
	switch {
	case err == nil:
	case rewrite:
		source = BootRepaired
		core.RecordEvent(core.EvtEffectFixed, uint32(uint8(s.Effect)), 0)
		core.DebugPrintln("pedal: stored settings repaired: " + err.Error())
	default:
		// Nothing stored yet, or the store is blocked
		source = BootDefaults
		core.DebugPrintln("pedal: using default settings")
	}
	core.RecordEvent(core.EvtBoot, source, uint32(store.Cursor()))

	m.scheduler = persist.NewScheduler(m.adapter, &m.settings, m.timers, m.config.QuiescenceMS, m.Now)
	m.scheduler.OnWrite = m.wrote
	symbolic := effects.Symbolic{
		K1:  m.config.SymbolicK1,
		K2:  m.config.SymbolicK2,
		Div: m.config.SymbolicDiv,
	}
	if store.IsBlocked() {
		// Runs on in-memory settings only
		m.controller = controller.New(&m.settings, m.table, symbolic, nil)
	} else {
		m.controller = controller.New(&m.settings, m.table, symbolic, m.scheduler)
	}

	if rewrite {
		m.scheduler.MarkDirty()
	}

	if m.ports.LED != nil {
		m.ledTimer.WakeTime = now + core.TimerFromMS(m.ledPeriod())
		m.timers.Schedule(&m.ledTimer)
	}

	m.booted = true
	m.refresh()
	return nil
}

// EncoderEdge is called from the encoder interrupt with both phase levels
func (m *Manager) EncoderEdge(a, b bool) {
	if r := m.encoder.Process(a, b); r != input.NoRotation {
		m.queue.Push(input.Event{Kind: input.EventEncoder, Rotation: r, Time: core.GetTime()})
	}
}

// ButtonEdge is called from the button interrupt with the raw level
func (m *Manager) ButtonEdge(pressed bool, now uint32) {
	m.buttonLevel = pressed
	if action := m.button.Update(pressed, now); action != input.NoAction {
		m.queue.Push(input.Event{Kind: input.EventButton, Button: action, Time: now})
	}
}

// ClockPulse is called from the external clock interrupt
func (m *Manager) ClockPulse(now uint32) {
	if cycle, ok := m.clock.Pulse(now); ok {
		m.queue.Push(input.Event{Kind: input.EventClockEstimate, CycleTime: cycle, Time: now})
	}
}

// SetPedal records the foot switch level
func (m *Manager) SetPedal(pressed bool) {
	m.pedal.Store(pressed)
}

// Inject queues an event as if an interrupt handler had decoded it
func (m *Manager) Inject(e input.Event) bool {
	return m.queue.Push(e)
}

// Poll runs one main loop iteration at time now
func (m *Manager) Poll(now uint32) {
	if !m.booted {
		return
	}
	m.now = now

	// Expire decoder windows; shared with the interrupt handlers
	state := core.DisableInterrupts()
	action := m.button.Update(m.buttonLevel, now)
	lost := m.clock.Poll(now)
	core.RestoreInterrupts(state)

	for {
		e, ok := m.queue.Pop()
		if !ok {
			break
		}
		m.controller.Handle(e)
	}
	if action != input.NoAction {
		m.controller.Handle(input.Event{Kind: input.EventButton, Button: action, Time: now})
	}
	if lost {
		m.controller.ClockLost()
	}

	if dropped := m.queue.Dropped(); dropped != m.lastDropped {
		m.lastDropped = dropped
		core.RecordEvent(core.EvtQueueDrop, dropped, 0)
	}

	m.timers.Dispatch(now)
	m.refresh()
}

// Flush writes pending settings immediately
func (m *Manager) Flush() error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Flush()
}

// Now returns the time of the last Boot or Poll
func (m *Manager) Now() uint32 {
	return m.now
}

// Controller returns the parameter controller, nil before Boot
func (m *Manager) Controller() *controller.Controller {
	return m.controller
}

// Scheduler returns the persistence scheduler, nil before Boot
func (m *Manager) Scheduler() *persist.Scheduler {
	return m.scheduler
}

// Store returns the settings store, nil before Boot
func (m *Manager) Store() *storage.Store {
	return m.store
}

// Settings returns a copy of the current settings
func (m *Manager) Settings() settings.Settings {
	return m.settings
}

// Frame returns the last output frame applied
func (m *Manager) Frame() core.OutputFrame {
	return m.frame
}

// Pedal returns the foot switch level
func (m *Manager) Pedal() bool {
	return m.pedal.Load()
}

// LED returns the status LED level
func (m *Manager) LED() bool {
	return m.ledOn
}

// Queue returns the input queue
func (m *Manager) Queue() *input.Queue {
	return &m.queue
}

// refresh updates outputs and display after the settings may have changed
func (m *Manager) refresh() {
	effect := m.controller.Effect()
	frame := m.table.Route(effect, m.controller.Counter(), m.settings.WetDry, m.pedal.Load())
	if !m.frameValid || frame != m.frame {
		m.ports.Output.Apply(frame)
		m.frame = frame
		m.frameValid = true
	}
	if m.view != nil {
		m.view.Render(m.controller, m.pedal.Load())
	}
}

// blink toggles the LED, fast while an external clock is present
func (m *Manager) blink(t *core.Timer) uint8 {
	m.setLED(!m.ledOn)
	t.WakeTime += core.TimerFromMS(m.ledPeriod())
	if core.TimeBefore(t.WakeTime, m.now) {
		t.WakeTime = m.now + core.TimerFromMS(m.ledPeriod())
	}
	return core.SF_RESCHEDULE
}

func (m *Manager) ledPeriod() uint32 {
	period := m.config.LEDPeriodMS
	if m.controller != nil && m.controller.ClockPresent() {
		period /= 10
	}
	if period == 0 {
		period = 1
	}
	return period
}

func (m *Manager) setLED(on bool) {
	m.ledOn = on
	if m.ports.LED != nil {
		m.ports.LED.SetLED(on)
	}
}

func (m *Manager) wrote(err error) {
	if err != nil {
		return
	}
	m.setLED(!m.ledOn)
}
