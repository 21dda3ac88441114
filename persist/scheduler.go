// Package persist writes settings to the store once the user has stopped
// changing them.
package persist

import (
	"errors"

	"warpomatic/core"
	"warpomatic/settings"
	"warpomatic/storage"
)

// DefaultQuiescenceMS is the time without changes before settings are written
const DefaultQuiescenceMS = 10000

// ParameterStore loads and saves complete settings
type ParameterStore interface {
	Load() (settings.Settings, error)
	Save(s settings.Settings) error
}

// Scheduler defers writes until the settings have been left alone for the
// quiescence interval. Every MarkDirty restarts the interval, so a burst of
// encoder detents costs one write. A failed write is retried after another
// interval. The timer runs on a main-loop TimerList.
type Scheduler struct {
	store      ParameterStore
	source     *settings.Settings
	timers     *core.TimerList
	timer      core.Timer
	quiescence uint32
	now        func() uint32

	writes  uint32
	lastErr error

	// OnWrite is called after every save attempt
	OnWrite func(err error)
}

// NewScheduler creates a scheduler saving *source. now returns the current
// time in microseconds; nil uses core.GetTime.
func NewScheduler(store ParameterStore, source *settings.Settings, timers *core.TimerList, quiescenceMS uint32, now func() uint32) *Scheduler {
	if now == nil {
		now = core.GetTime
	}
	s := &Scheduler{
		store:      store,
		source:     source,
		timers:     timers,
		quiescence: core.TimerFromMS(quiescenceMS),
		now:        now,
	}
	s.timer.Handler = s.expired
	return s
}

// MarkDirty (re)starts the quiescence interval
func (s *Scheduler) MarkDirty() {
	s.timer.WakeTime = s.now() + s.quiescence
	s.timers.Schedule(&s.timer)
}

// Pending reports whether a write is scheduled
func (s *Scheduler) Pending() bool {
	return s.timers.Pending(&s.timer)
}

// Flush writes immediately if a write is pending
func (s *Scheduler) Flush() error {
	if !s.Pending() {
		return nil
	}
	s.timers.Cancel(&s.timer)
	err := s.save()
	if retry(err) {
		s.MarkDirty()
	}
	return err
}

// Writes returns the number of save attempts
func (s *Scheduler) Writes() uint32 {
	return s.writes
}

// LastError returns the result of the most recent save
func (s *Scheduler) LastError() error {
	return s.lastErr
}

func (s *Scheduler) expired(t *core.Timer) uint8 {
	if retry(s.save()) {
		t.WakeTime = s.now() + s.quiescence
		return core.SF_RESCHEDULE
	}
	return core.SF_DONE
}

// retry reports whether a failed save may succeed later. A blocked store
// never will.
func retry(err error) bool {
	return err != nil && !errors.Is(err, storage.ErrConfiguration)
}

func (s *Scheduler) save() error {
	err := s.store.Save(*s.source)
	s.writes++
	s.lastErr = err
	if err != nil {
		core.RecordEvent(core.EvtStoreError, s.writes, 0)
		core.DebugPrintln("persist: save failed: " + err.Error())
	}
	if s.OnWrite != nil {
		s.OnWrite(err)
	}
	return err
}
