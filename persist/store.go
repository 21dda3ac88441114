package persist

import (
	"errors"

	"warpomatic/core"
	"warpomatic/settings"
	"warpomatic/storage"
)

// Open creates a settings store on mem using its first capacity bytes.
// An ErrCapacity result still returns a usable store.
func Open(mem core.Memory, capacity int) (*storage.Store, error) {
	store := storage.New(mem, settings.RecordSize)
	store.SetValidator(settings.Valid)
	return store, store.Initialize(capacity)
}

// StoreAdapter binds settings to a wear-leveled store
type StoreAdapter struct {
	store   *storage.Store
	limits  settings.Limits
	initial settings.Initial
	buf     [settings.RecordSize]byte
}

// NewStoreAdapter creates an adapter. limits and initial are used to repair
// loaded settings.
func NewStoreAdapter(store *storage.Store, limits settings.Limits, initial settings.Initial) *StoreAdapter {
	return &StoreAdapter{
		store:   store,
		limits:  limits,
		initial: initial,
	}
}

// Load reads the current settings. On storage.ErrNotFound, storage.ErrConfiguration
// or settings.ErrCorrupt it returns defaults with the error. Out-of-range fields
// are replaced and reported as *settings.OutOfRangeError alongside the repaired
// settings.
func (a *StoreAdapter) Load() (settings.Settings, error) {
	if _, err := a.store.Read(a.buf[:]); err != nil {
		return settings.Defaults(a.limits, a.initial), err
	}
	s, err := settings.Decode(a.buf[:])
	if err != nil {
		return settings.Defaults(a.limits, a.initial), err
	}
	if err := s.Repair(a.limits, a.initial); err != nil {
		return s, err
	}
	return s, nil
}

// Save encodes s and writes it to the next slot
func (a *StoreAdapter) Save(s settings.Settings) error {
	s.Encode(a.buf[:])
	n, err := a.store.Write(a.buf[:])
	if err != nil {
		return err
	}
	core.RecordEvent(core.EvtStoreWrite, uint32(a.store.Cursor()), uint32(n))
	core.DebugPrintln("persist: wrote " + core.Itoa(n) + " bytes at " + core.Itoa(a.store.Cursor()))
	return nil
}

// NeedsRewrite reports whether a Load error calls for writing the settings
// back: the record was corrupt or fields were repaired.
func NeedsRewrite(err error) bool {
	if err == nil {
		return false
	}
	var rangeErr *settings.OutOfRangeError
	return errors.Is(err, settings.ErrCorrupt) || errors.As(err, &rangeErr)
}
