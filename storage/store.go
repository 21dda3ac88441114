// Package storage keeps one fixed-size record in byte-addressable persistent
// memory. Every write goes to the slot after the previous one so that wear is
// spread over the whole device. A 4-byte marker precedes each record; the
// current record is the only slot whose marker reads DataMarker and is found
// again after power-up by a linear scan.
//
// Layout of a slot: [marker: 4 bytes][record: RecordSize bytes]
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"warpomatic/core"
)

// MarkerSize is the size of a marker in bytes. Record sizes must be a multiple of it.
const MarkerSize = 4

// Marker values. Keep them unlikely to appear as record content.
const (
	DataMarker  uint32 = 0x66666666 // A record follows
	EraseMarker uint32 = 0x33333333 // A record used to follow
	EmptyMarker uint32 = 0x22222222 // Initialised, nothing written yet
)

var (
	// ErrNotFound is returned when there is no record at the cursor. Expected on first boot.
	ErrNotFound = errors.New("storage: no record found")

	// ErrConfiguration blocks all I/O: the record size is not a multiple of MarkerSize
	ErrConfiguration = errors.New("storage: record size must be a multiple of the marker size")

	// A blocked store has no record to read
	errBlockedRead = fmt.Errorf("%w: %w", ErrNotFound, ErrConfiguration)

	// ErrCapacity means marker plus record exceed the memory; the store is pinned to address 0
	ErrCapacity = errors.New("storage: record and marker exceed memory capacity")

	// ErrRecordSize is returned when Write is given a record of the wrong length
	ErrRecordSize = errors.New("storage: record length mismatch")
)

// Store is the wear-leveled settings store
type Store struct {
	mem        core.Memory
	recordSize int
	capacity   int
	cursor     int

	blocked bool // Misconfigured, no I/O at all
	fixed   bool // Too small for wear leveling, always address 0

	validate func(record []byte) bool
	scratch  []byte
	word     [MarkerSize]byte
}

// New creates a store for records of recordSize bytes. Call Initialize before use.
func New(mem core.Memory, recordSize int) *Store {
	return &Store{
		mem:        mem,
		recordSize: recordSize,
		scratch:    make([]byte, recordSize),
	}
}

// SetValidator installs a record check used while scanning for the current slot.
// A data marker followed by a record that fails the check is not accepted, so
// stale record bytes that happen to spell DataMarker cannot be mistaken for a slot.
func (s *Store) SetValidator(fn func(record []byte) bool) {
	s.validate = fn
}

// slotSize returns the size of marker plus record
func (s *Store) slotSize() int {
	return MarkerSize + s.recordSize
}

// Initialize locates the current record within the first capacity bytes of memory,
// or prepares the memory for its first write.
func (s *Store) Initialize(capacity int) error {
	s.capacity = capacity
	s.cursor = 0
	s.blocked = false
	s.fixed = false

	if s.recordSize <= 0 || s.recordSize%MarkerSize != 0 {
		s.blocked = true
		core.DebugPrintln("storage: record size " + core.Itoa(s.recordSize) +
			" must be a multiple of " + core.Itoa(MarkerSize) + ", add " +
			core.Itoa(MarkerSize-s.recordSize%MarkerSize) + " padding bytes")
		return ErrConfiguration
	}

	if s.slotSize() > capacity {
		s.fixed = true
		core.DebugPrintln("storage: record (+ marker) of " + core.Itoa(s.slotSize()) +
			" bytes is too large for " + core.Itoa(capacity) + " bytes, wear leveling disabled")
		return ErrCapacity
	}

	// Look for the marker preceding the record that was written last
	for addr := 0; addr+s.slotSize() <= capacity; addr += MarkerSize {
		marker, err := s.readMarker(addr)
		if err != nil {
			return err
		}
		if marker != DataMarker {
			continue
		}
		if s.validate != nil {
			if _, err := s.mem.ReadAt(s.scratch, int64(addr+MarkerSize)); err != nil {
				return fmt.Errorf("storage: read at %d: %w", addr+MarkerSize, err)
			}
			if !s.validate(s.scratch) {
				continue
			}
		}
		s.cursor = addr
		core.DebugPrintln("storage: found record at " + core.Itoa(addr))
		return nil
	}

	// Memory this store has not seen before
	s.cursor = 0
	return s.writeMarker(0, EmptyMarker)
}

// Cursor returns the address of the current slot
func (s *Store) Cursor() int {
	return s.cursor
}

// Capacity returns the capacity given to Initialize
func (s *Store) Capacity() int {
	return s.capacity
}

// RecordSize returns the record size in bytes
func (s *Store) RecordSize() int {
	return s.recordSize
}

// IsBlocked reports whether the store refused its configuration
func (s *Store) IsBlocked() bool {
	return s.blocked
}

// IsEmpty reports whether the memory is initialised but holds no record yet
func (s *Store) IsEmpty() bool {
	if s.blocked {
		return false
	}
	marker, err := s.readMarker(s.cursor)
	return err == nil && marker == EmptyMarker
}

// Read copies the current record into buf and returns the number of bytes read
func (s *Store) Read(buf []byte) (int, error) {
	if s.blocked {
		return 0, errBlockedRead
	}
	if len(buf) < s.recordSize {
		return 0, io.ErrShortBuffer
	}

	marker, err := s.readMarker(s.cursor)
	if err != nil {
		if s.fixed {
			return 0, fmt.Errorf("%w: %v", ErrCapacity, err)
		}
		return 0, err
	}
	if marker != DataMarker {
		return 0, ErrNotFound
	}

	n, err := s.mem.ReadAt(buf[:s.recordSize], int64(s.cursor+MarkerSize))
	if err != nil {
		if s.fixed {
			return n, fmt.Errorf("%w: %v", ErrCapacity, err)
		}
		return n, fmt.Errorf("storage: read at %d: %w", s.cursor+MarkerSize, err)
	}
	return n, nil
}

// Write stores record in the next slot and returns the bytes written, marker included
func (s *Store) Write(record []byte) (int, error) {
	if s.blocked {
		return 0, ErrConfiguration
	}
	if len(record) != s.recordSize {
		return 0, ErrRecordSize
	}

	if s.fixed {
		if err := s.writeSlot(0, record); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrCapacity, err)
		}
		return s.slotSize(), nil
	}

	current, err := s.readMarker(s.cursor)
	if err != nil {
		return 0, err
	}

	if current == EmptyMarker {
		// First write ever, use the prepared slot
		if err := s.writeSlot(s.cursor, record); err != nil {
			return 0, err
		}
		return s.slotSize(), nil
	}

	next := s.cursor + s.slotSize()
	if next+s.slotSize() > s.capacity {
		core.DebugPrintln("storage: end of memory reached, continuing at address 0")
		next = 0
	}

	// Retire the old marker first: an interrupted write must never leave two
	// data markers behind.
	if err := s.writeMarker(s.cursor, EraseMarker); err != nil {
		return 0, err
	}
	if err := s.writeSlot(next, record); err != nil {
		return 0, err
	}
	s.cursor = next
	return s.slotSize(), nil
}

// Prime writes record at address 0, retiring the current marker.
// Used to give a fresh device known contents.
func (s *Store) Prime(record []byte) error {
	if s.blocked {
		return ErrConfiguration
	}
	if len(record) != s.recordSize {
		return ErrRecordSize
	}
	if s.cursor != 0 {
		if err := s.writeMarker(s.cursor, EraseMarker); err != nil {
			return err
		}
	}
	if err := s.writeSlot(0, record); err != nil {
		return err
	}
	s.cursor = 0
	return nil
}

// Erase fills the memory with 0xFF and prepares it for a first write.
// Only needed to inspect the memory while debugging.
func (s *Store) Erase() error {
	if s.blocked {
		return ErrConfiguration
	}
	var block [16]byte
	for i := range block {
		block[i] = 0xFF
	}
	for addr := 0; addr < s.capacity; addr += len(block) {
		chunk := block[:]
		if rest := s.capacity - addr; rest < len(chunk) {
			chunk = chunk[:rest]
		}
		if _, err := s.mem.WriteAt(chunk, int64(addr)); err != nil {
			return fmt.Errorf("storage: erase at %d: %w", addr, err)
		}
	}
	s.cursor = 0
	return s.writeMarker(0, EmptyMarker)
}

// Dump writes the memory as marker-sized words, eight per line. The data
// marker is bracketed so the current slot is easy to spot.
func (s *Store) Dump(w io.Writer) error {
	if s.blocked {
		return ErrConfiguration
	}
	out := "Content of " + core.Itoa(s.capacity) + " eeprom addresses:"
	count := 0
	for addr := 0; addr+MarkerSize <= s.capacity; addr += MarkerSize {
		word, err := s.readMarker(addr)
		if err != nil {
			return err
		}
		if count%8 == 0 {
			if _, err := io.WriteString(w, out); err != nil {
				return err
			}
			out = "\n" + padAddress(addr) + " -> "
		}
		if word == DataMarker {
			out += ">" + core.Hex32(word) + "<"
		} else {
			out += " " + core.Hex32(word) + " "
		}
		count++
	}
	_, err := io.WriteString(w, out+" EOF\n")
	return err
}

// padAddress formats addr as at least four decimal digits
func padAddress(addr int) string {
	text := core.Itoa(addr)
	for len(text) < 4 {
		text = "0" + text
	}
	return text
}

func (s *Store) writeSlot(addr int, record []byte) error {
	if err := s.writeMarker(addr, DataMarker); err != nil {
		return err
	}
	if _, err := s.mem.WriteAt(record, int64(addr+MarkerSize)); err != nil {
		return fmt.Errorf("storage: write at %d: %w", addr+MarkerSize, err)
	}
	return nil
}

func (s *Store) readMarker(addr int) (uint32, error) {
	if _, err := s.mem.ReadAt(s.word[:], int64(addr)); err != nil {
		return 0, fmt.Errorf("storage: read marker at %d: %w", addr, err)
	}
	return binary.LittleEndian.Uint32(s.word[:]), nil
}

func (s *Store) writeMarker(addr int, marker uint32) error {
	binary.LittleEndian.PutUint32(s.word[:], marker)
	if _, err := s.mem.WriteAt(s.word[:], int64(addr)); err != nil {
		return fmt.Errorf("storage: write marker at %d: %w", addr, err)
	}
	return nil
}
