package storage

import (
	"errors"
	"io"
)

// ErrOutOfRange is returned by RAM for accesses past its end
var ErrOutOfRange = errors.New("storage: access beyond end of memory")

// RAM is a volatile core.Memory, initialised to the erased state (0xFF).
// Used by tests and by host tooling as an EEPROM stand-in.
type RAM struct {
	buf []byte
}

// NewRAM creates an erased memory of size bytes
func NewRAM(size int) *RAM {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0xFF
	}
	return &RAM{buf: buf}
}

// NewRAMFrom wraps an existing image
func NewRAMFrom(image []byte) *RAM {
	return &RAM{buf: image}
}

func (r *RAM) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.buf)) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *RAM) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(r.buf)) {
		return 0, ErrOutOfRange
	}
	return copy(r.buf[off:], p), nil
}

// Size returns the capacity in bytes
func (r *RAM) Size() int64 {
	return int64(len(r.buf))
}

// Bytes exposes the backing image
func (r *RAM) Bytes() []byte {
	return r.buf
}
