//go:build !tinygo

package storage

import (
	"fmt"
	"io"
	"os"
)

// FileMemory is a core.Memory backed by an EEPROM image file. A new file
// starts out erased.
type FileMemory struct {
	f    *os.File
	size int64
}

// OpenFile opens or creates the image at path with size bytes. An existing
// shorter image is extended with erased bytes.
func OpenFile(path string, size int64) (*FileMemory, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open eeprom image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat eeprom image: %w", err)
	}

	if have := info.Size(); have < size {
		erased := make([]byte, size-have)
		for i := range erased {
			erased[i] = 0xFF
		}
		if _, err := f.WriteAt(erased, have); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend eeprom image: %w", err)
		}
	}
	return &FileMemory{f: f, size: size}, nil
}

func (m *FileMemory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= m.size {
		return 0, io.EOF
	}
	if rest := m.size - off; int64(len(p)) > rest {
		n, err := m.f.ReadAt(p[:rest], off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return m.f.ReadAt(p, off)
}

func (m *FileMemory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > m.size {
		return 0, ErrOutOfRange
	}
	return m.f.WriteAt(p, off)
}

// Size returns the capacity in bytes
func (m *FileMemory) Size() int64 {
	return m.size
}

// Close syncs and closes the image
func (m *FileMemory) Close() error {
	if err := m.f.Sync(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}
