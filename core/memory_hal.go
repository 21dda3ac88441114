package core

import "io"

// Memory is byte-addressable persistent storage (EEPROM or an image of one)
type Memory interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the capacity in bytes
	Size() int64
}
