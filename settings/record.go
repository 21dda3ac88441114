package settings

import "encoding/binary"

// Record layout
//
//	[0:13]  counters
//	[13:26] ratio indices
//	[26]    effect (int8)
//	[27]    flags, bit 0 = wet/dry
//	[28:30] CRC16 of [0:28], little endian
//	[30:32] zero padding, keeps the record a multiple of the storage marker
const (
	RecordSize = 32

	offCounter = 0
	offRatio   = offCounter + NumEffects
	offEffect  = offRatio + NumEffects
	offFlags   = offEffect + 1
	offCRC     = offFlags + 1
	dataSize   = offCRC

	flagWetDry = 1 << 0
)

// Encode writes the record into buf, which must hold RecordSize bytes
func (s *Settings) Encode(buf []byte) {
	_ = buf[RecordSize-1]
	copy(buf[offCounter:], s.Counter[:])
	copy(buf[offRatio:], s.Ratio[:])
	buf[offEffect] = uint8(s.Effect)
	var flags uint8
	if s.WetDry {
		flags |= flagWetDry
	}
	buf[offFlags] = flags
	binary.LittleEndian.PutUint16(buf[offCRC:], CRC16(buf[:dataSize]))
	buf[offCRC+2] = 0
	buf[offCRC+3] = 0
}

// Decode parses a record. Fields are not range checked, see Repair.
func Decode(buf []byte) (Settings, error) {
	var s Settings
	if len(buf) < RecordSize || !Valid(buf) {
		return s, ErrCorrupt
	}
	copy(s.Counter[:], buf[offCounter:offRatio])
	copy(s.Ratio[:], buf[offRatio:offEffect])
	s.Effect = int8(buf[offEffect])
	s.WetDry = buf[offFlags]&flagWetDry != 0
	return s, nil
}

// Valid reports whether the checksum of a record matches its contents
func Valid(record []byte) bool {
	if len(record) < RecordSize {
		return false
	}
	return binary.LittleEndian.Uint16(record[offCRC:]) == CRC16(record[:dataSize])
}
