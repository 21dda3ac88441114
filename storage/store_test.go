package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

const testRecordSize = 16

func testRecord(seed byte) []byte {
	rec := make([]byte, testRecordSize)
	for i := range rec {
		rec[i] = seed + byte(i)
	}
	return rec
}

func newTestStore(t *testing.T, capacity int) (*Store, *RAM) {
	t.Helper()
	mem := NewRAM(capacity)
	store := New(mem, testRecordSize)
	if err := store.Initialize(capacity); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store, mem
}

// liveMarkers returns every marker-aligned address holding DataMarker
func liveMarkers(mem *RAM) []int {
	var found []int
	image := mem.Bytes()
	for addr := 0; addr+MarkerSize <= len(image); addr += MarkerSize {
		if binary.LittleEndian.Uint32(image[addr:]) == DataMarker {
			found = append(found, addr)
		}
	}
	return found
}

func TestFirstBootIsEmpty(t *testing.T) {
	store, mem := newTestStore(t, 512)

	if !store.IsEmpty() {
		t.Error("Fresh memory should be empty after Initialize")
	}
	if got := binary.LittleEndian.Uint32(mem.Bytes()); got != EmptyMarker {
		t.Errorf("Expected empty marker at address 0, got %08x", got)
	}

	buf := make([]byte, testRecordSize)
	if _, err := store.Read(buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on first boot, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, 512)

	for seed := byte(0); seed < 40; seed++ {
		rec := testRecord(seed)
		n, err := store.Write(rec)
		if err != nil {
			t.Fatalf("Write %d failed: %v", seed, err)
		}
		if n != MarkerSize+testRecordSize {
			t.Errorf("Expected %d bytes written, got %d", MarkerSize+testRecordSize, n)
		}

		buf := make([]byte, testRecordSize)
		if _, err := store.Read(buf); err != nil {
			t.Fatalf("Read %d failed: %v", seed, err)
		}
		if !bytes.Equal(buf, rec) {
			t.Fatalf("Round trip mismatch: wrote %v, read %v", rec, buf)
		}
	}
}

func TestConcreteScenario(t *testing.T) {
	// capacity 512, marker 4, record 16
	store, _ := newTestStore(t, 512)

	store.Write(testRecord(1))
	if store.Cursor() != 0 {
		t.Errorf("First write should land at 0, got %d", store.Cursor())
	}

	store.Write(testRecord(2))
	if store.Cursor() != 20 {
		t.Errorf("Second write should land at 20, got %d", store.Cursor())
	}

	for i := 3; i <= 26; i++ {
		store.Write(testRecord(byte(i)))
	}
	if store.Cursor() != 0 {
		t.Errorf("After 26 writes the cursor should be back at 0, got %d", store.Cursor())
	}

	buf := make([]byte, testRecordSize)
	store.Read(buf)
	if !bytes.Equal(buf, testRecord(26)) {
		t.Errorf("Slot 0 should hold the 26th record, got %v", buf)
	}
}

func TestWearLevelingWrapsOnce(t *testing.T) {
	const capacity = 512
	const slot = MarkerSize + testRecordSize
	store, _ := newTestStore(t, capacity)

	writes := (capacity+slot-1)/slot + 1
	wraps := 0
	prev := -1
	for i := 0; i < writes; i++ {
		if _, err := store.Write(testRecord(byte(i))); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
		if prev >= 0 && store.Cursor() < prev {
			wraps++
			if store.Cursor() != 0 {
				t.Errorf("Wrap should return to 0, got %d", store.Cursor())
			}
		}
		if store.Cursor()+slot > capacity {
			t.Fatalf("Slot at %d runs past capacity", store.Cursor())
		}
		prev = store.Cursor()
	}
	if wraps != 1 {
		t.Errorf("Expected exactly one wrap in %d writes, got %d", writes, wraps)
	}
}

func TestSingleLiveMarker(t *testing.T) {
	store, mem := newTestStore(t, 256)

	for i := 0; i < 50; i++ {
		store.Write(testRecord(byte(i)))
		live := liveMarkers(mem)
		if len(live) != 1 || live[0] != store.Cursor() {
			t.Fatalf("After write %d expected one data marker at %d, got %v", i, store.Cursor(), live)
		}
	}
}

func TestReinitializeFindsCurrentRecord(t *testing.T) {
	store, mem := newTestStore(t, 512)
	for i := 0; i < 7; i++ {
		store.Write(testRecord(byte(10 * i)))
	}

	// Power cycle onto a copy of the image
	again := New(NewRAMFrom(append([]byte(nil), mem.Bytes()...)), testRecordSize)
	if err := again.Initialize(512); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if again.Capacity() != 512 {
		t.Errorf("Expected capacity 512, got %d", again.Capacity())
	}
	if again.Cursor() != store.Cursor() {
		t.Errorf("Expected cursor %d after reboot, got %d", store.Cursor(), again.Cursor())
	}
	buf := make([]byte, testRecordSize)
	if _, err := again.Read(buf); err != nil {
		t.Fatalf("Read after reboot failed: %v", err)
	}
	if !bytes.Equal(buf, testRecord(60)) {
		t.Errorf("Expected last record after reboot, got %v", buf)
	}

	// Writing continues after the recovered slot
	again.Write(testRecord(99))
	if again.Cursor() != store.Cursor()+MarkerSize+testRecordSize {
		t.Errorf("Expected next slot after reboot, got %d", again.Cursor())
	}
}

// crashMemory stops accepting writes after a number of successful ones
type crashMemory struct {
	*RAM
	writesLeft int
}

var errPowerLoss = errors.New("power loss")

func (c *crashMemory) WriteAt(p []byte, off int64) (int, error) {
	if c.writesLeft == 0 {
		return 0, errPowerLoss
	}
	c.writesLeft--
	return c.RAM.WriteAt(p, off)
}

func TestCrashBetweenEraseAndMarker(t *testing.T) {
	mem := &crashMemory{RAM: NewRAM(512), writesLeft: -1}
	store := New(mem, testRecordSize)
	store.Initialize(512)
	store.Write(testRecord(1))
	store.Write(testRecord(2))

	// Allow the erase of the old marker, fail the new marker
	mem.writesLeft = 1
	if _, err := store.Write(testRecord(3)); !errors.Is(err, errPowerLoss) {
		t.Fatalf("Expected power loss error, got %v", err)
	}
	if live := liveMarkers(mem.RAM); len(live) != 0 {
		t.Fatalf("Expected no data marker after crash, got %v", live)
	}

	mem.writesLeft = -1
	rebooted := New(mem, testRecordSize)
	if err := rebooted.Initialize(512); err != nil {
		t.Fatalf("Initialize after crash failed: %v", err)
	}
	buf := make([]byte, testRecordSize)
	if _, err := rebooted.Read(buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after interrupted write, got %v (%v)", err, buf)
	}
}

func TestMisalignedRecordBlocksStore(t *testing.T) {
	mem := NewRAM(512)
	store := New(mem, 15)

	if err := store.Initialize(512); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration, got %v", err)
	}
	if !store.IsBlocked() {
		t.Error("Store should be blocked")
	}
	if _, err := store.Write(make([]byte, 15)); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Write on blocked store: expected ErrConfiguration, got %v", err)
	}
	if _, err := store.Read(make([]byte, 15)); !errors.Is(err, ErrConfiguration) || !errors.Is(err, ErrNotFound) {
		t.Errorf("Read on blocked store: expected ErrNotFound and ErrConfiguration, got %v", err)
	}
	for _, b := range mem.Bytes() {
		if b != 0xFF {
			t.Fatal("Blocked store must not touch memory")
		}
	}
}

func TestCapacityErrorPinsAddressZero(t *testing.T) {
	mem := NewRAM(64)
	store := New(mem, testRecordSize)

	// Pretend only 16 bytes are available to the store
	if err := store.Initialize(16); !errors.Is(err, ErrCapacity) {
		t.Fatalf("Expected ErrCapacity, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.Write(testRecord(byte(i))); err != nil {
			t.Fatalf("Write %d in fixed mode failed: %v", i, err)
		}
		if store.Cursor() != 0 {
			t.Fatalf("Fixed mode moved the cursor to %d", store.Cursor())
		}
	}
	buf := make([]byte, testRecordSize)
	if _, err := store.Read(buf); err != nil {
		t.Fatalf("Read in fixed mode failed: %v", err)
	}
	if !bytes.Equal(buf, testRecord(2)) {
		t.Errorf("Expected last record at 0, got %v", buf)
	}
}

func TestCapacityErrorMemoryTooSmall(t *testing.T) {
	mem := NewRAM(16)
	store := New(mem, testRecordSize)
	store.Initialize(16)

	if _, err := store.Write(testRecord(0)); !errors.Is(err, ErrCapacity) {
		t.Errorf("Expected ErrCapacity when the slot does not fit, got %v", err)
	}
}

func TestValidatorSkipsForgedMarker(t *testing.T) {
	mem := NewRAM(512)
	store := New(mem, testRecordSize)
	store.SetValidator(func(rec []byte) bool { return rec[0] == 0xA5 })
	store.Initialize(512)

	good := testRecord(0)
	good[0] = 0xA5
	store.Write(good)
	store.Write(good)
	store.Write(good) // current slot at 40

	// Stale bytes at the start of the memory spell a data marker
	binary.LittleEndian.PutUint32(mem.Bytes()[8:], DataMarker)

	rebooted := New(mem, testRecordSize)
	rebooted.SetValidator(func(rec []byte) bool { return rec[0] == 0xA5 })
	if err := rebooted.Initialize(512); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if rebooted.Cursor() != 40 {
		t.Errorf("Expected validator to skip forged marker and find 40, got %d", rebooted.Cursor())
	}
}

func TestPrimeAndErase(t *testing.T) {
	store, mem := newTestStore(t, 256)
	for i := 0; i < 5; i++ {
		store.Write(testRecord(byte(i)))
	}

	if err := store.Prime(testRecord(42)); err != nil {
		t.Fatalf("Prime failed: %v", err)
	}
	if live := liveMarkers(mem); len(live) != 1 || live[0] != 0 {
		t.Errorf("Expected single data marker at 0 after Prime, got %v", live)
	}

	if err := store.Erase(); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}
	if !store.IsEmpty() {
		t.Error("Store should be empty after Erase")
	}
	if live := liveMarkers(mem); len(live) != 0 {
		t.Errorf("Expected no data marker after Erase, got %v", live)
	}
}

func TestDump(t *testing.T) {
	store, _ := newTestStore(t, 64)
	store.Write(testRecord(0))

	var sb strings.Builder
	if err := store.Dump(&sb); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, ">66666666<") {
		t.Errorf("Dump should highlight the data marker:\n%s", out)
	}
	if !strings.Contains(out, "0032 -> ") || !strings.HasSuffix(out, " EOF\n") {
		t.Errorf("Unexpected dump layout:\n%s", out)
	}
}
