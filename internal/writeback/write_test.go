package writeback

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
)

type fakeOpener struct {
	fd  int
	err error
}

func (f *fakeOpener) OpenBus(bus fru.BusId) (int, error) {
	return f.fd, f.err
}

type fakeBaseboardStore struct {
	written []byte
	err     error
}

func (s *fakeBaseboardStore) WriteBaseboard(data []byte) error {
	s.written = append([]byte{}, data...)
	return s.err
}

type fakeRescanner struct {
	reasons []string
}

func (r *fakeRescanner) Trigger(reason string) {
	r.reasons = append(r.reasons, reason)
}

type recordedWrite struct {
	addr    fru.DeviceAddress
	command byte
	value   byte
}

type fakeDevice struct {
	addr    fru.DeviceAddress
	writes  []recordedWrite
	attempt map[byte]int // command byte -> attempts made so far for that logical byte

	// failCommands maps a page-relative command byte to how many leading
	// attempts at that byte must fail before one succeeds.
	failCommands map[byte]int
}

func (d *fakeDevice) SelectSlave(addr fru.DeviceAddress) error {
	d.addr = addr
	return nil
}

func (d *fakeDevice) WriteByteData(command, value byte) error {
	if d.attempt == nil {
		d.attempt = make(map[byte]int)
	}
	n := d.attempt[command]
	d.attempt[command] = n + 1

	d.writes = append(d.writes, recordedWrite{addr: d.addr, command: command, value: value})

	if required, ok := d.failCommands[command]; ok && n < required {
		return fmt.Errorf("fake: transient SMBus error at command %d, attempt %d", command, n)
	}
	return nil
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func mustEncodedImage(t *testing.T, size int) []byte {
	t.Helper()
	fields := frucodec.FruFieldMap{
		"BOARD_LANGUAGE_CODE":    "0",
		"BOARD_MANUFACTURE_DATE": "Mon Jan  1 00:00:00 1996",
		"BOARD_PRODUCT_NAME":     "Widget",
	}
	raw, err := frucodec.Encode(fields)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(raw) >= size {
		return raw
	}
	padded := make([]byte, size)
	copy(padded, raw)
	// Padding bytes are zero; frucodec ignores trailing zero bytes past
	// the areas the header points to, so this still decodes cleanly.
	return padded
}

func TestWrite_RejectsOversizedImage(t *testing.T) {
	w := New(&fakeOpener{}, &fakeBaseboardStore{}, &fakeRescanner{}, testLog())
	data := make([]byte, frucodec.MaxFruSize+1)
	if err := w.Write(5, 0x50, data); err == nil {
		t.Fatal("expected an oversized image to be rejected")
	}
}

func TestWrite_RejectsUndecodableImage(t *testing.T) {
	w := New(&fakeOpener{}, &fakeBaseboardStore{}, &fakeRescanner{}, testLog())
	if err := w.Write(5, 0x50, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}); err == nil {
		t.Fatal("expected a malformed image to be rejected")
	}
}

func TestWrite_BaseboardFastPath(t *testing.T) {
	baseboard := &fakeBaseboardStore{}
	rescan := &fakeRescanner{}
	w := New(&fakeOpener{}, baseboard, rescan, testLog())

	data := mustEncodedImage(t, 64)
	if err := w.Write(fru.BaseboardBus, fru.BaseboardAddress, data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if string(baseboard.written) != string(data) {
		t.Fatal("expected the baseboard store to receive the written bytes")
	}
	if len(rescan.reasons) != 1 {
		t.Fatalf("expected exactly one rescan trigger, got %v", rescan.reasons)
	}
}

func TestWrite_PageCrossingIncrementsSlaveAddress(t *testing.T) {
	data := mustEncodedImage(t, 300)

	dev := &fakeDevice{}
	rescan := &fakeRescanner{}
	w := New(&fakeOpener{fd: 7}, &fakeBaseboardStore{}, rescan, testLog())
	w.newDevice = func(fd int) smbusDevice { return dev }

	if err := w.Write(5, 0x50, data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(dev.writes) != len(data) {
		t.Fatalf("expected %d byte writes, got %d", len(data), len(dev.writes))
	}

	for i, rec := range dev.writes {
		wantAddr := fru.DeviceAddress(0x50)
		if i >= pageSize {
			wantAddr = 0x51
		}
		if rec.addr != wantAddr {
			t.Fatalf("write %d: slave address = 0x%02x, want 0x%02x", i, rec.addr, wantAddr)
		}
		if rec.command != byte(i%pageSize) {
			t.Fatalf("write %d: command byte = %d, want %d", i, rec.command, i%pageSize)
		}
	}

	if len(rescan.reasons) != 1 {
		t.Fatalf("expected exactly one rescan trigger, got %v", rescan.reasons)
	}
}

func TestWrite_RetriesTransientFailureThenSucceeds(t *testing.T) {
	data := mustEncodedImage(t, 16)
	dev := &fakeDevice{failCommands: map[byte]int{3: 2}} // byte 3 fails twice, succeeds on the 3rd attempt
	w := New(&fakeOpener{fd: 7}, &fakeBaseboardStore{}, &fakeRescanner{}, testLog())
	w.newDevice = func(fd int) smbusDevice { return dev }

	if err := w.Write(5, 0x50, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestWrite_FailsAfterExhaustingRetries(t *testing.T) {
	data := mustEncodedImage(t, 16)
	dev := &fakeDevice{failCommands: map[byte]int{2: maxRetriesPerByte + 1}}
	w := New(&fakeOpener{fd: 7}, &fakeBaseboardStore{}, &fakeRescanner{}, testLog())
	w.newDevice = func(fd int) smbusDevice { return dev }

	if err := w.Write(5, 0x50, data); err == nil {
		t.Fatal("expected write to fail after exhausting retries")
	}
}
