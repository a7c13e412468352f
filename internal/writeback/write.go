// Package writeback implements the one intentionally synchronous
// blocking operation in the daemon: writing a FRU image back to an
// EEPROM (or the baseboard file) byte by byte, respecting write-cycle
// timing and page-boundary address increments.
package writeback

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
)

// writeDelay is the EEPROM write-cycle settle time observed between
// consecutive byte writes.
const writeDelay = 10 * time.Millisecond

// pageSize is the EEPROM page size the low device-address bit selects.
const pageSize = 256

// maxRetriesPerByte is how many additional attempts are made at the
// same index before the whole write fails.
const maxRetriesPerByte = 2

// BaseboardStore is the (0, 0) fast path: an atomic file replace
// instead of real I2C traffic.
type BaseboardStore interface {
	WriteBaseboard(data []byte) error
}

// BusOpener opens a real I2C adapter for read/write.
type BusOpener interface {
	OpenBus(bus fru.BusId) (fd int, err error)
}

// Rescanner is notified after a successful write so the inventory
// reflects the new image on the next cycle.
type Rescanner interface {
	Trigger(reason string)
}

// smbusDevice is the narrow surface Write needs from an open adapter,
// mirrored from i2cbus.device so tests can fake it without a real
// character device.
type smbusDevice interface {
	SelectSlave(addr fru.DeviceAddress) error
	WriteByteData(command, value byte) error
}

// Writer drives the write path.
type Writer struct {
	opener    BusOpener
	baseboard BaseboardStore
	rescan    Rescanner
	log       *logrus.Entry

	// newDevice constructs the smbusDevice for an opened fd. Overridden
	// in tests; defaults to the real fd-backed implementation.
	newDevice func(fd int) smbusDevice
}

// New builds a Writer against real hardware.
func New(opener BusOpener, baseboard BaseboardStore, rescan Rescanner, log *logrus.Entry) *Writer {
	return &Writer{
		opener:    opener,
		baseboard: baseboard,
		rescan:    rescan,
		log:       log,
		newDevice: func(fd int) smbusDevice { return realDevice{fd: fd} },
	}
}

// Write implements spec.md §4.6 exactly: size check, decode-validate,
// baseboard fast path, else a byte-at-a-time SMBus write with
// page-boundary address increments and per-byte retry.
func (w *Writer) Write(bus fru.BusId, addr fru.DeviceAddress, data []byte) error {
	if len(data) > frucodec.MaxFruSize {
		return NewValidationError(fmt.Errorf("writeback: image of %d bytes exceeds max size %d", len(data), frucodec.MaxFruSize))
	}
	if !frucodec.ValidateImage(data) {
		return NewValidationError(fmt.Errorf("writeback: image fails decode validation"))
	}

	if bus == fru.BaseboardBus && addr == fru.BaseboardAddress {
		if err := w.baseboard.WriteBaseboard(data); err != nil {
			return fmt.Errorf("writeback: baseboard write: %w", err)
		}
		w.rescan.Trigger("write-fru-success")
		return nil
	}

	fd, err := w.opener.OpenBus(bus)
	if err != nil {
		return fmt.Errorf("writeback: open bus %d: %w", bus, err)
	}
	defer unix.Close(fd)

	dev := w.newDevice(fd)
	currentAddr := addr
	if err := dev.SelectSlave(currentAddr); err != nil {
		return fmt.Errorf("writeback: select slave 0x%02x: %w", currentAddr, err)
	}

	for i, b := range data {
		if i > 0 && i%pageSize == 0 {
			currentAddr++
			if err := dev.SelectSlave(currentAddr); err != nil {
				return fmt.Errorf("writeback: page-boundary re-select 0x%02x: %w", currentAddr, err)
			}
		}

		command := byte(i % pageSize)

		var writeErr error
		for attempt := 0; attempt <= maxRetriesPerByte; attempt++ {
			writeErr = dev.WriteByteData(command, b)
			if writeErr == nil {
				break
			}
			w.log.WithError(writeErr).WithFields(logrus.Fields{
				"index": i, "attempt": attempt,
			}).Warn("write-byte-data failed, retrying")
		}
		if writeErr != nil {
			return fmt.Errorf("writeback: write failed at index %d after %d retries: %w", i, maxRetriesPerByte, writeErr)
		}

		time.Sleep(writeDelay)
	}

	w.rescan.Trigger("write-fru-success")
	return nil
}
