package i2cbus

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
)

// DefaultProbeTimeout is the standard wall-clock budget for a whole-bus
// probe. Probe takes its timeout from the caller;
// config.DefaultBusTimeout carries the same value for the daemon.
const DefaultProbeTimeout = 5 * time.Second

// ErrBusTimeout is returned by Probe when a bus fails to complete its
// scan within timeout. The caller owns the blacklist and is expected to
// insert busID into it on this error; Probe has already closed busFD.
var ErrBusTimeout = errors.New("i2cbus: bus probe timed out")

// Probe scans addresses 0x03..0x77 on one open I2C adapter, returning
// the raw FRU bytes found at each responding address. The whole call
// runs under a wall-clock budget of timeout enforced by a worker
// goroutine; if the budget is exceeded, busFD is closed and
// ErrBusTimeout is returned.
//
// The worker may still be blocked in a syscall on busFD when the
// timeout fires. Closing the fd out from under it is the same hazard
// the original daemon has: there is no portable way to cancel a
// blocking SMBus ioctl, so the goroutine is abandoned to exit on its
// own once the syscall eventually errors or returns.
func Probe(busFD int, busID fru.BusId, timeout time.Duration, log *logrus.Entry) (map[fru.DeviceAddress]frucodec.RawFru, error) {
	done := make(chan map[fru.DeviceAddress]frucodec.RawFru, 1)
	go func() {
		done <- probeAddresses(newFdDevice(busFD), log)
	}()

	select {
	case result := <-done:
		return result, nil
	case <-time.After(timeout):
		unix.Close(busFD)
		log.WithField("bus", busID).Warn("bus probe timed out, blacklisting")
		return nil, ErrBusTimeout
	}
}

func probeAddresses(dev device, log *logrus.Entry) map[fru.DeviceAddress]frucodec.RawFru {
	result := make(map[fru.DeviceAddress]frucodec.RawFru)
	for addr := fru.MinProbedAddress; addr <= fru.MaxProbedAddress; addr++ {
		raw, ok := probeOneAddress(dev, addr, log)
		if ok {
			result[addr] = raw
		}
	}
	return result
}

func probeOneAddress(dev device, addr fru.DeviceAddress, log *logrus.Entry) (frucodec.RawFru, bool) {
	if err := dev.SelectSlave(addr); err != nil {
		log.WithError(err).WithField("address", addr).Debug("select slave failed, skipping address")
		return nil, false
	}

	if _, err := dev.ReceiveByte(); err != nil {
		return nil, false
	}

	is16Bit, err := classifyWidth(dev)
	if err != nil {
		return nil, false
	}

	header, err := readBlock(dev, is16Bit, 0, frucodec.HeaderSize)
	if err != nil || len(header) < frucodec.HeaderSize {
		return nil, false
	}
	if !frucodec.ValidateHeader(header) {
		return nil, false
	}

	raw := append([]byte{}, header...)
	for pos := 1; pos <= 5; pos++ {
		offsetByte := header[pos]
		if offsetByte == 0 {
			continue
		}
		offsetBytes := int(offsetByte) * 8

		areaHeader, err := readBlock(dev, is16Bit, offsetBytes, 8)
		if err != nil || len(areaHeader) < 2 {
			return nil, false
		}
		areaLen := int(areaHeader[1]) * 8
		areaBytes := append([]byte{}, areaHeader...)

		remaining := areaLen - 8
		readPos := offsetBytes + 8
		for remaining > 0 {
			chunk := maxBlockLen
			if remaining < chunk {
				chunk = remaining
			}
			data, err := readBlock(dev, is16Bit, readPos, chunk)
			if err != nil {
				return nil, false
			}
			areaBytes = append(areaBytes, data...)
			readPos += chunk
			remaining -= chunk
		}

		raw = append(raw, areaBytes...)
	}

	return frucodec.RawFru(raw), true
}
