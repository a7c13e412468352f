package writeback

import (
	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/i2cbus"
)

// realDevice is the production smbusDevice, backed by an open
// /dev/i2c-<N> fd and i2cbus's exported ioctl wrappers.
type realDevice struct {
	fd int
}

func (d realDevice) SelectSlave(addr fru.DeviceAddress) error {
	return i2cbus.SelectSlave(d.fd, addr)
}

func (d realDevice) WriteByteData(command, value byte) error {
	return i2cbus.WriteByteData(d.fd, command, value)
}
