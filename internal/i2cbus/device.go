package i2cbus

import "github.com/openbmc-project/fru-device-discovery/internal/fru"

// device is the capability surface Probe needs from one open I2C
// adapter. It exists so probe logic can be exercised against a fake in
// tests instead of a real character device, the same way the teacher's
// poller.Client keeps Modbus I/O behind a narrow interface.
type device interface {
	SelectSlave(addr fru.DeviceAddress) error
	ReceiveByte() (byte, error)
	ReadByteData(command byte) (byte, error)
	WriteByteData(command, value byte) error
	ReadBlockData(command byte, length int) ([]byte, error)
}

// fdDevice is the real device, backed by an open /dev/i2c-<N> fd.
type fdDevice struct {
	fd int
}

func newFdDevice(fd int) *fdDevice {
	return &fdDevice{fd: fd}
}

func (d *fdDevice) SelectSlave(addr fru.DeviceAddress) error {
	return selectSlave(d.fd, addr)
}

func (d *fdDevice) ReceiveByte() (byte, error) {
	return receiveByte(d.fd)
}

func (d *fdDevice) ReadByteData(command byte) (byte, error) {
	return readByteData(d.fd, command)
}

func (d *fdDevice) WriteByteData(command, value byte) error {
	return writeByteData(d.fd, command, value)
}

func (d *fdDevice) ReadBlockData(command byte, length int) ([]byte, error) {
	return readI2CBlockData(d.fd, command, length)
}

// Funcs queries an open adapter's I2C_FUNCS capability mask.
func Funcs(fd int) (uint32, error) {
	return funcs(fd)
}

// SelectSlave sets the 7-bit slave address on an open adapter via
// I2C_SLAVE_FORCE. Exported for internal/writeback, which shares the
// same ioctl plumbing as the probe path.
func SelectSlave(fd int, addr fru.DeviceAddress) error {
	return selectSlave(fd, addr)
}

// WriteByteData issues an SMBus write-byte-data transaction on an open
// adapter. Exported for internal/writeback.
func WriteByteData(fd int, command, value byte) error {
	return writeByteData(fd, command, value)
}
