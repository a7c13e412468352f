// Package i2cbus probes I2C/SMBus segments for FRU EEPROMs: address-width
// classification, block reads, and the per-bus scan with its wall-clock
// timeout.
package i2cbus

import (
	"fmt"
	"unsafe"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"golang.org/x/sys/unix"
)

// Linux I2C character-device ioctl numbers, from <linux/i2c-dev.h>. These
// are not exposed by golang.org/x/sys/unix, so they're hand-encoded here
// the same way bureau-foundation-bureau encodes AMDGPU ioctls: a request
// number plus a struct laid out to match the kernel ABI, passed through
// unix.Syscall(unix.SYS_IOCTL, ...).
const (
	ioctlI2CSlaveForce = 0x0706
	ioctlI2CFuncs      = 0x0705
	ioctlI2CSMBus      = 0x0720
)

// I2C_FUNC_* capability bits, from <linux/i2c-dev.h>.
const (
	FuncSMBusReadByte     = 0x00020000
	FuncSMBusReadI2CBlock = 0x04000000
)

// SMBus transaction direction and type, from <linux/i2c-dev.h>.
const (
	smbusWrite = 0
	smbusRead  = 1

	smbusByte         = 1
	smbusByteData     = 2
	smbusI2CBlockData = 8

	smbusBlockMax = 32
)

// i2cSMBusIoctlData mirrors struct i2c_smbus_ioctl_data. The data field
// is a pointer into an i2c_smbus_data union, which callers provide as a
// byte buffer sized to the transaction they're issuing.
type i2cSMBusIoctlData struct {
	readWrite uint8
	command   uint8
	size      uint32
	data      unsafe.Pointer
}

func ioctl(fd int, request, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// funcs queries the adapter's capability mask via I2C_FUNCS.
func funcs(fd int) (uint32, error) {
	var mask uint32
	if err := ioctl(fd, ioctlI2CFuncs, uintptr(unsafe.Pointer(&mask))); err != nil {
		return 0, fmt.Errorf("i2cbus: I2C_FUNCS: %w", err)
	}
	return mask, nil
}

// selectSlave sets the 7-bit slave address via I2C_SLAVE_FORCE, bypassing
// the kernel's "address already in use by a driver" check — the same
// ioctl the original daemon uses, since FRU EEPROMs are frequently also
// claimed by a kernel driver.
func selectSlave(fd int, addr fru.DeviceAddress) error {
	if err := ioctl(fd, ioctlI2CSlaveForce, uintptr(addr)); err != nil {
		return fmt.Errorf("i2cbus: I2C_SLAVE_FORCE(0x%02x): %w", addr, err)
	}
	return nil
}

func smbusIoctl(fd int, readWrite, size uint8, data unsafe.Pointer, command byte) error {
	req := i2cSMBusIoctlData{
		readWrite: readWrite,
		command:   command,
		size:      uint32(size),
		data:      data,
	}
	return ioctl(fd, ioctlI2CSMBus, uintptr(unsafe.Pointer(&req)))
}

// receiveByte issues an SMBus receive-byte transaction.
func receiveByte(fd int) (byte, error) {
	var b [2]byte // union i2c_smbus_data's byte field, plus alignment slack
	if err := smbusIoctl(fd, smbusRead, smbusByte, unsafe.Pointer(&b[0]), 0); err != nil {
		return 0, fmt.Errorf("i2cbus: SMBus receive-byte: %w", err)
	}
	return b[0], nil
}

// readByteData issues an SMBus read-byte-data transaction with the given
// command byte.
func readByteData(fd int, command byte) (byte, error) {
	var b [2]byte
	if err := smbusIoctl(fd, smbusRead, smbusByteData, unsafe.Pointer(&b[0]), command); err != nil {
		return 0, fmt.Errorf("i2cbus: SMBus read-byte-data(0x%02x): %w", command, err)
	}
	return b[0], nil
}

// writeByteData issues an SMBus write-byte-data transaction.
func writeByteData(fd int, command, value byte) error {
	b := [2]byte{value, 0}
	if err := smbusIoctl(fd, smbusWrite, smbusByteData, unsafe.Pointer(&b[0]), command); err != nil {
		return fmt.Errorf("i2cbus: SMBus write-byte-data(0x%02x): %w", command, err)
	}
	return nil
}

// prepareBlockReadBuffer builds the i2c_smbus_data union buffer for an
// I2C_SMBUS_I2C_BLOCK_DATA read. Unlike I2C_SMBUS_BLOCK_DATA, this
// transaction is not self-describing: the kernel reads block[0] as the
// number of bytes the caller wants, and does a 0-length transfer if the
// caller leaves it unset.
func prepareBlockReadBuffer(length int) [smbusBlockMax + 2]byte {
	if length > smbusBlockMax {
		length = smbusBlockMax
	}
	var block [smbusBlockMax + 2]byte
	block[0] = byte(length)
	return block
}

// readI2CBlockData issues an SMBus read-i2c-block-data transaction with
// the given command byte, requesting up to length bytes (capped at 32).
func readI2CBlockData(fd int, command byte, length int) ([]byte, error) {
	block := prepareBlockReadBuffer(length)
	if err := smbusIoctl(fd, smbusRead, smbusI2CBlockData, unsafe.Pointer(&block[0]), command); err != nil {
		return nil, fmt.Errorf("i2cbus: SMBus read-i2c-block-data(0x%02x): %w", command, err)
	}
	n := int(block[0])
	if n > smbusBlockMax {
		n = smbusBlockMax
	}
	return append([]byte{}, block[1:1+n]...), nil
}
