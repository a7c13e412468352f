package muxdedup

import (
	"fmt"
	"os"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
)

// SysfsChecker is the real SysfsMuxChecker, backed by the kernel's
// sysfs tree.
type SysfsChecker struct{}

// IsMuxChild reports whether i2c-<bus>'s mux_device entry exists and is
// a symlink.
func (SysfsChecker) IsMuxChild(bus fru.BusId) bool {
	path := fmt.Sprintf("/sys/bus/i2c/devices/i2c-%d/mux_device", bus)
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}
