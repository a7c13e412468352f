package rescan

import (
	"fmt"
	"os"
	"syscall"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
)

// DevOpener opens real /dev/i2c-<N> character devices.
type DevOpener struct{}

// OpenBus opens the adapter read/write with close-on-exec set, per
// spec.md §4.5 step 3. The returned fd is a bare int owned by the
// caller from this point on: it is opened with a raw open(2), with no
// *os.File wrapper whose finalizer could close it behind the caller.
func (DevOpener) OpenBus(bus fru.BusId) (int, error) {
	path := fmt.Sprintf("/dev/i2c-%d", bus)
	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_CLOEXEC, 0)
	if err != nil {
		return 0, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return fd, nil
}
