package dbusbind

import (
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/writeback"
)

// errInvalidArgument and errDBusInternalError are the two named errors
// spec.md §6/§7 require verbatim from the manager's three methods.
func errInvalidArgument(detail string) *dbus.Error {
	return dbus.NewError("InvalidArgument", []interface{}{detail})
}

func errDBusInternalError(detail string) *dbus.Error {
	return dbus.NewError("DBusInternalError", []interface{}{detail})
}

// RawFruLookup is the read side the manager's GetRawFru needs: the
// current BusInventory snapshot. It reports an unknown bus separately
// from a known bus lacking addr, per the two distinct "Invalid Bus." /
// "Invalid Address." failures GetRawFru is grounded on.
type RawFruLookup interface {
	LookupRawFru(bus fru.BusId, addr fru.DeviceAddress) ([]byte, error)
}

// Writer is the write-back capability WriteFru delegates to.
type Writer interface {
	Write(bus fru.BusId, addr fru.DeviceAddress, data []byte) error
}

// Rescanner schedules a rescan.
type Rescanner interface {
	Trigger(reason string)
}

// Manager implements the three methods spec.md §6 names on the
// xyz.openbmc_project.FruDevice manager object.
type Manager struct {
	inventory RawFruLookup
	writer    Writer
	rescan    Rescanner
	log       *logrus.Entry
}

// NewManager builds a Manager. Export it on a Server at ManagerPath
// under ServiceName to make it callable.
func NewManager(inventory RawFruLookup, writer Writer, rescan Rescanner, log *logrus.Entry) *Manager {
	return &Manager{inventory: inventory, writer: writer, rescan: rescan, log: log}
}

// ReScan schedules an explicit rescan, per spec.md §4.5's "Explicit
// ReScan request from the message bus" trigger.
func (m *Manager) ReScan() *dbus.Error {
	m.rescan.Trigger("dbus-rescan")
	return nil
}

// GetRawFru returns the raw bytes currently on file for (bus, address),
// failing InvalidArgument with a distinct message for an unknown bus
// versus a known bus lacking that address, matching the original
// daemon's "Invalid Bus." / "Invalid Address." distinction.
func (m *Manager) GetRawFru(bus byte, address byte) ([]byte, *dbus.Error) {
	raw, err := m.inventory.LookupRawFru(fru.BusId(bus), fru.DeviceAddress(address))
	if err != nil {
		switch {
		case errors.Is(err, fru.ErrUnknownBus):
			return nil, errInvalidArgument("invalid bus")
		case errors.Is(err, fru.ErrUnknownAddress):
			return nil, errInvalidArgument("invalid address")
		default:
			return nil, errInvalidArgument(err.Error())
		}
	}
	return raw, nil
}

// WriteFru writes a new FRU image and triggers a rescan on success.
func (m *Manager) WriteFru(bus byte, address byte, data []byte) *dbus.Error {
	err := m.writer.Write(fru.BusId(bus), fru.DeviceAddress(address), data)
	if err == nil {
		return nil
	}

	var validationErr *writeback.ValidationError
	if errors.As(err, &validationErr) {
		return errInvalidArgument(err.Error())
	}

	m.log.WithError(err).Warn("WriteFru failed")
	return errDBusInternalError(err.Error())
}
