// Package inventory owns the decoded-device table and drives its
// publication to and removal from an external object server, fully
// rebuilding on every scan cycle per spec.md §4.4/§4.5.
package inventory

import (
	"github.com/sirupsen/logrus"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
	"github.com/openbmc-project/fru-device-discovery/internal/muxdedup"
)

// ObjectServer is the message-bus capability Inventory needs: create a
// device object, set its properties, remove it. Kept narrow so
// inventory_test.go never touches a real D-Bus connection, the same way
// the teacher keeps writer.Writer behind EndpointClient.
type ObjectServer interface {
	CreateObject(path string) (fru.ObjectHandle, error)
	SetProperty(handle fru.ObjectHandle, key, value string) error
	SetNumericProperty(handle fru.ObjectHandle, key string, value int64) error
	RemoveObject(handle fru.ObjectHandle) error
}

// Inventory owns BusInventory and PublishedObjects for the process
// lifetime; both are rebuilt wholesale on every scan cycle.
type Inventory struct {
	Bus       fru.BusInventory
	Published fru.PublishedObjects
	log       *logrus.Entry
}

// New returns an empty Inventory.
func New(log *logrus.Entry) *Inventory {
	return &Inventory{
		Bus:       make(fru.BusInventory),
		Published: make(fru.PublishedObjects),
		log:       log,
	}
}

// Publish registers one surviving device against decision. A Suppress
// decision is a no-op. Publish failures (CreateObject) are logged and
// swallowed: one bad device must not abort the rest of the scan cycle.
func (inv *Inventory) Publish(key fru.DeviceKey, decision muxdedup.Decision, fields frucodec.FruFieldMap, server ObjectServer) {
	if decision.Action == muxdedup.ActionSuppress {
		return
	}

	handle, err := server.CreateObject(decision.ObjectPath)
	if err != nil {
		inv.log.WithError(err).WithField("path", decision.ObjectPath).Warn("failed to create device object")
		return
	}

	for fieldKey, value := range fields {
		sk := sanitizeByteString(fieldKey)
		sv := sanitizeByteString(value)
		if sv == "" {
			continue
		}
		if err := server.SetProperty(handle, sk, sv); err != nil {
			inv.log.WithError(err).WithField("key", sk).Warn("illegal key")
		}
	}

	if err := server.SetNumericProperty(handle, "BUS", int64(key.Bus)); err != nil {
		inv.log.WithError(err).Warn("illegal key")
	}
	if err := server.SetNumericProperty(handle, "ADDRESS", int64(key.Address)); err != nil {
		inv.log.WithError(err).Warn("illegal key")
	}

	inv.Published[key] = handle
}

// LookupRawFru returns the raw bytes currently on file for (bus,
// address), for the manager object's GetRawFru method. It distinguishes
// a bus with no entries at all (fru.ErrUnknownBus) from a known bus
// simply lacking addr (fru.ErrUnknownAddress).
func (inv *Inventory) LookupRawFru(bus fru.BusId, addr fru.DeviceAddress) ([]byte, error) {
	if !inv.Bus.HasBus(bus) {
		return nil, fru.ErrUnknownBus
	}
	raw, ok := inv.Bus.Get(bus, addr)
	if !ok {
		return nil, fru.ErrUnknownAddress
	}
	return []byte(raw), nil
}

// TeardownAll removes every currently published object and clears the
// table, ahead of rebuilding it in the next scan cycle.
func (inv *Inventory) TeardownAll(server ObjectServer) {
	for key, handle := range inv.Published {
		if err := server.RemoveObject(handle); err != nil {
			inv.log.WithError(err).WithField("key", key).Warn("failed to remove device object")
		}
	}
	inv.Published = make(fru.PublishedObjects)
}

// sanitizeByteString replaces every byte outside 0x01..0x7F with '_',
// as spec.md §4.4 requires for both property keys and string values.
func sanitizeByteString(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x01 && c <= 0x7F {
			out[i] = c
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}
