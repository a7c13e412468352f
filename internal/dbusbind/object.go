package dbusbind

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// propertyInterface is the interface name every per-device property
// lives under, exposed through the standard
// org.freedesktop.DBus.Properties machinery.
const propertyInterface = "xyz.openbmc_project.FruDevice"

// deviceObject backs one exported device path. It implements the
// org.freedesktop.DBus.Properties methods godbus dispatches to by
// reflection (Get/GetAll/Set), so every property Inventory.Publish sets
// becomes a real, queryable D-Bus property without hand-rolling
// introspection XML per device.
type deviceObject struct {
	mu    sync.Mutex
	props map[string]dbus.Variant
}

func newDeviceObject() *deviceObject {
	return &deviceObject{props: make(map[string]dbus.Variant)}
}

func (o *deviceObject) set(key string, value interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props[key] = dbus.MakeVariant(value)
}

// Get implements org.freedesktop.DBus.Properties.Get.
func (o *deviceObject) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	if iface != propertyInterface {
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", nil)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.props[property]
	if !ok {
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty", nil)
	}
	return v, nil
}

// GetAll implements org.freedesktop.DBus.Properties.GetAll.
func (o *deviceObject) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	if iface != propertyInterface {
		return nil, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", nil)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]dbus.Variant, len(o.props))
	for k, v := range o.props {
		out[k] = v
	}
	return out, nil
}

// Set implements org.freedesktop.DBus.Properties.Set. Every published
// property is daemon-owned and read-only from the bus's perspective.
func (o *deviceObject) Set(iface, property string, value dbus.Variant) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.PropertyReadOnly",
		[]interface{}{fmt.Sprintf("%s.%s is read-only", iface, property)})
}
