package dbusbind

import (
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const propertiesChangedInterface = "org.freedesktop.DBus.Properties"
const propertiesChangedMember = "PropertiesChanged"

// WatchPower subscribes to property-change signals on the platform's
// chassis power path and triggers a rescan whenever the changed
// properties carry a "pgood" key, per spec.md §4.5/§6.
func (s *Server) WatchPower(chassisPath string, rescan Rescanner, log *logrus.Entry) error {
	path := dbus.ObjectPath(chassisPath)

	obj := s.conn.Object("", path)
	if call := obj.AddMatchSignal(
		propertiesChangedInterface, propertiesChangedMember,
		dbus.WithMatchObjectPath(path),
	); call.Err != nil {
		return call.Err
	}

	ch := make(chan *dbus.Signal, 16)
	s.conn.Signal(ch)

	go func() {
		for sig := range ch {
			if sig.Name != propertiesChangedInterface+"."+propertiesChangedMember {
				continue
			}
			if sig.Path != path {
				continue
			}
			if !signalCarriesPgood(sig.Body) {
				continue
			}
			log.Debug("chassis power-good property change observed, scheduling rescan")
			rescan.Trigger("power-signal")
		}
	}()

	return nil
}

// signalCarriesPgood reports whether a PropertiesChanged signal body
// (interface name, changed-properties map, invalidated-properties
// list) contains a "pgood" key in the changed-properties map.
func signalCarriesPgood(body []interface{}) bool {
	if len(body) < 2 {
		return false
	}
	changed, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return false
	}
	_, has := changed["pgood"]
	return has
}
