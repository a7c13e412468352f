// Package muxdedup decides, for each freshly decoded device, whether to
// publish it, suppress it as a mux-visible duplicate of an
// already-published device, or disambiguate it with a numeric suffix.
package muxdedup

import (
	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
)

// ObjectNamespace is the fixed prefix every published object path lives
// under.
const ObjectNamespace = "/xyz/openbmc_project/FruDevice/"

// Candidate is a freshly decoded device awaiting a publish decision.
type Candidate struct {
	Bus     fru.BusId
	Address fru.DeviceAddress
	Raw     frucodec.RawFru
	Fields  frucodec.FruFieldMap
}

// PublishedEntry is one device already decided (and, unless suppressed,
// published) earlier in the same scan cycle.
type PublishedEntry struct {
	Bus        fru.BusId
	Address    fru.DeviceAddress
	Raw        frucodec.RawFru
	BaseName   string
	ObjectPath string
}

// Action is the outcome of resolving a candidate.
type Action int

const (
	// ActionPublish means the candidate should be published at
	// Decision.ObjectPath.
	ActionPublish Action = iota
	// ActionSuppress means the candidate is a mux-visible duplicate of
	// an already-published device and must not be published at all.
	ActionSuppress
)

// Decision is the result of Resolve.
type Decision struct {
	Action     Action
	BaseName   string
	ObjectPath string
}

// SysfsMuxChecker reports whether a bus is a mux child, i.e. whether
// /sys/bus/i2c/devices/i2c-<bus>/mux_device exists as a symlink. Kept
// behind an interface so tests never touch /sys.
type SysfsMuxChecker interface {
	IsMuxChild(bus fru.BusId) bool
}
