// Package fru holds the data types shared by every stage of the
// discovery pipeline: bus/address identifiers and the inventory and
// published-object tables keyed by them.
package fru

import (
	"errors"

	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
)

// ErrUnknownBus and ErrUnknownAddress are a raw-FRU lookup's two
// distinct failures, mirroring the original daemon's separate
// "Invalid Bus." and "Invalid Address." throws in getFruInfo.
var (
	ErrUnknownBus     = errors.New("fru: unknown bus")
	ErrUnknownAddress = errors.New("fru: unknown address on this bus")
)

// BusId is the kernel-assigned I2C adapter number. Bus 0 is reserved for
// the synthetic baseboard entry, sourced from a file rather than a live
// adapter.
type BusId int

// BaseboardBus is the reserved bus id for the baseboard FRU.
const BaseboardBus BusId = 0

// DeviceAddress is a 7-bit I2C address. Only 0x03..0x77 inclusive are
// ever probed or accepted from a write-back request.
type DeviceAddress uint8

// BaseboardAddress is the reserved address for the baseboard FRU.
const BaseboardAddress DeviceAddress = 0

// MinProbedAddress and MaxProbedAddress bound the address range BusProbe
// scans.
const (
	MinProbedAddress DeviceAddress = 0x03
	MaxProbedAddress DeviceAddress = 0x77
)

// DeviceKey identifies one decoded device uniquely across all buses.
type DeviceKey struct {
	Bus     BusId
	Address DeviceAddress
}

// BusInventory is the raw-bytes table produced by a scan cycle, one map
// per bus.
type BusInventory map[BusId]map[DeviceAddress]frucodec.RawFru

// Set records a raw FRU image for (bus, address), creating the bus's
// inner map if necessary.
func (inv BusInventory) Set(bus BusId, addr DeviceAddress, raw frucodec.RawFru) {
	if inv[bus] == nil {
		inv[bus] = make(map[DeviceAddress]frucodec.RawFru)
	}
	inv[bus][addr] = raw
}

// Get returns the raw image for (bus, address) and whether it exists.
func (inv BusInventory) Get(bus BusId, addr DeviceAddress) (frucodec.RawFru, bool) {
	byAddr, ok := inv[bus]
	if !ok {
		return nil, false
	}
	raw, ok := byAddr[addr]
	return raw, ok
}

// HasBus reports whether bus has any entries at all, distinct from a
// known bus simply lacking addr — mirrors the original daemon's two
// separate "Invalid Bus." / "Invalid Address." lookup failures.
func (inv BusInventory) HasBus(bus BusId) bool {
	_, ok := inv[bus]
	return ok
}

// PublishedObjects maps a device key to an opaque handle on the external
// object server.
type PublishedObjects map[DeviceKey]ObjectHandle

// ObjectHandle is an opaque reference to a published object, returned by
// an ObjectServer and passed back to it on teardown.
type ObjectHandle interface{}
