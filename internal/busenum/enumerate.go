// Package busenum enumerates the I2C adapters currently exposed under
// /dev. Spec.md calls this "directory-scan glue... out of scope"; a
// complete repository has no remaining external party to supply it, so
// it is implemented here behind a small interface.
package busenum

import (
	"os"
	"regexp"
	"strconv"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
)

// BusEnumerator lists the I2C bus ids currently present on the host.
type BusEnumerator interface {
	EnumerateBuses() ([]fru.BusId, error)
}

var busNamePattern = regexp.MustCompile(`^i2c-([0-9]+)$`)

// DevEnumerator enumerates /dev/i2c-<N> entries.
type DevEnumerator struct {
	DevPath string
}

// New returns a DevEnumerator scanning the real /dev directory.
func New() *DevEnumerator {
	return &DevEnumerator{DevPath: "/dev"}
}

// EnumerateBuses returns every BusId with a corresponding /dev/i2c-<N>
// entry, in ascending order.
func (e *DevEnumerator) EnumerateBuses() ([]fru.BusId, error) {
	entries, err := os.ReadDir(e.DevPath)
	if err != nil {
		return nil, err
	}

	var buses []fru.BusId
	for _, entry := range entries {
		m := busNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		buses = append(buses, fru.BusId(n))
	}

	sortBuses(buses)
	return buses, nil
}

func sortBuses(buses []fru.BusId) {
	for i := 1; i < len(buses); i++ {
		for j := i; j > 0 && buses[j-1] > buses[j]; j-- {
			buses[j-1], buses[j] = buses[j], buses[j-1]
		}
	}
}
