package inventory

import (
	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
)

// BaseboardStore loads the synthetic (0, 0) baseboard FRU, sourced from
// a file rather than live hardware.
type BaseboardStore interface {
	ReadBaseboard() (frucodec.RawFru, bool)
}

// LoadBaseboard populates BusInventory[0][0] if the baseboard store has
// a readable image. A missing file is not an error: no baseboard
// object is published, per spec.md §4.4.
func (inv *Inventory) LoadBaseboard(store BaseboardStore) {
	raw, ok := store.ReadBaseboard()
	if !ok {
		return
	}
	inv.Bus.Set(fru.BaseboardBus, fru.BaseboardAddress, raw)
}
