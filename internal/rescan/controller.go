// Package rescan drives the debounced scan cycle that ties together bus
// enumeration, probing, decoding, deduplication, and publication. It is
// the single-threaded event loop spec.md §5 describes: one goroutine,
// one scan cycle at a time, the teacher's orchestrator-goroutine shape
// from cmd/replicator/main.go adapted from a 1 Hz status ticker to a
// debounce timer over several trigger sources.
package rescan

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/openbmc-project/fru-device-discovery/internal/busenum"
	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
	"github.com/openbmc-project/fru-device-discovery/internal/i2cbus"
	"github.com/openbmc-project/fru-device-discovery/internal/inventory"
	"github.com/openbmc-project/fru-device-discovery/internal/muxdedup"
)

// DefaultDebounceInterval is the standard quiet period a trigger must go
// unanswered by another trigger before a scan cycle begins. Controller
// takes its interval from New; config.DefaultDebounce carries the same
// value for the daemon.
const DefaultDebounceInterval = 1 * time.Second

// requiredFuncs are the I2C_FUNCS capability bits a bus must advertise
// before it is probed. The original daemon checked only the byte-read
// bit; this rewrite requires both operations BusProbe actually issues
// (spec.md §9 Open Question).
const requiredFuncs = i2cbus.FuncSMBusReadByte | i2cbus.FuncSMBusReadI2CBlock

// BusOpener opens one I2C adapter for read/write, close-on-exec, and
// returns its file descriptor. Kept behind an interface so scan-cycle
// orchestration can be tested without a real /dev/i2c-<N> node.
type BusOpener interface {
	OpenBus(bus fru.BusId) (fd int, err error)
}

// triggerBacklog is sized generously: a flood of inotify/dbus triggers
// during a single scan cycle must never block the sender.
const triggerBacklog = 64

// Controller serializes rescan triggers into scan cycles.
type Controller struct {
	enumerator busenum.BusEnumerator
	opener     BusOpener
	blacklist  map[fru.BusId]bool
	inv        *inventory.Inventory
	server     inventory.ObjectServer
	baseboard  inventory.BaseboardStore
	checker    muxdedup.SysfsMuxChecker
	log        *logrus.Entry

	debounce   time.Duration
	busTimeout time.Duration

	triggers chan string
}

// New builds a Controller. blacklist is shared by reference with the
// caller; the Controller inserts a bus into it when i2cbus.Probe
// returns ErrBusTimeout.
// debounce and busTimeout come from DaemonConfig's debounce_ms and
// bus_timeout_ms (already defaulted by config.Normalize).
func New(
	enumerator busenum.BusEnumerator,
	opener BusOpener,
	blacklist map[fru.BusId]bool,
	inv *inventory.Inventory,
	server inventory.ObjectServer,
	baseboard inventory.BaseboardStore,
	checker muxdedup.SysfsMuxChecker,
	debounce time.Duration,
	busTimeout time.Duration,
	log *logrus.Entry,
) *Controller {
	return &Controller{
		enumerator: enumerator,
		opener:     opener,
		blacklist:  blacklist,
		inv:        inv,
		server:     server,
		baseboard:  baseboard,
		checker:    checker,
		debounce:   debounce,
		busTimeout: busTimeout,
		log:        log,
		triggers:   make(chan string, triggerBacklog),
	}
}

// Trigger arms or resets the debounce timer. It never blocks: a full
// backlog means a scan cycle is already coming, so the trigger is
// logged and dropped rather than stalling the caller (an inotify
// watcher or a D-Bus method handler).
func (c *Controller) Trigger(reason string) {
	select {
	case c.triggers <- reason:
	default:
		c.log.WithField("reason", reason).Warn("trigger backlog full, dropping")
	}
}

// Run blocks until ctx-equivalent shutdown; callers typically run it in
// its own goroutine. It performs the unconditional startup scan before
// entering the debounce loop.
func (c *Controller) Run(stop <-chan struct{}) {
	c.log.Info("startup scan")
	c.runScanCycle()

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-stop:
			timer.Stop()
			return

		case reason := <-c.triggers:
			c.log.WithField("reason", reason).Debug("rescan triggered")
			timer.Reset(c.debounce)

		case <-timer.C:
			c.runScanCycle()
			for c.drainPending() {
				c.log.Debug("running follow-up scan cycle")
				c.runScanCycle()
			}
		}
	}
}

// drainPending reports whether at least one trigger arrived during the
// scan cycle that just finished, consuming all of them. Per spec.md
// §4.5, any number of triggers mid-cycle collapses into exactly one
// follow-up cycle.
func (c *Controller) drainPending() bool {
	drained := false
	for {
		select {
		case <-c.triggers:
			drained = true
		default:
			return drained
		}
	}
}

// runScanCycle performs one full enumerate/probe/decode/publish pass,
// exactly spec.md §4.5's six steps.
func (c *Controller) runScanCycle() {
	buses, err := c.enumerator.EnumerateBuses()
	if err != nil {
		c.log.WithError(err).Error("bus enumeration failed, skipping scan cycle")
		return
	}

	c.inv.Bus = make(fru.BusInventory)

	for _, bus := range buses {
		if c.blacklist[bus] {
			continue
		}
		c.probeBus(bus)
	}

	c.inv.TeardownAll(c.server)
	c.inv.LoadBaseboard(c.baseboard)
	c.publishInventory()
}

func (c *Controller) probeBus(bus fru.BusId) {
	log := c.log.WithField("bus", bus)

	fd, err := c.opener.OpenBus(bus)
	if err != nil {
		log.WithError(err).Debug("open bus failed, skipping")
		return
	}

	mask, err := i2cbus.Funcs(fd)
	if err != nil {
		log.WithError(err).Warn("I2C_FUNCS failed, skipping bus")
		unix.Close(fd)
		return
	}
	if mask&requiredFuncs != requiredFuncs {
		log.Warn("adapter missing required SMBus capability, skipping bus")
		unix.Close(fd)
		return
	}

	// Probe closes fd itself on ErrBusTimeout; any other path leaves fd
	// open for us to close here.
	result, err := i2cbus.Probe(fd, bus, c.busTimeout, log)
	if err != nil {
		if err == i2cbus.ErrBusTimeout {
			c.blacklist[bus] = true
		}
		return
	}
	unix.Close(fd)

	for addr, raw := range result {
		c.inv.Bus.Set(bus, addr, raw)
	}
}

// publishInventory iterates BusInventory in (bus, address) order,
// decoding, deduplicating, and publishing each surviving device.
func (c *Controller) publishInventory() {
	var unknown muxdedup.UnknownCounter
	var published []muxdedup.PublishedEntry

	for _, bus := range sortedBuses(c.inv.Bus) {
		for _, addr := range sortedAddresses(c.inv.Bus[bus]) {
			raw := c.inv.Bus[bus][addr]

			fields, err := frucodec.Decode(raw)
			if err != nil {
				c.log.WithError(err).WithFields(logrus.Fields{
					"bus": bus, "address": addr,
				}).Debug("decode failed, skipping device")
				continue
			}

			candidate := muxdedup.Candidate{Bus: bus, Address: addr, Raw: raw, Fields: fields}
			decision := muxdedup.Resolve(candidate, published, c.checker, &unknown)

			key := fru.DeviceKey{Bus: bus, Address: addr}
			c.inv.Publish(key, decision, fields, c.server)

			if decision.Action == muxdedup.ActionPublish {
				published = append(published, muxdedup.PublishedEntry{
					Bus:        bus,
					Address:    addr,
					Raw:        raw,
					BaseName:   decision.BaseName,
					ObjectPath: decision.ObjectPath,
				})
			}
		}
	}
}

func sortedBuses(inv fru.BusInventory) []fru.BusId {
	buses := make([]fru.BusId, 0, len(inv))
	for bus := range inv {
		buses = append(buses, bus)
	}
	sort.Slice(buses, func(i, j int) bool { return buses[i] < buses[j] })
	return buses
}

func sortedAddresses(byAddr map[fru.DeviceAddress]frucodec.RawFru) []fru.DeviceAddress {
	addrs := make([]fru.DeviceAddress, 0, len(byAddr))
	for addr := range byAddr {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
