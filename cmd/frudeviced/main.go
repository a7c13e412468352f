// cmd/frudeviced/main.go
package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openbmc-project/fru-device-discovery/internal/baseboard"
	"github.com/openbmc-project/fru-device-discovery/internal/busenum"
	"github.com/openbmc-project/fru-device-discovery/internal/config"
	"github.com/openbmc-project/fru-device-discovery/internal/dbusbind"
	"github.com/openbmc-project/fru-device-discovery/internal/devwatch"
	"github.com/openbmc-project/fru-device-discovery/internal/inventory"
	"github.com/openbmc-project/fru-device-discovery/internal/muxdedup"
	"github.com/openbmc-project/fru-device-discovery/internal/rescan"
	"github.com/openbmc-project/fru-device-discovery/internal/writeback"
)

func main() {
	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	log := logrus.New()
	entry := logrus.NewEntry(log)

	// --------------------
	// Load + validate + normalize config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		entry.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		entry.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	level, err := logrus.ParseLevel(cfg.Daemon.LogLevel)
	if err != nil {
		entry.Fatalf("unexpected log level after normalize: %v", err)
	}
	log.SetLevel(level)

	blacklist, err := config.LoadBlacklist(cfg.Daemon.BlacklistPath)
	if err != nil {
		entry.Fatalf("blacklist load failed: %v", err)
	}

	// --------------------
	// Build the shared inventory and its D-Bus surface
	// --------------------

	store := baseboard.New(cfg.Daemon.BaseboardPath)
	inv := inventory.New(entry)

	server, err := dbusbind.Connect(entry)
	if err != nil {
		entry.Fatalf("dbus connect failed: %v", err)
	}

	// --------------------
	// Assemble the rescan controller (the event loop) first, since
	// everything else only ever reaches it through Trigger.
	// --------------------

	debounce := time.Duration(cfg.Daemon.DebounceMs) * time.Millisecond
	busTimeout := time.Duration(cfg.Daemon.BusTimeoutMs) * time.Millisecond

	controller := rescan.New(
		busenum.New(),
		rescan.DevOpener{},
		blacklist,
		inv,
		server,
		store,
		muxdedup.SysfsChecker{},
		debounce,
		busTimeout,
		entry,
	)

	writer := writeback.New(rescan.DevOpener{}, store, controller, entry)

	manager := dbusbind.NewManager(inv, writer, controller, entry)
	if err := server.RegisterManager(manager); err != nil {
		entry.Fatalf("dbus manager export failed: %v", err)
	}
	if err := server.WatchPower(cfg.Daemon.PowerPath, controller, entry); err != nil {
		entry.Fatalf("dbus power watch failed: %v", err)
	}

	watcher, err := devwatch.New(cfg.Daemon.DevPath, entry)
	if err != nil {
		entry.Fatalf("devwatch setup failed: %v", err)
	}

	// --------------------
	// Run the watcher and the controller's event loop, then block
	// forever (daemon-safe, no deadlock).
	// --------------------

	stop := make(chan struct{})

	go watcher.Run(stop, func(name string) {
		controller.Trigger("devwatch:" + name)
	})

	go controller.Run(stop)

	for {
		time.Sleep(time.Hour)
	}
}
