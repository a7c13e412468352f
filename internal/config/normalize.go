// internal/config/normalize.go
package config

import "time"

// DefaultBusTimeout, DefaultDebounce, and DefaultLogLevel match
// spec.md's stated defaults: a 5-second bus probe budget and a
// 1-second rescan debounce.
const (
	DefaultBusTimeout = 5 * time.Second
	DefaultDebounce   = 1 * time.Second
	DefaultLogLevel   = "info"

	DefaultBlacklistPath = "/etc/fru/blacklist.json"
	DefaultBaseboardPath = "/etc/fru/baseboard.fru.bin"

	// DefaultPowerPath is the chassis power-control object the original
	// daemon subscribes to for a pgood property change, matching the
	// real BMC's chassis control object path.
	DefaultPowerPath = "/xyz/openbmc_project/Chassis/Control/Power0"
	DefaultDevPath   = "/dev"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Daemon

	if d.BusTimeoutMs == 0 {
		d.BusTimeoutMs = int(DefaultBusTimeout / time.Millisecond)
	}
	if d.DebounceMs == 0 {
		d.DebounceMs = int(DefaultDebounce / time.Millisecond)
	}
	if d.LogLevel == "" {
		d.LogLevel = DefaultLogLevel
	}
	if d.BlacklistPath == "" {
		d.BlacklistPath = DefaultBlacklistPath
	}
	if d.BaseboardPath == "" {
		d.BaseboardPath = DefaultBaseboardPath
	}
	if d.PowerPath == "" {
		d.PowerPath = DefaultPowerPath
	}
	if d.DevPath == "" {
		d.DevPath = DefaultDevPath
	}
}
