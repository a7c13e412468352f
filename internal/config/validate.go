// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	d := cfg.Daemon

	if d.BusTimeoutMs < 0 {
		return fmt.Errorf("daemon: bus_timeout_ms must not be negative, got %d", d.BusTimeoutMs)
	}
	if d.DebounceMs < 0 {
		return fmt.Errorf("daemon: debounce_ms must not be negative, got %d", d.DebounceMs)
	}
	if d.LogLevel != "" {
		if _, err := logrus.ParseLevel(d.LogLevel); err != nil {
			return fmt.Errorf("daemon: log_level %q: %w", d.LogLevel, err)
		}
	}

	return nil
}
