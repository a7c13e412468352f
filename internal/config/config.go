// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional ambient tuning file: bus probe timeout, rescan
// debounce interval, log level, and the paths to the two other on-disk
// inputs. None of it is required for correct operation — Normalize
// fills in spec.md's defaults for anything left zero.
type Config struct {
	Daemon DaemonConfig `yaml:"daemon"`
}

// ---- DAEMON ----

type DaemonConfig struct {
	BusTimeoutMs  int    `yaml:"bus_timeout_ms"`
	DebounceMs    int    `yaml:"debounce_ms"`
	LogLevel      string `yaml:"log_level"`
	BlacklistPath string `yaml:"blacklist_path"`
	BaseboardPath string `yaml:"baseboard_path"`
	PowerPath     string `yaml:"power_path"`
	DevPath       string `yaml:"dev_path"`
}

// Load reads and unmarshals path into a Config. A missing file is not
// an error: Load returns a zero-valued Config for the caller to
// Validate and Normalize, which fills in every default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
