// Package config loads the daemon's two on-disk inputs: the optional
// bus blacklist and the optional ambient tuning file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
)

type blacklistDoc struct {
	Buses []int `json:"buses"`
}

// LoadBlacklist reads the optional blacklist JSON file into a bus-id
// set. A missing file is tolerated and yields an empty set; malformed
// JSON, a non-object root, or a non-integer bus entry is a fatal
// configuration error per spec.md §6/§7 — the caller is expected to
// exit the process nonzero on a non-nil error.
func LoadBlacklist(path string) (map[fru.BusId]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[fru.BusId]bool{}, nil
		}
		return nil, fmt.Errorf("config: reading blacklist file: %w", err)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' {
		return nil, fmt.Errorf("config: malformed blacklist file %s: root is not a JSON object", path)
	}

	var doc blacklistDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: malformed blacklist file %s: %w", path, err)
	}

	out := make(map[fru.BusId]bool, len(doc.Buses))
	for _, b := range doc.Buses {
		out[fru.BusId(b)] = true
	}
	return out, nil
}
