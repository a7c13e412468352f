// Package baseboard stores the synthetic (0, 0) FRU image: a raw binary
// file rather than a live I2C device, per spec.md §4.4/§4.6.
package baseboard

import (
	"fmt"
	"os"

	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
)

// FileStore reads and replaces the baseboard image at a fixed path.
type FileStore struct {
	Path string
}

// New returns a FileStore rooted at path.
func New(path string) *FileStore {
	return &FileStore{Path: path}
}

// ReadBaseboard returns the file's entire contents as a RawFru. A
// missing or unreadable file is not an error: it simply means there is
// no baseboard object this cycle.
func (s *FileStore) ReadBaseboard() (frucodec.RawFru, bool) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, false
	}
	return frucodec.RawFru(data), true
}

// WriteBaseboard atomically replaces the baseboard file: written to a
// temp file in the same directory, then renamed into place, so a
// concurrent reader never observes a partial write.
func (s *FileStore) WriteBaseboard(data []byte) error {
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("baseboard: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("baseboard: renaming %s to %s: %w", tmp, s.Path, err)
	}
	return nil
}
