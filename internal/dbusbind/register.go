package dbusbind

import "fmt"

// RegisterManager exports m at ManagerPath under the manager interface
// spec.md §6 names, making ReScan/GetRawFru/WriteFru callable.
func (s *Server) RegisterManager(m *Manager) error {
	if err := s.conn.Export(m, ManagerPath, ServiceName); err != nil {
		return fmt.Errorf("dbusbind: exporting manager object: %w", err)
	}
	return nil
}
