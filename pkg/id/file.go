package id

import (
	"fmt"
	"os"
)

// ownerReadWrite is the on-disk permission mode for locked identity files:
// owner read/write only. Whether this is enforced is up to the host OS.
const ownerReadWrite = 0o600

// SaveLockedId writes a LockedId to path, restricted to owner read/write.
func SaveLockedId(path string, l *LockedId) error {
	data, err := MarshalYAMLFile(l)
	if err != nil {
		return fmt.Errorf("id: marshaling locked identity: %w", err)
	}
	if err := os.WriteFile(path, data, ownerReadWrite); err != nil {
		return fmt.Errorf("id: writing locked identity to %s: %w", path, err)
	}
	return nil
}

// LoadLockedId reads and parses a LockedId from path.
func LoadLockedId(path string) (*LockedId, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("id: reading locked identity from %s: %w", path, err)
	}
	l, err := UnmarshalYAMLFile(data)
	if err != nil {
		return nil, fmt.Errorf("id: parsing locked identity from %s: %w", path, err)
	}
	return l, nil
}
