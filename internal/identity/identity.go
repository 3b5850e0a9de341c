// Package identity persists the backing table's identifier between runs.
// Its absence at startup is what triggers first-run provisioning.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type Store struct {
	path string
}

// Identity is the persisted record of the provisioned backing table.
type Identity struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	URL           string `json:"url,omitempty"`
}

// IsZero reports whether no identity has been saved yet.
func (id Identity) IsZero() bool {
	return id.SpreadsheetID == ""
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted identity, or a zero Identity when none has been
// saved yet.
func (s *Store) Load() (Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Identity{}, nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("read identity file: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parse identity file %s: %w", s.path, err)
	}
	return id, nil
}

// Save writes the identity atomically (temp file plus rename).
func (s *Store) Save(id Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create identity directory: %w", err)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write identity file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace identity file: %w", err)
	}
	return nil
}
