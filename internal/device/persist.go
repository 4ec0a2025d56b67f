// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is the durable device state: the last executed mode and whether
// the device is paired with an observer. Integer keys keep the encoding
// stable across field renames.
type Snapshot struct {
	Mode   uint8 `cbor:"1,keyasint"`
	Paired bool  `cbor:"2,keyasint"`
}

// Store persists snapshots as a single CBOR file.
type Store struct {
	path string
}

// NewStore creates a store at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the snapshot. found is false when no snapshot exists yet.
func (s *Store) Load() (snap Snapshot, found bool, err error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read state %s: %w", s.path, err)
	}
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	return snap, true, nil
}

// Save writes the snapshot, replacing any previous one.
func (s *Store) Save(snap Snapshot) error {
	data, err := cbor.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	return nil
}

// Remove deletes the persisted snapshot, used by factory reset.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state %s: %w", s.path, err)
	}
	return nil
}
