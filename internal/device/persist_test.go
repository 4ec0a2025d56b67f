// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.cbor"))

	if _, found, err := store.Load(); err != nil || found {
		t.Fatalf("fresh store: found=%v err=%v, want absent", found, err)
	}

	want := Snapshot{Mode: 2, Paired: true}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := store.Load()
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if got != want {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
}

func TestStore_Remove(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.cbor"))

	if err := store.Remove(); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	store.Save(Snapshot{Mode: 1})
	if err := store.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, found, _ := store.Load(); found {
		t.Error("snapshot still present after remove")
	}
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.cbor")
	store := NewStore(path)
	writeFile(t, path, []byte("not cbor at all"))

	if _, _, err := store.Load(); err == nil {
		t.Error("expected decode error for corrupt snapshot")
	}
}
