// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Link.BaudRate != 115200 {
		t.Errorf("baud = %d, want 115200", cfg.Link.BaudRate)
	}
	if cfg.Timing.Debounce() != 200*time.Millisecond {
		t.Errorf("debounce = %v, want 200ms", cfg.Timing.Debounce())
	}
	if cfg.Timing.Cleanup() != 5*time.Second {
		t.Errorf("cleanup = %v, want 5s", cfg.Timing.Cleanup())
	}
	if cfg.Timing.Tick() != 10*time.Millisecond {
		t.Errorf("tick = %v, want 10ms", cfg.Timing.Tick())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
link:
  port: /dev/ttyACM1
  baud_rate: 57600
modes:
  names: ["Open", "Limited", "Sample", "Closed"]
  initial: 3
timing:
  debounce_ms: 150
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Link.Port != "/dev/ttyACM1" || cfg.Link.BaudRate != 57600 {
		t.Errorf("link = %+v", cfg.Link)
	}
	if cfg.Modes.Initial != 3 || cfg.Modes.Names[2] != "Sample" {
		t.Errorf("modes = %+v", cfg.Modes)
	}
	if cfg.Timing.Debounce() != 150*time.Millisecond {
		t.Errorf("debounce = %v, want 150ms", cfg.Timing.Debounce())
	}
	// Unspecified fields keep defaults
	if cfg.Timing.Cleanup() != 5*time.Second {
		t.Errorf("cleanup = %v, want default 5s", cfg.Timing.Cleanup())
	}
	if cfg.Hub.Listen != ":8475" {
		t.Errorf("hub.listen = %q, want default", cfg.Hub.Listen)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad baud", mutate: func(c *Config) { c.Link.BaudRate = 0 }},
		{name: "too few mode names", mutate: func(c *Config) { c.Modes.Names = []string{"only", "three", "names"} }},
		{name: "initial out of range", mutate: func(c *Config) { c.Modes.Initial = 4 }},
		{name: "negative timing", mutate: func(c *Config) { c.Timing.DebounceMs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
