// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

// Package config holds the node configuration: the peer-board link, the hub
// bridge, mode naming, and the arbiter timing knobs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hallewell/modelink/pkg/tether"
)

// Config holds all node configuration.
type Config struct {
	Link   LinkConfig   `yaml:"link"`
	Hub    HubConfig    `yaml:"hub"`
	Modes  ModesConfig  `yaml:"modes"`
	Timing TimingConfig `yaml:"timing"`

	// StateFile persists the current mode and pairing state across restarts.
	StateFile string `yaml:"state_file"`
}

// LinkConfig configures the peer-board byte channel.
type LinkConfig struct {
	Port          string `yaml:"port"`      // serial device, e.g. /dev/ttyUSB0
	BaudRate      int    `yaml:"baud_rate"` //
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
	URL           string `yaml:"url"` // ws:// or wss://, overrides Port
}

// HubConfig configures the state-reporting bridge.
type HubConfig struct {
	Listen string `yaml:"listen"` // HTTP listen address, empty disables
}

// ModesConfig names the four mutually exclusive modes.
type ModesConfig struct {
	Names   []string `yaml:"names"`
	Initial uint8    `yaml:"initial"`
}

// TimingConfig holds the arbiter and trigger timing in milliseconds.
// Zero values fall back to the defaults; tests override them directly.
type TimingConfig struct {
	TickMs     int `yaml:"tick_ms"`
	DebounceMs int `yaml:"debounce_ms"`
	CleanupMs  int `yaml:"cleanup_ms"`
	StaggerMs  int `yaml:"stagger_ms"`
	SettleMs   int `yaml:"settle_ms"`
	PulseMs    int `yaml:"pulse_ms"`
}

// Tick returns the arbiter tick period.
func (t TimingConfig) Tick() time.Duration { return msOrDefault(t.TickMs, 10*time.Millisecond) }

// Debounce returns the quiet window required after the last tap.
func (t TimingConfig) Debounce() time.Duration {
	return msOrDefault(t.DebounceMs, 200*time.Millisecond)
}

// Cleanup returns the delay before the one-shot re-assertion.
func (t TimingConfig) Cleanup() time.Duration { return msOrDefault(t.CleanupMs, 5*time.Second) }

// Stagger returns the delay between consecutive endpoint reports.
func (t TimingConfig) Stagger() time.Duration { return msOrDefault(t.StaggerMs, 10*time.Millisecond) }

// Settle returns the delay between the off reports and the on report.
func (t TimingConfig) Settle() time.Duration { return msOrDefault(t.SettleMs, 50*time.Millisecond) }

// Pulse returns the trigger action duration.
func (t TimingConfig) Pulse() time.Duration { return msOrDefault(t.PulseMs, 500*time.Millisecond) }

func msOrDefault(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Link: LinkConfig{
			BaudRate:      115200,
			ReadTimeoutMs: 100,
		},
		Hub: HubConfig{
			Listen: ":8475",
		},
		Modes: ModesConfig{
			Names:   []string{"Mode A", "Mode B", "Mode C", "Mode D"},
			Initial: 0,
		},
		StateFile: "modelink-state.cbor",
	}
}

// Load reads a YAML config file, applying defaults for missing fields.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Link.BaudRate <= 0 {
		return fmt.Errorf("link.baud_rate must be positive, got %d", c.Link.BaudRate)
	}
	if len(c.Modes.Names) != tether.ModeCount {
		return fmt.Errorf("modes.names must list exactly %d names, got %d", tether.ModeCount, len(c.Modes.Names))
	}
	if !tether.Mode(c.Modes.Initial).Valid() {
		return fmt.Errorf("modes.initial must be 0-%d, got %d", tether.ModeCount-1, c.Modes.Initial)
	}
	for _, ms := range []int{c.Timing.TickMs, c.Timing.DebounceMs, c.Timing.CleanupMs,
		c.Timing.StaggerMs, c.Timing.SettleMs, c.Timing.PulseMs} {
		if ms < 0 {
			return fmt.Errorf("timing values must not be negative")
		}
	}
	return nil
}

// ModeNames returns the configured names as a fixed-size array.
func (c *Config) ModeNames() [tether.ModeCount]string {
	var names [tether.ModeCount]string
	copy(names[:], c.Modes.Names)
	return names
}
