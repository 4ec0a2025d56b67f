// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package cmd

import (
	"github.com/hallewell/modelink/internal/config"
	"github.com/hallewell/modelink/internal/transport"
)

// loadConfig reads the config file named by --config, or the defaults.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// openTransport opens the peer-board link. Flags override the config file.
func openTransport(cfg *config.Config) (transport.Transport, string, error) {
	opts := transport.Options{
		Port:        cfg.Link.Port,
		BaudRate:    cfg.Link.BaudRate,
		ReadTimeout: cfg.Link.ReadTimeoutMs,
		URL:         cfg.Link.URL,
	}
	if portName != "" {
		opts.Port = portName
		opts.URL = ""
	}
	if rootCmd.PersistentFlags().Changed("baud") {
		opts.BaudRate = baudRate
	}
	if wsURL != "" {
		opts.URL = wsURL
		opts.Port = ""
	}
	opts.Username = wsUsername
	opts.SkipSSLVerify = wsNoSSLVerify

	return transport.Open(opts)
}
