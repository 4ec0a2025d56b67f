// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

// Package transport provides byte-oriented duplex channels for the Tether
// link: a serial port, a WebSocket bridge, and an in-process pipe for tests.
// Framing-level correctness is entirely the protocol codec's responsibility;
// a Transport only moves bytes.
package transport

import (
	"fmt"
	"io"
)

// Transport is a duplex byte channel. Read returns (0, nil) on a read
// timeout where the underlying channel supports one; it never blocks past
// that timeout. Write succeeds only if every byte was accepted.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// Options selects and configures a transport.
type Options struct {
	// Serial
	Port        string
	BaudRate    int
	ReadTimeout int // milliseconds; 0 uses the default

	// WebSocket
	URL           string
	Username      string
	SkipSSLVerify bool
}

// Open opens either a serial or WebSocket transport based on the options.
// Returns the transport and a human-readable description of the connection.
func Open(opts Options) (Transport, string, error) {
	if opts.URL != "" {
		password := ""
		if opts.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		tr, err := OpenWebSocket(opts.URL, opts.Username, password, opts.SkipSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return tr, fmt.Sprintf("WebSocket: %s", opts.URL), nil
	}

	if opts.Port != "" {
		tr, err := OpenSerial(opts.Port, opts.BaudRate, opts.ReadTimeout)
		if err != nil {
			return nil, "", err
		}
		return tr, fmt.Sprintf("Serial: %s @ %d baud", opts.Port, opts.BaudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}
