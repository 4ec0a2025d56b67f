// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds a serial Read so the receive loop can observe
// shutdown even when the line is silent.
const DefaultReadTimeout = 100 * time.Millisecond

// Serial wraps a serial port as a Transport.
type Serial struct {
	port serial.Port
}

// OpenSerial opens a serial port at 8N1 with a bounded read timeout.
// readTimeoutMs <= 0 selects the default.
func OpenSerial(portName string, baudRate, readTimeoutMs int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	timeout := DefaultReadTimeout
	if readTimeoutMs > 0 {
		timeout = time.Duration(readTimeoutMs) * time.Millisecond
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %v", err)
	}

	return &Serial{port: port}, nil
}

func (s *Serial) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *Serial) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *Serial) Close() error {
	return s.port.Close()
}
