// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import "time"

// Frame represents a decoded Tether protocol frame
type Frame struct {
	length    uint8
	command   uint8
	payload   []byte
	crc       uint8
	timestamp time.Time
}

// NewFrame creates a new frame with the given command and payload.
// The length and CRC are filled in by the encoder.
func NewFrame(command uint8, payload []byte) *Frame {
	return &Frame{
		length:    uint8(1 + len(payload)),
		command:   command,
		payload:   payload,
		timestamp: time.Now(),
	}
}

// Length returns the frame's body length (command byte + payload)
func (f *Frame) Length() uint8 {
	return f.length
}

// Command returns the frame's command or response code
func (f *Frame) Command() uint8 {
	return f.command
}

// Payload returns the frame's payload bytes
func (f *Frame) Payload() []byte {
	return f.payload
}

// CRC returns the frame's CRC value
func (f *Frame) CRC() uint8 {
	return f.crc
}

// Timestamp returns the frame's decode timestamp
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// IsResponse returns true if the frame carries a response code (>= 0x80).
// Responses are observed and logged, never dispatched as commands.
func (f *Frame) IsResponse() bool {
	return f.command&ResponseFlag != 0
}
