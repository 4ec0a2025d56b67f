// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import "fmt"

// Frame builder functions create Frame structs ready for encoding. These are
// convenience wrappers around NewFrame that ensure correct payload shapes.

// NewHelloFrame creates a HELLO frame (0x01). The local board responds with
// ACK and performs a visual diagnostic.
func NewHelloFrame() *Frame {
	return NewFrame(CmdHello, nil)
}

// NewPingFrame creates a PING frame (0x04). The local board responds with ACK.
func NewPingFrame() *Frame {
	return NewFrame(CmdPing, nil)
}

// NewTriggerFrame creates a TRIGGER frame (0x03). The local board responds
// with ACK and starts the timed trigger action, or BUSY if one is already
// running.
func NewTriggerFrame() *Frame {
	return NewFrame(CmdTrigger, nil)
}

// NewSetModeFrame creates a SET_MODE frame (0x02) with a single-byte payload
// carrying the mode value (0-3).
func NewSetModeFrame(mode Mode) *Frame {
	return NewFrame(CmdSetMode, []byte{byte(mode)})
}

// NewResponseFrame creates a bare response frame (ACK, ERR, BUSY, DONE).
func NewResponseFrame(code uint8) *Frame {
	return NewFrame(code, nil)
}

// ParseSetMode validates a SET_MODE payload: exactly one byte, value 0-3.
func ParseSetMode(payload []byte) (Mode, error) {
	if len(payload) != 1 {
		return 0, fmt.Errorf("SET_MODE payload must be exactly 1 byte, got %d", len(payload))
	}
	mode := Mode(payload[0])
	if !mode.Valid() {
		return 0, fmt.Errorf("invalid mode %d (valid 0-%d)", payload[0], ModeCount-1)
	}
	return mode, nil
}
