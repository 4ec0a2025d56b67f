// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

// Package tether provides a reference Go implementation of the Tether link
// protocol.
//
// Tether is a minimal binary protocol spoken between a peer controller board
// and a local bridge board over a raw byte channel (typically UART). Each
// message is a single length-prefixed, CRC-protected frame. This package
// provides frame encoding/decoding, CRC validation, typed frame builders,
// and payload formatting.
package tether

// Protocol framing
const (
	StartByte = 0xA5
)

// Frame size limits. The length byte covers command + payload. The decoder
// tolerates body lengths up to 60 to leave headroom under the frame buffer;
// the encoder stays a byte stricter and never emits more than 58 payload
// bytes.
const (
	MaxFrameSize   = 64
	MaxBodyLength  = 60 // decoder limit: command byte + payload
	MaxPayloadSize = 58 // encoder limit
)

// CRC-8 configuration
const (
	crcPolynomial = 0x31
	crcInitial    = 0x00
)

// Commands (peer -> local)
const (
	CmdHello   = 0x01
	CmdSetMode = 0x02
	CmdTrigger = 0x03
	CmdPing    = 0x04
)

// Status notifications (local -> peer)
const (
	StatusPaired   = 0x10
	StatusUnpaired = 0x11
)

// Responses. Any code with the high bit set is a response and is never
// dispatched as a command.
const (
	RspAck  = 0x80
	RspErr  = 0x81
	RspBusy = 0x82
	RspDone = 0x83
)

// ResponseFlag marks response codes.
const ResponseFlag = 0x80

// Decoder states (internal)
const (
	stateWaitStart = iota
	stateLength
	stateBody
	stateCRC
)

// Mode represents one of the four mutually exclusive device modes carried in
// a SET_MODE payload.
type Mode uint8

// Mode values
const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

// ModeCount is the number of selectable modes.
const ModeCount = 4

// Valid reports whether m is a defined mode value.
func (m Mode) Valid() bool {
	return m < ModeCount
}
