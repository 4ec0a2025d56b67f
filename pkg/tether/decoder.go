// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import (
	"fmt"
	"time"
)

// Decoder implements the Tether frame decoder state machine. It consumes one
// byte at a time with no look-ahead, so the input stream may be fragmented
// arbitrarily. Corrupt or truncated input never wedges the decoder: it
// resynchronizes on the next start byte.
type Decoder struct {
	state       int
	buffer      []byte // accumulated LEN+CMD+PAYLOAD bytes, what the CRC covers
	bufferIndex int
	bodyLength  int
	frame       *Frame
}

// NewDecoder creates a new protocol decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:  stateWaitStart,
		buffer: make([]byte, MaxFrameSize),
	}
}

// Reset resets the decoder to the wait-for-start state
func (d *Decoder) Reset() {
	d.state = stateWaitStart
	d.bufferIndex = 0
	d.bodyLength = 0
	d.frame = nil
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed, CRC-validated frame, or nil while a frame is
// incomplete. Returns an error when a frame is discarded (invalid length or
// CRC mismatch); the decoder has already resynchronized and the caller
// should only log it. The decoder itself never emits a protocol response.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	switch d.state {
	case stateWaitStart:
		if b == StartByte {
			d.state = stateLength
		}
		return nil, nil

	case stateLength:
		// Single point of length validation: everything after this can
		// index the fixed buffer safely.
		if b == 0 || b > MaxBodyLength {
			d.Reset()
			return nil, fmt.Errorf("invalid frame length: %d", b)
		}
		d.bodyLength = int(b)
		d.frame = &Frame{length: b, payload: make([]byte, 0, b-1)}
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		d.state = stateBody
		return nil, nil

	case stateBody:
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		if d.bufferIndex == 2 {
			d.frame.command = b
		} else {
			d.frame.payload = append(d.frame.payload, b)
		}
		if d.bufferIndex == d.bodyLength+1 { // length byte + body
			d.state = stateCRC
		}
		return nil, nil

	case stateCRC:
		frame := d.frame
		frame.crc = b
		calculated := Checksum(d.buffer[:d.bufferIndex])
		d.Reset()

		if calculated != frame.crc {
			return nil, fmt.Errorf("CRC mismatch: expected 0x%02X, got 0x%02X", calculated, frame.crc)
		}

		frame.timestamp = time.Now()
		return frame, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}
}
