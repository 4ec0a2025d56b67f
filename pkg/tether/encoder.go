// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import "fmt"

// EncodeFrame builds a complete wire-formatted Tether frame:
// [START][LEN][CMD][PAYLOAD...][CRC], where LEN = 1 + len(payload) and the
// CRC covers LEN through the end of the payload.
func EncodeFrame(command uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, StartByte, uint8(1+len(payload)), command)
	buf = append(buf, payload...)
	buf = append(buf, Checksum(buf[1:]))

	return buf, nil
}

// Encode encodes an existing Frame to wire format.
func Encode(f *Frame) ([]byte, error) {
	return EncodeFrame(f.command, f.payload)
}

// MustEncodeFrame encodes a frame and panics on error. Use only with
// payloads already known to be within MaxPayloadSize.
func MustEncodeFrame(command uint8, payload []byte) []byte {
	data, err := EncodeFrame(command, payload)
	if err != nil {
		panic(fmt.Sprintf("tether: encode error: %v", err))
	}
	return data
}
