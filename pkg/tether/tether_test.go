// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import (
	"bytes"
	"testing"
)

// ============================================================
// CRC Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if crc := Checksum([]byte{}); crc != crcInitial {
		t.Errorf("CRC of empty data should be initial value, got 0x%02X", crc)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint8
	}{
		{name: "single zero byte", data: []byte{0x00}, expected: 0x00},
		{name: "single 0x01", data: []byte{0x01}, expected: 0x31},
		{name: "single 0x80", data: []byte{0x80}, expected: 0x7A},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if crc := Checksum(tt.data); crc != tt.expected {
				t.Errorf("CRC mismatch: expected 0x%02X, got 0x%02X", tt.expected, crc)
			}
		})
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	data := []byte{0x02, 0x02, 0x01, 0x04}
	if Checksum(data) != Checksum(data) {
		t.Error("CRC should be deterministic")
	}
}

func TestChecksum_SensitiveToEveryBit(t *testing.T) {
	data := []byte{0x02, 0x02, 0x01}
	base := Checksum(data)
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), data...)
			mutated[i] ^= 1 << bit
			if Checksum(mutated) == base {
				t.Errorf("flipping byte %d bit %d did not change the CRC", i, bit)
			}
		}
	}
}

// ============================================================
// Frame Tests
// ============================================================

func TestNewFrame(t *testing.T) {
	f := NewFrame(CmdSetMode, []byte{0x02})
	if f.Command() != CmdSetMode {
		t.Errorf("Command mismatch: expected 0x%02X, got 0x%02X", CmdSetMode, f.Command())
	}
	if f.Length() != 2 {
		t.Errorf("Length mismatch: expected 2, got %d", f.Length())
	}
	if !bytes.Equal(f.Payload(), []byte{0x02}) {
		t.Errorf("Payload mismatch: got %v", f.Payload())
	}
	if f.Timestamp().IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestFrame_IsResponse(t *testing.T) {
	tests := []struct {
		code     uint8
		response bool
	}{
		{CmdHello, false},
		{CmdSetMode, false},
		{CmdTrigger, false},
		{CmdPing, false},
		{StatusPaired, false},
		{StatusUnpaired, false},
		{RspAck, true},
		{RspErr, true},
		{RspBusy, true},
		{RspDone, true},
	}

	for _, tt := range tests {
		f := NewFrame(tt.code, nil)
		if f.IsResponse() != tt.response {
			t.Errorf("IsResponse(0x%02X) = %v, want %v", tt.code, f.IsResponse(), tt.response)
		}
	}
}

// ============================================================
// Command Builder Tests
// ============================================================

func TestNewSetModeFrame(t *testing.T) {
	f := NewSetModeFrame(Mode2)
	if f.Command() != CmdSetMode {
		t.Errorf("expected SET_MODE command, got 0x%02X", f.Command())
	}
	if !bytes.Equal(f.Payload(), []byte{0x02}) {
		t.Errorf("expected payload [0x02], got %v", f.Payload())
	}
}

func TestParseSetMode(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    Mode
		wantErr bool
	}{
		{name: "mode 0", payload: []byte{0x00}, want: Mode0},
		{name: "mode 3", payload: []byte{0x03}, want: Mode3},
		{name: "out of range", payload: []byte{0x05}, wantErr: true},
		{name: "empty payload", payload: nil, wantErr: true},
		{name: "too long", payload: []byte{0x01, 0x02}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := ParseSetMode(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for payload %v", tt.payload)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.want {
				t.Errorf("mode = %d, want %d", mode, tt.want)
			}
		})
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		code uint8
		want string
	}{
		{CmdHello, "HELLO"},
		{CmdSetMode, "SET_MODE"},
		{CmdTrigger, "TRIGGER"},
		{CmdPing, "PING"},
		{StatusPaired, "PAIRED"},
		{StatusUnpaired, "UNPAIRED"},
		{RspAck, "ACK"},
		{RspErr, "ERR"},
		{RspBusy, "BUSY"},
		{RspDone, "DONE"},
		{0x7F, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := FormatCommand(tt.code); got != tt.want {
			t.Errorf("FormatCommand(0x%02X) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
