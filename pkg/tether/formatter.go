// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import "fmt"

// FormatCommand returns the human-readable name for a command or response code
func FormatCommand(code uint8) string {
	switch code {
	case CmdHello:
		return "HELLO"
	case CmdSetMode:
		return "SET_MODE"
	case CmdTrigger:
		return "TRIGGER"
	case CmdPing:
		return "PING"
	case StatusPaired:
		return "PAIRED"
	case StatusUnpaired:
		return "UNPAIRED"
	case RspAck:
		return "ACK"
	case RspErr:
		return "ERR"
	case RspBusy:
		return "BUSY"
	case RspDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame returns a human-readable one-or-more-line rendering of a frame
func FormatFrame(f *Frame) string {
	timestamp := f.Timestamp().Format("15:04:05.000")
	kind := "CMD"
	if f.IsResponse() {
		kind = "RSP"
	}

	result := fmt.Sprintf("[%s] %s %s (0x%02X) len=%d\n",
		timestamp, kind, FormatCommand(f.Command()), f.Command(), f.Length())

	if len(f.Payload()) > 0 {
		result += formatPayload(f.Command(), f.Payload())
	}

	return result
}

func formatPayload(command uint8, payload []byte) string {
	if command == CmdSetMode && len(payload) == 1 {
		mode := Mode(payload[0])
		if mode.Valid() {
			return fmt.Sprintf("  Mode: %d\n", mode)
		}
		return fmt.Sprintf("  Mode: 0x%02X (invalid)\n", payload[0])
	}

	// Default: hex dump
	result := "  Payload: "
	for i, b := range payload {
		if i > 0 && i%16 == 0 {
			result += "\n           "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}
