// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"bytes"
	"testing"
	"time"

	"github.com/hallewell/modelink/pkg/tether"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *State, *recorder, *bytes.Buffer) {
	t.Helper()
	state := NewState(tether.Mode0, time.Unix(1000, 0))
	rec := newRecorder()
	var wire bytes.Buffer
	link := NewLink(&wire)
	pulse := NewPulse(state, rec, testEndpoints.Trigger, 10*time.Millisecond, NopIndicator{})
	return NewDispatcher(link, state, pulse, NopIndicator{}), state, rec, &wire
}

func dispatchCommand(t *testing.T, d *Dispatcher, command uint8, payload []byte) {
	t.Helper()
	d.Dispatch(tether.NewFrame(command, payload))
}

// responses decodes the outbound buffer and returns the command codes.
func responses(t *testing.T, wire *bytes.Buffer) []uint8 {
	t.Helper()
	var codes []uint8
	for _, f := range decodeFrames(t, wire.Bytes()) {
		codes = append(codes, f.Command())
	}
	return codes
}

func TestDispatcher_Hello(t *testing.T) {
	d, _, _, wire := newTestDispatcher(t)
	dispatchCommand(t, d, tether.CmdHello, nil)

	if got := responses(t, wire); len(got) != 1 || got[0] != tether.RspAck {
		t.Errorf("responses = %#x, want single ACK", got)
	}
}

func TestDispatcher_Ping(t *testing.T) {
	d, _, _, wire := newTestDispatcher(t)
	dispatchCommand(t, d, tether.CmdPing, nil)

	if got := responses(t, wire); len(got) != 1 || got[0] != tether.RspAck {
		t.Errorf("responses = %#x, want single ACK", got)
	}
}

func TestDispatcher_SetMode(t *testing.T) {
	d, state, _, wire := newTestDispatcher(t)
	dispatchCommand(t, d, tether.CmdSetMode, []byte{0x02})

	if got := responses(t, wire); len(got) != 1 || got[0] != tether.RspAck {
		t.Errorf("responses = %#x, want single ACK", got)
	}
	if state.CurrentMode() != tether.Mode2 {
		t.Errorf("mode = %d, want 2 (applied immediately, no debounce)", state.CurrentMode())
	}
}

func TestDispatcher_SetModeRejected(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "out of range", payload: []byte{0x05}},
		{name: "empty payload", payload: nil},
		{name: "payload too long", payload: []byte{0x01, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, state, _, wire := newTestDispatcher(t)
			dispatchCommand(t, d, tether.CmdSetMode, tt.payload)

			if got := responses(t, wire); len(got) != 1 || got[0] != tether.RspErr {
				t.Errorf("responses = %#x, want single ERR", got)
			}
			if state.CurrentMode() != tether.Mode0 {
				t.Errorf("mode changed to %d on a rejected SET_MODE", state.CurrentMode())
			}
		})
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _, _, wire := newTestDispatcher(t)
	dispatchCommand(t, d, 0x42, []byte{0x01, 0x02})

	if got := responses(t, wire); len(got) != 1 || got[0] != tether.RspErr {
		t.Errorf("responses = %#x, want single ERR", got)
	}
}

func TestDispatcher_Trigger(t *testing.T) {
	d, state, rec, wire := newTestDispatcher(t)
	dispatchCommand(t, d, tether.CmdTrigger, nil)

	if got := responses(t, wire); len(got) != 1 || got[0] != tether.RspAck {
		t.Fatalf("responses = %#x, want single ACK", got)
	}
	if !state.Status().PulseActive {
		t.Fatal("pulse not active after TRIGGER")
	}

	// The pulse reports the trigger endpoint on, then off after the hold.
	deadline := time.Now().Add(time.Second)
	for state.Status().PulseActive {
		if time.Now().After(deadline) {
			t.Fatal("pulse never released")
		}
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond) // allow the off report to land

	events := rec.snapshot()
	if len(events) != 2 {
		t.Fatalf("trigger events = %+v, want on then off", events)
	}
	if events[0].id != testEndpoints.Trigger || !events[0].on {
		t.Errorf("first event = %+v, want trigger on", events[0])
	}
	if events[1].id != testEndpoints.Trigger || events[1].on {
		t.Errorf("second event = %+v, want trigger off", events[1])
	}
}

func TestDispatcher_TriggerBusy(t *testing.T) {
	d, state, _, wire := newTestDispatcher(t)

	if !state.TryClaimPulse() {
		t.Fatal("setup claim failed")
	}
	dispatchCommand(t, d, tether.CmdTrigger, nil)

	if got := responses(t, wire); len(got) != 1 || got[0] != tether.RspBusy {
		t.Errorf("responses = %#x, want single BUSY", got)
	}
}
