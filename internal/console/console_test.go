// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package console

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hallewell/modelink/internal/device"
	"github.com/hallewell/modelink/internal/transport"
	"github.com/hallewell/modelink/pkg/tether"
)

type nopReporter struct{}

func (nopReporter) Report(device.EndpointID, bool) error { return nil }
func (nopReporter) Update(device.EndpointID, bool) error { return nil }

func newTestConsole(t *testing.T, input string) (*Console, *device.Core, *bytes.Buffer) {
	t.Helper()
	local, peer := transport.NewPipe(20 * time.Millisecond)
	t.Cleanup(func() {
		local.Close()
		peer.Close()
	})

	core := device.NewCore(device.Options{
		Transport: local,
		Reporter:  nopReporter{},
		Endpoints: device.Endpoints{Trigger: 0, Modes: [tether.ModeCount]device.EndpointID{1, 2, 3, 4}},
		Timing:    device.Timing{Tick: 5 * time.Millisecond, Debounce: 50 * time.Millisecond, Cleanup: time.Hour, Pulse: 10 * time.Millisecond},
		Names:     [tether.ModeCount]string{"Mode A", "Mode B", "Mode C", "Mode D"},
		Store:     device.NewStore(filepath.Join(t.TempDir(), "state.cbor")),
		Indicator: device.NopIndicator{},
	})

	var out bytes.Buffer
	return New(core, strings.NewReader(input), &out), core, &out
}

func TestConsole_Status(t *testing.T) {
	c, _, out := newTestConsole(t, "status\nquit\n")
	c.Run(context.Background())

	got := out.String()
	if !strings.Contains(got, "mode:    0 (Mode A)") {
		t.Errorf("status output missing mode line:\n%s", got)
	}
	if !strings.Contains(got, "paired:  false") {
		t.Errorf("status output missing paired line:\n%s", got)
	}
}

func TestConsole_ModeRequest(t *testing.T) {
	c, core, out := newTestConsole(t, "mode 2\nquit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "mode 2 (Mode C) requested") {
		t.Errorf("output:\n%s", out.String())
	}
	if st := core.Status(); st.TargetMode != 2 {
		t.Errorf("target = %d, want 2", st.TargetMode)
	}
}

func TestConsole_ModeRejectsBadInput(t *testing.T) {
	for _, input := range []string{"mode 4", "mode -1", "mode x", "mode"} {
		t.Run(input, func(t *testing.T) {
			c, core, out := newTestConsole(t, input+"\nquit\n")
			c.Run(context.Background())

			if st := core.Status(); st.TargetMode != -1 {
				t.Errorf("bad input set target to %d", st.TargetMode)
			}
			if out.Len() == 0 {
				t.Error("no diagnostic printed")
			}
		})
	}
}

func TestConsole_FactoryResetNeedsConfirm(t *testing.T) {
	c, _, out := newTestConsole(t, "factory-reset\nquit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "refusing") {
		t.Errorf("unconfirmed factory reset not refused:\n%s", out.String())
	}
}

func TestConsole_PairUnpair(t *testing.T) {
	c, core, _ := newTestConsole(t, "pair\nunpair\nquit\n")
	c.Run(context.Background())

	if core.Paired() {
		t.Error("still paired after unpair")
	}
}

func TestConsole_UnknownCommand(t *testing.T) {
	c, _, out := newTestConsole(t, "frobnicate\nquit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("output:\n%s", out.String())
	}
}
