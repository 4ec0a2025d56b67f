// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

// Package console is the local admin REPL: pairing lifecycle, manual mode
// taps and triggers, status, and factory reset.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hallewell/modelink/internal/device"
	"github.com/hallewell/modelink/pkg/tether"
)

// Console reads commands line by line and drives the device core.
type Console struct {
	core *device.Core
	in   io.Reader
	out  io.Writer
}

// New creates a console over the given streams.
func New(core *device.Core, in io.Reader, out io.Writer) *Console {
	return &Console{core: core, in: in, out: out}
}

// Run processes commands until the input closes or the context is
// cancelled. Unknown commands print usage and keep the loop alive.
func (c *Console) Run(ctx context.Context) {
	fmt.Fprintln(c.out, "modelink console, type 'help' for commands")

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if done := c.execute(strings.Fields(scanner.Text())); done {
			return
		}
	}
}

func (c *Console) execute(args []string) (done bool) {
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "help":
		c.printHelp()
	case "status":
		c.printStatus()
	case "stats":
		fmt.Fprint(c.out, c.core.Stats().String())
	case "mode":
		c.doMode(args[1:])
	case "trigger":
		if c.core.RequestTrigger() {
			fmt.Fprintln(c.out, "trigger pulse started")
		} else {
			fmt.Fprintln(c.out, "busy: a trigger pulse is already running")
		}
	case "pair":
		c.core.OnPaired()
		fmt.Fprintln(c.out, "paired")
	case "unpair":
		c.core.OnUnpaired()
		fmt.Fprintln(c.out, "unpaired, commissioning window reopened")
	case "factory-reset":
		c.doFactoryReset(args[1:])
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(c.out, "unknown command %q, type 'help'\n", args[0])
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, `Commands:
  status                 show device state
  stats                  show link frame statistics
  mode <0-3>             request a mode (debounced like an observer tap)
  trigger                start a trigger pulse
  pair                   mark an observer as paired
  unpair                 remove the pairing, reopen commissioning
  factory-reset confirm  wipe persisted state
  quit                   leave the console
`)
}

func (c *Console) printStatus() {
	st := c.core.Status()
	fmt.Fprintf(c.out, "mode:    %d (%s)\n", st.CurrentMode, c.core.ModeName(st.CurrentMode))
	if st.TargetMode >= 0 {
		fmt.Fprintf(c.out, "pending: %d (%s)\n", st.TargetMode, c.core.ModeName(tether.Mode(st.TargetMode)))
	}
	fmt.Fprintf(c.out, "pulse:   %v\n", st.PulseActive)
	fmt.Fprintf(c.out, "paired:  %v\n", c.core.Paired())
}

func (c *Console) doMode(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: mode <0-3>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > 255 || !tether.Mode(n).Valid() {
		fmt.Fprintf(c.out, "invalid mode %q, want 0-%d\n", args[0], tether.ModeCount-1)
		return
	}
	if c.core.RequestMode(tether.Mode(n)) {
		fmt.Fprintf(c.out, "mode %d (%s) requested\n", n, c.core.ModeName(tether.Mode(n)))
	} else {
		fmt.Fprintln(c.out, "busy: mode change in progress, try again")
	}
}

func (c *Console) doFactoryReset(args []string) {
	if len(args) != 1 || args[0] != "confirm" {
		fmt.Fprintln(c.out, "refusing: type 'factory-reset confirm' to wipe persisted state")
		return
	}
	if err := c.core.FactoryReset(); err != nil {
		fmt.Fprintf(c.out, "factory reset failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "factory reset done, restart the daemon")
}
