// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

// Package device implements the mode-arbitration node: the frame receive
// loop, the command dispatcher, the debounced mode arbiter, the trigger
// pulse, and pairing lifecycle, all sharing one synchronized state record.
package device

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hallewell/modelink/internal/transport"
	"github.com/hallewell/modelink/pkg/tether"
)

// Options configures a Core.
type Options struct {
	Transport transport.Transport
	Reporter  Reporter
	Endpoints Endpoints
	Timing    Timing
	Names     [tether.ModeCount]string

	// InitialMode applies when no persisted snapshot exists.
	InitialMode tether.Mode

	// Store is optional; without it the mode resets on restart.
	Store *Store

	// Windows is optional; it is asked to reopen commissioning after the
	// last pairing is removed.
	Windows WindowOpener

	// Indicator defaults to LogIndicator.
	Indicator Indicator
}

// Core wires the device subsystems together and owns the pairing flag.
type Core struct {
	state    *State
	link     *Link
	rep      Reporter
	eps      Endpoints
	names    [tether.ModeCount]string
	pulse    *Pulse
	disp     *Dispatcher
	receiver *Receiver
	arbiter  *Arbiter
	store    *Store
	windows  WindowOpener
	ind      Indicator

	mu     sync.Mutex
	paired bool
}

// NewCore assembles the device. The persisted snapshot, when present,
// overrides the configured initial mode.
func NewCore(opts Options) *Core {
	if opts.Indicator == nil {
		opts.Indicator = LogIndicator{}
	}

	initial := opts.InitialMode
	paired := false
	if opts.Store != nil {
		snap, found, err := opts.Store.Load()
		switch {
		case err != nil:
			log.Printf("[core] load state: %v", err)
		case found && tether.Mode(snap.Mode).Valid():
			initial = tether.Mode(snap.Mode)
			paired = snap.Paired
			log.Printf("[core] restored mode %d, paired=%v", initial, paired)
		}
	}

	c := &Core{
		rep:     opts.Reporter,
		eps:     opts.Endpoints,
		names:   opts.Names,
		store:   opts.Store,
		windows: opts.Windows,
		ind:     opts.Indicator,
		paired:  paired,
	}
	c.state = NewState(initial, time.Now())
	c.link = NewLink(opts.Transport)
	c.pulse = NewPulse(c.state, opts.Reporter, opts.Endpoints.Trigger, opts.Timing.Pulse, opts.Indicator)
	c.disp = NewDispatcher(c.link, c.state, c.pulse, opts.Indicator)
	c.receiver = NewReceiver(opts.Transport, c.disp)
	c.arbiter = NewArbiter(c.state, c.link, opts.Reporter, opts.Endpoints, opts.Names, opts.Timing)
	c.arbiter.onExecuted = c.saveMode
	return c
}

// Run starts the receive loop and the arbiter and blocks until both exit.
// The arbiter's first tick reconciles the endpoints to the initial mode.
func (c *Core) Run(ctx context.Context) {
	log.Printf("[core] starting, mode %d (%s)", c.state.CurrentMode(), c.names[c.state.CurrentMode()])

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.receiver.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		c.arbiter.Run(ctx)
	}()
	wg.Wait()
}

// OnEndpointChange is the change callback registered with the reporting
// subsystem. It runs for observer-originated changes and for echoes of the
// arbiter's own Report calls; the tap path filters the echoes.
func (c *Core) OnEndpointChange(id EndpointID, on bool) {
	if id == c.eps.Trigger {
		c.onTriggerChange(on)
		return
	}
	mode, ok := c.eps.ModeFor(id)
	if !ok {
		log.Printf("[core] change on unknown endpoint %d ignored", id)
		return
	}
	// Only switch-on events are taps; the off half of an observer's toggle
	// carries no intent of its own.
	if !on {
		return
	}
	if c.state.Tap(mode, time.Now()) {
		log.Printf("[core] tap: mode %d (%s) requested", mode, c.names[mode])
	}
}

func (c *Core) onTriggerChange(on bool) {
	if !on {
		c.pulse.Stop()
		return
	}
	if !c.pulse.TryClaim() {
		log.Printf("[core] trigger ignored, pulse already active")
		return
	}
	if err := c.link.SendFrame(tether.CmdTrigger, nil); err != nil {
		log.Printf("[core] notify peer of trigger: %v", err)
	}
	c.pulse.Begin()
}

// RequestHello greets the peer so both sides can confirm the link is alive.
func (c *Core) RequestHello() error {
	return c.link.SendFrame(tether.CmdHello, nil)
}

// RequestMode records a mode tap as if an observer flipped the endpoint.
func (c *Core) RequestMode(mode tether.Mode) bool {
	return c.state.Tap(mode, time.Now())
}

// RequestTrigger starts a trigger pulse as if an observer flipped the
// trigger endpoint. Returns false when a pulse is already running.
func (c *Core) RequestTrigger() bool {
	if !c.pulse.TryClaim() {
		return false
	}
	if err := c.link.SendFrame(tether.CmdTrigger, nil); err != nil {
		log.Printf("[core] notify peer of trigger: %v", err)
	}
	c.pulse.Begin()
	return true
}

// OnPaired records a completed pairing and tells the peer.
func (c *Core) OnPaired() {
	c.mu.Lock()
	c.paired = true
	c.mu.Unlock()

	log.Printf("[core] paired with observer")
	if err := c.link.SendResponse(tether.StatusPaired); err != nil {
		log.Printf("[core] notify peer of pairing: %v", err)
	}
	c.ind.Flash(5)
	c.persist()
}

// OnUnpaired records the removal of the last pairing, tells the peer, and
// reopens the commissioning window.
func (c *Core) OnUnpaired() {
	c.mu.Lock()
	c.paired = false
	c.mu.Unlock()

	log.Printf("[core] unpaired")
	if err := c.link.SendResponse(tether.StatusUnpaired); err != nil {
		log.Printf("[core] notify peer of unpairing: %v", err)
	}
	if c.windows != nil {
		if err := c.windows.OpenCommissioningWindow(); err != nil {
			log.Printf("[core] reopen commissioning window: %v", err)
		}
	}
	c.persist()
}

// FactoryReset clears persisted state and the pairing flag. The caller is
// expected to restart the process afterwards.
func (c *Core) FactoryReset() error {
	c.mu.Lock()
	c.paired = false
	c.mu.Unlock()

	log.Printf("[core] factory reset requested")
	if c.store == nil {
		return nil
	}
	return c.store.Remove()
}

// Paired reports whether an observer is paired.
func (c *Core) Paired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paired
}

// Status returns the current device status for display.
func (c *Core) Status() Status {
	return c.state.Status()
}

// ModeName returns the configured display name for mode.
func (c *Core) ModeName(mode tether.Mode) string {
	if !mode.Valid() {
		return "?"
	}
	return c.names[mode]
}

// Stats exposes the receive loop's frame statistics.
func (c *Core) Stats() *tether.Statistics {
	return c.receiver.Stats()
}

func (c *Core) saveMode(mode tether.Mode) {
	c.persist()
}

func (c *Core) persist() {
	if c.store == nil {
		return
	}
	snap := Snapshot{Mode: uint8(c.state.CurrentMode()), Paired: c.Paired()}
	if err := c.store.Save(snap); err != nil {
		log.Printf("[core] save state: %v", err)
	}
}
