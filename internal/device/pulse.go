// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"log"
	"sync"
	"time"
)

// Pulse runs the momentary trigger action: claim, hold for the configured
// duration, then report the trigger endpoint off. Only one pulse runs at a
// time; the claim lives in State so the dispatcher's BUSY decision and the
// pulse start are one atomic step.
type Pulse struct {
	state    *State
	rep      Reporter
	endpoint EndpointID
	duration time.Duration
	ind      Indicator

	mu    sync.Mutex
	timer *time.Timer
}

// NewPulse creates the trigger action runner.
func NewPulse(state *State, rep Reporter, endpoint EndpointID, duration time.Duration, ind Indicator) *Pulse {
	return &Pulse{state: state, rep: rep, endpoint: endpoint, duration: duration, ind: ind}
}

// TryClaim attempts to claim the pulse. The caller must follow a successful
// claim with Begin, or release it with the state's ClearPulse.
func (p *Pulse) TryClaim() bool {
	return p.state.TryClaimPulse()
}

// Begin reports the trigger endpoint on and starts the hold timer for a
// claimed pulse. The on report goes through Update, so a pulse that the
// observer itself initiated produces no redundant notification, and the
// echo delivered for a peer-initiated pulse is absorbed by the busy claim.
func (p *Pulse) Begin() {
	log.Printf("[pulse] trigger active for %v", p.duration)
	p.ind.CommandSent()
	if err := p.rep.Update(p.endpoint, true); err != nil {
		log.Printf("[pulse] report trigger on: %v", err)
	}

	p.mu.Lock()
	p.timer = time.AfterFunc(p.duration, p.finish)
	p.mu.Unlock()
}

func (p *Pulse) finish() {
	p.state.ClearPulse()
	if err := p.rep.Update(p.endpoint, false); err != nil {
		log.Printf("[pulse] report trigger off: %v", err)
	}
	log.Printf("[pulse] trigger released")
}

// Stop cancels a running pulse early, e.g. when an observer turned the
// trigger endpoint off by hand. Safe to call when no pulse is active.
func (p *Pulse) Stop() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.state.ClearPulse()
	log.Printf("[pulse] trigger stopped")
}
