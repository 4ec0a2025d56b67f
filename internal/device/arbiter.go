// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"context"
	"log"
	"time"

	"github.com/hallewell/modelink/pkg/tether"
)

// Timing collects the arbiter and trigger periods.
type Timing struct {
	Tick     time.Duration // arbiter poll period
	Debounce time.Duration // quiet window after the last tap
	Cleanup  time.Duration // delay before the one-shot re-assertion
	Stagger  time.Duration // gap between consecutive off reports
	Settle   time.Duration // gap between the off reports and the on report
	Pulse    time.Duration // trigger hold duration
}

// Arbiter owns mode transitions. Taps only record intent; the arbiter's tick
// is the single place that turns intent into an execution, so rapid taps
// collapse into one transition to the final target. It also runs the
// one-shot re-assertion that heals observers that missed a report, and the
// reconciliation pass after boot or a peer-originated mode change.
type Arbiter struct {
	state  *State
	link   *Link
	rep    Reporter
	eps    Endpoints
	names  [tether.ModeCount]string
	timing Timing
	now    func() time.Time

	// onExecuted, when set, is called after each debounced execution with
	// the new mode. Used for persistence.
	onExecuted func(tether.Mode)
}

// NewArbiter creates the arbiter. Run drives it at the configured tick;
// tests call Tick directly with a synthetic clock.
func NewArbiter(state *State, link *Link, rep Reporter, eps Endpoints,
	names [tether.ModeCount]string, timing Timing) *Arbiter {
	return &Arbiter{
		state:  state,
		link:   link,
		rep:    rep,
		eps:    eps,
		names:  names,
		timing: timing,
		now:    time.Now,
	}
}

// Run ticks the arbiter until the context is cancelled.
func (a *Arbiter) Run(ctx context.Context) {
	ticker := time.NewTicker(a.timing.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick(a.now())
		}
	}
}

// Tick evaluates at most one action: a due debounced execution, a pending
// reconciliation, or the one-shot re-assertion, in that priority order.
func (a *Arbiter) Tick(now time.Time) {
	if mode, ok := a.state.claimExecution(now, a.timing.Debounce); ok {
		log.Printf("[arbiter] debounce settled, switching to mode %d (%s)", mode, a.names[mode])
		if err := a.link.SendFrame(tether.CmdSetMode, []byte{byte(mode)}); err != nil {
			log.Printf("[arbiter] notify peer: %v", err)
		}
		a.reportExclusive(mode)
		a.state.finishExecution(now)
		if a.onExecuted != nil {
			a.onExecuted(mode)
		}
		return
	}

	if mode, ok := a.state.claimResync(); ok {
		log.Printf("[arbiter] reconciling endpoints to mode %d (%s)", mode, a.names[mode])
		a.reportExclusive(mode)
		a.state.endSync()
		return
	}

	if mode, ok := a.state.claimCleanup(now, a.timing.Cleanup); ok {
		log.Printf("[arbiter] re-asserting mode %d (%s)", mode, a.names[mode])
		a.reportExclusive(mode)
		a.state.endSync()
	}
}

// reportExclusive forces the reporter to the exclusive representation of
// mode: the three others off first, then the target on. The target is never
// turned off, so observers never see an all-off instant, and report errors
// are logged rather than aborting so one failed endpoint cannot wedge the
// rest of the sequence.
func (a *Arbiter) reportExclusive(mode tether.Mode) {
	for i := 0; i < tether.ModeCount; i++ {
		if tether.Mode(i) == mode {
			continue
		}
		if err := a.rep.Report(a.eps.Modes[i], false); err != nil {
			log.Printf("[arbiter] report mode %d off: %v", i, err)
		}
		a.pause(a.timing.Stagger)
	}
	a.pause(a.timing.Settle)
	if err := a.rep.Report(a.eps.Modes[mode], true); err != nil {
		log.Printf("[arbiter] report mode %d on: %v", mode, err)
	}
}

func (a *Arbiter) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
