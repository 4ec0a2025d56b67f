// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"sync"
	"time"

	"github.com/hallewell/modelink/pkg/tether"
)

// State is the shared, synchronized device record. It is touched by three
// execution contexts: the receive loop, the arbiter tick, and the reporting
// subsystem's change callback. Every field access goes through a method that
// holds the one mutex, and the debounce check-and-claim is a single critical
// section, so a tap arriving mid-execution is either absorbed before the
// claim or deferred to the next one.
type State struct {
	mu sync.Mutex

	currentMode tether.Mode // authoritative, last successfully executed mode
	targetMode  int         // pending requested mode, -1 = none
	lastTap     time.Time
	lastExec    time.Time

	syncing      bool // arbiter is driving reporter writes; ignore their echoes
	cleanupDone  bool // one-shot re-assertion fired for the settled mode
	resyncWanted bool // endpoint state is stale; reconcile on next tick
	pulseActive  bool // trigger action in progress
}

// NewState creates the device state. The endpoint reconciliation flag starts
// set so the arbiter's first tick asserts the initial mode downstream.
func NewState(initial tether.Mode, now time.Time) *State {
	return &State{
		currentMode:  initial,
		targetMode:   -1,
		lastTap:      now,
		lastExec:     now,
		resyncWanted: true,
	}
}

// Tap records a hub-originated mode selection. Returns false when the tap
// was ignored because the arbiter's own reporter writes were echoing back.
func (s *State) Tap(mode tether.Mode, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing {
		return false
	}
	s.targetMode = int(mode)
	s.lastTap = now
	s.cleanupDone = false
	return true
}

// ApplyPeerMode applies a peer-originated SET_MODE: immediate and
// authoritative, no debounce. Any pending tap is superseded and the
// endpoints are marked stale for the arbiter to reconcile.
func (s *State) ApplyPeerMode(mode tether.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentMode = mode
	s.targetMode = -1
	s.resyncWanted = true
}

// CurrentMode returns the authoritative mode.
func (s *State) CurrentMode() tether.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentMode
}

// claimExecution performs the debounce deadline check and, when due, commits
// the mode change and claims the sync sequence in one critical section.
func (s *State) claimExecution(now time.Time, window time.Duration) (tether.Mode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.targetMode < 0 || now.Sub(s.lastTap) < window {
		return 0, false
	}
	if tether.Mode(s.targetMode) == s.currentMode {
		// Already there; absorb the request without an execution.
		s.targetMode = -1
		return 0, false
	}
	s.currentMode = tether.Mode(s.targetMode)
	s.targetMode = -1
	s.syncing = true
	return s.currentMode, true
}

func (s *State) finishExecution(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
	s.lastExec = now
	s.cleanupDone = false
}

// claimCleanup arms the one-shot self-healing re-assertion once the device
// has been settled for the full window since both the last execution and the
// last tap.
func (s *State) claimCleanup(now time.Time, window time.Duration) (tether.Mode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleanupDone || s.syncing || s.targetMode >= 0 {
		return 0, false
	}
	if now.Sub(s.lastExec) < window || now.Sub(s.lastTap) < window {
		return 0, false
	}
	s.cleanupDone = true
	s.syncing = true
	return s.currentMode, true
}

// claimResync consumes a pending reconciliation request (boot, or a
// peer-originated SET_MODE).
func (s *State) claimResync() (tether.Mode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resyncWanted || s.syncing || s.targetMode >= 0 {
		return 0, false
	}
	s.resyncWanted = false
	s.syncing = true
	return s.currentMode, true
}

func (s *State) endSync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
}

// TryClaimPulse atomically claims the trigger action. The BUSY-vs-ACK
// decision in the dispatcher rides on this claim.
func (s *State) TryClaimPulse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pulseActive {
		return false
	}
	s.pulseActive = true
	return true
}

// ClearPulse marks the trigger action finished.
func (s *State) ClearPulse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulseActive = false
}

// Status is a point-in-time copy of the observable state.
type Status struct {
	CurrentMode tether.Mode
	TargetMode  int // -1 = none pending
	PulseActive bool
	CleanupDone bool
	Syncing     bool
}

// Status returns a consistent snapshot for display.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		CurrentMode: s.currentMode,
		TargetMode:  s.targetMode,
		PulseActive: s.pulseActive,
		CleanupDone: s.cleanupDone,
		Syncing:     s.syncing,
	}
}
