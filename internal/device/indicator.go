// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import "log"

// Indicator surfaces device activity to a human: on the original hardware a
// status LED, here a pluggable sink. All methods must return quickly.
type Indicator interface {
	Hello()          // peer greeted us
	Ack()            // routine acknowledge
	CommandSent()    // outbound command on the link
	Error()          // rejected or malformed input
	Flash(count int) // counted pattern, e.g. mode number
}

// LogIndicator writes indicator events to the standard logger.
type LogIndicator struct{}

func (LogIndicator) Hello()       { log.Printf("[indicator] hello") }
func (LogIndicator) Ack()         { log.Printf("[indicator] ack") }
func (LogIndicator) CommandSent() { log.Printf("[indicator] command sent") }
func (LogIndicator) Error()       { log.Printf("[indicator] error") }
func (LogIndicator) Flash(count int) {
	log.Printf("[indicator] flash x%d", count)
}

// NopIndicator discards all events. Tests use it to keep output quiet.
type NopIndicator struct{}

func (NopIndicator) Hello()       {}
func (NopIndicator) Ack()         {}
func (NopIndicator) CommandSent() {}
func (NopIndicator) Error()       {}
func (NopIndicator) Flash(int)    {}
