// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import "github.com/hallewell/modelink/pkg/tether"

// EndpointID identifies a switch endpoint on the state-reporting side.
type EndpointID uint16

// Endpoints maps the device's logical controls to reporter endpoint IDs:
// one momentary trigger switch and one switch per mode.
type Endpoints struct {
	Trigger EndpointID
	Modes   [tether.ModeCount]EndpointID
}

// ModeFor resolves an endpoint ID back to its mode. Returns false for the
// trigger endpoint and for IDs that belong to neither.
func (e Endpoints) ModeFor(id EndpointID) (tether.Mode, bool) {
	for i, ep := range e.Modes {
		if ep == id {
			return tether.Mode(i), true
		}
	}
	return 0, false
}
