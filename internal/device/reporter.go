// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

// Reporter is the device's view of the state-reporting subsystem. The hub
// bridge implements it; tests substitute a recorder.
//
// Report unconditionally asserts the endpoint value and notifies observers
// even when the value did not change; that notification is also delivered
// back through the change callback, which is why the arbiter marks itself
// syncing around Report sequences. Update sets the value and notifies only
// on an actual change.
type Reporter interface {
	Report(id EndpointID, on bool) error
	Update(id EndpointID, on bool) error
}
