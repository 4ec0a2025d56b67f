// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import "log"

// WindowOpener re-opens a commissioning window so a new observer can pair
// after the last one was removed.
type WindowOpener interface {
	OpenCommissioningWindow() error
}

// LogWindowOpener announces the reopened window without a real commissioning
// backend. The standalone daemon uses it; embedders supply their own.
type LogWindowOpener struct{}

func (LogWindowOpener) OpenCommissioningWindow() error {
	log.Printf("[commissioning] window reopened, device discoverable again")
	return nil
}
