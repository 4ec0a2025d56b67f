// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/hallewell/modelink/pkg/tether"
)

// Link serializes outbound frames onto the peer-board byte channel. Writes
// come from the dispatcher, the arbiter, and the trigger path concurrently,
// so a mutex keeps each frame's bytes contiguous on the wire.
type Link struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLink wraps a transport writer.
func NewLink(w io.Writer) *Link {
	return &Link{w: w}
}

// SendFrame encodes and writes one frame.
func (l *Link) SendFrame(command uint8, payload []byte) error {
	data, err := tether.EncodeFrame(command, payload)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	n, err := l.w.Write(data)
	if err != nil {
		return fmt.Errorf("link write: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("link write: short write, %d of %d bytes", n, len(data))
	}
	log.Printf("[link] TX %s (0x%02X), %d bytes", tether.FormatCommand(command), command, len(data))
	return nil
}

// SendResponse sends a payload-less response or status frame.
func (l *Link) SendResponse(code uint8) error {
	return l.SendFrame(code, nil)
}
