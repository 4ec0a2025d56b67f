// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/hallewell/modelink/internal/transport"
	"github.com/hallewell/modelink/pkg/tether"
)

// Receiver pumps bytes from the transport through the frame decoder and
// hands complete command frames to the dispatcher. Decode errors resync the
// stream and count against statistics; they never stop the loop.
type Receiver struct {
	tr    transport.Transport
	disp  *Dispatcher
	stats *tether.Statistics
}

// NewReceiver creates the receive loop.
func NewReceiver(tr transport.Transport, disp *Dispatcher) *Receiver {
	return &Receiver{tr: tr, disp: disp, stats: tether.NewStatistics()}
}

// Stats exposes the running frame statistics.
func (r *Receiver) Stats() *tether.Statistics {
	return r.stats
}

// Run reads until the context is cancelled or the transport closes.
func (r *Receiver) Run(ctx context.Context) {
	decoder := tether.NewDecoder()
	buf := make([]byte, 256)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := r.tr.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, transport.ErrConnectionClosed) {
				log.Printf("[rx] transport closed")
				return
			}
			log.Printf("[rx] read: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		for i := 0; i < n; i++ {
			frame, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil {
				r.stats.Update(nil, decodeErr)
				log.Printf("[rx] %v", decodeErr)
				continue
			}
			if frame == nil {
				continue
			}
			r.stats.Update(frame, nil)

			if frame.IsResponse() {
				// Responses to our own commands are observed, never answered.
				log.Printf("[rx] peer response %s (0x%02X)",
					tether.FormatCommand(frame.Command()), frame.Command())
				continue
			}
			r.disp.Dispatch(frame)
		}
	}
}
