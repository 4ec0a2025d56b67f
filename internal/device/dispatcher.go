// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package device

import (
	"log"

	"github.com/hallewell/modelink/pkg/tether"
)

// Dispatcher routes decoded command frames to their handlers. Every handler
// sends its single response frame before doing anything slow, so the peer's
// round-trip time stays bounded by the handler's fast path.
type Dispatcher struct {
	link     *Link
	state    *State
	pulse    *Pulse
	ind      Indicator
	handlers map[uint8]func(payload []byte)
}

// NewDispatcher builds the command table.
func NewDispatcher(link *Link, state *State, pulse *Pulse, ind Indicator) *Dispatcher {
	d := &Dispatcher{link: link, state: state, pulse: pulse, ind: ind}
	d.handlers = map[uint8]func([]byte){
		tether.CmdHello:   d.handleHello,
		tether.CmdPing:    d.handlePing,
		tether.CmdTrigger: d.handleTrigger,
		tether.CmdSetMode: d.handleSetMode,
	}
	return d
}

// Dispatch handles one received command frame.
func (d *Dispatcher) Dispatch(f *tether.Frame) {
	handler, ok := d.handlers[f.Command()]
	if !ok {
		log.Printf("[dispatch] unknown command 0x%02X", f.Command())
		d.respond(tether.RspErr)
		d.ind.Error()
		return
	}
	handler(f.Payload())
}

func (d *Dispatcher) respond(code uint8) {
	if err := d.link.SendResponse(code); err != nil {
		log.Printf("[dispatch] send response 0x%02X: %v", code, err)
	}
}

func (d *Dispatcher) handleHello(payload []byte) {
	log.Printf("[dispatch] peer says hello")
	d.respond(tether.RspAck)
	d.ind.Hello()
}

func (d *Dispatcher) handlePing(payload []byte) {
	d.respond(tether.RspAck)
	d.ind.Ack()
}

func (d *Dispatcher) handleTrigger(payload []byte) {
	if !d.pulse.TryClaim() {
		log.Printf("[dispatch] trigger rejected, pulse already active")
		d.respond(tether.RspBusy)
		return
	}
	d.respond(tether.RspAck)
	d.pulse.Begin()
}

func (d *Dispatcher) handleSetMode(payload []byte) {
	mode, err := tether.ParseSetMode(payload)
	if err != nil {
		log.Printf("[dispatch] SET_MODE rejected: %v", err)
		d.respond(tether.RspErr)
		d.ind.Error()
		return
	}
	d.respond(tether.RspAck)
	d.state.ApplyPeerMode(mode)
	log.Printf("[dispatch] peer set mode %d", mode)
	d.ind.Flash(int(mode) + 1)
}
