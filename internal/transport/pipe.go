// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package transport

import (
	"io"
	"sync"
	"time"
)

// Pipe is an in-process duplex byte channel with serial-like read timeout
// semantics: Read returns (0, nil) when no data arrives within the timeout.
// Used by tests and the loopback demo.
type Pipe struct {
	recv    chan []byte
	peer    *Pipe
	timeout time.Duration

	mu      sync.Mutex
	pending []byte
	closed  chan struct{}
	once    sync.Once
}

// NewPipe creates a connected pair of pipe endpoints.
func NewPipe(readTimeout time.Duration) (*Pipe, *Pipe) {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	a := &Pipe{recv: make(chan []byte, 64), timeout: readTimeout, closed: make(chan struct{})}
	b := &Pipe{recv: make(chan []byte, 64), timeout: readTimeout, closed: make(chan struct{})}
	a.peer = b
	b.peer = a
	return a, b
}

func (p *Pipe) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if len(p.pending) > 0 {
		n := copy(buf, p.pending)
		p.pending = p.pending[n:]
		p.mu.Unlock()
		return n, nil
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case data := <-p.recv:
		n := copy(buf, data)
		if n < len(data) {
			p.mu.Lock()
			p.pending = append(p.pending, data[n:]...)
			p.mu.Unlock()
		}
		return n, nil
	case <-timer.C:
		return 0, nil
	case <-p.closed:
		return 0, io.EOF
	}
}

func (p *Pipe) Write(data []byte) (int, error) {
	select {
	case <-p.closed:
		return 0, io.ErrClosedPipe
	case <-p.peer.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	out := append([]byte(nil), data...)
	select {
	case p.peer.recv <- out:
		return len(data), nil
	case <-p.closed:
		return 0, io.ErrClosedPipe
	case <-p.peer.closed:
		return 0, io.ErrClosedPipe
	}
}

func (p *Pipe) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}
