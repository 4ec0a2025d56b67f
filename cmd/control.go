// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package cmd

import (
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hallewell/modelink/internal/transport"
	"github.com/hallewell/modelink/pkg/tether"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for driving a peer mode-link board",
	Long: `Drive a Tether peer board from an interactive terminal UI.

The TUI plays the role of the remote controller: it sends HELLO, PING,
TRIGGER, and SET_MODE commands and tracks the peer's responses, mode
announcements, and pairing status notifications in real time.

Features:
  - Live frame log with decode errors
  - Peer mode and pairing status tracking
  - Frame statistics
  - Automatic reconnection on connection loss

Keys: h hello, g ping, t trigger, 0-3 set mode, s toggle stats, q quit.

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// linkManager owns the connection for the control TUI: it serializes
// writes, feeds decoded frames to the program, and reconnects with backoff
// when the connection drops.
type linkManager struct {
	mu       sync.RWMutex
	conn     transport.Transport
	connInfo string

	p    *tea.Program
	done chan struct{}
}

func (lm *linkManager) getConn() transport.Transport {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.conn
}

func (lm *linkManager) setConn(conn transport.Transport, connInfo string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.conn = conn
	lm.connInfo = connInfo
}

// send encodes and writes one frame, reporting the outcome to the TUI.
func (lm *linkManager) send(command uint8, payload []byte) {
	wire, err := tether.EncodeFrame(command, payload)
	if err != nil {
		lm.p.Send(controlLogMsg{text: fmt.Sprintf("encode: %v", err), isError: true})
		return
	}
	conn := lm.getConn()
	if conn == nil {
		lm.p.Send(controlLogMsg{text: "not connected", isError: true})
		return
	}
	if _, err := conn.Write(wire); err != nil {
		lm.p.Send(controlLogMsg{text: fmt.Sprintf("write: %v", err), isError: true})
		return
	}
	lm.p.Send(controlSentMsg{command: command, payload: payload})
}

func runControl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, connInfo, err := openTransport(cfg)
	if err != nil {
		return err
	}

	lm := &linkManager{conn: conn, connInfo: connInfo, done: make(chan struct{})}

	m := initialControlModel(lm, connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())
	lm.p = p

	go lm.readerLoop()

	// Greet the peer so the first thing in the log is its ACK.
	go lm.send(tether.CmdHello, nil)

	if _, err := p.Run(); err != nil {
		close(lm.done)
		if c := lm.getConn(); c != nil {
			c.Close()
		}
		return fmt.Errorf("TUI error: %v", err)
	}

	close(lm.done)
	if c := lm.getConn(); c != nil {
		c.Close()
	}
	return nil
}

// readerLoop reads frames and reconnects when the connection is lost.
func (lm *linkManager) readerLoop() {
	for {
		select {
		case <-lm.done:
			return
		default:
		}

		if lost := lm.readFrames(); !lost {
			return
		}

		lm.p.Send(connectionLostMsg{})
		if !lm.reconnect() {
			return
		}
	}
}

// readFrames decodes frames until the connection fails. Returns true when
// the connection was lost, false on shutdown.
func (lm *linkManager) readFrames() bool {
	decoder := tether.NewDecoder()
	buf := make([]byte, 128)

	for {
		select {
		case <-lm.done:
			return false
		default:
		}

		conn := lm.getConn()
		if conn == nil {
			return true
		}

		n, err := conn.Read(buf)
		if err != nil {
			select {
			case <-lm.done:
				return false
			default:
			}
			if errors.Is(err, transport.ErrConnectionClosed) {
				return true
			}
			// Transient error (e.g. serial hiccup), retry shortly.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		for i := 0; i < n; i++ {
			frame, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil {
				lm.p.Send(controlFrameMsg{decodeErr: decodeErr})
				continue
			}
			if frame != nil {
				lm.p.Send(controlFrameMsg{frame: frame})
			}
		}
	}
}

// reconnect retries with exponential backoff. Returns false if shutdown was
// requested while waiting.
func (lm *linkManager) reconnect() bool {
	if c := lm.getConn(); c != nil {
		c.Close()
	}

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-lm.done:
			return false
		case <-time.After(backoff):
		}

		cfg, err := loadConfig()
		if err != nil {
			return false
		}
		conn, connInfo, err := openTransport(cfg)
		if err == nil {
			lm.setConn(conn, connInfo)
			lm.p.Send(reconnectedMsg{connInfo: connInfo})
			lm.send(tether.CmdHello, nil)
			return true
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
