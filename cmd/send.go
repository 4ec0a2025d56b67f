// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hallewell/modelink/pkg/tether"
)

var sendTimeout int

var sendCmd = &cobra.Command{
	Use:   "send <hello|ping|trigger|mode N>",
	Short: "Send one command to the peer and wait for its response",
	Long: `Send a single Tether command frame and print the peer's response.

Commands:
  hello       greet the peer
  ping        liveness check
  trigger     fire the momentary trigger action
  mode <0-3>  request a mode change

The command waits for the first response frame (ACK, ERR, or BUSY) and
exits non-zero if the peer rejects the command or no response arrives.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 3, "Seconds to wait for the response")
}

func buildSendFrame(args []string) ([]byte, error) {
	switch args[0] {
	case "hello":
		return tether.EncodeFrame(tether.CmdHello, nil)
	case "ping":
		return tether.EncodeFrame(tether.CmdPing, nil)
	case "trigger":
		return tether.EncodeFrame(tether.CmdTrigger, nil)
	case "mode":
		if len(args) != 2 {
			return nil, fmt.Errorf("mode requires an argument 0-%d", tether.ModeCount-1)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 || n >= tether.ModeCount {
			return nil, fmt.Errorf("invalid mode %q, want 0-%d", args[1], tether.ModeCount-1)
		}
		return tether.EncodeFrame(tether.CmdSetMode, []byte{byte(n)})
	default:
		return nil, fmt.Errorf("unknown command %q", args[0])
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	wire, err := buildSendFrame(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, connInfo, err := openTransport(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Connection: %s\n", connInfo)
	if _, err := conn.Write(wire); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	fmt.Printf("Sent %s (%d bytes)\n", args[0], len(wire))

	decoder := tether.NewDecoder()
	buf := make([]byte, 128)
	deadline := time.Now().Add(time.Duration(sendTimeout) * time.Second)

	for time.Now().Before(deadline) {
		n, err := conn.Read(buf)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		for i := 0; i < n; i++ {
			frame, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil || frame == nil {
				continue
			}
			if !frame.IsResponse() {
				// Commands from the peer can interleave; keep waiting.
				continue
			}
			fmt.Printf("Response: %s (0x%02X)\n", tether.FormatCommand(frame.Command()), frame.Command())
			if frame.Command() != tether.RspAck && frame.Command() != tether.RspDone {
				return fmt.Errorf("peer rejected the command")
			}
			return nil
		}
	}
	return fmt.Errorf("no response within %d seconds", sendTimeout)
}
