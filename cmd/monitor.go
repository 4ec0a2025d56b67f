// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hallewell/modelink/internal/transport"
	"github.com/hallewell/modelink/pkg/tether"
)

var monitorStats bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display decoded Tether frames in human-readable format",
	Long: `Continuously decode and display Tether frames as they arrive.

Each frame is shown with timestamp, direction (command or response), decoded
name, and payload. Decode errors are shown inline; the decoder resynchronizes
on the next start byte.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorStats, "stats", false, "Print statistics on exit errors")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, connInfo, err := openTransport(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Modelink - Frame Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := tether.NewDecoder()
	stats := tether.NewStatistics()
	buf := make([]byte, 128)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			// A WebSocket read error usually means the connection is
			// permanently closed - exit gracefully
			if errors.Is(err, transport.ErrConnectionClosed) {
				log.Printf("Connection closed")
				if monitorStats {
					fmt.Print(stats.String())
				}
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		for i := 0; i < n; i++ {
			frame, err := decoder.DecodeByte(buf[i])
			if err != nil {
				stats.Update(nil, err)
				fmt.Printf("[ERROR] %v\n", err)
				continue
			}
			if frame != nil {
				stats.Update(frame, nil)
				fmt.Print(tether.FormatFrame(frame))
			}
		}
	}
}
