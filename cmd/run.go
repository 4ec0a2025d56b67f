// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hallewell/modelink/internal/console"
	"github.com/hallewell/modelink/internal/device"
	"github.com/hallewell/modelink/internal/hub"
	"github.com/hallewell/modelink/pkg/tether"
)

var runNoConsole bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mode-link node",
	Long: `Run the full mode-link node.

The node opens the Tether link to the peer board, serves the switch
endpoints to observers over the hub WebSocket bridge, arbitrates debounced
mode changes, and persists the current mode across restarts. An admin
console on stdin handles pairing, manual taps, and factory reset.

Endpoints are registered in a fixed order: the trigger first, then one
endpoint per mode. Observers address them by those IDs on /ws; GET /state
returns the full current table.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runNoConsole, "no-console", false, "Disable the stdin admin console")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tr, connInfo, err := openTransport(cfg)
	if err != nil {
		return err
	}
	defer tr.Close()
	log.Printf("[run] link up: %s", connInfo)

	names := cfg.ModeNames()
	h := hub.New()
	eps := device.Endpoints{Trigger: h.AddEndpoint("Trigger")}
	for i := 0; i < tether.ModeCount; i++ {
		eps.Modes[i] = h.AddEndpoint(names[i])
	}

	core := device.NewCore(device.Options{
		Transport: tr,
		Reporter:  h,
		Endpoints: eps,
		Timing: device.Timing{
			Tick:     cfg.Timing.Tick(),
			Debounce: cfg.Timing.Debounce(),
			Cleanup:  cfg.Timing.Cleanup(),
			Stagger:  cfg.Timing.Stagger(),
			Settle:   cfg.Timing.Settle(),
			Pulse:    cfg.Timing.Pulse(),
		},
		Names:       names,
		InitialMode: tether.Mode(cfg.Modes.Initial),
		Store:       device.NewStore(cfg.StateFile),
		Windows:     device.LogWindowOpener{},
	})
	h.SetCallback(core.OnEndpointChange)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Hub.Listen != "" {
		go func() {
			if err := h.Run(ctx, cfg.Hub.Listen); err != nil && err != http.ErrServerClosed {
				log.Printf("[run] hub: %v", err)
			}
		}()
	}

	if !runNoConsole {
		go console.New(core, os.Stdin, os.Stdout).Run(ctx)
	}

	// Greet the peer so both sides know the link is alive.
	if err := core.RequestHello(); err != nil {
		log.Printf("[run] hello: %v", err)
	}

	core.Run(ctx)
	fmt.Println("shutting down")
	return nil
}
