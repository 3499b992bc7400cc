// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
)

var monitorInterval int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuously log decoded sensor readings",
	Long: `Attach to the selected device and print a decoded snapshot of every sensor
at a fixed interval.

The device pushes its sensor report about once per second; readings older
than the staleness window are reported as an error rather than repeated.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVarP(&monitorInterval, "interval", "i", 1, "Print interval in seconds")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	sess, dev, desc, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := dev.ReadLoop(ctx, sess.HandlePeriodicReport); err != nil && ctx.Err() == nil {
			log.Printf("Read loop error: %v", err)
			stop()
		}
	}()

	fmt.Printf("Aquaflow - Sensor Monitor\n")
	fmt.Printf("Device: %s (serial %s)\n", desc.Name, dev.Info().Serial)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = sess.WaitReady(waitCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("no sensor report received: %v", err)
	}

	ticker := time.NewTicker(time.Duration(monitorInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stats := sess.Stats()
			fmt.Printf("\n%s\n", stats.String())
			return nil
		case <-ticker.C:
			snap, err := sess.Snapshot()
			if errors.Is(err, aquahid.ErrNoData) {
				log.Printf("Sensor data stale, waiting for device")
				continue
			}
			if err != nil {
				return err
			}
			fmt.Printf("[%s]\n%s\n", snap.LastUpdated.Format("15:04:05"), aquahid.FormatSnapshot(desc, snap))
		}
	}
}
