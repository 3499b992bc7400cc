// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
	"github.com/tidemark/aquaflow/pkg/telemetry"
)

var (
	serveAddr     string
	serveUsername string
	serveInterval int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve decoded telemetry over WebSocket",
	Long: `Attach to the selected device and broadcast decoded sensor frames to
WebSocket subscribers.

Frames are CBOR-encoded binary messages, one per broadcast interval. With
--username, subscribers must present HTTP Basic credentials; the password
is read from AQUAFLOW_PASSWORD or prompted at startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8780", "Listen address")
	serveCmd.Flags().StringVar(&serveUsername, "username", "", "Require HTTP Basic auth with this username")
	serveCmd.Flags().IntVarP(&serveInterval, "interval", "i", 1, "Broadcast interval in seconds")
}

func runServe(cmd *cobra.Command, args []string) error {
	password := ""
	if serveUsername != "" {
		var err error
		password, err = GetPassword()
		if err != nil {
			return err
		}
	}

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

	server := telemetry.NewServer(serveUsername, password)
	defer server.Close()

	httpServer := &http.Server{Addr: serveAddr, Handler: server.Handler()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()
	defer httpServer.Close()

	fmt.Printf("Aquaflow - Telemetry Bridge\n")
	fmt.Printf("Device: %s (serial %s)\n", desc.Name, dev.Info().Serial)
	fmt.Printf("Listening on %s\n", serveAddr)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = sess.WaitReady(waitCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("no sensor report received: %v", err)
	}

	ticker := time.NewTicker(time.Duration(serveInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap, err := sess.Snapshot()
			if errors.Is(err, aquahid.ErrNoData) {
				// Device went quiet; subscribers just see a gap.
				continue
			}
			if err != nil {
				return err
			}
			if err := server.Broadcast(telemetry.NewFrame(desc, snap)); err != nil {
				log.Printf("Broadcast error: %v", err)
			}
		}
	}
}
