// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
	"github.com/tidemark/aquaflow/pkg/telemetry"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a remote telemetry bridge",
	Long: `Connect to an aquaflow telemetry bridge and print every received frame.

Connection:
  --url ws://host:8780/ [--username user]

The password is read from AQUAFLOW_PASSWORD or prompted interactively.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	watchCmd.Flags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	watchCmd.Flags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
	watchCmd.MarkFlagRequired("url")
}

func runWatch(cmd *cobra.Command, args []string) error {
	password := ""
	if wsUsername != "" {
		var err error
		password, err = GetPassword()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := telemetry.Dial(ctx, wsURL, wsUsername, password, wsNoSSLVerify)
	if err != nil {
		return err
	}
	defer client.Close()

	// Unblock the read loop on Ctrl+C.
	go func() {
		<-ctx.Done()
		client.Close()
	}()

	fmt.Printf("Aquaflow - Telemetry Watch\n")
	fmt.Printf("Connection: %s\n", wsURL)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Connection closed: %v", err)
			return nil
		}

		fmt.Printf("[%s] %s serial %s\n", frame.Time().Format("15:04:05"), frame.Model, frame.Serial)
		for i, t := range frame.Temps {
			if t == aquahid.TempNotAvailable {
				fmt.Printf("  temp %d: n/a\n", i)
				continue
			}
			fmt.Printf("  temp %d: %.2f °C\n", i, float64(t)/1000)
		}
		for i, rpm := range frame.FanSpeeds {
			fmt.Printf("  fan %d: %d rpm\n", i, rpm)
		}
		if frame.Flow != 0 {
			fmt.Printf("  flow: %.1f l/h\n", float64(frame.Flow)/10)
		}
		fmt.Println()
	}
}
