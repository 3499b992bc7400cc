// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device identity",
	Long: `Read the device's serial number, firmware version and power cycle counter
from its periodic sensor report.`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	sess, dev, desc, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go dev.ReadLoop(ctx, sess.HandlePeriodicReport)

	if err := sess.WaitReady(ctx); err != nil {
		return fmt.Errorf("no sensor report received: %v", err)
	}

	fmt.Printf("Model:    %s\n", desc.Name)

	if serial, err := sess.SerialNumber(); err == nil {
		fmt.Printf("Serial:   %s\n", serial)
	} else if !errors.Is(err, aquahid.ErrUnsupportedOperation) {
		return err
	}

	if fw, err := sess.FirmwareVersion(); err == nil {
		fmt.Printf("Firmware: %d\n", fw)
	} else if !errors.Is(err, aquahid.ErrUnsupportedOperation) {
		return err
	}

	if cycles, err := sess.PowerCycles(); err == nil {
		fmt.Printf("Power cycles: %d\n", cycles)
	} else if !errors.Is(err, aquahid.ErrUnsupportedOperation) {
		return err
	}

	return nil
}
