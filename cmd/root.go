// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Device selection flags
	vendorHex    string
	productHex   string
	deviceSerial string
	ifaceNumber  int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "aquaflow",
	Short: "Aquacomputer HID telemetry and control",
	Long: `Aquaflow - telemetry and control for Aquacomputer liquid-cooling hardware.

Decodes the periodic sensor reports of supported pumps, fan controllers and
flow sensors (D5 Next, Octo, Quadro, Farbwerk 360, Highflow Next, Aquaero
and the legacy Poweradjust / Aquastream XT models) and edits device
configuration via checksummed read-modify-write transactions.

Device selection:
  --product f00e [--serial NNNNN-NNNNN] [--iface N]

Some models enumerate keyboard-emulation sub-devices next to the telemetry
interface; --iface selects between them where the model table does not
already pin one down.

For the telemetry bridge (serve/watch), the password is read from the
AQUAFLOW_PASSWORD environment variable, or prompted interactively if not
set. A --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version: "1.2.0",
}

func init() {
	// Device selection flags
	rootCmd.PersistentFlags().StringVar(&vendorHex, "vendor", "0c70", "USB vendor ID (hex)")
	rootCmd.PersistentFlags().StringVarP(&productHex, "product", "p", "", "USB product ID (hex, empty = first supported device)")
	rootCmd.PersistentFlags().StringVar(&deviceSerial, "serial", "", "USB serial number")
	rootCmd.PersistentFlags().IntVar(&ifaceNumber, "iface", -1, "HID interface number (-1 = per model table)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
