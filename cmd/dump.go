// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
)

var dumpVerify bool

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Hex-dump the raw configuration report",
	Long: `Fetch the device's configuration report and print it as a hex dump.

With --verify, the embedded checksum is recomputed and compared against the
stored value. Useful when diagnosing rejected writes.`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVar(&dumpVerify, "verify", false, "Verify the embedded checksum")
}

func runDump(cmd *cobra.Command, args []string) error {
	sess, dev, desc, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	if !desc.HasConfig() {
		return fmt.Errorf("%s is a sensor-only model: %v", desc.Name, aquahid.ErrUnsupportedOperation)
	}

	var raw []byte
	err = sess.ReadConfig(func(buf []byte) error {
		raw = append([]byte(nil), buf...)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s configuration report (0x%02x, %d bytes):\n\n", desc.Name, desc.ConfigReportID, len(raw))
	fmt.Print(aquahid.FormatDump(raw))

	if dumpVerify && desc.Checksum != nil {
		stored := aquahid.DecodeU16(raw, desc.Checksum.WriteOffset, aquahid.BigEndian)
		computed := desc.Checksum.Compute(raw)
		if stored == computed {
			fmt.Printf("\nChecksum OK (0x%04x)\n", stored)
		} else {
			fmt.Printf("\nChecksum MISMATCH: stored 0x%04x, computed 0x%04x\n", stored, computed)
		}
	}
	return nil
}
