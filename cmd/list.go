// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
	"github.com/tidemark/aquaflow/pkg/hiddev"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected Aquacomputer HID devices",
	Long: `Enumerate HID devices matching the vendor/product filter and report which
ones the model table recognizes.

Unrecognized interfaces (keyboard emulation sub-devices, unknown products)
are hidden unless --all is given.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include unrecognized interfaces")
}

func runList(cmd *cobra.Command, args []string) error {
	vendor, err := parseHexID(vendorHex)
	if err != nil {
		return err
	}

	var product uint16
	if productHex != "" {
		product, err = parseHexID(productHex)
		if err != nil {
			return err
		}
	}

	infos, err := hiddev.List(vendor, product)
	if err != nil {
		return fmt.Errorf("HID enumeration failed: %v", err)
	}

	found := 0
	for _, info := range infos {
		desc, err := aquahid.Lookup(info.VendorID, info.ProductID, info.Interface)
		if err != nil {
			if listAll {
				fmt.Printf("%04x:%04x iface %d  serial %-12s  (unrecognized: %v)\n",
					info.VendorID, info.ProductID, info.Interface, info.Serial, err)
			}
			continue
		}
		found++
		fmt.Printf("%04x:%04x iface %d  serial %-12s  %s\n",
			info.VendorID, info.ProductID, info.Interface, info.Serial, desc.Name)
	}

	if found == 0 {
		fmt.Println("No recognized devices found.")
	}
	return nil
}
