// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs
//
// Aquaflow - Aquacomputer HID telemetry and control
//
// A CLI tool for decoding the periodic sensor reports of Aquacomputer
// liquid-cooling devices and editing their configuration.

package main

import (
	"os"

	"github.com/tidemark/aquaflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
