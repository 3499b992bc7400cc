// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/tidemark/aquaflow/pkg/aquahid"
	"github.com/tidemark/aquaflow/pkg/hiddev"
)

// parseHexID parses a 16-bit USB vendor/product ID given in hex, with or
// without a 0x prefix.
func parseHexID(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid hex ID %q: %v", s, err)
	}
	return uint16(v), nil
}

// selectDevice resolves the --vendor/--product/--serial/--iface flags to a
// single recognized HID device. With no --product, the first enumerated
// device that the model table recognizes is used.
func selectDevice() (hiddev.Info, *aquahid.DeviceDescriptor, error) {
	vendor, err := parseHexID(vendorHex)
	if err != nil {
		return hiddev.Info{}, nil, err
	}

	var product uint16
	if productHex != "" {
		product, err = parseHexID(productHex)
		if err != nil {
			return hiddev.Info{}, nil, err
		}
	}

	infos, err := hiddev.List(vendor, product)
	if err != nil {
		return hiddev.Info{}, nil, fmt.Errorf("HID enumeration failed: %v", err)
	}

	var lastErr error = aquahid.ErrDeviceNotRecognized
	for _, info := range infos {
		if deviceSerial != "" && info.Serial != deviceSerial {
			continue
		}
		if ifaceNumber >= 0 && info.Interface != ifaceNumber {
			continue
		}
		desc, err := aquahid.Lookup(info.VendorID, info.ProductID, info.Interface)
		if err != nil {
			lastErr = err
			continue
		}
		return info, desc, nil
	}

	return hiddev.Info{}, nil, fmt.Errorf("no matching device: %v", lastErr)
}

// OpenSession opens the selected device and wraps it in a session. The
// caller owns both and must close the session (which detaches cleanly)
// before closing the device.
func OpenSession() (*aquahid.Session, *hiddev.Device, *aquahid.DeviceDescriptor, error) {
	info, desc, err := selectDevice()
	if err != nil {
		return nil, nil, nil, err
	}

	dev, err := hiddev.Open(info.VendorID, info.ProductID, info.Serial, info.Interface)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s: %v", info.Path, err)
	}

	sess := aquahid.NewSession(desc, dev)
	return sess, dev, desc, nil
}

// GetPassword retrieves the bridge password from the environment or prompts
// the user with echo disabled.
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("AQUAFLOW_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}
