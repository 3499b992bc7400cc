// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

// Package hiddev implements the feature-report transport over hidapi. It
// knows nothing about the device protocol; sessions consume it through the
// aquahid.Transport interface.
package hiddev

import (
	"context"
	"fmt"
	"time"

	"github.com/sstallion/go-hid"
)

// readTimeout bounds each blocking input-report read so the delivery loop
// can notice cancellation.
const readTimeout = 500 * time.Millisecond

// maxInputReport is larger than any sensor report the supported devices
// push.
const maxInputReport = 1024

// Info describes one enumerated HID interface.
type Info struct {
	Path      string
	VendorID  uint16
	ProductID uint16
	Serial    string
	Product   string
	Interface int
}

// List enumerates HID interfaces matching vendor/product. Zero matches any.
func List(vendor, product uint16) ([]Info, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hidapi init: %v", err)
	}

	var out []Info
	err := hid.Enumerate(vendor, product, func(info *hid.DeviceInfo) error {
		out = append(out, Info{
			Path:      info.Path,
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Serial:    info.SerialNbr,
			Product:   info.ProductStr,
			Interface: info.InterfaceNbr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hidapi enumerate: %v", err)
	}
	return out, nil
}

// Device is an open HID interface. It satisfies aquahid.Transport.
type Device struct {
	dev  *hid.Device
	info Info
}

// Open opens the HID interface matching vendor/product, an optional serial
// number and an interface-number discriminator (-1 accepts any interface).
func Open(vendor, product uint16, serial string, iface int) (*Device, error) {
	infos, err := List(vendor, product)
	if err != nil {
		return nil, err
	}

	for _, info := range infos {
		if serial != "" && info.Serial != serial {
			continue
		}
		if iface >= 0 && info.Interface != iface {
			continue
		}
		dev, err := hid.OpenPath(info.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %v", info.Path, err)
		}
		return &Device{dev: dev, info: info}, nil
	}
	return nil, fmt.Errorf("no HID interface for %04x:%04x (serial %q, interface %d)",
		vendor, product, serial, iface)
}

// Info returns the enumeration record the device was opened from.
func (d *Device) Info() Info {
	return d.info
}

// Close releases the HID handle.
func (d *Device) Close() error {
	return d.dev.Close()
}

// GetFeatureReport issues a blocking feature-report read. buf[0] is set to
// the report ID before the request, per the hidapi convention; the filled
// buffer includes the ID byte.
func (d *Device) GetFeatureReport(reportID byte, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, fmt.Errorf("empty feature report buffer")
	}
	buf[0] = reportID
	return d.dev.GetFeatureReport(buf)
}

// SetFeatureReport issues a blocking feature-report write. buf must carry
// the report ID at index 0; the caller's report buffers already do.
func (d *Device) SetFeatureReport(reportID byte, buf []byte) error {
	if len(buf) == 0 || buf[0] != reportID {
		report := make([]byte, len(buf)+1)
		report[0] = reportID
		copy(report[1:], buf)
		buf = report
	}
	if _, err := d.dev.SendFeatureReport(buf); err != nil {
		return err
	}
	return nil
}

// ReadLoop delivers unsolicited input reports to handler until the context
// is done or the device read fails hard. The first byte of every report is
// its ID; the devices push sensor reports about once a second.
func (d *Device) ReadLoop(ctx context.Context, handler func(reportID byte, data []byte)) error {
	buf := make([]byte, maxInputReport)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := d.dev.ReadWithTimeout(buf, readTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read input report: %v", err)
		}
		if n == 0 {
			continue // timeout, poll cancellation again
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		handler(data[0], data)
	}
}
