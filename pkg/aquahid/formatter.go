// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"fmt"
	"strings"
)

// FormatSnapshot renders a decoded snapshot for a model in human-readable
// form, one reading per line.
func FormatSnapshot(desc *DeviceDescriptor, snap *SensorSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s\n", snap.LastUpdated.Format("15:04:05.000"), desc.Name)

	for i, t := range desc.Temps {
		if snap.Temps[i] == TempNotAvailable {
			fmt.Fprintf(&b, "  %-18s n/a\n", t.Label)
			continue
		}
		fmt.Fprintf(&b, "  %-18s %.2f °C\n", t.Label, float64(snap.Temps[i])/1000)
	}

	for i, f := range desc.Fans {
		var parts []string
		if f.Sensor.SpeedOffset >= 0 {
			parts = append(parts, fmt.Sprintf("%d rpm", snap.FanSpeeds[i]))
		}
		if f.Sensor.VoltageOffset >= 0 {
			parts = append(parts, fmt.Sprintf("%.2f V", float64(snap.FanVoltages[i])/1000))
		}
		if f.Sensor.CurrentOffset >= 0 {
			parts = append(parts, fmt.Sprintf("%d mA", snap.FanCurrents[i]))
		}
		if f.Sensor.PowerOffset >= 0 {
			parts = append(parts, fmt.Sprintf("%.2f W", float64(snap.FanPowers[i])/1e6))
		}
		fmt.Fprintf(&b, "  %-18s %s\n", f.Label, strings.Join(parts, "  "))
	}

	for i, r := range desc.Rails {
		fmt.Fprintf(&b, "  %-18s %.2f V\n", r.Label, float64(snap.Rails[i])/1000)
	}

	if desc.Flow != nil {
		fmt.Fprintf(&b, "  %-18s %.1f l/h\n", "Flow", float64(snap.Flow)/10)
	}
	if desc.QualityOffset >= 0 {
		fmt.Fprintf(&b, "  %-18s %d %%\n", "Water quality", snap.WaterQuality)
	}
	if desc.ConductivityOffset >= 0 {
		fmt.Fprintf(&b, "  %-18s %d nS/cm\n", "Conductivity", snap.Conductivity)
	}

	return b.String()
}

// FormatFanMode returns the human-readable name for a fan control mode.
func FormatFanMode(m FanMode) string {
	switch m {
	case FanModeManual:
		return "MANUAL"
	case FanModeCurve:
		return "CURVE"
	case FanModeFollow:
		return "FOLLOW"
	case FanModeMaxFallback:
		return "FALLBACK"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(m))
	}
}

// FormatCurveParams renders curve parameters on one line.
func FormatCurveParams(p CurveParams) string {
	return fmt.Sprintf("min=%.2f%% max=%.2f%% fallback=%.2f%% hold-min=%t start-boost=%t",
		float64(p.MinPower)/100, float64(p.MaxPower)/100, float64(p.FallbackPower)/100,
		p.HoldMinPower, p.StartBoost)
}

// FormatDump renders a raw configuration buffer as a hex dump, 16 bytes per
// row with offsets.
func FormatDump(buf []byte) string {
	var b strings.Builder
	for i := 0; i < len(buf); i += 16 {
		end := i + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(&b, "%04x:", i)
		for _, c := range buf[i:end] {
			fmt.Fprintf(&b, " %02x", c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
