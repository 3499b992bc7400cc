// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"fmt"
	"sort"
	"time"
)

// Model identifies a supported device model.
type Model int

const (
	ModelD5Next Model = iota
	ModelFarbwerk360
	ModelOcto
	ModelQuadro
	ModelHighflowNext
	ModelAquaero
	ModelPoweradjust3
	ModelAquastreamXT
)

// FanMode is the control mode of a fan channel on curve-capable models.
type FanMode uint8

const (
	FanModeManual      FanMode = 0 // hold the manual setpoint
	FanModeCurve       FanMode = 1 // follow the device-resident curve
	FanModeFollow      FanMode = 2 // mirror another channel
	FanModeMaxFallback FanMode = 3 // run at fallback (100%) power
)

// TempSensorSpec locates one temperature sensor in the periodic report.
// Scale converts raw device units to millidegrees. Sentinel is the raw
// "sensor not connected" value, 0 if the model has none.
type TempSensorSpec struct {
	Label    string
	Offset   int
	Scale    int32
	Sentinel uint16
}

// FanSensorSpec locates a fan channel's readings in the periodic report.
// Offsets of fields a model does not report are -1. A nonzero Calibration
// marks a legacy inverse-rotor-period speed encoding, converted with
// PeriodToRPM; the constant differs between pump and fan channels on the
// same model.
type FanSensorSpec struct {
	SpeedOffset   int
	VoltageOffset int
	CurrentOffset int
	PowerOffset   int
	Calibration   uint32
}

// FanCurveSpec locates a fan channel's curve control block in the
// configuration report. Mode flags are explicit bit positions within the
// flags byte, never language-level bitfields.
type FanCurveSpec struct {
	ModeOffset          int
	FlagsOffset         int
	HoldMinBit          uint8
	StartBoostBit       uint8
	MinPowerOffset      int
	MaxPowerOffset      int
	FallbackPowerOffset int
	CurveTempOffset     int // CurvePoints consecutive u16 centidegree values
	CurvePowerOffset    int // CurvePoints consecutive u16 centi-percent values
	CurvePoints         int
}

// FanSpec describes one fan or pump channel. CtrlOffset is the manual
// setpoint u16 (centi-percent) in the configuration report, -1 for channels
// without direct control.
type FanSpec struct {
	Label      string
	Sensor     FanSensorSpec
	CtrlOffset int
	Curve      *FanCurveSpec
}

// FlowSensorSpec locates a coolant flow reading (decilitres/hour).
type FlowSensorSpec struct {
	Offset int
}

// RailSpec locates a standalone voltage rail reading (raw ×10 → mV).
type RailSpec struct {
	Label  string
	Offset int
}

// DeviceDescriptor is the immutable per-model protocol layout. All offsets
// are indices into the full report buffer, whose first byte is the report ID.
type DeviceDescriptor struct {
	Name      string
	Model     Model
	VendorID  uint16
	ProductID uint16

	// Interface restricts lookup to one HID interface number for products
	// that enumerate extra sub-devices (keyboard emulation). -1 accepts any.
	Interface int

	Order Endianness

	PeriodicReportID   byte
	PeriodicReportSize int

	// ConfigReportSize of 0 marks a sensor-only model.
	ConfigReportID   byte
	ConfigReportSize int
	Checksum         *ChecksumRange

	// CommitReport is sent verbatim after every configuration write. The
	// vendor software always sends it; omitting it risks the device not
	// applying the change.
	CommitReportID byte
	CommitReport   []byte

	// MinCtrlInterval is the required spacing between control transactions,
	// 0 for models without a rate limit.
	MinCtrlInterval time.Duration

	// Offsets of the identification fields in the periodic report, -1 when
	// the model does not report them. The serial number's second part sits
	// two bytes after the first.
	SerialOffset      int
	FirmwareOffset    int
	PowerCyclesOffset int

	Temps []TempSensorSpec
	Fans  []FanSpec
	Flow  *FlowSensorSpec
	Rails []RailSpec

	// Water sensing extras of the flow-meter models, -1 when absent.
	QualityOffset      int
	ConductivityOffset int
}

// HasConfig reports whether the model exposes a writable configuration
// report.
func (d *DeviceDescriptor) HasConfig() bool {
	return d.ConfigReportSize > 0
}

// span is one claimed byte range used by the construction-time overlap check.
type span struct {
	start, length int
	name          string
}

// validate checks that every offset lies inside its report and that no two
// unrelated fields overlap. Called once at table construction; a failure is
// a programming error in the table, so callers panic on it.
func (d *DeviceDescriptor) validate() error {
	var sensor, config []span

	claim := func(list *[]span, start, length int, name string) {
		*list = append(*list, span{start, length, name})
	}

	if d.SerialOffset >= 0 {
		claim(&sensor, d.SerialOffset, 4, "serial")
	}
	if d.FirmwareOffset >= 0 {
		claim(&sensor, d.FirmwareOffset, 2, "firmware")
	}
	if d.PowerCyclesOffset >= 0 {
		claim(&sensor, d.PowerCyclesOffset, 4, "power cycles")
	}
	for i, t := range d.Temps {
		claim(&sensor, t.Offset, 2, fmt.Sprintf("temp[%d]", i))
	}
	for i, f := range d.Fans {
		for _, part := range []struct {
			off  int
			name string
		}{
			{f.Sensor.SpeedOffset, "speed"},
			{f.Sensor.VoltageOffset, "voltage"},
			{f.Sensor.CurrentOffset, "current"},
			{f.Sensor.PowerOffset, "power"},
		} {
			if part.off >= 0 {
				claim(&sensor, part.off, 2, fmt.Sprintf("fan[%d].%s", i, part.name))
			}
		}
		if f.CtrlOffset >= 0 {
			claim(&config, f.CtrlOffset, 2, fmt.Sprintf("fan[%d].ctrl", i))
		}
		if c := f.Curve; c != nil {
			claim(&config, c.ModeOffset, 1, fmt.Sprintf("fan[%d].mode", i))
			claim(&config, c.FlagsOffset, 1, fmt.Sprintf("fan[%d].flags", i))
			claim(&config, c.MinPowerOffset, 2, fmt.Sprintf("fan[%d].min", i))
			claim(&config, c.MaxPowerOffset, 2, fmt.Sprintf("fan[%d].max", i))
			claim(&config, c.FallbackPowerOffset, 2, fmt.Sprintf("fan[%d].fallback", i))
			claim(&config, c.CurveTempOffset, 2*c.CurvePoints, fmt.Sprintf("fan[%d].curve temps", i))
			claim(&config, c.CurvePowerOffset, 2*c.CurvePoints, fmt.Sprintf("fan[%d].curve powers", i))
		}
	}
	if d.Flow != nil {
		claim(&sensor, d.Flow.Offset, 2, "flow")
	}
	for i, r := range d.Rails {
		claim(&sensor, r.Offset, 2, fmt.Sprintf("rail[%d]", i))
	}
	if d.QualityOffset >= 0 {
		claim(&sensor, d.QualityOffset, 2, "quality")
	}
	if d.ConductivityOffset >= 0 {
		claim(&sensor, d.ConductivityOffset, 2, "conductivity")
	}
	if d.Checksum != nil {
		if !d.HasConfig() {
			return fmt.Errorf("%s: checksum range without config report", d.Name)
		}
		cs := d.Checksum
		if cs.Start < 0 || cs.Start+cs.Length > d.ConfigReportSize {
			return fmt.Errorf("%s: checksum range outside config report", d.Name)
		}
		if cs.WriteOffset < 0 || cs.WriteOffset+2 > d.ConfigReportSize {
			return fmt.Errorf("%s: checksum write offset outside config report", d.Name)
		}
	}

	if err := checkSpans(d.Name, "sensor report", sensor, d.PeriodicReportSize); err != nil {
		return err
	}
	if len(config) > 0 && !d.HasConfig() {
		return fmt.Errorf("%s: control offsets on a sensor-only model", d.Name)
	}
	return checkSpans(d.Name, "config report", config, d.ConfigReportSize)
}

func checkSpans(model, report string, spans []span, size int) error {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i, s := range spans {
		if s.start < 0 || s.start+s.length > size {
			return fmt.Errorf("%s: %s field %s [0x%X..0x%X) outside report size 0x%X",
				model, report, s.name, s.start, s.start+s.length, size)
		}
		if i > 0 {
			prev := spans[i-1]
			if prev.start+prev.length > s.start {
				return fmt.Errorf("%s: %s fields %s and %s overlap", model, report, prev.name, s.name)
			}
		}
	}
	return nil
}

// Lookup returns the descriptor matching a vendor/product identity. The
// iface discriminator selects between logical sub-devices of products that
// enumerate more than one; pass -1 only if the caller has already isolated
// the telemetry interface.
func Lookup(vendor, product uint16, iface int) (*DeviceDescriptor, error) {
	for _, d := range descriptors {
		if d.VendorID != vendor || d.ProductID != product {
			continue
		}
		if d.Interface >= 0 && iface >= 0 && iface != d.Interface {
			return nil, fmt.Errorf("%04x:%04x interface %d: %w", vendor, product, iface, ErrWrongSubDevice)
		}
		return d, nil
	}
	return nil, fmt.Errorf("%04x:%04x: %w", vendor, product, ErrDeviceNotRecognized)
}

// Descriptors returns the full supported-model table.
func Descriptors() []*DeviceDescriptor {
	out := make([]*DeviceDescriptor, len(descriptors))
	copy(out, descriptors)
	return out
}
