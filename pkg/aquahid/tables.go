// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"fmt"
	"time"
)

// Aquacomputer USB vendor ID.
const VendorAquacomputer = 0x0c70

// The vendor software always sends this report after writing a
// configuration report. Its exact purpose is undocumented; the devices may
// not persist or apply changes without it.
var commitReport = []byte{
	0x02, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x34, 0xC6,
}

// fanCurve builds the curve control block layout shared by the Octo and
// Quadro fan controllers. Blocks are 0x55 bytes apart; base is the block
// start in the configuration report.
func fanCurve(base int) *FanCurveSpec {
	return &FanCurveSpec{
		ModeOffset:          base + 0x00,
		FlagsOffset:         base + 0x01,
		HoldMinBit:          0,
		StartBoostBit:       1,
		MinPowerOffset:      base + 0x02,
		MaxPowerOffset:      base + 0x04,
		FallbackPowerOffset: base + 0x06,
		CurveTempOffset:     base + 0x0A,
		CurvePowerOffset:    base + 0x2A,
		CurvePoints:         16,
	}
}

// ctrlFan builds a fan channel for the curve-capable controllers: sensor
// block at sensorBase (percent +0, voltage +2, current +4, power +6, speed
// +8), control block at ctrlBase.
func ctrlFan(label string, sensorBase, ctrlBase int) FanSpec {
	return FanSpec{
		Label: label,
		Sensor: FanSensorSpec{
			SpeedOffset:   sensorBase + 0x08,
			VoltageOffset: sensorBase + 0x02,
			CurrentOffset: sensorBase + 0x04,
			PowerOffset:   sensorBase + 0x06,
		},
		CtrlOffset: ctrlBase + 0x08,
		Curve:      fanCurve(ctrlBase),
	}
}

var d5next = &DeviceDescriptor{
	Name:      "D5 Next",
	Model:     ModelD5Next,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf00e,
	Interface: -1,
	Order:     BigEndian,

	PeriodicReportID:   0x01,
	PeriodicReportSize: 0x9E,
	ConfigReportID:     0x03,
	ConfigReportSize:   0x329,
	Checksum:           &ChecksumRange{Start: 0x01, Length: 0x326, WriteOffset: 0x327},
	CommitReportID:     0x02,
	CommitReport:       commitReport,

	SerialOffset:      0x03,
	FirmwareOffset:    0x0D,
	PowerCyclesOffset: 0x18,

	Temps: []TempSensorSpec{
		{Label: "Coolant temp", Offset: 0x57, Scale: 10, Sentinel: SensorDisconnected},
	},
	Fans: []FanSpec{
		{
			Label: "Pump",
			Sensor: FanSensorSpec{
				SpeedOffset:   0x74,
				VoltageOffset: 0x6E,
				CurrentOffset: 0x70,
				PowerOffset:   0x72,
			},
			CtrlOffset: 0x97,
		},
		{
			Label: "Fan",
			Sensor: FanSensorSpec{
				SpeedOffset:   0x67,
				VoltageOffset: 0x61,
				CurrentOffset: 0x63,
				PowerOffset:   0x65,
			},
			CtrlOffset: 0x42,
		},
	},
	Rails: []RailSpec{
		{Label: "+5V voltage", Offset: 0x39},
	},
	QualityOffset:      -1,
	ConductivityOffset: -1,
}

var farbwerk360 = &DeviceDescriptor{
	Name:      "Farbwerk 360",
	Model:     ModelFarbwerk360,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf010,
	Interface: -1,
	Order:     BigEndian,

	PeriodicReportID:   0x01,
	PeriodicReportSize: 0xB6,

	SerialOffset:      0x03,
	FirmwareOffset:    0x0D,
	PowerCyclesOffset: -1,

	Temps: []TempSensorSpec{
		{Label: "Sensor 1", Offset: 0x32, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 2", Offset: 0x34, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 3", Offset: 0x36, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 4", Offset: 0x38, Scale: 10, Sentinel: SensorDisconnected},
	},
	QualityOffset:      -1,
	ConductivityOffset: -1,
}

var octo = &DeviceDescriptor{
	Name:      "Octo",
	Model:     ModelOcto,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf011,
	Interface: -1,
	Order:     BigEndian,

	PeriodicReportID:   0x01,
	PeriodicReportSize: 0xE5,
	ConfigReportID:     0x03,
	ConfigReportSize:   0x65F,
	Checksum:           &ChecksumRange{Start: 0x01, Length: 0x65C, WriteOffset: 0x65D},
	CommitReportID:     0x02,
	CommitReport:       commitReport,

	SerialOffset:      0x03,
	FirmwareOffset:    0x0D,
	PowerCyclesOffset: -1,

	Temps: []TempSensorSpec{
		{Label: "Sensor 1", Offset: 0x3D, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 2", Offset: 0x3F, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 3", Offset: 0x41, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 4", Offset: 0x43, Scale: 10, Sentinel: SensorDisconnected},
	},
	Fans: []FanSpec{
		ctrlFan("Fan 1", 0x7D, 0x5B),
		ctrlFan("Fan 2", 0x8A, 0xB0),
		ctrlFan("Fan 3", 0x97, 0x105),
		ctrlFan("Fan 4", 0xA4, 0x15A),
		ctrlFan("Fan 5", 0xB1, 0x1AF),
		ctrlFan("Fan 6", 0xBE, 0x204),
		ctrlFan("Fan 7", 0xCB, 0x259),
		ctrlFan("Fan 8", 0xD8, 0x2AE),
	},
	QualityOffset:      -1,
	ConductivityOffset: -1,
}

var quadro = &DeviceDescriptor{
	Name:      "Quadro",
	Model:     ModelQuadro,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf00d,
	Interface: -1,
	Order:     BigEndian,

	PeriodicReportID:   0x01,
	PeriodicReportSize: 0xA4,
	ConfigReportID:     0x03,
	ConfigReportSize:   0x3C1,
	Checksum:           &ChecksumRange{Start: 0x01, Length: 0x3BE, WriteOffset: 0x3BF},
	CommitReportID:     0x02,
	CommitReport:       commitReport,

	SerialOffset:      0x03,
	FirmwareOffset:    0x0D,
	PowerCyclesOffset: -1,

	Temps: []TempSensorSpec{
		{Label: "Sensor 1", Offset: 0x34, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 2", Offset: 0x36, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 3", Offset: 0x38, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 4", Offset: 0x3A, Scale: 10, Sentinel: SensorDisconnected},
	},
	Fans: []FanSpec{
		ctrlFan("Fan 1", 0x70, 0x36),
		ctrlFan("Fan 2", 0x7D, 0x8B),
		ctrlFan("Fan 3", 0x8A, 0xE0),
		ctrlFan("Fan 4", 0x97, 0x135),
	},
	Flow:               &FlowSensorSpec{Offset: 0x6E},
	QualityOffset:      -1,
	ConductivityOffset: -1,
}

var highflowNext = &DeviceDescriptor{
	Name:      "Highflow Next",
	Model:     ModelHighflowNext,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf012,
	Interface: -1,
	Order:     BigEndian,

	PeriodicReportID:   0x01,
	PeriodicReportSize: 0x97,

	SerialOffset:      0x03,
	FirmwareOffset:    0x0D,
	PowerCyclesOffset: -1,

	Temps: []TempSensorSpec{
		{Label: "Coolant temp", Offset: 0x85, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "External sensor", Offset: 0x87, Scale: 10, Sentinel: SensorDisconnected},
	},
	Flow:               &FlowSensorSpec{Offset: 0x81},
	QualityOffset:      0x89,
	ConductivityOffset: 0x8F,
}

var aquaero = &DeviceDescriptor{
	Name:      "Aquaero",
	Model:     ModelAquaero,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf001,
	Interface: 2, // interfaces 0 and 1 are keyboard emulation
	Order:     BigEndian,

	PeriodicReportID:   0x01,
	PeriodicReportSize: 0x1C3,
	ConfigReportID:     0x0B,
	ConfigReportSize:   0xA93,
	// Large legacy controller, no checksum over the config report.

	MinCtrlInterval: 200 * time.Millisecond,

	SerialOffset:      0x07,
	FirmwareOffset:    0x0B,
	PowerCyclesOffset: -1,

	Temps: []TempSensorSpec{
		{Label: "Sensor 1", Offset: 0x65, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 2", Offset: 0x67, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 3", Offset: 0x69, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 4", Offset: 0x6B, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 5", Offset: 0x6D, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 6", Offset: 0x6F, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 7", Offset: 0x71, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Sensor 8", Offset: 0x73, Scale: 10, Sentinel: SensorDisconnected},
	},
	Fans: []FanSpec{
		{Label: "Fan 1", Sensor: sensorOnlyFan(0x167), CtrlOffset: 0x20C},
		{Label: "Fan 2", Sensor: sensorOnlyFan(0x16F), CtrlOffset: 0x220},
		{Label: "Fan 3", Sensor: sensorOnlyFan(0x177), CtrlOffset: 0x234},
		{Label: "Fan 4", Sensor: sensorOnlyFan(0x17F), CtrlOffset: 0x248},
	},
	QualityOffset:      -1,
	ConductivityOffset: -1,
}

var poweradjust3 = &DeviceDescriptor{
	Name:      "Poweradjust 3",
	Model:     ModelPoweradjust3,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf0bd,
	Interface: -1,
	Order:     LittleEndian,

	PeriodicReportID:   0x02,
	PeriodicReportSize: 0x22,

	SerialOffset:      -1,
	FirmwareOffset:    -1,
	PowerCyclesOffset: -1,

	Temps: []TempSensorSpec{
		{Label: "External sensor", Offset: 0x03, Scale: 10, Sentinel: SensorDisconnected},
	},
	QualityOffset:      -1,
	ConductivityOffset: -1,
}

var aquastreamXT = &DeviceDescriptor{
	Name:      "Aquastream XT",
	Model:     ModelAquastreamXT,
	VendorID:  VendorAquacomputer,
	ProductID: 0xf0b6,
	Interface: -1,
	Order:     LittleEndian,

	PeriodicReportID:   0x04,
	PeriodicReportSize: 0x42,

	SerialOffset:      -1,
	FirmwareOffset:    0x32,
	PowerCyclesOffset: -1,

	Temps: []TempSensorSpec{
		{Label: "Fan IC temp", Offset: 0x08, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "External sensor", Offset: 0x0A, Scale: 10, Sentinel: SensorDisconnected},
		{Label: "Coolant temp", Offset: 0x0C, Scale: 10, Sentinel: SensorDisconnected},
	},
	// Speeds are inverse rotor periods; the pump and fan channels use
	// different conversion constants.
	Fans: []FanSpec{
		{
			Label: "Fan",
			Sensor: FanSensorSpec{
				SpeedOffset:   0x14,
				VoltageOffset: 0x1C,
				CurrentOffset: 0x1A,
				PowerOffset:   -1,
				Calibration:   5646000,
			},
			CtrlOffset: -1,
		},
		{
			Label: "Pump",
			Sensor: FanSensorSpec{
				SpeedOffset:   0x16,
				VoltageOffset: -1,
				CurrentOffset: -1,
				PowerOffset:   -1,
				Calibration:   45000000,
			},
			CtrlOffset: -1,
		},
	},
	QualityOffset:      -1,
	ConductivityOffset: -1,
}

func sensorOnlyFan(speedOffset int) FanSensorSpec {
	return FanSensorSpec{
		SpeedOffset:   speedOffset,
		VoltageOffset: -1,
		CurrentOffset: -1,
		PowerOffset:   -1,
	}
}

var descriptors = []*DeviceDescriptor{
	d5next,
	farbwerk360,
	octo,
	quadro,
	highflowNext,
	aquaero,
	poweradjust3,
	aquastreamXT,
}

func init() {
	for _, d := range descriptors {
		if err := d.validate(); err != nil {
			panic(fmt.Sprintf("aquahid: bad descriptor table: %v", err))
		}
	}
}
