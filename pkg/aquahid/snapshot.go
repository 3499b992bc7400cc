// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"fmt"
	"time"
)

// SensorSnapshot is the decoded contents of the most recent periodic report.
// Snapshots are immutable once built; the session swaps in a fresh one per
// report.
type SensorSnapshot struct {
	// Temps holds millidegree readings, TempNotAvailable for disconnected
	// sensors.
	Temps []int32

	// Per fan channel. Entries for readings a model does not report are 0;
	// presence is decided by the descriptor, not the snapshot.
	FanSpeeds   []uint16 // RPM
	FanVoltages []int32  // mV
	FanCurrents []int32  // mA
	FanPowers   []int32  // µW

	// Rails holds standalone voltage rail readings in mV.
	Rails []int32

	Flow         int32 // decilitres/hour
	WaterQuality int32 // percent
	Conductivity int32 // nS/cm

	SerialNumber [2]uint16
	Firmware     uint16
	PowerCycles  uint32
	LastUpdated  time.Time
}

// SerialString renders the two-part serial number in the conventional
// NNNNN-NNNNN form.
func (s *SensorSnapshot) SerialString() string {
	return fmt.Sprintf("%05d-%05d", s.SerialNumber[0], s.SerialNumber[1])
}

// decodeSnapshot parses one full periodic report into a fresh snapshot.
// data must be at least desc.PeriodicReportSize bytes; the caller checks.
func decodeSnapshot(desc *DeviceDescriptor, data []byte, now time.Time) *SensorSnapshot {
	snap := &SensorSnapshot{
		Temps:       make([]int32, len(desc.Temps)),
		FanSpeeds:   make([]uint16, len(desc.Fans)),
		FanVoltages: make([]int32, len(desc.Fans)),
		FanCurrents: make([]int32, len(desc.Fans)),
		FanPowers:   make([]int32, len(desc.Fans)),
		Rails:       make([]int32, len(desc.Rails)),
		LastUpdated: now,
	}

	if desc.SerialOffset >= 0 {
		snap.SerialNumber[0] = DecodeU16(data, desc.SerialOffset, desc.Order)
		snap.SerialNumber[1] = DecodeU16(data, desc.SerialOffset+2, desc.Order)
	}
	if desc.FirmwareOffset >= 0 {
		snap.Firmware = DecodeU16(data, desc.FirmwareOffset, desc.Order)
	}
	if desc.PowerCyclesOffset >= 0 {
		snap.PowerCycles = decodeU32(data, desc.PowerCyclesOffset, desc.Order)
	}

	for i, t := range desc.Temps {
		snap.Temps[i], _ = DecodeTemp(data, t.Offset, desc.Order, t.Sentinel, t.Scale)
	}

	for i, f := range desc.Fans {
		if f.Sensor.SpeedOffset >= 0 {
			raw := DecodeU16(data, f.Sensor.SpeedOffset, desc.Order)
			if f.Sensor.Calibration != 0 {
				snap.FanSpeeds[i] = PeriodToRPM(raw, f.Sensor.Calibration)
			} else {
				snap.FanSpeeds[i] = raw
			}
		}
		if f.Sensor.VoltageOffset >= 0 {
			snap.FanVoltages[i] = int32(DecodeU16(data, f.Sensor.VoltageOffset, desc.Order)) * 10
		}
		if f.Sensor.CurrentOffset >= 0 {
			snap.FanCurrents[i] = int32(DecodeU16(data, f.Sensor.CurrentOffset, desc.Order))
		}
		if f.Sensor.PowerOffset >= 0 {
			snap.FanPowers[i] = int32(DecodeU16(data, f.Sensor.PowerOffset, desc.Order)) * 10000
		}
	}

	for i, r := range desc.Rails {
		snap.Rails[i] = int32(DecodeU16(data, r.Offset, desc.Order)) * 10
	}

	if desc.Flow != nil {
		snap.Flow = int32(DecodeU16(data, desc.Flow.Offset, desc.Order))
	}
	if desc.QualityOffset >= 0 {
		snap.WaterQuality = int32(DecodeU16(data, desc.QualityOffset, desc.Order))
	}
	if desc.ConductivityOffset >= 0 {
		snap.Conductivity = int32(DecodeU16(data, desc.ConductivityOffset, desc.Order))
	}

	return snap
}

func decodeU32(buf []byte, offset int, order Endianness) uint32 {
	if order == LittleEndian {
		return uint32(buf[offset]) | uint32(buf[offset+1])<<8 |
			uint32(buf[offset+2])<<16 | uint32(buf[offset+3])<<24
	}
	return uint32(buf[offset])<<24 | uint32(buf[offset+1])<<16 |
		uint32(buf[offset+2])<<8 | uint32(buf[offset+3])
}
