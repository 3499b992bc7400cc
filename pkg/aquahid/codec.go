// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import "encoding/binary"

// Endianness selects the byte order of a model's 16-bit fields. Modern
// models are big-endian; the legacy analog-style controllers are
// little-endian.
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

// TempNotAvailable is returned by DecodeTemp for disconnected sensors.
const TempNotAvailable = int32(-1 << 31)

// SensorDisconnected is the raw value most models report for an unplugged
// temperature sensor.
const SensorDisconnected = 0x7FFF

// DecodeU16 reads an unsigned 16-bit field at offset.
func DecodeU16(buf []byte, offset int, order Endianness) uint16 {
	if order == LittleEndian {
		return binary.LittleEndian.Uint16(buf[offset:])
	}
	return binary.BigEndian.Uint16(buf[offset:])
}

// DecodeS16 reads a two's-complement 16-bit field at offset, sign-extended.
func DecodeS16(buf []byte, offset int, order Endianness) int32 {
	return int32(int16(DecodeU16(buf, offset, order)))
}

// PutU16 stores a 16-bit field at offset.
func PutU16(buf []byte, offset int, v uint16, order Endianness) {
	if order == LittleEndian {
		binary.LittleEndian.PutUint16(buf[offset:], v)
		return
	}
	binary.BigEndian.PutUint16(buf[offset:], v)
}

// DecodeTemp reads a temperature field and converts it from raw device
// units to millidegrees using the sensor's scale. Returns
// (TempNotAvailable, false) when the raw value equals the sentinel.
func DecodeTemp(buf []byte, offset int, order Endianness, sentinel uint16, scale int32) (int32, bool) {
	raw := DecodeU16(buf, offset, order)
	if sentinel != 0 && raw == sentinel {
		return TempNotAvailable, false
	}
	return int32(int16(raw)) * scale, true
}

// PercentToPWM converts a centi-percent speed field (10000 = 100.00%) to an
// 8-bit PWM duty value, rounding to nearest.
func PercentToPWM(centiPercent uint16) uint8 {
	v := (uint32(centiPercent)*255 + 5000) / 10000
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// PWMToPercent converts an 8-bit PWM duty value to centi-percent, rounding
// to nearest. Inverse of PercentToPWM to within one LSB.
func PWMToPercent(pwm uint8) uint16 {
	return uint16((uint32(pwm)*10000 + 127) / 255)
}

// PeriodToRPM converts an inverse-period speed field of the legacy analog
// models to RPM. The calibration constant is per-channel descriptor data.
// A raw value of zero means the rotor is stopped; implausibly short
// periods saturate at the field maximum instead of wrapping.
func PeriodToRPM(raw uint16, calibration uint32) uint16 {
	if raw == 0 {
		return 0
	}
	rpm := calibration / uint32(raw)
	if rpm > 65535 {
		return 65535
	}
	return uint16(rpm)
}
