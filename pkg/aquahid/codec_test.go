// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import "testing"

// ============================================================
// 16-bit Field Codec Tests
// ============================================================

func TestDecodeU16_Endianness(t *testing.T) {
	buf := []byte{0x00, 0x12, 0x34, 0x00}

	if v := DecodeU16(buf, 1, BigEndian); v != 0x1234 {
		t.Errorf("big-endian: expected 0x1234, got 0x%04X", v)
	}
	if v := DecodeU16(buf, 1, LittleEndian); v != 0x3412 {
		t.Errorf("little-endian: expected 0x3412, got 0x%04X", v)
	}
}

func TestDecodeS16_SignExtension(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []byte
		expected int32
	}{
		{"positive", []byte{0x00, 0x64}, 100},
		{"negative", []byte{0xFF, 0x38}, -200},
		{"minimum", []byte{0x80, 0x00}, -32768},
		{"zero", []byte{0x00, 0x00}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := DecodeS16(tt.bytes, 0, BigEndian); v != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, v)
			}
		})
	}
}

func TestPutU16_RoundTrip(t *testing.T) {
	for _, order := range []Endianness{BigEndian, LittleEndian} {
		buf := make([]byte, 4)
		PutU16(buf, 1, 0xBEEF, order)
		if v := DecodeU16(buf, 1, order); v != 0xBEEF {
			t.Errorf("order %v: round trip gave 0x%04X", order, v)
		}
		if buf[0] != 0 || buf[3] != 0 {
			t.Errorf("order %v: neighboring bytes touched: % X", order, buf)
		}
	}
}

// ============================================================
// Temperature Codec Tests
// ============================================================

func TestDecodeTemp(t *testing.T) {
	tests := []struct {
		name      string
		bytes     []byte
		expected  int32
		available bool
	}{
		{"100 hundredths is 1000 millidegrees", []byte{0x00, 0x64}, 1000, true},
		{"disconnected sentinel", []byte{0x7F, 0xFF}, TempNotAvailable, false},
		{"below zero", []byte{0xFF, 0x38}, -2000, true},
		{"zero", []byte{0x00, 0x00}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := DecodeTemp(tt.bytes, 0, BigEndian, SensorDisconnected, 10)
			if ok != tt.available {
				t.Fatalf("availability: expected %t, got %t", tt.available, ok)
			}
			if v != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, v)
			}
		})
	}
}

func TestDecodeTemp_NoSentinel(t *testing.T) {
	// A model without a sentinel decodes 0x7FFF as a real reading
	v, ok := DecodeTemp([]byte{0x7F, 0xFF}, 0, BigEndian, 0, 10)
	if !ok {
		t.Fatal("expected reading to be available")
	}
	if v != 32767*10 {
		t.Errorf("expected %d, got %d", 32767*10, v)
	}
}

// ============================================================
// PWM Codec Tests
// ============================================================

func TestPWMRoundTrip(t *testing.T) {
	// Every duty value must survive a percent round trip to within 1 LSB
	for x := 0; x <= 255; x++ {
		got := PercentToPWM(PWMToPercent(uint8(x)))
		diff := int(got) - x
		if diff < -1 || diff > 1 {
			t.Errorf("PWM %d round-tripped to %d", x, got)
		}
	}
}

func TestPercentToPWM_Bounds(t *testing.T) {
	tests := []struct {
		name         string
		centiPercent uint16
		expected     uint8
	}{
		{"zero", 0, 0},
		{"full scale", 10000, 255},
		{"half scale", 5000, 128},
		{"over range clamps", 12000, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := PercentToPWM(tt.centiPercent); v != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, v)
			}
		})
	}
}

func TestPWMToPercent_Bounds(t *testing.T) {
	if v := PWMToPercent(0); v != 0 {
		t.Errorf("PWMToPercent(0) = %d", v)
	}
	if v := PWMToPercent(255); v != 10000 {
		t.Errorf("PWMToPercent(255) = %d", v)
	}
}

// ============================================================
// Legacy RPM Codec Tests
// ============================================================

func TestPeriodToRPM(t *testing.T) {
	tests := []struct {
		name        string
		raw         uint16
		calibration uint32
		expected    uint16
	}{
		{"stopped rotor", 0, 5646000, 0},
		{"nominal fan", 2823, 5646000, 2000},
		{"nominal pump", 22500, 45000000, 2000},
		{"short period saturates", 10, 5646000, 65535},
		{"short pump period saturates", 100, 45000000, 65535},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := PeriodToRPM(tt.raw, tt.calibration); v != tt.expected {
				t.Errorf("expected %d rpm, got %d", tt.expected, v)
			}
		})
	}
}
