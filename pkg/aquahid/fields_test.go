// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"errors"
	"testing"
)

// curveModel is a synthetic curve-capable controller with one fan whose
// control block starts at 0x20.
func curveModel(t *testing.T) *DeviceDescriptor {
	t.Helper()
	d := &DeviceDescriptor{
		Name:      "curvemodel",
		VendorID:  0x0c70,
		ProductID: 0xfffe,
		Interface: -1,
		Order:     BigEndian,

		PeriodicReportID:   0x01,
		PeriodicReportSize: 0x20,
		ConfigReportID:     0x03,
		ConfigReportSize:   0x100,
		Checksum:           &ChecksumRange{Start: 1, Length: 0xF0, WriteOffset: 0xF2},
		CommitReportID:     0x02,
		CommitReport:       commitReport,

		SerialOffset:      -1,
		FirmwareOffset:    -1,
		PowerCyclesOffset: -1,

		Fans: []FanSpec{
			{
				Label:      "Fan 1",
				Sensor:     sensorOnlyFan(0x10),
				CtrlOffset: 0x28,
				Curve:      fanCurve(0x20),
			},
		},
		QualityOffset:      -1,
		ConductivityOffset: -1,
	}
	if err := d.validate(); err != nil {
		t.Fatalf("curve descriptor invalid: %v", err)
	}
	return d
}

func curveSession(t *testing.T) (*Session, *fakeTransport) {
	t.Helper()
	desc := curveModel(t)
	tr := &fakeTransport{config: make([]byte, desc.ConfigReportSize), commitID: desc.CommitReportID}
	tr.config[0] = desc.ConfigReportID
	s := NewSession(desc, tr)
	t.Cleanup(func() { s.Close() })
	return s, tr
}

// ============================================================
// PWM Setting Tests
// ============================================================

func TestSetPWM_WritesCentiPercent(t *testing.T) {
	s, tr := curveSession(t)

	if err := s.SetPWM(0, 255); err != nil {
		t.Fatal(err)
	}
	if v := DecodeU16(tr.config, 0x28, BigEndian); v != 10000 {
		t.Errorf("setpoint: expected 10000 centi-percent, got %d", v)
	}

	if err := s.SetPWM(0, 0); err != nil {
		t.Fatal(err)
	}
	if v := DecodeU16(tr.config, 0x28, BigEndian); v != 0 {
		t.Errorf("setpoint: expected 0, got %d", v)
	}
}

func TestPWM_ReadsSetpoint(t *testing.T) {
	s, tr := curveSession(t)
	PutU16(tr.config, 0x28, 5000, BigEndian)

	v, err := s.PWM(0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 128 {
		t.Errorf("expected duty 128 for 50.00%%, got %d", v)
	}
}

func TestSetPWM_UncontrollableChannel(t *testing.T) {
	desc, err := Lookup(VendorAquacomputer, 0xf0b6, -1) // Aquastream XT
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(desc, &fakeTransport{})
	defer s.Close()

	if err := s.SetPWM(0, 128); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}

// ============================================================
// Fan Mode Tests
// ============================================================

func TestFanMode_RoundTrip(t *testing.T) {
	s, tr := curveSession(t)

	if err := s.SetFanMode(0, FanModeCurve); err != nil {
		t.Fatal(err)
	}
	if tr.config[0x20] != byte(FanModeCurve) {
		t.Errorf("mode byte: expected %d, got %d", FanModeCurve, tr.config[0x20])
	}

	m, err := s.FanMode(0)
	if err != nil {
		t.Fatal(err)
	}
	if m != FanModeCurve {
		t.Errorf("expected FanModeCurve, got %s", FormatFanMode(m))
	}
}

func TestSetFanMode_InvalidValue(t *testing.T) {
	s, _ := curveSession(t)
	if err := s.SetFanMode(0, FanMode(9)); !errors.Is(err, ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue, got %v", err)
	}
}

func TestFanMode_ModelWithoutCurves(t *testing.T) {
	desc, err := Lookup(VendorAquacomputer, 0xf00e, -1) // D5 Next
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(desc, &fakeTransport{config: make([]byte, desc.ConfigReportSize)})
	defer s.Close()

	if _, err := s.FanMode(0); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}

// ============================================================
// Curve Point Tests
// ============================================================

func TestCurvePoint_RoundTrip(t *testing.T) {
	s, tr := curveSession(t)

	want := CurvePoint{Temp: 2500, Power: 7500} // 25.00 °C -> 75.00%
	if err := s.SetCurvePoint(0, 5, want); err != nil {
		t.Fatal(err)
	}
	if v := DecodeU16(tr.config, 0x2A+10, BigEndian); v != 2500 {
		t.Errorf("curve temp: expected 2500, got %d", v)
	}
	if v := DecodeU16(tr.config, 0x4A+10, BigEndian); v != 7500 {
		t.Errorf("curve power: expected 7500, got %d", v)
	}

	got, err := s.CurvePoint(0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCurvePoint_IndexBounds(t *testing.T) {
	s, _ := curveSession(t)

	if _, err := s.CurvePoint(0, 16); !errors.Is(err, ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue for index 16, got %v", err)
	}
	if _, err := s.CurvePoint(0, -1); !errors.Is(err, ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue for index -1, got %v", err)
	}
	if err := s.SetCurvePoint(0, 0, CurvePoint{Power: 10001}); !errors.Is(err, ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue for power over 100%%, got %v", err)
	}
}

// ============================================================
// Curve Parameter Tests
// ============================================================

func TestCurveParams_RoundTrip(t *testing.T) {
	s, tr := curveSession(t)

	// Unrelated flag bits must survive the read-modify-write
	tr.config[0x21] = 0x80

	want := CurveParams{
		MinPower:      2000,
		MaxPower:      10000,
		FallbackPower: 5000,
		HoldMinPower:  true,
		StartBoost:    false,
	}
	if err := s.SetCurveParams(0, want); err != nil {
		t.Fatal(err)
	}
	if tr.config[0x21] != 0x81 {
		t.Errorf("flags byte: expected 0x81, got 0x%02X", tr.config[0x21])
	}

	got, err := s.CurveParams(0)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	want.HoldMinPower = false
	want.StartBoost = true
	if err := s.SetCurveParams(0, want); err != nil {
		t.Fatal(err)
	}
	if tr.config[0x21] != 0x82 {
		t.Errorf("flags byte: expected 0x82, got 0x%02X", tr.config[0x21])
	}
}

func TestSetCurveParams_Validation(t *testing.T) {
	s, _ := curveSession(t)

	err := s.SetCurveParams(0, CurveParams{MinPower: 6000, MaxPower: 5000})
	if !errors.Is(err, ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue for min above max, got %v", err)
	}
	err = s.SetCurveParams(0, CurveParams{MinPower: 0, MaxPower: 10001})
	if !errors.Is(err, ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue for power over 100%%, got %v", err)
	}
}
