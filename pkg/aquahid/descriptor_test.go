// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"errors"
	"testing"
)

// ============================================================
// Table Validation Tests
// ============================================================

func TestDescriptorTable_Validates(t *testing.T) {
	for _, d := range Descriptors() {
		t.Run(d.Name, func(t *testing.T) {
			if err := d.validate(); err != nil {
				t.Errorf("table descriptor invalid: %v", err)
			}
		})
	}
}

func TestValidate_OffsetOutsideReport(t *testing.T) {
	d := &DeviceDescriptor{
		Name:               "bogus",
		Interface:          -1,
		PeriodicReportSize: 0x10,
		SerialOffset:       -1,
		FirmwareOffset:     -1,
		PowerCyclesOffset:  -1,
		QualityOffset:      -1,
		ConductivityOffset: -1,
		Temps: []TempSensorSpec{
			{Label: "past end", Offset: 0x0F, Scale: 10},
		},
	}
	if err := d.validate(); err == nil {
		t.Error("expected error for temp field crossing the report boundary")
	}
}

func TestValidate_OverlappingFields(t *testing.T) {
	d := &DeviceDescriptor{
		Name:               "bogus",
		Interface:          -1,
		PeriodicReportSize: 0x20,
		SerialOffset:       -1,
		FirmwareOffset:     -1,
		PowerCyclesOffset:  -1,
		QualityOffset:      -1,
		ConductivityOffset: -1,
		Temps: []TempSensorSpec{
			{Label: "a", Offset: 0x10, Scale: 10},
			{Label: "b", Offset: 0x11, Scale: 10},
		},
	}
	if err := d.validate(); err == nil {
		t.Error("expected error for overlapping temp fields")
	}
}

func TestValidate_ChecksumOutsideConfig(t *testing.T) {
	d := &DeviceDescriptor{
		Name:               "bogus",
		Interface:          -1,
		PeriodicReportSize: 0x10,
		ConfigReportID:     0x03,
		ConfigReportSize:   0x20,
		Checksum:           &ChecksumRange{Start: 0x01, Length: 0x30, WriteOffset: 0x1E},
		SerialOffset:       -1,
		FirmwareOffset:     -1,
		PowerCyclesOffset:  -1,
		QualityOffset:      -1,
		ConductivityOffset: -1,
	}
	if err := d.validate(); err == nil {
		t.Error("expected error for checksum range outside config report")
	}
}

// ============================================================
// Lookup Tests
// ============================================================

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		vendor  uint16
		product uint16
		iface   int
		want    Model
		wantErr error
	}{
		{"d5 next", VendorAquacomputer, 0xf00e, 0, ModelD5Next, nil},
		{"octo", VendorAquacomputer, 0xf011, -1, ModelOcto, nil},
		{"quadro", VendorAquacomputer, 0xf00d, 0, ModelQuadro, nil},
		{"farbwerk 360", VendorAquacomputer, 0xf010, 0, ModelFarbwerk360, nil},
		{"aquaero telemetry interface", VendorAquacomputer, 0xf001, 2, ModelAquaero, nil},
		{"aquaero keyboard interface", VendorAquacomputer, 0xf001, 0, 0, ErrWrongSubDevice},
		{"legacy little-endian", VendorAquacomputer, 0xf0b6, 0, ModelAquastreamXT, nil},
		{"unknown product", VendorAquacomputer, 0xbeef, 0, 0, ErrDeviceNotRecognized},
		{"unknown vendor", 0x1234, 0xf00e, 0, 0, ErrDeviceNotRecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.vendor, tt.product, tt.iface)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Model != tt.want {
				t.Errorf("expected model %d, got %d (%s)", tt.want, d.Model, d.Name)
			}
		})
	}
}

func TestLookup_D5NextLayout(t *testing.T) {
	// Spot checks against the protocol layout of the D5 Next
	d, err := Lookup(VendorAquacomputer, 0xf00e, -1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Temps[0].Offset != 0x57 {
		t.Errorf("coolant temp offset: expected 0x57, got 0x%X", d.Temps[0].Offset)
	}
	if d.Fans[0].Sensor.SpeedOffset != 0x74 || d.Fans[1].Sensor.SpeedOffset != 0x67 {
		t.Errorf("speed offsets: got 0x%X, 0x%X", d.Fans[0].Sensor.SpeedOffset, d.Fans[1].Sensor.SpeedOffset)
	}
	if d.Checksum == nil || d.Checksum.Start != 0x01 || d.Checksum.Length != 0x326 || d.Checksum.WriteOffset != 0x327 {
		t.Errorf("checksum range: got %+v", d.Checksum)
	}
	if len(d.CommitReport) != 11 || d.CommitReport[0] != 0x02 {
		t.Errorf("commit report: got % X", d.CommitReport)
	}
}

func TestLookup_SensorOnlyModels(t *testing.T) {
	for _, product := range []uint16{0xf010, 0xf012, 0xf0bd, 0xf0b6} {
		d, err := Lookup(VendorAquacomputer, product, -1)
		if err != nil {
			t.Fatalf("product %04x: %v", product, err)
		}
		if d.HasConfig() {
			t.Errorf("%s should be sensor-only", d.Name)
		}
	}
}
