// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import "testing"

// ============================================================
// CRC Reference Implementation
// ============================================================

// referenceCRC is an independent CRC-16/USB implementation used to
// cross-check CalculateCRC: it reverses the bits of every input byte, runs
// the MSB-first 0x8005 register, and reverses the result.
func referenceCRC(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(reverseByte(b)) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x8005
			} else {
				crc <<= 1
			}
		}
	}
	return reverseUint16(crc) ^ 0xFFFF
}

func reverseByte(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r = r<<1 | b&1
		b >>= 1
	}
	return r
}

func reverseUint16(v uint16) uint16 {
	var r uint16
	for i := 0; i < 16; i++ {
		r = r<<1 | v&1
		v >>= 1
	}
	return r
}

// ============================================================
// CRC Tests
// ============================================================

func TestCalculateCRC_Empty(t *testing.T) {
	// Init 0xFFFF xor-out 0xFFFF cancel out on empty input
	if crc := CalculateCRC([]byte{}); crc != 0x0000 {
		t.Errorf("CRC of empty data should be 0x0000, got 0x%04X", crc)
	}
}

func TestCalculateCRC_KnownValue(t *testing.T) {
	// Standard CRC-16/USB check value
	crc := CalculateCRC([]byte("123456789"))
	if crc != 0xB4C8 {
		t.Errorf("CRC mismatch: expected 0xB4C8, got 0x%04X", crc)
	}
}

func TestCalculateCRC_MatchesReference(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "16-byte fixture",
			data: []byte{
				0x03, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE,
				0xF0, 0x00, 0xFF, 0x7F, 0x01, 0x02, 0x03, 0x04,
			},
		},
		{
			name: "single byte",
			data: []byte{0xA5},
		},
		{
			name: "all zeros",
			data: make([]byte, 32),
		},
		{
			name: "all ones",
			data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCRC(tt.data)
			want := referenceCRC(tt.data)
			if got != want {
				t.Errorf("CRC mismatch: reference 0x%04X, got 0x%04X", want, got)
			}
		})
	}
}

func TestCalculateCRC_SingleByteSensitivity(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i * 7)
	}
	before := CalculateCRC(data)
	data[10] ^= 0x01
	after := CalculateCRC(data)
	if before == after {
		t.Error("CRC did not change after flipping one bit")
	}
}

// ============================================================
// ChecksumRange Tests
// ============================================================

func TestChecksumRange_WriteChecksum(t *testing.T) {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = byte(i + 1)
	}

	r := ChecksumRange{Start: 1, Length: 16, WriteOffset: 17}
	r.WriteChecksum(buf)

	want := CalculateCRC(buf[1:17])
	got := uint16(buf[17])<<8 | uint16(buf[18])
	if got != want {
		t.Errorf("stored checksum 0x%04X, expected 0x%04X", got, want)
	}

	// Bytes outside the write offset are untouched
	for i, v := range buf {
		if i == 17 || i == 18 {
			continue
		}
		if v != byte(i+1) {
			t.Errorf("byte %d changed: 0x%02X", i, v)
		}
	}
}

func TestChecksumRange_ComputeSubRange(t *testing.T) {
	buf := make([]byte, 32)
	copy(buf[4:], []byte("123456789"))

	r := ChecksumRange{Start: 4, Length: 9, WriteOffset: 30}
	if crc := r.Compute(buf); crc != 0xB4C8 {
		t.Errorf("sub-range CRC mismatch: expected 0xB4C8, got 0x%04X", crc)
	}
}
