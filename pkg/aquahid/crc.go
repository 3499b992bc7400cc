// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

// CRC-16/USB parameters. The devices checksum their configuration reports
// with the bit-reflected 0x8005 polynomial, initial value 0xFFFF and a final
// XOR of 0xFFFF.
const (
	crcPolynomial = 0xA001 // 0x8005 reflected
	crcInitial    = 0xFFFF
	crcXorOut     = 0xFFFF
)

// CalculateCRC computes the CRC-16/USB checksum of data.
func CalculateCRC(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc ^ crcXorOut
}

// ChecksumRange describes the checksummed span of a configuration report and
// where the big-endian result is stored. Models without a checksum leave the
// descriptor's range nil.
type ChecksumRange struct {
	Start       int
	Length      int
	WriteOffset int
}

// Compute runs CRC-16/USB over the range's span of buf.
func (r ChecksumRange) Compute(buf []byte) uint16 {
	return CalculateCRC(buf[r.Start : r.Start+r.Length])
}

// WriteChecksum computes the checksum and stores it big-endian at the range's
// write offset.
func (r ChecksumRange) WriteChecksum(buf []byte) {
	crc := r.Compute(buf)
	buf[r.WriteOffset] = byte(crc >> 8)
	buf[r.WriteOffset+1] = byte(crc)
}
