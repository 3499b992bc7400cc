// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

// Package telemetry bridges decoded sensor snapshots over WebSocket. Frames
// are CBOR-encoded with integer keys to keep them compact on the wire.
package telemetry

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/tidemark/aquaflow/pkg/aquahid"
)

// Frame is one snapshot broadcast to subscribers.
type Frame struct {
	Model        string   `cbor:"1,keyasint"`
	Serial       string   `cbor:"2,keyasint,omitempty"`
	Timestamp    int64    `cbor:"3,keyasint"` // unix milliseconds
	Temps        []int32  `cbor:"4,keyasint,omitempty"`
	FanSpeeds    []uint16 `cbor:"5,keyasint,omitempty"`
	FanVoltages  []int32  `cbor:"6,keyasint,omitempty"`
	FanCurrents  []int32  `cbor:"7,keyasint,omitempty"`
	FanPowers    []int32  `cbor:"8,keyasint,omitempty"`
	Flow         int32    `cbor:"9,keyasint,omitempty"`
	WaterQuality int32    `cbor:"10,keyasint,omitempty"`
	Conductivity int32    `cbor:"11,keyasint,omitempty"`
}

// NewFrame builds a frame from a decoded snapshot.
func NewFrame(desc *aquahid.DeviceDescriptor, snap *aquahid.SensorSnapshot) *Frame {
	f := &Frame{
		Model:       desc.Name,
		Timestamp:   snap.LastUpdated.UnixMilli(),
		Temps:       snap.Temps,
		FanSpeeds:   snap.FanSpeeds,
		FanVoltages: snap.FanVoltages,
		FanCurrents: snap.FanCurrents,
		FanPowers:   snap.FanPowers,
	}
	if desc.SerialOffset >= 0 {
		f.Serial = snap.SerialString()
	}
	if desc.Flow != nil {
		f.Flow = snap.Flow
	}
	if desc.QualityOffset >= 0 {
		f.WaterQuality = snap.WaterQuality
	}
	if desc.ConductivityOffset >= 0 {
		f.Conductivity = snap.Conductivity
	}
	return f
}

// Time returns the frame timestamp as a time.Time.
func (f *Frame) Time() time.Time {
	return time.UnixMilli(f.Timestamp)
}

// Encode marshals the frame to CBOR.
func (f *Frame) Encode() ([]byte, error) {
	data, err := cbor.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode telemetry frame: %w", err)
	}
	return data, nil
}

// DecodeFrame unmarshals a CBOR frame.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty telemetry frame")
	}
	var f Frame
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode telemetry frame: %w", err)
	}
	return &f, nil
}
