// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import "fmt"

// Sensor readers delegate to the report cache and fail with ErrNoData while
// the snapshot is stale. Setting accessors run control transactions.

// Temperature returns sensor i in millidegrees. A connected-but-missing
// probe reads as ErrNoData.
func (s *Session) Temperature(i int) (int32, error) {
	if i < 0 || i >= len(s.desc.Temps) {
		return 0, fmt.Errorf("temp sensor %d: %w", i, ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	if snap.Temps[i] == TempNotAvailable {
		return 0, fmt.Errorf("temp sensor %d not connected: %w", i, ErrNoData)
	}
	return snap.Temps[i], nil
}

// FanSpeed returns fan channel i's speed in RPM.
func (s *Session) FanSpeed(i int) (uint16, error) {
	f, err := s.fanSpec(i)
	if err != nil {
		return 0, err
	}
	if f.Sensor.SpeedOffset < 0 {
		return 0, fmt.Errorf("fan %d has no speed reading: %w", i, ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.FanSpeeds[i], nil
}

// FanVoltage returns fan channel i's supply voltage in mV.
func (s *Session) FanVoltage(i int) (int32, error) {
	f, err := s.fanSpec(i)
	if err != nil {
		return 0, err
	}
	if f.Sensor.VoltageOffset < 0 {
		return 0, fmt.Errorf("fan %d has no voltage reading: %w", i, ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.FanVoltages[i], nil
}

// FanCurrent returns fan channel i's current draw in mA.
func (s *Session) FanCurrent(i int) (int32, error) {
	f, err := s.fanSpec(i)
	if err != nil {
		return 0, err
	}
	if f.Sensor.CurrentOffset < 0 {
		return 0, fmt.Errorf("fan %d has no current reading: %w", i, ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.FanCurrents[i], nil
}

// FanPower returns fan channel i's power draw in µW.
func (s *Session) FanPower(i int) (int32, error) {
	f, err := s.fanSpec(i)
	if err != nil {
		return 0, err
	}
	if f.Sensor.PowerOffset < 0 {
		return 0, fmt.Errorf("fan %d has no power reading: %w", i, ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.FanPowers[i], nil
}

// RailVoltage returns standalone voltage rail i in mV.
func (s *Session) RailVoltage(i int) (int32, error) {
	if i < 0 || i >= len(s.desc.Rails) {
		return 0, fmt.Errorf("voltage rail %d: %w", i, ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.Rails[i], nil
}

// Flow returns the coolant flow in decilitres per hour.
func (s *Session) Flow() (int32, error) {
	if s.desc.Flow == nil {
		return 0, fmt.Errorf("no flow sensor: %w", ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.Flow, nil
}

// WaterQuality returns the water quality estimate in percent.
func (s *Session) WaterQuality() (int32, error) {
	if s.desc.QualityOffset < 0 {
		return 0, fmt.Errorf("no water quality sensor: %w", ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.WaterQuality, nil
}

// Conductivity returns the coolant conductivity in nS/cm.
func (s *Session) Conductivity() (int32, error) {
	if s.desc.ConductivityOffset < 0 {
		return 0, fmt.Errorf("no conductivity sensor: %w", ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.Conductivity, nil
}

// SerialNumber returns the device serial in the conventional NNNNN-NNNNN
// form.
func (s *Session) SerialNumber() (string, error) {
	if s.desc.SerialOffset < 0 {
		return "", fmt.Errorf("no serial number field: %w", ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	return snap.SerialString(), nil
}

// FirmwareVersion returns the reported firmware revision.
func (s *Session) FirmwareVersion() (uint16, error) {
	if s.desc.FirmwareOffset < 0 {
		return 0, fmt.Errorf("no firmware version field: %w", ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.Firmware, nil
}

// PowerCycles returns how many times the device has been powered on.
func (s *Session) PowerCycles() (uint32, error) {
	if s.desc.PowerCyclesOffset < 0 {
		return 0, fmt.Errorf("no power cycle counter: %w", ErrUnsupportedOperation)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return snap.PowerCycles, nil
}

// PWM reads fan channel i's live setpoint as an 8-bit duty value. The
// setpoint lives only in the configuration report, so this issues a fetch
// transaction.
func (s *Session) PWM(fan int) (uint8, error) {
	f, err := s.ctrlFanSpec(fan)
	if err != nil {
		return 0, err
	}
	var duty uint8
	err = s.ReadConfig(func(buf []byte) error {
		duty = PercentToPWM(DecodeU16(buf, f.CtrlOffset, s.desc.Order))
		return nil
	})
	return duty, err
}

// SetPWM sets fan channel i's manual setpoint from an 8-bit duty value.
// Only the setpoint bytes are touched; every other configuration byte is
// round-tripped from the device.
func (s *Session) SetPWM(fan int, duty uint8) error {
	f, err := s.ctrlFanSpec(fan)
	if err != nil {
		return err
	}
	return s.Apply(func(buf []byte) error {
		PutU16(buf, f.CtrlOffset, PWMToPercent(duty), s.desc.Order)
		return nil
	})
}

// FanMode reads fan channel i's control mode.
func (s *Session) FanMode(fan int) (FanMode, error) {
	c, err := s.curveSpec(fan)
	if err != nil {
		return 0, err
	}
	var mode FanMode
	err = s.ReadConfig(func(buf []byte) error {
		mode = FanMode(buf[c.ModeOffset])
		return nil
	})
	return mode, err
}

// SetFanMode sets fan channel i's control mode.
func (s *Session) SetFanMode(fan int, mode FanMode) error {
	c, err := s.curveSpec(fan)
	if err != nil {
		return err
	}
	if mode > FanModeMaxFallback {
		return fmt.Errorf("fan mode %d: %w", mode, ErrInvalidFieldValue)
	}
	return s.Apply(func(buf []byte) error {
		buf[c.ModeOffset] = byte(mode)
		return nil
	})
}

// CurvePoint is one temperature/power pair of a device-resident control
// curve. Temp is in centidegrees, Power in centi-percent.
type CurvePoint struct {
	Temp  uint16
	Power uint16
}

// CurvePoint reads point idx of fan channel i's control curve.
func (s *Session) CurvePoint(fan, idx int) (CurvePoint, error) {
	c, err := s.curveSpec(fan)
	if err != nil {
		return CurvePoint{}, err
	}
	if idx < 0 || idx >= c.CurvePoints {
		return CurvePoint{}, fmt.Errorf("curve point %d of %d: %w", idx, c.CurvePoints, ErrInvalidFieldValue)
	}
	var p CurvePoint
	err = s.ReadConfig(func(buf []byte) error {
		p.Temp = DecodeU16(buf, c.CurveTempOffset+2*idx, s.desc.Order)
		p.Power = DecodeU16(buf, c.CurvePowerOffset+2*idx, s.desc.Order)
		return nil
	})
	return p, err
}

// SetCurvePoint writes point idx of fan channel i's control curve.
func (s *Session) SetCurvePoint(fan, idx int, p CurvePoint) error {
	c, err := s.curveSpec(fan)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= c.CurvePoints {
		return fmt.Errorf("curve point %d of %d: %w", idx, c.CurvePoints, ErrInvalidFieldValue)
	}
	if p.Power > 10000 {
		return fmt.Errorf("curve power %d exceeds 100.00%%: %w", p.Power, ErrInvalidFieldValue)
	}
	return s.Apply(func(buf []byte) error {
		PutU16(buf, c.CurveTempOffset+2*idx, p.Temp, s.desc.Order)
		PutU16(buf, c.CurvePowerOffset+2*idx, p.Power, s.desc.Order)
		return nil
	})
}

// CurveParams are the per-channel curve parameters of the curve-capable
// models. Powers are centi-percent.
type CurveParams struct {
	MinPower      uint16
	MaxPower      uint16
	FallbackPower uint16
	HoldMinPower  bool
	StartBoost    bool
}

// CurveParams reads fan channel i's curve parameters.
func (s *Session) CurveParams(fan int) (CurveParams, error) {
	c, err := s.curveSpec(fan)
	if err != nil {
		return CurveParams{}, err
	}
	var p CurveParams
	err = s.ReadConfig(func(buf []byte) error {
		flags := buf[c.FlagsOffset]
		p.MinPower = DecodeU16(buf, c.MinPowerOffset, s.desc.Order)
		p.MaxPower = DecodeU16(buf, c.MaxPowerOffset, s.desc.Order)
		p.FallbackPower = DecodeU16(buf, c.FallbackPowerOffset, s.desc.Order)
		p.HoldMinPower = flags&(1<<c.HoldMinBit) != 0
		p.StartBoost = flags&(1<<c.StartBoostBit) != 0
		return nil
	})
	return p, err
}

// SetCurveParams writes fan channel i's curve parameters.
func (s *Session) SetCurveParams(fan int, p CurveParams) error {
	c, err := s.curveSpec(fan)
	if err != nil {
		return err
	}
	if p.MinPower > 10000 || p.MaxPower > 10000 || p.FallbackPower > 10000 {
		return fmt.Errorf("curve power exceeds 100.00%%: %w", ErrInvalidFieldValue)
	}
	if p.MinPower > p.MaxPower {
		return fmt.Errorf("min power %d above max power %d: %w", p.MinPower, p.MaxPower, ErrInvalidFieldValue)
	}
	return s.Apply(func(buf []byte) error {
		PutU16(buf, c.MinPowerOffset, p.MinPower, s.desc.Order)
		PutU16(buf, c.MaxPowerOffset, p.MaxPower, s.desc.Order)
		PutU16(buf, c.FallbackPowerOffset, p.FallbackPower, s.desc.Order)
		flags := buf[c.FlagsOffset]
		flags &^= 1<<c.HoldMinBit | 1<<c.StartBoostBit
		if p.HoldMinPower {
			flags |= 1 << c.HoldMinBit
		}
		if p.StartBoost {
			flags |= 1 << c.StartBoostBit
		}
		buf[c.FlagsOffset] = flags
		return nil
	})
}

func (s *Session) fanSpec(i int) (*FanSpec, error) {
	if i < 0 || i >= len(s.desc.Fans) {
		return nil, fmt.Errorf("fan channel %d: %w", i, ErrUnsupportedOperation)
	}
	return &s.desc.Fans[i], nil
}

func (s *Session) ctrlFanSpec(i int) (*FanSpec, error) {
	f, err := s.fanSpec(i)
	if err != nil {
		return nil, err
	}
	if f.CtrlOffset < 0 {
		return nil, fmt.Errorf("fan %d is not controllable: %w", i, ErrUnsupportedOperation)
	}
	return f, nil
}

func (s *Session) curveSpec(i int) (*FanCurveSpec, error) {
	f, err := s.fanSpec(i)
	if err != nil {
		return nil, err
	}
	if f.Curve == nil {
		return nil, fmt.Errorf("fan %d has no curve control: %w", i, ErrUnsupportedOperation)
	}
	return f.Curve, nil
}
