// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
)

var (
	fanMinPercent      float64
	fanMaxPercent      float64
	fanFallbackPercent float64
	fanHoldMin         bool
	fanStartBoost      bool
)

var fanCmd = &cobra.Command{
	Use:   "fan",
	Short: "Inspect and control fan channels",
	Long: `Read and write fan channel configuration: manual setpoints, control
modes, device-resident curves and curve parameters.

Every write is a checksummed read-modify-write transaction against the
device's configuration report; bytes outside the edited field are
round-tripped unchanged.`,
}

var fanGetCmd = &cobra.Command{
	Use:   "get <channel>",
	Short: "Show a fan channel's control state",
	Args:  cobra.ExactArgs(1),
	RunE:  runFanGet,
}

var fanSetPWMCmd = &cobra.Command{
	Use:   "set-pwm <channel> <percent>",
	Short: "Set a fan channel's manual setpoint",
	Args:  cobra.ExactArgs(2),
	RunE:  runFanSetPWM,
}

var fanSetModeCmd = &cobra.Command{
	Use:   "set-mode <channel> <manual|curve|follow|max>",
	Short: "Set a fan channel's control mode",
	Args:  cobra.ExactArgs(2),
	RunE:  runFanSetMode,
}

var fanCurveCmd = &cobra.Command{
	Use:   "curve <channel>",
	Short: "Show a fan channel's control curve",
	Args:  cobra.ExactArgs(1),
	RunE:  runFanCurve,
}

var fanSetPointCmd = &cobra.Command{
	Use:   "set-point <channel> <index> <temp-c> <percent>",
	Short: "Set one point of a fan channel's control curve",
	Args:  cobra.ExactArgs(4),
	RunE:  runFanSetPoint,
}

var fanSetParamsCmd = &cobra.Command{
	Use:   "set-params <channel>",
	Short: "Set a fan channel's curve parameters",
	Args:  cobra.ExactArgs(1),
	RunE:  runFanSetParams,
}

func init() {
	rootCmd.AddCommand(fanCmd)
	fanCmd.AddCommand(fanGetCmd)
	fanCmd.AddCommand(fanSetPWMCmd)
	fanCmd.AddCommand(fanSetModeCmd)
	fanCmd.AddCommand(fanCurveCmd)
	fanCmd.AddCommand(fanSetPointCmd)
	fanCmd.AddCommand(fanSetParamsCmd)

	fanSetParamsCmd.Flags().Float64Var(&fanMinPercent, "min", 0, "Minimum power in percent")
	fanSetParamsCmd.Flags().Float64Var(&fanMaxPercent, "max", 100, "Maximum power in percent")
	fanSetParamsCmd.Flags().Float64Var(&fanFallbackPercent, "fallback", 100, "Fallback power in percent")
	fanSetParamsCmd.Flags().BoolVar(&fanHoldMin, "hold-min", false, "Hold minimum power instead of stopping")
	fanSetParamsCmd.Flags().BoolVar(&fanStartBoost, "start-boost", false, "Boost to full power on spin-up")
}

func parseChannel(s string) (int, error) {
	ch, err := strconv.Atoi(s)
	if err != nil || ch < 0 {
		return 0, fmt.Errorf("invalid fan channel %q", s)
	}
	return ch, nil
}

// parsePercent converts a percentage argument to centi-percent.
func parsePercent(s string) (uint16, error) {
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil || pct < 0 || pct > 100 {
		return 0, fmt.Errorf("invalid percentage %q (expect 0-100)", s)
	}
	return uint16(pct*100 + 0.5), nil
}

func parseFanMode(s string) (aquahid.FanMode, error) {
	switch s {
	case "manual":
		return aquahid.FanModeManual, nil
	case "curve":
		return aquahid.FanModeCurve, nil
	case "follow":
		return aquahid.FanModeFollow, nil
	case "max":
		return aquahid.FanModeMaxFallback, nil
	}
	return 0, fmt.Errorf("invalid fan mode %q (expect manual, curve, follow or max)", s)
}

func runFanGet(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}

	sess, dev, desc, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	if ch >= len(desc.Fans) {
		return fmt.Errorf("device has %d fan channels", len(desc.Fans))
	}

	fmt.Printf("Channel %d (%s)\n", ch, desc.Fans[ch].Label)

	duty, err := sess.PWM(ch)
	if err == nil {
		fmt.Printf("  Setpoint: %.2f%% (pwm %d)\n", float64(aquahid.PWMToPercent(duty))/100, duty)
	} else if !errors.Is(err, aquahid.ErrUnsupportedOperation) {
		return err
	}

	mode, err := sess.FanMode(ch)
	if err == nil {
		fmt.Printf("  Mode:     %s\n", aquahid.FormatFanMode(mode))
	} else if !errors.Is(err, aquahid.ErrUnsupportedOperation) {
		return err
	}

	params, err := sess.CurveParams(ch)
	if err == nil {
		fmt.Printf("  %s\n", aquahid.FormatCurveParams(params))
	} else if !errors.Is(err, aquahid.ErrUnsupportedOperation) {
		return err
	}

	return nil
}

func runFanSetPWM(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	centi, err := parsePercent(args[1])
	if err != nil {
		return err
	}

	sess, dev, _, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	if err := sess.SetPWM(ch, aquahid.PercentToPWM(centi)); err != nil {
		return err
	}
	fmt.Printf("Channel %d setpoint set to %.2f%%\n", ch, float64(centi)/100)
	return nil
}

func runFanSetMode(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	mode, err := parseFanMode(args[1])
	if err != nil {
		return err
	}

	sess, dev, _, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	if err := sess.SetFanMode(ch, mode); err != nil {
		return err
	}
	fmt.Printf("Channel %d mode set to %s\n", ch, aquahid.FormatFanMode(mode))
	return nil
}

func runFanCurve(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}

	sess, dev, desc, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	if ch >= len(desc.Fans) || desc.Fans[ch].Curve == nil {
		return fmt.Errorf("channel %d has no curve control", ch)
	}

	points := make([]aquahid.CurvePoint, desc.Fans[ch].Curve.CurvePoints)
	for i := range points {
		points[i], err = sess.CurvePoint(ch, i)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Channel %d (%s) control curve:\n", ch, desc.Fans[ch].Label)
	for i, p := range points {
		fmt.Printf("  %2d: %6.2f °C -> %6.2f%%\n", i, float64(p.Temp)/100, float64(p.Power)/100)
	}
	return nil
}

func runFanSetPoint(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid curve point index %q", args[1])
	}
	temp, err := strconv.ParseFloat(args[2], 64)
	if err != nil || temp < 0 {
		return fmt.Errorf("invalid temperature %q", args[2])
	}
	power, err := parsePercent(args[3])
	if err != nil {
		return err
	}

	sess, dev, _, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	p := aquahid.CurvePoint{Temp: uint16(temp*100 + 0.5), Power: power}
	if err := sess.SetCurvePoint(ch, idx, p); err != nil {
		return err
	}
	fmt.Printf("Channel %d point %d set to %.2f °C -> %.2f%%\n", ch, idx, temp, float64(power)/100)
	return nil
}

func runFanSetParams(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0])
	if err != nil {
		return err
	}
	if fanMinPercent < 0 || fanMaxPercent > 100 || fanFallbackPercent < 0 || fanFallbackPercent > 100 {
		return fmt.Errorf("power percentages must be between 0 and 100")
	}

	sess, dev, _, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	params := aquahid.CurveParams{
		MinPower:      uint16(fanMinPercent*100 + 0.5),
		MaxPower:      uint16(fanMaxPercent*100 + 0.5),
		FallbackPower: uint16(fanFallbackPercent*100 + 0.5),
		HoldMinPower:  fanHoldMin,
		StartBoost:    fanStartBoost,
	}
	if err := sess.SetCurveParams(ch, params); err != nil {
		return err
	}
	fmt.Printf("Channel %d curve parameters updated\n", ch)
	return nil
}
