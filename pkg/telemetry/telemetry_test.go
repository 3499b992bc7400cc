// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package telemetry

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidemark/aquaflow/pkg/aquahid"
)

// ============================================================
// Frame Tests
// ============================================================

func TestFrame_RoundTrip(t *testing.T) {
	in := &Frame{
		Model:     "D5 Next",
		Serial:    "12345-00033",
		Timestamp: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Temps:     []int32{28500, aquahid.TempNotAvailable},
		FanSpeeds: []uint16{1980, 0},
	}

	data, err := in.Encode()
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}

	if out.Model != in.Model || out.Serial != in.Serial || out.Timestamp != in.Timestamp {
		t.Errorf("header mismatch: %+v", out)
	}
	if len(out.Temps) != 2 || out.Temps[0] != 28500 || out.Temps[1] != aquahid.TempNotAvailable {
		t.Errorf("temps mismatch: %v", out.Temps)
	}
	if len(out.FanSpeeds) != 2 || out.FanSpeeds[0] != 1980 {
		t.Errorf("speeds mismatch: %v", out.FanSpeeds)
	}
}

func TestDecodeFrame_Empty(t *testing.T) {
	if _, err := DecodeFrame(nil); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestNewFrame_SensorOnlyModel(t *testing.T) {
	desc, err := aquahid.Lookup(aquahid.VendorAquacomputer, 0xf012, -1) // Highflow Next
	if err != nil {
		t.Fatal(err)
	}

	snap := &aquahid.SensorSnapshot{
		Temps:        make([]int32, len(desc.Temps)),
		FanSpeeds:    []uint16{},
		Flow:         1234,
		WaterQuality: 98,
		Conductivity: 330,
		LastUpdated:  time.Now(),
	}
	f := NewFrame(desc, snap)

	if f.Model != "Highflow Next" {
		t.Errorf("model: %q", f.Model)
	}
	if f.Flow != 1234 || f.WaterQuality != 98 || f.Conductivity != 330 {
		t.Errorf("flow fields: %+v", f)
	}
}

// ============================================================
// Server/Client Integration Tests
// ============================================================

func TestServerBroadcast(t *testing.T) {
	srv := NewServer("", "")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	c, err := Dial(context.Background(), wsURL, "", "", false)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	want := &Frame{Model: "Octo", Timestamp: 1234, FanSpeeds: []uint16{800, 810, 0, 0, 0, 0, 0, 0}}

	// The subscriber registers asynchronously after the upgrade
	deadline := time.Now().Add(2 * time.Second)
	var got *Frame
	for time.Now().Before(deadline) {
		if err := srv.Broadcast(want); err != nil {
			t.Fatal(err)
		}
		c.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		f, err := c.ReadFrame()
		if err == nil {
			got = f
			break
		}
	}
	if got == nil {
		t.Fatal("no frame received")
	}
	if got.Model != "Octo" || got.Timestamp != 1234 || len(got.FanSpeeds) != 8 {
		t.Errorf("frame mismatch: %+v", got)
	}
}

func TestServerAuth(t *testing.T) {
	srv := NewServer("operator", "secret")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	if _, err := Dial(context.Background(), wsURL, "", "", false); err == nil {
		t.Error("expected rejection without credentials")
	}
	if _, err := Dial(context.Background(), wsURL, "operator", "wrong", false); err == nil {
		t.Error("expected rejection with bad password")
	}

	c, err := Dial(context.Background(), wsURL, "operator", "secret", false)
	if err != nil {
		t.Fatalf("expected acceptance with good credentials: %v", err)
	}
	c.Close()
}

func TestDial_BadScheme(t *testing.T) {
	if _, err := Dial(context.Background(), "http://example.com", "", "", false); err == nil {
		t.Error("expected error for non-websocket scheme")
	}
}
