// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Transport is the narrow feature-report interface a session consumes. Both
// calls are blocking with a transport-supplied timeout; buf always includes
// the report ID byte at index 0.
type Transport interface {
	GetFeatureReport(reportID byte, buf []byte) (int, error)
	SetFeatureReport(reportID byte, buf []byte) error
}

// StalenessInterval is how long a decoded snapshot stays readable. The
// devices push a report every second; after two missed periods the data is
// treated as gone rather than served stale.
const StalenessInterval = 2 * time.Second

// Session ties a descriptor, a transport and the decoded device state
// together for one attached peripheral. All control transactions are
// serialized on an internal lock; the periodic decode path swaps snapshots
// atomically and never touches the transport.
type Session struct {
	desc  *DeviceDescriptor
	tr    Transport
	stats *Statistics

	mu       sync.Mutex // serializes control transactions and teardown
	buf      []byte     // configuration mirror, nil for sensor-only models
	lastCtrl time.Time  // completion time of the previous control transaction
	closed   bool

	snap atomic.Pointer[SensorSnapshot]

	readyOnce sync.Once
	readyCh   chan struct{} // closed when the first report has been decoded

	now func() time.Time
}

// NewSession attaches a session for the given model over the given
// transport. The sensor state starts stale; readers fail with ErrNoData
// until the first periodic report arrives.
func NewSession(desc *DeviceDescriptor, tr Transport) *Session {
	s := &Session{
		desc:    desc,
		tr:      tr,
		stats:   NewStatistics(),
		readyCh: make(chan struct{}),
		now:     time.Now,
	}
	if desc.HasConfig() {
		s.buf = make([]byte, desc.ConfigReportSize)
	}
	return s
}

// Descriptor returns the session's model descriptor.
func (s *Session) Descriptor() *DeviceDescriptor {
	return s.desc
}

// Stats returns the session's decode and transaction counters.
func (s *Session) Stats() *Statistics {
	return s.stats
}

// Close detaches the session. It waits for any in-flight control
// transaction to finish before releasing the shared buffer, and is safe to
// call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.buf = nil
	return nil
}

// HandlePeriodicReport is the transport's push callback for unsolicited
// reports. Reports with a foreign ID share the delivery channel and are
// ignored. Short reports are counted and logged, and the previous snapshot
// is kept rather than corrupted.
func (s *Session) HandlePeriodicReport(reportID byte, data []byte) {
	s.stats.TotalReports.Add(1)

	if reportID != s.desc.PeriodicReportID {
		s.stats.UnknownReports.Add(1)
		return
	}
	if len(data) < s.desc.PeriodicReportSize {
		s.stats.ShortReports.Add(1)
		log.Printf("aquahid: %s: short sensor report (%d of %d bytes), keeping previous snapshot",
			s.desc.Name, len(data), s.desc.PeriodicReportSize)
		return
	}

	s.snap.Store(decodeSnapshot(s.desc, data, s.now()))
	s.stats.DecodedReports.Add(1)
	s.readyOnce.Do(func() { close(s.readyCh) })
}

// WaitReady blocks until the first periodic report has been decoded or the
// context is done.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the latest decoded sensor state, or ErrNoData if no
// report has arrived within the staleness interval.
func (s *Session) Snapshot() (*SensorSnapshot, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, fmt.Errorf("no sensor report received yet: %w", ErrNoData)
	}
	if s.now().Sub(snap.LastUpdated) > StalenessInterval {
		return nil, fmt.Errorf("sensor data stale since %s: %w",
			snap.LastUpdated.Format("15:04:05.000"), ErrNoData)
	}
	return snap, nil
}

// Apply runs one read-modify-write control transaction: fetch the full
// configuration report, let mutate change the fields it cares about,
// recompute the checksum where the model has one, write the buffer back and
// send the commit report. Everything runs under the session lock; two
// transactions never interleave.
//
// If mutate returns an error the device is untouched. A failure on the
// final commit report surfaces as ErrMaybeApplied: the configuration write
// already went through and the change may be in effect.
func (s *Session) Apply(mutate func(buf []byte) error) error {
	if !s.desc.HasConfig() {
		return fmt.Errorf("%s has no configuration report: %w", s.desc.Name, ErrUnsupportedOperation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	s.waitCtrlSpacing()

	if err := s.fetchConfigLocked(); err != nil {
		return err
	}

	if err := mutate(s.buf); err != nil {
		return err
	}

	if s.desc.Checksum != nil {
		s.desc.Checksum.WriteChecksum(s.buf)
	}

	if err := s.tr.SetFeatureReport(s.desc.ConfigReportID, s.buf); err != nil {
		s.stats.WriteErrors.Add(1)
		return fmt.Errorf("set config report 0x%02X: %v: %w", s.desc.ConfigReportID, err, ErrIoFailure)
	}

	if len(s.desc.CommitReport) > 0 {
		if err := s.tr.SetFeatureReport(s.desc.CommitReportID, s.desc.CommitReport); err != nil {
			s.stats.WriteErrors.Add(1)
			return fmt.Errorf("set commit report 0x%02X: %v: %w", s.desc.CommitReportID, err, ErrMaybeApplied)
		}
	}

	s.lastCtrl = s.now()
	s.stats.Transactions.Add(1)
	return nil
}

// ReadConfig fetches the current configuration report and hands read a
// read-only view of it. Used for control-derived values that live only in
// the configuration report, e.g. the live PWM setpoint. No writes are
// issued.
func (s *Session) ReadConfig(read func(buf []byte) error) error {
	if !s.desc.HasConfig() {
		return fmt.Errorf("%s has no configuration report: %w", s.desc.Name, ErrUnsupportedOperation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	if err := s.fetchConfigLocked(); err != nil {
		return err
	}
	return read(s.buf)
}

// fetchConfigLocked refreshes the configuration mirror from the device. The
// buffer is zeroed first so a short read cannot leak previous contents.
// Caller holds s.mu.
func (s *Session) fetchConfigLocked() error {
	for i := range s.buf {
		s.buf[i] = 0
	}
	n, err := s.tr.GetFeatureReport(s.desc.ConfigReportID, s.buf)
	if err != nil {
		return fmt.Errorf("get config report 0x%02X: %v: %w", s.desc.ConfigReportID, err, ErrNoData)
	}
	if n < s.desc.ConfigReportSize {
		return fmt.Errorf("short config report (%d of %d bytes): %w", n, s.desc.ConfigReportSize, ErrNoData)
	}
	return nil
}

// waitCtrlSpacing delays until the model's minimum spacing since the last
// completed control transaction has passed. Caller holds s.mu.
func (s *Session) waitCtrlSpacing() {
	if s.desc.MinCtrlInterval == 0 || s.lastCtrl.IsZero() {
		return
	}
	elapsed := s.now().Sub(s.lastCtrl)
	if elapsed < s.desc.MinCtrlInterval {
		time.Sleep(s.desc.MinCtrlInterval - elapsed)
	}
}
