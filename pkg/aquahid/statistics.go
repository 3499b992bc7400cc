// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Statistics tracks the session's periodic-report decode path. Counters are
// updated from the transport's delivery goroutine and read from anywhere, so
// everything is atomic.
type Statistics struct {
	startTime time.Time

	TotalReports   atomic.Uint64 // every report delivered on the channel
	DecodedReports atomic.Uint64 // reports matching the sensor report ID
	ShortReports   atomic.Uint64 // sensor reports below the expected size
	UnknownReports atomic.Uint64 // other report IDs sharing the channel
	Transactions   atomic.Uint64 // completed control transactions
	WriteErrors    atomic.Uint64 // failed control transactions
}

// NewStatistics creates a statistics tracker starting now.
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// ReportRate returns decoded sensor reports per second since start.
func (s *Statistics) ReportRate() float64 {
	elapsed := time.Since(s.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.DecodedReports.Load()) / elapsed
}

// String returns a one-line summary for logs and the TUI status bar.
func (s *Statistics) String() string {
	return fmt.Sprintf("reports=%d decoded=%d short=%d unknown=%d tx=%d txerr=%d (%.2f/s)",
		s.TotalReports.Load(), s.DecodedReports.Load(), s.ShortReports.Load(),
		s.UnknownReports.Load(), s.Transactions.Load(), s.WriteErrors.Load(),
		s.ReportRate())
}
