// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import (
	"errors"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// TestFuzz_HandlePeriodicReport feeds every model random reports of random
// IDs and lengths. The decode path must never panic, and a report shorter
// than the model expects must never replace a good snapshot.
func TestFuzz_HandlePeriodicReport(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for _, desc := range Descriptors() {
		t.Run(desc.Name, func(t *testing.T) {
			s := NewSession(desc, &fakeTransport{})
			defer s.Close()

			// Seed a known-good snapshot first
			good := make([]byte, desc.PeriodicReportSize)
			good[0] = desc.PeriodicReportID
			s.HandlePeriodicReport(desc.PeriodicReportID, good)

			for i := 0; i < rounds; i++ {
				id := byte(rng.Intn(256))
				data := make([]byte, rng.Intn(desc.PeriodicReportSize*2))
				rng.Read(data)

				s.HandlePeriodicReport(id, data)

				if _, err := s.Snapshot(); err != nil && !errors.Is(err, ErrNoData) {
					t.Fatalf("round %d: unexpected snapshot error: %v", i, err)
				}
			}
		})
	}
}

// TestFuzz_ApplyMutationsStayInBounds runs random single-byte mutations and
// verifies the read-modify-write engine only ever disturbs the mutated byte
// and the checksum bytes.
func TestFuzz_ApplyMutationsStayInBounds(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds() / 10

	desc := testModel(t)
	tr := &fakeTransport{config: testConfig(desc.ConfigReportSize), commitID: desc.CommitReportID}
	s := NewSession(desc, tr)
	defer s.Close()

	for i := 0; i < rounds; i++ {
		before := make([]byte, len(tr.config))
		copy(before, tr.config)

		offset := 1 + rng.Intn(desc.Checksum.Start+desc.Checksum.Length-1)
		value := byte(rng.Intn(256))
		if err := s.Apply(func(buf []byte) error {
			buf[offset] = value
			return nil
		}); err != nil {
			t.Fatalf("round %d: apply: %v", i, err)
		}

		for j := range before {
			if j == offset || j == desc.Checksum.WriteOffset || j == desc.Checksum.WriteOffset+1 {
				continue
			}
			if tr.config[j] != before[j] {
				t.Fatalf("round %d: byte %d disturbed by mutation of byte %d", i, j, offset)
			}
		}
	}
}
