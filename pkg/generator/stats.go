/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stats.go
Description: Batch statistics for the generator. Counters are updated atomically by every
worker and snapshotted into the finished batch.
*/

package generator

import (
	"sync/atomic"
	"time"
)

// Stats tracks one generation batch
type Stats struct {
	Attempts   int64     `json:"attempts"`    // Derivations started
	Accepted   int64     `json:"accepted"`    // Complete programs sent to the collector
	Duplicates int64     `json:"duplicates"`  // Programs rejected by the dedup set
	Failures   int64     `json:"failures"`    // Derivations that ended in an error
	Partials   int64     `json:"partials"`    // Partial subtrees sent to the collector
	StartTime  time.Time `json:"start_time"`  // When the batch started
	Elapsed    float64   `json:"elapsed_sec"` // Wall time of the batch

	ProgramsPerSecond float64 `json:"programs_per_second"`
}

func (s *Stats) IncrementAttempts()   { atomic.AddInt64(&s.Attempts, 1) }
func (s *Stats) IncrementDuplicates() { atomic.AddInt64(&s.Duplicates, 1) }
func (s *Stats) IncrementFailures()   { atomic.AddInt64(&s.Failures, 1) }
func (s *Stats) IncrementPartials()   { atomic.AddInt64(&s.Partials, 1) }

// IncrementAccepted returns the new accepted count, which doubles as the program id
func (s *Stats) IncrementAccepted() int64 { return atomic.AddInt64(&s.Accepted, 1) }

// Snapshot returns a consistent copy with the elapsed time and rate filled in
func (s *Stats) Snapshot() Stats {
	snap := Stats{
		Attempts:   atomic.LoadInt64(&s.Attempts),
		Accepted:   atomic.LoadInt64(&s.Accepted),
		Duplicates: atomic.LoadInt64(&s.Duplicates),
		Failures:   atomic.LoadInt64(&s.Failures),
		Partials:   atomic.LoadInt64(&s.Partials),
		StartTime:  s.StartTime,
	}

	elapsed := time.Since(s.StartTime).Seconds()
	snap.Elapsed = elapsed
	if elapsed > 0 {
		snap.ProgramsPerSecond = float64(snap.Accepted) / elapsed
	}
	return snap
}
