// Package simulate drives a running tier list service through complete
// ranking sessions and checks that no contestant is lost or duplicated.
package simulate

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Sessions    int           // Number of sessions to drive
	Workers     int           // Sessions driven concurrently
	Group       string        // Contestant group, empty for the service default
	Comparisons int           // Head-to-head picks per session before finishing
	Seed        int64         // Seed for sessions and winner choice, 0 for random
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Log every session
}

// Stats holds run statistics. Counters are updated concurrently.
type Stats struct {
	SessionsStarted   atomic.Int64
	SessionsVerified  atomic.Int64
	SessionsFailed    atomic.Int64
	Requests          atomic.Int64
	Comparisons       atomic.Int64
	DuplicateReplays  atomic.Int64
	ConservationFails atomic.Int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Report is a plain snapshot of Stats.
type Report struct {
	SessionsStarted   int64
	SessionsVerified  int64
	SessionsFailed    int64
	Requests          int64
	Comparisons       int64
	DuplicateReplays  int64
	ConservationFails int64
	Duration          time.Duration
}

func (s *Stats) report() Report {
	return Report{
		SessionsStarted:   s.SessionsStarted.Load(),
		SessionsVerified:  s.SessionsVerified.Load(),
		SessionsFailed:    s.SessionsFailed.Load(),
		Requests:          s.Requests.Load(),
		Comparisons:       s.Comparisons.Load(),
		DuplicateReplays:  s.DuplicateReplays.Load(),
		ConservationFails: s.ConservationFails.Load(),
		Duration:          s.Duration,
	}
}

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:9080"
	DefaultSessions      = 100
	DefaultComparisons   = 20
	DefaultTimeout       = 30 * time.Second
	PercentageMultiplier = 100
)
