package domain

import "time"

// CheckResult is the outcome of a single validation command.
// Error is only set when OK is false.
type CheckResult struct {
	OK    bool
	Error string
}

// Passed returns a successful CheckResult.
func Passed() CheckResult {
	return CheckResult{OK: true}
}

// Failed returns a failed CheckResult carrying the formatted transcript.
func Failed(transcript string) CheckResult {
	return CheckResult{OK: false, Error: transcript}
}

// LoopResult holds the outcome of one remediation loop.
type LoopResult struct {
	Comment       TaggedComment
	Attempts      int // number of agent runs
	CheckFailures int
	CostUSD       float64
	Duration      time.Duration
}

// SessionStats aggregates loop results across a hands session.
type SessionStats struct {
	Processed     int
	Failed        int
	Attempts      int
	CheckFailures int
	CostUSD       float64
	Duration      time.Duration
}

// Record adds a finished loop to the session totals.
func (s *SessionStats) Record(r *LoopResult) {
	if r == nil {
		return
	}
	s.Processed++
	s.Attempts += r.Attempts
	s.CheckFailures += r.CheckFailures
	s.CostUSD += r.CostUSD
	s.Duration += r.Duration
}

// RecordFailure counts a loop that ended with an error.
func (s *SessionStats) RecordFailure() {
	s.Failed++
}
