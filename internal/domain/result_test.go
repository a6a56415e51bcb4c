package domain

import (
	"testing"
	"time"
)

func TestSessionStats_Record(t *testing.T) {
	var stats SessionStats

	stats.Record(&LoopResult{Attempts: 1, CostUSD: 0.25, Duration: 2 * time.Second})
	stats.Record(&LoopResult{Attempts: 3, CheckFailures: 2, CostUSD: 0.5, Duration: 5 * time.Second})
	stats.Record(nil)
	stats.RecordFailure()

	if stats.Processed != 2 {
		t.Errorf("Processed = %d, want 2", stats.Processed)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if stats.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", stats.Attempts)
	}
	if stats.CheckFailures != 2 {
		t.Errorf("CheckFailures = %d, want 2", stats.CheckFailures)
	}
	if stats.CostUSD != 0.75 {
		t.Errorf("CostUSD = %v, want 0.75", stats.CostUSD)
	}
	if stats.Duration != 7*time.Second {
		t.Errorf("Duration = %v, want 7s", stats.Duration)
	}
}

func TestTaggedComment_Location(t *testing.T) {
	c := TaggedComment{Filepath: "src/app.ts", Line: 12}
	if got := c.Location(); got != "src/app.ts:12" {
		t.Errorf("Location() = %q, want %q", got, "src/app.ts:12")
	}
}

func TestCheckResult_Constructors(t *testing.T) {
	if r := Passed(); !r.OK || r.Error != "" {
		t.Errorf("Passed() = %+v", r)
	}
	if r := Failed("boom"); r.OK || r.Error != "boom" {
		t.Errorf("Failed() = %+v", r)
	}
}
