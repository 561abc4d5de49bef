package workflow

import (
	"errors"
	"testing"
	"time"

	"echosurvey/internal/ledger"
	"echosurvey/internal/services"
)

func TestReportAggregates(t *testing.T) {
	start := time.Date(2017, 7, 20, 12, 0, 0, 0, time.UTC)
	report := &Report{
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Items: []ItemResult{
			{Stage: StageConvert, Item: "a.raw", Outcome: ledger.OutcomeSucceeded, Outputs: []string{"a.nc", "a_part2.nc"}},
			{Stage: StageConvert, Item: "b.raw", Outcome: ledger.OutcomeFailed, Err: errors.New("boom")},
			{Stage: StageConvert, Item: "c.raw", Outcome: ledger.OutcomeSkipped},
			{Stage: StageIndex, Item: "notes.raw", Outcome: ledger.OutcomeFailed},
		},
	}

	if got := report.Count(ledger.OutcomeFailed); got != 2 {
		t.Fatalf("failed = %d, want 2", got)
	}
	if got := report.Failures(); len(got) != 2 || got[0].Item != "b.raw" {
		t.Fatalf("failures = %+v", got)
	}
	if got := report.Outputs(StageConvert); len(got) != 2 {
		t.Fatalf("outputs = %v", got)
	}
	if report.Duration() != 90*time.Second {
		t.Fatalf("duration = %v", report.Duration())
	}
	if (&Report{StartedAt: start}).Duration() != 0 {
		t.Fatal("unfinished report should have zero duration")
	}
}

func TestFailureHintCoversClasses(t *testing.T) {
	for _, class := range []string{"malformed_name", "missing_data", "conversion", "unexpected"} {
		if failureHint(services.FailureClass(class)) == "" {
			t.Fatalf("empty hint for %s", class)
		}
	}
}
