package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"echosurvey/internal/ledger"
	"echosurvey/internal/services"
	"echosurvey/internal/workflow"
)

func TestPrintReportTalliesStages(t *testing.T) {
	start := time.Date(2017, 7, 20, 0, 0, 0, 0, time.UTC)
	report := &workflow.Report{
		RunID:      "0123456789abcdef",
		Command:    workflow.CommandDaily,
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Items: []workflow.ItemResult{
			{Stage: workflow.StageCalibrate, Item: "a.nc", Outcome: ledger.OutcomeSucceeded},
			{Stage: workflow.StageCalibrate, Item: "b.nc", Outcome: ledger.OutcomeSkipped},
			{Stage: workflow.StageDailyTrack, Item: "batch 1", Outcome: ledger.OutcomeFailed,
				Class: services.ClassMissingData, Err: errors.New("no track has valid positions")},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	requireContains(t, out, "Daily run 01234567 finished in 1m30s")
	requireContains(t, out, "Calibrate")
	requireContains(t, out, "Daily Track")
	requireContains(t, out, "Failures:")
	requireContains(t, out, "no track has valid positions")
	if strings.Count(out, "Daily Track") != 2 {
		t.Fatalf("expected stage in tally and failure tables:\n%s", out)
	}
}

func TestPrintReportEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &workflow.Report{RunID: "abc", Command: workflow.CommandTenDay})
	requireContains(t, buf.String(), "Nothing to do")
}

func TestFormatCountGroupsThousands(t *testing.T) {
	if got := formatCount(12345); got != "12,345" {
		t.Fatalf("formatCount = %q", got)
	}
}

func TestNewProgressSkipsNonTerminal(t *testing.T) {
	if p := newProgress(&bytes.Buffer{}); p != nil {
		t.Fatalf("expected nil progress for buffer, got %T", p)
	}
}
