package workflow_test

import (
	"context"
	"strings"
	"testing"

	"echosurvey/internal/ledger"
	"echosurvey/internal/summary"
	"echosurvey/internal/testsupport"
	"echosurvey/internal/workflow"
)

func TestSurveyWritesOneRowPerTimestamp(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLedger())
	layout := newLayout(t, cfg)

	first := testsupport.ObservationStem("SaKe2017", "20170720", 12, 0)
	failed := testsupport.ObservationStem("SaKe2017", "20170720", 13, 0)
	last := testsupport.ObservationStem("SaKe2017", "20170720", 14, 0)
	testsupport.Touch(t, layout.ConvertedPath(last), layout.ConvertedPath(first), layout.ErrorLogPath(failed))

	report, err := newRunner(t, cfg, layout, newFakeTools()).Survey(context.Background())
	if err != nil {
		t.Fatalf("Survey: %v", err)
	}
	if got := countOutcomes(report, workflow.StageSummary, ledger.OutcomeSucceeded); got != 3 {
		t.Fatalf("summary rows appended = %d, want 3", got)
	}

	rows := readCSV(t, layout.SummaryCSV())
	if len(rows) != 4 {
		t.Fatalf("csv rows = %d, want header + 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(summary.Header, ",") {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != layout.ConvertedPath(first) || rows[3][0] != layout.ConvertedPath(last) {
		t.Fatalf("rows not in timestamp order: %v, %v", rows[1][0], rows[3][0])
	}
	want := []string{layout.ErrorLogPath(failed), "NA", "NA", "NA", "NA", "NA", "NA", "NA", "NA", "NA"}
	if strings.Join(rows[2], "|") != strings.Join(want, "|") {
		t.Fatalf("error row = %v, want %v", rows[2], want)
	}
	if rows[1][3] != "[4]" {
		t.Fatalf("pinging interval = %q, want [4]", rows[1][3])
	}

	assertExists(t, layout.PingIntervalPlotPath(first))
	assertExists(t, layout.PingIntervalPlotPath(last))
	assertMissing(t, layout.PingIntervalPlotPath(failed))
}

func TestSurveyRerunAddsNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLedger())
	layout := newLayout(t, cfg)
	stem := testsupport.ObservationStem("SaKe2017", "20170720", 12, 0)
	testsupport.Touch(t, layout.ConvertedPath(stem))

	runner := newRunner(t, cfg, layout, newFakeTools())
	if _, err := runner.Survey(context.Background()); err != nil {
		t.Fatalf("first Survey: %v", err)
	}
	before := testsupport.ReadFile(t, layout.SummaryCSV())

	report, err := runner.Survey(context.Background())
	if err != nil {
		t.Fatalf("second Survey: %v", err)
	}
	if got := report.Count(ledger.OutcomeSkipped); got != 1 {
		t.Fatalf("skipped = %d, want 1", got)
	}
	if after := testsupport.ReadFile(t, layout.SummaryCSV()); after != before {
		t.Fatalf("summary rewritten:\n%s\nvs\n%s", before, after)
	}
}

func TestSurveyRecordFailureWritesLogAndContinues(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLedger())
	layout := newLayout(t, cfg)
	broken := testsupport.ObservationStem("SaKe2017", "20170720", 12, 0)
	fine := testsupport.ObservationStem("SaKe2017", "20170720", 13, 0)
	testsupport.Touch(t, layout.ConvertedPath(broken), layout.ConvertedPath(fine))

	tools := newFakeTools()
	tools.failBeam[broken] = true
	report, err := newRunner(t, cfg, layout, tools).Survey(context.Background())
	if err != nil {
		t.Fatalf("Survey: %v", err)
	}

	failures := report.Failures()
	if len(failures) != 1 || failures[0].Item != broken {
		t.Fatalf("failures = %+v", failures)
	}
	if failures[0].Class != "missing_data" {
		t.Fatalf("class = %q, want missing_data", failures[0].Class)
	}
	assertExists(t, layout.SurveyFailurePath(broken))

	rows := readCSV(t, layout.SummaryCSV())
	if len(rows) != 2 || rows[1][0] != layout.ConvertedPath(fine) {
		t.Fatalf("expected only the readable observation, got %v", rows)
	}
}
