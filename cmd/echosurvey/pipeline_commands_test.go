package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"echosurvey/internal/survey"
)

func TestInitScaffoldsSurvey(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"init", env.baseDir, "sh1707"}, env.configPath)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	layout := survey.NewLayout(env.cfg, env.baseDir, "sh1707")
	for _, dir := range layout.Dirs() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
		requireContains(t, out, dir)
	}
	if err := layout.Check(); err != nil {
		t.Fatalf("layout check: %v", err)
	}
}

func TestInitRejectsNestedCruiseName(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"init", env.baseDir, "a/b"}, env.configPath); err == nil {
		t.Fatal("expected invalid cruise name error")
	}
}

func TestConvertThenSurvey(t *testing.T) {
	env := setupCLITestEnv(t)
	layout := survey.NewLayout(env.cfg, env.baseDir, "sh1707")
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	touchRaw(t, layout.RawDir(),
		"SH1707-D20170720-T000000",
		"SH1707-D20170720-T010000",
		"SH1707-D20170720-T030000",
	)

	out, _, err := runCLI(t, []string{"convert", env.baseDir, "sh1707"}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Convert run")
	requireContains(t, out, "Failures:")

	for _, stem := range []string{"SH1707-D20170720-T000000", "SH1707-D20170720-T010000"} {
		if _, err := os.Stat(layout.ConvertedPath(stem)); err != nil {
			t.Fatalf("expected converted %s: %v", stem, err)
		}
	}
	if _, err := os.Stat(layout.ErrorLogPath("SH1707-D20170720-T030000")); err != nil {
		t.Fatalf("expected conversion error log: %v", err)
	}

	out, _, err = runCLI(t, []string{"survey", env.baseDir, "sh1707"}, env.configPath)
	if err != nil {
		t.Fatalf("survey: %v", err)
	}
	requireContains(t, out, "Survey run")

	file, err := os.Open(layout.SummaryCSV())
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse summary: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	var sawNA, sawAnomaly bool
	for _, row := range rows[1:] {
		if strings.Contains(row[0], "T030000") && row[1] == "NA" {
			sawNA = true
		}
		if row[3] == "[4]" {
			sawAnomaly = true
		}
	}
	if !sawNA {
		t.Fatalf("expected NA row for failed conversion: %v", rows)
	}
	if !sawAnomaly {
		t.Fatalf("expected ping anomaly at index 4: %v", rows)
	}
	if _, err := os.Stat(layout.PingIntervalPlotPath("SH1707-D20170720-T000000")); err != nil {
		t.Fatalf("expected ping interval chart: %v", err)
	}
	if _, err := os.Stat(filepath.Join(layout.Root, env.cfg.Metrics.Textfile)); err != nil {
		t.Fatalf("expected metrics textfile: %v", err)
	}

	out, _, err = runCLI(t, []string{"report", layout.Root}, env.configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "convert")
	requireContains(t, out, "survey")
	requireContains(t, out, "No failures in run")

	out, _, err = runCLI(t, []string{"report", layout.Root, "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("report --limit: %v", err)
	}
	requireContains(t, out, "completed")
}

func TestSurveyRefusesWhenLocked(t *testing.T) {
	env := setupCLITestEnv(t)
	layout := survey.NewLayout(env.cfg, env.baseDir, "sh1707")
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	lock := flock.New(filepath.Join(layout.Root, lockFileName))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	_, _, err = runCLI(t, []string{"survey", env.baseDir, "sh1707"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestDailyRequiresExistingSurvey(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "nope")
	if _, _, err := runCLI(t, []string{"daily", missing, "D20170720"}, env.configPath); err == nil {
		t.Fatal("expected error for missing survey directory")
	}
}

func TestReportWithoutLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	layout := survey.NewLayout(env.cfg, env.baseDir, "sh1707")
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	out, _, err := runCLI(t, []string{"report", layout.Root}, env.configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "no runs recorded")
}
