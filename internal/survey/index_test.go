package survey_test

import (
	"errors"
	"path/filepath"
	"testing"

	"echosurvey/internal/services"
	"echosurvey/internal/survey"
	"echosurvey/internal/testsupport"
)

func TestScanReportsMalformedWithoutStopping(t *testing.T) {
	dir := t.TempDir()
	testsupport.Touch(t,
		filepath.Join(dir, "SaKe-D20170721-T010000.nc"),
		filepath.Join(dir, "SaKe-D20170720-T120000.nc"),
		filepath.Join(dir, "SaKe-D20170720-T120000_Sv.nc"),
		filepath.Join(dir, "junk9.nc"),
	)

	names, scanErrs, err := survey.Scan(dir, "*[0-9].nc", survey.KindObservation)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(names))
	}
	if names[0].Timestamp != "SaKe-D20170720-T120000" || names[1].Timestamp != "SaKe-D20170721-T010000" {
		t.Fatalf("expected path order, got %q then %q", names[0].Timestamp, names[1].Timestamp)
	}
	if len(scanErrs) != 1 {
		t.Fatalf("expected one scan error, got %v", scanErrs)
	}
	if !errors.Is(scanErrs[0], services.ErrMalformedName) {
		t.Fatalf("scan error should wrap ErrMalformedName: %v", scanErrs[0])
	}
	if filepath.Base(scanErrs[0].Path) != "junk9.nc" {
		t.Fatalf("unexpected scan error path %q", scanErrs[0].Path)
	}
}

func TestScanMissingDirectoryIsEmpty(t *testing.T) {
	names, scanErrs, err := survey.Scan(filepath.Join(t.TempDir(), "absent"), "*.nc")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(names) != 0 || len(scanErrs) != 0 {
		t.Fatalf("expected empty scan, got %v %v", names, scanErrs)
	}
}

func mustParse(t *testing.T, path string) survey.Name {
	t.Helper()
	name, err := survey.ParseName(path)
	if err != nil {
		t.Fatalf("ParseName(%q): %v", path, err)
	}
	return name
}

func TestMergeOrdersAndPrefersObservation(t *testing.T) {
	observations := []survey.Name{
		mustParse(t, "/nc/SaKe-D20170720-T130000.nc"),
		mustParse(t, "/nc/SaKe-D20170720-T110000.nc"),
	}
	errorLogs := []survey.Name{
		mustParse(t, "/err/SaKe-D20170720-T120000-error-log.txt"),
		mustParse(t, "/err/SaKe-D20170720-T110000-error-log.txt"),
	}

	entries := survey.Merge(observations, errorLogs)
	if len(entries) != 3 {
		t.Fatalf("expected 3 distinct timestamps, got %d", len(entries))
	}
	want := []string{"SaKe-D20170720-T110000", "SaKe-D20170720-T120000", "SaKe-D20170720-T130000"}
	for i, entry := range entries {
		if entry.Timestamp != want[i] {
			t.Fatalf("entry %d timestamp = %q, want %q", i, entry.Timestamp, want[i])
		}
	}
	if entries[0].Observation == nil || entries[0].ErrorLog != nil {
		t.Fatalf("observation should win over error log: %+v", entries[0])
	}
	if entries[1].Observation != nil || entries[1].ErrorLog == nil {
		t.Fatalf("expected error-only entry: %+v", entries[1])
	}
	if entries[1].ErrorLog.Path != "/err/SaKe-D20170720-T120000-error-log.txt" {
		t.Fatalf("unexpected error log path %q", entries[1].ErrorLog.Path)
	}
}

func TestSortByTimestamp(t *testing.T) {
	names := []survey.Name{
		mustParse(t, "/b/SaKe-D20170721-T000000.nc"),
		mustParse(t, "/a/SaKe-D20170720-T000000.nc"),
	}
	survey.SortByTimestamp(names)
	if names[0].Date != "D20170720" {
		t.Fatalf("expected earliest date first, got %q", names[0].Date)
	}
}
