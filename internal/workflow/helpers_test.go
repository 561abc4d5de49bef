package workflow_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"echosurvey/internal/config"
	"echosurvey/internal/echodata"
	"echosurvey/internal/services"
	"echosurvey/internal/services/echopype"
	"echosurvey/internal/survey"
	"echosurvey/internal/workflow"
)

// fakeTools stands in for the echopype executables. Converted and
// calibrated files are written as one-byte placeholders; group reads derive
// deterministic data from the timestamp in the file name.
type fakeTools struct {
	failConvert  map[string]bool
	splitConvert map[string]bool
	failBeam     map[string]bool
	failPlatform map[string]bool
	zeroFix      map[string]bool

	converted  []string
	calibrated []string
}

func newFakeTools() *fakeTools {
	return &fakeTools{
		failConvert:  map[string]bool{},
		splitConvert: map[string]bool{},
		failBeam:     map[string]bool{},
		failPlatform: map[string]bool{},
		zeroFix:      map[string]bool{},
	}
}

func (f *fakeTools) Convert(_ context.Context, rawPath string) ([]string, error) {
	stem := stemOf(rawPath)
	if f.failConvert[stem] {
		return nil, services.Wrap(services.ErrExternalTool, "echopype", "convert", "decoder exited with status 1", nil)
	}
	dir := filepath.Dir(rawPath)
	outputs := []string{filepath.Join(dir, stem+".nc")}
	if f.splitConvert[stem] {
		outputs = append(outputs, filepath.Join(dir, stem+"_part2.nc"))
	}
	for _, out := range outputs {
		if err := os.WriteFile(out, []byte("nc"), 0o644); err != nil {
			return nil, err
		}
	}
	f.converted = append(f.converted, rawPath)
	return outputs, nil
}

func (f *fakeTools) Calibrate(_ context.Context, ncPath string) (string, error) {
	out := echopype.CalibratedPath(ncPath)
	if err := os.WriteFile(out, []byte("sv"), 0o644); err != nil {
		return "", err
	}
	f.calibrated = append(f.calibrated, ncPath)
	return out, nil
}

func (f *fakeTools) Platform(_ context.Context, path string) (echodata.Platform, error) {
	if f.failPlatform[stemOf(path)] {
		return echodata.Platform{}, services.Wrap(services.ErrMissingData, "echopype", "inspect Platform", "no positions", nil)
	}
	at, err := observedAt(path)
	if err != nil {
		return echodata.Platform{}, err
	}
	if f.zeroFix[stemOf(path)] {
		return echodata.Platform{
			Time:      []time.Time{at, at.Add(time.Minute)},
			Longitude: echodata.Series{0, 0},
			Latitude:  echodata.Series{0, 0},
		}, nil
	}
	offset := float64(at.YearDay()%10) * 0.1
	return echodata.Platform{
		Time:      []time.Time{at, at.Add(time.Minute), at.Add(2 * time.Minute)},
		Longitude: echodata.Series{-124.5 + offset, -124.45 + offset, -124.4 + offset},
		Latitude:  echodata.Series{44.0 + offset, 44.05 + offset, 44.1 + offset},
	}, nil
}

func (f *fakeTools) Beam(_ context.Context, path string) (echodata.Beam, error) {
	if f.failBeam[stemOf(path)] {
		return echodata.Beam{}, services.Wrap(services.ErrMissingData, "echopype", "inspect Beam", "truncated file", nil)
	}
	at, err := observedAt(path)
	if err != nil {
		return echodata.Beam{}, err
	}
	offsets := []time.Duration{0, time.Second, 2 * time.Second, 3 * time.Second, 4500 * time.Millisecond, 5500 * time.Millisecond}
	pings := make([]time.Time, len(offsets))
	for i, d := range offsets {
		pings[i] = at.Add(d)
	}
	return echodata.Beam{
		PingTime:         pings,
		Frequency:        echodata.Series{18000, 38000, 120000},
		SampleInterval:   echodata.Series{0.000256, 0.000256, 0.000256},
		TransmitDuration: echodata.Series{0.001024, 0.001024, 0.001024},
		TransmitPower:    echodata.Series{2000, 2000, 250},
	}, nil
}

func (f *fakeTools) Environment(context.Context, string) (echodata.Environment, error) {
	return echodata.Environment{
		SoundSpeed: echodata.Series{1485.5},
		Absorption: echodata.Series{0.0027, 0.0098, 0.0378},
	}, nil
}

func (f *fakeTools) Sv(_ context.Context, path string) (echodata.Sv, error) {
	at, err := observedAt(path)
	if err != nil {
		return echodata.Sv{}, err
	}
	freqs := echodata.Series{18000, 38000, 120000}
	pings := []time.Time{at, at.Add(time.Second), at.Add(2 * time.Second)}
	ranges := echodata.Series{1, 2, 3, 4}
	values := make([][]echodata.Series, len(freqs))
	for ch := range values {
		values[ch] = make([]echodata.Series, len(pings))
		for p := range pings {
			values[ch][p] = echodata.Series{-60, -70, -80, -90}
		}
	}
	return echodata.Sv{Frequency: freqs, PingTime: pings, Range: ranges, Values: values}, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return strings.TrimSuffix(base, "_Sv")
}

func observedAt(path string) (time.Time, error) {
	name, err := survey.ParseName(path)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse("D20060102T150405", name.Date+name.Time)
}

func newLayout(t *testing.T, cfg *config.Config) survey.Layout {
	t.Helper()
	layout := survey.NewLayout(cfg, t.TempDir(), "sh1707")
	if err := layout.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	return layout
}

func newRunner(t *testing.T, cfg *config.Config, layout survey.Layout, tools workflow.Tools, opts ...workflow.Option) *workflow.Runner {
	t.Helper()
	runner, err := workflow.New(cfg, layout, tools, opts...)
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	return runner
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s to be absent", path)
	}
}

func countOutcomes(report *workflow.Report, stage, outcome string) int {
	n := 0
	for _, item := range report.Items {
		if item.Stage == stage && item.Outcome == outcome {
			n++
		}
	}
	return n
}

var _ workflow.Tools = (*fakeTools)(nil)
