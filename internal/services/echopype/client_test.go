package echopype_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"echosurvey/internal/echodata"
	"echosurvey/internal/services"
	"echosurvey/internal/services/echopype"
)

type stubExecutor struct {
	out    map[string][]byte
	err    error
	onRun  func(binary string, args []string)
	calls  int
	binary []string
	args   [][]string
}

func (s *stubExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	s.calls++
	s.binary = append(s.binary, binary)
	s.args = append(s.args, append([]string(nil), args...))
	if s.onRun != nil {
		s.onRun(binary, args)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.out[args[0]], nil
}

func newClient(t *testing.T, exec echopype.Executor) *echopype.Client {
	t.Helper()
	client, err := echopype.New(echopype.Binaries{Convert: "conv", Calibrate: "cal", Inspect: "insp"}, 5, echopype.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresBinaries(t *testing.T) {
	_, err := echopype.New(echopype.Binaries{Convert: "conv"}, 5)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestConvertReturnsSplitOutputs(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "SaKe-D20170720-T120000.raw")
	if err := os.WriteFile(raw, []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}
	exec := &stubExecutor{onRun: func(binary string, args []string) {
		for _, name := range []string{"SaKe-D20170720-T120000.nc", "SaKe-D20170720-T120000_part02.nc"} {
			_ = os.WriteFile(filepath.Join(dir, name), []byte("nc"), 0o644)
		}
	}}
	client := newClient(t, exec)

	outputs, err := client.Convert(context.Background(), raw)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %v", outputs)
	}
	if exec.binary[0] != "conv" || exec.args[0][0] != raw {
		t.Fatalf("unexpected invocation %s %v", exec.binary[0], exec.args[0])
	}
}

func TestConvertWithoutOutputFails(t *testing.T) {
	raw := filepath.Join(t.TempDir(), "SaKe-D20170720-T120000.raw")
	client := newClient(t, &stubExecutor{})
	_, err := client.Convert(context.Background(), raw)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestConvertWrapsExecutorError(t *testing.T) {
	client := newClient(t, &stubExecutor{err: errors.New("exit status 1")})
	_, err := client.Convert(context.Background(), "/tmp/x-D1-T1.raw")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if services.Classify(err) != services.ClassConversion {
		t.Fatalf("expected conversion class, got %s", services.Classify(err))
	}
}

func TestCalibrateChecksOutput(t *testing.T) {
	dir := t.TempDir()
	nc := filepath.Join(dir, "SaKe-D20170720-T120000.nc")
	client := newClient(t, &stubExecutor{onRun: func(string, []string) {
		_ = os.WriteFile(echopype.CalibratedPath(nc), []byte("sv"), 0o644)
	}})

	out, err := client.Calibrate(context.Background(), nc)
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if filepath.Base(out) != "SaKe-D20170720-T120000_Sv.nc" {
		t.Fatalf("unexpected calibrated path %s", out)
	}

	missing := newClient(t, &stubExecutor{})
	if _, err := missing.Calibrate(context.Background(), filepath.Join(dir, "other-D1-T1.nc")); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for missing output, got %v", err)
	}
}

func TestReaderDecodesInspectorOutput(t *testing.T) {
	exec := &stubExecutor{out: map[string][]byte{
		echodata.GroupPlatform: []byte(`{"time":["2017-07-20T12:00:00Z"],"longitude":[-124.2],"latitude":[44.6]}`),
		echodata.GroupBeam:     []byte(`{"ping_time":["2017-07-20T12:00:00Z"],"frequency":[38000]}`),
	}}
	client := newClient(t, exec)

	platform, err := client.Platform(context.Background(), "/nc/a-D1-T1.nc")
	if err != nil {
		t.Fatalf("Platform: %v", err)
	}
	if platform.Longitude[0] != -124.2 {
		t.Fatalf("unexpected longitude %v", platform.Longitude)
	}
	if exec.args[0][0] != echodata.GroupPlatform || exec.args[0][1] != "/nc/a-D1-T1.nc" {
		t.Fatalf("unexpected inspector args %v", exec.args[0])
	}

	beam, err := client.Beam(context.Background(), "/nc/a-D1-T1.nc")
	if err != nil {
		t.Fatalf("Beam: %v", err)
	}
	if len(beam.Frequency) != 1 {
		t.Fatalf("unexpected beam %+v", beam)
	}

	if _, err := client.Environment(context.Background(), "/nc/a-D1-T1.nc"); !errors.Is(err, services.ErrMissingData) {
		t.Fatalf("expected missing data for empty environment document, got %v", err)
	}
}

func TestCommandExecutorRunsRealProcess(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "inspect.sh")
	body := "#!/bin/sh\nif [ \"$1\" = Platform ]; then\n  echo '{\"longitude\":[-124],\"latitude\":[44]}'\n  exit 0\nfi\necho \"unknown group $1\" >&2\nexit 3\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	client, err := echopype.New(echopype.Binaries{Convert: script, Calibrate: script, Inspect: script}, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	platform, err := client.Platform(context.Background(), "/nc/a-D1-T1.nc")
	if err != nil {
		t.Fatalf("Platform: %v", err)
	}
	if len(platform.Positions()) != 1 {
		t.Fatalf("unexpected positions %v", platform.Positions())
	}

	_, err = client.Beam(context.Background(), "/nc/a-D1-T1.nc")
	if err == nil || !strings.Contains(err.Error(), "unknown group Beam") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
