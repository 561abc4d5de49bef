package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"echosurvey/internal/config"
)

const (
	convertScript = `#!/bin/sh
case "$1" in
  *T030000*) echo "corrupt datagram" >&2; exit 1 ;;
esac
printf nc > "${1%.raw}.nc"
`
	calibrateScript = `#!/bin/sh
printf sv > "${1%.nc}_Sv.nc"
`
	inspectScript = `#!/bin/sh
case "$1" in
  Beam)
    echo '{"ping_time":["2017-07-20T00:00:00Z","2017-07-20T00:00:01Z","2017-07-20T00:00:02Z","2017-07-20T00:00:03Z","2017-07-20T00:00:04.5Z","2017-07-20T00:00:05.5Z"],"frequency":[38000,120000],"sample_interval":[0.000256,0.000256],"transmit_duration_nominal":[0.001024,0.001024],"transmit_power":[2000,250]}' ;;
  Environment)
    echo '{"sound_speed_indicative":[1485.5],"absorption_indicative":[0.0098,0.0378]}' ;;
  Platform)
    echo '{"time":["2017-07-20T00:00:00Z","2017-07-20T00:01:00Z"],"longitude":[-124.5,-124.4],"latitude":[44.1,44.2]}' ;;
  *) exit 2 ;;
esac
`
)

type cliTestEnv struct {
	configPath string
	baseDir    string
	cfg        *config.Config
}

// setupCLITestEnv writes shell stand-ins for the echopype tools and a config
// file pointing at them.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	tmp := t.TempDir()
	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	writeScript := func(name, body string) string {
		path := filepath.Join(binDir, name)
		if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	cfg := config.Default()
	cfg.Tools.Convert = writeScript("fake-convert", convertScript)
	cfg.Tools.Calibrate = writeScript("fake-calibrate", calibrateScript)
	cfg.Tools.Inspect = writeScript("fake-inspect", inspectScript)
	cfg.Tools.TimeoutSeconds = 10
	cfg.Plot.DPI = 40
	cfg.Preflight.MinFreeGiB = 0

	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	configPath := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(configPath, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	baseDir := filepath.Join(tmp, "surveys")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("mkdir surveys: %v", err)
	}
	return &cliTestEnv{configPath: configPath, baseDir: baseDir, cfg: &cfg}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

func touchRaw(t *testing.T, dir string, stems ...string) {
	t.Helper()
	for _, stem := range stems {
		if err := os.WriteFile(filepath.Join(dir, stem+".raw"), []byte("raw"), 0o644); err != nil {
			t.Fatalf("write raw %s: %v", stem, err)
		}
	}
}
