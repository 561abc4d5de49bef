package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Layout names the fixed subdirectories created under every survey root.
type Layout struct {
	RawDir           string `toml:"raw_dir"`
	ErrorDir         string `toml:"error_dir"`
	ConvertedDir     string `toml:"converted_dir"`
	EchogramDir      string `toml:"echogram_dir"`
	PingIntervalDir  string `toml:"ping_interval_dir"`
	DailyTrackDir    string `toml:"daily_track_dir"`
	TenDayTrackDir   string `toml:"tenday_track_dir"`
	SummarySuffix    string `toml:"summary_suffix"`
	RawPattern       string `toml:"raw_pattern"`
	ConvertedPattern string `toml:"converted_pattern"`
}

// Tools contains the external executables that decode, calibrate, and
// inspect survey files.
type Tools struct {
	Convert        string `toml:"convert"`
	Calibrate      string `toml:"calibrate"`
	Inspect        string `toml:"inspect"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Region is a west/east/south/north clamp applied to computed map extents.
type Region struct {
	West  float64 `toml:"west"`
	East  float64 `toml:"east"`
	South float64 `toml:"south"`
	North float64 `toml:"north"`
}

// Extent contains padding, the ten-day seed box, and the clamp regions.
type Extent struct {
	PadLon       float64   `toml:"pad_lon"`
	PadLat       float64   `toml:"pad_lat"`
	Seed         []float64 `toml:"seed"`
	DailyRegion  Region    `toml:"daily_region"`
	TenDayRegion Region    `toml:"tenday_region"`
}

// Plot contains rendering parameters shared by the plotting commands.
type Plot struct {
	BatchSize           int       `toml:"batch_size"`
	DPI                 int       `toml:"dpi"`
	EchogramFrequencies []float64 `toml:"echogram_frequencies"`
	SvMin               float64   `toml:"sv_min"`
	SvMax               float64   `toml:"sv_max"`
	TrackColors         []string  `toml:"track_colors"`
}

// Landmark is a labelled point drawn on ship-track maps.
type Landmark struct {
	Name string  `toml:"name"`
	Lat  float64 `toml:"lat"`
	Lon  float64 `toml:"lon"`
}

// Map contains backdrop layers and landmarks for ship-track maps.
type Map struct {
	CoastlineGeoJSON string     `toml:"coastline_geojson"`
	ContoursGeoJSON  string     `toml:"contours_geojson"`
	Landmarks        []Landmark `toml:"landmarks"`
}

// Summary contains survey CSV settings.
type Summary struct {
	PingJumpThresholdMS int `toml:"ping_jump_threshold_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Ledger controls the per-survey SQLite run ledger.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	File    string `toml:"file"`
}

// Metrics controls the Prometheus textfile export.
type Metrics struct {
	Enabled  bool   `toml:"enabled"`
	Textfile string `toml:"textfile"`
}

// Preflight contains thresholds for the doctor command.
type Preflight struct {
	MinFreeGiB int `toml:"min_free_gib"`
}

// Config encapsulates all configuration values for echosurvey.
//
// Configuration sections by subsystem:
//   - Layout: survey directory names and file patterns
//   - Tools: raw decoder, calibrator, and inspector executables
//   - Extent: map padding, ten-day seed box, and clamp regions
//   - Plot: batch size, resolution, echogram scale, track palette
//   - Map: coastline/contour backdrops and landmarks
//   - Summary: ping cadence anomaly threshold
//   - Logging, Ledger, Metrics, Preflight: ambient plumbing
type Config struct {
	Layout    Layout    `toml:"layout"`
	Tools     Tools     `toml:"tools"`
	Extent    Extent    `toml:"extent"`
	Plot      Plot      `toml:"plot"`
	Map       Map       `toml:"map"`
	Summary   Summary   `toml:"summary"`
	Logging   Logging   `toml:"logging"`
	Ledger    Ledger    `toml:"ledger"`
	Metrics   Metrics   `toml:"metrics"`
	Preflight Preflight `toml:"preflight"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/echosurvey/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: defaults apply. The returned config has environment overrides
// applied and paths expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	// Lists are decoded into empty slices so TOML array tables replace the
	// defaults instead of appending to them; normalize refills unset lists.
	cfg.clearLists()

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads ./.env when present. Variables already set win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/echosurvey/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("echosurvey.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// PingJumpThreshold is the second-order ping interval difference that marks
// a cadence change, in nanoseconds.
func (c *Config) PingJumpThreshold() int64 {
	return int64(c.Summary.PingJumpThresholdMS) * 1_000_000
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(out), nil
}
