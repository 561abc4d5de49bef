package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtent(); err != nil {
		return err
	}
	if err := c.validatePlot(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtent() error {
	if c.Extent.PadLon < 0 || c.Extent.PadLat < 0 {
		return errors.New("extent.pad_lon and extent.pad_lat must be non-negative")
	}
	if len(c.Extent.Seed) != 4 {
		return fmt.Errorf("extent.seed must have 4 values (west, east, south, north), got %d", len(c.Extent.Seed))
	}
	if c.Extent.Seed[0] > c.Extent.Seed[1] || c.Extent.Seed[2] > c.Extent.Seed[3] {
		return errors.New("extent.seed must satisfy west <= east and south <= north")
	}
	if err := validateRegion("extent.daily_region", c.Extent.DailyRegion); err != nil {
		return err
	}
	return validateRegion("extent.tenday_region", c.Extent.TenDayRegion)
}

func validateRegion(name string, r Region) error {
	for _, v := range []float64{r.West, r.East, r.South, r.North} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must contain finite values", name)
		}
	}
	if r.West >= r.East {
		return fmt.Errorf("%s: west (%g) must be less than east (%g)", name, r.West, r.East)
	}
	if r.South >= r.North {
		return fmt.Errorf("%s: south (%g) must be less than north (%g)", name, r.South, r.North)
	}
	return nil
}

func (c *Config) validatePlot() error {
	if c.Plot.BatchSize <= 0 {
		return errors.New("plot.batch_size must be positive")
	}
	if c.Plot.DPI <= 0 {
		return errors.New("plot.dpi must be positive")
	}
	if len(c.Plot.EchogramFrequencies) == 0 {
		return errors.New("plot.echogram_frequencies must list at least one frequency")
	}
	if c.Plot.SvMin >= c.Plot.SvMax {
		return errors.New("plot.sv_min must be less than plot.sv_max")
	}
	if len(c.Plot.TrackColors) == 0 {
		return errors.New("plot.track_colors must list at least one colour")
	}
	for _, value := range c.Plot.TrackColors {
		if _, err := ParseHexColor(value); err != nil {
			return fmt.Errorf("plot.track_colors: %w", err)
		}
	}
	return nil
}

func (c *Config) validateSummary() error {
	if c.Summary.PingJumpThresholdMS <= 0 {
		return errors.New("summary.ping_jump_threshold_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// ParseHexColor parses a "#RRGGBB" colour.
func ParseHexColor(value string) (color.RGBA, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", value)
	}
	n, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", value)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}
