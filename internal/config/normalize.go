package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLists()
	c.normalizeLayout()
	c.normalizeTools()
	if err := c.normalizeMap(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) clearLists() {
	c.Extent.Seed = nil
	c.Plot.EchogramFrequencies = nil
	c.Plot.TrackColors = nil
	c.Map.Landmarks = nil
}

func (c *Config) normalizeLists() {
	if len(c.Extent.Seed) == 0 {
		c.Extent.Seed = append([]float64(nil), DefaultSeedExtent...)
	}
	if len(c.Plot.EchogramFrequencies) == 0 {
		c.Plot.EchogramFrequencies = append([]float64(nil), DefaultEchogramFrequencies...)
	}
	if len(c.Plot.TrackColors) == 0 {
		c.Plot.TrackColors = append([]string(nil), DefaultTrackColors...)
	}
	if len(c.Map.Landmarks) == 0 {
		c.Map.Landmarks = append([]Landmark(nil), DefaultLandmarks...)
	}
}

func (c *Config) normalizeLayout() {
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	fill(&c.Layout.RawDir, defaultRawDir)
	fill(&c.Layout.ErrorDir, defaultErrorDir)
	fill(&c.Layout.ConvertedDir, defaultConvertedDir)
	fill(&c.Layout.EchogramDir, defaultEchogramDir)
	fill(&c.Layout.PingIntervalDir, defaultPingIntervalDir)
	fill(&c.Layout.DailyTrackDir, defaultDailyTrackDir)
	fill(&c.Layout.TenDayTrackDir, defaultTenDayTrackDir)
	fill(&c.Layout.SummarySuffix, defaultSummarySuffix)
	fill(&c.Layout.RawPattern, defaultRawPattern)
	fill(&c.Layout.ConvertedPattern, defaultConvertedPattern)
}

func (c *Config) normalizeTools() {
	override := func(value *string, env, fallback string) {
		if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*value = v
		}
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	override(&c.Tools.Convert, "ECHOSURVEY_CONVERT_BIN", defaultConvertBinary)
	override(&c.Tools.Calibrate, "ECHOSURVEY_CALIBRATE_BIN", defaultCalibrateBinary)
	override(&c.Tools.Inspect, "ECHOSURVEY_INSPECT_BIN", defaultInspectBinary)
	if c.Tools.TimeoutSeconds <= 0 {
		c.Tools.TimeoutSeconds = defaultToolTimeoutSeconds
	}
}

func (c *Config) normalizeMap() error {
	var err error
	if c.Map.CoastlineGeoJSON, err = expandPath(strings.TrimSpace(c.Map.CoastlineGeoJSON)); err != nil {
		return fmt.Errorf("map.coastline_geojson: %w", err)
	}
	if c.Map.ContoursGeoJSON, err = expandPath(strings.TrimSpace(c.Map.ContoursGeoJSON)); err != nil {
		return fmt.Errorf("map.contours_geojson: %w", err)
	}
	for i := range c.Map.Landmarks {
		c.Map.Landmarks[i].Name = strings.TrimSpace(c.Map.Landmarks[i].Name)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if v, ok := os.LookupEnv("ECHOSURVEY_LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		c.Logging.Level = v
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
}
