package config

const (
	defaultRawDir              = "ek60_raw"
	defaultErrorDir            = "ek60_convert_error"
	defaultConvertedDir        = "ek60_nc"
	defaultEchogramDir         = "echogram"
	defaultPingIntervalDir     = "ping_interval"
	defaultDailyTrackDir       = "ship_track_01day"
	defaultTenDayTrackDir      = "ship_track_10day"
	defaultSummarySuffix       = "_summary.csv"
	defaultRawPattern          = "*.raw"
	defaultConvertedPattern    = "*[0-9].nc"
	defaultConvertBinary       = "echopype-convert"
	defaultCalibrateBinary     = "echopype-calibrate"
	defaultInspectBinary       = "echopype-inspect"
	defaultToolTimeoutSeconds  = 1800
	defaultPad                 = 0.25
	defaultBatchSize           = 10
	defaultDPI                 = 120
	defaultSvMin               = -100
	defaultSvMax               = -40
	defaultPingJumpThresholdMS = 100
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLedgerFile          = "echosurvey.db"
	defaultMetricsTextfile     = "echosurvey.prom"
	defaultMinFreeGiB          = 5
)

// DefaultSeedExtent is where the ten-day fold starts before any date widens it
// (central Oregon shelf).
var DefaultSeedExtent = []float64{-124.74383666666667, -123.798, 43.99783333333333, 44.8765}

// DefaultEchogramFrequencies are the EK60 channels plotted on echograms, in Hz.
var DefaultEchogramFrequencies = []float64{18000, 38000, 120000}

// DefaultTrackColors is a ten-colour qualitative palette, one per track in a batch.
var DefaultTrackColors = []string{
	"#A6CEE3",
	"#1F78B4",
	"#B2DF8A",
	"#33A02C",
	"#FB9A99",
	"#E31A1C",
	"#FDBF6F",
	"#FF7F00",
	"#CAB2D6",
	"#6A3D9A",
}

// DefaultLandmarks are the West Coast reference points drawn on track maps.
var DefaultLandmarks = []Landmark{
	{Name: "San Diego", Lat: 32.7157, Lon: -117.1611},
	{Name: "San Miguel Island", Lat: 34.0376, Lon: -120.3724},
	{Name: "San Francisco", Lat: 37.7749, Lon: -122.4194},
	{Name: "Cape Mendocino", Lat: 40.4401, Lon: -124.4095},
	{Name: "Cape Blanco", Lat: 42.8376, Lon: -124.5640},
	{Name: "Yaquina Head", Lat: 44.6737, Lon: -124.0774},
	{Name: "Columbia River", Lat: 46.1879, Lon: -123.8313},
	{Name: "Neah Bay", Lat: 48.3681, Lon: -124.6250},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Layout: Layout{
			RawDir:           defaultRawDir,
			ErrorDir:         defaultErrorDir,
			ConvertedDir:     defaultConvertedDir,
			EchogramDir:      defaultEchogramDir,
			PingIntervalDir:  defaultPingIntervalDir,
			DailyTrackDir:    defaultDailyTrackDir,
			TenDayTrackDir:   defaultTenDayTrackDir,
			SummarySuffix:    defaultSummarySuffix,
			RawPattern:       defaultRawPattern,
			ConvertedPattern: defaultConvertedPattern,
		},
		Tools: Tools{
			Convert:        defaultConvertBinary,
			Calibrate:      defaultCalibrateBinary,
			Inspect:        defaultInspectBinary,
			TimeoutSeconds: defaultToolTimeoutSeconds,
		},
		Extent: Extent{
			PadLon:       defaultPad,
			PadLat:       defaultPad,
			Seed:         append([]float64(nil), DefaultSeedExtent...),
			DailyRegion:  Region{West: -135, East: -117, South: 25, North: 70},
			TenDayRegion: Region{West: -135, East: -117, South: 32, North: 49},
		},
		Plot: Plot{
			BatchSize:           defaultBatchSize,
			DPI:                 defaultDPI,
			EchogramFrequencies: append([]float64(nil), DefaultEchogramFrequencies...),
			SvMin:               defaultSvMin,
			SvMax:               defaultSvMax,
			TrackColors:         append([]string(nil), DefaultTrackColors...),
		},
		Map: Map{
			Landmarks: append([]Landmark(nil), DefaultLandmarks...),
		},
		Summary: Summary{
			PingJumpThresholdMS: defaultPingJumpThresholdMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Ledger: Ledger{
			Enabled: true,
			File:    defaultLedgerFile,
		},
		Metrics: Metrics{
			Enabled:  true,
			Textfile: defaultMetricsTextfile,
		},
		Preflight: Preflight{
			MinFreeGiB: defaultMinFreeGiB,
		},
	}
}
