package survey

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"echosurvey/internal/config"
)

// Layout resolves the fixed directory structure beneath one survey root.
type Layout struct {
	Root   string
	Cruise string
	dirs   config.Layout
}

// NewLayout returns the layout for <basedir>/<cruise>.
func NewLayout(cfg *config.Config, basedir, cruise string) Layout {
	return Layout{
		Root:   filepath.Join(basedir, cruise),
		Cruise: cruise,
		dirs:   cfg.Layout,
	}
}

// OpenLayout returns the layout for an existing survey directory. The cruise
// name is the final path element.
func OpenLayout(cfg *config.Config, surveyDir string) Layout {
	root := filepath.Clean(surveyDir)
	return Layout{
		Root:   root,
		Cruise: filepath.Base(root),
		dirs:   cfg.Layout,
	}
}

func (l Layout) RawDir() string          { return filepath.Join(l.Root, l.dirs.RawDir) }
func (l Layout) ErrorDir() string        { return filepath.Join(l.Root, l.dirs.ErrorDir) }
func (l Layout) ConvertedDir() string    { return filepath.Join(l.Root, l.dirs.ConvertedDir) }
func (l Layout) EchogramDir() string     { return filepath.Join(l.Root, l.dirs.EchogramDir) }
func (l Layout) PingIntervalDir() string { return filepath.Join(l.Root, l.dirs.PingIntervalDir) }
func (l Layout) DailyTrackDir() string   { return filepath.Join(l.Root, l.dirs.DailyTrackDir) }
func (l Layout) TenDayTrackDir() string  { return filepath.Join(l.Root, l.dirs.TenDayTrackDir) }

// RawPattern and ConvertedPattern are the glob patterns for raw captures and
// converted observation files.
func (l Layout) RawPattern() string       { return l.dirs.RawPattern }
func (l Layout) ConvertedPattern() string { return l.dirs.ConvertedPattern }

// Dirs lists every scaffolded subdirectory.
func (l Layout) Dirs() []string {
	return []string{
		l.RawDir(),
		l.EchogramDir(),
		l.ErrorDir(),
		l.ConvertedDir(),
		l.PingIntervalDir(),
		l.DailyTrackDir(),
		l.TenDayTrackDir(),
	}
}

// Ensure creates the survey root and every subdirectory. Existing
// directories are left alone.
func (l Layout) Ensure() error {
	if strings.TrimSpace(l.Root) == "" {
		return fmt.Errorf("survey root is empty")
	}
	for _, dir := range l.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Check reports the first missing subdirectory.
func (l Layout) Check() error {
	for _, dir := range l.Dirs() {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("survey directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("survey directory %s is not a directory", dir)
		}
	}
	return nil
}

// SummaryCSV returns <root>/<cruise>_summary.csv.
func (l Layout) SummaryCSV() string {
	return filepath.Join(l.Root, l.Cruise+l.dirs.SummarySuffix)
}

// ConvertedPath returns the converted observation path for a timestamp key.
func (l Layout) ConvertedPath(timestamp string) string {
	return filepath.Join(l.ConvertedDir(), timestamp+".nc")
}

// CalibratedPath returns the calibrated derivative path for a timestamp key.
func (l Layout) CalibratedPath(timestamp string) string {
	return filepath.Join(l.ConvertedDir(), timestamp+calibratedSuffix+".nc")
}

// ErrorLogPath returns the conversion failure log for a timestamp key.
func (l Layout) ErrorLogPath(timestamp string) string {
	return filepath.Join(l.ErrorDir(), timestamp+errorLogSuffix+".txt")
}

// SurveyFailurePath returns the record-building failure log for a timestamp key.
func (l Layout) SurveyFailurePath(timestamp string) string {
	return filepath.Join(l.ErrorDir(), timestamp+surveyFailureSuffix+".txt")
}

// PingIntervalPlotPath returns the ping-interval chart for a timestamp key.
func (l Layout) PingIntervalPlotPath(timestamp string) string {
	return filepath.Join(l.PingIntervalDir(), timestamp+"_ping_diffs.png")
}

// EchogramPath names a batch echogram after its first file and last time.
func (l Layout) EchogramPath(first, last Name) string {
	return filepath.Join(l.EchogramDir(), first.Timestamp+"-"+last.Time+"-echo.png")
}

// DailyTrackPath names a daily ship-track map after its first file and last time.
func (l Layout) DailyTrackPath(first, last Name) string {
	return filepath.Join(l.DailyTrackDir(), first.Timestamp+"-"+last.Time+"_shiptrack.png")
}

// TenDayTrackPath names a ten-day ship-track map after its date range.
func (l Layout) TenDayTrackPath(firstDate, lastDate string) string {
	return filepath.Join(l.TenDayTrackDir(), firstDate+"-"+lastDate+"_shiptrack.png")
}

// Observations scans the converted directory for observation files.
func (l Layout) Observations() ([]Name, []ScanError, error) {
	return Scan(l.ConvertedDir(), l.ConvertedPattern(), KindObservation)
}

// Calibrated scans the converted directory for calibrated derivatives.
func (l Layout) Calibrated() ([]Name, []ScanError, error) {
	return Scan(l.ConvertedDir(), "*"+calibratedSuffix+".nc", KindCalibrated)
}

// ErrorLogs scans the error directory for conversion failure logs.
func (l Layout) ErrorLogs() ([]Name, []ScanError, error) {
	return Scan(l.ErrorDir(), "*", KindErrorLog)
}

// RawFiles scans the raw directory for captures awaiting conversion.
func (l Layout) RawFiles() ([]Name, []ScanError, error) {
	return Scan(l.RawDir(), l.RawPattern())
}
