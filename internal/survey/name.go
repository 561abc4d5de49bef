package survey

import (
	"fmt"
	"path/filepath"
	"strings"

	"echosurvey/internal/services"
)

// Kind distinguishes the file classes that share one timestamp namespace.
type Kind int

const (
	KindObservation Kind = iota
	KindCalibrated
	KindErrorLog
	KindSurveyFailure
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindObservation:
		return "observation"
	case KindCalibrated:
		return "calibrated"
	case KindErrorLog:
		return "error_log"
	case KindSurveyFailure:
		return "survey_failure"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

const (
	surveyFailureSuffix = "-survey-error-log"
	errorLogSuffix      = "-error-log"
	calibratedSuffix    = "_Sv"
	rawExtension        = ".raw"
)

// Name is a survey file with its identifier parsed from the file name.
//
// Timestamp is the lexicographically sortable key shared by a raw capture,
// its converted and calibrated files, and any error log written for it.
type Name struct {
	Path      string
	Timestamp string
	Date      string
	Time      string
	Kind      Kind
}

// Base returns the file name without its directory.
func (n Name) Base() string {
	return filepath.Base(n.Path)
}

// ParseName derives the timestamp key, date, and time from a survey file name.
//
// The key is the base name up to its first '.', with any error-log or
// calibration marker removed. Split on '-', the final component is the time
// and the one before it is the date. Names with fewer than two components
// fail with services.ErrMalformedName.
func ParseName(path string) (Name, error) {
	base := filepath.Base(path)
	stem := base
	ext := ""
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		stem = base[:idx]
		ext = strings.ToLower(base[idx:])
	}

	kind := KindObservation
	switch {
	case strings.HasSuffix(stem, surveyFailureSuffix):
		kind = KindSurveyFailure
		stem = strings.TrimSuffix(stem, surveyFailureSuffix)
	case strings.HasSuffix(stem, errorLogSuffix):
		kind = KindErrorLog
		stem = strings.TrimSuffix(stem, errorLogSuffix)
	case strings.HasSuffix(stem, calibratedSuffix):
		kind = KindCalibrated
		stem = strings.TrimSuffix(stem, calibratedSuffix)
	case ext == rawExtension:
		kind = KindRaw
	}

	parts := strings.Split(stem, "-")
	if len(parts) < 2 {
		return Name{}, fmt.Errorf("%w: %q has no date-time components", services.ErrMalformedName, base)
	}
	date := parts[len(parts)-2]
	clock := parts[len(parts)-1]
	if date == "" || clock == "" {
		return Name{}, fmt.Errorf("%w: %q has an empty date or time component", services.ErrMalformedName, base)
	}

	return Name{
		Path:      path,
		Timestamp: stem,
		Date:      date,
		Time:      clock,
		Kind:      kind,
	}, nil
}
