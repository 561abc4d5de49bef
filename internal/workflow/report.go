package workflow

import (
	"time"

	"echosurvey/internal/ledger"
	"echosurvey/internal/services"
)

// Pipeline commands.
const (
	CommandConvert = "convert"
	CommandSurvey  = "survey"
	CommandDaily   = "daily"
	CommandTenDay  = "tenday"
)

// Stages name the unit of work an ItemResult describes.
const (
	StageIndex       = "index"
	StageConvert     = "convert"
	StageCalibrate   = "calibrate"
	StageSummary     = "summary"
	StagePingPlot    = "ping_plot"
	StageEchogram    = "echogram"
	StageDailyTrack  = "daily_track"
	StageTenDayTrack = "tenday_track"
)

var artifactKinds = map[string]string{
	StageConvert:     "netcdf",
	StageCalibrate:   "calibrated",
	StageSummary:     "summary_row",
	StagePingPlot:    "ping_plot",
	StageEchogram:    "echogram",
	StageDailyTrack:  "daily_track",
	StageTenDayTrack: "tenday_track",
}

// ItemResult is the outcome of one file, timestamp, or batch.
type ItemResult struct {
	Stage      string
	Item       string
	Outcome    string
	Class      services.FailureClass
	Reason     string
	Outputs    []string
	FailureLog string
	Err        error
}

// Report aggregates the item results of one pipeline run.
type Report struct {
	RunID      string
	Command    string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Items      []ItemResult
}

// Count returns the number of items with the given outcome.
func (r *Report) Count(outcome string) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failures returns the failed items in the order they were recorded.
func (r *Report) Failures() []ItemResult {
	var out []ItemResult
	for _, item := range r.Items {
		if item.Outcome == ledger.OutcomeFailed {
			out = append(out, item)
		}
	}
	return out
}

// Outputs lists the files written by succeeded items of stage.
func (r *Report) Outputs(stage string) []string {
	var out []string
	for _, item := range r.Items {
		if item.Stage == stage && item.Outcome == ledger.OutcomeSucceeded {
			out = append(out, item.Outputs...)
		}
	}
	return out
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
