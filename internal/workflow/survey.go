package workflow

import (
	"context"
	"time"

	"echosurvey/internal/logging"
	"echosurvey/internal/render"
	"echosurvey/internal/summary"
	"echosurvey/internal/survey"
)

// Survey appends one summary row per observation timestamp not yet in the
// survey CSV, charting the ping intervals of each converted observation.
// Timestamps known only from a conversion error log get an NA row.
func (r *Runner) Survey(ctx context.Context) (*Report, error) {
	return r.execute(ctx, CommandSurvey, r.survey)
}

func (r *Runner) survey(ctx context.Context, report *Report) error {
	if err := r.layout.Ensure(); err != nil {
		return err
	}
	writer, err := summary.Open(r.layout.SummaryCSV())
	if err != nil {
		return err
	}

	observations, obsErrs, err := r.layout.Observations()
	if err != nil {
		return err
	}
	errorLogs, logErrs, err := r.layout.ErrorLogs()
	if err != nil {
		return err
	}
	r.recordScanErrors(ctx, report, append(obsErrs, logErrs...))

	builder := summary.NewBuilder(r.tools, time.Duration(r.cfg.PingJumpThreshold()))
	entries := survey.Merge(observations, errorLogs)

	r.progress.Begin(StageSummary, len(entries))
	defer r.progress.Done()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.surveyEntry(ctx, report, writer, builder, entry)
		r.progress.Step()
	}

	if r.metrics != nil {
		r.metrics.SummaryRows.Set(float64(writer.Len()))
	}
	return nil
}

func (r *Runner) surveyEntry(ctx context.Context, report *Report, writer *summary.Writer, builder *summary.Builder, entry survey.Entry) {
	result := ItemResult{Stage: StageSummary, Item: entry.Timestamp}
	if writer.Recorded(entry.Timestamp) {
		r.record(ctx, report, r.skip(result, "already in summary"))
		return
	}

	var rec summary.Record
	switch {
	case entry.Observation != nil:
		var err error
		rec, err = builder.Observation(ctx, entry.Observation.Path)
		if err != nil {
			r.record(ctx, report, r.fail(ctx, result, r.layout.SurveyFailurePath(entry.Timestamp), "survey record failed", err,
				logging.String("file", entry.Observation.Path),
			))
			return
		}
		r.record(ctx, report, r.pingPlot(ctx, entry, rec))
	case entry.ErrorLog != nil:
		rec = summary.Unavailable(entry.ErrorLog.Path)
	default:
		logging.WithContext(ctx, r.logger).Debug("timestamp has neither observation nor error log",
			logging.String(logging.FieldItem, entry.Timestamp),
		)
		return
	}

	appended, err := writer.Append(entry.Timestamp, rec)
	switch {
	case err != nil:
		r.record(ctx, report, r.fail(ctx, result, r.layout.SurveyFailurePath(entry.Timestamp), "summary append failed", err))
	case !appended:
		r.record(ctx, report, r.skip(result, "already in summary"))
	default:
		r.record(ctx, report, r.succeed(result, writer.Path()))
	}
}

func (r *Runner) pingPlot(ctx context.Context, entry survey.Entry, rec summary.Record) ItemResult {
	result := ItemResult{Stage: StagePingPlot, Item: entry.Timestamp}
	path := r.layout.PingIntervalPlotPath(entry.Timestamp)
	if err := render.PingIntervals(path, entry.Observation.Path, rec.Intervals(), r.cfg.Plot.DPI); err != nil {
		return r.fail(ctx, result, "", "", err)
	}
	return r.succeed(result, path)
}
