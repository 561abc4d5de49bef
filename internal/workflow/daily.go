package workflow

import (
	"context"
	"path/filepath"
	"strings"

	"echosurvey/internal/batch"
	"echosurvey/internal/echodata"
	"echosurvey/internal/extent"
	"echosurvey/internal/logging"
	"echosurvey/internal/render"
	"echosurvey/internal/services"
	"echosurvey/internal/survey"
	"echosurvey/internal/timeline"
)

// Daily calibrates the observations of date, then renders one echogram per
// batch of calibrated files and one ship-track map per batch of
// observations.
func (r *Runner) Daily(ctx context.Context, date string) (*Report, error) {
	return r.execute(ctx, CommandDaily, func(ctx context.Context, report *Report) error {
		return r.daily(ctx, report, date)
	})
}

func (r *Runner) daily(ctx context.Context, report *Report, date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return services.Wrap(services.ErrConfiguration, CommandDaily, "date", "date token required", nil)
	}
	if err := r.layout.Ensure(); err != nil {
		return err
	}

	observations, scanErrs, err := r.layout.Observations()
	if err != nil {
		return err
	}
	r.recordScanErrors(ctx, report, scanErrs)
	files := timeline.Group(observations).Files(date)
	if len(files) == 0 {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "no observations for date", "date_empty",
			logging.String("date", date),
			logging.String(logging.FieldImpact, "nothing plotted"),
		)
		return nil
	}

	if err := r.calibrateAll(ctx, report, files); err != nil {
		return err
	}

	calibrated, calErrs, err := r.layout.Calibrated()
	if err != nil {
		return err
	}
	r.recordScanErrors(ctx, report, calErrs)
	if err := r.echograms(ctx, report, date, timeline.Group(calibrated).Files(date)); err != nil {
		return err
	}
	return r.dailyTracks(ctx, report, files)
}

func (r *Runner) calibrateAll(ctx context.Context, report *Report, files []survey.Name) error {
	r.progress.Begin(StageCalibrate, len(files))
	defer r.progress.Done()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.record(ctx, report, r.calibrateOne(ctx, f))
		r.progress.Step()
	}
	return nil
}

func (r *Runner) calibrateOne(ctx context.Context, f survey.Name) ItemResult {
	result := ItemResult{Stage: StageCalibrate, Item: f.Base()}
	if fileExists(r.layout.CalibratedPath(f.Timestamp)) {
		return r.skip(result, "already calibrated")
	}
	out, err := r.tools.Calibrate(ctx, f.Path)
	if err != nil {
		result.Class = services.ClassConversion
		return r.fail(ctx, result, r.layout.SurveyFailurePath(f.Timestamp), f.Path+" calibration error", err,
			logging.String("file", f.Path),
		)
	}
	return r.succeed(result, out)
}

func (r *Runner) echograms(ctx context.Context, report *Report, date string, svFiles []survey.Name) error {
	chunks := batch.Chunk(svFiles, r.batchSize())
	r.progress.Begin(StageEchogram, len(chunks))
	defer r.progress.Done()
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.record(ctx, report, r.echogram(ctx, date, chunk))
		r.progress.Step()
	}
	return nil
}

func (r *Runner) echogram(ctx context.Context, date string, chunk []survey.Name) ItemResult {
	first, last, _ := batch.FirstLast(chunk)
	path := r.layout.EchogramPath(first, last)
	result := ItemResult{Stage: StageEchogram, Item: filepath.Base(path)}

	svs := make([]echodata.Sv, 0, len(chunk))
	for _, f := range chunk {
		sv, err := r.tools.Sv(ctx, f.Path)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "calibrated data unavailable", "sv_unavailable",
				logging.String("file", f.Base()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file left out of the echogram"),
			)
			continue
		}
		svs = append(svs, sv)
	}

	gram := render.Echogram{
		Title:  date,
		Panels: render.PanelsFromSv(svs, r.cfg.Plot.EchogramFrequencies),
		SvMin:  r.cfg.Plot.SvMin,
		SvMax:  r.cfg.Plot.SvMax,
		DPI:    r.cfg.Plot.DPI,
	}
	if err := gram.Save(path); err != nil {
		return r.fail(ctx, result, "", "", err)
	}
	return r.succeed(result, path)
}

func (r *Runner) dailyTracks(ctx context.Context, report *Report, files []survey.Name) error {
	chunks := batch.Chunk(files, r.batchSize())
	r.progress.Begin(StageDailyTrack, len(chunks))
	defer r.progress.Done()
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.record(ctx, report, r.dailyTrack(ctx, chunk))
		r.progress.Step()
	}
	return nil
}

// dailyTrack maps one batch of observations. The extent covers this batch
// only, clamped to the daily region; track i keeps colour i even when a
// file's positions are unreadable.
func (r *Runner) dailyTrack(ctx context.Context, chunk []survey.Name) ItemResult {
	first, last, _ := batch.FirstLast(chunk)
	path := r.layout.DailyTrackPath(first, last)
	result := ItemResult{Stage: StageDailyTrack, Item: filepath.Base(path)}

	tracks := make([]render.Track, 0, len(chunk))
	var all []extent.Position
	for _, f := range chunk {
		positions := r.loadPositions(ctx, []survey.Name{f})
		tracks = append(tracks, render.Track{Label: f.Base(), Positions: positions})
		all = append(all, positions...)
	}

	box, err := extent.Compute(all, r.cfg.Extent.PadLon, r.cfg.Extent.PadLat)
	if err != nil {
		if r.metrics != nil {
			r.metrics.ExtentSkipped.Inc()
		}
		return r.fail(ctx, result, "", "", err)
	}
	box = extent.ClampOrRegion(box, regionFromConfig(r.cfg.Extent.DailyRegion))

	coastline, contours := r.backdrop(ctx)
	m := render.TrackMap{
		Title:     filepath.Base(path),
		Extent:    box,
		Tracks:    tracks,
		Colors:    r.colors,
		Coastline: coastline,
		Contours:  contours,
		Landmarks: r.landmarks(),
		DPI:       r.cfg.Plot.DPI,
	}
	if err := m.Save(path); err != nil {
		return r.fail(ctx, result, "", "", err)
	}
	return r.succeed(result, path)
}
