package workflow

import (
	"context"
	"path/filepath"

	"echosurvey/internal/batch"
	"echosurvey/internal/extent"
	"echosurvey/internal/logging"
	"echosurvey/internal/render"
	"echosurvey/internal/services"
	"echosurvey/internal/timeline"
)

// TenDay renders one ship-track map per batch of observation dates, one
// coloured track per date.
func (r *Runner) TenDay(ctx context.Context) (*Report, error) {
	return r.execute(ctx, CommandTenDay, r.tenDay)
}

func (r *Runner) tenDay(ctx context.Context, report *Report) error {
	seed, err := extent.FromSlice(r.cfg.Extent.Seed)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, CommandTenDay, "seed extent", "", err)
	}
	if err := r.layout.Ensure(); err != nil {
		return err
	}

	observations, scanErrs, err := r.layout.Observations()
	if err != nil {
		return err
	}
	r.recordScanErrors(ctx, report, scanErrs)
	grouper := timeline.Group(observations)

	chunks := batch.Chunk(grouper.Dates(), r.batchSize())
	r.progress.Begin(StageTenDayTrack, len(chunks))
	defer r.progress.Done()
	for _, dates := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.record(ctx, report, r.tenDayTrack(ctx, grouper, seed, dates))
		r.progress.Step()
	}
	return nil
}

// tenDayTrack folds every date's padded extent into a fresh accumulator
// seeded with seed, clamps it to the ten-day region, and maps the dates.
func (r *Runner) tenDayTrack(ctx context.Context, grouper *timeline.Grouper, seed extent.Box, dates []string) ItemResult {
	firstDate, lastDate, _ := batch.FirstLast(dates)
	path := r.layout.TenDayTrackPath(firstDate, lastDate)
	result := ItemResult{Stage: StageTenDayTrack, Item: filepath.Base(path)}

	acc := extent.NewAccumulator(seed, r.cfg.Extent.PadLon, r.cfg.Extent.PadLat)
	tracks := r.dateTracks(ctx, grouper, acc, dates)

	coastline, contours := r.backdrop(ctx)
	m := render.TrackMap{
		Title:     describeBatch(firstDate, lastDate),
		Extent:    acc.Box(regionFromConfig(r.cfg.Extent.TenDayRegion)),
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

// dateTracks folds each date's positions into acc and returns one track per
// date that contributed. A date without usable positions is left off the
// map entirely, so the next date takes its palette colour.
func (r *Runner) dateTracks(ctx context.Context, grouper *timeline.Grouper, acc *extent.Accumulator, dates []string) []render.Track {
	tracks := make([]render.Track, 0, len(dates))
	for _, date := range dates {
		positions := r.loadPositions(ctx, grouper.Files(date))
		if err := acc.Add(positions); err != nil {
			if r.metrics != nil {
				r.metrics.ExtentSkipped.Inc()
			}
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "date left out of map", "extent_skip",
				logging.String("date", date),
				logging.Error(err),
			)
			continue
		}
		tracks = append(tracks, render.Track{Label: date, Positions: positions})
	}
	return tracks
}
