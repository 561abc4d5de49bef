package workflow

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"echosurvey/internal/fileutil"
	"echosurvey/internal/logging"
	"echosurvey/internal/services"
	"echosurvey/internal/survey"
)

// Convert scaffolds the survey layout and decodes every raw capture that has
// no converted file yet. Outputs are moved into the converted directory; a
// failed capture gets an error log in the error directory.
func (r *Runner) Convert(ctx context.Context) (*Report, error) {
	return r.execute(ctx, CommandConvert, r.convert)
}

func (r *Runner) convert(ctx context.Context, report *Report) error {
	if err := r.layout.Ensure(); err != nil {
		return err
	}
	raws, scanErrs, err := r.layout.RawFiles()
	if err != nil {
		return err
	}
	r.recordScanErrors(ctx, report, scanErrs)

	r.progress.Begin(StageConvert, len(raws))
	defer r.progress.Done()
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.record(ctx, report, r.convertOne(ctx, raw))
		r.progress.Step()
	}
	return nil
}

func (r *Runner) convertOne(ctx context.Context, raw survey.Name) ItemResult {
	result := ItemResult{Stage: StageConvert, Item: raw.Base()}
	if target := r.layout.ConvertedPath(raw.Timestamp); fileExists(target) {
		return r.skip(result, "already converted")
	}

	outputs, err := r.tools.Convert(ctx, raw.Path)
	if err == nil {
		outputs, err = r.relocate(outputs)
	}
	if err != nil {
		result.Class = services.ClassConversion
		return r.fail(ctx, result, r.layout.ErrorLogPath(raw.Timestamp), raw.Path+" conversion error", err,
			logging.String("raw", raw.Path),
		)
	}

	// A success supersedes any failure log left by an earlier run.
	if err := os.Remove(r.layout.ErrorLogPath(raw.Timestamp)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.WithContext(ctx, r.logger).Debug("stale error log not removed", logging.Error(err))
	}
	return r.succeed(result, outputs...)
}

// relocate moves decoder outputs from the raw directory into the converted
// directory and returns their new paths.
func (r *Runner) relocate(outputs []string) ([]string, error) {
	moved := make([]string, 0, len(outputs))
	for _, out := range outputs {
		dst := filepath.Join(r.layout.ConvertedDir(), filepath.Base(out))
		if err := fileutil.MoveFile(out, dst); err != nil {
			return moved, services.Wrap(services.ErrExternalTool, "convert", "relocate output", filepath.Base(out), err)
		}
		moved = append(moved, dst)
	}
	return moved, nil
}
