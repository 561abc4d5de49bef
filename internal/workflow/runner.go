package workflow

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"echosurvey/internal/config"
	"echosurvey/internal/echodata"
	"echosurvey/internal/extent"
	"echosurvey/internal/geodata"
	"echosurvey/internal/ledger"
	"echosurvey/internal/logging"
	"echosurvey/internal/observability"
	"echosurvey/internal/render"
	"echosurvey/internal/services"
	"echosurvey/internal/survey"
)

// Tools decodes, calibrates, and inspects survey files.
type Tools interface {
	echodata.Reader
	Convert(ctx context.Context, rawPath string) ([]string, error)
	Calibrate(ctx context.Context, ncPath string) (string, error)
}

// Progress receives per-item progress for one stage at a time.
type Progress interface {
	Begin(stage string, total int)
	Step()
	Done()
}

// Runner executes pipelines against one survey layout.
type Runner struct {
	cfg      *config.Config
	layout   survey.Layout
	tools    Tools
	logger   *slog.Logger
	store    *ledger.Store
	metrics  *observability.Metrics
	clock    clockwork.Clock
	progress Progress
	colors   []color.Color

	backdropOnce sync.Once
	coastline    geodata.Layer
	contours     geodata.Layer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLedger records runs and items in store.
func WithLedger(store *ledger.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithMetrics counts items, failures, and artifacts in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithClock injects the clock used for report timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithProgress reports per-item progress to p.
func WithProgress(p Progress) Option {
	return func(r *Runner) {
		if p != nil {
			r.progress = p
		}
	}
}

// New constructs a Runner.
func New(cfg *config.Config, layout survey.Layout, tools Tools, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("workflow: config required")
	}
	if tools == nil {
		return nil, errors.New("workflow: tools required")
	}
	colors, err := render.Palette(cfg.Plot.TrackColors)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "track palette", "", err)
	}
	r := &Runner{
		cfg:      cfg,
		layout:   layout,
		tools:    tools,
		logger:   logging.NewNop(),
		clock:    clockwork.NewRealClock(),
		progress: noopProgress{},
		colors:   colors,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "workflow")
	return r, nil
}

// Layout returns the survey layout the runner operates on.
func (r *Runner) Layout() survey.Layout {
	return r.layout
}

func (r *Runner) execute(ctx context.Context, command string, fn func(context.Context, *Report) error) (*Report, error) {
	ctx, report := r.begin(ctx, command)
	err := fn(ctx, report)
	r.finish(ctx, report, err)
	return report, err
}

func (r *Runner) begin(ctx context.Context, command string) (context.Context, *Report) {
	report := &Report{Command: command, Root: r.layout.Root, StartedAt: r.clock.Now()}
	if r.store != nil {
		run, err := r.store.StartRun(ctx, command, r.layout.Root)
		if err != nil {
			logging.WarnWithContext(r.logger, "run ledger unavailable", "ledger_start_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run history not recorded"),
			)
		} else {
			report.RunID = run.ID
		}
	}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	ctx = services.WithRunID(ctx, report.RunID)
	ctx = services.WithStage(ctx, command)
	logging.WithContext(ctx, r.logger).Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("survey_root", r.layout.Root),
	)
	return ctx, report
}

func (r *Runner) finish(ctx context.Context, report *Report, runErr error) {
	report.FinishedAt = r.clock.Now()
	status := ledger.StatusCompleted
	if runErr != nil {
		status = ledger.StatusAborted
	}

	logger := logging.WithContext(ctx, r.logger)
	if r.store != nil {
		// The caller's context may already be cancelled; the run row must
		// still leave the running state.
		if _, err := r.store.FinishRun(context.WithoutCancel(ctx), report.RunID, status); err != nil && !errors.Is(err, ledger.ErrNotFound) {
			logger.Error("failed to finish ledger run", logging.Error(err))
		}
	}
	if r.metrics != nil {
		r.metrics.ObserveRun(report.Command, report.StartedAt, report.FinishedAt)
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_finish"),
		logging.String("status", status),
		logging.Int("succeeded", report.Count(ledger.OutcomeSucceeded)),
		logging.Int("failed", report.Count(ledger.OutcomeFailed)),
		logging.Int("skipped", report.Count(ledger.OutcomeSkipped)),
		logging.Duration("duration", report.Duration()),
	}
	if runErr != nil {
		logging.ErrorWithContext(logger, "run aborted", "run_aborted", append(attrs, logging.Error(runErr))...)
		return
	}
	logger.Info("run finished", logging.Args(attrs...)...)
}

// record appends result to report and fans it out to the log, ledger, and
// metrics.
func (r *Runner) record(ctx context.Context, report *Report, result ItemResult) {
	if result.Outcome == ledger.OutcomeFailed && result.Class == "" {
		result.Class = services.Classify(result.Err)
	}
	report.Items = append(report.Items, result)

	logger := logging.WithContext(services.WithItem(ctx, result.Item), r.logger).With(
		logging.String("item_stage", result.Stage),
	)
	message := result.Reason
	switch result.Outcome {
	case ledger.OutcomeSucceeded:
		logger.Info("item succeeded", logging.Int("outputs", len(result.Outputs)))
	case ledger.OutcomeSkipped:
		logger.Debug("item skipped", logging.String("reason", result.Reason))
	case ledger.OutcomeFailed:
		if result.Err != nil {
			message = result.Err.Error()
		}
		attrs := []logging.Attr{
			logging.String("failure_class", string(result.Class)),
			logging.String(logging.FieldErrorHint, failureHint(result.Class)),
			logging.Error(result.Err),
		}
		if result.FailureLog != "" {
			attrs = append(attrs, logging.String("failure_log", result.FailureLog))
		}
		logging.WarnWithContext(logger, "item failed", result.Stage+"_failure", attrs...)
	}

	if r.store != nil {
		output := ""
		if len(result.Outputs) > 0 {
			output = result.Outputs[0]
		}
		if result.FailureLog != "" {
			output = result.FailureLog
		}
		err := r.store.RecordItem(ctx, ledger.Item{
			RunID:        report.RunID,
			Stage:        result.Stage,
			Item:         result.Item,
			Outcome:      result.Outcome,
			FailureClass: string(result.Class),
			Message:      message,
			Output:       output,
		})
		if err != nil {
			logger.Error("failed to record ledger item", logging.Error(err))
		}
	}

	if r.metrics != nil {
		r.metrics.Items.WithLabelValues(result.Stage, result.Outcome).Inc()
		switch result.Outcome {
		case ledger.OutcomeFailed:
			r.metrics.Failures.WithLabelValues(result.Stage, string(result.Class)).Inc()
		case ledger.OutcomeSucceeded:
			if kind, ok := artifactKinds[result.Stage]; ok && len(result.Outputs) > 0 {
				r.metrics.Artifacts.WithLabelValues(kind).Add(float64(len(result.Outputs)))
			}
		}
	}
}

// recordScanErrors reports files whose names could not be parsed.
func (r *Runner) recordScanErrors(ctx context.Context, report *Report, scanErrs []survey.ScanError) {
	for _, se := range scanErrs {
		r.record(ctx, report, ItemResult{
			Stage:   StageIndex,
			Item:    se.Path,
			Outcome: ledger.OutcomeFailed,
			Class:   services.ClassMalformedName,
			Err:     se,
		})
	}
}

// fail marks result failed and, when logPath is set, writes the per-item
// failure log.
func (r *Runner) fail(ctx context.Context, result ItemResult, logPath, message string, cause error, attrs ...logging.Attr) ItemResult {
	result.Outcome = ledger.OutcomeFailed
	result.Err = cause
	if logPath == "" {
		return result
	}
	if err := logging.WriteFailureLog(logPath, message, cause, attrs...); err != nil {
		logging.WithContext(ctx, r.logger).Error("failed to write failure log",
			logging.String("path", logPath),
			logging.Error(err),
		)
		return result
	}
	result.FailureLog = logPath
	return result
}

func (r *Runner) succeed(result ItemResult, outputs ...string) ItemResult {
	result.Outcome = ledger.OutcomeSucceeded
	result.Outputs = outputs
	return result
}

func (r *Runner) skip(result ItemResult, reason string) ItemResult {
	result.Outcome = ledger.OutcomeSkipped
	result.Reason = reason
	return result
}

func (r *Runner) batchSize() int {
	return r.cfg.Plot.BatchSize
}

func (r *Runner) landmarks() []render.Landmark {
	return render.LandmarksFromConfig(r.cfg.Map.Landmarks)
}

// backdrop loads the coastline and contour layers once per runner. A layer
// that fails to load is logged and left empty.
func (r *Runner) backdrop(ctx context.Context) (geodata.Layer, geodata.Layer) {
	r.backdropOnce.Do(func() {
		r.coastline = r.loadLayer(ctx, "coastline", r.cfg.Map.CoastlineGeoJSON)
		r.contours = r.loadLayer(ctx, "contours", r.cfg.Map.ContoursGeoJSON)
	})
	return r.coastline, r.contours
}

func (r *Runner) loadLayer(ctx context.Context, name, path string) geodata.Layer {
	layer, err := geodata.Load(path)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "map layer unavailable", "map_layer_unavailable",
			logging.String("layer", name),
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "maps drawn without this layer"),
		)
		return geodata.Layer{}
	}
	return layer
}

// loadPositions concatenates the platform positions of files. Files whose
// platform group cannot be read are logged and left out.
func (r *Runner) loadPositions(ctx context.Context, files []survey.Name) []extent.Position {
	var positions []extent.Position
	for _, f := range files {
		platform, err := r.tools.Platform(ctx, f.Path)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "platform positions unavailable", "positions_unavailable",
				logging.String("file", f.Base()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file left out of the ship track"),
			)
			continue
		}
		positions = append(positions, platform.Positions()...)
	}
	return positions
}

func regionFromConfig(r config.Region) extent.Region {
	return extent.Region{West: r.West, East: r.East, South: r.South, North: r.North}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func failureHint(class services.FailureClass) string {
	switch class {
	case services.ClassMalformedName:
		return "rename the file to <prefix>-<date>-<time>.<ext>"
	case services.ClassMissingData:
		return "inspect the file's Platform/Beam groups"
	case services.ClassConversion:
		return "check the external tool output in the failure log"
	default:
		return "check logs for details"
	}
}

type noopProgress struct{}

func (noopProgress) Begin(string, int) {}
func (noopProgress) Step()             {}
func (noopProgress) Done()             {}

func describeBatch(first, last string) string {
	return fmt.Sprintf("%s..%s", first, last)
}
