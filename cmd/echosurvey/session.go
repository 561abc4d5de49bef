package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"echosurvey/internal/config"
	"echosurvey/internal/deps"
	"echosurvey/internal/ledger"
	"echosurvey/internal/logging"
	"echosurvey/internal/observability"
	"echosurvey/internal/preflight"
	"echosurvey/internal/services/echopype"
	"echosurvey/internal/survey"
	"echosurvey/internal/workflow"
)

const lockFileName = ".echosurvey.lock"

// session holds everything a pipeline command needs for one survey: the
// run lock, logger, ledger, metrics, and the workflow runner.
type session struct {
	cfg     *config.Config
	layout  survey.Layout
	logger  *slog.Logger
	lock    *flock.Flock
	store   *ledger.Store
	metrics *observability.Metrics
	runner  *workflow.Runner
}

// openSession prepares layout for a pipeline run. With scaffold the layout
// is created first; otherwise the survey root must already be accessible.
func (c *commandContext) openSession(cmd *cobra.Command, layout survey.Layout, scaffold bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	if scaffold {
		if err := layout.Ensure(); err != nil {
			return nil, fmt.Errorf("scaffold survey: %w", err)
		}
	} else if result := preflight.CheckDirectoryAccess("survey root", layout.Root); !result.Passed {
		return nil, fmt.Errorf("survey root: %s", result.Detail)
	}

	if err := deps.RequireAll(preflight.Requirements(cfg)); err != nil {
		return nil, err
	}

	logger, err := logging.NewFromConfig(cfg, layout.Root)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	lock := flock.New(filepath.Join(layout.Root, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire survey lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another echosurvey command is already running against %s", layout.Root)
	}

	s := &session{cfg: cfg, layout: layout, logger: logger, lock: lock}
	if cfg.Ledger.Enabled {
		store, err := ledger.Open(resolveSurveyPath(layout.Root, cfg.Ledger.File))
		if err != nil {
			logging.WarnWithContext(logger, "run ledger unavailable", "ledger_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run history not recorded"),
			)
		} else {
			s.store = store
		}
	}
	if cfg.Metrics.Enabled {
		s.metrics = observability.NewMetrics()
	}

	client, err := echopype.New(echopype.Binaries{
		Convert:   cfg.Tools.Convert,
		Calibrate: cfg.Tools.Calibrate,
		Inspect:   cfg.Tools.Inspect,
	}, cfg.Tools.TimeoutSeconds)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	opts := []workflow.Option{
		workflow.WithLogger(logger),
		workflow.WithLedger(s.store),
		workflow.WithMetrics(s.metrics),
	}
	if progress := newProgress(cmd.ErrOrStderr()); progress != nil {
		opts = append(opts, workflow.WithProgress(progress))
	}
	s.runner, err = workflow.New(cfg, layout, client, opts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close exports metrics, closes the ledger, and releases the survey lock.
func (s *session) Close() error {
	var errs []error
	if s.metrics != nil {
		if err := s.metrics.WriteTextfile(resolveSurveyPath(s.layout.Root, s.cfg.Metrics.Textfile)); err != nil {
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ledger: %w", err))
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release survey lock: %w", err))
		}
	}
	return errors.Join(errs...)
}

func resolveSurveyPath(root, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(root, file)
}
