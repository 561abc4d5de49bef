package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

// Item outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// ErrNotFound is returned when no run matches a query.
var ErrNotFound = errors.New("run not found")

// Run is one invocation of a pipeline command against a survey.
type Run struct {
	ID         string
	Command    string
	SurveyRoot string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Skipped    int
}

// Duration returns the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Item is the recorded outcome of one file or date within a run.
type Item struct {
	RunID        string
	Stage        string
	Item         string
	Outcome      string
	FailureClass string
	Message      string
	Output       string
	RecordedAt   time.Time
}

// Store persists run history in a per-survey SQLite database.
type Store struct {
	db    *sql.DB
	path  string
	clock clockwork.Clock
}

// Option configures the store.
type Option func(*Store)

// WithClock injects the clock used for run and item timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Open initializes or connects to the ledger at path.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun records a new running run and returns it.
func (s *Store) StartRun(ctx context.Context, command, surveyRoot string) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		Command:    command,
		SurveyRoot: surveyRoot,
		Status:     StatusRunning,
		StartedAt:  s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, survey_root, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.SurveyRoot, run.Status, formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordItem appends an item outcome to a run.
func (s *Store) RecordItem(ctx context.Context, item Item) error {
	if item.RecordedAt.IsZero() {
		item.RecordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (run_id, stage, item, outcome, failure_class, message, output, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.RunID, item.Stage, item.Item, item.Outcome,
		nullableString(item.FailureClass), nullableString(item.Message), nullableString(item.Output),
		formatTime(item.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// FinishRun stamps the run with status and the item counts recorded for it.
func (s *Store) FinishRun(ctx context.Context, runID, status string) (*Run, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
            status = ?,
            finished_at = ?,
            succeeded = (SELECT COUNT(1) FROM items WHERE run_id = runs.id AND outcome = ?),
            failed = (SELECT COUNT(1) FROM items WHERE run_id = runs.id AND outcome = ?),
            skipped = (SELECT COUNT(1) FROM items WHERE run_id = runs.id AND outcome = ?)
         WHERE id = ?`,
		status, formatTime(s.now()), OutcomeSucceeded, OutcomeFailed, OutcomeSkipped, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("finish run: %w", err)
	}
	return s.Run(ctx, runID)
}

// Run loads one run by ID.
func (s *Store) Run(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, runID)
	return scanRun(row)
}

// LatestRun returns the most recently started run, optionally restricted to
// one command.
func (s *Store) LatestRun(ctx context.Context, command string) (*Run, error) {
	var row *sql.Row
	if command == "" {
		row = s.db.QueryRowContext(ctx, selectRun+` ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx, selectRun+` WHERE command = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`, command)
	}
	return scanRun(row)
}

// Runs lists recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Items lists the items of a run in recording order. A non-empty outcome
// filters the result.
func (s *Store) Items(ctx context.Context, runID, outcome string) ([]Item, error) {
	query := `SELECT run_id, stage, item, outcome, failure_class, message, output, recorded_at
              FROM items WHERE run_id = ?`
	args := []any{runID}
	if outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, outcome)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item                   Item
			class, message, output sql.NullString
			recordedAt             string
		)
		if err := rows.Scan(&item.RunID, &item.Stage, &item.Item, &item.Outcome, &class, &message, &output, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.FailureClass = class.String
		item.Message = message.String
		item.Output = output.String
		item.RecordedAt = parseTime(recordedAt)
		items = append(items, item)
	}
	return items, rows.Err()
}

const selectRun = `SELECT id, command, survey_root, status, started_at, finished_at, succeeded, failed, skipped FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(&run.ID, &run.Command, &run.SurveyRoot, &run.Status, &startedAt, &finishedAt, &run.Succeeded, &run.Failed, &run.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return &run, nil
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
