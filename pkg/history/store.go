// Package history persists optimization runs in a local SQLite database so
// past results can be listed and inspected after the process exits.
package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// Run statuses as stored in the runs table.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Run is one optimization run, live or archived.
type Run struct {
	ID               string
	SeedPrompt       string
	Goal             string
	Provider         string
	Model            string
	Status           string
	BestPrompt       string
	BestScore        float64
	Generations      int
	PromptsEvaluated int
	Usage            core.TokenUsage
	StartedAt        time.Time
	FinishedAt       *time.Time
}

// Outcome summarizes a completed run for the archive.
type Outcome struct {
	Status           string
	BestPrompt       string
	BestScore        float64
	Generations      int
	PromptsEvaluated int
	Usage            core.TokenUsage
}

// Store is a SQLite-backed run archive. The path ":memory:" keeps the
// database in-memory, which the tests rely on.
type Store struct {
	db *sql.DB
	mu sync.Mutex

	initialized sync.Once
}

// NewStore opens (and if needed creates) the archive database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to open history database"),
			errors.Fields{"path": path},
		)
	}

	store := &Store{db: db}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// WAL mode for better concurrency
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            seed_prompt TEXT NOT NULL,
            goal TEXT NOT NULL,
            provider TEXT NOT NULL,
            model TEXT NOT NULL,
            status TEXT NOT NULL,
            best_prompt TEXT NOT NULL DEFAULT '',
            best_score REAL NOT NULL DEFAULT 0,
            generations INTEGER NOT NULL DEFAULT 0,
            prompts_evaluated INTEGER NOT NULL DEFAULT 0,
            input_tokens INTEGER NOT NULL DEFAULT 0,
            output_tokens INTEGER NOT NULL DEFAULT 0,
            started_at DATETIME NOT NULL,
            finished_at DATETIME
        );

        CREATE TABLE IF NOT EXISTS steps (
            run_id TEXT NOT NULL REFERENCES runs(id),
            generation INTEGER NOT NULL,
            phase TEXT NOT NULL,
            fraction REAL NOT NULL,
            best_prompt TEXT NOT NULL DEFAULT '',
            best_score REAL,
            prompts_evaluated INTEGER NOT NULL DEFAULT 0,
            input_tokens INTEGER NOT NULL DEFAULT 0,
            output_tokens INTEGER NOT NULL DEFAULT 0,
            terminal INTEGER NOT NULL DEFAULT 0,
            recorded_at DATETIME NOT NULL,
            PRIMARY KEY (run_id, generation)
        );

        CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to initialize history schema")
			return
		}
	})
	return initErr
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun registers a new run and returns its generated identifier.
func (s *Store) BeginRun(ctx context.Context, seedPrompt, goal, provider, model string) (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO runs (id, seed_prompt, goal, provider, model, status, started_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, seedPrompt, goal, provider, model, StatusRunning, time.Now().UTC())
	if err != nil {
		return "", errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to record run start"),
			errors.Fields{"run_id": id},
		)
	}
	return id, nil
}

// RecordStep upserts the progress row for a generation. Steps arrive many
// times per generation and only the latest snapshot is kept.
func (s *Store) RecordStep(ctx context.Context, runID string, step core.ProgressStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var score interface{}
	if step.BestScore != nil {
		score = *step.BestScore
	}
	terminal := 0
	if step.Terminal {
		terminal = 1
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO steps (run_id, generation, phase, fraction, best_prompt, best_score,
                           prompts_evaluated, input_tokens, output_tokens, terminal, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id, generation) DO UPDATE SET
            phase = excluded.phase,
            fraction = excluded.fraction,
            best_prompt = excluded.best_prompt,
            best_score = excluded.best_score,
            prompts_evaluated = excluded.prompts_evaluated,
            input_tokens = excluded.input_tokens,
            output_tokens = excluded.output_tokens,
            terminal = excluded.terminal,
            recorded_at = excluded.recorded_at`,
		runID, step.Generation, string(step.Phase), step.Fraction, step.BestPrompt, score,
		step.PromptsEvaluated, step.Usage.InputTokens, step.Usage.OutputTokens, terminal,
		time.Now().UTC())
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to record progress step"),
			errors.Fields{"run_id": runID, "generation": step.Generation},
		)
	}
	return nil
}

// FinishRun records the final outcome of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, outcome Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
        UPDATE runs SET
            status = ?,
            best_prompt = ?,
            best_score = ?,
            generations = ?,
            prompts_evaluated = ?,
            input_tokens = ?,
            output_tokens = ?,
            finished_at = ?
        WHERE id = ?`,
		outcome.Status, outcome.BestPrompt, outcome.BestScore, outcome.Generations,
		outcome.PromptsEvaluated, outcome.Usage.InputTokens, outcome.Usage.OutputTokens,
		time.Now().UTC(), runID)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to record run outcome"),
			errors.Fields{"run_id": runID},
		)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.WithFields(
			errors.New(errors.StorageFailed, "run not found"),
			errors.Fields{"run_id": runID},
		)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, seed_prompt, goal, provider, model, status, best_prompt, best_score,
               generations, prompts_evaluated, input_tokens, output_tokens, started_at, finished_at
        FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to read run rows")
	}
	return runs, nil
}

// GetRun returns one run by identifier.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, seed_prompt, goal, provider, model, status, best_prompt, best_score,
               generations, prompts_evaluated, input_tokens, output_tokens, started_at, finished_at
        FROM runs WHERE id = ?`, runID)
	if err != nil {
		return Run{}, errors.Wrap(err, errors.StorageFailed, "failed to query run")
	}
	defer rows.Close()

	if !rows.Next() {
		return Run{}, errors.WithFields(
			errors.New(errors.StorageFailed, "run not found"),
			errors.Fields{"run_id": runID},
		)
	}
	return scanRun(rows)
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run      Run
		finished sql.NullTime
	)
	err := rows.Scan(&run.ID, &run.SeedPrompt, &run.Goal, &run.Provider, &run.Model,
		&run.Status, &run.BestPrompt, &run.BestScore, &run.Generations,
		&run.PromptsEvaluated, &run.Usage.InputTokens, &run.Usage.OutputTokens,
		&run.StartedAt, &finished)
	if err != nil {
		return Run{}, errors.Wrap(err, errors.StorageFailed, "failed to scan run row")
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

// SinkFor adapts the store to a progress sink for one run. Storage errors
// are logged by the caller's sink chain rather than aborting the run, so
// the adapter deliberately drops them.
func (s *Store) SinkFor(ctx context.Context, runID string) core.ProgressSink {
	return core.SinkFunc(func(step core.ProgressStep) {
		_ = s.RecordStep(ctx, runID, step)
	})
}
