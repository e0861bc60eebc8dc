package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS build_runs (
	id             TEXT PRIMARY KEY,
	label          TEXT NOT NULL DEFAULT '',
	version_number INTEGER NOT NULL DEFAULT 0,
	artifact       TEXT NOT NULL DEFAULT '',
	checksum       TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	failed_stage   TEXT NOT NULL DEFAULT '',
	error          TEXT NOT NULL DEFAULT '',
	started_at     TIMESTAMP NOT NULL,
	duration_ms    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_build_runs_started_at ON build_runs (started_at);
`

// SQLiteRepository keeps the build ledger in a sqlite database file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ repositories.HistoryRepository = (*SQLiteRepository)(nil)

// Open opens (creating if needed) the ledger at path and applies the schema.
func Open(path string) (repositories.HistoryRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Record inserts or replaces the run.
func (r *SQLiteRepository) Record(ctx context.Context, run entities.BuildRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO build_runs
			(id, label, version_number, artifact, checksum, status, failed_stage, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, run.VersionNumber, run.Artifact, run.Checksum, string(run.Status),
		run.FailedStage, run.Error, run.StartedAt.UTC(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record build %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]entities.BuildRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, version_number, artifact, checksum, status, failed_stage, error, started_at, duration_ms
		FROM build_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var runs []entities.BuildRun
	for rows.Next() {
		var run entities.BuildRun
		var status string
		var durationMs int64
		if err = rows.Scan(
			&run.ID, &run.Label, &run.VersionNumber, &run.Artifact, &run.Checksum,
			&status, &run.FailedStage, &run.Error, &run.StartedAt, &durationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		run.Status = entities.RunStatus(status)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
