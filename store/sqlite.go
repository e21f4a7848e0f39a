package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"watchmarket/models"
)

// RunStore keeps collection run bookkeeping in a local SQLite file. It is
// operational state, separate from the market data in Postgres, so a broken
// run log never blocks the domain store and vice versa.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &RunStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collection_runs (
		id INTEGER PRIMARY KEY,
		source TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER DEFAULT 0,
		listings_created INTEGER DEFAULT 0,
		duplicate_skips INTEGER DEFAULT 0,
		malformed_skips INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS collection_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON collection_runs(source, started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON collection_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON collection_logs(run_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *RunStore) CreateRun(ctx context.Context, run *models.CollectionRun) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_runs (source, started_at, status, listings_found, listings_created,
			duplicate_skips, malformed_skips, errors_count)
		VALUES (?, ?, ?, 0, 0, 0, 0, 0)`,
		run.Source, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *RunStore) UpdateRun(ctx context.Context, run *models.CollectionRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE collection_runs SET finished_at = ?, status = ?, listings_found = ?,
			listings_created = ?, duplicate_skips = ?, malformed_skips = ?,
			errors_count = ?, error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.ListingsCreated,
		run.DuplicateSkips, run.MalformedSkips, run.ErrorsCount, run.ErrorMessage, run.ID)
	return err
}

func (s *RunStore) Log(ctx context.Context, runID int64, level models.LogLevel, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_logs (run_id, timestamp, level, message)
		VALUES (?, ?, ?, ?)`,
		runID, time.Now(), level, message)
	return err
}

// RecentRuns returns the latest runs across every source, newest first.
func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]models.CollectionRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, started_at, finished_at, status, listings_found, listings_created,
			duplicate_skips, malformed_skips, errors_count, COALESCE(error_message, '')
		FROM collection_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.CollectionRun
	for rows.Next() {
		var run models.CollectionRun
		if err := rows.Scan(&run.ID, &run.Source, &run.StartedAt, &run.FinishedAt, &run.Status,
			&run.ListingsFound, &run.ListingsCreated, &run.DuplicateSkips, &run.MalformedSkips,
			&run.ErrorsCount, &run.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRunTime reports when a source last started a run.
func (s *RunStore) LastRunTime(ctx context.Context, source string) (time.Time, error) {
	var lastRun time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT started_at FROM collection_runs
		WHERE source = ?
		ORDER BY started_at DESC
		LIMIT 1`, source).Scan(&lastRun)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return lastRun, err
}
