// Package history records completed scan runs in a local SQLite database.
// Records are never read back by the scanner.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/codescan/internal/scan"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	root TEXT NOT NULL,
	model TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	files INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	output TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_files (
	run_id INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	path TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run is one recorded scan.
type Run struct {
	ID        int64
	Root      string
	Model     string
	StartedAt time.Time
	Duration  time.Duration
	Files     int
	Failed    int
	Output    string
}

// File is one recorded entry of a run.
type File struct {
	Path   string
	Status string
	Error  string
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished report and returns the new run ID.
func (s *Store) Record(ctx context.Context, report *scan.Report, output string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (root, model, started_at, duration_ms, files, failed, output) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Root, report.Model, report.StartedAt.UnixMilli(), report.Duration.Milliseconds(),
		len(report.Entries), report.Failed(), output)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_files (run_id, seq, path, status, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare files: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range report.Entries {
		var msg string
		if e.Err != nil {
			msg = e.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx, id, i, e.Path, e.Status.String(), msg); err != nil {
			return 0, fmt.Errorf("insert file %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, model, started_at, duration_ms, files, failed, output FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedMs, durMs int64
		if err := rows.Scan(&r.ID, &r.Root, &r.Model, &startedMs, &durMs, &r.Files, &r.Failed, &r.Output); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMs)
		r.Duration = time.Duration(durMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the recorded entries of one run in scan order.
func (s *Store) Files(ctx context.Context, runID int64) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, status, error FROM run_files WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Path, &f.Status, &f.Error); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
