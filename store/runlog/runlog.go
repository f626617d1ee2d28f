// Package runlog records one row per simulation run in a SQLite file.
// Only run metadata is logged; artifacts never touch the database.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded run.
type Entry struct {
	RunID      string
	ModelName  string
	Status     string // "ok" or "failed"
	DurationMS int64
	Error      string
	StartedAt  time.Time
}

// Log is a SQLite-backed run history.
type Log struct {
	db *sql.DB
}

// Open opens (creating if necessary) the run log at dsn.
func Open(dsn string) (*Log, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate run log: %w", err)
	}
	return l, nil
}

func (l *Log) migrate() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		model_name TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT,
		started_at DATETIME NOT NULL
	)`)
	return err
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record inserts one run entry.
func (l *Log) Record(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, model_name, status, duration_ms, error, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.ModelName, e.Status, e.DurationMS, e.Error, e.StartedAt)
	return err
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, model_name, status, duration_ms, error, started_at FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var errMsg sql.NullString
		if err := rows.Scan(&e.RunID, &e.ModelName, &e.Status, &e.DurationMS, &errMsg, &e.StartedAt); err != nil {
			return nil, err
		}
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
