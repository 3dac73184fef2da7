package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/predictability/core/runlog"
)

// SQLiteStore persists training runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS training_runs (
        run_id TEXT PRIMARY KEY,
        method TEXT NOT NULL,
        started_at INTEGER NOT NULL,
        record TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS training_runs_started ON training_runs (started_at);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the run, replacing a previous run with the same ID.
func (s *SQLiteStore) Append(ctx context.Context, rec runlog.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO training_runs (run_id, method, started_at, record)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            method = excluded.method,
            started_at = excluded.started_at,
            record = excluded.record`,
		rec.RunID, rec.Method, rec.StartedAt.UnixNano(), string(data))
	return err
}

// Query returns the runs matching q in start order.
func (s *SQLiteStore) Query(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	var where []string
	var args []any
	if q.Method != "" {
		where = append(where, "method = ?")
		args = append(args, q.Method)
	}
	if !q.Start.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		where = append(where, "started_at <= ?")
		args = append(args, q.End.UnixNano())
	}
	stmt := "SELECT record FROM training_runs"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY started_at DESC"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []runlog.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r runlog.Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// rows came newest first so that LIMIT keeps the most recent runs
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// compile-time checks
var (
	_ runlog.Store = (*SQLiteStore)(nil)
	_ runlog.Store = (*BoltStore)(nil)
)
