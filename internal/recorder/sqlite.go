package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the cycle audit log to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			trigger_type  TEXT NOT NULL,
			forced        INTEGER NOT NULL DEFAULT 0,
			skipped       INTEGER NOT NULL DEFAULT 0,
			success_count INTEGER NOT NULL DEFAULT 0,
			error_count   INTEGER NOT NULL DEFAULT 0,
			skipped_count INTEGER NOT NULL DEFAULT 0,
			duration_ms   INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(ctx context.Context, rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO cycles
		(id, timestamp, trigger_type, forced, skipped, success_count, error_count, skipped_count, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt.Unix(), rec.Trigger,
		boolInt(rec.Forced), boolInt(rec.Skipped),
		rec.SuccessCount, rec.ErrorCount, rec.SkippedCount,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert cycle %s: %w", rec.ID, err)
	}
	return nil
}

// RecentCycles returns up to limit rows, newest first.
func (r *SQLiteRecorder) RecentCycles(ctx context.Context, limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT
		id, timestamp, trigger_type, forced, skipped, success_count, error_count, skipped_count, duration_ms
		FROM cycles ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var (
			rec             CycleRecord
			ts, durationMs  int64
			forced, skipped int
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Trigger, &forced, &skipped,
			&rec.SuccessCount, &rec.ErrorCount, &rec.SkippedCount, &durationMs); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		rec.StartedAt = time.Unix(ts, 0)
		rec.Forced = forced != 0
		rec.Skipped = skipped != 0
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
