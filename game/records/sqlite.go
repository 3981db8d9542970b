package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a local SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			level TEXT NOT NULL,
			session_id TEXT NOT NULL,
			moves INTEGER NOT NULL,
			pushes INTEGER NOT NULL,
			solution TEXT NOT NULL,
			solved_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_level_rank ON records(level, moves, pushes, solved_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	rec = prepare(rec)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, level, session_id, moves, pushes, solution, solved_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Level, rec.SessionID, rec.Moves, rec.Pushes, rec.Solution, rec.SolvedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Best(ctx context.Context, level string) (*Record, error) {
	recs, err := s.List(ctx, level, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoRecord
	}
	return &recs[0], nil
}

func (s *SQLiteStore) List(ctx context.Context, level string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, session_id, moves, pushes, solution, solved_at FROM records
		WHERE level = ? ORDER BY moves, pushes, solved_at LIMIT ?`,
		level, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var solvedAt int64
		if err := rows.Scan(&rec.ID, &rec.Level, &rec.SessionID, &rec.Moves, &rec.Pushes, &rec.Solution, &solvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.SolvedAt = time.Unix(0, solvedAt).UTC()
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return recs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
