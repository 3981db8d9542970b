package records

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore keeps records in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL and creates the schema if needed
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL,
		session_id TEXT NOT NULL,
		moves INTEGER NOT NULL,
		pushes INTEGER NOT NULL,
		solution TEXT NOT NULL,
		solved_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_records_level_rank ON records(level, moves, pushes, solved_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	rec = prepare(rec)

	query := `
	INSERT INTO records (id, level, session_id, moves, pushes, solution, solved_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Level, rec.SessionID, rec.Moves, rec.Pushes, rec.Solution, rec.SolvedAt)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Best(ctx context.Context, level string) (*Record, error) {
	recs, err := s.List(ctx, level, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoRecord
	}
	return &recs[0], nil
}

func (s *PostgresStore) List(ctx context.Context, level string, limit int) ([]Record, error) {
	query := `SELECT id, level, session_id, moves, pushes, solution, solved_at FROM records
	WHERE level = $1 ORDER BY moves, pushes, solved_at LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, level, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Level, &rec.SessionID, &rec.Moves, &rec.Pushes, &rec.Solution, &rec.SolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.SolvedAt = rec.SolvedAt.UTC()
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
