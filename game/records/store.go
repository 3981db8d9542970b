package records

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var ErrNoRecord = errors.New("no record for level")

// DefaultListLimit caps List when the caller passes a non-positive limit
const DefaultListLimit = 10

// Record is one solved game
type Record struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	SessionID string    `json:"session_id"`
	Moves     int       `json:"moves"`
	Pushes    int       `json:"pushes"`
	Solution  string    `json:"solution"`
	SolvedAt  time.Time `json:"solved_at"`
}

// Store keeps solve records. Implementations are safe for concurrent use.
type Store interface {
	// Save stores a record. Missing ID and SolvedAt are filled in.
	Save(ctx context.Context, rec Record) error
	// Best returns the record with the fewest moves, then fewest pushes, then
	// the earliest solve. ErrNoRecord if the level was never solved.
	Best(ctx context.Context, level string) (*Record, error)
	// List returns up to limit records for a level in the same order as Best
	List(ctx context.Context, level string, limit int) ([]Record, error)
	Close() error
}

// NewRecord builds a record stamped with a fresh ID and the current time
func NewRecord(level, sessionID string, moves, pushes int, solution string) Record {
	return prepare(Record{
		Level:     level,
		SessionID: sessionID,
		Moves:     moves,
		Pushes:    pushes,
		Solution:  solution,
	})
}

// prepare fills in the generated fields of a record
func prepare(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SolvedAt.IsZero() {
		rec.SolvedAt = time.Now()
	}
	rec.SolvedAt = rec.SolvedAt.UTC()
	return rec
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// rank sorts records best first
func rank(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Moves != b.Moves {
			return a.Moves < b.Moves
		}
		if a.Pushes != b.Pushes {
			return a.Pushes < b.Pushes
		}
		return a.SolvedAt.Before(b.SolvedAt)
	})
}
