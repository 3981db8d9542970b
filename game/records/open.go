// Package records stores solved games and answers "what is the best solve of
// this level". Backends: in-memory, SQLite (modernc.org/sqlite, no cgo) and
// PostgreSQL.
package records

import "fmt"

// Open returns the store for a driver name: memory, sqlite or postgres.
// The DSN is a file path for sqlite and a connection string for postgres.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if dsn == "" {
			dsn = "sokoban.db"
		}
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres records store requires a DSN")
		}
		s, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown records driver %q", driver)
	}
}
