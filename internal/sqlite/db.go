// Package sqlite provides the SQLite-backed dependency store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/raphaelgruber/deptrack/internal/store"
	_ "modernc.org/sqlite"
)

// Store persists dependencies in a SQLite database.
type Store struct {
	db   *sql.DB
	opts store.Options
}

var _ store.Store = (*Store)(nil)

// Open opens the database at path and creates the schema if needed.
// Use ":memory:" for in-memory databases (useful for testing).
func Open(ctx context.Context, path string, opts ...store.Option) (*Store, error) {
	s, err := New(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.CreateSchema(ctx); err != nil {
		s.db.Close()
		return nil, err
	}
	return s, nil
}

// New opens the database at path without touching the schema.
func New(path string, opts ...store.Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, store.Unavailable("open database", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// WAL for concurrent readers on file databases
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, store.Unavailable("enable WAL mode", err)
	}

	return &Store{db: db, opts: store.BuildOptions(opts...)}, nil
}

// CreateSchema creates the dependencies table and its indexes.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return store.Unavailable("create schema", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close(context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func wrap(op string, err error) error {
	if isMissingTable(err) || isConnectionError(err) {
		return store.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
