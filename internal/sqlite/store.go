// Package sqlite owns the output database: the connection handle and the
// transactional batch loader that writes coerced rows into it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Store wraps the SQLite connection for a single conversion run. The target
// file is exclusively owned by this process for the run's duration.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if necessary) the SQLite database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	// WAL keeps batch commits cheap during bulk load.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Debug("opened database", "path", path)
	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateTable executes the table definition statement. Creation failures are
// fatal to the run; they happen before any data is written.
func (s *Store) CreateTable(ctx context.Context, ddl string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	s.logger.Debug("created table", "ddl", ddl)
	return nil
}

// Query executes a query against the store. Used by tests and callers that
// want to verify loaded data.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}
