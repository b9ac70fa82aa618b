// Package postgres implements the persistence interfaces on PostgreSQL via
// database/sql and lib/pq. Queries are written in the sqlc style: one const
// per statement, scanned by hand.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rctandrade/jobfitia-train-interview/internal/store"

	_ "github.com/lib/pq"
)

const uniqueViolation = "23505"

// Store wraps the database handle. It satisfies the job, profile, application
// and plan store interfaces.
type Store struct {
	db *sql.DB
}

// Open connects to the database at url and verifies the connection.
func Open(url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing handle, for callers that manage the connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

func notFoundIfNoRows(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return err
}
