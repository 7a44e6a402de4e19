// Package state persists a journal of applied DDL in SQLite so a schema can
// be rebuilt later by replaying it in order.
package state

import (
	"errors"
	"time"
)

var (
	// ErrNotOpened is returned when the store is used before Open.
	ErrNotOpened = errors.New("database not opened")
	// ErrEmptyBatch is returned when recording a batch with no statements.
	ErrEmptyBatch = errors.New("batch has no statements")
)

// Entry is one journaled statement.
type Entry struct {
	BatchID    string
	Seq        int
	Dialect    string
	Statement  string
	RecordedAt time.Time
}

// Batch is a group of statements recorded together.
type Batch struct {
	ID         string
	Schema     string
	Dialect    string
	Statements int
	CreatedAt  time.Time
}

// Store is the journal interface used by the loader and the CLI.
type Store interface {
	// RecordBatch journals stmts, in order, as one batch for schema and
	// returns the batch id.
	RecordBatch(schema, dialect string, stmts []string) (string, error)
	// Journal returns every entry for schema in recording order.
	Journal(schema string) ([]Entry, error)
	// Batches returns the batches recorded for schema, oldest first.
	Batches(schema string) ([]Batch, error)
	// Clear removes everything recorded for schema and returns the number
	// of batches removed.
	Clear(schema string) (int64, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
