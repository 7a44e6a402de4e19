package state

import (
	"fmt"
	"time"
)

// RecordBatch journals stmts as one batch. Either every statement is
// recorded or none is.
func (s *SQLiteStore) RecordBatch(schema, dialect string, stmts []string) (string, error) {
	if s.db == nil {
		return "", ErrNotOpened
	}
	if len(stmts) == 0 {
		return "", ErrEmptyBatch
	}

	id := generateID()
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(
		`INSERT INTO batches (id, schema_name, dialect, created_at) VALUES (?, ?, ?, ?)`,
		id, schema, dialect, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("failed to record batch: %w", err)
	}

	for i, stmt := range stmts {
		if _, err := tx.Exec(
			`INSERT INTO journal (batch_id, seq, statement) VALUES (?, ?, ?)`,
			id, i, stmt,
		); err != nil {
			return "", fmt.Errorf("failed to record statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit batch: %w", err)
	}
	return id, nil
}

// Journal returns every statement recorded for schema, oldest first.
func (s *SQLiteStore) Journal(schema string) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.Query(
		`SELECT j.batch_id, j.seq, b.dialect, j.statement, b.created_at
		 FROM journal j JOIN batches b ON b.id = j.batch_id
		 WHERE b.schema_name = ?
		 ORDER BY j.id`,
		schema,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.BatchID, &e.Seq, &e.Dialect, &e.Statement, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Batches returns the batches recorded for schema, oldest first.
func (s *SQLiteStore) Batches(schema string) ([]Batch, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.Query(
		`SELECT b.id, b.dialect, b.created_at, COUNT(j.id)
		 FROM batches b LEFT JOIN journal j ON j.batch_id = b.id
		 WHERE b.schema_name = ?
		 GROUP BY b.id
		 ORDER BY b.rowid`,
		schema,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		b := Batch{Schema: schema}
		if err := rows.Scan(&b.ID, &b.Dialect, &b.CreatedAt, &b.Statements); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Clear removes every batch recorded for schema.
func (s *SQLiteStore) Clear(schema string) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(
		`DELETE FROM journal WHERE batch_id IN (SELECT id FROM batches WHERE schema_name = ?)`,
		schema,
	); err != nil {
		return 0, fmt.Errorf("failed to clear journal: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM batches WHERE schema_name = ?`, schema)
	if err != nil {
		return 0, fmt.Errorf("failed to clear batches: %w", err)
	}
	n, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}
	return n, nil
}
