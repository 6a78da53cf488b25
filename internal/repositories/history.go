// package repositories provides the persistence layer for operation history.
//
// Only operation outcomes are persisted (command, target, counts); track
// metadata never leaves memory.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"spotfave/internal/shared"
)

// Operation is one recorded run of a mutating command.
type Operation struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"` // add, copy, curate
	Target    string    `json:"target"`  // track or playlist reference the run acted on
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Detail    string    `json:"detail,omitempty"` // short human-readable outcome line
	CreatedAt time.Time `json:"created_at"`
}

// HistoryRepository records operation outcomes in sqlite.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a HistoryRepository with the given database connection.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate creates the history schema if it does not exist.
func (r *HistoryRepository) Migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			target TEXT NOT NULL,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			detail TEXT,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Record inserts a completed operation. The ID and timestamp are generated
// here; the passed struct is updated with both.
func (r *HistoryRepository) Record(op *Operation) error {
	if op.Command == "" {
		return fmt.Errorf("%w: operation command is required", shared.ErrInvalidInput)
	}

	op.ID = shared.GenerateID()
	op.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO operations (id, command, target, succeeded, failed, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var detail any = op.Detail
	if op.Detail == "" {
		detail = nil
	}

	_, err := r.db.Exec(query,
		op.ID,
		op.Command,
		op.Target,
		op.Succeeded,
		op.Failed,
		detail,
		op.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}
	return nil
}

// List returns the most recent operations, newest first. A limit of 0 or
// less returns everything.
func (r *HistoryRepository) List(limit int) ([]Operation, error) {
	query := `
		SELECT id, command, target, succeeded, failed, detail, created_at
		FROM operations
		ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		var detail sql.NullString
		if err := rows.Scan(&op.ID, &op.Command, &op.Target, &op.Succeeded, &op.Failed, &detail, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Detail = detail.String
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operations: %w", err)
	}
	return ops, nil
}
