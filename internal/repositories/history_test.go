package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"spotfave/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with the schema applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := NewHistoryRepository(db).Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func TestHistoryRepository(t *testing.T) {
	t.Run("Record", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		op := &Operation{Command: "add", Target: "6rqhFgbbKwnb9MLmUQDhG6", Succeeded: 3, Detail: "Added to 3 of 3 targets"}
		if err := repo.Record(op); err != nil {
			t.Fatalf("failed to record operation: %v", err)
		}

		if op.ID == "" {
			t.Error("operation ID should be set after recording")
		}
		if op.CreatedAt.IsZero() {
			t.Error("operation timestamp should be set after recording")
		}
	})

	t.Run("Record Requires Command", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		err := repo.Record(&Operation{Target: "x"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		for _, cmd := range []string{"add", "copy", "curate"} {
			if err := repo.Record(&Operation{Command: cmd, Target: "t"}); err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}

		ops, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(ops) != 3 {
			t.Fatalf("expected 3 operations, got %d", len(ops))
		}
		for i, op := range ops {
			if i > 0 && op.CreatedAt.After(ops[i-1].CreatedAt) {
				t.Errorf("operations not ordered newest first at index %d", i)
			}
		}
	})

	t.Run("List Honors Limit", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		for range 5 {
			if err := repo.Record(&Operation{Command: "add", Target: "t"}); err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}

		ops, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(ops) != 2 {
			t.Errorf("expected 2 operations, got %d", len(ops))
		}
	})

	t.Run("Empty Detail Round Trips As Empty", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		if err := repo.Record(&Operation{Command: "copy", Target: "t"}); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		ops, err := repo.List(1)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if ops[0].Detail != "" {
			t.Errorf("expected empty detail, got %q", ops[0].Detail)
		}
	})
}
