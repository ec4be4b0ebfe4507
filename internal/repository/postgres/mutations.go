package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/phishing-dashboard/internal/domain"
	"github.com/ignite/phishing-dashboard/internal/entitystore"
)

// execOne runs an UPDATE that must touch at least one row.
func (s *Store) execOne(ctx context.Context, what, q string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, entitystore.ErrNotFound)
	}
	return nil
}

// SimulateClick marks the log clicked. A repeated click keeps the first timestamp.
func (s *Store) SimulateClick(ctx context.Context, logID int64) error {
	return s.execOne(ctx, "simulate click", `
		UPDATE email_logs SET clicked = TRUE, clicked_at = COALESCE(clicked_at, NOW())
		WHERE id = $1
	`, logID)
}

func (s *Store) SimulateResponse(ctx context.Context, logID int64) error {
	return s.execOne(ctx, "simulate response", `
		UPDATE email_logs SET responded = TRUE, responded_at = COALESCE(responded_at, NOW())
		WHERE id = $1
	`, logID)
}

func (s *Store) CompleteTraining(ctx context.Context, userID int64) error {
	return s.execOne(ctx, "complete training", `
		UPDATE users SET training_completed = TRUE,
		       training_completed_at = COALESCE(training_completed_at, NOW())
		WHERE id = $1
	`, userID)
}

// CompleteDepartmentTraining fails with ErrNotFound when the department does
// not exist or has no users.
func (s *Store) CompleteDepartmentTraining(ctx context.Context, departmentID int64) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)`, departmentID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("complete department training: %w", err)
	}
	if !exists {
		return fmt.Errorf("department %d: %w", departmentID, entitystore.ErrNotFound)
	}
	return s.execOne(ctx, "complete department training", `
		UPDATE users SET training_completed = TRUE,
		       training_completed_at = COALESCE(training_completed_at, NOW())
		WHERE department_id = $1
	`, departmentID)
}

func (s *Store) CompleteAllTraining(ctx context.Context) error {
	return s.execOne(ctx, "complete all training", `
		UPDATE users SET training_completed = TRUE,
		       training_completed_at = COALESCE(training_completed_at, NOW())
	`)
}

// WipeAllData deletes logs, users and departments in one transaction.
func (s *Store) WipeAllData(ctx context.Context) (*domain.WipeResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("wipe: begin: %w", err)
	}
	defer tx.Rollback()

	var counts domain.DeletedRecords
	for _, step := range []struct {
		table string
		dst   *int
	}{
		{"email_logs", &counts.EmailLogs},
		{"users", &counts.Users},
		{"departments", &counts.Departments},
	} {
		n, err := deleteAll(ctx, tx, step.table)
		if err != nil {
			return nil, fmt.Errorf("wipe %s: %w", step.table, err)
		}
		*step.dst = n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("wipe: commit: %w", err)
	}
	return &domain.WipeResult{Message: "All data wiped successfully", DeletedRecords: counts}, nil
}

func deleteAll(ctx context.Context, tx *sql.Tx, table string) (int, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
