// Package entitystore defines the contract the dashboard uses to read and
// mutate simulation entities, plus an HTTP client for the phishing
// simulation backend that implements it.
package entitystore

import (
	"context"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

// Store supplies entity snapshots and the few mutations the dashboard
// exposes. Implementations must be safe for concurrent use.
type Store interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	ListEmailLogs(ctx context.Context, filter domain.EmailLogFilter) ([]domain.EmailLog, error)
	TrainingStats(ctx context.Context) (*domain.TrainingStats, error)

	SimulateClick(ctx context.Context, logID int64) error
	SimulateResponse(ctx context.Context, logID int64) error
	CompleteTraining(ctx context.Context, userID int64) error
	CompleteDepartmentTraining(ctx context.Context, departmentID int64) error
	CompleteAllTraining(ctx context.Context) error
	WipeAllData(ctx context.Context) (*domain.WipeResult, error)
}
