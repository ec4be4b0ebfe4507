package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

const recentCompletionsLimit = 10

// TrainingStats computes completion analytics the same way the backend's
// /analytics/training-completion endpoint does.
func (s *Store) TrainingStats(ctx context.Context) (*domain.TrainingStats, error) {
	stats := &domain.TrainingStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE training_completed)
		FROM users
	`).Scan(&stats.Overall.TotalUsers, &stats.Overall.CompletedUsers)
	if err != nil {
		return nil, fmt.Errorf("training totals: %w", err)
	}
	stats.Overall.CompletionRate = completionRate(stats.Overall.CompletedUsers, stats.Overall.TotalUsers)

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, COUNT(u.id), COUNT(u.id) FILTER (WHERE u.training_completed)
		FROM departments d
		LEFT JOIN users u ON u.department_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.id
	`)
	if err != nil {
		return nil, fmt.Errorf("training by department: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d domain.DepartmentTraining
		if err := rows.Scan(&d.DepartmentID, &d.DepartmentName, &d.TotalUsers, &d.CompletedUsers); err != nil {
			return nil, fmt.Errorf("scan department training: %w", err)
		}
		d.CompletionRate = completionRate(d.CompletedUsers, d.TotalUsers)
		stats.Departments = append(stats.Departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, COALESCE(d.name, $2), u.training_completed_at
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.training_completed AND u.training_completed_at IS NOT NULL
		ORDER BY u.training_completed_at DESC
		LIMIT $1
	`, recentCompletionsLimit, domain.NoDepartment)
	if err != nil {
		return nil, fmt.Errorf("recent completions: %w", err)
	}
	defer recent.Close()
	for recent.Next() {
		var c domain.TrainingCompletion
		if err := recent.Scan(&c.UserID, &c.UserName, &c.Department, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		c.CompletedAt = c.CompletedAt.UTC()
		stats.RecentCompletions = append(stats.RecentCompletions, c)
	}
	return stats, recent.Err()
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}
