package domain

import "time"

// TrainingOverall is the organization-wide training completion summary.
type TrainingOverall struct {
	TotalUsers     int     `json:"total_users"`
	CompletedUsers int     `json:"completed_users"`
	CompletionRate float64 `json:"completion_rate"`
}

// DepartmentTraining is training completion for a single department.
type DepartmentTraining struct {
	DepartmentID   int64   `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	TotalUsers     int     `json:"total_users"`
	CompletedUsers int     `json:"completed_users"`
	CompletionRate float64 `json:"completion_rate"`
}

// TrainingCompletion is a single user's completion record.
type TrainingCompletion struct {
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"user_name"`
	Department  string    `json:"department"`
	CompletedAt time.Time `json:"completed_at"`
}

// TrainingStats is the training analytics payload served by the entity store.
type TrainingStats struct {
	Overall           TrainingOverall      `json:"overall_stats"`
	Departments       []DepartmentTraining `json:"department_stats"`
	RecentCompletions []TrainingCompletion `json:"recent_completions"`
}
