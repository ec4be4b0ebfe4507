package analytics

import (
	"sort"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

// RecentCompletionsLimit caps the recent training completions list.
const RecentCompletionsLimit = 10

// Training derives training completion analytics from the user list. When
// the store supplied overall stats they are kept as-is; per-department rows
// and recent completions are always computed from users.
func Training(users []domain.User, departments []domain.Department, fromStore *domain.TrainingStats) domain.TrainingStats {
	dir := newDirectory(users, departments)

	completed := 0
	perDept := make(map[int64]*domain.DepartmentTraining, len(departments))
	for _, d := range departments {
		perDept[d.ID] = &domain.DepartmentTraining{DepartmentID: d.ID, DepartmentName: d.Name}
	}
	recent := make([]domain.TrainingCompletion, 0)

	for _, u := range users {
		row := perDept[u.DepartmentID]
		if row != nil {
			row.TotalUsers++
		}
		if !u.TrainingCompleted {
			continue
		}
		completed++
		if row != nil {
			row.CompletedUsers++
		}
		if u.TrainingCompletedAt != nil {
			recent = append(recent, domain.TrainingCompletion{
				UserID:      u.ID,
				UserName:    u.Name,
				Department:  dir.departmentOf(u),
				CompletedAt: *u.TrainingCompletedAt,
			})
		}
	}

	out := domain.TrainingStats{
		Overall: domain.TrainingOverall{
			TotalUsers:     len(users),
			CompletedUsers: completed,
			CompletionRate: ClickRatePct(completed, len(users)),
		},
		Departments: make([]domain.DepartmentTraining, 0, len(departments)),
	}
	if fromStore != nil {
		out.Overall = fromStore.Overall
	}
	for _, d := range departments {
		row := perDept[d.ID]
		row.CompletionRate = ClickRatePct(row.CompletedUsers, row.TotalUsers)
		out.Departments = append(out.Departments, *row)
	}

	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].CompletedAt.Equal(recent[j].CompletedAt) {
			return recent[i].UserID < recent[j].UserID
		}
		return recent[i].CompletedAt.After(recent[j].CompletedAt)
	})
	if len(recent) > RecentCompletionsLimit {
		recent = recent[:RecentCompletionsLimit]
	}
	out.RecentCompletions = recent
	return out
}
