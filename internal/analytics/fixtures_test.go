package analytics

import (
	"time"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

var refNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) time.Time { return refNow.Add(-d) }

const day = 24 * time.Hour

func fixtureDepartments() []domain.Department {
	return []domain.Department{
		{ID: 1, Name: "Finance"},
		{ID: 2, Name: "IT Department"},
		{ID: 3, Name: "Legal"},
	}
}

func fixtureUsers() []domain.User {
	done := refNow.Add(-2 * day)
	earlier := refNow.Add(-5 * day)
	return []domain.User{
		{ID: 10, Name: "Alice", Email: "alice@corp.test", DepartmentID: 1, TrainingCompleted: true, TrainingCompletedAt: &done},
		{ID: 11, Name: "Bob", Email: "bob@corp.test", DepartmentID: 1},
		{ID: 20, Name: "Carol", Email: "carol@corp.test", DepartmentID: 2, TrainingCompleted: true, TrainingCompletedAt: &earlier},
		{ID: 21, Name: "Dan", Email: "dan@corp.test", DepartmentID: 2},
	}
}

func fixtureLogs() []domain.EmailLog {
	return []domain.EmailLog{
		{ID: 1, UserID: 10, Subject: "Reset", TemplateType: domain.TemplatePasswordExpiry, SentAt: ago(1 * day), Clicked: true},
		{ID: 2, UserID: 10, Subject: "Alert", TemplateType: domain.TemplateSecurityAlert, SentAt: ago(8 * day)},
		{ID: 3, UserID: 11, Subject: "Urgent", TemplateType: domain.TemplateUrgentAction, SentAt: ago(2 * day), Clicked: true, Responded: true},
		{ID: 4, UserID: 20, Subject: "Update", TemplateType: domain.TemplateSystemUpdate, SentAt: ago(3 * day)},
		{ID: 5, UserID: 21, Subject: "Update", TemplateType: domain.TemplateSystemUpdate, SentAt: ago(15 * day), Clicked: true},
		{ID: 6, UserID: 99, Subject: "Gift card", TemplateType: "gift_card", SentAt: ago(4 * day)},
	}
}

func fixtureSnapshot() Snapshot {
	return Snapshot{
		Users:       fixtureUsers(),
		Departments: fixtureDepartments(),
		EmailLogs:   fixtureLogs(),
	}
}

func logsWithClicks(total, clicked int) []domain.EmailLog {
	out := make([]domain.EmailLog, total)
	for i := range out {
		out[i] = domain.EmailLog{ID: int64(i + 1), UserID: 1, SentAt: ago(time.Hour), Clicked: i < clicked}
	}
	return out
}
