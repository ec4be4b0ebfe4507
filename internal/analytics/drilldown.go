package analytics

import "github.com/ignite/phishing-dashboard/internal/domain"

// DrillDownStats summarizes the emails of one department.
type DrillDownStats struct {
	TotalUsers   int     `json:"total_users"`
	TotalEmails  int     `json:"total_emails"`
	TotalClicks  int     `json:"total_clicks"`
	ClickRatePct float64 `json:"click_rate_pct"`
}

// DrillDownView is the overview narrowed to a single department.
type DrillDownView struct {
	Department string             `json:"department"`
	Users      []UserClickSummary `json:"users"`
	Emails     []domain.EmailLog  `json:"emails"`
	Stats      DrillDownStats     `json:"stats"`
}

// DrillDown narrows the snapshot to one department. Users are taken from the
// already annotated click summary; emails are those whose user resolves to
// the department. The department click rate is rounded to a whole percent.
func DrillDown(department string, rows []UserClickSummary, users []domain.User, departments []domain.Department, logs []domain.EmailLog) DrillDownView {
	view := DrillDownView{
		Department: department,
		Users:      make([]UserClickSummary, 0),
	}
	for _, r := range rows {
		if r.Department == department {
			view.Users = append(view.Users, r)
		}
	}

	view.Emails = newDirectory(users, departments).logsForDepartment(logs, department)
	clicks := 0
	for _, l := range view.Emails {
		if l.Clicked {
			clicks++
		}
	}
	view.Stats = DrillDownStats{
		TotalUsers:   len(view.Users),
		TotalEmails:  len(view.Emails),
		TotalClicks:  clicks,
		ClickRatePct: float64(WholeRatePct(clicks, len(view.Emails))),
	}
	return view
}
