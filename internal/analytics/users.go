package analytics

import "github.com/ignite/phishing-dashboard/internal/domain"

// UserClickSummary is one user's click behavior across all their emails.
type UserClickSummary struct {
	UserID       int64    `json:"user_id"`
	User         string   `json:"user"`
	Department   string   `json:"department"`
	Clicks       int      `json:"clicks"`
	TotalEmails  int      `json:"total_emails"`
	ClickRatePct float64  `json:"click_rate_pct"`
	RiskTier     RiskTier `json:"risk_tier"`
}

// DepartmentRisk is the risk heatmap row of a department.
type DepartmentRisk struct {
	DepartmentID int64    `json:"department_id"`
	Department   string   `json:"department"`
	ClickRatePct float64  `json:"click_rate_pct"`
	RiskTier     RiskTier `json:"risk_tier"`
	RiskColor    string   `json:"risk_color"`
	TotalEmails  int      `json:"total_emails"`
	TotalClicks  int      `json:"total_clicks"`
}

// ClickDistribution buckets users by how many emails they clicked.
type ClickDistribution struct {
	ZeroClicks      int `json:"zero_clicks"`
	OneClick        int `json:"one_click"`
	TwoClicks       int `json:"two_clicks"`
	ThreePlusClicks int `json:"three_plus_clicks"`
}

type tally struct {
	emails, clicks int
}

func tallyByUser(logs []domain.EmailLog) map[int64]tally {
	out := make(map[int64]tally)
	for _, l := range logs {
		t := out[l.UserID]
		t.emails++
		if l.Clicked {
			t.clicks++
		}
		out[l.UserID] = t
	}
	return out
}

// UserClicks annotates every user with their click counts, in user order.
func UserClicks(users []domain.User, departments []domain.Department, logs []domain.EmailLog) []UserClickSummary {
	dir := newDirectory(users, departments)
	counts := tallyByUser(logs)

	out := make([]UserClickSummary, 0, len(users))
	for _, u := range users {
		t := counts[u.ID]
		rate := ClickRatePct(t.clicks, t.emails)
		out = append(out, UserClickSummary{
			UserID:       u.ID,
			User:         u.Name,
			Department:   dir.departmentOf(u),
			Clicks:       t.clicks,
			TotalEmails:  t.emails,
			ClickRatePct: rate,
			RiskTier:     Classify(rate),
		})
	}
	return out
}

// DepartmentRisks computes one heatmap row per department, in department
// order. Emails count toward a department through their user's membership.
func DepartmentRisks(departments []domain.Department, users []domain.User, logs []domain.EmailLog) []DepartmentRisk {
	counts := tallyByUser(logs)
	perDept := make(map[int64]tally, len(departments))
	for _, u := range users {
		t := counts[u.ID]
		agg := perDept[u.DepartmentID]
		agg.emails += t.emails
		agg.clicks += t.clicks
		perDept[u.DepartmentID] = agg
	}

	out := make([]DepartmentRisk, 0, len(departments))
	for _, d := range departments {
		t := perDept[d.ID]
		rate := roundTo(percent(t.clicks, t.emails), 2)
		tier := Classify(rate)
		out = append(out, DepartmentRisk{
			DepartmentID: d.ID,
			Department:   d.Name,
			ClickRatePct: rate,
			RiskTier:     tier,
			RiskColor:    tier.Color(),
			TotalEmails:  t.emails,
			TotalClicks:  t.clicks,
		})
	}
	return out
}

// Distribution buckets the users of a click summary into 0, 1, 2 and 3+ clicks.
func Distribution(rows []UserClickSummary) ClickDistribution {
	var d ClickDistribution
	for _, r := range rows {
		switch {
		case r.Clicks == 0:
			d.ZeroClicks++
		case r.Clicks == 1:
			d.OneClick++
		case r.Clicks == 2:
			d.TwoClicks++
		default:
			d.ThreePlusClicks++
		}
	}
	return d
}
