package analytics

import "github.com/ignite/phishing-dashboard/internal/domain"

// SummaryStats are the headline counters of the dashboard.
type SummaryStats struct {
	UserCount       int     `json:"user_count"`
	DepartmentCount int     `json:"department_count"`
	EmailCount      int     `json:"email_count"`
	ClickCount      int     `json:"click_count"`
	ResponseCount   int     `json:"response_count"`
	ClickRatePct    float64 `json:"click_rate_pct"`
	ResponseRatePct float64 `json:"response_rate_pct"`
}

// ClickRateLabel is the click rate formatted with one decimal.
func (s SummaryStats) ClickRateLabel() string {
	return FormatRate(s.ClickRatePct)
}

// Summarize computes the summary counters from one snapshot.
func Summarize(users []domain.User, departments []domain.Department, logs []domain.EmailLog) SummaryStats {
	s := SummaryStats{
		UserCount:       len(users),
		DepartmentCount: len(departments),
		EmailCount:      len(logs),
	}
	for _, l := range logs {
		if l.Clicked {
			s.ClickCount++
		}
		if l.Responded {
			s.ResponseCount++
		}
	}
	s.ClickRatePct = ClickRatePct(s.ClickCount, s.EmailCount)
	s.ResponseRatePct = ClickRatePct(s.ResponseCount, s.EmailCount)
	return s
}
