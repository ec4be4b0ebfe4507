package analytics

import (
	"time"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

// Snapshot is one consistent read of every entity collection.
type Snapshot struct {
	Users       []domain.User
	Departments []domain.Department
	EmailLogs   []domain.EmailLog
	Training    *domain.TrainingStats
}

// Options tune the view-model without changing its shape.
type Options struct {
	// TrendDepartment selects the department plotted next to the overall
	// weekly trend. Empty leaves the department series at zero.
	TrendDepartment string
}

// ViewModel is everything the rendering layer needs for the overview.
// It is rebuilt from scratch on every refresh and never mutated afterwards.
type ViewModel struct {
	Summary               SummaryStats         `json:"summary"`
	ClickRateLabel        string               `json:"click_rate_label"`
	DepartmentRisk        []DepartmentRisk     `json:"department_risk"`
	UserClicks            []UserClickSummary   `json:"user_clicks"`
	ClickDistribution     ClickDistribution    `json:"click_distribution"`
	TrendDepartment       string               `json:"trend_department"`
	TimeSeries            []TimeSeriesPoint    `json:"time_series"`
	TemplateEffectiveness []TemplateRate       `json:"template_effectiveness"`
	Training              domain.TrainingStats `json:"training"`
	LastUpdate            time.Time            `json:"last_update"`
	IsLive                bool                 `json:"is_live"`
	Generation            uint64               `json:"generation"`
}

// Build runs every aggregation over the same snapshot.
func Build(s Snapshot, now time.Time, opts Options) ViewModel {
	summary := Summarize(s.Users, s.Departments, s.EmailLogs)
	userClicks := UserClicks(s.Users, s.Departments, s.EmailLogs)

	var deptLogs []domain.EmailLog
	if opts.TrendDepartment != "" {
		deptLogs = newDirectory(s.Users, s.Departments).logsForDepartment(s.EmailLogs, opts.TrendDepartment)
	}

	return ViewModel{
		Summary:               summary,
		ClickRateLabel:        summary.ClickRateLabel(),
		DepartmentRisk:        DepartmentRisks(s.Departments, s.Users, s.EmailLogs),
		UserClicks:            userClicks,
		ClickDistribution:     Distribution(userClicks),
		TrendDepartment:       opts.TrendDepartment,
		TimeSeries:            WeeklyTrend(s.EmailLogs, deptLogs, now),
		TemplateEffectiveness: TemplateEffectiveness(s.EmailLogs),
		Training:              Training(s.Users, s.Departments, s.Training),
		LastUpdate:            now,
	}
}

// Empty is the all-zero view-model shown before the first successful refresh.
func Empty(now time.Time, opts Options) ViewModel {
	return Build(Snapshot{}, now, opts)
}
