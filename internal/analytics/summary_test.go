package analytics

import (
	"math"
	"testing"

	"github.com/ignite/phishing-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_TenEmailsThreeClicks(t *testing.T) {
	s := Summarize(nil, nil, logsWithClicks(10, 3))

	assert.Equal(t, 10, s.EmailCount)
	assert.Equal(t, 3, s.ClickCount)
	assert.Equal(t, 30.0, s.ClickRatePct)
	assert.Equal(t, "30.0", s.ClickRateLabel())
	assert.Equal(t, RiskMedium, Classify(s.ClickRatePct))
}

func TestSummarize_NoEmails(t *testing.T) {
	s := Summarize(nil, nil, nil)

	assert.Equal(t, SummaryStats{}, s)
	assert.False(t, math.IsNaN(s.ClickRatePct))
	assert.Equal(t, "0.0", s.ClickRateLabel())
}

func TestSummarize_CountsEntities(t *testing.T) {
	s := Summarize(fixtureUsers(), fixtureDepartments(), fixtureLogs())

	assert.Equal(t, 4, s.UserCount)
	assert.Equal(t, 3, s.DepartmentCount)
	assert.Equal(t, 6, s.EmailCount)
	assert.Equal(t, 3, s.ClickCount)
	assert.Equal(t, 1, s.ResponseCount)
	assert.Equal(t, 50.0, s.ClickRatePct)
	assert.Equal(t, 16.7, s.ResponseRatePct)
}

func TestClickRatePct_RoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 33.3, ClickRatePct(1, 3))
	assert.Equal(t, 66.7, ClickRatePct(2, 3))
	assert.Equal(t, 0.0, ClickRatePct(5, 0))
	assert.Equal(t, 33, WholeRatePct(1, 3))
	assert.Equal(t, 67, WholeRatePct(2, 3))
	assert.Equal(t, 0, WholeRatePct(0, 0))
}

func TestAttribute_UnknownUser(t *testing.T) {
	log := domain.EmailLog{ID: 1, UserID: 42, UserName: "ghost"}
	a := Attribute(log, fixtureUsers(), fixtureDepartments())

	assert.False(t, a.Known)
	assert.Equal(t, "User 42", a.UserName)
	assert.Equal(t, domain.NoDepartment, a.Department)
}

func TestAttribute_JoinsOnDepartmentID(t *testing.T) {
	users := []domain.User{{ID: 1, Name: "Eve", DepartmentID: 3}}
	a := Attribute(domain.EmailLog{UserID: 1}, users, fixtureDepartments())

	assert.True(t, a.Known)
	assert.Equal(t, "Legal", a.Department)

	// A stale embedded department does not override department_id.
	users[0].Department = &domain.Department{ID: 3, Name: "Legal & Compliance"}
	a = Attribute(domain.EmailLog{UserID: 1}, users, fixtureDepartments())
	assert.Equal(t, "Legal", a.Department)

	// Unlisted department: the embedded name is used unless it belongs to a
	// listed department.
	users[0].DepartmentID = 9
	users[0].Department = &domain.Department{ID: 9, Name: "Facilities"}
	a = Attribute(domain.EmailLog{UserID: 1}, users, fixtureDepartments())
	assert.Equal(t, "Facilities", a.Department)

	users[0].Department = &domain.Department{ID: 9, Name: "Finance"}
	a = Attribute(domain.EmailLog{UserID: 1}, users, fixtureDepartments())
	assert.Equal(t, domain.NoDepartment, a.Department)
}

func TestDrillDown_AgreesWithHeatmapOnMismatchedEmbeddedDepartment(t *testing.T) {
	depts := fixtureDepartments()
	users := []domain.User{
		{ID: 1, Name: "Eve", DepartmentID: 1, Department: &domain.Department{ID: 2, Name: "IT Department"}},
		{ID: 2, Name: "Sam", DepartmentID: 2},
	}
	logs := []domain.EmailLog{
		{ID: 1, UserID: 1, Clicked: true},
		{ID: 2, UserID: 1},
		{ID: 3, UserID: 2},
	}
	rows := UserClicks(users, depts, logs)
	risks := DepartmentRisks(depts, users, logs)

	for _, risk := range risks {
		view := DrillDown(risk.Department, rows, users, depts, logs)
		assert.Equal(t, risk.TotalEmails, view.Stats.TotalEmails, risk.Department)
		assert.Equal(t, risk.TotalClicks, view.Stats.TotalClicks, risk.Department)
	}
	finance := DrillDown("Finance", rows, users, depts, logs)
	require.Len(t, finance.Users, 1)
	assert.Equal(t, "Eve", finance.Users[0].User)
}

func TestUserClicks_PreservesOrder(t *testing.T) {
	rows := UserClicks(fixtureUsers(), fixtureDepartments(), fixtureLogs())
	require.Len(t, rows, 4)

	names := []string{rows[0].User, rows[1].User, rows[2].User, rows[3].User}
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dan"}, names)

	assert.Equal(t, 1, rows[0].Clicks)
	assert.Equal(t, 2, rows[0].TotalEmails)
	assert.Equal(t, 50.0, rows[0].ClickRatePct)
	assert.Equal(t, RiskHigh, rows[0].RiskTier)
	assert.Equal(t, "Finance", rows[0].Department)

	assert.Equal(t, 0, rows[2].Clicks)
	assert.Equal(t, RiskLow, rows[2].RiskTier)
}

func TestDepartmentRisks(t *testing.T) {
	rows := DepartmentRisks(fixtureDepartments(), fixtureUsers(), fixtureLogs())
	require.Len(t, rows, 3)

	assert.Equal(t, "Finance", rows[0].Department)
	assert.Equal(t, 3, rows[0].TotalEmails)
	assert.Equal(t, 2, rows[0].TotalClicks)
	assert.Equal(t, 66.67, rows[0].ClickRatePct)
	assert.Equal(t, RiskHigh, rows[0].RiskTier)
	assert.Equal(t, "error", rows[0].RiskColor)

	assert.Equal(t, "IT Department", rows[1].Department)
	assert.Equal(t, 50.0, rows[1].ClickRatePct)

	assert.Equal(t, "Legal", rows[2].Department)
	assert.Equal(t, 0, rows[2].TotalEmails)
	assert.Equal(t, 0.0, rows[2].ClickRatePct)
	assert.Equal(t, RiskLow, rows[2].RiskTier)
}

func TestDistribution(t *testing.T) {
	rows := []UserClickSummary{{Clicks: 0}, {Clicks: 0}, {Clicks: 1}, {Clicks: 2}, {Clicks: 3}, {Clicks: 7}}

	assert.Equal(t, ClickDistribution{ZeroClicks: 2, OneClick: 1, TwoClicks: 1, ThreePlusClicks: 2}, Distribution(rows))
}
