package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want RiskTier
	}{
		{"zero", 0, RiskLow},
		{"just below medium", 14.99, RiskLow},
		{"medium boundary inclusive", 15, RiskMedium},
		{"mid medium", 22.5, RiskMedium},
		{"high boundary is medium", 30, RiskMedium},
		{"just above high boundary", 30.01, RiskHigh},
		{"full", 100, RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.pct))
		})
	}
}

func TestRiskTier_Color(t *testing.T) {
	assert.Equal(t, "success", RiskLow.Color())
	assert.Equal(t, "warning", RiskMedium.Color())
	assert.Equal(t, "error", RiskHigh.Color())
}

func TestClassify_SameRuleForUsersAndDepartments(t *testing.T) {
	users := UserClicks(fixtureUsers(), fixtureDepartments(), fixtureLogs())
	for _, u := range users {
		assert.Equal(t, Classify(u.ClickRatePct), u.RiskTier, u.User)
	}
	for _, d := range DepartmentRisks(fixtureDepartments(), fixtureUsers(), fixtureLogs()) {
		assert.Equal(t, Classify(d.ClickRatePct), d.RiskTier, d.Department)
	}
}
