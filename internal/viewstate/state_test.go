package viewstate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTabExitsDrillDown(t *testing.T) {
	s := Initial().EnterDrillDown("Finance")
	require.True(t, s.DrillDown)

	s = s.SelectTab(TabTrends)
	assert.False(t, s.DrillDown)
	assert.Empty(t, s.DrillDepartment)
	assert.Equal(t, TabTrends, s.SelectedTab)
	assert.NoError(t, s.Validate())
}

func TestBackReturnsToOverview(t *testing.T) {
	s := Initial().EnterDrillDown("Finance").Back()
	assert.Equal(t, Initial(), s)
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	base := Initial()
	_ = base.EnterDrillDown("Legal").OpenWipeDialog().SetSearch("ali")
	assert.Equal(t, Initial(), base)
}

func TestWipeDialog(t *testing.T) {
	s := Initial().OpenWipeDialog()
	assert.True(t, s.WipeDialogOpen)
	assert.False(t, s.CloseWipeDialog().WipeDialogOpen)
}

func TestMatches(t *testing.T) {
	s := Initial().SetSearch("  ALI ")
	assert.Equal(t, "ALI", s.SearchText)
	assert.True(t, s.Matches("Bob", "alice@corp.io"))
	assert.False(t, s.Matches("Bob", "bob@corp.io"))
	assert.True(t, Initial().Matches("anything"))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, State{SelectedTab: "charts"}.Validate(), ErrInvalidTab)
	assert.Error(t, State{SelectedTab: TabUserRisk, DrillDown: true}.Validate())
	assert.Error(t, State{SelectedTab: TabUserRisk, DrillDepartment: "IT"}.Validate())
	assert.NoError(t, Initial().EnterDrillDown("IT").Validate())
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(Initial().EnterDrillDown("Finance"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"search_text":"","selected_tab":"department_risk","drill_down":true,"drill_department":"Finance","wipe_dialog_open":false}`, string(data))
}

func TestSessions(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(time.Hour)
	sessions.now = func() time.Time { return now }

	id := NewID()
	assert.Equal(t, Initial(), sessions.Get(id))

	got := sessions.Update(id, func(s State) State { return s.SelectTab(TabTraining) })
	assert.Equal(t, TabTraining, got.SelectedTab)
	assert.Equal(t, TabTraining, sessions.Get(id).SelectedTab)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, Initial(), sessions.Get(id))

	sessions.Put(NewID(), Initial())
	assert.Equal(t, 1, sessions.Len())
}
