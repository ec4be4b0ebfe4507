// Package viewstate holds the per-session presentation state of the
// dashboard page: search text, selected tab, drill-down and the wipe
// confirmation dialog. Transitions are pure; they return a new State.
package viewstate

import (
	"errors"
	"fmt"
	"strings"
)

// Tab identifies a dashboard tab.
type Tab string

const (
	TabDepartmentRisk Tab = "department_risk"
	TabUserRisk       Tab = "user_risk"
	TabTrends         Tab = "trends"
	TabTemplates      Tab = "templates"
	TabTraining       Tab = "training"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabDepartmentRisk, TabUserRisk, TabTrends, TabTemplates, TabTraining}

// ErrInvalidTab is returned when a tab name is not recognized.
var ErrInvalidTab = errors.New("viewstate: invalid tab")

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTab, s)
}

// State is the serializable page state. The zero value is not valid; use
// Initial.
type State struct {
	SearchText      string `json:"search_text"`
	SelectedTab     Tab    `json:"selected_tab"`
	DrillDown       bool   `json:"drill_down"`
	DrillDepartment string `json:"drill_department,omitempty"`
	WipeDialogOpen  bool   `json:"wipe_dialog_open"`
}

// Initial is the overview on the department risk tab.
func Initial() State {
	return State{SelectedTab: TabDepartmentRisk}
}

// SelectTab switches tabs. Switching always leaves drill-down, even when
// the tab does not change.
func (s State) SelectTab(t Tab) State {
	s.SelectedTab = t
	s.DrillDown = false
	s.DrillDepartment = ""
	return s
}

// EnterDrillDown narrows the view to one department.
func (s State) EnterDrillDown(department string) State {
	s.DrillDown = true
	s.DrillDepartment = department
	return s
}

// Back returns from drill-down to the overview.
func (s State) Back() State {
	s.DrillDown = false
	s.DrillDepartment = ""
	return s
}

func (s State) OpenWipeDialog() State {
	s.WipeDialogOpen = true
	return s
}

func (s State) CloseWipeDialog() State {
	s.WipeDialogOpen = false
	return s
}

// SetSearch replaces the search text, trimming surrounding space.
func (s State) SetSearch(text string) State {
	s.SearchText = strings.TrimSpace(text)
	return s
}

// Matches reports whether any field contains the search text, ignoring
// case. An empty search matches everything.
func (s State) Matches(fields ...string) bool {
	if s.SearchText == "" {
		return true
	}
	needle := strings.ToLower(s.SearchText)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Validate rejects mixed states a client might submit.
func (s State) Validate() error {
	if _, err := ParseTab(string(s.SelectedTab)); err != nil {
		return err
	}
	if s.DrillDown && s.DrillDepartment == "" {
		return errors.New("viewstate: drill-down requires a department")
	}
	if !s.DrillDown && s.DrillDepartment != "" {
		return errors.New("viewstate: department set outside drill-down")
	}
	return nil
}
