package api

import (
	"net/http"

	"github.com/ignite/phishing-dashboard/internal/pkg/httputil"
	"github.com/ignite/phishing-dashboard/internal/viewstate"
)

// SessionHeader carries the presentation session identifier.
const SessionHeader = "X-Session-ID"

// viewStateAction is the PUT /api/view-state body.
type viewStateAction struct {
	Action     string `json:"action"`
	Tab        string `json:"tab,omitempty"`
	Department string `json:"department,omitempty"`
	Search     string `json:"search,omitempty"`
}

// sessionID returns the caller's session, issuing a new one when absent.
// EventSource clients cannot set headers, so ?session= is accepted too.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = r.URL.Query().Get("session")
	}
	if id == "" {
		id = viewstate.NewID()
	}
	w.Header().Set(SessionHeader, id)
	return id
}

// GetViewState returns the caller's presentation state.
//
//	GET /api/view-state
func (h *Handlers) GetViewState(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	httputil.OK(w, h.sessions.Get(id))
}

// UpdateViewState applies one transition to the session's state. Drill-down
// transitions go through the dashboard so the session's stream follows.
//
//	PUT /api/view-state
func (h *Handlers) UpdateViewState(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)

	var req viewStateAction
	if !httputil.Decode(w, r, &req) {
		return
	}

	var transition func(viewstate.State) viewstate.State
	switch req.Action {
	case "select_tab":
		tab, err := viewstate.ParseTab(req.Tab)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		h.dashboard.ExitDrillDown(id)
		transition = func(s viewstate.State) viewstate.State { return s.SelectTab(tab) }
	case "enter_drill_down":
		if req.Department == "" {
			httputil.BadRequest(w, "department is required")
			return
		}
		if _, err := h.dashboard.SelectDepartment(id, req.Department); err != nil {
			writeServiceError(w, err)
			return
		}
		transition = func(s viewstate.State) viewstate.State { return s.EnterDrillDown(req.Department) }
	case "back":
		h.dashboard.ExitDrillDown(id)
		transition = viewstate.State.Back
	case "open_wipe_dialog":
		transition = viewstate.State.OpenWipeDialog
	case "close_wipe_dialog":
		transition = viewstate.State.CloseWipeDialog
	case "set_search":
		transition = func(s viewstate.State) viewstate.State { return s.SetSearch(req.Search) }
	default:
		httputil.BadRequest(w, "unknown action "+req.Action)
		return
	}

	httputil.OK(w, h.sessions.Update(id, transition))
}
