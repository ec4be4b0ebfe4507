package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/phishing-dashboard/internal/analytics"
	"github.com/ignite/phishing-dashboard/internal/dashboard"
	"github.com/ignite/phishing-dashboard/internal/pkg/httputil"
	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
	"github.com/ignite/phishing-dashboard/internal/viewstate"
)

// Dashboard is the part of dashboard.Service the handlers use.
type Dashboard interface {
	ViewModel() analytics.ViewModel
	RefreshNow(ctx context.Context) error
	ToggleLive() bool
	SelectDepartment(session, name string) (analytics.DrillDownView, error)
	ExitDrillDown(session string)
	Notifications(limit int) []dashboard.Notification
	ConfirmWipe(ctx context.Context) (dashboard.WipeOutcome, error)
	SimulateClick(ctx context.Context, logID int64) error
	SimulateResponse(ctx context.Context, logID int64) error
	CompleteTraining(ctx context.Context, userID int64) error
	CompleteDepartmentTraining(ctx context.Context, departmentID int64) error
	CompleteAllTraining(ctx context.Context) error
	Hub() *dashboard.Hub
}

var _ Dashboard = (*dashboard.Service)(nil)

// Handlers contains all HTTP handlers.
type Handlers struct {
	dashboard Dashboard
	sessions  *viewstate.Sessions
}

// NewHandlers creates handlers over d with an in-memory session table.
func NewHandlers(d Dashboard, sessions *viewstate.Sessions) *Handlers {
	if sessions == nil {
		sessions = viewstate.NewSessions(0)
	}
	return &Handlers{dashboard: d, sessions: sessions}
}

// GetDashboard returns the current view-model. ?search= narrows the user
// table to users whose name or department contains the text.
//
//	GET /api/dashboard
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	vm := h.dashboard.ViewModel()
	if q := r.URL.Query().Get("search"); q != "" {
		st := viewstate.Initial().SetSearch(q)
		filtered := make([]analytics.UserClickSummary, 0, len(vm.UserClicks))
		for _, u := range vm.UserClicks {
			if st.Matches(u.User, u.Department) {
				filtered = append(filtered, u)
			}
		}
		vm.UserClicks = filtered
	}
	httputil.OK(w, vm)
}

// Refresh runs one refresh cycle and returns the resulting view-model. On
// failure the previous view-model is still served by GET.
//
//	POST /api/dashboard/refresh
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.RefreshNow(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, h.dashboard.ViewModel())
}

// ToggleLive flips live mode.
//
//	POST /api/dashboard/live
func (h *Handlers) ToggleLive(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]bool{"is_live": h.dashboard.ToggleLive()})
}

// SelectDepartment returns the drill-down view for one department and
// puts the caller's session into drill-down.
//
//	GET /api/dashboard/departments/{name}
func (h *Handlers) SelectDepartment(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		httputil.BadRequest(w, "invalid department name")
		return
	}
	id := sessionID(w, r)
	view, err := h.dashboard.SelectDepartment(id, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.sessions.Update(id, func(s viewstate.State) viewstate.State { return s.EnterDrillDown(name) })
	httputil.OK(w, view)
}

// ExitDrillDown returns the caller's session to the overview.
//
//	DELETE /api/dashboard/drilldown
func (h *Handlers) ExitDrillDown(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	h.dashboard.ExitDrillDown(id)
	h.sessions.Update(id, viewstate.State.Back)
	httputil.NoContent(w)
}

// Notifications returns the newest notifications; ?limit= caps the count.
//
//	GET /api/notifications
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	httputil.OK(w, h.dashboard.Notifications(limit))
}

// ConfirmWipe deletes all simulation data.
//
//	DELETE /api/data
func (h *Handlers) ConfirmWipe(w http.ResponseWriter, r *http.Request) {
	out, err := h.dashboard.ConfirmWipe(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if id := r.Header.Get(SessionHeader); id != "" {
		h.sessions.Update(id, func(s viewstate.State) viewstate.State { return s.CloseWipeDialog().Back() })
	}
	httputil.OK(w, out)
}

func (h *Handlers) SimulateClick(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.dashboard.SimulateClick)
}

func (h *Handlers) SimulateResponse(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.dashboard.SimulateResponse)
}

func (h *Handlers) CompleteTraining(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.dashboard.CompleteTraining)
}

func (h *Handlers) CompleteDepartmentTraining(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.dashboard.CompleteDepartmentTraining)
}

func (h *Handlers) CompleteAllTraining(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.CompleteAllTraining(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, h.dashboard.ViewModel())
}

func (h *Handlers) mutateByID(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "id must be a positive integer")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, h.dashboard.ViewModel())
}

// writeServiceError maps dashboard errors onto status codes and envelopes.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		fetchErr    *dashboard.FetchError
		mutationErr *dashboard.MutationError
		wipeErr     *dashboard.WipeError
	)
	switch {
	case errors.Is(err, dashboard.ErrUnknownDepartment):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, dashboard.ErrWipeInProgress):
		httputil.Conflict(w, "a data wipe is already in progress")
	case errors.Is(err, dashboard.ErrClosed):
		httputil.Error(w, http.StatusServiceUnavailable, "dashboard is shutting down")
	case errors.As(err, &fetchErr):
		httputil.ErrorWithCode(w, http.StatusBadGateway, "fetch_failed", "Failed to fetch data", safeErrorMessage(fetchErr.Err))
	case errors.As(err, &mutationErr):
		httputil.ErrorWithCode(w, upstreamStatus(mutationErr.Status), "mutation_failed", mutationErr.DetailString(), mutationErr.Detail)
	case errors.As(err, &wipeErr):
		httputil.ErrorWithCode(w, upstreamStatus(wipeErr.Status), "wipe_failed", wipeErr.DetailString(), wipeErr.Detail)
	default:
		logger.Error("api: unexpected dashboard error", "error", err)
		httputil.InternalError(w, err)
	}
}

// upstreamStatus passes client errors from the store through and reports
// everything else as a bad gateway.
func upstreamStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
