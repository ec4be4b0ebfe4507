package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

// naiveTime is how the simulation backend writes UTC columns.
const naiveTime = "2006-01-02T15:04:05.000000"

// backend is an in-memory simulation backend. It serves the same paths and
// payload shapes as the real one so the dashboard can run without it.
type backend struct {
	mu          sync.Mutex
	departments []domain.Department
	users       []domain.User
	logs        []domain.EmailLog
	now         func() time.Time
}

func newBackend(now func() time.Time) *backend {
	if now == nil {
		now = time.Now
	}
	return &backend{now: now}
}

func (b *backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Phishing simulation stub backend"})
	})
	r.Get("/departments/", b.listDepartments)
	r.Get("/users/", b.listUsers)
	r.Get("/email_logs/", b.listEmailLogs)
	r.Post("/email_logs/{id}/click", b.simulateClick)
	r.Post("/email_logs/{id}/respond", b.simulateResponse)
	r.Post("/users/complete-all-training", b.completeAllTraining)
	r.Post("/users/{id}/complete-training", b.completeTraining)
	r.Post("/departments/{id}/complete-training", b.completeDepartmentTraining)
	r.Get("/analytics/training-completion", b.trainingCompletion)
	r.Delete("/wipe-all-data", b.wipeAllData)
	return r
}

type wireDepartment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wireUser struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	DepartmentID        int64           `json:"department_id"`
	Department          *wireDepartment `json:"department"`
	TrainingCompleted   bool            `json:"training_completed"`
	TrainingCompletedAt *string         `json:"training_completed_at"`
}

type wireEmailLog struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Subject      string    `json:"subject"`
	TemplateType string    `json:"template_type"`
	SentAt       string    `json:"sent_at"`
	Clicked      bool      `json:"clicked"`
	ClickedAt    *string   `json:"clicked_at"`
	Responded    bool      `json:"responded"`
	RespondedAt  *string   `json:"responded_at"`
	User         *wireUser `json:"user"`
}

func naive(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(naiveTime)
	return &s
}

func (b *backend) department(id int64) *domain.Department {
	for i := range b.departments {
		if b.departments[i].ID == id {
			return &b.departments[i]
		}
	}
	return nil
}

func (b *backend) toWireUser(u domain.User) *wireUser {
	w := &wireUser{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		DepartmentID:        u.DepartmentID,
		TrainingCompleted:   u.TrainingCompleted,
		TrainingCompletedAt: naive(u.TrainingCompletedAt),
	}
	if d := b.department(u.DepartmentID); d != nil {
		w.Department = &wireDepartment{ID: d.ID, Name: d.Name}
	}
	return w
}

// page applies skip/limit the way the backend does: limit defaults to 100.
func page[T any](r *http.Request, items []T) []T {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 100
	}
	if skip < 0 || skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func (b *backend) listDepartments(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]wireDepartment, 0, len(b.departments))
	for _, d := range b.departments {
		out = append(out, wireDepartment{ID: d.ID, Name: d.Name})
	}
	writeJSON(w, http.StatusOK, page(r, out))
}

func (b *backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*wireUser, 0, len(b.users))
	for _, u := range b.users {
		out = append(out, b.toWireUser(u))
	}
	writeJSON(w, http.StatusOK, page(r, out))
}

func (b *backend) listEmailLogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	deptID, _ := strconv.ParseInt(r.URL.Query().Get("department_id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	owners := make(map[int64]domain.User, len(b.users))
	for _, u := range b.users {
		owners[u.ID] = u
	}
	out := make([]wireEmailLog, 0, len(b.logs))
	for _, l := range b.logs {
		owner, known := owners[l.UserID]
		if userID != 0 && l.UserID != userID {
			continue
		}
		if deptID != 0 && (!known || owner.DepartmentID != deptID) {
			continue
		}
		wl := wireEmailLog{
			ID:           l.ID,
			UserID:       l.UserID,
			Subject:      l.Subject,
			TemplateType: string(l.TemplateType),
			SentAt:       l.SentAt.UTC().Format(naiveTime),
			Clicked:      l.Clicked,
			ClickedAt:    naive(l.ClickedAt),
			Responded:    l.Responded,
			RespondedAt:  naive(l.RespondedAt),
		}
		if known {
			wl.User = b.toWireUser(owner)
		}
		out = append(out, wl)
	}
	writeJSON(w, http.StatusOK, page(r, out))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{{
			"loc":  []string{"path", "id"},
			"msg":  "value is not a valid integer",
			"type": "type_error.integer",
		}})
		return 0, false
	}
	return id, true
}

func (b *backend) markLog(w http.ResponseWriter, r *http.Request, mark func(*domain.EmailLog, time.Time), message string) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.logs {
		if b.logs[i].ID == id {
			mark(&b.logs[i], b.now().UTC())
			writeJSON(w, http.StatusOK, map[string]string{"message": message})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Email log not found")
}

func (b *backend) simulateClick(w http.ResponseWriter, r *http.Request) {
	b.markLog(w, r, func(l *domain.EmailLog, at time.Time) {
		l.Clicked, l.ClickedAt = true, &at
	}, "Click simulated successfully")
}

func (b *backend) simulateResponse(w http.ResponseWriter, r *http.Request) {
	b.markLog(w, r, func(l *domain.EmailLog, at time.Time) {
		l.Responded, l.RespondedAt = true, &at
	}, "Response simulated successfully")
}

// completeWhere marks matching users trained and returns how many matched
// and how many were newly completed. Callers hold b.mu.
func (b *backend) completeWhere(match func(domain.User) bool) (total, newly int) {
	at := b.now().UTC()
	for i := range b.users {
		if !match(b.users[i]) {
			continue
		}
		total++
		if !b.users[i].TrainingCompleted {
			b.users[i].TrainingCompleted = true
			b.users[i].TrainingCompletedAt = &at
			newly++
		}
	}
	return total, newly
}

func (b *backend) completeTraining(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.users {
		if b.users[i].ID != id {
			continue
		}
		at := b.now().UTC()
		b.users[i].TrainingCompleted = true
		b.users[i].TrainingCompletedAt = &at
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      "Training completed for " + b.users[i].Name,
			"user_id":      id,
			"user_name":    b.users[i].Name,
			"completed_at": at.Format(naiveTime),
		})
		return
	}
	writeDetail(w, http.StatusNotFound, "User not found")
}

func (b *backend) completeDepartmentTraining(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	dept := b.department(id)
	if dept == nil {
		writeDetail(w, http.StatusNotFound, "Department not found")
		return
	}
	total, newly := b.completeWhere(func(u domain.User) bool { return u.DepartmentID == id })
	if total == 0 {
		writeDetail(w, http.StatusNotFound, "No users found in department")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           fmt.Sprintf("Training completed for %d users in %s", newly, dept.Name),
		"department_id":     id,
		"department_name":   dept.Name,
		"total_users":       total,
		"newly_completed":   newly,
		"already_completed": total - newly,
	})
}

func (b *backend) completeAllTraining(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	total, newly := b.completeWhere(func(domain.User) bool { return true })
	if total == 0 {
		writeDetail(w, http.StatusNotFound, "No users found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           fmt.Sprintf("Training completed for %d users", newly),
		"total_users":       total,
		"newly_completed":   newly,
		"already_completed": total - newly,
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (b *backend) trainingCompletion(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	completed := 0
	for _, u := range b.users {
		if u.TrainingCompleted {
			completed++
		}
	}
	rate := 0.0
	if len(b.users) > 0 {
		rate = float64(completed) / float64(len(b.users)) * 100
	}

	deptStats := make([]domain.DepartmentTraining, 0, len(b.departments))
	for _, d := range b.departments {
		row := domain.DepartmentTraining{DepartmentID: d.ID, DepartmentName: d.Name}
		for _, u := range b.users {
			if u.DepartmentID != d.ID {
				continue
			}
			row.TotalUsers++
			if u.TrainingCompleted {
				row.CompletedUsers++
			}
		}
		if row.TotalUsers > 0 {
			row.CompletionRate = round1(float64(row.CompletedUsers) / float64(row.TotalUsers) * 100)
		}
		deptStats = append(deptStats, row)
	}

	var done []domain.User
	for _, u := range b.users {
		if u.TrainingCompleted && u.TrainingCompletedAt != nil {
			done = append(done, u)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].TrainingCompletedAt.After(*done[j].TrainingCompletedAt)
	})
	if len(done) > 10 {
		done = done[:10]
	}
	recent := make([]map[string]any, 0, len(done))
	for _, u := range done {
		deptName := domain.NoDepartment
		if d := b.department(u.DepartmentID); d != nil {
			deptName = d.Name
		}
		recent = append(recent, map[string]any{
			"user_id":      u.ID,
			"user_name":    u.Name,
			"department":   deptName,
			"completed_at": u.TrainingCompletedAt.UTC().Format(naiveTime),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overall_stats": map[string]any{
			"total_users":     len(b.users),
			"completed_users": completed,
			"completion_rate": round1(rate),
		},
		"department_stats":   deptStats,
		"recent_completions": recent,
	})
}

func (b *backend) wipeAllData(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	counts := domain.DeletedRecords{
		Users:       len(b.users),
		Departments: len(b.departments),
		EmailLogs:   len(b.logs),
	}
	b.logs, b.users, b.departments = nil, nil, nil
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "All data wiped successfully",
		"deleted_counts": counts,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes the backend's error body, {"detail": ...}.
func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
