package entitystore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

// timestamp accepts RFC 3339 values and the zone-less ISO form the backend
// emits for UTC columns ("2024-05-01T09:30:00.123456"). Zone-less values
// are taken as UTC.
type timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *timestamp) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type wireDepartment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (d wireDepartment) toDomain() domain.Department {
	return domain.Department{ID: d.ID, Name: d.Name}
}

type wireUser struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	DepartmentID        *int64          `json:"department_id"`
	Department          *wireDepartment `json:"department"`
	TrainingCompleted   bool            `json:"training_completed"`
	TrainingCompletedAt *timestamp      `json:"training_completed_at"`
}

func (u wireUser) toDomain() domain.User {
	user := domain.User{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		TrainingCompleted:   u.TrainingCompleted,
		TrainingCompletedAt: u.TrainingCompletedAt.ptr(),
	}
	if u.DepartmentID != nil {
		user.DepartmentID = *u.DepartmentID
	}
	if u.Department != nil {
		dept := u.Department.toDomain()
		user.Department = &dept
		if user.DepartmentID == 0 {
			user.DepartmentID = dept.ID
		}
	}
	return user
}

type wireEmailLog struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Subject      string     `json:"subject"`
	TemplateType *string    `json:"template_type"`
	SentAt       timestamp  `json:"sent_at"`
	Clicked      bool       `json:"clicked"`
	ClickedAt    *timestamp `json:"clicked_at"`
	Responded    bool       `json:"responded"`
	RespondedAt  *timestamp `json:"responded_at"`
	User         *wireUser  `json:"user"`
}

func (l wireEmailLog) toDomain() domain.EmailLog {
	log := domain.EmailLog{
		ID:          l.ID,
		UserID:      l.UserID,
		Subject:     l.Subject,
		SentAt:      l.SentAt.Time,
		Clicked:     l.Clicked,
		ClickedAt:   l.ClickedAt.ptr(),
		Responded:   l.Responded,
		RespondedAt: l.RespondedAt.ptr(),
	}
	if l.TemplateType != nil {
		log.TemplateType = domain.ParseTemplateType(*l.TemplateType)
	} else {
		log.TemplateType = domain.TemplateOther
	}
	if l.User != nil {
		log.UserName = l.User.Name
		if log.UserID == 0 {
			log.UserID = l.User.ID
		}
	}
	return log
}

type wireTrainingStats struct {
	Overall struct {
		TotalUsers     int     `json:"total_users"`
		CompletedUsers int     `json:"completed_users"`
		CompletionRate float64 `json:"completion_rate"`
	} `json:"overall_stats"`
	Departments       []domain.DepartmentTraining `json:"department_stats"`
	RecentCompletions []struct {
		UserID      int64     `json:"user_id"`
		UserName    string    `json:"user_name"`
		Department  string    `json:"department"`
		CompletedAt timestamp `json:"completed_at"`
	} `json:"recent_completions"`
}

func (w wireTrainingStats) toDomain() *domain.TrainingStats {
	stats := &domain.TrainingStats{
		Overall: domain.TrainingOverall{
			TotalUsers:     w.Overall.TotalUsers,
			CompletedUsers: w.Overall.CompletedUsers,
			CompletionRate: w.Overall.CompletionRate,
		},
		Departments: w.Departments,
	}
	for _, rc := range w.RecentCompletions {
		stats.RecentCompletions = append(stats.RecentCompletions, domain.TrainingCompletion{
			UserID:      rc.UserID,
			UserName:    rc.UserName,
			Department:  rc.Department,
			CompletedAt: rc.CompletedAt.Time,
		})
	}
	return stats
}

// wireWipeResult accepts both "deleted_records" and the older
// "deleted_counts" key.
type wireWipeResult struct {
	Message        string                 `json:"message"`
	DeletedRecords *domain.DeletedRecords `json:"deleted_records"`
	DeletedCounts  *domain.DeletedRecords `json:"deleted_counts"`
}

func (w wireWipeResult) toDomain() *domain.WipeResult {
	res := &domain.WipeResult{Message: w.Message}
	switch {
	case w.DeletedRecords != nil:
		res.DeletedRecords = *w.DeletedRecords
	case w.DeletedCounts != nil:
		res.DeletedRecords = *w.DeletedCounts
	}
	return res
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decoding response: %w", err)
	}
	return v, nil
}
