// Package postgres implements entitystore.Store directly over the
// simulation database, for deployments that read the tables instead of
// going through the backend API.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/ignite/phishing-dashboard/internal/config"
	"github.com/ignite/phishing-dashboard/internal/domain"
	"github.com/ignite/phishing-dashboard/internal/entitystore"
)

// Store implements entitystore.Store against PostgreSQL.
type Store struct{ db *sql.DB }

var _ entitystore.Store = (*Store)(nil)

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the handle for health checks and the advisory lock.
func (s *Store) DB() *sql.DB { return s.db }

// Open connects with the pool limits and statement timeout from cfg.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := withStatementTimeout(cfg.URL, cfg.StatementTimeoutMS)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns / 3)
	return db, nil
}

func withStatementTimeout(dsn string, ms int) string {
	if ms <= 0 || strings.Contains(dsn, "statement_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	opts := fmt.Sprintf("-c statement_timeout=%d", ms)
	return dsn + sep + "options=" + url.QueryEscape(opts)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, COALESCE(u.department_id, 0),
		       d.id, d.name, u.training_completed, u.training_completed_at
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u         domain.User
			deptID    sql.NullInt64
			deptName  sql.NullString
			completed sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.DepartmentID,
			&deptID, &deptName, &u.TrainingCompleted, &completed); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if deptID.Valid {
			u.Department = &domain.Department{ID: deptID.Int64, Name: deptName.String}
		}
		if completed.Valid {
			t := completed.Time.UTC()
			u.TrainingCompletedAt = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var depts []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

func (s *Store) ListEmailLogs(ctx context.Context, f domain.EmailLogFilter) ([]domain.EmailLog, error) {
	q := `
		SELECT l.id, l.user_id, COALESCE(u.name, ''), l.subject, COALESCE(l.template_type, ''),
		       l.sent_at, l.clicked, l.clicked_at, l.responded, l.responded_at
		FROM email_logs l
		LEFT JOIN users u ON u.id = l.user_id
		WHERE 1=1`
	var args []interface{}
	idx := 1
	if f.UserID != 0 {
		q += fmt.Sprintf(" AND l.user_id = $%d", idx)
		args = append(args, f.UserID)
		idx++
	}
	if f.DepartmentID != 0 {
		q += fmt.Sprintf(" AND u.department_id = $%d", idx)
		args = append(args, f.DepartmentID)
	}
	q += " ORDER BY l.id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.EmailLog
	for rows.Next() {
		var (
			l                  domain.EmailLog
			tmpl               string
			clicked, responded sql.NullTime
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserName, &l.Subject, &tmpl,
			&l.SentAt, &l.Clicked, &clicked, &l.Responded, &responded); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		l.TemplateType = domain.ParseTemplateType(tmpl)
		l.SentAt = l.SentAt.UTC()
		l.ClickedAt = nullTime(clicked)
		l.RespondedAt = nullTime(responded)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
