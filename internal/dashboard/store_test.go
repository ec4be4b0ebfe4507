package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/phishing-dashboard/internal/domain"
	"github.com/ignite/phishing-dashboard/internal/entitystore"
)

// memStore is an in-memory entitystore.Store for tests.
type memStore struct {
	mu          sync.Mutex
	users       []domain.User
	departments []domain.Department
	logs        []domain.EmailLog

	listErr   error
	mutateErr error
	wipeErr   error
	wipeCalls int

	// gate, when set, blocks ListUsers until it is closed. entered is
	// signalled once a call is parked on the gate.
	gate    chan struct{}
	entered chan struct{}
}

var _ entitystore.Store = (*memStore)(nil)

var refNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func seededStore() *memStore {
	finance := domain.Department{ID: 1, Name: "Finance"}
	it := domain.Department{ID: 2, Name: "IT Department"}
	s := &memStore{
		departments: []domain.Department{finance, it},
		users: []domain.User{
			{ID: 10, Name: "Alice", Email: "alice@corp.io", DepartmentID: 1, Department: &finance},
			{ID: 11, Name: "Bob", Email: "bob@corp.io", DepartmentID: 1, Department: &finance},
			{ID: 20, Name: "Carol", Email: "carol@corp.io", DepartmentID: 2, Department: &it},
		},
	}
	sent := refNow.Add(-48 * time.Hour)
	for i := int64(1); i <= 10; i++ {
		userID := int64(10)
		if i > 4 {
			userID = 20
		}
		s.logs = append(s.logs, domain.EmailLog{
			ID: i, UserID: userID, Subject: "Verify", TemplateType: domain.TemplateUrgentAction,
			SentAt: sent, Clicked: i <= 3,
		})
	}
	return s
}

func (m *memStore) snapshotErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listErr
}

func (m *memStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	gate, entered := m.gate, m.entered
	m.mu.Unlock()
	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.snapshotErr(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.User(nil), m.users...), nil
}

func (m *memStore) ListDepartments(context.Context) ([]domain.Department, error) {
	if err := m.snapshotErr(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Department(nil), m.departments...), nil
}

func (m *memStore) ListEmailLogs(context.Context, domain.EmailLogFilter) ([]domain.EmailLog, error) {
	if err := m.snapshotErr(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.EmailLog(nil), m.logs...), nil
}

func (m *memStore) TrainingStats(context.Context) (*domain.TrainingStats, error) {
	if err := m.snapshotErr(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.TrainingStats{}
	stats.Overall.TotalUsers = len(m.users)
	for _, u := range m.users {
		if u.TrainingCompleted {
			stats.Overall.CompletedUsers++
		}
	}
	return stats, nil
}

func (m *memStore) setLog(id int64, fn func(*domain.EmailLog)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutateErr != nil {
		return m.mutateErr
	}
	for i := range m.logs {
		if m.logs[i].ID == id {
			fn(&m.logs[i])
			return nil
		}
	}
	return &entitystore.APIError{Status: 404, Detail: "Email log not found"}
}

func (m *memStore) SimulateClick(_ context.Context, id int64) error {
	return m.setLog(id, func(l *domain.EmailLog) { l.Clicked = true })
}

func (m *memStore) SimulateResponse(_ context.Context, id int64) error {
	return m.setLog(id, func(l *domain.EmailLog) { l.Responded = true })
}

func (m *memStore) completeWhere(match func(domain.User) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutateErr != nil {
		return m.mutateErr
	}
	for i := range m.users {
		if match(m.users[i]) {
			m.users[i].TrainingCompleted = true
		}
	}
	return nil
}

func (m *memStore) CompleteTraining(_ context.Context, id int64) error {
	return m.completeWhere(func(u domain.User) bool { return u.ID == id })
}

func (m *memStore) CompleteDepartmentTraining(_ context.Context, id int64) error {
	return m.completeWhere(func(u domain.User) bool { return u.DepartmentID == id })
}

func (m *memStore) CompleteAllTraining(context.Context) error {
	return m.completeWhere(func(domain.User) bool { return true })
}

func (m *memStore) WipeAllData(context.Context) (*domain.WipeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wipeCalls++
	if m.wipeErr != nil {
		return nil, m.wipeErr
	}
	res := &domain.WipeResult{
		Message: "All data wiped successfully",
		DeletedRecords: domain.DeletedRecords{
			Users: len(m.users), Departments: len(m.departments), EmailLogs: len(m.logs),
		},
	}
	m.users, m.departments, m.logs = nil, nil, nil
	return res, nil
}
