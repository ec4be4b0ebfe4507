package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/phishing-dashboard/internal/analytics"
	"github.com/ignite/phishing-dashboard/internal/domain"
	"github.com/ignite/phishing-dashboard/internal/entitystore"
	"github.com/ignite/phishing-dashboard/internal/metrics"
	"github.com/ignite/phishing-dashboard/internal/pkg/distlock"
)

func newTestService(t *testing.T, store *memStore) *Service {
	t.Helper()
	svc := New(store, Options{
		TrendDepartment: "IT Department",
		LiveInterval:    time.Hour,
		Now:             func() time.Time { return refNow },
		Locks:           func(key string) distlock.DistLock { return distlock.NewLocalLock(t.Name() + key) },
	})
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestViewModelBeforeFirstRefreshIsEmpty(t *testing.T) {
	svc := newTestService(t, seededStore())

	vm := svc.ViewModel()
	assert.Equal(t, analytics.SummaryStats{}, vm.Summary)
	assert.Len(t, vm.TimeSeries, analytics.TrendWindows)
	assert.Empty(t, vm.DepartmentRisk)
	assert.False(t, vm.IsLive)
	assert.Zero(t, vm.Generation)
}

func TestRefreshBuildsViewModel(t *testing.T) {
	svc := newTestService(t, seededStore())

	require.NoError(t, svc.Refresh(context.Background()))

	vm := svc.ViewModel()
	assert.Equal(t, uint64(1), vm.Generation)
	assert.Equal(t, 10, vm.Summary.EmailCount)
	assert.Equal(t, 3, vm.Summary.ClickCount)
	assert.Equal(t, "30.0", vm.ClickRateLabel)
	assert.Equal(t, refNow, vm.LastUpdate)
	require.Len(t, vm.DepartmentRisk, 2)
	assert.Equal(t, "Finance", vm.DepartmentRisk[0].Department)
}

func TestRefreshIsIdempotentOnUnchangedData(t *testing.T) {
	svc := newTestService(t, seededStore())

	require.NoError(t, svc.Refresh(context.Background()))
	first := svc.ViewModel()
	require.NoError(t, svc.Refresh(context.Background()))
	second := svc.ViewModel()

	first.Generation, second.Generation = 0, 0
	assert.Equal(t, first, second)
}

func TestFetchFailureKeepsPreviousViewModel(t *testing.T) {
	store := seededStore()
	svc := newTestService(t, store)
	require.NoError(t, svc.Refresh(context.Background()))
	before := svc.ViewModel()

	store.mu.Lock()
	store.listErr = errors.New("connection refused")
	store.mu.Unlock()

	err := svc.Refresh(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, uint64(2), ferr.Generation)

	assert.Equal(t, before, svc.ViewModel())
	notes := svc.Notifications(1)
	require.Len(t, notes, 1)
	assert.Equal(t, KindError, notes[0].Kind)
	assert.Equal(t, "Failed to fetch data", notes[0].Message)
}

func TestSupersededRefreshIsDiscarded(t *testing.T) {
	store := seededStore()
	svc := newTestService(t, store)

	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	store.mu.Lock()
	store.gate, store.entered = gate, entered
	store.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- svc.Refresh(context.Background()) }()
	<-entered

	store.mu.Lock()
	store.gate, store.entered = nil, nil
	store.logs = store.logs[:5]
	store.mu.Unlock()

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, uint64(2), svc.ViewModel().Generation)

	close(gate)
	require.NoError(t, <-slow)

	vm := svc.ViewModel()
	assert.Equal(t, uint64(2), vm.Generation)
	assert.Equal(t, 5, vm.Summary.EmailCount)
}

func TestSelectDepartment(t *testing.T) {
	svc := newTestService(t, seededStore())
	require.NoError(t, svc.Refresh(context.Background()))

	view, err := svc.SelectDepartment("s1", "Finance")
	require.NoError(t, err)
	require.Len(t, view.Users, 2)
	for _, u := range view.Users {
		assert.Equal(t, "Finance", u.Department)
	}
	assert.Len(t, view.Emails, 4)
	for _, e := range view.Emails {
		assert.Equal(t, int64(10), e.UserID)
	}

	dept, ok := svc.DrillDownDepartment("s1")
	assert.True(t, ok)
	assert.Equal(t, "Finance", dept)
	_, ok = svc.DrillDownDepartment("s2")
	assert.False(t, ok)

	svc.ExitDrillDown("s1")
	_, ok = svc.DrillDownDepartment("s1")
	assert.False(t, ok)

	_, err = svc.SelectDepartment("s1", "Marketing")
	assert.ErrorIs(t, err, ErrUnknownDepartment)
	_, ok = svc.DrillDownDepartment("s1")
	assert.False(t, ok)
}

func TestToggleLive(t *testing.T) {
	svc := newTestService(t, seededStore())

	assert.True(t, svc.ToggleLive())
	assert.True(t, svc.ViewModel().IsLive)
	assert.False(t, svc.ToggleLive())
	assert.False(t, svc.ViewModel().IsLive)
}

func TestMutationRefreshesAfterConfirmation(t *testing.T) {
	svc := newTestService(t, seededStore())
	require.NoError(t, svc.Refresh(context.Background()))

	require.NoError(t, svc.SimulateClick(context.Background(), 9))
	assert.Equal(t, 4, svc.ViewModel().Summary.ClickCount)

	notes := svc.Notifications(0)
	require.NotEmpty(t, notes)
	assert.Equal(t, KindSuccess, notes[0].Kind)
}

func TestMutationFailureUsesServerDetail(t *testing.T) {
	store := seededStore()
	svc := newTestService(t, store)
	require.NoError(t, svc.Refresh(context.Background()))
	before := svc.ViewModel()

	err := svc.SimulateClick(context.Background(), 999)
	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 404, merr.Status)
	assert.Equal(t, "Email log not found", merr.DetailString())
	assert.True(t, errors.Is(err, entitystore.ErrNotFound))
	assert.Equal(t, before, svc.ViewModel())

	store.mu.Lock()
	store.mutateErr = errors.New("dial tcp: timeout")
	store.mu.Unlock()
	err = svc.CompleteAllTraining(context.Background())
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "Failed to complete all training", merr.DetailString())
	assert.Equal(t, "Failed to complete all training", svc.Notifications(1)[0].Message)
}

func TestMutationNotFoundWithoutStatusMapsTo404(t *testing.T) {
	store := seededStore()
	svc := newTestService(t, store)

	store.mu.Lock()
	store.mutateErr = fmt.Errorf("complete training: %w", entitystore.ErrNotFound)
	store.mu.Unlock()

	err := svc.CompleteTraining(context.Background(), 42)
	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 404, merr.Status)
	assert.Equal(t, "Failed to complete training", merr.DetailString())
}

func TestTrainingMutations(t *testing.T) {
	store := seededStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.CompleteTraining(ctx, 10))
	require.NoError(t, svc.CompleteDepartmentTraining(ctx, 2))
	assert.Equal(t, 2, svc.ViewModel().Training.Overall.CompletedUsers)

	require.NoError(t, svc.CompleteAllTraining(ctx))
	assert.Equal(t, 3, svc.ViewModel().Training.Overall.CompletedUsers)
}

func TestConfirmWipeZeroesNextCycle(t *testing.T) {
	store := &memStore{}
	for i := int64(1); i <= 2; i++ {
		store.departments = append(store.departments, domain.Department{ID: i, Name: fmt.Sprintf("Dept %d", i)})
	}
	for i := int64(1); i <= 5; i++ {
		store.users = append(store.users, domain.User{ID: i, Name: fmt.Sprintf("User %d", i), DepartmentID: 1 + i%2})
	}
	for i := int64(1); i <= 40; i++ {
		store.logs = append(store.logs, domain.EmailLog{ID: i, UserID: 1 + i%5, SentAt: refNow.Add(-time.Hour), Clicked: i%4 == 0})
	}
	svc := newTestService(t, store)
	require.NoError(t, svc.Refresh(context.Background()))
	_, err := svc.SelectDepartment("s1", "Dept 1")
	require.NoError(t, err)

	out, err := svc.ConfirmWipe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "All data wiped successfully", out.Message)
	assert.Equal(t, domain.DeletedRecords{Users: 5, Departments: 2, EmailLogs: 40}, out.Details)

	vm := svc.ViewModel()
	assert.Equal(t, analytics.SummaryStats{}, vm.Summary)
	assert.Empty(t, vm.DepartmentRisk)
	_, drilling := svc.DrillDownDepartment("s1")
	assert.False(t, drilling)
}

func TestConfirmWipeFailureRendersNestedDetail(t *testing.T) {
	store := seededStore()
	store.wipeErr = &entitystore.APIError{Status: 500, Detail: map[string]any{"message": "Error wiping data: deadlock"}}
	svc := newTestService(t, store)
	require.NoError(t, svc.Refresh(context.Background()))

	_, err := svc.ConfirmWipe(context.Background())
	var werr *WipeError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "Error wiping data: deadlock", werr.DetailString())
	assert.Equal(t, 10, svc.ViewModel().Summary.EmailCount)

	store.mu.Lock()
	store.wipeErr = &entitystore.APIError{Status: 500, Detail: "Error wiping data: disk full"}
	store.mu.Unlock()
	_, err = svc.ConfirmWipe(context.Background())
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "Error wiping data: disk full", werr.DetailString())
}

func TestConfirmWipeRejectsConcurrentWipe(t *testing.T) {
	store := seededStore()
	svc := newTestService(t, store)

	held := distlock.NewLocalLock(t.Name() + WipeLockKey)
	ok, err := held.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Release(context.Background())

	_, err = svc.ConfirmWipe(context.Background())
	assert.ErrorIs(t, err, ErrWipeInProgress)
	assert.Zero(t, store.wipeCalls)
}

func TestRefreshPublishesViewModel(t *testing.T) {
	svc := newTestService(t, seededStore())
	events, cancel := svc.Hub().Subscribe(8)
	defer cancel()

	require.NoError(t, svc.Refresh(context.Background()))

	select {
	case ev := <-events:
		assert.Equal(t, EventViewModel, ev.Type)
		vm, ok := ev.Data.(analytics.ViewModel)
		require.True(t, ok)
		assert.Equal(t, 10, vm.Summary.EmailCount)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestRefreshPublishesDrillDownPerSession(t *testing.T) {
	svc := newTestService(t, seededStore())
	require.NoError(t, svc.Refresh(context.Background()))
	_, err := svc.SelectDepartment("s1", "Finance")
	require.NoError(t, err)
	_, err = svc.SelectDepartment("s2", "IT Department")
	require.NoError(t, err)
	svc.ExitDrillDown("s2")

	events, cancel := svc.Hub().Subscribe(8)
	defer cancel()
	require.NoError(t, svc.Refresh(context.Background()))

	var drills []Event
	timeout := time.After(time.Second)
	for len(drills) == 0 {
		select {
		case ev := <-events:
			if ev.Type == EventDrillDown {
				drills = append(drills, ev)
			}
		case <-timeout:
			t.Fatal("no drill-down event published")
		}
	}
	assert.Equal(t, "s1", drills[0].Session)
	assert.True(t, drills[0].For("s1"))
	assert.False(t, drills[0].For("s2"))
	view, ok := drills[0].Data.(analytics.DrillDownView)
	require.True(t, ok)
	assert.Equal(t, "Finance", view.Department)

	select {
	case ev := <-events:
		assert.NotEqual(t, EventDrillDown, ev.Type, "exited session still receives drill-down")
	default:
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	svc := newTestService(t, seededStore())
	svc.StartLive()
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
	assert.False(t, svc.IsLive())
	assert.ErrorIs(t, svc.Refresh(context.Background()), ErrClosed)
}

func TestRefreshOnChangeCoalescesBursts(t *testing.T) {
	svc := newTestService(t, seededStore())
	changes := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		svc.RefreshOnChange(ctx, changes, 20*time.Millisecond)
		close(done)
	}()

	changes <- struct{}{}
	changes <- struct{}{}
	changes <- struct{}{}

	require.Eventually(t, func() bool { return svc.ViewModel().Generation == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, uint64(1), svc.ViewModel().Generation)

	cancel()
	<-done
}

func TestServiceRecordsMetrics(t *testing.T) {
	store := seededStore()
	m := metrics.NewCollector("test")
	svc := New(store, Options{
		LiveInterval: time.Hour,
		Now:          func() time.Time { return refNow },
		Metrics:      m,
		Locks:        func(key string) distlock.DistLock { return distlock.NewLocalLock(t.Name() + key) },
	})
	t.Cleanup(func() { svc.Close() })

	require.NoError(t, svc.Refresh(context.Background()))
	store.mu.Lock()
	store.listErr = errors.New("connection refused")
	store.mu.Unlock()
	require.Error(t, svc.Refresh(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.RefreshSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.RefreshFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generation))

	svc.ToggleLive()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveMode))

	store.mu.Lock()
	store.listErr = nil
	store.mu.Unlock()
	_, err := svc.ConfirmWipe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WipesTotal.WithLabelValues(metrics.WipeSuccess)))

	require.NoError(t, svc.Close())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LiveMode))
}
