// Package dashboard owns the refresh cycle: it reads a snapshot from the
// entity store, rebuilds the analytics view-model, keeps the last good one,
// runs live mode and relays mutations and the data wipe.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignite/phishing-dashboard/internal/analytics"
	"github.com/ignite/phishing-dashboard/internal/domain"
	"github.com/ignite/phishing-dashboard/internal/entitystore"
	"github.com/ignite/phishing-dashboard/internal/metrics"
	"github.com/ignite/phishing-dashboard/internal/pkg/distlock"
	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
	"github.com/ignite/phishing-dashboard/internal/scheduler"
)

// WipeLockKey names the lock that serializes wipes across replicas.
const WipeLockKey = "phishing-dashboard:wipe"

// LockFactory returns a fresh lock instance for key.
type LockFactory func(key string) distlock.DistLock

// Options configure a Service.
type Options struct {
	TrendDepartment   string
	LiveInterval      time.Duration
	RefreshTimeout    time.Duration
	NotificationLimit int
	Locks             LockFactory
	Metrics           *metrics.Collector
	Now               func() time.Time
}

// WipeOutcome is what a confirmed wipe reports back to the caller.
type WipeOutcome struct {
	Message string                `json:"message"`
	Details domain.DeletedRecords `json:"details"`
}

// Service is safe for concurrent use.
type Service struct {
	store          entitystore.Store
	analytics      analytics.Options
	refreshTimeout time.Duration
	locks          LockFactory
	metrics        *metrics.Collector
	now            func() time.Time

	sched *scheduler.Scheduler
	feed  *feed
	hub   *Hub

	mu       sync.RWMutex
	vm       analytics.ViewModel
	snapshot analytics.Snapshot
	applied  uint64
	issued   uint64
	drills   map[string]string // session ID -> department
	closed   bool
}

// New creates an idle service holding the all-zero view-model.
func New(store entitystore.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locks == nil {
		opts.Locks = func(key string) distlock.DistLock { return distlock.NewLocalLock(key) }
	}
	s := &Service{
		store:          store,
		analytics:      analytics.Options{TrendDepartment: opts.TrendDepartment},
		refreshTimeout: opts.RefreshTimeout,
		locks:          opts.Locks,
		metrics:        opts.Metrics,
		now:            opts.Now,
		feed:           newFeed(opts.NotificationLimit),
		hub:            NewHub(),
		drills:         make(map[string]string),
	}
	s.vm = analytics.Empty(s.now(), s.analytics)
	s.sched = scheduler.New(s.Refresh, opts.LiveInterval, opts.RefreshTimeout)
	return s
}

// Hub returns the event hub stream handlers subscribe to.
func (s *Service) Hub() *Hub { return s.hub }

// Refresh runs one cycle: the four reads run concurrently and all must
// succeed. On failure the previous view-model is kept and a notification is
// raised; there is no retry. A successful result is applied only if no
// later-issued cycle has already been applied.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.issued++
	gen := s.issued
	s.mu.Unlock()

	cycleID := uuid.NewString()
	started := time.Now()
	if s.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.refreshTimeout)
		defer cancel()
	}

	snap, err := s.fetch(ctx)
	if err != nil {
		ferr := &FetchError{Generation: gen, Err: err}
		logger.Warn("dashboard: refresh failed", "cycle", cycleID, "generation", gen, "error", err)
		s.metrics.ObserveRefresh(metrics.RefreshFailed, time.Since(started))
		s.notify(KindError, "Failed to fetch data", err.Error())
		return ferr
	}

	vm := analytics.Build(snap, s.now(), s.analytics)
	vm.Generation = gen

	s.mu.Lock()
	if gen <= s.applied {
		applied := s.applied
		s.mu.Unlock()
		logger.Info("dashboard: discarding superseded refresh", "cycle", cycleID, "generation", gen, "applied", applied)
		s.metrics.ObserveRefresh(metrics.RefreshSuperseded, time.Since(started))
		return nil
	}
	s.applied = gen
	s.vm = vm
	s.snapshot = snap
	drills := make(map[string]string, len(s.drills))
	for session, dept := range s.drills {
		drills[session] = dept
	}
	s.mu.Unlock()

	s.metrics.ObserveRefresh(metrics.RefreshSuccess, time.Since(started))
	s.metrics.SetGeneration(gen)
	logger.Debug("dashboard: refresh applied", "cycle", cycleID, "generation", gen,
		"users", len(snap.Users), "emails", len(snap.EmailLogs))

	s.hub.Publish(Event{Type: EventViewModel, Data: s.ViewModel()})
	for session, dept := range drills {
		view, err := s.drillDown(dept)
		if err != nil {
			// Department gone from the data; the session keeps its state
			// and sees no drill-down update until it exits.
			continue
		}
		s.hub.Publish(Event{Type: EventDrillDown, Session: session, Data: view})
	}
	return nil
}

func (s *Service) fetch(ctx context.Context) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.store.ListUsers(gctx)
		snap.Users = users
		return err
	})
	g.Go(func() error {
		depts, err := s.store.ListDepartments(gctx)
		snap.Departments = depts
		return err
	})
	g.Go(func() error {
		logs, err := s.store.ListEmailLogs(gctx, domain.EmailLogFilter{})
		snap.EmailLogs = logs
		return err
	})
	g.Go(func() error {
		stats, err := s.store.TrainingStats(gctx)
		snap.Training = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.Snapshot{}, err
	}
	return snap, nil
}

// RefreshNow is a manual refresh; it reports the cycle's outcome.
func (s *Service) RefreshNow(ctx context.Context) error {
	return s.Refresh(ctx)
}

// ViewModel returns the last successfully built view-model.
func (s *Service) ViewModel() analytics.ViewModel {
	s.mu.RLock()
	vm := s.vm
	s.mu.RUnlock()
	vm.IsLive = s.sched.IsRunning()
	return vm
}

// SelectDepartment enters drill-down for name on behalf of session, using
// the latest snapshot. Later refreshes publish the session's drill-down view
// until it exits.
func (s *Service) SelectDepartment(session, name string) (analytics.DrillDownView, error) {
	view, err := s.drillDown(name)
	if err != nil {
		return analytics.DrillDownView{}, err
	}
	s.mu.Lock()
	s.drills[session] = name
	s.mu.Unlock()
	return view, nil
}

func (s *Service) drillDown(name string) (analytics.DrillDownView, error) {
	s.mu.RLock()
	snap, rows := s.snapshot, s.vm.UserClicks
	s.mu.RUnlock()

	if !hasDepartment(snap, rows, name) {
		return analytics.DrillDownView{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, name)
	}
	return analytics.DrillDown(name, rows, snap.Users, snap.Departments, snap.EmailLogs), nil
}

func hasDepartment(snap analytics.Snapshot, rows []analytics.UserClickSummary, name string) bool {
	for _, d := range snap.Departments {
		if d.Name == name {
			return true
		}
	}
	for _, r := range rows {
		if r.Department == name {
			return true
		}
	}
	return false
}

// DrillDownDepartment returns the department session is drilled into.
func (s *Service) DrillDownDepartment(session string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dept, ok := s.drills[session]
	return dept, ok
}

// ExitDrillDown returns session to the overview.
func (s *Service) ExitDrillDown(session string) {
	s.mu.Lock()
	delete(s.drills, session)
	s.mu.Unlock()
}

// ToggleLive flips live mode and returns whether it is now on.
func (s *Service) ToggleLive() bool {
	live := s.sched.Toggle()
	s.metrics.SetLive(live)
	if live {
		s.notify(KindInfo, "Live mode enabled", "")
	} else {
		s.notify(KindInfo, "Live mode disabled", "")
	}
	s.hub.Publish(Event{Type: EventLive, Data: map[string]bool{"is_live": live}})
	return live
}

// StartLive turns live mode on if it is off.
func (s *Service) StartLive() {
	s.sched.Start()
	s.metrics.SetLive(true)
}

// IsLive reports whether live mode is on.
func (s *Service) IsLive() bool { return s.sched.IsRunning() }

// Notifications returns up to limit notifications, newest first.
func (s *Service) Notifications(limit int) []Notification {
	return s.feed.newest(limit)
}

func (s *Service) notify(kind NotificationKind, msg, detail string) {
	n := s.feed.push(Notification{Kind: kind, Message: msg, Detail: detail, CreatedAt: s.now()})
	s.hub.Publish(Event{Type: EventNotification, Data: n})
}

// SimulateClick records a click on an email log.
func (s *Service) SimulateClick(ctx context.Context, logID int64) error {
	return s.mutate(ctx, "simulate click", "Click simulated successfully", func(ctx context.Context) error {
		return s.store.SimulateClick(ctx, logID)
	})
}

// SimulateResponse records a response to an email log.
func (s *Service) SimulateResponse(ctx context.Context, logID int64) error {
	return s.mutate(ctx, "simulate response", "Response simulated successfully", func(ctx context.Context) error {
		return s.store.SimulateResponse(ctx, logID)
	})
}

func (s *Service) CompleteTraining(ctx context.Context, userID int64) error {
	return s.mutate(ctx, "complete training", "Training marked complete", func(ctx context.Context) error {
		return s.store.CompleteTraining(ctx, userID)
	})
}

func (s *Service) CompleteDepartmentTraining(ctx context.Context, departmentID int64) error {
	return s.mutate(ctx, "complete department training", "Department training marked complete", func(ctx context.Context) error {
		return s.store.CompleteDepartmentTraining(ctx, departmentID)
	})
}

func (s *Service) CompleteAllTraining(ctx context.Context) error {
	return s.mutate(ctx, "complete all training", "Training marked complete for all users", func(ctx context.Context) error {
		return s.store.CompleteAllTraining(ctx)
	})
}

// mutate runs fn and, once the store confirms, refreshes so the change
// shows up. Nothing is changed locally before confirmation.
func (s *Service) mutate(ctx context.Context, op, success string, fn func(context.Context) error) error {
	err := fn(ctx)
	s.metrics.ObserveMutation(op, err)
	if err != nil {
		status, detail := apiDetail(err)
		merr := &MutationError{Op: op, Status: status, Detail: detail, Err: err}
		logger.Warn("dashboard: mutation failed", "op", op, "status", status, "error", err)
		s.notify(KindError, merr.DetailString(), "")
		return merr
	}
	s.notify(KindSuccess, success, "")
	s.refreshAfter(ctx, op)
	return nil
}

// refreshAfter refreshes following a successful write. A failed refresh
// has already raised its own notification.
func (s *Service) refreshAfter(ctx context.Context, op string) {
	if err := s.Refresh(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, ErrClosed) {
		logger.Debug("dashboard: refresh after mutation failed", "op", op, "error", err)
	}
}

// ConfirmWipe deletes all simulation data. Only one wipe runs at a time
// across replicas; on success the dashboard refreshes to the empty state.
func (s *Service) ConfirmWipe(ctx context.Context) (WipeOutcome, error) {
	lock := s.locks(WipeLockKey)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		s.metrics.ObserveWipe(metrics.WipeFailed)
		werr := &WipeError{Err: fmt.Errorf("acquire wipe lock: %w", err)}
		s.notify(KindError, werr.DetailString(), "")
		return WipeOutcome{}, werr
	}
	if !ok {
		s.metrics.ObserveWipe(metrics.WipeContended)
		s.notify(KindError, "A data wipe is already in progress", "")
		return WipeOutcome{}, ErrWipeInProgress
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("dashboard: releasing wipe lock", "error", err)
		}
	}()

	res, err := s.store.WipeAllData(ctx)
	if err != nil {
		status, detail := apiDetail(err)
		werr := &WipeError{Status: status, Detail: detail, Err: err}
		logger.Error("dashboard: wipe failed", "status", status, "error", err)
		s.metrics.ObserveWipe(metrics.WipeFailed)
		s.notify(KindError, werr.DetailString(), "")
		return WipeOutcome{}, werr
	}

	s.metrics.ObserveWipe(metrics.WipeSuccess)
	out := WipeOutcome{Message: res.Message, Details: res.DeletedRecords}
	if out.Message == "" {
		out.Message = "All data wiped successfully"
	}
	logger.Info("dashboard: data wiped", "users", out.Details.Users,
		"departments", out.Details.Departments, "email_logs", out.Details.EmailLogs)
	s.notify(KindSuccess, out.Message, fmt.Sprintf("Deleted %d users, %d departments, %d email logs",
		out.Details.Users, out.Details.Departments, out.Details.EmailLogs))

	s.mu.Lock()
	s.drills = make(map[string]string)
	s.mu.Unlock()
	s.refreshAfter(ctx, "wipe")
	return out, nil
}

// Close stops live mode, waits for in-flight ticks and disconnects stream
// subscribers. Safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	err := s.sched.Close()
	s.metrics.SetLive(false)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.hub.Close()
	return err
}
