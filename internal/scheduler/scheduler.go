// Package scheduler drives live mode: while running it calls a refresh
// function on a fixed interval from a single ticker goroutine.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
)

// DefaultInterval is the live refresh period.
const DefaultInterval = 10 * time.Second

// RefreshFunc is the routine run on every tick. It is the same routine a
// manual refresh uses.
type RefreshFunc func(ctx context.Context) error

// Scheduler toggles between idle and live. The zero state is idle.
//
// Invariant: cancel != nil iff the scheduler is live, and at most one
// ticker goroutine exists.
type Scheduler struct {
	refresh     RefreshFunc
	interval    time.Duration
	tickTimeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool

	inflight  sync.WaitGroup
	busy      atomic.Bool
	loops     atomic.Int32
	ticks     atomic.Int64
	lastTick  atomic.Int64
	lastError atomic.Value
}

// New creates an idle scheduler. tickTimeout bounds each tick's refresh;
// zero leaves it unbounded.
func New(refresh RefreshFunc, interval, tickTimeout time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		refresh:     refresh,
		interval:    interval,
		tickTimeout: tickTimeout,
	}
}

// Start enters live mode. It is a no-op when already live or closed.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.closed {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	logger.Info("scheduler: live mode started", "interval", s.interval)
}

// Stop leaves live mode and waits for the ticker goroutine to exit. A
// refresh already in progress is allowed to finish. No-op when idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Info("scheduler: live mode stopped", "ticks", s.ticks.Load())
}

// Toggle flips between idle and live and returns whether it is now live.
func (s *Scheduler) Toggle() bool {
	if s.IsRunning() {
		s.Stop()
		return false
	}
	s.Start()
	return s.IsRunning()
}

// IsRunning reports whether live mode is on.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// LastTick returns when the most recent tick fired, or the zero time.
func (s *Scheduler) LastTick() time.Time {
	ns := s.lastTick.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// LastError returns the error from the most recent tick's refresh, if any.
func (s *Scheduler) LastError() error {
	if v, ok := s.lastError.Load().(errBox); ok {
		return v.err
	}
	return nil
}

// Close stops live mode, waits for in-flight tick refreshes and prevents
// further starts. Safe to call more than once.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Stop()
	s.inflight.Wait()
	return nil
}

type errBox struct{ err error }

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	s.loops.Add(1)
	defer func() {
		s.loops.Add(-1)
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs the refresh on its own goroutine under a context that is not
// tied to live mode, so stopping never aborts a cycle halfway. A tick that
// lands while the previous one is still running is skipped.
func (s *Scheduler) tick() {
	s.ticks.Add(1)
	s.lastTick.Store(time.Now().UnixNano())

	if !s.busy.CompareAndSwap(false, true) {
		logger.Debug("scheduler: previous refresh still running, skipping tick")
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.busy.Store(false)

		ctx := context.Background()
		if s.tickTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.tickTimeout)
			defer cancel()
		}
		err := s.refresh(ctx)
		s.lastError.Store(errBox{err})
		if err != nil {
			logger.Warn("scheduler: tick refresh failed", "error", err)
		}
	}()
}
