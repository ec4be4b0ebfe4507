package dashboard

import (
	"context"
	"time"

	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
)

// RefreshOnChange refreshes whenever a change signal arrives, coalescing
// bursts that land within quiet of each other into one cycle. It returns
// when ctx is done or changes is closed.
func (s *Service) RefreshOnChange(ctx context.Context, changes <-chan struct{}, quiet time.Duration) {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				if pending {
					s.refreshFromChange(ctx)
				}
				return
			}
			pending = true
			stop()
			timer = time.NewTimer(quiet)
			timerC = timer.C
		case <-timerC:
			pending = false
			timerC = nil
			s.refreshFromChange(ctx)
		}
	}
}

func (s *Service) refreshFromChange(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		logger.Debug("dashboard: change-triggered refresh failed", "error", err)
	}
}
