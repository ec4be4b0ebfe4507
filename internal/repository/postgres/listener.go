package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
)

// ChangeChannel is the NOTIFY channel the simulation tables' triggers use.
const ChangeChannel = "simulation_changes"

// ListenForChanges subscribes to ChangeChannel and emits one signal per
// notification until ctx is done. Signals are dropped while the consumer is
// busy; one pending signal is enough to trigger a refresh.
func ListenForChanges(ctx context.Context, connStr string) (<-chan struct{}, error) {
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("postgres: change listener problem", "event", int(ev), "error", err)
		}
	}
	listener := pq.NewListener(connStr, 10*time.Second, time.Minute, report)
	if err := listener.Listen(ChangeChannel); err != nil {
		listener.Close()
		return nil, err
	}
	logger.Info("postgres: listening for changes", "channel", ChangeChannel)

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer listener.Close()
		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-listener.Notify:
				// A nil notification follows a reconnect; treat it as a change too.
				select {
				case out <- struct{}{}:
				default:
				}
			case <-ping.C:
				go listener.Ping()
			}
		}
	}()
	return out, nil
}
