package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/phishing-dashboard/internal/dashboard"
	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
)

// streamKeepAlive is how often an idle stream gets a comment line so
// proxies keep it open.
var streamKeepAlive = 25 * time.Second

// Stream pushes dashboard events as Server-Sent Events. The current
// view-model is sent first so a new client never starts blank. Drill-down
// events reach only the session that drilled down.
//
//	GET /api/dashboard/stream
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	session := sessionID(w, r)
	events, unsubscribe := h.dashboard.Hub().Subscribe(32)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, dashboard.Event{Type: dashboard.EventViewModel, Data: h.dashboard.ViewModel()}); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.For(session) {
				continue
			}
			if err := writeEvent(w, ev); err != nil {
				logger.Debug("api: stream write failed", "error", err)
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev dashboard.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
