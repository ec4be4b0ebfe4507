package dashboard

import (
	"sync"

	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
)

// EventType names what an Event carries.
type EventType string

const (
	EventViewModel    EventType = "view_model"
	EventDrillDown    EventType = "drill_down"
	EventNotification EventType = "notification"
	EventLive         EventType = "live"
)

// Event is pushed to stream subscribers. Session is set on events meant for
// one presentation session only.
type Event struct {
	Type    EventType `json:"type"`
	Session string    `json:"-"`
	Data    any       `json:"data"`
}

// For reports whether a subscriber in session should receive ev.
func (ev Event) For(session string) bool {
	return ev.Session == "" || ev.Session == session
}

// Hub fans events out to subscribers. Slow subscribers miss events rather
// than block publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a subscriber. Call the returned func to unsubscribe;
// the channel is closed afterwards.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev to every subscriber with room in its buffer.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			logger.Debug("dashboard: dropping event for slow subscriber", "type", ev.Type)
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
