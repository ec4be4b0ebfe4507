package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies a notification for display.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindInfo    NotificationKind = "info"
	KindError   NotificationKind = "error"
)

// Notification is a transient user-visible message.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Detail    string           `json:"detail,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// feed is a bounded ring of notifications, newest last.
type feed struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

func newFeed(limit int) *feed {
	if limit <= 0 {
		limit = 50
	}
	return &feed{limit: limit}
}

func (f *feed) push(n Notification) Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
	return n
}

// newest returns up to limit notifications, newest first.
func (f *feed) newest(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 || limit > len(f.items) {
		limit = len(f.items)
	}
	out := make([]Notification, 0, limit)
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.items[i])
	}
	return out
}
