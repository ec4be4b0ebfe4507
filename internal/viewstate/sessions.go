package viewstate

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 24 * time.Hour

type entry struct {
	state    State
	lastSeen time.Time
}

// Sessions keeps one State per browser session in memory.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*entry
	ttl  time.Duration
	now  func() time.Time
}

// NewSessions creates an empty session table.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{byID: map[string]*entry{}, ttl: ttl, now: time.Now}
}

// NewID returns a fresh session identifier.
func NewID() string { return uuid.NewString() }

// Get returns the state for id, or Initial when the session is unknown
// or expired.
func (s *Sessions) Get(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok || s.now().Sub(e.lastSeen) > s.ttl {
		return Initial()
	}
	e.lastSeen = s.now()
	return e.state
}

// Put stores st for id and expires stale sessions.
func (s *Sessions) Put(id string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.byID[id] = &entry{state: st, lastSeen: now}
	for k, e := range s.byID {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.byID, k)
		}
	}
}

// Update applies fn to the current state for id and stores the result.
func (s *Sessions) Update(id string, fn func(State) State) State {
	next := fn(s.Get(id))
	s.Put(id, next)
	return next
}

// Len returns the number of tracked sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
