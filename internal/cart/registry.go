package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one customer's cart bound to the table they scanned.
type Session struct {
	ID          uuid.UUID `json:"id"`
	TableNumber int       `json:"table_number"`
	Cart        *Cart     `json:"-"`

	lastSeen time.Time
}

// Registry keeps open cart sessions in memory. Sessions idle longer than the
// sweep TTL are dropped; nothing here is ever persisted.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		now:      time.Now,
	}
}

func (r *Registry) Open(tableNumber int) *Session {
	s := &Session{
		ID:          uuid.New(),
		TableNumber: tableNumber,
		Cart:        New(),
	}

	r.mu.Lock()
	s.lastSeen = r.now()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session and marks it as recently used.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

func (r *Registry) Close(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Sweep removes sessions idle for longer than ttl and returns how many went.
func (r *Registry) Sweep(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-ttl)
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
