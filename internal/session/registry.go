// Package session tracks which portal sessions are logged in and as what.
//
// The registry is process memory only. Whether a missing entry may be
// re-derived from a stored token is decided by the Resolver.
package session

import (
	"sync"
	"time"

	"school-portal/internal/model"
)

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: map[string]model.Session{},
		now:      time.Now,
	}
}

func (r *Registry) Get(id string) (model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok || !s.IsLoggedIn {
		return model.Session{ID: id}, false
	}
	return s, true
}

// Start flips the session to logged-in for role, replacing any previous state.
func (r *Registry) Start(id string, role model.Role, restored bool) model.Session {
	s := model.Session{
		ID:         id,
		IsLoggedIn: true,
		UserType:   role,
		StartedAt:  r.now().UTC(),
		Restored:   restored,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s
}

// End returns the session to logged-out. It reports whether an entry existed.
func (r *Registry) End(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
