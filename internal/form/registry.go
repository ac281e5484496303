package form

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/archhub/internal/metrics"
)

var ErrSessionNotFound = errors.New("form session not found")

// DefaultSessionTTL is how long an untouched session is kept
const DefaultSessionTTL = 2 * time.Hour

// Registry holds the open form sessions. Idle sessions are pruned lazily.
type Registry struct {
	mu       sync.Mutex
	engine   *Engine
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates an empty registry for engine
func NewRegistry(engine *Engine, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		engine:   engine,
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Engine returns the engine sessions are created from
func (r *Registry) Engine() *Engine {
	return r.engine
}

// Open starts a new session for owner
func (r *Registry) Open(owner string, initial Values) *Session {
	s := r.engine.NewSession(uuid.NewString(), owner, initial)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.sessions[s.ID()] = s
	metrics.FormSessions.Set(float64(len(r.sessions)))
	return s
}

// Get returns an open session
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close forgets a session
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	metrics.FormSessions.Set(float64(len(r.sessions)))
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) pruneLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, s := range r.sessions {
		if s.lastTouched().Before(cutoff) {
			delete(r.sessions, id)
		}
	}
	metrics.FormSessions.Set(float64(len(r.sessions)))
}
