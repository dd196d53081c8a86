package eclipse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown to the store.
var ErrSessionNotFound = errors.New("eclipse: session not found")

// DefaultSessionTTL is how long a session survives without being read.
const DefaultSessionTTL = 30 * time.Minute

// StoreOption customizes the in-memory store.
type StoreOption func(*InMemorySessionStore)

// WithSessionTTL sets the idle lifetime of a session. Non-positive values keep the default.
func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *InMemorySessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithStoreClock replaces the clock used for expiry.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *InMemorySessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// InMemorySessionStore keeps sessions while they are in use. A session not
// read for longer than the TTL is gone, like a closed browser tab.
type InMemorySessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	data      map[string]*storedSession
	lastSweep time.Time
}

type storedSession struct {
	session  *Session
	lastSeen time.Time
}

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore(options ...StoreOption) *InMemorySessionStore {
	s := &InMemorySessionStore{
		ttl:  DefaultSessionTTL,
		now:  time.Now,
		data: make(map[string]*storedSession),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Save registers a session under its id and sweeps expired sessions.
func (s *InMemorySessionStore) Save(_ context.Context, session *Session) error {
	if session == nil || session.ID() == "" {
		return fmt.Errorf("session store requires a session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.data[session.ID()] = &storedSession{session: session, lastSeen: now}
	return nil
}

// Get returns the live session for id and refreshes its idle timer.
func (s *InMemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	stored, ok := s.data[id]
	if ok && s.expired(stored, now) {
		delete(s.data, id)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	stored.lastSeen = now
	return stored.session, nil
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *InMemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Sweep removes every expired session and returns how many were dropped.
func (s *InMemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.data)
	s.lastSweep = time.Time{}
	s.sweep(s.now())
	return before - len(s.data)
}

func (s *InMemorySessionStore) expired(stored *storedSession, now time.Time) bool {
	return now.Sub(stored.lastSeen) > s.ttl
}

// sweep runs at most once per TTL/2. Callers hold mu.
func (s *InMemorySessionStore) sweep(now time.Time) {
	if !s.lastSweep.IsZero() && now.Sub(s.lastSweep) < s.ttl/2 {
		return
	}
	s.lastSweep = now
	for id, stored := range s.data {
		if s.expired(stored, now) {
			delete(s.data, id)
		}
	}
}
