package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

type session struct {
	username  shared.Username
	expiresAt time.Time
}

// SessionStore implements account.SessionStore without Redis.
// Expired tokens are dropped lazily on lookup and by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
	now      func() time.Time
}

// NewSessionStore creates a store that reads time from now (time.Now when nil).
func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{sessions: make(map[string]session), now: now}
}

func (s *SessionStore) Create(_ context.Context, username shared.Username, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	s.sessions[token] = session{username: username, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()

	return token, nil
}

func (s *SessionStore) Resolve(_ context.Context, token string) (shared.Username, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return "", shared.ErrSessionNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return "", shared.ErrSessionNotFound
	}
	return sess.username, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}
