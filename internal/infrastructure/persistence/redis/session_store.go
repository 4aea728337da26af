package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

type sessionValue struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore implements account.SessionStore on top of Cache.
// Expiry is delegated to the Redis key TTL.
type SessionStore struct {
	cache *Cache
	now   func() time.Time
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(cache *Cache) *SessionStore {
	return &SessionStore{cache: cache, now: time.Now}
}

// Create issues a random token for username.
func (s *SessionStore) Create(ctx context.Context, username shared.Username, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	v := sessionValue{Username: username.String(), CreatedAt: s.now().UTC()}
	if err := s.cache.Set(ctx, SessionKey(token), v, ttl); err != nil {
		return "", shared.WrapError("session", "Create", shared.ErrServiceUnavailable, "store session", err)
	}
	return token, nil
}

// Resolve returns the owner of token.
func (s *SessionStore) Resolve(ctx context.Context, token string) (shared.Username, error) {
	if token == "" {
		return "", shared.ErrSessionNotFound
	}
	var v sessionValue
	if err := s.cache.Get(ctx, SessionKey(token), &v); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return "", shared.ErrSessionNotFound
		}
		return "", shared.WrapError("session", "Resolve", shared.ErrServiceUnavailable, "load session", err)
	}
	return shared.Username(v.Username), nil
}

// Delete revokes token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(ctx, SessionKey(token))
}
