package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// Credential checks and opaque server-side sessions.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Account   *account.Account `json:"account"`
}

// AuthHandler authenticates users and manages their sessions.
type AuthHandler struct {
	core
	hasher   account.PasswordHasher
	sessions account.SessionStore
	ttl      time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(deps Deps, hasher account.PasswordHasher, sessions account.SessionStore, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthHandler{core: newCore(deps), hasher: hasher, sessions: sessions, ttl: ttl}
}

// Authenticate reports whether the credentials match. Unknown users are
// compared against an empty hash so both failures take the same path.
func (h *AuthHandler) Authenticate(ctx context.Context, username, password string) bool {
	_, err := h.verify(ctx, username, password)
	return err == nil
}

func (h *AuthHandler) verify(ctx context.Context, username, password string) (*account.Account, error) {
	acc, err := h.Accounts.Get(ctx, shared.Username(strings.TrimSpace(username)))
	if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	hash := ""
	if acc != nil {
		hash = acc.PasswordHash
	}
	if !h.hasher.Compare(hash, password) || acc == nil {
		return nil, shared.ErrInvalidCredentials
	}
	return acc, nil
}

// Login checks the credentials and opens a session.
// Any mismatch is reported as shared.ErrInvalidCredentials.
func (h *AuthHandler) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	acc, err := h.verify(ctx, username, password)
	if err != nil {
		h.Logger.Info("login rejected", logger.Username(username))
		return nil, err
	}

	token, err := h.sessions.Create(ctx, acc.Username, h.ttl)
	if err != nil {
		return nil, fmt.Errorf("login: create session: %w", err)
	}

	h.Logger.Info("user logged in", logger.Username(acc.Username.String()))
	return &LoginResult{
		Token:     token,
		ExpiresAt: h.Clock.Now().Add(h.ttl),
		Account:   acc,
	}, nil
}

// Logout revokes the token. Unknown tokens are ignored.
func (h *AuthHandler) Logout(ctx context.Context, token string) error {
	if err := h.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Resolve returns the owner of a session token.
func (h *AuthHandler) Resolve(ctx context.Context, token string) (shared.Username, error) {
	if strings.TrimSpace(token) == "" {
		return "", shared.ErrSessionNotFound
	}
	return h.sessions.Resolve(ctx, token)
}
