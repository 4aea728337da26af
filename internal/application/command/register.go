package command

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER COMMAND
// Creates an account with the default profile. The username is the permanent key.
// ══════════════════════════════════════════════════════════════════════════════

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// RegisterCommand contains the registration form.
type RegisterCommand struct {
	Username string
	Email    string
	Password string
}

// Validate checks required fields, the e-mail format and the password length.
func (c RegisterCommand) Validate() (shared.Username, shared.Email, error) {
	username, err := shared.NewUsername(c.Username)
	if err != nil {
		return "", "", err
	}
	email, err := shared.NewEmail(c.Email)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(c.Password) == "" {
		return "", "", shared.NewDomainError("account", "Register", shared.ErrEmptyValue, "password is required")
	}
	if utf8.RuneCountInString(c.Password) < MinPasswordLength {
		return "", "", shared.NewDomainError("account", "Register", shared.ErrInvalidInput,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return username, email, nil
}

// RegisterHandler handles RegisterCommand.
type RegisterHandler struct {
	core
	hasher account.PasswordHasher
}

// NewRegisterHandler creates a new RegisterHandler.
func NewRegisterHandler(deps Deps, hasher account.PasswordHasher) *RegisterHandler {
	return &RegisterHandler{core: newCore(deps), hasher: hasher}
}

// Handle registers the account. A taken username fails with shared.ErrUsernameTaken
// and leaves no partial account behind.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*account.Account, error) {
	username, email, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	exists, err := h.Accounts.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: check username: %w", err)
	}
	if exists {
		return nil, shared.ErrUsernameTaken
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, shared.WrapError("account", "Register", shared.ErrInvalidInput, "password cannot be used", err)
	}

	now := h.Clock.Now()
	acc, err := account.NewAccount(username, email, hash, now)
	if err != nil {
		return nil, err
	}
	// Create re-checks uniqueness under the repository lock.
	if err := h.Accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	h.Logger.Info("account registered", logger.Username(username.String()))
	h.publish(shared.NewAccountRegisteredEvent(username.String(), email.String(), now))
	return acc.Clone(), nil
}
