package query

import (
	"context"
	"fmt"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/markdown"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT QUERIES
// Профиль, журнал активности и сохранённые траектории пользователя.
// ══════════════════════════════════════════════════════════════════════════════

// ErrPathNotFound возвращается, если у пользователя нет траектории с таким ID.
var ErrPathNotFound = shared.NewDomainError("path", "Find", shared.ErrNotFound, "learning path not found")

// AccountHandler обслуживает запросы к учётной записи.
type AccountHandler struct {
	deps Deps
}

// NewAccountHandler создаёт AccountHandler.
func NewAccountHandler(deps Deps) *AccountHandler {
	return &AccountHandler{deps: deps.withDefaults()}
}

// Get возвращает копию учётной записи.
// Хэш пароля в JSON не сериализуется.
func (h *AccountHandler) Get(ctx context.Context, username shared.Username) (*account.Account, error) {
	return h.deps.Accounts.Get(ctx, username)
}

// Activities возвращает журнал активности в порядке добавления.
func (h *AccountHandler) Activities(ctx context.Context, username shared.Username) ([]*activity.Entry, error) {
	if _, err := h.deps.Accounts.Get(ctx, username); err != nil {
		return nil, err
	}
	entries, err := h.deps.Activities.ListByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return entries, nil
}

// Paths возвращает все траектории пользователя, старые первыми.
func (h *AccountHandler) Paths(ctx context.Context, username shared.Username) ([]account.PathRecord, error) {
	acc, err := h.deps.Accounts.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return acc.LearningPaths, nil
}

// PathHTML рендерит траекторию в самостоятельную HTML-страницу.
func (h *AccountHandler) PathHTML(ctx context.Context, username shared.Username, pathID string) (string, error) {
	acc, err := h.deps.Accounts.Get(ctx, username)
	if err != nil {
		return "", err
	}
	rec, ok := acc.FindPath(pathID)
	if !ok {
		return "", ErrPathNotFound
	}
	return markdown.Document("Learning Path: "+rec.Goal, rec.Content), nil
}
