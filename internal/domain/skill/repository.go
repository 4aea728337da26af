package skill

import (
	"context"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// Repository определяет хранилище прогресса навыков.
type Repository interface {
	// Get возвращает прогресс или nil, false для неизвестной пары.
	Get(ctx context.Context, username shared.Username, skillName string) (*Progress, bool, error)

	// Save создаёт или заменяет прогресс.
	Save(ctx context.Context, p *Progress) error

	// ListByUser возвращает прогресс пользователя в порядке первого появления навыка.
	ListByUser(ctx context.Context, username shared.Username) ([]*Progress, error)
}
