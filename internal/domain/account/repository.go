package account

import (
	"context"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища учётных записей.
// Все методы чтения возвращают копии: изменения вне Update не видны хранилищу.
type Repository interface {
	// Create сохраняет новую учётную запись.
	// Возвращает shared.ErrUsernameTaken, если имя уже занято.
	Create(ctx context.Context, acc *Account) error

	// Get возвращает учётную запись по имени.
	// Возвращает shared.ErrAccountNotFound, если записи нет.
	Get(ctx context.Context, username shared.Username) (*Account, error)

	// Update заменяет сохранённую запись.
	// Возвращает shared.ErrAccountNotFound, если записи нет.
	Update(ctx context.Context, acc *Account) error

	// List возвращает все учётные записи в порядке регистрации.
	List(ctx context.Context) ([]*Account, error)

	// Exists проверяет наличие имени.
	Exists(ctx context.Context, username shared.Username) (bool, error)
}

// PasswordHasher хеширует и проверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare возвращает true, если пароль соответствует хешу.
	Compare(hash, password string) bool
}

// SessionStore хранит короткоживущие токены сессий.
type SessionStore interface {
	// Create выдаёт новый токен для пользователя.
	Create(ctx context.Context, username shared.Username, ttl time.Duration) (string, error)

	// Resolve возвращает владельца токена.
	// Возвращает shared.ErrSessionNotFound для неизвестного или истёкшего токена.
	Resolve(ctx context.Context, token string) (shared.Username, error)

	// Delete отзывает токен. Неизвестный токен не является ошибкой.
	Delete(ctx context.Context, token string) error
}
