package activity

import (
	"context"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// Repository defines the interface for activity data persistence.
// This interface is implemented by the infrastructure layer.
type Repository interface {
	// Append adds an entry to the user's log.
	Append(ctx context.Context, entry *Entry) error

	// ListByUser returns all entries for a user in insertion order.
	ListByUser(ctx context.Context, username shared.Username) ([]*Entry, error)

	// GetStreak returns the stored streak; zero value for unknown users.
	GetStreak(ctx context.Context, username shared.Username) (Streak, error)

	// SaveStreak stores the streak for a user.
	SaveStreak(ctx context.Context, username shared.Username, streak Streak) error

	// Users lists every user that has a log or a stored streak.
	Users(ctx context.Context) ([]shared.Username, error)
}
