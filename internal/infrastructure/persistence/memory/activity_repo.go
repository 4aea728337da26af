package memory

import (
	"context"
	"sync"

	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// ActivityRepository implements activity.Repository.
type ActivityRepository struct {
	mu      sync.RWMutex
	entries map[shared.Username][]activity.Entry
	streaks map[shared.Username]activity.Streak
	users   []shared.Username
}

// NewActivityRepository creates an empty repository.
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{
		entries: make(map[shared.Username][]activity.Entry),
		streaks: make(map[shared.Username]activity.Streak),
	}
}

func (r *ActivityRepository) Append(_ context.Context, entry *activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.track(entry.Username)
	r.entries[entry.Username] = append(r.entries[entry.Username], *entry)
	return nil
}

func (r *ActivityRepository) ListByUser(_ context.Context, username shared.Username) ([]*activity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[username]
	out := make([]*activity.Entry, len(stored))
	for i := range stored {
		e := stored[i]
		out[i] = &e
	}
	return out, nil
}

func (r *ActivityRepository) GetStreak(_ context.Context, username shared.Username) (activity.Streak, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streaks[username], nil
}

func (r *ActivityRepository) SaveStreak(_ context.Context, username shared.Username, streak activity.Streak) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.track(username)
	r.streaks[username] = streak
	return nil
}

func (r *ActivityRepository) Users(_ context.Context) ([]shared.Username, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shared.Username, len(r.users))
	copy(out, r.users)
	return out, nil
}

// track must be called with the write lock held.
func (r *ActivityRepository) track(username shared.Username) {
	_, hasEntries := r.entries[username]
	_, hasStreak := r.streaks[username]
	if !hasEntries && !hasStreak {
		r.users = append(r.users, username)
	}
}
