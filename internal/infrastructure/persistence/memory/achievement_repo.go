package memory

import (
	"context"
	"sync"

	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// AchievementRepository implements achievement.Repository.
type AchievementRepository struct {
	mu    sync.RWMutex
	items map[shared.Username][]achievement.Achievement
	names map[shared.Username]map[string]struct{}
}

// NewAchievementRepository creates an empty repository.
func NewAchievementRepository() *AchievementRepository {
	return &AchievementRepository{
		items: make(map[shared.Username][]achievement.Achievement),
		names: make(map[shared.Username]map[string]struct{}),
	}
}

func (r *AchievementRepository) Add(_ context.Context, a *achievement.Achievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, ok := r.names[a.Username]
	if !ok {
		names = make(map[string]struct{})
		r.names[a.Username] = names
	}
	if _, dup := names[a.Name]; dup {
		return false, nil
	}
	names[a.Name] = struct{}{}
	r.items[a.Username] = append(r.items[a.Username], *a)
	return true, nil
}

func (r *AchievementRepository) ListByUser(_ context.Context, username shared.Username) ([]*achievement.Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.items[username]
	out := make([]*achievement.Achievement, len(stored))
	for i := range stored {
		a := stored[i]
		out[i] = &a
	}
	return out, nil
}
