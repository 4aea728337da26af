package memory

import (
	"context"
	"sync"

	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// GoalRepository implements goal.Repository.
type GoalRepository struct {
	mu    sync.RWMutex
	goals map[shared.Username][]goal.Goal
}

// NewGoalRepository creates an empty repository.
func NewGoalRepository() *GoalRepository {
	return &GoalRepository{goals: make(map[shared.Username][]goal.Goal)}
}

func (r *GoalRepository) Save(_ context.Context, g *goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.goals[g.Username]
	for i := range list {
		if list[i].ID == g.ID {
			list[i] = *g
			return nil
		}
	}
	r.goals[g.Username] = append(list, *g)
	return nil
}

func (r *GoalRepository) Get(_ context.Context, username shared.Username, id string) (*goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.goals[username] {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, shared.ErrGoalNotFound
}

func (r *GoalRepository) ListByUser(_ context.Context, username shared.Username) ([]*goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.goals[username]
	out := make([]*goal.Goal, len(stored))
	for i := range stored {
		g := stored[i]
		out[i] = &g
	}
	return out, nil
}
