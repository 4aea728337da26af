package memory

import (
	"context"
	"sync"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
)

type userSkills struct {
	byKey map[string]*skill.Progress
	order []string
}

// SkillRepository implements skill.Repository. Skill names are matched case-insensitively.
type SkillRepository struct {
	mu    sync.RWMutex
	users map[shared.Username]*userSkills
}

// NewSkillRepository creates an empty repository.
func NewSkillRepository() *SkillRepository {
	return &SkillRepository{users: make(map[shared.Username]*userSkills)}
}

func (r *SkillRepository) Get(_ context.Context, username shared.Username, skillName string) (*skill.Progress, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	us, ok := r.users[username]
	if !ok {
		return nil, false, nil
	}
	p, ok := us.byKey[skill.Key(skillName)]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (r *SkillRepository) Save(_ context.Context, p *skill.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	us, ok := r.users[p.Username]
	if !ok {
		us = &userSkills{byKey: make(map[string]*skill.Progress)}
		r.users[p.Username] = us
	}
	key := skill.Key(p.Skill)
	if _, exists := us.byKey[key]; !exists {
		us.order = append(us.order, key)
	}
	us.byKey[key] = p.Clone()
	return nil
}

func (r *SkillRepository) ListByUser(_ context.Context, username shared.Username) ([]*skill.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	us, ok := r.users[username]
	if !ok {
		return []*skill.Progress{}, nil
	}
	out := make([]*skill.Progress, 0, len(us.order))
	for _, k := range us.order {
		out = append(out, us.byKey[k].Clone())
	}
	return out, nil
}
