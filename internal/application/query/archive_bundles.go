package query

import (
	"context"
	"fmt"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/archive"
)

// ArchiveSource reads every user's data for the snapshot export.
type ArchiveSource struct {
	deps Deps
}

// NewArchiveSource creates an ArchiveSource.
func NewArchiveSource(deps Deps) *ArchiveSource {
	return &ArchiveSource{deps: deps.withDefaults()}
}

// Bundles returns one bundle per account in registration order.
func (s *ArchiveSource) Bundles(ctx context.Context) ([]archive.UserBundle, error) {
	accounts, err := s.deps.Accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: list accounts: %w", err)
	}

	out := make([]archive.UserBundle, 0, len(accounts))
	for _, acc := range accounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := s.bundle(ctx, acc)
		if err != nil {
			return nil, fmt.Errorf("archive: %s: %w", acc.Username, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *ArchiveSource) bundle(ctx context.Context, acc *account.Account) (archive.UserBundle, error) {
	b := archive.UserBundle{Account: acc}
	var err error
	if b.Activities, err = s.deps.Activities.ListByUser(ctx, acc.Username); err != nil {
		return b, err
	}
	if b.Streak, err = s.deps.Activities.GetStreak(ctx, acc.Username); err != nil {
		return b, err
	}
	if b.Skills, err = s.deps.Skills.ListByUser(ctx, acc.Username); err != nil {
		return b, err
	}
	if b.Achievements, err = s.deps.Achievements.ListByUser(ctx, acc.Username); err != nil {
		return b, err
	}
	if b.Goals, err = s.deps.Goals.ListByUser(ctx, acc.Username); err != nil {
		return b, err
	}
	return b, nil
}
