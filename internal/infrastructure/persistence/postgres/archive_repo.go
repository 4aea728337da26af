package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pathwise/pathwise-hub/internal/domain/archive"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
	"github.com/pathwise/pathwise-hub/pkg/circuitbreaker"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARCHIVE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ArchiveRepository writes user bundles with upserts, one transaction per user.
type ArchiveRepository struct {
	conn    *Connection
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

var _ archive.Writer = (*ArchiveRepository)(nil)

// NewArchiveRepository creates the repository.
func NewArchiveRepository(conn *Connection, log *logger.Logger) *ArchiveRepository {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("archive"))
	breaker := circuitbreaker.DatabaseBreaker(func(_ string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed", logger.String("from", from.String()), logger.String("to", to.String()))
	})
	return &ArchiveRepository{
		conn:    conn,
		retrier: retry.DatabaseRetrier().With(retry.WithRetryIf(IsConnectionError)),
		breaker: breaker,
		log:     log,
	}
}

// WriteBundle implements archive.Writer.
func (r *ArchiveRepository) WriteBundle(ctx context.Context, b archive.UserBundle) error {
	if b.Account == nil {
		return nil
	}
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.retrier.Do(ctx, func(ctx context.Context) error {
			return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
				return writeBundle(ctx, tx, b)
			})
		})
	})
	if err != nil {
		return err
	}
	r.log.Debug("bundle archived", logger.Username(b.Account.Username.String()), logger.Int("rows", b.Rows()))
	return nil
}

func writeBundle(ctx context.Context, q Querier, b archive.UserBundle) error {
	batch, err := buildBatch(b, time.Now().UTC())
	if err != nil {
		return err
	}
	results := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("archive %s: statement %d: %w", b.Account.Username, i, err)
		}
	}
	return results.Close()
}

const (
	upsertAccount = `
		INSERT INTO accounts (username, email, profile, onboarding_completed, created_at, updated_at, exported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO UPDATE SET
			email = EXCLUDED.email,
			profile = EXCLUDED.profile,
			onboarding_completed = EXCLUDED.onboarding_completed,
			updated_at = EXCLUDED.updated_at,
			exported_at = EXCLUDED.exported_at`

	upsertPath = `
		INSERT INTO learning_paths (id, username, goal, content, status, ai_generated, career_readiness, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (username, id) DO UPDATE SET status = EXCLUDED.status`

	insertActivity = `
		INSERT INTO activities (id, user_id, date, activity_type, duration_minutes, details, timestamp)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	upsertStreak = `
		INSERT INTO streaks (user_id, current_days, longest_days, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			current_days = EXCLUDED.current_days,
			longest_days = EXCLUDED.longest_days,
			computed_at = EXCLUDED.computed_at`

	upsertSkill = `
		INSERT INTO skill_progress (user_id, skill_key, skill_name, progress, experience_points, last_updated, milestones)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, skill_key) DO UPDATE SET
			skill_name = EXCLUDED.skill_name,
			progress = EXCLUDED.progress,
			experience_points = EXCLUDED.experience_points,
			last_updated = EXCLUDED.last_updated,
			milestones = EXCLUDED.milestones`

	insertAchievement = `
		INSERT INTO achievements (user_id, achievement_name, type, date, icon)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, achievement_name) DO NOTHING`

	upsertGoal = `
		INSERT INTO goals (id, user_id, title, target_date, status, created_at, achieved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			achieved_at = EXCLUDED.achieved_at`
)

// buildBatch queues every statement for the bundle. The account row goes
// first so foreign keys hold.
func buildBatch(b archive.UserBundle, exportedAt time.Time) (*pgx.Batch, error) {
	acc := b.Account
	user := acc.Username.String()

	profile, err := json.Marshal(acc.Profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(upsertAccount, user, acc.Email.String(), profile, acc.Profile.OnboardingCompleted,
		acc.CreatedAt, acc.UpdatedAt, exportedAt)

	for _, p := range acc.LearningPaths {
		batch.Queue(upsertPath, p.ID, user, p.Goal, p.Content, string(p.Status), p.AIGenerated, p.CareerReadiness, p.CreatedAt)
	}
	for _, e := range b.Activities {
		batch.Queue(insertActivity, e.ID, user, e.Date, string(e.Type), e.DurationMinutes, e.Details, e.Timestamp)
	}

	computedAt := b.Streak.ComputedAt
	if computedAt.IsZero() {
		computedAt = exportedAt
	}
	batch.Queue(upsertStreak, user, b.Streak.Current, b.Streak.Longest, computedAt)

	for _, s := range b.Skills {
		milestones, err := json.Marshal(s.Milestones)
		if err != nil {
			return nil, fmt.Errorf("encode milestones: %w", err)
		}
		batch.Queue(upsertSkill, user, skill.Key(s.Skill), s.Skill, s.Progress.Int(), s.ExperiencePoints, s.LastUpdated, milestones)
	}
	for _, a := range b.Achievements {
		batch.Queue(insertAchievement, user, a.Name, string(a.Type), a.Date, a.Icon)
	}
	for _, g := range b.Goals {
		batch.Queue(upsertGoal, g.ID, user, g.Title, g.TargetDate, string(g.Status), g.CreatedAt, g.AchievedAt)
	}
	return batch, nil
}
