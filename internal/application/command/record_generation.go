package command

import (
	"context"
	"fmt"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GENERATION COMMANDS
// Apply the result of an already finished generation to the stores.
// The provider call itself never happens under the user's lock.
// ══════════════════════════════════════════════════════════════════════════════

// Minutes credited for generated content.
const (
	PathActivityMinutes   = 60
	ResumeActivityMinutes = 30
)

// RecordPathCommand stores a generated learning path.
type RecordPathCommand struct {
	Username        shared.Username
	Goal            string
	Content         string
	AIGenerated     bool
	CareerReadiness bool
}

// RecordPathResult contains the stored path and side effects.
type RecordPathResult struct {
	Path            account.PathRecord         `json:"path"`
	Activity        *ActivityOutcome           `json:"activity"`
	NewAchievements []*achievement.Achievement `json:"new_achievements,omitempty"`
}

// RecordResumeCommand records that a resume was produced.
type RecordResumeCommand struct {
	Username    shared.Username
	Goal        string
	AIGenerated bool
}

// RecordResumeResult contains the side effects of a resume.
type RecordResumeResult struct {
	Activity        *ActivityOutcome           `json:"activity"`
	NewAchievements []*achievement.Achievement `json:"new_achievements,omitempty"`
}

// RecordGenerationHandler handles the Record* commands.
type RecordGenerationHandler struct {
	core
}

// NewRecordGenerationHandler creates a new RecordGenerationHandler.
func NewRecordGenerationHandler(deps Deps) *RecordGenerationHandler {
	return &RecordGenerationHandler{core: newCore(deps)}
}

// RecordPath appends the path, logs a study activity and awards the first-path badge.
func (h *RecordGenerationHandler) RecordPath(ctx context.Context, cmd RecordPathCommand) (*RecordPathResult, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	acc, err := c.requireAccount(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}

	now := c.Clock.Now()
	rec := acc.AppendPath(cmd.Goal, cmd.Content, cmd.AIGenerated, cmd.CareerReadiness, now)
	if err := c.Accounts.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("record_path: %w", err)
	}
	c.publish(shared.NewPathGeneratedEvent(cmd.Username.String(), rec.ID, rec.Goal, rec.AIGenerated, now))

	act, err := c.appendActivity(ctx, cmd.Username, activity.TypeStudy, PathActivityMinutes,
		fmt.Sprintf("Generated new learning path for: %s", cmd.Goal), now)
	if err != nil {
		return nil, err
	}

	result := &RecordPathResult{Path: rec, Activity: act}
	result.NewAchievements = append(result.NewAchievements, act.NewAchievements...)

	a, added, err := c.award(ctx, cmd.Username, achievement.NameFirstPath, achievement.TypeGeneral, now)
	if err != nil {
		return nil, err
	}
	if added {
		result.NewAchievements = append(result.NewAchievements, a)
	}

	c.Logger.Info("learning path stored",
		logger.Username(cmd.Username.String()),
		logger.String("path_id", rec.ID),
		logger.AIGenerated(rec.AIGenerated),
	)
	return result, nil
}

// RecordResume logs a resume activity and awards the first-resume badge.
func (h *RecordGenerationHandler) RecordResume(ctx context.Context, cmd RecordResumeCommand) (*RecordResumeResult, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	if _, err := c.requireAccount(ctx, cmd.Username); err != nil {
		return nil, err
	}

	now := c.Clock.Now()
	act, err := c.appendActivity(ctx, cmd.Username, activity.TypeResume, ResumeActivityMinutes,
		fmt.Sprintf("Generated resume for: %s", cmd.Goal), now)
	if err != nil {
		return nil, err
	}
	c.publish(shared.NewResumeGeneratedEvent(cmd.Username.String(), cmd.Goal, cmd.AIGenerated, now))

	result := &RecordResumeResult{Activity: act}
	result.NewAchievements = append(result.NewAchievements, act.NewAchievements...)

	a, added, err := c.award(ctx, cmd.Username, achievement.NameFirstResume, achievement.TypeGeneral, now)
	if err != nil {
		return nil, err
	}
	if added {
		result.NewAchievements = append(result.NewAchievements, a)
	}
	return result, nil
}
