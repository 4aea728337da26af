package command

import (
	"context"
	"fmt"

	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SKILL COMMAND
// Sets skill progress (clamped to 0..100), adds experience points and awards
// a "{skill} - {n}% Complete" badge for each threshold crossed for the first time.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSkillCommand contains the new progress value.
type UpdateSkillCommand struct {
	Username         shared.Username
	Skill            string
	Progress         int
	ExperiencePoints int
}

// LogSkillPracticeCommand records a practice session for a skill.
type LogSkillPracticeCommand struct {
	Username shared.Username
	Skill    string
	Minutes  int
}

// SkillPracticeResult combines the logged entry and the skill change.
type SkillPracticeResult struct {
	Activity *ActivityOutcome `json:"activity"`
	Skill    *SkillOutcome    `json:"skill"`
}

// UpdateSkillHandler handles skill commands.
type UpdateSkillHandler struct {
	core
}

// NewUpdateSkillHandler creates a new UpdateSkillHandler.
func NewUpdateSkillHandler(deps Deps) *UpdateSkillHandler {
	return &UpdateSkillHandler{core: newCore(deps)}
}

// Handle applies the update under the user's lock.
func (h *UpdateSkillHandler) Handle(ctx context.Context, cmd UpdateSkillCommand) (*SkillOutcome, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	if _, err := c.requireAccount(ctx, cmd.Username); err != nil {
		return nil, err
	}

	now := c.Clock.Now()
	out, err := c.applySkill(ctx, cmd.Username, cmd.Skill, func(p *skill.Progress) []int {
		return p.Apply(cmd.Progress, cmd.ExperiencePoints, now)
	}, now)
	if err != nil {
		return nil, err
	}

	c.Logger.Info("skill updated",
		logger.Username(cmd.Username.String()),
		logger.Skill(out.Progress.Skill),
		logger.Int("progress", out.Progress.Progress.Int()),
		logger.Int("xp", out.Progress.ExperiencePoints),
	)
	return out, nil
}

// Practice logs a practice activity and bumps the skill by skill.PracticeProgressStep.
// Both writes happen under one lock; a rejected duration changes nothing.
func (h *UpdateSkillHandler) Practice(ctx context.Context, cmd LogSkillPracticeCommand) (*SkillPracticeResult, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	if _, err := c.requireAccount(ctx, cmd.Username); err != nil {
		return nil, err
	}
	name, err := skill.NormalizeName(cmd.Skill)
	if err != nil {
		return nil, err
	}

	now := c.Clock.Now()
	act, err := c.appendActivity(ctx, cmd.Username, activity.TypePractice, cmd.Minutes, fmt.Sprintf("Practiced %s", name), now)
	if err != nil {
		return nil, err
	}
	sk, err := c.applySkill(ctx, cmd.Username, name, func(p *skill.Progress) []int {
		return p.Practice(cmd.Minutes, now)
	}, now)
	if err != nil {
		return nil, err
	}

	c.Logger.Info("skill practiced",
		logger.Username(cmd.Username.String()),
		logger.Skill(name),
		logger.Minutes(cmd.Minutes),
	)
	return &SkillPracticeResult{Activity: act, Skill: sk}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AWARD COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AwardCommand grants an achievement by name.
type AwardCommand struct {
	Username shared.Username
	Name     string
	Type     string // unknown values become "general"
}

// AwardResult tells whether the achievement was new.
type AwardResult struct {
	Achievement *achievement.Achievement `json:"achievement"`
	Awarded     bool                     `json:"awarded"`
}

// AwardHandler handles AwardCommand.
type AwardHandler struct {
	core
}

// NewAwardHandler creates a new AwardHandler.
func NewAwardHandler(deps Deps) *AwardHandler {
	return &AwardHandler{core: newCore(deps)}
}

// Handle awards the achievement. Re-awarding returns Awarded=false without error.
func (h *AwardHandler) Handle(ctx context.Context, cmd AwardCommand) (*AwardResult, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	if _, err := c.requireAccount(ctx, cmd.Username); err != nil {
		return nil, err
	}

	a, added, err := c.award(ctx, cmd.Username, cmd.Name, achievement.ParseType(cmd.Type), c.Clock.Now())
	if err != nil {
		return nil, err
	}
	return &AwardResult{Achievement: a, Awarded: added}, nil
}
