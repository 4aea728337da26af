package command

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GOAL COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// SetGoalCommand creates a goal.
type SetGoalCommand struct {
	Username   shared.Username
	Title      string
	TargetDate *time.Time
}

// AchieveGoalResult contains the achieved goal and its badge.
type AchieveGoalResult struct {
	Goal        *goal.Goal               `json:"goal"`
	Achievement *achievement.Achievement `json:"achievement,omitempty"`
}

// GoalHandler handles goal commands.
type GoalHandler struct {
	core
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(deps Deps) *GoalHandler {
	return &GoalHandler{core: newCore(deps)}
}

// Set stores a new active goal.
func (h *GoalHandler) Set(ctx context.Context, cmd SetGoalCommand) (*goal.Goal, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	if _, err := c.requireAccount(ctx, cmd.Username); err != nil {
		return nil, err
	}

	g, err := goal.New(c.IDs.NewID(), cmd.Username, cmd.Title, cmd.TargetDate, c.Clock.Now())
	if err != nil {
		return nil, err
	}
	if err := c.Goals.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("set_goal: %w", err)
	}

	c.Logger.Info("goal set", logger.Username(cmd.Username.String()), logger.String("goal_id", g.ID))
	return g, nil
}

// Achieve marks the goal achieved and awards "Goal Achieved: {title}".
func (h *GoalHandler) Achieve(ctx context.Context, username shared.Username, goalID string) (*AchieveGoalResult, error) {
	c, done := h.lock(username)
	defer done()

	g, err := c.Goals.Get(ctx, username, goalID)
	if err != nil {
		return nil, err
	}

	now := c.Clock.Now()
	if err := g.Achieve(now); err != nil {
		return nil, err
	}
	if err := c.Goals.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("achieve_goal: %w", err)
	}
	c.publish(shared.NewGoalAchievedEvent(username.String(), g.ID, g.Title, now))

	a, _, err := c.award(ctx, username, achievement.GoalName(g.Title), achievement.TypeMilestone, now)
	if err != nil {
		return nil, err
	}
	return &AchieveGoalResult{Goal: g, Achievement: a}, nil
}
