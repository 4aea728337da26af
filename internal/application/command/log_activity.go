package command

import (
	"context"

	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG ACTIVITY COMMAND
// Appends an entry to the log and recomputes the user's streak.
// ══════════════════════════════════════════════════════════════════════════════

// LogActivityCommand contains the activity to record.
type LogActivityCommand struct {
	Username        shared.Username
	Type            string // free-form tag, unknown values become "other"
	DurationMinutes int
	Details         string
}

// LogActivityHandler handles LogActivityCommand.
type LogActivityHandler struct {
	core
}

// NewLogActivityHandler creates a new LogActivityHandler.
func NewLogActivityHandler(deps Deps) *LogActivityHandler {
	return &LogActivityHandler{core: newCore(deps)}
}

// Handle appends the entry. Negative durations and durations above
// activity.MaxDurationMinutes are rejected before anything is stored.
func (h *LogActivityHandler) Handle(ctx context.Context, cmd LogActivityCommand) (*ActivityOutcome, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	if _, err := c.requireAccount(ctx, cmd.Username); err != nil {
		return nil, err
	}

	out, err := c.appendActivity(ctx, cmd.Username, activity.ParseType(cmd.Type), cmd.DurationMinutes, cmd.Details, c.Clock.Now())
	if err != nil {
		return nil, err
	}

	c.Logger.Info("activity logged",
		logger.Username(cmd.Username.String()),
		logger.String("activity_type", out.Entry.Type.String()),
		logger.Minutes(out.Entry.DurationMinutes),
		logger.StreakDays(out.Streak.Current),
	)
	return out, nil
}
