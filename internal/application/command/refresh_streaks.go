package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH STREAKS COMMAND
// Streaks are only recomputed when an activity is logged, so a user who stops
// studying would keep a stale value. The nightly job calls this to re-derive
// every stored streak against today's date.
// ══════════════════════════════════════════════════════════════════════════════

// RefreshStreaksResult summarizes one refresh run.
type RefreshStreaksResult struct {
	Users   int `json:"users"`
	Changed int `json:"changed"`
	Broken  int `json:"broken"`
}

// RefreshStreaksHandler recomputes all stored streaks.
type RefreshStreaksHandler struct {
	core
}

// NewRefreshStreaksHandler creates a new RefreshStreaksHandler.
func NewRefreshStreaksHandler(deps Deps) *RefreshStreaksHandler {
	return &RefreshStreaksHandler{core: newCore(deps)}
}

// Handle refreshes every user. One failing user does not stop the run;
// the errors are joined into the returned error.
func (h *RefreshStreaksHandler) Handle(ctx context.Context) (*RefreshStreaksResult, error) {
	users, err := h.Activities.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh_streaks: list users: %w", err)
	}

	result := &RefreshStreaksResult{Users: len(users)}
	var errs []error
	for _, username := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		c, done := h.lock(username)
		streak, previous, err := c.recomputeStreak(ctx, username, c.Clock.Now())
		done()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", username, err))
			continue
		}

		if streak.Current != previous {
			result.Changed++
			if previous > 0 && streak.Current == 0 {
				result.Broken++
			}
		}
	}

	h.Logger.Info("streaks refreshed",
		logger.Int("users", result.Users),
		logger.Int("changed", result.Changed),
		logger.Int("broken", result.Broken),
	)
	return result, errors.Join(errs...)
}
