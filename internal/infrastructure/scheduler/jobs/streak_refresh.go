package jobs

import (
	"context"

	"github.com/pathwise/pathwise-hub/internal/application/command"
)

// StreakRefresher re-derives every stored streak.
type StreakRefresher interface {
	Handle(ctx context.Context) (*command.RefreshStreaksResult, error)
}

// StreakRefreshJob resets streaks that went stale after a day rollover.
type StreakRefreshJob struct {
	refresher StreakRefresher
}

// NewStreakRefreshJob creates a new streak refresh job.
func NewStreakRefreshJob(refresher StreakRefresher) *StreakRefreshJob {
	return &StreakRefreshJob{refresher: refresher}
}

// Name implements scheduler.Job.
func (j *StreakRefreshJob) Name() string { return "streak_refresh" }

// Description implements scheduler.Job.
func (j *StreakRefreshJob) Description() string {
	return "Recomputes every learning streak against today's date"
}

// Run implements scheduler.Job.
func (j *StreakRefreshJob) Run(ctx context.Context) error {
	_, err := j.refresher.Handle(ctx)
	return err
}
