package jobs

import (
	"context"

	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// Sweeper drops expired sessions and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// SessionSweepJob purges expired in-memory sessions. Redis expires its own keys.
type SessionSweepJob struct {
	sweeper Sweeper
	log     *logger.Logger
}

// NewSessionSweepJob creates a new session sweep job.
func NewSessionSweepJob(sweeper Sweeper, log *logger.Logger) *SessionSweepJob {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionSweepJob{sweeper: sweeper, log: log}
}

// Name implements scheduler.Job.
func (j *SessionSweepJob) Name() string { return "session_sweep" }

// Description implements scheduler.Job.
func (j *SessionSweepJob) Description() string { return "Removes expired login sessions" }

// Run implements scheduler.Job.
func (j *SessionSweepJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := j.sweeper.Sweep(); n > 0 {
		j.log.Info("expired sessions removed", logger.Int("count", n))
	}
	return nil
}
