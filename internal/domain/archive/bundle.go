// Package archive describes the per-user export written to the optional
// snapshot archive.
package archive

import (
	"context"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
)

// UserBundle is everything stored for one user at export time.
type UserBundle struct {
	Account      *account.Account
	Activities   []*activity.Entry
	Streak       activity.Streak
	Skills       []*skill.Progress
	Achievements []*achievement.Achievement
	Goals        []*goal.Goal
}

// Rows counts the records the bundle will write.
func (b UserBundle) Rows() int {
	if b.Account == nil {
		return 0
	}
	return 2 + len(b.Account.LearningPaths) + len(b.Activities) + len(b.Skills) + len(b.Achievements) + len(b.Goals)
}

// Report summarizes one export run.
type Report struct {
	Users      int           `json:"users"`
	Rows       int           `json:"rows"`
	Failed     int           `json:"failed"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	FirstError string        `json:"first_error,omitempty"`
}

// Writer persists bundles. Writes are upserts, so re-exporting is idempotent.
type Writer interface {
	WriteBundle(ctx context.Context, b UserBundle) error
}
