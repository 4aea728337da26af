// Package query contains read operations (CQRS - Queries).
//
// Queries never take the user lock: repositories return copies, so a read
// that races with a write sees either the old or the new state of each store.
package query

import (
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

// Deps bundles the read side of every store.
type Deps struct {
	Accounts     account.Repository
	Activities   activity.Repository
	Skills       skill.Repository
	Achievements achievement.Repository
	Goals        goal.Repository

	Clock  timeutil.Clock
	Logger *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = timeutil.NewSystemClock(time.UTC)
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return d
}
