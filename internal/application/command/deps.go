// Package command contains write operations (CQRS - Commands).
//
// Every command that touches more than one store runs under the user's lock,
// so two requests for the same account never interleave. Commands that need a
// slow external call (learning paths, resumes) do that call in the saga package
// first and only then execute a Record* command here.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// IDGenerator produces identifiers for entries and goals.
type IDGenerator interface {
	NewID() string
}

// Locker serializes operations per user. Lock returns the unlock function.
type Locker interface {
	Lock(username shared.Username) func()
}

// Deps bundles the stores and services shared by all command handlers.
type Deps struct {
	Accounts     account.Repository
	Activities   activity.Repository
	Skills       skill.Repository
	Achievements achievement.Repository
	Goals        goal.Repository

	Clock  timeutil.Clock
	IDs    IDGenerator
	Locks  Locker
	Events shared.EventPublisher
	Logger *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = timeutil.NewSystemClock(time.UTC)
	}
	if d.Events == nil {
		d.Events = shared.NoopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return d
}

// core holds the steps that several commands share. Every method assumes
// the caller already holds the user's lock.
type core struct {
	Deps

	// pending is set by lock. Events raised while the lock is held are
	// buffered here and published after unlock.
	pending *outbox
}

type outbox struct {
	events []shared.Event
}

func newCore(d Deps) core {
	return core{Deps: d.withDefaults()}
}

// lock takes the user's lock and returns a core that buffers events.
// done releases the lock and then publishes the buffered events.
func (c core) lock(username shared.Username) (core, func()) {
	unlock := c.Locks.Lock(username)
	c.pending = &outbox{}
	return c, func() {
		unlock()
		events := c.pending.events
		c.pending.events = nil
		c.emit(events)
	}
}

func (c core) publish(events ...shared.Event) {
	if c.pending != nil {
		c.pending.events = append(c.pending.events, events...)
		return
	}
	c.emit(events)
}

func (c core) emit(events []shared.Event) {
	for _, e := range events {
		if err := c.Events.Publish(e); err != nil {
			c.Logger.Warn("failed to publish event",
				logger.EventType(string(e.EventType())),
				logger.Err(err),
			)
		}
	}
}

// requireAccount fails with ErrAccountNotFound for unknown users.
func (c core) requireAccount(ctx context.Context, username shared.Username) (*account.Account, error) {
	return c.Accounts.Get(ctx, username)
}

// award stores an achievement unless it already exists and reports whether it was new.
func (c core) award(ctx context.Context, username shared.Username, name string, t achievement.Type, now time.Time) (*achievement.Achievement, bool, error) {
	a, err := achievement.New(username, name, t, now)
	if err != nil {
		return nil, false, err
	}
	added, err := c.Achievements.Add(ctx, a)
	if err != nil {
		return nil, false, fmt.Errorf("award %q: %w", name, err)
	}
	if !added {
		return a, false, nil
	}

	c.Logger.Info("achievement awarded",
		logger.Username(username.String()),
		logger.Achievement(a.Name),
		logger.String("type", string(a.Type)),
	)
	c.publish(shared.NewAchievementAwardedEvent(username.String(), a.Name, string(a.Type), a.Icon, now))
	return a, true, nil
}

// appendActivity logs an entry, recomputes the stored streak and awards
// streak milestones reached by this entry.
func (c core) appendActivity(ctx context.Context, username shared.Username, t activity.Type, minutes int, details string, now time.Time) (*ActivityOutcome, error) {
	entry, err := activity.NewEntry(c.IDs.NewID(), username, t, minutes, details, now)
	if err != nil {
		return nil, err
	}
	if err := c.Activities.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}
	c.publish(shared.NewActivityLoggedEvent(username.String(), entry.ID, entry.Type.String(), entry.DurationMinutes, now))

	streak, previous, err := c.recomputeStreak(ctx, username, now)
	if err != nil {
		return nil, err
	}

	out := &ActivityOutcome{Entry: entry, Streak: streak}
	for _, days := range activity.ReachedMilestones(previous, streak.Current) {
		a, added, err := c.award(ctx, username, achievement.StreakName(days), achievement.TypeStreak, now)
		if err != nil {
			return nil, err
		}
		if added {
			out.NewAchievements = append(out.NewAchievements, a)
		}
	}
	return out, nil
}

// recomputeStreak derives the streak from the full log and stores it.
// Returns the new streak and the previous current value.
func (c core) recomputeStreak(ctx context.Context, username shared.Username, now time.Time) (activity.Streak, int, error) {
	entries, err := c.Activities.ListByUser(ctx, username)
	if err != nil {
		return activity.Streak{}, 0, fmt.Errorf("list activities: %w", err)
	}
	stored, err := c.Activities.GetStreak(ctx, username)
	if err != nil {
		return activity.Streak{}, 0, fmt.Errorf("get streak: %w", err)
	}

	current := activity.CalculateStreak(entries, now)
	updated := stored.Update(current, now)
	if err := c.Activities.SaveStreak(ctx, username, updated); err != nil {
		return activity.Streak{}, 0, fmt.Errorf("save streak: %w", err)
	}

	if stored.Current != current {
		c.publish(shared.NewStreakChangedEvent(username.String(), stored.Current, current, now))
	}
	return updated, stored.Current, nil
}

// applySkill loads or initializes the progress row, applies the update
// and awards every newly crossed milestone.
func (c core) applySkill(ctx context.Context, username shared.Username, name string, apply func(*skill.Progress) []int, now time.Time) (*SkillOutcome, error) {
	name, err := skill.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	p, ok, err := c.Skills.Get(ctx, username, name)
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	if !ok {
		p = skill.NewProgress(username, name, now)
	}

	crossed := apply(p)
	if err := c.Skills.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save skill: %w", err)
	}

	out := &SkillOutcome{Progress: p, Crossed: crossed}
	for _, threshold := range crossed {
		c.publish(shared.NewMilestoneReachedEvent(username.String(), p.Skill, threshold, now))
		a, added, err := c.award(ctx, username, skill.MilestoneAchievementName(p.Skill, threshold), achievement.TypeSkill, now)
		if err != nil {
			return nil, err
		}
		if added {
			out.NewAchievements = append(out.NewAchievements, a)
		}
	}
	return out, nil
}

// ActivityOutcome is returned by commands that log an activity.
type ActivityOutcome struct {
	Entry           *activity.Entry            `json:"entry"`
	Streak          activity.Streak            `json:"streak"`
	NewAchievements []*achievement.Achievement `json:"new_achievements"`
}

// SkillOutcome is returned by commands that change skill progress.
type SkillOutcome struct {
	Progress        *skill.Progress            `json:"skill"`
	Crossed         []int                      `json:"milestones_reached"`
	NewAchievements []*achievement.Achievement `json:"new_achievements"`
}
