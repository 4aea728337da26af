package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/dashboard"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/persistence/memory"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

var today = time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	deps  Deps
	clock *timeutil.FixedClock
	seq   int
}

func newFixture(t *testing.T, users ...shared.Username) *fixture {
	t.Helper()
	f := &fixture{
		deps: Deps{
			Accounts:     memory.NewAccountRepository(),
			Activities:   memory.NewActivityRepository(),
			Skills:       memory.NewSkillRepository(),
			Achievements: memory.NewAchievementRepository(),
			Goals:        memory.NewGoalRepository(),
		},
		clock: timeutil.NewFixedClock(today),
	}
	f.deps.Clock = f.clock
	for _, u := range users {
		acc, err := account.NewAccount(u, shared.Email(u.String()+"@x.com"), "hash", today)
		require.NoError(t, err)
		require.NoError(t, f.deps.Accounts.Create(context.Background(), acc))
	}
	return f
}

func (f *fixture) log(t *testing.T, u shared.Username, daysAgo, minutes int, typ activity.Type) {
	t.Helper()
	f.seq++
	e, err := activity.NewEntry(string(rune('a'+f.seq)), u, typ, minutes, "", today.AddDate(0, 0, -daysAgo))
	require.NoError(t, err)
	require.NoError(t, f.deps.Activities.Append(context.Background(), e))
}

func TestSnapshot_Totals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	f.log(t, "alice", 0, 60, activity.TypeStudy)
	f.log(t, "alice", 0, 30, activity.TypeCourse)
	f.log(t, "alice", 1, 0, activity.TypeCourse)
	f.log(t, "alice", 1, 20, activity.TypePractice)
	f.log(t, "alice", 4, 10, activity.TypeStudy)

	snap, err := NewDashboardHandler(f.deps).Snapshot(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 120, snap.TotalStudyTime)
	assert.Equal(t, 2, snap.CompletedModules)
	assert.Equal(t, 3, snap.ActiveDays)
	assert.Equal(t, 2, snap.LearningStreak)
	assert.Equal(t, 2, snap.LongestStreak)
	assert.Len(t, snap.Activities, 5)
	assert.Equal(t, []dashboard.DailyPoint{
		{Date: "2026-04-06", Minutes: 10},
		{Date: "2026-04-09", Minutes: 20},
		{Date: "2026-04-10", Minutes: 90},
	}, snap.DailyStudyTime)
	assert.Equal(t, 40.0, snap.Stats.MeanMinutes)
	assert.Equal(t, 20.0, snap.Stats.MedianMinutes)
	assert.Equal(t, 90.0, snap.Stats.MaxMinutes)
	assert.Equal(t, today, snap.GeneratedAt)
}

func TestSnapshot_StaleStoredStreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")
	f.log(t, "alice", 3, 15, activity.TypeStudy)
	require.NoError(t, f.deps.Activities.SaveStreak(ctx, "alice", activity.Streak{Current: 5, Longest: 5}))

	snap, err := NewDashboardHandler(f.deps).Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.LearningStreak)
	assert.Equal(t, 5, snap.LongestStreak)
}

func TestSnapshot_UnknownUser(t *testing.T) {
	_, err := NewDashboardHandler(newFixture(t).deps).Snapshot(context.Background(), "ghost")
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestSnapshot_EmptyUser(t *testing.T) {
	snap, err := NewDashboardHandler(newFixture(t, "bob").deps).Snapshot(context.Background(), "bob")
	require.NoError(t, err)
	assert.Zero(t, snap.TotalStudyTime)
	assert.Empty(t, snap.DailyStudyTime)
	assert.Equal(t, dashboard.StudyStats{}, snap.Stats)
}

func TestInsights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")
	for d := 0; d < 7; d++ {
		f.log(t, "alice", d, 30, activity.TypeStudy)
	}

	p := skill.NewProgress("alice", "Python", today)
	p.Apply(40, 0, today)
	require.NoError(t, f.deps.Skills.Save(ctx, p))

	g, err := goal.New("g1", "alice", "Learn Go", nil, today)
	require.NoError(t, err)
	require.NoError(t, f.deps.Goals.Save(ctx, g))

	got, err := NewDashboardHandler(f.deps).Insights(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"🔥 Amazing! You have a 7-day learning streak!",
		"🏆 Your strongest skill: Python (40%)",
		"💡 Consider exploring more skills to diversify your profile",
		"🎯 Ready to start a new course? Check out the learning paths!",
	}, got)
}

func TestAccountHandler_Paths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	acc, err := f.deps.Accounts.Get(ctx, "alice")
	require.NoError(t, err)
	rec := acc.AppendPath("Go Developer", "# Roadmap\n\n- **Week 1**", true, false, today)
	require.NoError(t, f.deps.Accounts.Update(ctx, acc))

	h := NewAccountHandler(f.deps)
	paths, err := h.Paths(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, rec.ID, paths[0].ID)

	page, err := h.PathHTML(ctx, "alice", rec.ID)
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Learning Path: Go Developer</title>")
	assert.Contains(t, page, "<strong>Week 1</strong>")

	_, err = h.PathHTML(ctx, "alice", "path_9_x")
	assert.True(t, shared.IsNotFound(err))

	_, err = h.Activities(ctx, "ghost")
	assert.True(t, shared.IsNotFound(err))
}

func TestArchiveSource_Bundles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	f.log(t, "alice", 0, 30, activity.TypeStudy)

	bundles, err := NewArchiveSource(f.deps).Bundles(ctx)
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, shared.Username("alice"), bundles[0].Account.Username)
	assert.Len(t, bundles[0].Activities, 1)
	assert.Equal(t, 3, bundles[0].Rows())
	assert.Equal(t, 2, bundles[1].Rows())
}
