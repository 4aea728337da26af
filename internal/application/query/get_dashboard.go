package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/dashboard"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Собирает сводку пользователя из всех хранилищ. Ничего не кэширует:
// каждый вызов пересчитывает итоги, серии и подсказки заново.
// ══════════════════════════════════════════════════════════════════════════════

// DashboardHandler строит снимок и подсказки.
type DashboardHandler struct {
	deps Deps
}

// NewDashboardHandler создаёт DashboardHandler.
func NewDashboardHandler(deps Deps) *DashboardHandler {
	return &DashboardHandler{deps: deps.withDefaults()}
}

// Snapshot собирает данные пользователя. Хранилища читаются параллельно.
func (h *DashboardHandler) Snapshot(ctx context.Context, username shared.Username) (*dashboard.Snapshot, error) {
	var (
		acc          *account.Account
		entries      []*activity.Entry
		stored       activity.Streak
		skills       []*skill.Progress
		achievements []*achievement.Achievement
		goals        []*goal.Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		acc, err = h.deps.Accounts.Get(gctx, username)
		return err
	})
	g.Go(func() (err error) {
		entries, err = h.deps.Activities.ListByUser(gctx, username)
		return wrap("activities", err)
	})
	g.Go(func() (err error) {
		stored, err = h.deps.Activities.GetStreak(gctx, username)
		return wrap("streak", err)
	})
	g.Go(func() (err error) {
		skills, err = h.deps.Skills.ListByUser(gctx, username)
		return wrap("skills", err)
	})
	g.Go(func() (err error) {
		achievements, err = h.deps.Achievements.ListByUser(gctx, username)
		return wrap("achievements", err)
	})
	g.Go(func() (err error) {
		goals, err = h.deps.Goals.ListByUser(gctx, username)
		return wrap("goals", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := h.deps.Clock.Now()
	totals := activity.Summarize(entries)

	// Сохранённое значение может устареть после смены дня.
	current := activity.CalculateStreak(entries, now)
	longest := stored.Longest
	if current > longest {
		longest = current
	}

	daily := dailySeries(entries)
	snap := &dashboard.Snapshot{
		Activities:       entries,
		Skills:           skills,
		Courses:          acc.LearningPaths,
		Achievements:     achievements,
		Goals:            goals,
		LearningStreak:   current,
		LongestStreak:    longest,
		TotalStudyTime:   totals.StudyMinutes,
		CompletedModules: totals.CompletedModules,
		ActiveDays:       totals.ActiveDays,
		DailyStudyTime:   daily,
		SkillSeries:      skillSeries(skills),
		Stats:            studyStats(daily, h.deps.Logger),
		GeneratedAt:      now,
	}
	return snap, nil
}

// Insights строит подсказки по свежему снимку.
func (h *DashboardHandler) Insights(ctx context.Context, username shared.Username) ([]string, error) {
	snap, err := h.Snapshot(ctx, username)
	if err != nil {
		return nil, err
	}
	return dashboard.Insights(snap), nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard %s: %w", what, err)
	}
	return nil
}

// dailySeries - минуты по дням, по возрастанию даты.
func dailySeries(entries []*activity.Entry) []dashboard.DailyPoint {
	byDay := activity.DailyMinutes(entries)
	out := make([]dashboard.DailyPoint, 0, len(byDay))
	for date, minutes := range byDay {
		out = append(out, dashboard.DailyPoint{Date: date, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func skillSeries(skills []*skill.Progress) []dashboard.SkillPoint {
	out := make([]dashboard.SkillPoint, 0, len(skills))
	for _, p := range skills {
		out = append(out, dashboard.SkillPoint{Skill: p.Skill, Progress: p.Progress.Int()})
	}
	return out
}

// studyStats считает среднее, медиану и максимум минут по активным дням.
// Пустой ряд даёт нули.
func studyStats(daily []dashboard.DailyPoint, log *logger.Logger) dashboard.StudyStats {
	if len(daily) == 0 {
		return dashboard.StudyStats{}
	}

	data := make(stats.Float64Data, 0, len(daily))
	for _, p := range daily {
		data = append(data, float64(p.Minutes))
	}

	var out dashboard.StudyStats
	var err error
	if out.MeanMinutes, err = data.Mean(); err != nil {
		log.Warn("study stats: mean", logger.Err(err))
	}
	if out.MedianMinutes, err = data.Median(); err != nil {
		log.Warn("study stats: median", logger.Err(err))
	}
	if out.MaxMinutes, err = data.Max(); err != nil {
		log.Warn("study stats: max", logger.Err(err))
	}
	out.MeanMinutes, _ = stats.Round(out.MeanMinutes, 1)
	return out
}
