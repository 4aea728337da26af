// Package dashboard содержит read-only проекцию прогресса пользователя
// и правила генерации текстовых подсказок.
package dashboard

import (
	"fmt"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/activity"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
)

// Пороги подсказок.
const (
	StreakCelebrate   = 7
	StreakEncourage   = 3
	MinDiverseSkills  = 3
	MaxFocusedCourses = 3
)

// DailyPoint - минуты обучения за один день.
type DailyPoint struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// SkillPoint - прогресс одного навыка для графика.
type SkillPoint struct {
	Skill    string `json:"skill"`
	Progress int    `json:"progress"`
}

// StudyStats - статистика минут по активным дням.
type StudyStats struct {
	MeanMinutes   float64 `json:"mean_minutes"`
	MedianMinutes float64 `json:"median_minutes"`
	MaxMinutes    float64 `json:"max_minutes"`
}

// Snapshot - сводка пользователя. Пересчитывается на каждый запрос.
type Snapshot struct {
	Activities       []*activity.Entry          `json:"activities"`
	Skills           []*skill.Progress          `json:"skills"`
	Courses          []account.PathRecord       `json:"courses"`
	Achievements     []*achievement.Achievement `json:"achievements"`
	Goals            []*goal.Goal               `json:"goals"`
	LearningStreak   int                        `json:"learning_streak"`
	LongestStreak    int                        `json:"longest_streak"`
	TotalStudyTime   int                        `json:"total_study_time"`
	CompletedModules int                        `json:"completed_modules"`
	ActiveDays       int                        `json:"active_days"`
	DailyStudyTime   []DailyPoint               `json:"daily_study_time"`
	SkillSeries      []SkillPoint               `json:"skills_progress"`
	Stats            StudyStats                 `json:"stats"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// ActiveCourses считает траектории в статусе Active.
func (s *Snapshot) ActiveCourses() int {
	return account.CountActivePaths(s.Courses)
}

// Insights строит упорядоченный список подсказок по снимку.
func Insights(s *Snapshot) []string {
	insights := make([]string, 0, 5)

	switch streak := s.LearningStreak; {
	case streak >= StreakCelebrate:
		insights = append(insights, fmt.Sprintf("🔥 Amazing! You have a %d-day learning streak!", streak))
	case streak >= StreakEncourage:
		insights = append(insights, fmt.Sprintf("🔥 Great job! Keep up your %d-day streak!", streak))
	default:
		insights = append(insights, "💪 Start a learning streak today!")
	}

	if top, ok := skill.Top(s.Skills); ok {
		insights = append(insights, fmt.Sprintf("🏆 Your strongest skill: %s (%d%%)", top.Skill, top.Progress.Int()))
		if len(s.Skills) < MinDiverseSkills {
			insights = append(insights, "💡 Consider exploring more skills to diversify your profile")
		}
	}

	switch active := s.ActiveCourses(); {
	case active > MaxFocusedCourses:
		insights = append(insights, "📚 You have many active courses. Focus on completing one at a time!")
	case active == 0:
		insights = append(insights, "🎯 Ready to start a new course? Check out the learning paths!")
	}

	if goal.CountActive(s.Goals) == 0 {
		insights = append(insights, "🎯 Set some learning goals to stay motivated!")
	}

	return insights
}
