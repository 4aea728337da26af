package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/goal"
	"github.com/pathwise/pathwise-hub/internal/domain/skill"
)

func progress(name string, pct int) *skill.Progress {
	p := skill.NewProgress("alice", name, time.Now())
	p.Apply(pct, 0, time.Now())
	return p
}

func paths(n int) []account.PathRecord {
	out := make([]account.PathRecord, n)
	for i := range out {
		out[i] = account.PathRecord{ID: "p", Status: account.PathActive}
	}
	return out
}

func TestInsights_EmptyUser(t *testing.T) {
	got := Insights(&Snapshot{})
	assert.Equal(t, []string{
		"💪 Start a learning streak today!",
		"🎯 Ready to start a new course? Check out the learning paths!",
		"🎯 Set some learning goals to stay motivated!",
	}, got)
}

func TestInsights_Streaks(t *testing.T) {
	assert.Equal(t, "🔥 Great job! Keep up your 3-day streak!", Insights(&Snapshot{LearningStreak: 3})[0])
	assert.Equal(t, "🔥 Great job! Keep up your 6-day streak!", Insights(&Snapshot{LearningStreak: 6})[0])
	assert.Equal(t, "🔥 Amazing! You have a 7-day learning streak!", Insights(&Snapshot{LearningStreak: 7})[0])
	assert.Equal(t, "💪 Start a learning streak today!", Insights(&Snapshot{LearningStreak: 2})[0])
}

func TestInsights_SkillsCoursesGoals(t *testing.T) {
	g, _ := goal.New("g1", "alice", "Learn Go", nil, time.Now())

	s := &Snapshot{
		Skills:  []*skill.Progress{progress("Go", 40), progress("SQL", 80), progress("Rust", 80)},
		Courses: paths(4),
		Goals:   []*goal.Goal{g},
	}

	got := Insights(s)
	assert.Equal(t, []string{
		"💪 Start a learning streak today!",
		"🏆 Your strongest skill: SQL (80%)",
		"📚 You have many active courses. Focus on completing one at a time!",
	}, got)
}

func TestInsights_FewSkillsSuggestDiversify(t *testing.T) {
	s := &Snapshot{Skills: []*skill.Progress{progress("Python", 30)}, Courses: paths(1)}

	got := Insights(s)
	assert.Contains(t, got, "🏆 Your strongest skill: Python (30%)")
	assert.Contains(t, got, "💡 Consider exploring more skills to diversify your profile")
	assert.NotContains(t, got, "🎯 Ready to start a new course? Check out the learning paths!")
}
