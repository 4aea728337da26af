package activity

import (
	"time"

	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

// StreakMilestones are the streak lengths that earn an achievement.
var StreakMilestones = []int{3, 7, 30}

// QualifyingDates returns the distinct dates with at least one counting entry.
func QualifyingDates(entries []*Entry) map[string]struct{} {
	dates := make(map[string]struct{})
	for _, e := range entries {
		if e.Counts() {
			dates[e.Date] = struct{}{}
		}
	}
	return dates
}

// CalculateStreak counts consecutive qualifying days ending today.
// If today has no qualifying entry the streak is 0.
func CalculateStreak(entries []*Entry, today time.Time) int {
	dates := QualifyingDates(entries)
	if len(dates) == 0 {
		return 0
	}

	day := timeutil.StartOfDay(today)
	streak := 0
	for {
		if _, ok := dates[timeutil.DateKey(day)]; !ok {
			break
		}
		streak++
		day = timeutil.PreviousDay(day)
	}
	return streak
}

// Streak is the stored per-user streak value.
type Streak struct {
	Current    int       `json:"current"`
	Longest    int       `json:"longest"`
	ComputedAt time.Time `json:"computed_at"`
}

// Update replaces Current and keeps Longest as a high-water mark.
func (s Streak) Update(current int, at time.Time) Streak {
	s.Current = current
	if current > s.Longest {
		s.Longest = current
	}
	s.ComputedAt = at
	return s
}

// ReachedMilestones returns thresholds in (prev, cur].
func ReachedMilestones(prev, cur int) []int {
	var out []int
	for _, m := range StreakMilestones {
		if prev < m && cur >= m {
			out = append(out, m)
		}
	}
	return out
}
