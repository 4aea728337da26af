// Package activity contains domain entities and business logic
// for the append-only learning activity log and the per-user streak derived from it.
// This is a pure domain layer with zero external dependencies.
package activity

import (
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

// MaxDurationMinutes caps a single entry at one working day.
const MaxDurationMinutes = 480

// Type classifies an activity entry.
type Type string

const (
	TypeStudy    Type = "study"
	TypeCourse   Type = "course"
	TypeProject  Type = "project"
	TypePractice Type = "practice"
	TypeResume   Type = "resume"
	TypeOther    Type = "other"
)

// Types lists all known activity types.
var Types = []Type{TypeStudy, TypeCourse, TypeProject, TypePractice, TypeResume, TypeOther}

// ParseType maps a free-form tag onto the closed set. Unknown tags become TypeOther.
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range Types {
		if string(t) == s {
			return t
		}
	}
	return TypeOther
}

// String returns the string representation.
func (t Type) String() string {
	return string(t)
}

// Entry is one logged learning event. Entries are never mutated or deleted.
type Entry struct {
	ID              string          `json:"id"`
	Username        shared.Username `json:"user_id"`
	Date            string          `json:"date"` // YYYY-MM-DD in the clock's location
	Type            Type            `json:"activity_type"`
	DurationMinutes int             `json:"duration_minutes"`
	Details         string          `json:"details"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewEntry validates input and stamps the entry with now.
func NewEntry(id string, username shared.Username, activityType Type, minutes int, details string, now time.Time) (*Entry, error) {
	if !username.IsValid() {
		return nil, shared.NewDomainError("activity", "Log", shared.ErrInvalidInput, "invalid username")
	}
	if minutes < 0 {
		return nil, shared.ErrNegativeDuration
	}
	if minutes > MaxDurationMinutes {
		return nil, shared.ErrDurationTooLong
	}

	return &Entry{
		ID:              id,
		Username:        username,
		Date:            timeutil.DateKey(now),
		Type:            activityType,
		DurationMinutes: minutes,
		Details:         strings.TrimSpace(details),
		Timestamp:       now,
	}, nil
}

// Counts reports whether the entry qualifies for streaks and active days.
func (e Entry) Counts() bool {
	return e.DurationMinutes > 0
}

// Totals aggregates a user's entries.
type Totals struct {
	StudyMinutes     int `json:"total_study_time"`
	CompletedModules int `json:"completed_modules"`
	ActiveDays       int `json:"active_days"`
	Entries          int `json:"entries"`
}

// Summarize computes totals over entries. Zero-duration entries still count as modules.
func Summarize(entries []*Entry) Totals {
	t := Totals{Entries: len(entries)}
	for _, e := range entries {
		t.StudyMinutes += e.DurationMinutes
		if e.Type == TypeCourse {
			t.CompletedModules++
		}
	}
	t.ActiveDays = len(QualifyingDates(entries))
	return t
}

// DailyMinutes sums minutes per calendar date.
func DailyMinutes(entries []*Entry) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		if e.Counts() {
			out[e.Date] += e.DurationMinutes
		}
	}
	return out
}
