// Package achievement contains the deduplicated badge list of a user.
// The pair (user, name) is unique: re-awarding is a silent no-op.
package achievement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// Type classifies an achievement and determines its icon.
type Type string

const (
	TypeStreak    Type = "streak"
	TypeSkill     Type = "skill"
	TypeCourse    Type = "course"
	TypeProject   Type = "project"
	TypeCommunity Type = "community"
	TypeMilestone Type = "milestone"
	TypeGeneral   Type = "general"
)

var icons = map[Type]string{
	TypeStreak:    "🔥",
	TypeSkill:     "🏆",
	TypeCourse:    "📚",
	TypeProject:   "🚀",
	TypeCommunity: "🤝",
	TypeMilestone: "⭐",
	TypeGeneral:   "🏅",
}

// ParseType maps a free-form tag onto the closed set. Unknown tags become TypeGeneral.
func ParseType(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := icons[t]; ok {
		return t
	}
	return TypeGeneral
}

// Icon returns the badge icon for the type.
func (t Type) Icon() string {
	if icon, ok := icons[t]; ok {
		return icon
	}
	return icons[TypeGeneral]
}

// Well-known achievement names awarded by application flows.
const (
	NameFirstPath        = "First Learning Path Created"
	NameFirstResume      = "First Resume Generated"
	NameProfileCompleted = "Profile Completed"
)

// StreakName returns the name for a streak milestone.
func StreakName(days int) string {
	return fmt.Sprintf("%d-Day Learning Streak", days)
}

// GoalName returns the name awarded when a goal is achieved.
func GoalName(title string) string {
	return "Goal Achieved: " + title
}

// Achievement is one awarded badge.
type Achievement struct {
	Username shared.Username `json:"user_id"`
	Name     string          `json:"achievement_name"`
	Type     Type            `json:"type"`
	Date     time.Time       `json:"date"`
	Icon     string          `json:"icon"`
}

// New builds an achievement; the icon is derived from the type.
func New(username shared.Username, name string, t Type, at time.Time) (*Achievement, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("achievement", "Award", shared.ErrEmptyValue, "achievement name is required")
	}
	t = ParseType(string(t))
	return &Achievement{
		Username: username,
		Name:     name,
		Type:     t,
		Date:     at,
		Icon:     t.Icon(),
	}, nil
}

// Repository stores achievements.
type Repository interface {
	// Add stores the achievement unless (user, name) already exists.
	// Returns false without error for a duplicate.
	Add(ctx context.Context, a *Achievement) (bool, error)

	// ListByUser returns achievements in award order.
	ListByUser(ctx context.Context, username shared.Username) ([]*Achievement, error)
}
