// Package goal contains user-defined learning goals.
package goal

import (
	"context"
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// Status of a goal.
type Status string

const (
	StatusActive   Status = "Active"
	StatusAchieved Status = "Achieved"
)

// Goal is a learning goal with an optional target date.
type Goal struct {
	ID         string          `json:"id"`
	Username   shared.Username `json:"user_id"`
	Title      string          `json:"title"`
	TargetDate *time.Time      `json:"target_date,omitempty"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	AchievedAt *time.Time      `json:"achieved_at,omitempty"`
}

// New creates an active goal.
func New(id string, username shared.Username, title string, target *time.Time, now time.Time) (*Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("goal", "Set", shared.ErrEmptyValue, "goal title is required")
	}
	return &Goal{
		ID:         id,
		Username:   username,
		Title:      title,
		TargetDate: target,
		Status:     StatusActive,
		CreatedAt:  now,
	}, nil
}

// Achieve marks the goal as achieved.
func (g *Goal) Achieve(now time.Time) error {
	if g.Status == StatusAchieved {
		return shared.ErrGoalAlreadyAchieved
	}
	g.Status = StatusAchieved
	g.AchievedAt = &now
	return nil
}

// IsActive reports whether the goal is still open.
func (g *Goal) IsActive() bool {
	return g.Status == StatusActive
}

// CountActive counts active goals.
func CountActive(goals []*Goal) int {
	n := 0
	for _, g := range goals {
		if g.IsActive() {
			n++
		}
	}
	return n
}

// Repository stores goals.
type Repository interface {
	Save(ctx context.Context, g *Goal) error
	// Get returns shared.ErrGoalNotFound when the goal does not belong to the user.
	Get(ctx context.Context, username shared.Username, id string) (*Goal, error)
	ListByUser(ctx context.Context, username shared.Username) ([]*Goal, error)
}
