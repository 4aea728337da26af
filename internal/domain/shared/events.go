package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that happened for a user.
const (
	// Account events
	EventAccountRegistered EventType = "account.registered"
	EventAccountOnboarded  EventType = "account.onboarded"
	EventProfileUpdated    EventType = "account.profile_updated"

	// Progress events
	EventActivityLogged      EventType = "activity.logged"
	EventStreakUpdated       EventType = "progress.streak_updated"
	EventStreakBroken        EventType = "progress.streak_broken"
	EventSkillMilestone      EventType = "skill.milestone_reached"
	EventAchievementAwarded  EventType = "achievement.awarded"
	EventGoalAchieved        EventType = "goal.achieved"
	EventLearningPathCreated EventType = "path.generated"
	EventResumeGenerated     EventType = "resume.generated"

	// System events
	EventArchiveCompleted EventType = "system.archive_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the username the event belongs to.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event stamped at the given instant.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Account Events
// ═══════════════════════════════════════════════════════════════════════════

// AccountRegisteredEvent is emitted when a new account is created.
type AccountRegisteredEvent struct {
	BaseEvent
	Email string `json:"email"`
}

func (e AccountRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username": e.AggregateId,
		"email":    e.Email,
	}
}

// NewAccountRegisteredEvent creates a new AccountRegisteredEvent.
func NewAccountRegisteredEvent(username, email string, at time.Time) AccountRegisteredEvent {
	return AccountRegisteredEvent{
		BaseEvent: NewBaseEvent(EventAccountRegistered, username, at),
		Email:     email,
	}
}

// ProfileUpdatedEvent is emitted on every profile merge. Onboarding marks the first completion.
type ProfileUpdatedEvent struct {
	BaseEvent
	Onboarding    bool     `json:"onboarding"`
	ChangedFields []string `json:"changed_fields"`
}

func (e ProfileUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":       e.AggregateId,
		"onboarding":     e.Onboarding,
		"changed_fields": e.ChangedFields,
	}
}

// NewProfileUpdatedEvent creates a ProfileUpdatedEvent. Onboarding updates use the onboarded type.
func NewProfileUpdatedEvent(username string, onboarding bool, changed []string, at time.Time) ProfileUpdatedEvent {
	t := EventProfileUpdated
	if onboarding {
		t = EventAccountOnboarded
	}
	return ProfileUpdatedEvent{
		BaseEvent:     NewBaseEvent(t, username, at),
		Onboarding:    onboarding,
		ChangedFields: changed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// ActivityLoggedEvent is emitted after an activity entry is appended.
type ActivityLoggedEvent struct {
	BaseEvent
	EntryID         string `json:"entry_id"`
	ActivityType    string `json:"activity_type"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (e ActivityLoggedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":         e.AggregateId,
		"entry_id":         e.EntryID,
		"activity_type":    e.ActivityType,
		"duration_minutes": e.DurationMinutes,
	}
}

// NewActivityLoggedEvent creates a new ActivityLoggedEvent.
func NewActivityLoggedEvent(username, entryID, activityType string, minutes int, at time.Time) ActivityLoggedEvent {
	return ActivityLoggedEvent{
		BaseEvent:       NewBaseEvent(EventActivityLogged, username, at),
		EntryID:         entryID,
		ActivityType:    activityType,
		DurationMinutes: minutes,
	}
}

// StreakChangedEvent is emitted when the stored streak changes.
// A drop from a positive value to zero uses the streak_broken type.
type StreakChangedEvent struct {
	BaseEvent
	Previous int `json:"previous"`
	Current  int `json:"current"`
}

func (e StreakChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username": e.AggregateId,
		"previous": e.Previous,
		"current":  e.Current,
	}
}

// NewStreakChangedEvent creates a StreakChangedEvent with the matching type.
func NewStreakChangedEvent(username string, previous, current int, at time.Time) StreakChangedEvent {
	t := EventStreakUpdated
	if previous > 0 && current == 0 {
		t = EventStreakBroken
	}
	return StreakChangedEvent{
		BaseEvent: NewBaseEvent(t, username, at),
		Previous:  previous,
		Current:   current,
	}
}

// MilestoneReachedEvent is emitted once per (user, skill, threshold).
type MilestoneReachedEvent struct {
	BaseEvent
	Skill     string `json:"skill"`
	Threshold int    `json:"threshold"`
}

func (e MilestoneReachedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":  e.AggregateId,
		"skill":     e.Skill,
		"threshold": e.Threshold,
	}
}

// NewMilestoneReachedEvent creates a new MilestoneReachedEvent.
func NewMilestoneReachedEvent(username, skill string, threshold int, at time.Time) MilestoneReachedEvent {
	return MilestoneReachedEvent{
		BaseEvent: NewBaseEvent(EventSkillMilestone, username, at),
		Skill:     skill,
		Threshold: threshold,
	}
}

// AchievementAwardedEvent is emitted when a new badge is stored.
type AchievementAwardedEvent struct {
	BaseEvent
	Name string `json:"name"`
	Kind string `json:"kind"`
	Icon string `json:"icon"`
}

func (e AchievementAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username": e.AggregateId,
		"name":     e.Name,
		"kind":     e.Kind,
		"icon":     e.Icon,
	}
}

// NewAchievementAwardedEvent creates a new AchievementAwardedEvent.
func NewAchievementAwardedEvent(username, name, kind, icon string, at time.Time) AchievementAwardedEvent {
	return AchievementAwardedEvent{
		BaseEvent: NewBaseEvent(EventAchievementAwarded, username, at),
		Name:      name,
		Kind:      kind,
		Icon:      icon,
	}
}

// GoalAchievedEvent is emitted when a goal moves to Achieved.
type GoalAchievedEvent struct {
	BaseEvent
	GoalID string `json:"goal_id"`
	Title  string `json:"title"`
}

func (e GoalAchievedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username": e.AggregateId,
		"goal_id":  e.GoalID,
		"title":    e.Title,
	}
}

// NewGoalAchievedEvent creates a new GoalAchievedEvent.
func NewGoalAchievedEvent(username, goalID, title string, at time.Time) GoalAchievedEvent {
	return GoalAchievedEvent{
		BaseEvent: NewBaseEvent(EventGoalAchieved, username, at),
		GoalID:    goalID,
		Title:     title,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Generation Events
// ═══════════════════════════════════════════════════════════════════════════

// ContentGeneratedEvent is emitted after a learning path or resume is produced.
type ContentGeneratedEvent struct {
	BaseEvent
	Goal        string `json:"goal"`
	AIGenerated bool   `json:"ai_generated"`
	ReferenceID string `json:"reference_id,omitempty"`
}

func (e ContentGeneratedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":     e.AggregateId,
		"goal":         e.Goal,
		"ai_generated": e.AIGenerated,
		"reference_id": e.ReferenceID,
	}
}

// NewPathGeneratedEvent creates a ContentGeneratedEvent for a learning path.
func NewPathGeneratedEvent(username, pathID, goal string, aiGenerated bool, at time.Time) ContentGeneratedEvent {
	return ContentGeneratedEvent{
		BaseEvent:   NewBaseEvent(EventLearningPathCreated, username, at),
		Goal:        goal,
		AIGenerated: aiGenerated,
		ReferenceID: pathID,
	}
}

// NewResumeGeneratedEvent creates a ContentGeneratedEvent for a resume.
func NewResumeGeneratedEvent(username, goal string, aiGenerated bool, at time.Time) ContentGeneratedEvent {
	return ContentGeneratedEvent{
		BaseEvent:   NewBaseEvent(EventResumeGenerated, username, at),
		Goal:        goal,
		AIGenerated: aiGenerated,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// ArchiveCompletedEvent is emitted by the snapshot archive job.
type ArchiveCompletedEvent struct {
	BaseEvent
	Accounts int           `json:"accounts"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration"`
}

func (e ArchiveCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"accounts": e.Accounts,
		"records":  e.Records,
		"duration": e.Duration.String(),
	}
}

// NewArchiveCompletedEvent creates a new ArchiveCompletedEvent.
func NewArchiveCompletedEvent(accounts, records int, d time.Duration, at time.Time) ArchiveCompletedEvent {
	return ArchiveCompletedEvent{
		BaseEvent: NewBaseEvent(EventArchiveCompleted, "system", at),
		Accounts:  accounts,
		Records:   records,
		Duration:  d,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// Publish implements EventPublisher.
func (NoopPublisher) Publish(Event) error { return nil }

// MarshalEvent serializes an event for logging and transport.
func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(struct {
		Type        EventType              `json:"type"`
		AggregateID string                 `json:"aggregate_id"`
		OccurredAt  time.Time              `json:"occurred_at"`
		Payload     map[string]interface{} `json:"payload"`
	}{
		Type:        e.EventType(),
		AggregateID: e.AggregateID(),
		OccurredAt:  e.OccurredAt(),
		Payload:     e.Payload(),
	})
}
