package eventhandler

import (
	"fmt"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ProgressWatcher logs the moments users care about: achievements,
// skill milestones and broken streaks.
type ProgressWatcher struct {
	log *logger.Logger
}

// NewProgressWatcher creates a ProgressWatcher.
func NewProgressWatcher(log *logger.Logger) *ProgressWatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressWatcher{log: log.With(logger.Component("progress"))}
}

// OnAchievementAwarded handles achievement.awarded.
func (w *ProgressWatcher) OnAchievementAwarded(e shared.Event) error {
	p := e.Payload()
	w.log.Info(fmt.Sprintf("%v %v unlocked", p["icon"], p["name"]),
		logger.Username(e.AggregateID()),
		logger.Any("kind", p["kind"]),
	)
	return nil
}

// OnMilestoneReached handles skill.milestone_reached.
func (w *ProgressWatcher) OnMilestoneReached(e shared.Event) error {
	p := e.Payload()
	w.log.Info("skill milestone reached",
		logger.Username(e.AggregateID()),
		logger.Any("skill", p["skill"]),
		logger.Any("threshold", p["threshold"]),
	)
	return nil
}

// OnStreakBroken handles progress.streak_broken.
func (w *ProgressWatcher) OnStreakBroken(e shared.Event) error {
	w.log.Info("learning streak broken",
		logger.Username(e.AggregateID()),
		logger.Any("previous", e.Payload()["previous"]),
	)
	return nil
}

// Register wires the audit log to every event and the watcher to its types.
func Register(r Registrar, audit *AuditLog, watcher *ProgressWatcher) error {
	if err := r.RegisterAll("audit_log", audit.Handle); err != nil {
		return err
	}

	handlers := []struct {
		t    shared.EventType
		name string
		h    shared.EventHandler
	}{
		{shared.EventAchievementAwarded, "progress.achievement", watcher.OnAchievementAwarded},
		{shared.EventSkillMilestone, "progress.milestone", watcher.OnMilestoneReached},
		{shared.EventStreakBroken, "progress.streak_broken", watcher.OnStreakBroken},
	}
	for _, h := range handlers {
		if err := r.Register(h.t, h.name, h.h); err != nil {
			return fmt.Errorf("register %s: %w", h.name, err)
		}
	}
	return nil
}
