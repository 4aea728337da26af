package command

import (
	"context"
	"fmt"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROFILE COMMAND
// Merges a partial profile. The onboarding flow also marks the questionnaire
// as completed and awards "Profile Completed" once.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProfileCommand contains the patch to merge.
type UpdateProfileCommand struct {
	Username   shared.Username
	Patch      account.ProfilePatch
	Onboarding bool
}

// UpdateProfileResult contains the updated account.
type UpdateProfileResult struct {
	Account         *account.Account           `json:"account"`
	ChangedFields   []string                   `json:"changed_fields"`
	NewAchievements []*achievement.Achievement `json:"new_achievements,omitempty"`
}

// UpdateProfileHandler handles UpdateProfileCommand.
type UpdateProfileHandler struct {
	core
}

// NewUpdateProfileHandler creates a new UpdateProfileHandler.
func NewUpdateProfileHandler(deps Deps) *UpdateProfileHandler {
	return &UpdateProfileHandler{core: newCore(deps)}
}

// Handle merges the patch under the user's lock.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*UpdateProfileResult, error) {
	c, done := h.lock(cmd.Username)
	defer done()

	acc, err := c.requireAccount(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}

	now := c.Clock.Now()
	changed := acc.UpdateProfile(cmd.Patch, cmd.Onboarding, now)
	if err := c.Accounts.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("update_profile: %w", err)
	}

	result := &UpdateProfileResult{Account: acc, ChangedFields: changed}
	c.publish(shared.NewProfileUpdatedEvent(cmd.Username.String(), cmd.Onboarding, changed, now))

	if cmd.Onboarding {
		a, added, err := c.award(ctx, cmd.Username, achievement.NameProfileCompleted, achievement.TypeMilestone, now)
		if err != nil {
			return nil, err
		}
		if added {
			result.NewAchievements = append(result.NewAchievements, a)
		}
	}

	c.Logger.Info("profile updated",
		logger.Username(cmd.Username.String()),
		logger.Strings("fields", changed),
		logger.Bool("onboarding", cmd.Onboarding),
	)
	return result, nil
}

// CompleteOnboarding is UpdateProfile with the onboarding flag set.
func (h *UpdateProfileHandler) CompleteOnboarding(ctx context.Context, username shared.Username, patch account.ProfilePatch) (*UpdateProfileResult, error) {
	return h.Handle(ctx, UpdateProfileCommand{Username: username, Patch: patch, Onboarding: true})
}
