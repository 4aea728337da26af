package saga

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE PATH SAGA
// Flow: Validate → Read Profile → Provider (no lock) → Template fallback →
//
//	RecordPath (path + study activity + first-path badge)
//
// ══════════════════════════════════════════════════════════════════════════════

// GeneratePathInput is the learning path request.
type GeneratePathInput struct {
	Username shared.Username
	Request  generation.PathRequest

	// Template forces a deterministic generator ("career" or "basic")
	// and skips the provider. Empty means "provider first".
	Template string
}

// GeneratePathResult is returned to the caller.
type GeneratePathResult struct {
	Path            account.PathRecord         `json:"path"`
	Resources       generation.FieldResources  `json:"resources"`
	NewAchievements []*achievement.Achievement `json:"new_achievements,omitempty"`
	Notice          string                     `json:"notice,omitempty"`
}

// GeneratePathSaga produces and stores learning paths.
type GeneratePathSaga struct {
	generator
}

// NewGeneratePathSaga creates a GeneratePathSaga.
func NewGeneratePathSaga(deps Deps) *GeneratePathSaga {
	return &GeneratePathSaga{generator: newGenerator(deps)}
}

// Execute runs the saga. Provider problems never surface as errors:
// the caller gets a template path with AIGenerated=false instead.
func (s *GeneratePathSaga) Execute(ctx context.Context, in GeneratePathInput) (*GeneratePathResult, error) {
	in.Request.Goal = strings.TrimSpace(in.Request.Goal)
	if in.Request.Goal == "" {
		return nil, shared.NewDomainError("path", "Generate", shared.ErrEmptyValue, "learning goal is required")
	}

	acc, err := s.Accounts.Get(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	content, ai, career, err := s.produce(ctx, acc.Profile, in)
	if err != nil {
		return nil, err
	}

	rec, err := s.Recorder.RecordPath(ctx, command.RecordPathCommand{
		Username:        in.Username,
		Goal:            in.Request.Goal,
		Content:         content,
		AIGenerated:     ai,
		CareerReadiness: career,
	})
	if err != nil {
		return nil, fmt.Errorf("generate_path: %w", err)
	}

	result := &GeneratePathResult{
		Path:            rec.Path,
		Resources:       generation.ResourcesForGoal(in.Request.Goal),
		NewAchievements: rec.NewAchievements,
	}
	if !ai {
		result.Notice = TemplateNotice
	}

	s.Logger.Info("learning path generated",
		logger.Username(in.Username.String()),
		logger.String("goal", in.Request.Goal),
		logger.AIGenerated(ai),
	)
	return result, nil
}

// produce returns the content and whether it came from the provider and
// whether it is a career-readiness template.
func (s *GeneratePathSaga) produce(ctx context.Context, p account.Profile, in GeneratePathInput) (string, bool, bool, error) {
	if strings.TrimSpace(in.Template) == "" {
		text, err := s.generate(ctx, "generate_path", generation.BuildPathPrompt(p, in.Request))
		if err == nil {
			return text, true, false, nil
		}
	}

	kind := generation.ParseTemplateKind(in.Template)
	content, err := generation.RenderPathTemplate(kind, p, in.Request)
	if err != nil {
		return "", false, false, fmt.Errorf("generate_path: render %s template: %w", kind, err)
	}
	return content, false, kind == generation.TemplateCareer, nil
}
