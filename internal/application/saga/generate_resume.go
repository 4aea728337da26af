package saga

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/markdown"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE RESUME SAGA
// Flow: Validate → Read Profile + Latest Path → Provider (no lock) →
//
//	Template fallback → RecordResume → Render HTML
//
// ══════════════════════════════════════════════════════════════════════════════

// GenerateResumeInput is the resume request.
type GenerateResumeInput struct {
	Username         shared.Username
	FullName         string // defaults to the username
	Goal             string
	AdditionalSkills string
	Style            string
}

// GenerateResumeResult carries the resume in both formats.
type GenerateResumeResult struct {
	Markdown        string                     `json:"markdown"`
	HTML            string                     `json:"html"`
	Style           generation.StyleDescriptor `json:"style"`
	AIGenerated     bool                       `json:"ai_generated"`
	NewAchievements []*achievement.Achievement `json:"new_achievements,omitempty"`
	Notice          string                     `json:"notice,omitempty"`
}

// GenerateResumeSaga produces resumes. The resume text itself is not stored.
type GenerateResumeSaga struct {
	generator
}

// NewGenerateResumeSaga creates a GenerateResumeSaga.
func NewGenerateResumeSaga(deps Deps) *GenerateResumeSaga {
	return &GenerateResumeSaga{generator: newGenerator(deps)}
}

// Execute runs the saga.
func (s *GenerateResumeSaga) Execute(ctx context.Context, in GenerateResumeInput) (*GenerateResumeResult, error) {
	in.Goal = strings.TrimSpace(in.Goal)
	if in.Goal == "" {
		return nil, shared.NewDomainError("resume", "Generate", shared.ErrEmptyValue, "career goal is required")
	}

	acc, err := s.Accounts.Get(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = acc.Username.String()
	}
	input := generation.ResumeInput{
		Name:             name,
		Email:            acc.Email.String(),
		Goal:             in.Goal,
		AdditionalSkills: in.AdditionalSkills,
		Profile:          acc.Profile,
		LatestPath:       acc.LatestPath(),
		Style:            generation.ParseResumeStyle(in.Style),
	}

	md, err := s.generate(ctx, "generate_resume", generation.BuildResumePrompt(input))
	ai := err == nil
	if !ai {
		if md, err = generation.RenderTemplateResume(input); err != nil {
			return nil, fmt.Errorf("generate_resume: render template: %w", err)
		}
	}

	rec, err := s.Recorder.RecordResume(ctx, command.RecordResumeCommand{
		Username:    in.Username,
		Goal:        in.Goal,
		AIGenerated: ai,
	})
	if err != nil {
		return nil, fmt.Errorf("generate_resume: %w", err)
	}

	result := &GenerateResumeResult{
		Markdown:        md,
		HTML:            markdown.Document(name+" - Resume", md),
		Style:           input.Style.Describe(),
		AIGenerated:     ai,
		NewAchievements: rec.NewAchievements,
	}
	if !ai {
		result.Notice = TemplateNotice
	}

	s.Logger.Info("resume generated",
		logger.Username(in.Username.String()),
		logger.String("style", string(input.Style)),
		logger.AIGenerated(ai),
	)
	return result, nil
}
