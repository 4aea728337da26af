package saga

import (
	"context"
	"strings"

	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// AskInput is a question for the career assistant.
type AskInput struct {
	Username shared.Username
	Question string
}

// AskResult is the assistant's answer.
type AskResult struct {
	Answer      string `json:"answer"`
	AIGenerated bool   `json:"ai_generated"`
}

// AssistantSaga answers career questions. It reads the profile and writes nothing.
type AssistantSaga struct {
	generator
}

// NewAssistantSaga creates an AssistantSaga.
func NewAssistantSaga(deps Deps) *AssistantSaga {
	return &AssistantSaga{generator: newGenerator(deps)}
}

// Ask returns the provider's answer or generation.AssistantFallback.
func (s *AssistantSaga) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	q := strings.TrimSpace(in.Question)
	if q == "" {
		return nil, shared.NewDomainError("assistant", "Ask", shared.ErrEmptyValue, "question is required")
	}

	acc, err := s.Accounts.Get(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	answer, err := s.generate(ctx, "ask_assistant", generation.BuildAssistantPrompt(acc.Profile, q))
	if err != nil {
		return &AskResult{Answer: generation.AssistantFallback}, nil
	}
	return &AskResult{Answer: answer, AIGenerated: true}, nil
}
