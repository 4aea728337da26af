package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/persistence/memory"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/service"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

type harness struct {
	cmd  command.Deps
	deps Deps
}

func newHarness(t *testing.T, provider generation.Provider) *harness {
	t.Helper()
	now := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	cmd := command.Deps{
		Accounts:     memory.NewAccountRepository(),
		Activities:   memory.NewActivityRepository(),
		Skills:       memory.NewSkillRepository(),
		Achievements: memory.NewAchievementRepository(),
		Goals:        memory.NewGoalRepository(),
		Clock:        timeutil.NewFixedClock(now),
		IDs:          service.UUIDGenerator{},
		Locks:        service.NewUserLocks(),
	}

	acc, err := account.NewAccount("alice", "a@x.com", "hash", now)
	require.NoError(t, err)
	acc.Profile.Skills = []string{"Python", "SQL"}
	require.NoError(t, cmd.Accounts.Create(context.Background(), acc))

	return &harness{
		cmd: cmd,
		deps: Deps{
			Accounts: cmd.Accounts,
			Provider: provider,
			Recorder: command.NewRecordGenerationHandler(cmd),
			Timeout:  time.Second,
		},
	}
}

func TestGeneratePath_ProviderAnswer(t *testing.T) {
	fake := &generation.Fake{Response: "# My AI path"}
	h := newHarness(t, fake)

	res, err := NewGeneratePathSaga(h.deps).Execute(context.Background(), GeneratePathInput{
		Username: "alice",
		Request:  generation.PathRequest{Goal: "Data Scientist", UsePreviousSkills: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "# My AI path", res.Path.Content)
	assert.True(t, res.Path.AIGenerated)
	assert.False(t, res.Path.CareerReadiness)
	assert.Empty(t, res.Notice)
	assert.Equal(t, generation.FieldTechnology, res.Resources.Field)
	assert.Contains(t, fake.LastPrompt(), "Primary Goal: Data Scientist")
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, achievement.NameFirstPath, res.NewAchievements[0].Name)

	entries, err := h.cmd.Activities.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 60, entries[0].DurationMinutes)
	assert.Equal(t, "Generated new learning path for: Data Scientist", entries[0].Details)
}

func TestGeneratePath_ProviderFailureFallsBack(t *testing.T) {
	h := newHarness(t, &generation.Fake{Err: errors.New("bad key")})

	res, err := NewGeneratePathSaga(h.deps).Execute(context.Background(), GeneratePathInput{
		Username: "alice",
		Request:  generation.PathRequest{Goal: "Marketing Manager"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Path.Content)
	assert.Contains(t, res.Path.Content, "# 🎯 Career Readiness Path: Marketing Manager")
	assert.False(t, res.Path.AIGenerated)
	assert.True(t, res.Path.CareerReadiness)
	assert.Equal(t, TemplateNotice, res.Notice)

	acc, err := h.cmd.Accounts.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, acc.LearningPaths, 1)
	assert.Equal(t, "path_0_20260501093000", acc.LearningPaths[0].ID)
}

func TestGeneratePath_NoProviderAndEmptyAnswer(t *testing.T) {
	for name, p := range map[string]generation.Provider{
		"nil":   nil,
		"empty": generation.ProviderFunc(func(context.Context, string) (string, error) { return "  ", nil }),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, p)
			res, err := NewGeneratePathSaga(h.deps).Execute(context.Background(), GeneratePathInput{
				Username: "alice",
				Request:  generation.PathRequest{Goal: "Chef"},
			})
			require.NoError(t, err)
			assert.False(t, res.Path.AIGenerated)
			assert.Contains(t, res.Path.Content, "Career Readiness Path: Chef")
		})
	}
}

func TestGeneratePath_ProviderTimeout(t *testing.T) {
	slow := generation.ProviderFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	h := newHarness(t, slow)
	h.deps.Timeout = 20 * time.Millisecond

	res, err := NewGeneratePathSaga(h.deps).Execute(context.Background(), GeneratePathInput{
		Username: "alice",
		Request:  generation.PathRequest{Goal: "Web Developer"},
	})
	require.NoError(t, err)
	assert.False(t, res.Path.AIGenerated)
}

func TestGeneratePath_BasicTemplateSkipsProvider(t *testing.T) {
	fake := &generation.Fake{Response: "unused"}
	h := newHarness(t, fake)

	res, err := NewGeneratePathSaga(h.deps).Execute(context.Background(), GeneratePathInput{
		Username: "alice",
		Request:  generation.PathRequest{Goal: "Web Development"},
		Template: "basic",
	})
	require.NoError(t, err)
	assert.Zero(t, fake.Calls())
	assert.Contains(t, res.Path.Content, "# 🎯 Learning Path: Web Development")
	assert.False(t, res.Path.CareerReadiness)
}

func TestGeneratePath_Validation(t *testing.T) {
	h := newHarness(t, &generation.Fake{})
	s := NewGeneratePathSaga(h.deps)

	_, err := s.Execute(context.Background(), GeneratePathInput{Username: "alice"})
	assert.True(t, shared.IsValidation(err))

	_, err = s.Execute(context.Background(), GeneratePathInput{
		Username: "ghost",
		Request:  generation.PathRequest{Goal: "x"},
	})
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestGenerateResume(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &generation.Fake{Err: errors.New("offline")})

	res, err := NewGenerateResumeSaga(h.deps).Execute(ctx, GenerateResumeInput{
		Username: "alice",
		Goal:     "Backend Engineer",
		Style:    "Tech Innovative",
	})
	require.NoError(t, err)

	assert.False(t, res.AIGenerated)
	assert.Equal(t, generation.StyleTechInnovative, res.Style.Style)
	assert.Contains(t, res.Markdown, "# ✨ alice ✨")
	assert.Contains(t, res.HTML, "<title>alice - Resume</title>")
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, achievement.NameFirstResume, res.NewAchievements[0].Name)

	entries, err := h.cmd.Activities.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "resume", entries[0].Type.String())
	assert.Equal(t, "Generated resume for: Backend Engineer", entries[0].Details)
}

func TestGenerateResume_ProviderAnswer(t *testing.T) {
	h := newHarness(t, &generation.Fake{Response: "## Alice\n\n*Go engineer*"})

	res, err := NewGenerateResumeSaga(h.deps).Execute(context.Background(), GenerateResumeInput{
		Username: "alice",
		FullName: "Alice Doe",
		Goal:     "Backend Engineer",
	})
	require.NoError(t, err)
	assert.True(t, res.AIGenerated)
	assert.Equal(t, generation.StyleModernMinimal, res.Style.Style)
	assert.Contains(t, res.HTML, "<em>Go engineer</em>")
	assert.Empty(t, res.Notice)
}

func TestAssistant(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, &generation.Fake{Response: "Learn Go."})
	res, err := NewAssistantSaga(h.deps).Ask(ctx, AskInput{Username: "alice", Question: "What next?"})
	require.NoError(t, err)
	assert.Equal(t, "Learn Go.", res.Answer)
	assert.True(t, res.AIGenerated)

	h = newHarness(t, nil)
	res, err = NewAssistantSaga(h.deps).Ask(ctx, AskInput{Username: "alice", Question: "What next?"})
	require.NoError(t, err)
	assert.Equal(t, generation.AssistantFallback, res.Answer)
	assert.False(t, res.AIGenerated)

	entries, err := h.cmd.Activities.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = NewAssistantSaga(h.deps).Ask(ctx, AskInput{Username: "alice", Question: " "})
	assert.True(t, shared.IsValidation(err))
}
