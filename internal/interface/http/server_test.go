package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/pathwise-hub/config"
	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/application/query"
	"github.com/pathwise/pathwise-hub/internal/application/saga"
	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/extract"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/persistence/memory"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/service"
	"github.com/pathwise/pathwise-hub/internal/interface/http/handlers"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *APIError       `json:"error"`
	Meta      *ResponseMeta   `json:"meta"`
	RequestID string          `json:"request_id"`
}

type testAPI struct {
	t        *testing.T
	server   *Server
	clock    *timeutil.FixedClock
	features *config.FeatureFlags
	health   *handlers.CompositeHealthChecker
}

func newTestAPI(t *testing.T, provider generation.Provider) *testAPI {
	t.Helper()

	clock := timeutil.NewFixedClock(time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC))
	hasher, err := service.NewBcryptHasher(4)
	require.NoError(t, err)

	cmd := command.Deps{
		Accounts:     memory.NewAccountRepository(),
		Activities:   memory.NewActivityRepository(),
		Skills:       memory.NewSkillRepository(),
		Achievements: memory.NewAchievementRepository(),
		Goals:        memory.NewGoalRepository(),
		Clock:        clock,
		IDs:          service.UUIDGenerator{},
		Locks:        service.NewUserLocks(),
	}
	qry := query.Deps{
		Accounts:     cmd.Accounts,
		Activities:   cmd.Activities,
		Skills:       cmd.Skills,
		Achievements: cmd.Achievements,
		Goals:        cmd.Goals,
		Clock:        clock,
	}
	sg := saga.Deps{
		Accounts: cmd.Accounts,
		Provider: provider,
		Recorder: command.NewRecordGenerationHandler(cmd),
		Timeout:  time.Second,
	}

	features := config.NewFeatureFlags()
	health := handlers.NewCompositeHealthChecker("test")

	srv := NewServer(DefaultConfig(), Dependencies{
		Register:      command.NewRegisterHandler(cmd, hasher),
		Auth:          command.NewAuthHandler(cmd, hasher, memory.NewSessionStore(clock.Now), time.Hour),
		Profile:       command.NewUpdateProfileHandler(cmd),
		Activities:    command.NewLogActivityHandler(cmd),
		Skills:        command.NewUpdateSkillHandler(cmd),
		Awards:        command.NewAwardHandler(cmd),
		Goals:         command.NewGoalHandler(cmd),
		Accounts:      query.NewAccountHandler(qry),
		Dashboard:     query.NewDashboardHandler(qry),
		Paths:         saga.NewGeneratePathSaga(sg),
		Resumes:       saga.NewGenerateResumeSaga(sg),
		Assistant:     saga.NewAssistantSaga(sg),
		Extractor:     extract.New(0, nil),
		Features:      features,
		HealthChecker: health,
		Logger:        logger.Nop(),
	})

	return &testAPI{t: t, server: srv, clock: clock, features: features, health: health}
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *testAPI) signUp(username string) string {
	a.t.Helper()

	code, _ := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username, "email": username + "@example.com", "password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, code)

	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username, "password": "secret1",
	})
	require.Equal(a.t, http.StatusOK, code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(a.t, login.Token)
	return login.Token
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t, nil)

	code, env := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "Alice@Example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
	assert.NotContains(t, string(env.Data), "password")

	var acc struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &acc))
	assert.Equal(t, "alice", acc.Username)
	assert.Equal(t, "alice@example.com", acc.Email)

	code, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
	assert.Equal(t, "already_exists", env.Error.Code)
	assert.Equal(t, "username already exists", env.Error.Message)
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t, nil)

	code, env := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "bob", "email": "not-an-email", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email: email")
	assert.Contains(t, env.Error.Details, "password: min=6")

	code, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "bob", "email": "b@example.com", "password": "secret1", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "malformed JSON body", env.Error.Message)
}

func TestLogin_UniformFailure(t *testing.T) {
	api := newTestAPI(t, nil)
	api.signUp("alice")

	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrong-password"},
		{"username": "nobody", "password": "secret1"},
	} {
		code, env := api.do(http.MethodPost, "/api/v1/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "invalid credentials", env.Error.Message)
	}
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t, nil)

	code, env := api.do(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", env.Error.Code)

	code, _ = api.do(http.MethodGet, "/api/v1/me", "no-such-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	token := api.signUp("alice")
	code, _ = api.do(http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProgressFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("alice")

	code, env := api.do(http.MethodPost, "/api/v1/me/onboarding", token, map[string]any{
		"skills":           []string{"Python", "SQL"},
		"experience_level": "Intermediate",
		"learning_style":   "Telepathy",
	})
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		Account struct {
			Profile struct {
				LearningStyle       string `json:"learning_style"`
				OnboardingCompleted bool   `json:"onboarding_completed"`
			} `json:"profile"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.True(t, profile.Account.Profile.OnboardingCompleted)
	assert.Equal(t, "Visual", profile.Account.Profile.LearningStyle)

	// Yesterday and today.
	api.clock.AddDays(-1)
	code, _ = api.do(http.MethodPost, "/api/v1/me/activities", token, map[string]any{
		"activity_type": "course", "duration_minutes": 45, "details": "SQL joins",
	})
	require.Equal(t, http.StatusCreated, code)
	api.clock.AddDays(1)
	code, _ = api.do(http.MethodPost, "/api/v1/me/activities", token, map[string]any{
		"activity_type": "study", "duration_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = api.do(http.MethodPost, "/api/v1/me/activities", token, map[string]any{
		"activity_type": "study", "duration_minutes": -5,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "duration cannot be negative", env.Error.Message)

	code, env = api.do(http.MethodPut, "/api/v1/me/skills/Python", token, map[string]any{
		"progress": 130, "experience_points": 10,
	})
	require.Equal(t, http.StatusOK, code)
	var sk struct {
		Crossed []int `json:"milestones_reached"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sk))
	assert.Equal(t, []int{25, 50, 75, 100}, sk.Crossed)

	code, env = api.do(http.MethodGet, "/api/v1/me/dashboard", token, nil)
	require.Equal(t, http.StatusOK, code)
	var snap struct {
		LearningStreak   int `json:"learning_streak"`
		TotalStudyTime   int `json:"total_study_time"`
		CompletedModules int `json:"completed_modules"`
		ActiveDays       int `json:"active_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 2, snap.LearningStreak)
	assert.Equal(t, 75, snap.TotalStudyTime)
	assert.Equal(t, 1, snap.CompletedModules)
	assert.Equal(t, 2, snap.ActiveDays)

	code, env = api.do(http.MethodGet, "/api/v1/me/activities", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.Meta.TotalCount)

	code, env = api.do(http.MethodGet, "/api/v1/me/insights", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Python")
}

func TestSkills_EscapedName(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("alice")

	type skillOutcome struct {
		Skill struct {
			Name             string `json:"skill_name"`
			Progress         int    `json:"progress"`
			ExperiencePoints int    `json:"experience_points"`
		} `json:"skill"`
		NewAchievements []struct {
			Name string `json:"achievement_name"`
		} `json:"new_achievements"`
	}

	code, env := api.do(http.MethodPut, "/api/v1/me/skills/UI%2FUX", token, map[string]any{"progress": 30})
	require.Equal(t, http.StatusOK, code)
	var first skillOutcome
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.Equal(t, "UI/UX", first.Skill.Name)
	require.Len(t, first.NewAchievements, 1)
	assert.Equal(t, "UI/UX - 25% Complete", first.NewAchievements[0].Name)

	// Negative XP leaves the accumulator alone but still records progress.
	code, env = api.do(http.MethodPut, "/api/v1/me/skills/UI%2FUX", token, map[string]any{
		"progress": 55, "experience_points": -5,
	})
	require.Equal(t, http.StatusOK, code)
	var second skillOutcome
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, "UI/UX", second.Skill.Name)
	assert.Equal(t, 55, second.Skill.Progress)
	assert.Zero(t, second.Skill.ExperiencePoints)

	code, env = api.do(http.MethodPost, "/api/v1/me/skills/C%2B%2B/practice", token, map[string]any{"minutes": 20})
	require.Equal(t, http.StatusCreated, code)
	var practice struct {
		Skill skillOutcome `json:"skill"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &practice))
	assert.Equal(t, "C++", practice.Skill.Skill.Name)

	code, env = api.do(http.MethodGet, "/api/v1/me/dashboard", token, nil)
	require.Equal(t, http.StatusOK, code)
	var snap struct {
		Skills []struct {
			Name string `json:"skill_name"`
		} `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	names := make([]string, 0, len(snap.Skills))
	for _, sk := range snap.Skills {
		names = append(names, sk.Name)
	}
	assert.ElementsMatch(t, []string{"UI/UX", "C++"}, names)
}

func TestGoals(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("alice")

	code, env := api.do(http.MethodPost, "/api/v1/me/goals", token, map[string]string{
		"title": "Ship a portfolio", "target_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, code)
	var g struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &g))

	code, _ = api.do(http.MethodPost, "/api/v1/me/goals/"+g.ID+"/achieve", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, "/api/v1/me/goals/"+g.ID+"/achieve", token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "goal already achieved", env.Error.Message)

	code, _ = api.do(http.MethodPost, "/api/v1/me/goals/missing/achieve", token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(http.MethodPost, "/api/v1/me/goals", token, map[string]string{
		"title": "x", "target_date": "01/09/2026",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "target_date: datetime")
}

func TestAward(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("alice")

	body := map[string]string{"name": "Shipped MVP", "type": "project"}
	code, _ := api.do(http.MethodPost, "/api/v1/me/achievements", token, body)
	assert.Equal(t, http.StatusCreated, code)

	code, env := api.do(http.MethodPost, "/api/v1/me/achievements", token, body)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"awarded":false`)
}

func TestPaths(t *testing.T) {
	api := newTestAPI(t, &generation.Fake{Response: "# Plan\n\n*Learn Go*"})
	token := api.signUp("alice")

	code, env := api.do(http.MethodPost, "/api/v1/me/paths", token, map[string]any{
		"goal": "Backend Developer",
	})
	require.Equal(t, http.StatusCreated, code)
	var res struct {
		Path struct {
			ID          string `json:"id"`
			AIGenerated bool   `json:"ai_generated"`
		} `json:"path"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Path.AIGenerated)
	assert.Equal(t, "path_0_20260610090000", res.Path.ID)

	code, env = api.do(http.MethodGet, "/api/v1/me/paths", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Meta.TotalCount)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/paths/"+res.Path.ID+"/html?download=1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), res.Path.ID+".html")
	assert.Contains(t, rec.Body.String(), "<em>Learn Go</em>")

	code, _ = api.do(http.MethodGet, "/api/v1/me/paths/path_9_x/html", token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(http.MethodPost, "/api/v1/me/paths", token, map[string]any{
		"goal": "Chef", "template": "fancy",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "template: oneof")
}

func TestPaths_AIGenerationDisabledForUser(t *testing.T) {
	fake := &generation.Fake{Response: "unused"}
	api := newTestAPI(t, fake)
	token := api.signUp("alice")
	api.features.SetUserOverride("alice", config.FeatureAIGeneration, false)

	code, env := api.do(http.MethodPost, "/api/v1/me/paths", token, map[string]any{"goal": "Chef"})
	require.Equal(t, http.StatusCreated, code)
	assert.Zero(t, fake.Calls())
	assert.Contains(t, string(env.Data), `"career_readiness":true`)
}

func TestPaths_UsePreviousSkillsDefault(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("alice")

	code, _ := api.do(http.MethodPost, "/api/v1/me/onboarding", token, map[string]any{
		"skills": []string{"Kubernetes"},
	})
	require.Equal(t, http.StatusOK, code)

	content := func(body map[string]any) string {
		t.Helper()
		code, env := api.do(http.MethodPost, "/api/v1/me/paths", token, body)
		require.Equal(t, http.StatusCreated, code)
		var res struct {
			Path struct {
				Content string `json:"content"`
			} `json:"path"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &res))
		return res.Path.Content
	}

	assert.Contains(t, content(map[string]any{"goal": "Chef"}), "Kubernetes")
	assert.Contains(t, content(map[string]any{"goal": "Chef", "use_previous_skills": true}), "Kubernetes")
	assert.NotContains(t, content(map[string]any{"goal": "Chef", "use_previous_skills": false}), "Kubernetes")
}

func TestResumeAndAssistant(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("alice")

	code, env := api.do(http.MethodPost, "/api/v1/me/resume", token, map[string]string{
		"goal": "Data Analyst", "style": "creative_colorful",
	})
	require.Equal(t, http.StatusCreated, code)
	var resume struct {
		HTML        string `json:"html"`
		AIGenerated bool   `json:"ai_generated"`
		Notice      string `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resume))
	assert.False(t, resume.AIGenerated)
	assert.Equal(t, saga.TemplateNotice, resume.Notice)
	assert.Contains(t, resume.HTML, "<title>alice - Resume</title>")

	code, env = api.do(http.MethodPost, "/api/v1/me/assistant", token, map[string]string{"question": "Which course next?"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"ai_generated":false`)

	api.features.SetUserOverride("alice", config.FeatureAssistant, false)
	code, env = api.do(http.MethodPost, "/api/v1/me/assistant", token, map[string]string{"question": "Which course next?"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "feature_disabled", env.Error.Code)
}

func TestExtractUpload(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "resume.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Go developer with five years of experience."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var res extract.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "text/plain", res.ContentType)
	assert.True(t, res.Decoded)
	assert.Equal(t, "Go developer with five years of experience.", res.Text)

	code, env := api.do(http.MethodPost, "/api/v1/uploads/extract", token, map[string]string{"a": "b"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "expected multipart/form-data", env.Error.Message)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)

	code, _ := api.do(http.MethodGet, "/live", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	api.health.AddCheck("postgres", func(context.Context) error { return errors.New("connection refused") })

	code, env = api.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Some checks failed: postgres", env.Error.Message)

	code, env = api.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Error.Code)
}
