package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/achievement"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/persistence/memory"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/service"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(e shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []shared.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

type env struct {
	deps     Deps
	clock    *timeutil.FixedClock
	events   *recorder
	hasher   *service.BcryptHasher
	sessions *memory.SessionStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := timeutil.NewFixedClock(time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	hasher, err := service.NewBcryptHasher(4)
	require.NoError(t, err)
	rec := &recorder{}

	return &env{
		deps: Deps{
			Accounts:     memory.NewAccountRepository(),
			Activities:   memory.NewActivityRepository(),
			Skills:       memory.NewSkillRepository(),
			Achievements: memory.NewAchievementRepository(),
			Goals:        memory.NewGoalRepository(),
			Clock:        clock,
			IDs:          service.UUIDGenerator{},
			Locks:        service.NewUserLocks(),
			Events:       rec,
		},
		clock:    clock,
		events:   rec,
		hasher:   hasher,
		sessions: memory.NewSessionStore(clock.Now),
	}
}

func (e *env) register(t *testing.T, username string) shared.Username {
	t.Helper()
	_, err := NewRegisterHandler(e.deps, e.hasher).Handle(context.Background(), RegisterCommand{
		Username: username, Email: username + "@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	return shared.Username(username)
}

func achievementNames(t *testing.T, e *env, u shared.Username) []string {
	t.Helper()
	list, err := e.deps.Achievements.ListByUser(context.Background(), u)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.Name)
	}
	return names
}

func TestAliceScenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	acc, err := NewRegisterHandler(e.deps, e.hasher).Handle(ctx, RegisterCommand{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.Username("alice"), acc.Username)

	auth := NewAuthHandler(e.deps, e.hasher, e.sessions, time.Hour)
	assert.True(t, auth.Authenticate(ctx, "alice", "secret1"))
	assert.False(t, auth.Authenticate(ctx, "alice", "wrong"))

	_, err = NewLogActivityHandler(e.deps).Handle(ctx, LogActivityCommand{
		Username: "alice", Type: "study", DurationMinutes: 60, Details: "intro",
	})
	require.NoError(t, err)

	skills := NewUpdateSkillHandler(e.deps)
	out, err := skills.Handle(ctx, UpdateSkillCommand{Username: "alice", Skill: "Python", Progress: 30, ExperiencePoints: 60})
	require.NoError(t, err)
	assert.Equal(t, 30, out.Progress.Progress.Int())
	assert.Equal(t, 60, out.Progress.ExperiencePoints)
	assert.Equal(t, []int{25}, out.Progress.MilestoneThresholds())
	require.Len(t, out.NewAchievements, 1)
	assert.Equal(t, "Python - 25% Complete", out.NewAchievements[0].Name)
	assert.Equal(t, achievement.TypeSkill, out.NewAchievements[0].Type)

	out, err = skills.Handle(ctx, UpdateSkillCommand{Username: "alice", Skill: "Python", Progress: 30, ExperiencePoints: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{25}, out.Progress.MilestoneThresholds())
	assert.Equal(t, 70, out.Progress.ExperiencePoints)
	assert.Empty(t, out.NewAchievements)

	assert.Equal(t, []string{"Python - 25% Complete"}, achievementNames(t, e, "alice"))
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	h := NewRegisterHandler(e.deps, e.hasher)

	cases := []RegisterCommand{
		{Username: "", Email: "a@x.com", Password: "secret1"},
		{Username: "alice", Email: "not-an-email", Password: "secret1"},
		{Username: "alice", Email: "a@x.com", Password: ""},
		{Username: "alice", Email: "a@x.com", Password: "short"},
	}
	for _, c := range cases {
		_, err := h.Handle(ctx, c)
		assert.True(t, shared.IsValidation(err), "%+v: %v", c, err)
	}

	exists, err := e.deps.Accounts.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister_Duplicate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")

	_, err := NewRegisterHandler(e.deps, e.hasher).Handle(ctx, RegisterCommand{
		Username: "alice", Email: "other@x.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)
	assert.EqualError(t, err, "account.Register: username already exists")
	assert.Contains(t, e.events.types(), shared.EventAccountRegistered)
}

func TestAuth_LoginLogoutResolve(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	auth := NewAuthHandler(e.deps, e.hasher, e.sessions, time.Hour)

	_, err := auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	res, err := auth.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	u, err := auth.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, shared.Username("alice"), u)

	require.NoError(t, auth.Logout(ctx, res.Token))
	_, err = auth.Resolve(ctx, res.Token)
	assert.True(t, shared.IsUnauthorized(err))

	_, err = auth.Resolve(ctx, "")
	assert.True(t, shared.IsUnauthorized(err))
}

func TestOnboarding_AwardsProfileCompletedOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewUpdateProfileHandler(e.deps)

	level := "Advanced"
	skills := []string{"Go", " go ", "SQL"}
	res, err := h.CompleteOnboarding(ctx, "alice", account.ProfilePatch{ExperienceLevel: &level, Skills: &skills})
	require.NoError(t, err)
	assert.True(t, res.Account.Profile.OnboardingCompleted)
	assert.Equal(t, []string{"Go", "SQL"}, res.Account.Profile.Skills)
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, achievement.TypeMilestone, res.NewAchievements[0].Type)

	res, err = h.CompleteOnboarding(ctx, "alice", account.ProfilePatch{})
	require.NoError(t, err)
	assert.Empty(t, res.NewAchievements)
	assert.Equal(t, []string{achievement.NameProfileCompleted}, achievementNames(t, e, "alice"))
	assert.Contains(t, e.events.types(), shared.EventAccountOnboarded)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	_, err := NewUpdateProfileHandler(newEnv(t).deps).Handle(context.Background(), UpdateProfileCommand{Username: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}

func TestLogActivity_StreakAndMilestones(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewLogActivityHandler(e.deps)

	for day := 0; day < 3; day++ {
		out, err := h.Handle(ctx, LogActivityCommand{Username: "alice", Type: "study", DurationMinutes: 30})
		require.NoError(t, err)
		assert.Equal(t, day+1, out.Streak.Current)
		if day == 2 {
			require.Len(t, out.NewAchievements, 1)
			assert.Equal(t, "3-Day Learning Streak", out.NewAchievements[0].Name)
		}
		e.clock.AddDays(1)
	}

	// Same-day duplicates count once.
	out, err := h.Handle(ctx, LogActivityCommand{Username: "alice", Type: "course", DurationMinutes: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Streak.Current)
	out, err = h.Handle(ctx, LogActivityCommand{Username: "alice", Type: "unknown-tag", DurationMinutes: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Streak.Current)
	assert.Equal(t, "other", out.Entry.Type.String())
}

func TestLogActivity_RejectsBadDuration(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewLogActivityHandler(e.deps)

	_, err := h.Handle(ctx, LogActivityCommand{Username: "alice", Type: "study", DurationMinutes: -5})
	assert.ErrorIs(t, err, shared.ErrNegativeDuration)
	_, err = h.Handle(ctx, LogActivityCommand{Username: "alice", Type: "study", DurationMinutes: 481})
	assert.True(t, shared.IsValidation(err))

	entries, err := e.deps.Activities.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateSkill_ClampAndAllMilestones(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewUpdateSkillHandler(e.deps)

	out, err := h.Handle(ctx, UpdateSkillCommand{Username: "alice", Skill: "Go", Progress: 250})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Progress.Progress.Int())
	assert.Equal(t, []int{25, 50, 75, 100}, out.Crossed)
	assert.Len(t, out.NewAchievements, 4)

	out, err = h.Handle(ctx, UpdateSkillCommand{Username: "alice", Skill: "go", Progress: -10})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Progress.Progress.Int())
	assert.Empty(t, out.Crossed)

	_, err = h.Handle(ctx, UpdateSkillCommand{Username: "alice", Skill: "  "})
	assert.ErrorIs(t, err, shared.ErrEmptySkillName)
}

func TestLogSkillPractice(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewUpdateSkillHandler(e.deps)

	_, err := h.Handle(ctx, UpdateSkillCommand{Username: "alice", Skill: "Python", Progress: 22})
	require.NoError(t, err)

	res, err := h.Practice(ctx, LogSkillPracticeCommand{Username: "alice", Skill: "Python", Minutes: 45})
	require.NoError(t, err)
	assert.Equal(t, "Practiced Python", res.Activity.Entry.Details)
	assert.Equal(t, "practice", res.Activity.Entry.Type.String())
	assert.Equal(t, 27, res.Skill.Progress.Progress.Int())
	assert.Equal(t, 45, res.Skill.Progress.ExperiencePoints)
	assert.Equal(t, []int{25}, res.Skill.Crossed)

	_, err = h.Practice(ctx, LogSkillPracticeCommand{Username: "alice", Skill: "Python", Minutes: -1})
	assert.ErrorIs(t, err, shared.ErrNegativeDuration)
	p, _, err := e.deps.Skills.Get(ctx, "alice", "python")
	require.NoError(t, err)
	assert.Equal(t, 27, p.Progress.Int())
}

func TestAward_Idempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewAwardHandler(e.deps)

	res, err := h.Handle(ctx, AwardCommand{Username: "alice", Name: "X", Type: "project"})
	require.NoError(t, err)
	assert.True(t, res.Awarded)
	assert.Equal(t, "🚀", res.Achievement.Icon)

	res, err = h.Handle(ctx, AwardCommand{Username: "alice", Name: "X", Type: "project"})
	require.NoError(t, err)
	assert.False(t, res.Awarded)

	res, err = h.Handle(ctx, AwardCommand{Username: "alice", Name: "Y", Type: "mystery"})
	require.NoError(t, err)
	assert.Equal(t, achievement.TypeGeneral, res.Achievement.Type)
	assert.Equal(t, "🏅", res.Achievement.Icon)

	assert.Equal(t, []string{"X", "Y"}, achievementNames(t, e, "alice"))
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewGoalHandler(e.deps)

	_, err := h.Set(ctx, SetGoalCommand{Username: "alice", Title: "  "})
	assert.True(t, shared.IsValidation(err))

	g, err := h.Set(ctx, SetGoalCommand{Username: "alice", Title: "Ship a Go service"})
	require.NoError(t, err)

	res, err := h.Achieve(ctx, "alice", g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Achieved", string(res.Goal.Status))
	assert.Equal(t, "Goal Achieved: Ship a Go service", res.Achievement.Name)

	_, err = h.Achieve(ctx, "alice", g.ID)
	assert.ErrorIs(t, err, shared.ErrGoalAlreadyAchieved)
	_, err = h.Achieve(ctx, "bob", g.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.Contains(t, e.events.types(), shared.EventGoalAchieved)
}

func TestRecordPathAndResume(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	h := NewRecordGenerationHandler(e.deps)

	res, err := h.RecordPath(ctx, RecordPathCommand{Username: "alice", Goal: "Data Scientist", Content: "# Path", CareerReadiness: true})
	require.NoError(t, err)
	assert.Equal(t, "path_0_20260402100000", res.Path.ID)
	assert.Equal(t, "Generated new learning path for: Data Scientist", res.Activity.Entry.Details)
	assert.Equal(t, 60, res.Activity.Entry.DurationMinutes)
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, achievement.NameFirstPath, res.NewAchievements[0].Name)

	e.clock.Advance(time.Minute)
	res, err = h.RecordPath(ctx, RecordPathCommand{Username: "alice", Goal: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, "path_1_20260402100100", res.Path.ID)
	assert.Empty(t, res.NewAchievements)

	rr, err := h.RecordResume(ctx, RecordResumeCommand{Username: "alice", Goal: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, 30, rr.Activity.Entry.DurationMinutes)
	assert.Equal(t, "resume", rr.Activity.Entry.Type.String())
	require.Len(t, rr.NewAchievements, 1)
	assert.Equal(t, achievement.NameFirstResume, rr.NewAchievements[0].Name)

	acc, err := e.deps.Accounts.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, acc.LearningPaths, 2)
	assert.Contains(t, e.events.types(), shared.EventLearningPathCreated)
	assert.Contains(t, e.events.types(), shared.EventResumeGenerated)
}

func TestRefreshStreaks_BreaksStaleStreaks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice")
	e.register(t, "bob")
	logs := NewLogActivityHandler(e.deps)

	_, err := logs.Handle(ctx, LogActivityCommand{Username: "alice", Type: "study", DurationMinutes: 20})
	require.NoError(t, err)
	e.clock.AddDays(1)
	_, err = logs.Handle(ctx, LogActivityCommand{Username: "alice", Type: "study", DurationMinutes: 20})
	require.NoError(t, err)
	_, err = logs.Handle(ctx, LogActivityCommand{Username: "bob", Type: "study", DurationMinutes: 20})
	require.NoError(t, err)

	e.clock.AddDays(2)
	res, err := NewRefreshStreaksHandler(e.deps).Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Users)
	assert.Equal(t, 2, res.Broken)

	s, err := e.deps.Activities.GetStreak(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 2, s.Longest)
	assert.Contains(t, e.events.types(), shared.EventStreakBroken)
}

// heldLocks reports whether any user lock is currently held.
type heldLocks struct {
	inner Locker
	mu    sync.Mutex
	held  int
}

func (l *heldLocks) Lock(u shared.Username) func() {
	unlock := l.inner.Lock(u)
	l.mu.Lock()
	l.held++
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.held--
		l.mu.Unlock()
		unlock()
	}
}

func (l *heldLocks) anyHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held > 0
}

type lockCheckingPublisher struct {
	locks     *heldLocks
	published int
	underLock int
}

func (p *lockCheckingPublisher) Publish(shared.Event) error {
	p.published++
	if p.locks.anyHeld() {
		p.underLock++
	}
	return nil
}

func TestEventsPublishedAfterUnlock(t *testing.T) {
	e := newEnv(t)
	locks := &heldLocks{inner: e.deps.Locks}
	pub := &lockCheckingPublisher{locks: locks}
	e.deps.Locks = locks
	e.deps.Events = pub
	u := e.register(t, "alice")
	ctx := context.Background()

	_, err := NewLogActivityHandler(e.deps).Handle(ctx, LogActivityCommand{
		Username: u, Type: "study", DurationMinutes: 30,
	})
	require.NoError(t, err)
	_, err = NewUpdateSkillHandler(e.deps).Handle(ctx, UpdateSkillCommand{Username: u, Skill: "Go", Progress: 60})
	require.NoError(t, err)
	_, err = NewRefreshStreaksHandler(e.deps).Handle(ctx)
	require.NoError(t, err)

	assert.Greater(t, pub.published, 4)
	assert.Zero(t, pub.underLock)
}
