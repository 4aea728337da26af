package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.Equal(t, 24*time.Hour, cfg.App.SessionTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.True(t, cfg.Redis.Disabled)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.ArchiveCron)
	assert.True(t, cfg.Features.IsEnabled(FeatureAIGeneration, nil))
	assert.False(t, cfg.Features.IsEnabled(FeatureRedisEvents, nil))
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV_FILE", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("GEMINI_API_KEY", " key-from-env ")
	t.Setenv("GEMINI_MAX_RETRIES", "3")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "key-from-env", cfg.Gemini.APIKey)
	assert.Equal(t, 3, cfg.Gemini.MaxRetries)
	assert.False(t, cfg.Redis.Disabled)
	assert.Equal(t, "postgres://app:secret@db:5432/postgres?sslmode=require", cfg.Database.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PATHWISE_TEST_MODEL=from-file\nHTTP_PORT=7070\n"), 0o600))
	t.Setenv("APP_ENV_FILE", path)
	t.Setenv("HTTP_PORT", "8081")
	t.Cleanup(func() { _ = os.Unsetenv("PATHWISE_TEST_MODEL") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", os.Getenv("PATHWISE_TEST_MODEL"))
	// Existing variables win over the file.
	assert.Equal(t, 8081, cfg.HTTP.Port)
}

func TestValidate_AggregatesErrors(t *testing.T) {
	t.Setenv("APP_ENV_FILE", "")
	t.Setenv("APP_ENV", "qa")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	t.Setenv("HTTP_PORT", "70000")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("SCHEDULER_STREAK_CRON", "every day")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "configuration errors:")
	assert.Contains(t, msg, `APP_ENV "qa"`)
	assert.Contains(t, msg, "APP_TIMEZONE")
	assert.Contains(t, msg, "HTTP_PORT must be 1-65535")
	assert.Contains(t, msg, "SCHEDULER_STREAK_CRON")
	assert.NotContains(t, msg, "GEMINI_API_KEY")
}

func TestFeatureFlags_Environment(t *testing.T) {
	t.Setenv("FEATURE_GENERATION_AI", "false")
	t.Setenv("FEATURE_GENERATION_ASSISTANT", "0")
	t.Setenv("FEATURE_EVENTS_REDIS", "true")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureAIGeneration, nil))
	assert.False(t, ff.IsEnabled(FeatureAssistant, ForUser("alice")))
	assert.True(t, ff.IsEnabled(FeatureRedisEvents, nil))
	assert.False(t, ff.IsEnabled("unknown.flag", nil))
}

func TestFeatureFlags_RolloutAndOverrides(t *testing.T) {
	ff := NewFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureAssistant, 50))

	// Bucketing is stable for the same user.
	first := ff.IsEnabled(FeatureAssistant, ForUser("alice"))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureAssistant, ForUser("alice")))
	}

	ff.SetUserOverride("alice", FeatureAssistant, !first)
	assert.Equal(t, !first, ff.IsEnabled(FeatureAssistant, ForUser("alice")))
	ff.ClearUserOverrides("alice")
	assert.Equal(t, first, ff.IsEnabled(FeatureAssistant, ForUser("alice")))

	require.NoError(t, ff.DisableFeature(FeatureUploads))
	assert.False(t, ff.IsEnabled(FeatureUploads, ForUser("bob")))

	assert.ErrorIs(t, ff.SetRolloutPercent("nope", 10), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureUploads, 101), ErrInvalidRolloutPercent)
}

func TestFeatureFlags_TimeWindow(t *testing.T) {
	ff := NewFeatureFlags()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	ff.now = func() time.Time { return now }

	from := now.Add(time.Hour)
	ff.features[FeatureUploads].EnabledFrom = &from
	assert.False(t, ff.IsEnabled(FeatureUploads, nil))

	now = now.Add(2 * time.Hour)
	assert.True(t, ff.IsEnabled(FeatureUploads, nil))

	names := make([]string, 0)
	for _, f := range ff.GetAllFeatures() {
		names = append(names, f.Name)
	}
	assert.IsIncreasing(t, names)
}
