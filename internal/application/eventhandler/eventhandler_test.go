package eventhandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/messaging"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

func TestRegister_RoutesEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.NewFromZap(zap.New(core))

	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{AsyncMode: false})
	defer bus.Close()

	audit := NewAuditLog(log)
	require.NoError(t, Register(messaging.NewDispatcher(bus), audit, NewProgressWatcher(log)))

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(shared.NewAchievementAwardedEvent("alice", "First Resume Generated", "general", "🏅", at)))
	require.NoError(t, bus.Publish(shared.NewStreakChangedEvent("alice", 4, 0, at)))
	require.NoError(t, bus.Publish(shared.NewStreakChangedEvent("alice", 0, 1, at)))

	assert.Equal(t, []EventCount{
		{Type: shared.EventAchievementAwarded, Count: 1},
		{Type: shared.EventStreakBroken, Count: 1},
		{Type: shared.EventStreakUpdated, Count: 1},
	}, audit.Counts())

	assert.Equal(t, 3, logs.FilterMessage("domain event").Len())
	assert.Equal(t, 1, logs.FilterMessage("🏅 First Resume Generated unlocked").Len())

	broken := logs.FilterMessage("learning streak broken").All()
	require.Len(t, broken, 1)
	assert.Equal(t, "alice", broken[0].ContextMap()["username"])
}
