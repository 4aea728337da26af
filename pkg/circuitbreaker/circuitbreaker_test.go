package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func fail(context.Context) error { return errBoom }
func ok(context.Context) error { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	var changes []State
	cb := New("test",
		WithFailureThreshold(2),
		WithOnStateChange(func(_ string, _, to State) { changes = append(changes, to) }),
	)

	assert.ErrorIs(t, cb.Execute(context.Background(), fail), errBoom)
	assert.True(t, cb.IsClosed())
	assert.ErrorIs(t, cb.Execute(context.Background(), fail), errBoom)
	assert.True(t, cb.IsOpen())

	called := false
	err := cb.Execute(context.Background(), func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []State{StateOpen}, changes)
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	c := &clock{now: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)}
	cb := New("test", WithFailureThreshold(1), WithSuccessThreshold(1), WithTimeout(time.Minute), WithClock(c.Now))

	_ = cb.Execute(context.Background(), fail)
	require.True(t, cb.IsOpen())

	c.now = c.now.Add(30 * time.Second)
	assert.ErrorIs(t, cb.Execute(context.Background(), ok), ErrCircuitOpen)

	c.now = c.now.Add(31 * time.Second)
	require.NoError(t, cb.Execute(context.Background(), ok))
	assert.True(t, cb.IsClosed())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	c := &clock{now: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)}
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Second), WithClock(c.Now))

	_ = cb.Execute(context.Background(), fail)
	c.now = c.now.Add(2 * time.Second)
	_ = cb.Execute(context.Background(), fail)

	assert.True(t, cb.IsOpen())
	assert.Equal(t, 2, cb.Counts().TotalFailures)
}

func TestBreaker_CancellationIsNotFailure(t *testing.T) {
	cb := New("test", WithFailureThreshold(1))
	_ = cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.True(t, cb.IsClosed())
}

func TestBreaker_IsFailureFilter(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithIsFailure(func(err error) bool { return !errors.Is(err, errBoom) }))
	_ = cb.Execute(context.Background(), fail)
	assert.True(t, cb.IsClosed())
}

func TestExecuteWithData(t *testing.T) {
	cb := GeminiBreaker(nil)
	out, err := ExecuteWithData(context.Background(), cb, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, "gemini-api", cb.Name())
}

func TestReset(t *testing.T) {
	cb := DatabaseBreaker(nil)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	require.True(t, cb.IsOpen())

	cb.Reset()
	assert.True(t, cb.IsClosed())
	assert.Equal(t, Counts{}, cb.Counts())
	assert.Equal(t, "closed", cb.State().String())
}
