package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogger_WithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.With(Component("tracker")).Info("activity logged", Username("alice"), Minutes(60))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "activity logged", entries[0].Message)
		assert.Equal(t, "tracker", ctx["component"])
		assert.Equal(t, "alice", ctx["username"])
		assert.EqualValues(t, 60, ctx["minutes"])
	}
}

func TestErr_NilIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Warn("no error", Err(nil))
	l.Warn("with error", Err(errors.New("boom")))

	entries := logs.All()
	assert.Len(t, entries, 2)
	_, ok := entries[0].ContextMap()["error"]
	assert.False(t, ok)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestFromContext(t *testing.T) {
	l := Nop()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
