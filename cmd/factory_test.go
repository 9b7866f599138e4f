package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type closerFunc func(ctx context.Context) error

func (f closerFunc) Close(ctx context.Context) error { return f(ctx) }

func TestCloseExecutorLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	closeExecutor(closerFunc(func(context.Context) error { return errors.New("connection reset") }), zap.New(core))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Error closing neo4j driver", entry.Message)
	assert.Equal(t, "connection reset", entry.ContextMap()["error"])
}

func TestCloseExecutorSilentOnSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	closed := false

	closeExecutor(closerFunc(func(context.Context) error { closed = true; return nil }), zap.New(core))

	assert.True(t, closed)
	assert.Zero(t, logs.Len())
}
