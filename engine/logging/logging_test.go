package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))

	Named("renderer").Info("program created", zap.String("program", "update"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "renderer", entries[0].LoggerName)
	assert.Equal(t, "update", entries[0].ContextMap()["program"])
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	core, _ := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	SetLogger(nil)

	assert.False(t, Logger().Core().Enabled(zapcore.ErrorLevel))
}
