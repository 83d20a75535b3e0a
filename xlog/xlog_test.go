package xlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger_CapturesEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Debugw("dead delegate reaped", "event", "changed")
	Warnf("submit failed %d", 3)
	With(zap.String("event", "closed")).Errorx("boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "dead delegate reaped", entries[0].Message)
	assert.Equal(t, "changed", entries[0].ContextMap()["event"])
	assert.Equal(t, "submit failed 3", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "closed", entries[2].ContextMap()["event"])
}

func TestSetLogger_NilDiscards(t *testing.T) {
	SetLogger(nil)
	assert.False(t, Enabled(zapcore.ErrorLevel))
	Infof("dropped %s", "silently")
}

func TestSetupLogger_FileOutput(t *testing.T) {
	SetupLogger(filepath.Join(t.TempDir(), "events.log"))
	defer SetLogger(nil)

	SetLevel(zapcore.DebugLevel)
	defer SetLevel(zapcore.InfoLevel)
	assert.True(t, Enabled(zapcore.DebugLevel))
	Infow("written to file", "n", 1)
	CloseLogger()
}
