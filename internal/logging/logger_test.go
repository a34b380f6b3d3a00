package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "production", cfg: DefaultConfig()},
		{name: "development", cfg: DevelopmentConfig()},
		{name: "no outputs falls back to stdout", cfg: Config{Level: "warn"}},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger.Logger)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	level, err = parseLevel("nope")
	assert.Error(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}

func TestComponentNamesAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	logger.Component("shell").With(zap.String("session_id", "sess_1")).Info("started")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "shell", entry.LoggerName)
	assert.Equal(t, "sess_1", entry.ContextMap()["session_id"])
}

func TestSessionLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	logger.Session("sess_01", 503).Info("command", zap.String("name", "ls"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "shell", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "sess_01", fields["session_id"])
	assert.Equal(t, int64(503), fields["code"])
	assert.Equal(t, "ls", fields["name"])
}

func TestEncoding(t *testing.T) {
	assert.Equal(t, "console", encodingFormat(true))
	assert.Equal(t, "json", encodingFormat(false))
	assert.Equal(t, "M", encoderConfig(true).MessageKey)
	assert.Equal(t, "message", encoderConfig(false).MessageKey)
}

func TestWrapNil(t *testing.T) {
	logger := Wrap(nil)
	assert.NotPanics(t, func() { logger.Info("discarded") })
}
