package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/user"
)

func newTestLogger(level string) (*RollbarLogger, *bytes.Buffer) {
	conf := core.NewTestConfig()
	conf.LogLevel = level
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(buf, conf)
	logger.Enable(false)
	return logger, buf
}

func TestRollbarLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		log     func(l *RollbarLogger)
		wantOut bool
	}{
		{name: "debug written at debug level", level: "debug", log: func(l *RollbarLogger) { l.Debug("hello") }, wantOut: true},
		{name: "debug dropped at info level", level: "info", log: func(l *RollbarLogger) { l.Debug("hello") }, wantOut: false},
		{name: "warn written at info level", level: "info", log: func(l *RollbarLogger) { l.Warn("hello") }, wantOut: true},
		{name: "nothing written when disabled", level: "disabled", log: func(l *RollbarLogger) { l.Error("hello") }, wantOut: false},
		{name: "unknown level falls back to info", level: "loud", log: func(l *RollbarLogger) { l.Info("hello") }, wantOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(tt.level)
			tt.log(logger)
			assert.Equal(t, tt.wantOut, buf.Len() > 0)
		})
	}
}

func TestRollbarLogger_Fields(t *testing.T) {
	logger, buf := newTestLogger("debug")
	usr := user.User{ID: "u1", Email: "ada@skillx.io"}

	logger.Error("boom", errors.New("kaput"), map[string]interface{}{"skill_id": "s1"}, usr)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["message"])
	assert.Equal(t, "kaput", line["error"])
	assert.Equal(t, "s1", line["skill_id"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "SkillX", line["app"])
}
