package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := New("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Warnw("warn", map[string]any{"k": "v"})
	l.Errorf("error")
}

func TestStructuredOutput(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	l := NewWithWriter("grid", &buf)
	l.Warnw("cell skipped", map[string]any{"row": 3, "reason": "malformed"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "grid", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "cell skipped", entry["message"])
	assert.Equal(t, "malformed", entry["reason"])
	assert.EqualValues(t, 3, entry["row"])
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	assert.True(t, SetLevel("error"))
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	assert.True(t, SetLevel(""))
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	assert.False(t, SetLevel("loud"))
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	var buf bytes.Buffer
	NewWithWriter("quiet", &buf).Warnf("dropped")
	assert.Empty(t, buf.String())
}
