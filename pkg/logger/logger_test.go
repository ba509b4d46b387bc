package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupReleaseWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup("release", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["component"])

	buf.Reset()
	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestSetLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup("release", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	SetLevel("chatty")
	assert.Equal(t, zerolog.InfoLevel, Log.GetLevel())

	SetLevel("error")
	assert.Equal(t, zerolog.ErrorLevel, Log.GetLevel())
}
