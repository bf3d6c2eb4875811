package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	log.Debug().Str("visit", "v1").Msg("visit opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "v1", line["visit"])
	assert.Equal(t, "visit opened", line["message"])
}

func TestNewLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	log := New("chatty", "json", &buf)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "console", &buf)
	log.Info().Msg("starting")
	assert.Contains(t, buf.String(), "starting")
}
