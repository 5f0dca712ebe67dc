package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	initWriter(&buf, true, "json")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	assert.True(t, DebugEnabled())
	log.Debug().Str("strategy", "smart_balance").Msg("scored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "smart_balance", line["strategy"])
	assert.Equal(t, "scored", line["message"])
}

func TestInitConsoleFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	initWriter(&buf, false, "console")

	assert.False(t, DebugEnabled())
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
