package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/triage/internal/priority"
)

func newViper(t *testing.T, yamlContent string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if yamlContent == "" {
		return v
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return v
}

func TestDecodeDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Decode(newViper(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, priority.SmartBalance, cfg.Analysis.Strategy)
	assert.Equal(t, 3, cfg.Analysis.Suggestions)
	assert.Equal(t, 10*time.Second, cfg.Storage.ConnectTimeout)
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	cfg, err := Decode(newViper(t, `
storage:
  driver: postgres
  dsn: postgres://triage@localhost/triage
  connect_timeout: 3s
server:
  addr: 127.0.0.1:9090
  write_timeout: 1m
mcp:
  enabled: false
analysis:
  strategy: deadline_driven
  suggestions: 5
  timezone: Europe/Berlin
log:
  debug: true
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 3*time.Second, cfg.Storage.ConnectTimeout)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.MCP.Enabled)
	assert.Equal(t, priority.DeadlineDriven, cfg.Analysis.Strategy)
	assert.Equal(t, 5, cfg.Analysis.Suggestions)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, FormatJSON, cfg.Log.Format)

	loc, err := cfg.Analysis.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestDecodeEnvOverrides(t *testing.T) {
	t.Setenv("TRIAGE_ANALYSIS_SUGGESTIONS", "7")
	t.Setenv("TRIAGE_ANALYSIS_STRATEGY", "fastest_wins")
	t.Setenv("TRIAGE_STORAGE_CONNECT_TIMEOUT", "250ms")

	v := newViper(t, "")
	v.SetEnvPrefix("TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Analysis.Suggestions)
	assert.Equal(t, priority.FastestWins, cfg.Analysis.Strategy)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.ConnectTimeout)
}

func TestDecodeRejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown driver", content: "storage:\n  driver: mongo\n", want: "storage.driver"},
		{name: "unknown strategy", content: "analysis:\n  strategy: slowest_first\n", want: "analysis.strategy"},
		{name: "bad duration", content: "server:\n  read_timeout: soon\n", want: "server.read_timeout"},
		{name: "zero suggestions", content: "analysis:\n  suggestions: 0\n", want: "analysis.suggestions"},
		{name: "unknown key", content: "log:\n  colour: true\n", want: "colour"},
		{name: "postgres without dsn", content: "storage:\n  driver: postgres\n", want: "storage.dsn is required"},
		{name: "bad timezone", content: "analysis:\n  timezone: Mars/Olympus\n", want: "analysis.timezone"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(newViper(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(map[string]any{
		"config": ".triage/config.yaml",
		"log":    map[string]any{"format": "console", "debug": "true"},
	}))
	err := ValidateSettings(map[string]any{"log": map[string]any{"format": "xml"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}
