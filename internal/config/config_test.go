package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log_level: debug
llm:
  provider: openai
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
server:
  host: 127.0.0.1
  port: "9000"
calendar:
  provider: ics
  calendar_id: team@example.com
  timezone: Europe/Berlin
  ics_path: /tmp/cal.ics
agent:
  max_rounds: 4
  time_budget: 30s
sessions:
  ttl: 5m
  max: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	require.NoError(t, err)
	_, err = tmp.WriteString(body)
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	return tmp.Name()
}

// TestLoad_File verifies that Load unmarshals every section of the file.
func TestLoad_File(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	require.Equal(t, "https://api.example.com", cfg.LLM.BaseURL)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	require.Equal(t, CalendarICS, cfg.Calendar.Provider)
	require.Equal(t, "team@example.com", cfg.Calendar.CalendarID)
	require.Equal(t, "Europe/Berlin", cfg.Calendar.TimeZone)
	require.Equal(t, 4, cfg.Agent.MaxRounds)
	require.Equal(t, 30*time.Second, cfg.Agent.TimeBudget)
	require.Equal(t, 5*time.Minute, cfg.Sessions.TTL)
	require.Equal(t, 10, cfg.Sessions.Max)
	// untouched keys keep their defaults
	require.True(t, cfg.Journal.Enabled)
	require.Equal(t, "journal.db", cfg.Journal.Path)
}

// TestLoad_DefaultsWithoutFile checks that a missing config.yaml falls back to defaults.
func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderGemini, cfg.LLM.Provider)
	require.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	require.Equal(t, "Asia/Kolkata", cfg.Calendar.TimeZone)
	require.Equal(t, 10, cfg.Agent.MaxRounds)
	require.Equal(t, 2*time.Minute, cfg.Agent.TimeBudget)
}

// TestLoad_LegacyEnv verifies the bare environment variable names still work.
func TestLoad_LegacyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GOOGLE_CREDENTIALS_PATH", "/secrets/sa.json")
	t.Setenv("CALENDAR_ID", "primary")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gem-key", cfg.LLM.APIKey)
	require.Equal(t, "/secrets/sa.json", cfg.Calendar.CredentialsPath)
	require.Equal(t, "primary", cfg.Calendar.CalendarID)
}

// TestLoad_PrefixedEnvWins checks that TAILORTALK_* overrides the legacy names.
func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("CALENDAR_ID", "legacy")
	t.Setenv("TAILORTALK_CALENDAR_CALENDAR_ID", "prefixed")
	t.Setenv("TAILORTALK_AGENT_MAX_ROUNDS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "prefixed", cfg.Calendar.CalendarID)
	require.Equal(t, 3, cfg.Agent.MaxRounds)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	_, err := Load()
	require.Error(t, err)
}
