package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LLM backend providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Calendar backend providers.
const (
	CalendarGoogle = "google"
	CalendarICS    = "ics"
)

// Config holds the application configuration
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Server   ServerConfig   `mapstructure:"server"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

// LLMConfig holds the LLM configuration
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// CalendarConfig holds the calendar backend configuration
type CalendarConfig struct {
	Provider        string `mapstructure:"provider"`
	CredentialsPath string `mapstructure:"credentials_path"`
	CalendarID      string `mapstructure:"calendar_id"`
	TimeZone        string `mapstructure:"timezone"`
	ICSPath         string `mapstructure:"ics_path"`
}

// AgentConfig bounds the tool-calling loop.
type AgentConfig struct {
	MaxRounds  int           `mapstructure:"max_rounds"`
	TimeBudget time.Duration `mapstructure:"time_budget"`
}

// SessionsConfig controls conversation session lifetime.
type SessionsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	Max int           `mapstructure:"max"`
}

// JournalConfig controls the tool journal database.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// legacyEnv maps config keys to the bare environment variables used by
// earlier deployments.
var legacyEnv = map[string][]string{
	"llm.api_key":               {"GEMINI_API_KEY", "OPENAI_API_KEY"},
	"calendar.credentials_path": {"GOOGLE_CREDENTIALS_PATH"},
	"calendar.calendar_id":      {"CALENDAR_ID"},
	"journal.path":              {"HISTORY_DB_PATH"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("calendar.provider", CalendarGoogle)
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("calendar.timezone", "Asia/Kolkata")
	v.SetDefault("calendar.ics_path", "calendar.ics")
	v.SetDefault("agent.max_rounds", 10)
	v.SetDefault("agent.time_budget", 2*time.Minute)
	v.SetDefault("sessions.ttl", 30*time.Minute)
	v.SetDefault("sessions.max", 1000)
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "journal.db")
}

// Load loads the configuration from config.yaml in the working directory,
// or from the file named by CONFIG_PATH. A missing config.yaml is not an
// error: defaults and environment variables still apply.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TAILORTALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key, "TAILORTALK_" + envKey(key)}, names...)...); err != nil {
			return nil, err
		}
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
