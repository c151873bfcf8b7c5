package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string        `mapstructure:"ENV"`
	Port               string        `mapstructure:"PORT"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DataSource         string        `mapstructure:"DATA_SOURCE"`
	SQLitePath         string        `mapstructure:"SQLITE_PATH"`
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`
	ContextScope       string        `mapstructure:"CONTEXT_SCOPE"`
	ContextTTL         time.Duration `mapstructure:"CONTEXT_TTL"`
	VocabularyFile     string        `mapstructure:"VOCABULARY_FILE"`
	AssistantProvider  string        `mapstructure:"ASSISTANT_PROVIDER"`
	AssistantBaseURL   string        `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel     string        `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey    string        `mapstructure:"ASSISTANT_API_KEY"`
	AssistantMaxTokens int           `mapstructure:"ASSISTANT_MAX_TOKENS"`
	AdminKey           string        `mapstructure:"ADMIN_KEY"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MetricsNamespace   string        `mapstructure:"METRICS_NAMESPACE"`
}

const (
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"

	ScopeSession = "session"
	ScopeGlobal  = "global"

	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

var keys = []string{
	"ENV", "PORT", "LOG_LEVEL", "DATABASE_URL", "DATA_SOURCE", "SQLITE_PATH",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CONTEXT_SCOPE", "CONTEXT_TTL", "VOCABULARY_FILE",
	"ASSISTANT_PROVIDER", "ASSISTANT_BASE_URL", "ASSISTANT_MODEL", "ASSISTANT_API_KEY", "ASSISTANT_MAX_TOKENS",
	"ADMIN_KEY", "REQUEST_TIMEOUT", "METRICS_NAMESPACE",
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	// AutomaticEnv only covers keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATA_SOURCE", SourcePostgres)
	v.SetDefault("SQLITE_PATH", "fieldops.db")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CONTEXT_SCOPE", ScopeSession)
	v.SetDefault("CONTEXT_TTL", "30m")
	v.SetDefault("ASSISTANT_PROVIDER", ProviderNone)
	v.SetDefault("ASSISTANT_MAX_TOKENS", 75)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("METRICS_NAMESPACE", "fieldops")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings and the connection settings they
// imply.
func (c *Config) Validate() error {
	c.DataSource = strings.ToLower(strings.TrimSpace(c.DataSource))
	c.ContextScope = strings.ToLower(strings.TrimSpace(c.ContextScope))
	c.AssistantProvider = strings.ToLower(strings.TrimSpace(c.AssistantProvider))

	switch c.DataSource {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATA_SOURCE=sqlite")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}

	switch c.ContextScope {
	case ScopeSession, ScopeGlobal:
	default:
		return fmt.Errorf("unknown CONTEXT_SCOPE %q", c.ContextScope)
	}

	switch c.AssistantProvider {
	case "", ProviderNone, ProviderMock:
	case ProviderOpenAI, ProviderAnthropic:
		if c.AssistantAPIKey == "" && c.AssistantBaseURL == "" {
			return fmt.Errorf("ASSISTANT_API_KEY is required for provider %s", c.AssistantProvider)
		}
	default:
		return fmt.Errorf("unknown ASSISTANT_PROVIDER %q", c.AssistantProvider)
	}
	return nil
}
