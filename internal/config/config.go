// Package config provides environment configuration for the API server.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/capitalize-ai/trip-concierge/internal/llm"
	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/synth"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string        `env:"PORT" envDefault:"8080"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	ServerIdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	CORSOrigins        []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"65536"`

	// Session settings
	SessionStore     string        `env:"SESSION_STORE" envDefault:"memory"`
	RedisURL         string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionKeyPrefix string        `env:"SESSION_KEY_PREFIX" envDefault:"session:"`

	// Journal settings
	JournalEnabled bool          `env:"JOURNAL_ENABLED" envDefault:"false"`
	NATSURL        string        `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSCAFile     string        `env:"NATS_CA_FILE"`
	NATSCertFile   string        `env:"NATS_CERT_FILE"`
	NATSKeyFile    string        `env:"NATS_KEY_FILE"`
	NATSToken      string        `env:"NATS_TOKEN"`
	NATSStream     string        `env:"NATS_STREAM" envDefault:"TRIP_TURNS"`
	JournalMaxAge  time.Duration `env:"JOURNAL_MAX_AGE" envDefault:"168h"`

	// LLM settings
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"none"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	LLMModel        string        `env:"LLM_MODEL"`
	LLMMaxTokens    int           `env:"LLM_MAX_TOKENS" envDefault:"512"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	HistoryWindow   int           `env:"LLM_HISTORY_WINDOW" envDefault:"10"`

	// Planner settings
	PackageStrategy string `env:"PACKAGE_STRATEGY" envDefault:"cross"`
	MaxPackages     int    `env:"MAX_PACKAGES" envDefault:"12"`
	MockSeed        int64  `env:"MOCK_SEED" envDefault:"0"`
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	// Rate limiting
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	TracingInsecure   bool    `env:"TRACING_INSECURE" envDefault:"true"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if _, err := synth.ParseStrategy(c.PackageStrategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := model.ParseLanguage(c.DefaultLanguage); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_LANGUAGE: %w", err))
	}
	if c.LLMAPIKey() == "" && c.Provider() != llm.ProviderNone {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q needs an API key", c.LLMProvider))
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit requests and window must be positive"))
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		errs = append(errs, errors.New("TRACING_SAMPLE_RATE must be within [0, 1]"))
	}
	return errors.Join(errs...)
}

// Provider returns the configured LLM provider.
func (c *Config) Provider() llm.Provider {
	if c.LLMProvider == "" {
		return llm.ProviderNone
	}
	return llm.Provider(c.LLMProvider)
}

// LLMAPIKey returns the key for the configured provider.
func (c *Config) LLMAPIKey() string {
	switch c.Provider() {
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	case llm.ProviderGemini:
		return c.GeminiAPIKey
	}
	return ""
}

// Language returns the default session language.
func (c *Config) Language() model.Language {
	lang, err := model.ParseLanguage(c.DefaultLanguage)
	if err != nil {
		return model.LanguageEnglish
	}
	return lang
}

// Strategy returns the package synthesis strategy.
func (c *Config) Strategy() synth.Strategy {
	s, err := synth.ParseStrategy(c.PackageStrategy)
	if err != nil {
		return synth.StrategyCrossProduct
	}
	return s
}
