package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string
	Debug           bool
	Version         string
	BotToken        string `validate:"required"`
	ChannelID       int64  `validate:"required"`
	SentryDSN       string
	MongoDBURI      string `validate:"required"`
	MongoDBDatabase string `validate:"required"`
	DefaultLanguage string `validate:"required,oneof=ru es it fr"`

	OpenRouterAPIKey  string `validate:"required"`
	OpenRouterBaseURL string `validate:"omitempty,url"`
	OpenRouterModel   string `validate:"required"`

	LLMMaxAttempts    int           `validate:"min=1,max=10"`
	LLMRetryDelay     time.Duration `validate:"min=0"`
	LLMCallsPerMinute int           `validate:"min=1"`
	PublishPerMinute  int           `validate:"min=1"`
	MaxGenerate       int           `validate:"min=1,max=50"`
	ForbiddenWords    []string
	MetricsAddr       string
	SessionTTL        time.Duration `validate:"min=0"`
}

// LoadConfig loads configuration from environment variables.
// A .env file is read when present; variables already set in the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	channelIDStr := getEnv("CHANNEL_ID", "")
	var channelID int64
	if channelIDStr != "" {
		id, err := strconv.ParseInt(channelIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CHANNEL_ID: %w", err)
		}
		channelID = id
	}

	maxAttempts, err := getInt("LLM_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	callsPerMinute, err := getInt("LLM_CALLS_PER_MINUTE", 20)
	if err != nil {
		return nil, err
	}
	publishPerMinute, err := getInt("PUBLISH_PER_MINUTE", 20)
	if err != nil {
		return nil, err
	}
	maxGenerate, err := getInt("MAX_GENERATE", 10)
	if err != nil {
		return nil, err
	}
	retryDelay, err := getDuration("LLM_RETRY_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Debug:             debug,
		Version:           getEnv("VERSION", "dev"),
		BotToken:          getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChannelID:         channelID,
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		MongoDBURI:        getEnv("MONGODB_URI", ""),
		MongoDBDatabase:   getEnv("MONGODB_DATABASE", ""),
		DefaultLanguage:   strings.ToLower(getEnv("DEFAULT_LANGUAGE", "ru")),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		LLMMaxAttempts:    maxAttempts,
		LLMRetryDelay:     retryDelay,
		LLMCallsPerMinute: callsPerMinute,
		PublishPerMinute:  publishPerMinute,
		MaxGenerate:       maxGenerate,
		ForbiddenWords:    splitList(getEnv("FORBIDDEN_WORDS", "")),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
		SessionTTL:        sessionTTL,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SentryDSN == "" {
		log.Warn().Msg("SENTRY_DSN is not set, error tracking disabled")
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required settings and numeric bounds.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q", envName(errs[0].Field()), errs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

var envNames = map[string]string{
	"BotToken":          "TELEGRAM_BOT_TOKEN",
	"ChannelID":         "CHANNEL_ID",
	"MongoDBURI":        "MONGODB_URI",
	"MongoDBDatabase":   "MONGODB_DATABASE",
	"DefaultLanguage":   "DEFAULT_LANGUAGE",
	"OpenRouterAPIKey":  "OPENROUTER_API_KEY",
	"OpenRouterBaseURL": "OPENROUTER_BASE_URL",
	"OpenRouterModel":   "OPENROUTER_MODEL",
	"LLMMaxAttempts":    "LLM_MAX_ATTEMPTS",
	"LLMRetryDelay":     "LLM_RETRY_DELAY",
	"LLMCallsPerMinute": "LLM_CALLS_PER_MINUTE",
	"PublishPerMinute":  "PUBLISH_PER_MINUTE",
	"MaxGenerate":       "MAX_GENERATE",
	"SessionTTL":        "SESSION_TTL",
}

func envName(field string) string {
	if name, ok := envNames[field]; ok {
		return name
	}
	return field
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
