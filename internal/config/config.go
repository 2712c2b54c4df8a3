package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/siegedash/r6stats/internal/domain"
)

var ErrInvalidValue = errors.New("invalid value")

const DEFAULT_ENV_FILE = ".env.local"

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type rawConfig struct {
	Environment string `env:"R6STATS_ENVIRONMENT" envDefault:"production"`
	LogLevel    string `env:"R6STATS_LOG_LEVEL" envDefault:"warn"`
	SentryDSN   string `env:"SENTRY_DSN"`
	OTelEnabled bool   `env:"R6STATS_OTEL_ENABLED" envDefault:"false"`
	UbiEmail    string `env:"UBI_EMAIL"`
	UbiPassword string `env:"UBI_PASSWORD"`
}

type Config struct {
	env         environment
	logLevel    slog.Level
	sentryDSN   string
	otelEnabled bool
	credentials domain.Credentials
}

func (c *Config) LogLevel() slog.Level {
	return c.logLevel
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) OTelEnabled() bool {
	return c.otelEnabled
}

// Credentials may be incomplete; the caller reports that as a result, not a config error
func (c *Config) Credentials() domain.Credentials {
	return c.credentials
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

func (c *Config) Environment() string {
	return string(c.env)
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, logLevel: %s, sentry: %t, otel: %t, credentials: %t}",
		string(c.env), c.logLevel.String(), c.sentryDSN != "", c.otelEnabled, c.credentials.Complete(),
	)
}

// LoadEnvFile loads variables from a dotenv file without overriding the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to load %s: %w", ErrInvalidValue, path, err)
	}
	return nil
}

// ConfigFromEnv loads R6STATS_ENV_FILE (default .env.local) and parses the environment
func ConfigFromEnv() (Config, error) {
	envFile, ok := os.LookupEnv("R6STATS_ENV_FILE")
	if !ok || envFile == "" {
		envFile = DEFAULT_ENV_FILE
	}
	if err := LoadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	var raw rawConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	var parsedEnv environment
	switch strings.ToLower(raw.Environment) {
	case "production":
		parsedEnv = production
	case "staging":
		parsedEnv = staging
	case "development":
		parsedEnv = development
	default:
		return Config{}, fmt.Errorf("%w: R6STATS_ENVIRONMENT (%s)", ErrInvalidValue, raw.Environment)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw.LogLevel)); err != nil {
		return Config{}, fmt.Errorf("%w: R6STATS_LOG_LEVEL (%s)", ErrInvalidValue, raw.LogLevel)
	}

	return Config{
		env:         parsedEnv,
		logLevel:    level,
		sentryDSN:   raw.SentryDSN,
		otelEnabled: raw.OTelEnabled,
		credentials: domain.Credentials{
			Email:    strings.TrimSpace(raw.UbiEmail),
			Password: raw.UbiPassword,
		},
	}, nil
}
