// Package config loads ledgerio settings from a YAML file overlaid by
// environment variables. A .env file in the working directory is read
// first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/numerator"
	"ledgerio/internal/domain/ingest"
	"ledgerio/internal/infrastructure/storage/postgres"
	"ledgerio/pkg/logger"
)

// Config is the top-level ledgerio.yaml.
type Config struct {
	Env         string              `yaml:"env"`
	Server      ServerConfig        `yaml:"server"`
	Database    postgres.PoolConfig `yaml:"database"`
	Log         logger.Config       `yaml:"log"`
	Journal     numerator.Config    `yaml:"journal"`
	Transaction ingest.Config       `yaml:"transaction"`
	Digest      DigestConfig        `yaml:"digest"`
}

// ServerConfig controls the HTTP adapter.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// IdempotencyTTL is how long Idempotency-Key responses are replayed.
	// Zero disables the middleware.
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
}

// DigestConfig holds digest defaults applied by the adapters.
type DigestConfig struct {
	PostedOnly bool `yaml:"posted_only"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
			IdempotencyTTL:  10 * time.Minute,
			AutoMigrate:     true,
		},
		Database:    postgres.DefaultPoolConfig(""),
		Log:         logger.Config{Level: "info"},
		Journal:     numerator.DefaultConfig(),
		Transaction: ingest.DefaultConfig(),
		Digest:      DigestConfig{PostedOnly: true},
	}
}

// Load reads path over the defaults, then applies the environment. An
// empty path falls back to $LEDGER_CONFIG; a missing file is not an error
// when no path was requested explicitly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("LEDGER_CONFIG")
		explicit = path != ""
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("APP_ENV", c.Env)
	c.Server.Port = getEnv("APP_PORT", c.Server.Port)
	c.Database.DSN = getEnv("DATABASE_URL", c.Database.DSN)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
		}
		c.Database.MaxConns = int32(n)
	}
	c.Log.Development = c.Env == "development"
	return nil
}

// Validate checks the values the services cannot default.
func (c *Config) Validate() error {
	if c.Transaction.Tolerance.IsNegative() {
		return apperror.NewValidation("transaction.tolerance must not be negative")
	}
	if !c.Transaction.Step.IsPositive() {
		return apperror.NewValidation("transaction.correction_step must be positive")
	}
	if c.Journal.PadWidth < 1 {
		return apperror.NewValidation("journal.number_padding must be at least 1")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
