// Package config loads runtime settings from AMLCHAIN_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/gabapcia/amlchain/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "AMLCHAIN"

// Config holds the application settings.
type Config struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error dpanic panic fatal"`
	ServiceName      string `envconfig:"SERVICE_NAME" default:"amlchain" validate:"required"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	Input     string `envconfig:"INPUT"`
	BatchSize int    `envconfig:"BATCH_SIZE" default:"100" validate:"gt=0"`
	MaxRows   int    `envconfig:"MAX_ROWS" default:"1000" validate:"gte=0"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s" validate:"gt=0"`

	Redis Redis `envconfig:"REDIS"`
}

// Redis configures the snapshot store. An empty Addr disables it.
type Redis struct {
	Addr     string        `envconfig:"ADDR"`
	Username string        `envconfig:"USERNAME"`
	Password string        `envconfig:"PASSWORD"`
	DB       int           `envconfig:"DB" default:"0" validate:"gte=0"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"24h" validate:"gte=0"`
}

// Enabled reports whether a Redis address is configured.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
