// Package config defines the global configuration structure for the scenario
// simulation service. Configuration is loaded once at process initialization
// and is immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes startup to fail
// immediately (fail fast).
package config

import (
	"time"

	"econsim/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used in configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Domain Configurations
	Server    ServerConfig
	Artifacts ArtifactConfig
	Dataset   DatasetConfig
	Auth      AuthConfig
	Security  SecurityConfig
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
}

// ArtifactConfig holds the paths to the pre-trained artifacts. The files are
// opaque to the core; they are loaded once at startup and, absent a reload
// signal, never re-read. A `.zst` suffix on either path enables transparent
// zstd decompression.
type ArtifactConfig struct {
	ModelPath   string `envconfig:"MODEL_PATH" default:"gdp_scenario_model.json"`
	EncoderPath string `envconfig:"ENCODER_PATH" default:"country_encoder_scenario.json"`
}

// DatasetConfig holds the historical dataset location. The dataset is loaded
// once at startup for the history and country-listing paths, and re-read on
// every baseline request so baselines always reflect the file on disk.
type DatasetConfig struct {
	Path string `envconfig:"DATASET_PATH" default:"final_data_with_year.csv"`

	// Breaker tuning for the per-request baseline re-read.
	BreakerMaxFailures uint32        `envconfig:"DATASET_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenFor     time.Duration `envconfig:"DATASET_BREAKER_OPEN_FOR" default:"30s"`
}

// AuthConfig holds the bearer-token verification settings. When SigningKey is
// empty, token verification is unconfigured and gated routes answer 503.
type AuthConfig struct {
	SigningKey SecretString  `envconfig:"AUTH_SIGNING_KEY"`
	TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
}

// SecurityConfig holds admin access and CORS settings. AdminKeyHash is a
// bcrypt hash of the admin key that gates the artifact reload endpoint; when
// empty, the endpoint is disabled.
type SecurityConfig struct {
	AdminKeyHash       SecretString `envconfig:"ADMIN_KEY_BCRYPT_HASH"`
	CorsAllowedOrigins []string     `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
