// Package config defines the global configuration structure for the portal
// core. Configuration is loaded once at process startup and is immutable
// thereafter, following 12-Factor principles: values come from the OS
// environment, with a .env file as a local-development convenience.
//
// Any missing required value or invalid format fails the process immediately
// on startup.
package config

import (
	"time"

	"siport/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the portal core. It is
// populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"siport-core"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server    ServerConfig
	Database  DatabaseConfig
	Event     EventConfig
	UserStore UserStoreConfig
	AWS       AWSConfig
	Billing   BillingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"20s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout  time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
}

// EventConfig holds venue event parameters. The timezone defines local
// midnight for daily quota resets; it must be an IANA zone name.
type EventConfig struct {
	Timezone string `envconfig:"EVENT_TIMEZONE" default:"Africa/Casablanca" validate:"required"`
}

// UserStoreConfig holds the external user/session provider connection
// settings. When UseDBMirror is set, profile lookups read the synced
// profiles table in Postgres instead of calling the provider per action;
// session introspection always goes to the provider.
type UserStoreConfig struct {
	BaseURL     string        `envconfig:"USERSTORE_URL" validate:"required,url"`
	APIKey      SecretString  `envconfig:"USERSTORE_API_KEY" validate:"required"`
	Timeout     time.Duration `envconfig:"USERSTORE_TIMEOUT" default:"10s"`
	UseDBMirror bool          `envconfig:"USERSTORE_USE_DB_MIRROR" default:"false"`
}

// AWSConfig holds AWS resource identifiers. The events queue and metrics
// emission are optional: when EventsQueueURL is empty the action event
// publisher and CloudWatch metrics are replaced by no-ops (local
// development).
type AWSConfig struct {
	Region         string `envconfig:"AWS_REGION" default:"eu-west-1"`
	EventsQueueURL string `envconfig:"SQS_ACTION_EVENTS" validate:"omitempty,url"`

	// LocalStack support, empty in prod.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// BillingConfig holds Stripe payment integration credentials.
type BillingConfig struct {
	StripeSecretKey SecretString `envconfig:"STRIPE_SECRET_KEY" validate:"required"`
}
