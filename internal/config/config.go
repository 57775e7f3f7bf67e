// Package config defines the global configuration structure for the
// RenewRadar platform. Configuration is loaded once at process
// initialization and is immutable thereafter. It follows 12-Factor App
// principles by strictly separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format causes the application to
// fail immediately on startup.
package config

import (
	"time"

	"renewradar/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the RenewRadar platform.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"renewradar"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain configurations
	Server    ServerConfig
	Database  DatabaseConfig
	AWS       AWSConfig
	Email     EmailConfig
	Messaging MessagingConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server configuration for cmd/api.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// AdminAPIKey protects the internal cron-trigger route.
	AdminAPIKey SecretString `envconfig:"ADMIN_API_KEY" validate:"required"`
	// DashboardURL is the user-facing app URL embedded in reminder messages
	// as the actionable next step (no trailing slash).
	DashboardURL string `envconfig:"DASHBOARD_URL" validate:"required,url"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// LocalStack support (empty in prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// EmailConfig holds email delivery provider credentials and identity.
type EmailConfig struct {
	// Provider selects the outbound email implementation.
	Provider    string       `envconfig:"EMAIL_PROVIDER" default:"ses" validate:"oneof=ses resend stub"`
	FromAddress string       `envconfig:"EMAIL_FROM_ADDRESS" default:"reminders@renewradar.io"`
	FromName    string       `envconfig:"EMAIL_FROM_NAME" default:"RenewRadar"`
	// SESConfigSet is the SES configuration set name for tracking (optional).
	SESConfigSet string       `envconfig:"SES_CONFIG_SET"`
	ResendAPIKey SecretString `envconfig:"RESEND_API_KEY"`
}

// MessagingConfig holds SMS and voice provider credentials.
type MessagingConfig struct {
	// Provider selects the outbound SMS/voice implementation.
	Provider         string       `envconfig:"MESSAGING_PROVIDER" default:"twilio" validate:"oneof=twilio stub"`
	TwilioAccountSID string       `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  SecretString `envconfig:"TWILIO_AUTH_TOKEN"`
	SMSFromNumber    string       `envconfig:"SMS_FROM_NUMBER"`
	VoiceFromNumber  string       `envconfig:"VOICE_FROM_NUMBER"`
}

// NotifyConfig tunes the notification scheduling engine.
type NotifyConfig struct {
	// Offsets are the days-before-due values scanned on every pass.
	Offsets []int `envconfig:"NOTIFY_OFFSETS" default:"60,30,14,7,3,2,1,0"`

	// Concurrency bounds the number of obligations processed in flight.
	Concurrency int `envconfig:"NOTIFY_CONCURRENCY" default:"10" validate:"min=1,max=100"`

	// SendTimeout bounds each individual channel send.
	SendTimeout time.Duration `envconfig:"NOTIFY_SEND_TIMEOUT" default:"15s"`

	// RunBudget is the wall-clock budget for one full pass. When exceeded the
	// coordinator stops claiming new work and returns a partial result.
	RunBudget time.Duration `envconfig:"NOTIFY_RUN_BUDGET" default:"5m"`

	// CivicTimezone is the IANA timezone whose calendar day is reported as a
	// run's as-of date. Per-city eligibility always follows each city's own
	// timezone.
	CivicTimezone string `envconfig:"CIVIC_TIMEZONE" default:"America/Chicago"`

	// MetricNamespace is the CloudWatch namespace for delivery metrics.
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"RenewRadar"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
