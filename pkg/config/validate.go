package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path of the field, e.g. "telemetry.logging.level".
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every validation error in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, fieldErr := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", fieldErr.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError listing
// every problem found.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Policies.Dir == "" {
		errs = append(errs, FieldError{Field: "policies.dir", Message: "must not be empty"})
	}

	if cfg.Provider.Retry.MaxAttempts < 1 {
		errs = append(errs, FieldError{Field: "provider.retry.max_attempts", Message: "must be at least 1"})
	}
	if cfg.Provider.Retry.InitialBackoff < 0 {
		errs = append(errs, FieldError{Field: "provider.retry.initial_backoff", Message: "must not be negative"})
	}

	if cfg.Engine.MaxConcurrentScopes < 1 {
		errs = append(errs, FieldError{Field: "engine.max_concurrent_scopes", Message: "must be at least 1"})
	}
	if cfg.Engine.FetchTimeout < 0 {
		errs = append(errs, FieldError{Field: "engine.fetch_timeout", Message: "must not be negative"})
	}

	switch cfg.Findings.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "findings.backend",
			Message: fmt.Sprintf("must be one of sqlite, memory; got %q", cfg.Findings.Backend),
		})
	}
	if cfg.Findings.Backend == "sqlite" && cfg.Findings.SQLite.Path == "" {
		errs = append(errs, FieldError{Field: "findings.sqlite.path", Message: "must not be empty"})
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{Field: "schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Telemetry.Logging.Level),
		})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of json, text; got %q", cfg.Telemetry.Logging.Format),
		})
	}

	if cfg.Telemetry.Metrics.Enabled {
		if cfg.Telemetry.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{Field: "telemetry.metrics.listen_address", Message: "must not be empty"})
		}
		if !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
