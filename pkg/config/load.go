package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults,
// applies FINOPS_* environment variable overrides and validates the
// result. Environment variables always take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies FINOPS_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("FINOPS_POLICIES_DIR"); val != "" {
		cfg.Policies.Dir = val
	}
	if val := os.Getenv("FINOPS_POLICIES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policies.Watch = b
		}
	}

	if val := os.Getenv("FINOPS_PROVIDER_SNAPSHOT"); val != "" {
		cfg.Provider.Snapshot = val
	}
	if val := os.Getenv("FINOPS_PROVIDER_RETRY_MAX_ATTEMPTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Provider.Retry.MaxAttempts = i
		}
	}
	if val := os.Getenv("FINOPS_PROVIDER_RETRY_INITIAL_BACKOFF"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Provider.Retry.InitialBackoff = d
		}
	}

	if val := os.Getenv("FINOPS_ENGINE_MAX_CONCURRENT_SCOPES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.MaxConcurrentScopes = i
		}
	}
	if val := os.Getenv("FINOPS_ENGINE_FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.FetchTimeout = d
		}
	}

	if val := os.Getenv("FINOPS_FINDINGS_BACKEND"); val != "" {
		cfg.Findings.Backend = val
	}
	if val := os.Getenv("FINOPS_FINDINGS_SQLITE_PATH"); val != "" {
		cfg.Findings.SQLite.Path = val
	}

	if val := os.Getenv("FINOPS_SCHEDULE"); val != "" {
		cfg.Schedule = val
	}

	if val := os.Getenv("FINOPS_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("FINOPS_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("FINOPS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("FINOPS_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
