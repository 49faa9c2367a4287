package config

import "time"

// Config is the root runtime configuration, loaded from YAML with
// FINOPS_* environment variable overrides.
type Config struct {
	// Policies configures where policy documents are loaded from.
	Policies PoliciesConfig `yaml:"policies"`

	// Provider configures the resource/cost data source.
	Provider ProviderConfig `yaml:"provider"`

	// Engine tunes the evaluation orchestrator.
	Engine EngineConfig `yaml:"engine"`

	// Findings configures where evaluation records are persisted.
	Findings FindingsConfig `yaml:"findings"`

	// Schedule is the cron expression for scheduled evaluation passes in
	// serve mode. Empty disables scheduling.
	Schedule string `yaml:"schedule"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PoliciesConfig locates the policy documents.
type PoliciesConfig struct {
	// Dir is the directory policy YAML files are loaded from.
	// Default: "policies"
	Dir string `yaml:"dir"`

	// Watch enables hot reload on file changes in serve mode.
	// Default: true
	Watch bool `yaml:"watch"`
}

// ProviderConfig selects and tunes the data provider.
type ProviderConfig struct {
	// Snapshot is the path of a YAML snapshot file. Required until a
	// live cloud provider binding ships.
	Snapshot string `yaml:"snapshot"`

	// Retry tunes the retry decorator around provider calls.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig tunes retries of transient provider failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per call.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialBackoff is the first backoff interval; subsequent intervals
	// grow per the backoff strategy.
	// Default: 500ms
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// EngineConfig tunes the evaluation orchestrator.
type EngineConfig struct {
	// MaxConcurrentScopes caps parallel (policy, scope) evaluations.
	// Default: 4
	MaxConcurrentScopes int `yaml:"max_concurrent_scopes"`

	// FetchTimeout bounds one provider fetch.
	// Default: 30s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// FindingsConfig selects the findings sink backend.
type FindingsConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig configures the sqlite findings store.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/findings.db"
	Path string `yaml:"path"`

	// MaxOpenConns caps the connection pool.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is the sqlite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig groups logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is the minimum level to emit: "debug", "info", "warn",
	// "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics HTTP server binds.
	// Default: ":9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "finops"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`
}
