package config

import "time"

// Default values for every tunable.
const (
	DefaultPoliciesDir = "policies"

	DefaultRetryMaxAttempts    = 3
	DefaultRetryInitialBackoff = 500 * time.Millisecond

	DefaultMaxConcurrentScopes = 4
	DefaultFetchTimeout        = 30 * time.Second

	DefaultFindingsBackend    = "sqlite"
	DefaultSQLitePath         = "data/findings.db"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteBusyTimeout  = 5 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsListenAddress = ":9464"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "finops"
	DefaultMetricsSubsystem     = "engine"
)

// DefaultConfig returns a fully populated configuration. LoadConfig
// unmarshals the file over it, so booleans that default to true survive
// being absent from the file.
func DefaultConfig() *Config {
	return &Config{
		Policies: PoliciesConfig{
			Dir:   DefaultPoliciesDir,
			Watch: true,
		},
		Provider: ProviderConfig{
			Retry: RetryConfig{
				MaxAttempts:    DefaultRetryMaxAttempts,
				InitialBackoff: DefaultRetryInitialBackoff,
			},
		},
		Engine: EngineConfig{
			MaxConcurrentScopes: DefaultMaxConcurrentScopes,
			FetchTimeout:        DefaultFetchTimeout,
		},
		Findings: FindingsConfig{
			Backend: DefaultFindingsBackend,
			SQLite: SQLiteConfig{
				Path:         DefaultSQLitePath,
				MaxOpenConns: DefaultSQLiteMaxOpenConns,
				BusyTimeout:  DefaultSQLiteBusyTimeout,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
			},
			Metrics: MetricsConfig{
				Enabled:       true,
				ListenAddress: DefaultMetricsListenAddress,
				Path:          DefaultMetricsPath,
				Namespace:     DefaultMetricsNamespace,
				Subsystem:     DefaultMetricsSubsystem,
			},
		},
	}
}
