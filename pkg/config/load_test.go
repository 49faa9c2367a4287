package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Policies.Dir != "policies" {
		t.Errorf("Policies.Dir = %q, want policies", cfg.Policies.Dir)
	}
	if !cfg.Policies.Watch {
		t.Error("Policies.Watch = false, want true by default")
	}
	if cfg.Provider.Retry.MaxAttempts != 3 || cfg.Provider.Retry.InitialBackoff != 500*time.Millisecond {
		t.Errorf("Retry = %+v, want 3 attempts / 500ms backoff", cfg.Provider.Retry)
	}
	if cfg.Engine.MaxConcurrentScopes != 4 || cfg.Engine.FetchTimeout != 30*time.Second {
		t.Errorf("Engine = %+v, want 4 scopes / 30s timeout", cfg.Engine)
	}
	if cfg.Findings.Backend != "sqlite" || cfg.Findings.SQLite.Path != "data/findings.db" {
		t.Errorf("Findings = %+v, want sqlite defaults", cfg.Findings)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Telemetry.Logging)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.ListenAddress != ":9464" {
		t.Errorf("Metrics = %+v, want enabled on :9464", cfg.Telemetry.Metrics)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
policies:
  dir: /etc/finops/policies
  watch: false
provider:
  snapshot: /var/lib/finops/snapshot.yaml
  retry:
    max_attempts: 5
engine:
  max_concurrent_scopes: 8
findings:
  backend: memory
schedule: "0 7 * * *"
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Policies.Dir != "/etc/finops/policies" || cfg.Policies.Watch {
		t.Errorf("Policies = %+v, want overridden dir and watch off", cfg.Policies)
	}
	if cfg.Provider.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Provider.Retry.MaxAttempts)
	}
	// Unset nested fields keep their defaults.
	if cfg.Provider.Retry.InitialBackoff != 500*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want default 500ms", cfg.Provider.Retry.InitialBackoff)
	}
	if cfg.Engine.MaxConcurrentScopes != 8 {
		t.Errorf("MaxConcurrentScopes = %d, want 8", cfg.Engine.MaxConcurrentScopes)
	}
	if cfg.Findings.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Findings.Backend)
	}
	if cfg.Schedule != "0 7 * * *" {
		t.Errorf("Schedule = %q, want the daily expression", cfg.Schedule)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false from file")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
policies:
  dir: from-file
findings:
  backend: sqlite
`)
	t.Setenv("FINOPS_POLICIES_DIR", "from-env")
	t.Setenv("FINOPS_FINDINGS_BACKEND", "memory")
	t.Setenv("FINOPS_POLICIES_WATCH", "false")
	t.Setenv("FINOPS_ENGINE_FETCH_TIMEOUT", "10s")
	t.Setenv("FINOPS_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Policies.Dir != "from-env" {
		t.Errorf("Policies.Dir = %q, want from-env", cfg.Policies.Dir)
	}
	if cfg.Findings.Backend != "memory" {
		t.Errorf("Backend = %q, want memory from env", cfg.Findings.Backend)
	}
	if cfg.Policies.Watch {
		t.Error("Watch = true, want false from env")
	}
	if cfg.Engine.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s from env", cfg.Engine.FetchTimeout)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from env", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig(missing) succeeded, want error")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "policies: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig(malformed) succeeded, want error")
	}
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Findings.Backend = "postgres"
	cfg.Telemetry.Logging.Level = "verbose"
	cfg.Schedule = "every 5 minutes"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() succeeded, want errors")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("len(Errors) = %d, want 3: %v", len(verr.Errors), verr)
	}

	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	joined := strings.Join(fields, " ")
	for _, want := range []string{"findings.backend", "telemetry.logging.level", "schedule"} {
		if !strings.Contains(joined, want) {
			t.Errorf("fields %v missing %s", fields, want)
		}
	}
}

func TestValidate_MetricsChecksSkippedWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Metrics.ListenAddress = ""
	cfg.Telemetry.Metrics.Path = "metrics"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() = %v, want nil when metrics are disabled", err)
	}
}
