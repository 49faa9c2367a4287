package engine

import (
	"fmt"
	"time"
)

// Config tunes the orchestrator. Zero values are filled in by
// ApplyDefaults; Validate rejects configurations the engine cannot run
// with.
type Config struct {
	// MaxConcurrentScopes caps how many (policy, scope) pairs evaluate in
	// parallel.
	MaxConcurrentScopes int `yaml:"max_concurrent_scopes"`

	// FetchTimeout bounds one provider fetch (a resource listing or a
	// cost series request).
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// ApplyDefaults fills unset fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrentScopes == 0 {
		c.MaxConcurrentScopes = 4
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 30 * time.Second
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.MaxConcurrentScopes < 1 {
		return fmt.Errorf("max_concurrent_scopes must be at least 1, got %d", c.MaxConcurrentScopes)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative, got %s", c.FetchTimeout)
	}
	return nil
}
