package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryConfig controls the retrying decorator.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3.
	MaxAttempts uint64

	// InitialBackoff is the first retry delay; subsequent delays grow
	// with fibonacci backoff. Default: 500ms.
	InitialBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialBackoff: 500 * time.Millisecond}
}

// Retrying decorates a Provider with bounded fibonacci-backoff retries.
// UnavailableError is not retried: missing data is a fact about the
// snapshot, not a transient fault.
type Retrying struct {
	inner  Provider
	config RetryConfig
	logger *slog.Logger
}

// WithRetry wraps a provider with retry behavior.
func WithRetry(inner Provider, config RetryConfig, logger *slog.Logger) *Retrying {
	if config.MaxAttempts == 0 {
		config = DefaultRetryConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{inner: inner, config: config, logger: logger.With("component", "provider.retry")}
}

func (r *Retrying) backoff() retry.Backoff {
	return retry.WithMaxRetries(r.config.MaxAttempts-1, retry.NewFibonacci(r.config.InitialBackoff))
}

// retryable wraps transient errors so go-retry keeps trying; permanent
// errors pass through untouched.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	return retry.RetryableError(err)
}

// ListScopes implements Provider.
func (r *Retrying) ListScopes(ctx context.Context, kind string) ([]Scope, error) {
	var scopes []Scope
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		scopes, err = r.inner.ListScopes(ctx, kind)
		if err != nil {
			r.logger.Warn("list scopes failed, may retry", "kind", kind, "error", err)
		}
		return retryable(err)
	})
	return scopes, err
}

// ListResources implements Provider.
func (r *Retrying) ListResources(ctx context.Context, scope Scope, resourceType string, fields []string) ([]Resource, error) {
	var resources []Resource
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		resources, err = r.inner.ListResources(ctx, scope, resourceType, fields)
		if err != nil {
			r.logger.Warn("list resources failed, may retry",
				"scope", scope.Name, "resource_type", resourceType, "error", err)
		}
		return retryable(err)
	})
	return resources, err
}

// CostSeries implements Provider.
func (r *Retrying) CostSeries(ctx context.Context, scope Scope, window Window) ([]CostPoint, error) {
	var series []CostPoint
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		series, err = r.inner.CostSeries(ctx, scope, window)
		if err != nil {
			r.logger.Warn("cost series fetch failed, may retry", "scope", scope.Name, "error", err)
		}
		return retryable(err)
	})
	return series, err
}
