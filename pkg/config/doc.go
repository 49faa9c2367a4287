// Package config loads the runtime configuration from YAML, fills
// defaults, applies FINOPS_* environment variable overrides and validates
// the result, accumulating every problem into one error.
package config
