// Package cli provides shared command-line utilities: output formatters,
// typed command errors and signal handling for graceful shutdown.
package cli
