package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "finops",
	Short: "Cloud cost-governance policy engine",
	Long: `Finops evaluates declarative cost-governance policies against cloud
resource inventories and spend data.

Policies are YAML documents declaring checks (spend caps, resource count
limits, configuration compliance), tag-based exemptions and output
metrics. Each evaluation pass resolves the policy's scope, fetches the
declared inputs, runs every check's logic and emits findings for breaches.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
