package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/cli"
	policyerrors "github.com/luigisaetta/finops-with-oci-ai/pkg/policy/errors"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/parser"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy files",
	Long: `Validate policy files for syntax and semantic errors.

The lint command parses policy files and performs full validation:
  - YAML syntax validation
  - Document structure validation (scope, checks, outputs, exemptions)
  - Logic program compilation
  - Reference validation (every name resolves, "breach" is assigned)

Examples:
  # Lint a single file
  finops lint --file policies/spend.yaml

  # Lint a directory
  finops lint --dir policies/

  # JSON output for CI
  finops lint --dir policies/ --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation outcome for one policy file.
type LintResult struct {
	File     string   `json:"file"`
	PolicyID string   `json:"policy_id,omitempty"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return cli.NewConfigError("lint", "either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]LintResult, 0, len(files))
	invalid := 0
	for _, file := range files {
		result := lintFile(file)
		if !result.Valid {
			invalid++
		}
		results = append(results, result)
	}

	if lintFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, result := range results {
			if result.Valid {
				fmt.Printf("OK    %s (%s)\n", result.File, result.PolicyID)
				continue
			}
			fmt.Printf("FAIL  %s\n", result.File)
			for _, msg := range result.Errors {
				fmt.Printf("      %s\n", msg)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d policy file(s) invalid", invalid, len(files))
	}
	return nil
}

func lintFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	doc, err := parser.LoadFile(path)
	if err != nil {
		result.Valid = false
		if list, ok := err.(*policyerrors.List); ok {
			for _, e := range list.Errors {
				result.Errors = append(result.Errors, e.Error())
			}
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return result
	}

	result.PolicyID = doc.ID
	return result
}
