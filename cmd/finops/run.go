package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/cli"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/config"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/engine"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings/export"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings/storage"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/manager"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/provider"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/telemetry/logging"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/temporal"
)

var runFlags struct {
	policies string
	data     string
	month    string
	format   string
	report   string
	db       string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one evaluation pass",
	Long: `Run one evaluation pass over a data snapshot and print the results.

The pass loads every policy in the policies directory, resolves each
active policy's scope against the snapshot, evaluates all checks and
prints findings, metrics and evaluation failures. The process exits
non-zero when any evaluation failed, so CI pipelines distinguish "no
breaches" from "could not evaluate".

Examples:
  # Evaluate the current month
  finops run --policies policies/ --data snapshot.yaml

  # Evaluate a specific month and write a Markdown report
  finops run --policies policies/ --data snapshot.yaml --month 2026-08 --report report.md

  # JSON output, persisting records to sqlite
  finops run --policies policies/ --data snapshot.yaml --format json --db data/findings.db`,
	RunE: runPass,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.policies, "policies", "p", "policies", "directory of policy files")
	runCmd.Flags().StringVar(&runFlags.data, "data", "", "YAML data snapshot file (required)")
	runCmd.Flags().StringVar(&runFlags.month, "month", "", "calendar month to evaluate, YYYY-MM (default: current month)")
	runCmd.Flags().StringVar(&runFlags.format, "format", "text", "output format: text, json")
	runCmd.Flags().StringVar(&runFlags.report, "report", "", "write a Markdown report to this path")
	runCmd.Flags().StringVar(&runFlags.db, "db", "", "persist records to this sqlite database instead of memory")
	_ = runCmd.MarkFlagRequired("data")
}

func runPass(cmd *cobra.Command, args []string) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	logger, err := logging.Setup(config.LoggingConfig{Level: level, Format: "text"}, os.Stderr)
	if err != nil {
		return err
	}

	opts := engine.RunOptions{}
	if runFlags.month != "" {
		year, month, err := temporal.ParseMonth(runFlags.month)
		if err != nil {
			return cli.NewConfigError("month", err.Error())
		}
		opts.Year, opts.Month = year, month
	}

	docs, err := manager.NewLoader(runFlags.policies, logger).Load()
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	snapshot, err := provider.LoadSnapshotFile(runFlags.data)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	sink, err := buildRunSink()
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer sink.Close()

	eng := engine.New(snapshot, sink, engine.Config{}, logger, nil)
	ctx := cli.SetupSignalHandler()
	batch, err := eng.EvaluatePolicies(ctx, docs, opts)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	out := &export.RunOutput{
		Month:       runFlags.month,
		EvaluatedAt: firstEvaluatedAt(batch),
		Findings:    batch.Findings(),
		Metrics:     batch.Metrics(),
		Failures:    batch.Failures(),
	}

	if runFlags.report != "" {
		if err := writeReport(runFlags.report, out); err != nil {
			return cli.NewCommandError("run", err)
		}
		logger.Info("report written", "path", runFlags.report)
	}

	switch runFlags.format {
	case "json":
		if err := export.WriteJSON(os.Stdout, out); err != nil {
			return err
		}
	default:
		printSummary(out)
	}

	if batch.Failed() {
		return fmt.Errorf("evaluation completed with failures")
	}
	return nil
}

// buildRunSink returns the sink for a CLI pass: in-memory unless --db is
// given.
func buildRunSink() (findings.Sink, error) {
	if runFlags.db == "" {
		return storage.NewMemorySink(), nil
	}
	cfg := storage.DefaultSQLiteConfig()
	cfg.Path = runFlags.db
	return storage.NewSQLiteSink(cfg)
}

func writeReport(path string, out *export.RunOutput) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return export.WriteMarkdown(file, out)
}

func printSummary(out *export.RunOutput) {
	fmt.Printf("Findings: %d   Metrics: %d   Failures: %d\n", len(out.Findings), len(out.Metrics), len(out.Failures))
	for _, finding := range out.Findings {
		fmt.Printf("  BREACH  [%s] %s/%s  scope=%s  key=%s\n",
			finding.Severity, finding.PolicyID, finding.CheckID, finding.ScopeName, finding.FindingKey)
	}
	for _, failure := range out.Failures {
		fmt.Printf("  FAILED  [%s] %s  scope=%s  %s\n",
			failure.Stage, failure.PolicyID, failure.ScopeName, failure.Error)
	}
}

// firstEvaluatedAt picks the pass timestamp off the first record. The
// zero time means the pass produced no records at all.
func firstEvaluatedAt(batch *engine.BatchResult) time.Time {
	if records := batch.Metrics(); len(records) > 0 {
		return records[0].EvaluatedAt
	}
	if failures := batch.Failures(); len(failures) > 0 {
		return failures[0].OccurredAt
	}
	return time.Time{}
}
