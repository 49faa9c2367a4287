package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
)

// SQLiteConfig contains configuration for the SQLite findings sink.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite sink configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/findings.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS findings (
	id TEXT PRIMARY KEY,
	finding_key TEXT NOT NULL,
	policy_id TEXT NOT NULL,
	check_id TEXT NOT NULL,
	severity TEXT NOT NULL,
	scope_id TEXT NOT NULL,
	scope_name TEXT NOT NULL,
	evidence TEXT NOT NULL,
	metrics TEXT NOT NULL,
	remediation TEXT NOT NULL,
	evaluated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_findings_key ON findings(finding_key);
CREATE INDEX IF NOT EXISTS idx_findings_policy ON findings(policy_id, check_id);
CREATE INDEX IF NOT EXISTS idx_findings_evaluated ON findings(evaluated_at);

CREATE TABLE IF NOT EXISTS metrics (
	policy_id TEXT NOT NULL,
	check_id TEXT NOT NULL,
	scope_id TEXT NOT NULL,
	scope_name TEXT NOT NULL,
	breach INTEGER NOT NULL,
	metrics TEXT NOT NULL,
	evaluated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_metrics_policy ON metrics(policy_id, check_id, evaluated_at);

CREATE TABLE IF NOT EXISTS failures (
	policy_id TEXT NOT NULL,
	check_id TEXT,
	scope_id TEXT NOT NULL,
	scope_name TEXT NOT NULL,
	stage TEXT NOT NULL,
	error TEXT NOT NULL,
	occurred_at TIMESTAMP NOT NULL
);
`

// SQLiteSink persists findings, metrics and failures in SQLite. Records
// are insert-only; nothing ever updates a stored row.
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSink opens (or creates) the database and initializes the schema.
func NewSQLiteSink(config *SQLiteConfig) (*SQLiteSink, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "findings.storage.sqlite")

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL", config.Path, config.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open findings database: %w", err)
	}

	maxConns := config.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize findings schema: %w", err)
	}

	logger.Info("findings database ready", "path", config.Path)
	return &SQLiteSink{db: db, logger: logger}, nil
}

// PublishFinding inserts one finding.
func (s *SQLiteSink) PublishFinding(ctx context.Context, f *findings.Finding) error {
	evidence, err := json.Marshal(f.Evidence)
	if err != nil {
		return fmt.Errorf("failed to encode evidence: %w", err)
	}
	metrics, err := json.Marshal(f.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	remediation, err := json.Marshal(f.Remediation)
	if err != nil {
		return fmt.Errorf("failed to encode remediation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO findings (id, finding_key, policy_id, check_id, severity,
			scope_id, scope_name, evidence, metrics, remediation, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.FindingKey, f.PolicyID, f.CheckID, f.Severity,
		f.ScopeID, f.ScopeName, string(evidence), string(metrics), string(remediation), f.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert finding: %w", err)
	}
	return nil
}

// PublishMetrics inserts one metrics record.
func (s *SQLiteSink) PublishMetrics(ctx context.Context, r *findings.MetricsRecord) error {
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metrics (policy_id, check_id, scope_id, scope_name, breach, metrics, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.PolicyID, r.CheckID, r.ScopeID, r.ScopeName, r.Breach, string(metrics), r.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert metrics record: %w", err)
	}
	return nil
}

// PublishFailure inserts one failure record.
func (s *SQLiteSink) PublishFailure(ctx context.Context, f *findings.EvaluationFailure) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failures (policy_id, check_id, scope_id, scope_name, stage, error, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.PolicyID, f.CheckID, f.ScopeID, f.ScopeName, string(f.Stage), f.Error, f.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert failure record: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
