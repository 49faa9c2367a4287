// Package storage provides findings sink implementations: an in-memory
// sink for tests and single-pass CLI runs, and a SQLite sink as the
// reference durable backend.
package storage

import (
	"context"
	"sync"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
)

// MemorySink collects published records in memory.
type MemorySink struct {
	mu       sync.Mutex
	found    []*findings.Finding
	metrics  []*findings.MetricsRecord
	failures []*findings.EvaluationFailure
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// PublishFinding appends a finding.
func (s *MemorySink) PublishFinding(ctx context.Context, finding *findings.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *finding
	s.found = append(s.found, &copied)
	return nil
}

// PublishMetrics appends a metrics record.
func (s *MemorySink) PublishMetrics(ctx context.Context, record *findings.MetricsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.metrics = append(s.metrics, &copied)
	return nil
}

// PublishFailure appends a failure record.
func (s *MemorySink) PublishFailure(ctx context.Context, failure *findings.EvaluationFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *failure
	s.failures = append(s.failures, &copied)
	return nil
}

// Close is a no-op.
func (s *MemorySink) Close() error { return nil }

// Findings returns a copy of the collected findings in publish order.
func (s *MemorySink) Findings() []*findings.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*findings.Finding, len(s.found))
	copy(out, s.found)
	return out
}

// Metrics returns a copy of the collected metrics records in publish order.
func (s *MemorySink) Metrics() []*findings.MetricsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*findings.MetricsRecord, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// Failures returns a copy of the collected failure records.
func (s *MemorySink) Failures() []*findings.EvaluationFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*findings.EvaluationFailure, len(s.failures))
	copy(out, s.failures)
	return out
}
