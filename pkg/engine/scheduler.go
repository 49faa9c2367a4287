package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
)

// PolicySource supplies the current policy set for a scheduled pass. The
// policy manager's registry satisfies this, so hot-reloaded documents take
// effect on the next tick without restarting the scheduler.
type PolicySource func() []*ast.PolicyDocument

// Scheduler runs evaluation passes on a cron schedule.
type Scheduler struct {
	engine   *Engine
	source   PolicySource
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler. Common schedules:
//
//   - "0 7 * * *"   - Daily at 7 AM
//   - "0 */6 * * *" - Every 6 hours
func NewScheduler(engine *Engine, source PolicySource, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:   engine,
		source:   source,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "scheduler"),
	}
}

// Start begins scheduled evaluation. An empty schedule disables the
// scheduler. The scheduler stops itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("evaluation schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runPass(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule evaluation: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("evaluation scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPass executes one scheduled evaluation over the current policy set.
func (s *Scheduler) runPass(ctx context.Context) {
	policies := s.source()
	s.logger.Info("starting scheduled evaluation pass", "policies", len(policies))

	batch, err := s.engine.EvaluatePolicies(ctx, policies, RunOptions{Trigger: "scheduled"})
	if err != nil {
		s.logger.Error("scheduled evaluation pass failed", "error", err)
		return
	}

	if batch.Failed() {
		s.logger.Warn("scheduled evaluation pass completed with failures",
			"failures", len(batch.Failures()),
			"findings", len(batch.Findings()),
		)
		return
	}
	s.logger.Info("scheduled evaluation pass completed",
		"findings", len(batch.Findings()),
	)
}

// Stop stops the scheduler and waits for a running pass to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("evaluation scheduler stopped")
	}
}
