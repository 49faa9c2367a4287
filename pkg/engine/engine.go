package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/exemption"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/expr"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/provider"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/telemetry/metrics"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/temporal"
)

// Engine evaluates policy documents against provider data and publishes
// the resulting findings, metrics and failure records to a sink.
type Engine struct {
	provider provider.Provider
	sink     findings.Sink
	exempt   *exemption.Resolver
	config   Config
	logger   *slog.Logger
	metrics  *metrics.EvaluationMetrics
}

// New creates an engine. The metrics collector may be nil (CLI runs
// without a metrics endpoint).
func New(p provider.Provider, sink findings.Sink, cfg Config, logger *slog.Logger, em *metrics.EvaluationMetrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()
	return &Engine{
		provider: p,
		sink:     sink,
		exempt:   exemption.NewResolver(logger),
		config:   cfg,
		logger:   logger.With("component", "engine"),
		metrics:  em,
	}
}

// RunOptions selects the evaluation instant and month for one pass.
type RunOptions struct {
	// Now is the evaluation instant. Zero means time.Now().
	Now time.Time

	// Year and Month select a specific calendar month. Zero means the
	// month containing Now, per each policy's timezone.
	Year  int
	Month time.Month

	// Trigger labels the pass in telemetry: "manual" or "scheduled".
	Trigger string
}

// pair is one unit of evaluation work.
type pair struct {
	doc    *ast.PolicyDocument
	scope  provider.Scope
	bounds *temporal.Bounds
}

// EvaluatePolicies runs one evaluation pass over the given documents.
// Non-active policies are skipped. Pairs evaluate in parallel up to the
// configured cap; every pair reaches a terminal state and failures never
// suppress sibling results. Records are published to the sink in pair
// order after all pairs finish.
func (e *Engine) EvaluatePolicies(ctx context.Context, policies []*ast.PolicyDocument, opts RunOptions) (*BatchResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	trigger := opts.Trigger
	if trigger == "" {
		trigger = "manual"
	}

	batch := &BatchResult{}
	var pairs []*pair
	scopeCache := map[string][]provider.Scope{}

	for _, doc := range policies {
		if !doc.IsActive() {
			e.logger.Info("skipping policy, not active", "policy_id", doc.ID, "status", string(doc.Status))
			continue
		}

		bounds, err := e.boundsFor(doc, now, opts)
		if err != nil {
			// A bounds failure (tzdata missing at runtime) stays confined
			// to this policy; sibling policies still evaluate.
			e.logger.Warn("policy skipped, could not resolve month bounds", "policy_id", doc.ID, "error", err)
			e.metrics.RecordPair(doc.ID, string(StateFailed))
			e.metrics.RecordFailure(doc.ID, string(findings.StageData))
			batch.Pairs = append(batch.Pairs, &PairResult{
				PolicyID: doc.ID,
				Scope:    provider.Scope{Kind: doc.Scope.Kind},
				State:    StateFailed,
				Failures: []*findings.EvaluationFailure{{
					PolicyID:   doc.ID,
					Stage:      findings.StageData,
					Error:      fmt.Sprintf("could not resolve month bounds: %v", err),
					OccurredAt: now,
				}},
			})
			continue
		}

		available, ok := scopeCache[doc.Scope.Kind]
		if !ok {
			listCtx, cancel := context.WithTimeout(ctx, e.config.FetchTimeout)
			available, err = e.provider.ListScopes(listCtx, doc.Scope.Kind)
			cancel()
			if err != nil {
				// Without the scope list the policy has no pairs at
				// all; record a single data-stage failure for it.
				batch.Pairs = append(batch.Pairs, e.failedPair(doc, provider.Scope{Kind: doc.Scope.Kind}, "scopes", err, now))
				continue
			}
			scopeCache[doc.Scope.Kind] = available
		}

		for _, scope := range ResolveScopes(doc.Scope, available) {
			pairs = append(pairs, &pair{doc: doc, scope: scope, bounds: bounds})
		}
	}

	results := make([]*PairResult, len(pairs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.config.MaxConcurrentScopes)
	for i, p := range pairs {
		i, p := i, p
		group.Go(func() error {
			results[i] = e.evaluatePair(groupCtx, p)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	batch.Pairs = append(batch.Pairs, results...)

	e.publish(ctx, batch)
	e.metrics.RecordPass(trigger)
	e.logger.Info("evaluation pass complete",
		"pairs", len(batch.Pairs),
		"findings", len(batch.Findings()),
		"failures", len(batch.Failures()),
	)
	return batch, nil
}

// boundsFor computes the month bounds for one policy in its declared
// timezone.
func (e *Engine) boundsFor(doc *ast.PolicyDocument, now time.Time, opts RunOptions) (*temporal.Bounds, error) {
	if opts.Year != 0 {
		return temporal.MonthBounds(opts.Year, opts.Month, now, doc.Timezone)
	}
	return temporal.CurrentMonthBounds(now, doc.Timezone)
}

// evaluatePair drives one (policy, scope) pair through its lifecycle:
// fetch all declared inputs, evaluate every check, apply the policy-wide
// exemption filter, collect findings and metrics.
func (e *Engine) evaluatePair(ctx context.Context, p *pair) *PairResult {
	result := &PairResult{PolicyID: p.doc.ID, Scope: p.scope, State: StatePending}
	evaluatedAt := p.bounds.Today

	data, input, err := e.fetchPairData(ctx, p)
	if err != nil {
		e.logger.Warn("pair failed at data binding",
			"policy_id", p.doc.ID,
			"scope", p.scope.Name,
			"input", input,
			"error", err,
		)
		e.metrics.RecordPair(p.doc.ID, string(StateFailed))
		e.metrics.RecordFailure(p.doc.ID, string(findings.StageData))
		result.State = StateFailed
		result.Failures = append(result.Failures, &findings.EvaluationFailure{
			PolicyID:   p.doc.ID,
			ScopeID:    p.scope.ID,
			ScopeName:  p.scope.Name,
			Stage:      findings.StageData,
			Error:      (&DataUnavailableError{PolicyID: p.doc.ID, Scope: p.scope.Name, Input: input, Cause: err}).Error(),
			OccurredAt: evaluatedAt,
		})
		return result
	}
	result.State = StateDataBound

	result.State = StateEvaluating
	for _, check := range p.doc.Checks {
		checkResult, err := e.evaluateCheck(p, check, data)
		if err != nil {
			checkErr := &CheckError{PolicyID: p.doc.ID, CheckID: check.ID, Scope: p.scope.Name, Cause: err}
			e.logger.Warn("check failed, continuing with siblings",
				"policy_id", p.doc.ID,
				"check_id", check.ID,
				"scope", p.scope.Name,
				"error", err,
			)
			e.metrics.RecordFailure(p.doc.ID, string(findings.StageCheck))
			result.Failures = append(result.Failures, &findings.EvaluationFailure{
				PolicyID:   p.doc.ID,
				CheckID:    check.ID,
				ScopeID:    p.scope.ID,
				ScopeName:  p.scope.Name,
				Stage:      findings.StageCheck,
				Error:      checkErr.Error(),
				OccurredAt: evaluatedAt,
			})
			continue
		}

		result.Metrics = append(result.Metrics, newMetricsRecord(p.doc, check, p.scope, checkResult, evaluatedAt))
		if checkResult.Breach {
			finding := newFinding(p.doc, check, p.scope, checkResult, evaluatedAt)
			result.Findings = append(result.Findings, finding)
			e.metrics.RecordFinding(p.doc.ID, string(check.Severity))
			level := slog.LevelInfo
			if check.Severity.AtLeast(ast.SeverityHigh) {
				level = slog.LevelWarn
			}
			e.logger.Log(ctx, level, "breach detected",
				"finding_key", finding.FindingKey,
				"severity", finding.Severity,
				"scope", p.scope.Name,
			)
		}
	}

	result.State = StateComplete
	e.metrics.RecordPair(p.doc.ID, string(StateComplete))
	return result
}

// evaluateCheck runs one check's logic program, then applies the
// policy-wide exemption filter: when the first pass breaches and the check
// reads a resource inventory, exempt resources are removed and the logic
// re-evaluated over the remainder, so breach verdict, evidence and metrics
// all reflect the filtered inventory.
func (e *Engine) evaluateCheck(p *pair, check *ast.Check, data *pairData) (*expr.Result, error) {
	start := time.Now()
	result, err := check.Program.Eval(buildEnv(p.doc, check, data, p.bounds))
	e.metrics.RecordCheckDuration(p.doc.ID, check.ID, time.Since(start))
	if err != nil {
		return nil, err
	}

	resourceType := check.Evaluate.Inputs.ResourceType
	if !result.Breach || p.doc.Exemptions.Empty() || resourceType == "" {
		return result, nil
	}

	rules := p.doc.Exemptions.AllRules()
	all := data.resources[resourceType]
	kept := make([]provider.Resource, 0, len(all))
	for _, resource := range all {
		if !e.exempt.IsExempt(resource.Tags, rules, p.bounds.Today) {
			kept = append(kept, resource)
		}
	}
	if len(kept) == len(all) {
		return result, nil
	}

	e.logger.Debug("re-evaluating check over exemption-filtered inventory",
		"policy_id", p.doc.ID,
		"check_id", check.ID,
		"scope", p.scope.Name,
		"exempted", len(all)-len(kept),
	)
	filtered := &pairData{resources: map[string][]provider.Resource{resourceType: kept}, costs: data.costs, hasCosts: data.hasCosts}
	return check.Program.Eval(buildEnv(p.doc, check, filtered, p.bounds))
}

// fetchPairData performs the batched fetch for one pair: every distinct
// resource type any check declares, plus the month-to-date cost series when
// any check reads costs. The second return value names the input that
// failed.
func (e *Engine) fetchPairData(ctx context.Context, p *pair) (*pairData, string, error) {
	data := &pairData{resources: map[string][]provider.Resource{}}

	for _, check := range p.doc.Checks {
		inputs := check.Evaluate.Inputs
		if rt := inputs.ResourceType; rt != "" {
			if _, done := data.resources[rt]; !done {
				fetchCtx, cancel := context.WithTimeout(ctx, e.config.FetchTimeout)
				list, err := e.provider.ListResources(fetchCtx, p.scope, rt, inputs.Fields)
				cancel()
				if err != nil {
					return nil, "resources:" + rt, err
				}
				data.resources[rt] = list
			}
		}
		if inputs.CostWindow != "" && !data.hasCosts {
			window := provider.Window{Start: p.bounds.Start, End: p.bounds.Today}
			fetchCtx, cancel := context.WithTimeout(ctx, e.config.FetchTimeout)
			costs, err := e.provider.CostSeries(fetchCtx, p.scope, window)
			cancel()
			if err != nil {
				return nil, "cost_window:" + inputs.CostWindow, err
			}
			data.costs = costs
			data.hasCosts = true
		}
	}
	return data, "", nil
}

// failedPair builds the terminal result for a policy whose scope listing
// itself failed.
func (e *Engine) failedPair(doc *ast.PolicyDocument, scope provider.Scope, input string, err error, now time.Time) *PairResult {
	e.metrics.RecordPair(doc.ID, string(StateFailed))
	e.metrics.RecordFailure(doc.ID, string(findings.StageData))
	return &PairResult{
		PolicyID: doc.ID,
		Scope:    scope,
		State:    StateFailed,
		Failures: []*findings.EvaluationFailure{{
			PolicyID:   doc.ID,
			ScopeName:  scope.Name,
			Stage:      findings.StageData,
			Error:      (&DataUnavailableError{PolicyID: doc.ID, Scope: scope.Kind, Input: input, Cause: err}).Error(),
			OccurredAt: now,
		}},
	}
}

// publish pushes every record of the batch to the sink, in pair order.
// Publish errors are logged and do not abort the pass: the in-memory batch
// still carries the full result set.
func (e *Engine) publish(ctx context.Context, batch *BatchResult) {
	for _, pairResult := range batch.Pairs {
		for _, record := range pairResult.Metrics {
			if err := e.sink.PublishMetrics(ctx, record); err != nil {
				e.logger.Error("publishing metrics record failed", "policy_id", record.PolicyID, "error", err)
			}
		}
		for _, finding := range pairResult.Findings {
			if err := e.sink.PublishFinding(ctx, finding); err != nil {
				e.logger.Error("publishing finding failed", "finding_key", finding.FindingKey, "error", err)
			}
		}
		for _, failure := range pairResult.Failures {
			if err := e.sink.PublishFailure(ctx, failure); err != nil {
				e.logger.Error("publishing failure record failed", "policy_id", failure.PolicyID, "error", err)
			}
		}
	}
}
