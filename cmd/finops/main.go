// Finops is a cloud cost-governance policy engine.
//
// It loads declarative YAML policies, evaluates them against resource and
// cost data, and emits findings for breached checks:
//   - Monthly spend caps with end-of-month forecasting
//   - Resource count limits with tag-based exemptions
//   - Configuration compliance (e.g. license models)
//
// Usage:
//
//	# Validate policy files
//	finops lint --dir policies/
//
//	# One evaluation pass over a data snapshot
//	finops run --policies policies/ --data snapshot.yaml
//
//	# Long-running mode with scheduled passes and hot reload
//	finops serve --config config.yaml
//
//	# Show version information
//	finops version
package main

func main() {
	Execute()
}
