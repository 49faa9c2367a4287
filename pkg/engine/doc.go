// Package engine orchestrates policy evaluation: it resolves each policy's
// scope selector into concrete scope instances, batches the data fetch per
// (policy, scope) pair, assembles immutable evaluation contexts, runs every
// check's logic program, applies policy-wide exemptions as a final filter,
// and emits findings, metrics and failure records.
//
// Pairs are independent and evaluate in parallel up to a configured
// concurrency cap; a failure anywhere is isolated to the smallest unit
// (policy, scope or check) and never suppresses sibling results.
package engine
