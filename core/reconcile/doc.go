// Package reconcile keeps the enchantment tables in line with the registry.
//
// Reconciliation is split into a plan and an apply step. BuildPlan compares a
// snapshot with the registry id set and lists one insert per missing row;
// ApplyPlan writes those rows with one batched append per table and reloads
// the store. Existing rows are never rewritten, so user edits survive.
//
// Pruning (removing rows for ids the registry no longer knows) is planned
// only on request and executed only with Options.Confirmed.
//
// Validate is the read-only counterpart: it reports ids missing from the
// availability table, rows the registry does not know, and incompatibility
// pairs declared in one direction only.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(store, reg, log, metrics)
//
//	// Preview
//	plan, _, err := engine.ReconcileAndApply(ctx, reconcile.Options{DryRun: true})
//
//	// Fill missing rows
//	_, report, err := engine.ReconcileAndApply(ctx, reconcile.Options{})
//
//	// Report drift
//	findings, err := engine.Validate(ctx)
//	fmt.Print(reconcile.Format(findings, true))
package reconcile
