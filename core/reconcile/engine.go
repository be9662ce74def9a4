package reconcile

import (
	"context"
	"fmt"
	"time"

	"enchlib/core/registry"
	"enchlib/core/tables"

	"go.uber.org/zap"
)

// Observer receives the outcome of reconcile and validation runs.
type Observer interface {
	ObserveReconcile(report *Report, err error)
	ObserveValidation(report *ValidationReport)
}

// Engine ties a table store to a registry.
type Engine struct {
	store    *tables.Store
	registry registry.Registry
	logger   *zap.Logger
	observer Observer
}

// NewEngine creates an engine. observer may be nil.
func NewEngine(store *tables.Store, reg registry.Registry, logger *zap.Logger, observer Observer) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, registry: reg, logger: logger, observer: observer}
}

// Store returns the engine's table store.
func (e *Engine) Store() *tables.Store {
	return e.store
}

// Registry returns the engine's registry.
func (e *Engine) Registry() registry.Registry {
	return e.registry
}

// Plan builds a plan against the current snapshot and registry.
func (e *Engine) Plan(ctx context.Context, opts Options) (*Plan, error) {
	ids, err := e.registry.ListKnownIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry ids: %w", err)
	}
	return BuildPlan(e.store.Snapshot(), ids, opts), nil
}

// ReconcileAndApply plans and, unless opts.DryRun, applies the plan.
func (e *Engine) ReconcileAndApply(ctx context.Context, opts Options) (*Plan, *Report, error) {
	plan, err := e.Plan(ctx, opts)
	if err != nil {
		e.observeReconcile(nil, err)
		return nil, nil, err
	}
	report, err := e.Apply(ctx, plan, opts)
	return plan, report, err
}

// Apply executes a plan built earlier, such as one an operator has already
// reviewed. Rows added or removed since planning are skipped.
func (e *Engine) Apply(ctx context.Context, plan *Plan, opts Options) (*Report, error) {
	start := time.Now()
	report, err := ApplyPlan(ctx, e.store, plan, opts)
	e.observeReconcile(report, err)
	if err != nil {
		e.logger.Error("Reconciliation failed", zap.Error(err))
		return report, err
	}

	e.logger.Info("Reconciliation finished",
		zap.Int("known_ids", plan.Summary.KnownIDs),
		zap.Int("added", report.AddedCount),
		zap.Int("inserted_rows", report.Inserted),
		zap.Int("removed", report.RemovedCount),
		zap.Int("skipped", report.Skipped),
		zap.Bool("dry_run", report.DryRun),
		zap.Duration("took", time.Since(start)))
	return report, nil
}

// Validate compares the current snapshot with the registry.
func (e *Engine) Validate(ctx context.Context) (*ValidationReport, error) {
	ids, err := e.registry.ListKnownIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry ids: %w", err)
	}
	report := Validate(e.store.Snapshot(), ids)
	if e.observer != nil {
		e.observer.ObserveValidation(report)
	}
	if !report.Clean() {
		e.logger.Warn("Configuration differs from registry",
			zap.Int("missing", len(report.MissingInConfig)),
			zap.Int("extra", len(report.ExtraInConfig)),
			zap.Int("asymmetric", len(report.AsymmetricPairs)))
	}
	return report, nil
}

// MaxLevel resolves the effective max level of id, falling back to the
// registry's intrinsic level.
func (e *Engine) MaxLevel(ctx context.Context, id tables.ID) int {
	return e.store.Snapshot().MaxLevel(id, registry.Fallback(ctx, e.registry, e.logger))
}

// Detail returns the merged view of id with the registry fallback applied.
func (e *Engine) Detail(ctx context.Context, id tables.ID) tables.Detail {
	return e.store.Snapshot().Detail(id, registry.Fallback(ctx, e.registry, e.logger))
}

func (e *Engine) observeReconcile(report *Report, err error) {
	if e.observer != nil {
		e.observer.ObserveReconcile(report, err)
	}
}
