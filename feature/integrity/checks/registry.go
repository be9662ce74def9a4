package checks

import (
	"context"

	"enchlib/core/reconcile"

	"go.uber.org/zap"
)

// CheckRegistry compares the tables against the registry. Findings are
// data, not errors.
func CheckRegistry(ctx context.Context, engine *reconcile.Engine) (*reconcile.ValidationReport, error) {
	return engine.Validate(ctx)
}

// FixRegistry appends default rows for every registry id the tables are
// missing. Config-only ids and one-way incompatibilities are left for the
// operator.
func FixRegistry(ctx context.Context, engine *reconcile.Engine, logger *zap.Logger) (*reconcile.Report, error) {
	_, report, err := engine.ReconcileAndApply(ctx, reconcile.Options{})
	if err != nil {
		logger.Error("Failed to fill missing rows", zap.Error(err))
		return nil, err
	}
	logger.Info("Filled missing rows", zap.Int("added", report.AddedCount), zap.Int("inserted", report.Inserted))
	return report, nil
}
