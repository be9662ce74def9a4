package cmd

import (
	"context"
	"fmt"

	"enchlib/core/config"
	"enchlib/core/database"
	"enchlib/core/filestore"
	"enchlib/core/logger"
	"enchlib/core/metrics"
	"enchlib/core/reconcile"
	"enchlib/core/registry"
	"enchlib/core/tables"
	"enchlib/feature/enchantments"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps bundles what the commands share.
type deps struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	db       *gorm.DB
	registry *registry.Cached
	store    *tables.Store
	engine   *reconcile.Engine
}

// bootstrap loads configuration, builds the logger, opens the registry and
// loads the tables from disk. The database is only connected when the
// registry reads from it.
func bootstrap(path string) (*deps, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &deps{cfg: cfg, logger: logg, metrics: metrics.New()}

	if cfg.Registry.Source == registry.SourceDatabase {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to registry database: %w", err)
		}
		rt.db = db
		logg.Info("Connected to registry database", zap.String("driver", cfg.Database.Driver))
	}

	rt.registry, err = registry.New(cfg.Registry, afero.NewOsFs(), rt.db, cfg.Server.DefaultNamespace, logg)
	if err != nil {
		return nil, err
	}

	files := filestore.NewOS(cfg.Tables.Dir, logg)
	rt.store = tables.NewStore(files, logg, tables.WithObserver(rt.metrics))
	if _, err := rt.store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load tables from %s: %w", cfg.Tables.Dir, err)
	}

	rt.engine = reconcile.NewEngine(rt.store, rt.registry, logg, rt.metrics)
	return rt, nil
}

// service returns the operator service over the shared engine.
func (rt *deps) service() *enchantments.Service {
	return enchantments.NewService(rt.engine, rt.cfg.Server.DefaultNamespace, rt.logger)
}

// fillMissing runs the fill-only reconcile that every startup performs.
func (rt *deps) fillMissing(ctx context.Context) error {
	_, report, err := rt.engine.ReconcileAndApply(ctx, reconcile.Options{})
	if err != nil {
		return fmt.Errorf("failed to reconcile tables: %w", err)
	}
	if report.AddedCount > 0 {
		rt.logger.Info("Added missing enchantments", zap.Int("count", report.AddedCount), zap.Int("rows", report.Inserted))
	}
	return nil
}

func (rt *deps) close() {
	_ = rt.logger.Sync()
}
