package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"enchlib/core/loader"
	"enchlib/core/logger"
	"enchlib/core/middleware/auth"
	"enchlib/core/middleware/rayid"
	"enchlib/core/storage"
	"enchlib/core/tables"
	"enchlib/core/watcher"

	"enchlib/feature/backup"
	"enchlib/feature/enchantments"
	"enchlib/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title EnchLib API
// @version 1.0
// @description API for managing enchantment configuration tables.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the enchantment configuration server",
	Long: `Loads the tables, fills rows missing for registry enchantments, watches the
table directory for edits and serves the HTTP API.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 1. Configuration, logger, registry, tables
		rt, err := bootstrap(".")
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer rt.close()
		logg := rt.logger
		cfg := rt.cfg
		zap.ReplaceGlobals(logg)

		// 2. Fill missing rows before serving
		if err := rt.fillMissing(ctx); err != nil {
			logg.Fatal("Initial reconcile failed", zap.Error(err))
		}

		// 3. Watch the table directory
		if cfg.Tables.Watch {
			w, err := watcher.New(cfg.Tables.Dir, tables.Files(), rt.store, cfg.Tables.Debounce(), logg)
			if err != nil {
				logg.Fatal("Failed to create watcher", zap.Error(err))
			}
			if err := w.Start(ctx); err != nil {
				logg.Fatal("Failed to start watcher", zap.Error(err))
			}
			defer w.Stop()
		}

		// 4. Storage (Optional, backups only)
		var client storage.Client
		if c, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Backup storage unavailable", zap.Error(err))
		} else {
			client = c
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 5. Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(enchantments.NewFeature(rt.engine, cfg.Server.DefaultNamespace, logg))
		mgr.Register(integrity.NewFeature(rt.engine, integrity.Options{
			Client: client,
			Bucket: cfg.Storage.Bucket,
			Region: cfg.Storage.Region,
			Prefix: cfg.Storage.Prefix,
			DB:     rt.db,
			Table:  cfg.Registry.Table,
		}, logg))
		mgr.Register(backup.NewFeature(client, cfg.Storage, rt.store, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray id
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth, except for the scrape endpoint
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/metrics"}}))
		app.Get("/metrics", rt.metrics.Handler())

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("tables", cfg.Tables.Dir),
				zap.String("registry", cfg.Registry.Source))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
