package cmd

import (
	"context"
	"errors"
	"fmt"

	"enchlib/core/storage"
	"enchlib/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the enchantment tables",
	Long: `Checks that the table files exist, that the tables match the registry, that
the registry table has the expected schema and that the backup bucket exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), "")
	},
}

func integritySubCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntegrityChecks(cmd.Context(), name)
		},
	}
}

func init() {
	filesCmd := integritySubCmd("files", "Check and create missing table files")
	registryCheckCmd := integritySubCmd("registry", "Compare the tables with the registry")
	schemaCmd := integritySubCmd("schema", "Check the registry table schema")
	storageCmd := integritySubCmd("storage", "Check and create the backup bucket")

	filesCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing files")
	registryCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fill rows missing for registry ids")
	schemaCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the registry table or its missing columns")
	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the backup bucket")

	integrityCmd.AddCommand(filesCmd, registryCheckCmd, schemaCmd, storageCmd)
	RootCmd.AddCommand(integrityCmd)
}

// runIntegrityChecks runs the named check, or all of them when only is
// empty. Fixes apply only when a single check was requested.
func runIntegrityChecks(ctx context.Context, only string) error {
	rt, err := bootstrap(".")
	if err != nil {
		return err
	}
	defer rt.close()
	logg := rt.logger
	cfg := rt.cfg

	opts := integrity.Options{
		Bucket: cfg.Storage.Bucket,
		Region: cfg.Storage.Region,
		Prefix: cfg.Storage.Prefix,
		DB:     rt.db,
		Table:  cfg.Registry.Table,
	}
	if only == "" || only == "storage" {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Warn("Backup storage unavailable", zap.Error(err))
		} else {
			opts.Client = client
		}
	}
	svc := integrity.NewService(rt.engine, opts, logg)
	fix := fixFlag && only != ""

	if only == "" || only == "files" {
		logg.Info("Checking table files...", zap.String("dir", cfg.Tables.Dir))
		missing, err := svc.CheckFiles()
		if err != nil {
			return fmt.Errorf("files check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("All table files are present.")
		} else {
			logg.Warn("Missing table files detected", zap.Strings("missing", missing))
			if fix {
				logg.Info("Creating missing table files...")
				if err := svc.FixFiles(missing); err != nil {
					return fmt.Errorf("failed to create table files: %w", err)
				}
				logg.Info("Table files created successfully.")
			} else if only != "" {
				logg.Info("Run with --fix to create missing files.")
			}
		}
	}

	if only == "" || only == "registry" {
		logg.Info("Checking tables against the registry...")
		report, err := svc.CheckRegistry(ctx)
		if err != nil {
			return fmt.Errorf("registry check failed: %w", err)
		}

		if report.Clean() {
			logg.Info("Tables match the registry.", zap.Int("checked", report.Checked))
		} else {
			logg.Warn("Registry findings",
				zap.Int("missing_in_config", len(report.MissingInConfig)),
				zap.Int("unknown_to_registry", len(report.ExtraInConfig)),
				zap.Int("one_way_incompatibilities", len(report.AsymmetricPairs)))

			if fix && len(report.MissingInConfig) > 0 {
				if _, err := svc.FixRegistry(ctx); err != nil {
					return fmt.Errorf("failed to fill missing rows: %w", err)
				}
			} else if only != "" && len(report.MissingInConfig) > 0 {
				logg.Info("Run with --fix to fill rows for missing ids.")
			}
		}
	}

	if only == "" || only == "schema" {
		logg.Info("Checking registry schema...", zap.String("table", cfg.Registry.Table))
		report, err := svc.CheckSchema()
		switch {
		case errors.Is(err, integrity.ErrNoDatabase):
			logg.Info("Schema check skipped, registry source is not database.")
		case err != nil:
			logg.Error("Schema check failed", zap.Error(err))
		case report.Matched:
			logg.Info("Registry schema matches expected definition.", zap.String("driver", report.Driver))
		default:
			logg.Warn("Registry schema mismatches found", zap.String("driver", report.Driver))
			for table, tblReport := range report.Tables {
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
			if fix {
				if err := svc.FixSchema(); err != nil {
					return fmt.Errorf("failed to migrate registry table: %w", err)
				}
			} else if only != "" {
				logg.Info("Run with --fix to create the table or its missing columns.")
			}
		}
	}

	if only == "" || only == "storage" {
		logg.Info("Checking backup storage...", zap.String("bucket", cfg.Storage.Bucket))
		report, err := svc.CheckStorage(ctx)
		switch {
		case errors.Is(err, integrity.ErrNoStorage):
			logg.Info("Storage check skipped, no storage configured.")
		case err != nil:
			logg.Error("Storage check failed", zap.Error(err))
		case report.Exists:
			logg.Info("Backup bucket exists.", zap.Int("objects", report.Backups))
		case fix:
			if err := svc.FixStorage(ctx); err != nil {
				return fmt.Errorf("failed to create bucket: %w", err)
			}
		default:
			logg.Warn("Backup bucket is missing. Run with --fix to create it.")
		}
	}
	return nil
}
