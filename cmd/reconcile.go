package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"enchlib/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunReconcile bool
	pruneReconcile  bool
	yesConfirm      bool
)

// reconcileCmd fills the tables with rows for every registry enchantment.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Add table rows for registry enchantments missing from the config",
	Long: `Reconcile the six enchantment tables against the registry.

Every registry id missing from a table gets a default row appended. Existing
rows are never changed. With --prune, ids unknown to the registry are removed
from every table after confirmation.

Examples:
  # Show what would be added
  reconcile --dry-run

  # Add missing rows
  reconcile

  # Add missing rows and remove unknown ids (interactive confirmation)
  reconcile --prune

  # Same, non-interactive
  reconcile --prune --yes`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&dryRunReconcile, "dry-run", false, "Print the plan without writing")
	reconcileCmd.Flags().BoolVar(&pruneReconcile, "prune", false, "Also remove ids unknown to the registry")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap(".")
	if err != nil {
		return err
	}
	defer rt.close()

	opts := reconcile.Options{DryRun: dryRunReconcile, Prune: pruneReconcile}
	_, err = reconcileTables(cmd.Context(), rt, opts, confirmDestructiveAction)
	return err
}

// reconcileTables plans, asks confirm before any removal and applies exactly
// the plan that was shown. It returns nil when nothing was applied.
func reconcileTables(ctx context.Context, rt *deps, opts reconcile.Options, confirm func() bool) (*reconcile.Report, error) {
	l := rt.logger

	// Step 1: Plan (always runs)
	l.Info("Planning reconciliation...")
	plan, err := rt.engine.Plan(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to plan reconciliation: %w", err)
	}
	printReconcileReport(l, plan)

	if plan.Empty() {
		l.Info("Tables already match the registry.")
		return nil, nil
	}
	if opts.DryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil, nil
	}

	if plan.Summary.Removals > 0 {
		if !confirm() {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil, nil
		}
		opts.Confirmed = true
	}

	// Step 2: Apply the confirmed plan
	l.Info("Applying actions...")
	report, err := rt.engine.Apply(ctx, plan, opts)
	if err != nil {
		return report, fmt.Errorf("failed to apply plan: %w", err)
	}

	l.Info("Reconciliation applied",
		zap.Int("added_ids", report.AddedCount),
		zap.Int("inserted_rows", report.Inserted),
		zap.Int("removed_ids", report.RemovedCount),
		zap.Int("removed_rows", report.Removed),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("known_ids", s.KnownIDs),
		zap.Int("added_ids", s.AddedIDs),
		zap.Int("inserts", s.Inserts),
		zap.Int("pruned_ids", s.PrunedIDs),
		zap.Int("removals", s.Removals),
	)

	// Show sample of actions (max 5 for logger)
	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("table", string(action.Table)),
			zap.String("key", string(action.Key)),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
