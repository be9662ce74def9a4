package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"enchlib/core/storage"
	"enchlib/feature/backup"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var keepBackups int

// backupCmd is the parent command for backup operations.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the tables to and from object storage",
}

// backupService bootstraps and connects the backup storage.
func backupService() (*deps, *backup.Service, error) {
	rt, err := bootstrap(".")
	if err != nil {
		return nil, nil, err
	}
	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		rt.close()
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return rt, backup.NewService(client, rt.cfg.Storage, rt.store, rt.logger), nil
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the table files as a new snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, svc, err := backupService()
		if err != nil {
			return err
		}
		defer rt.close()

		snap, err := svc.Push(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Pushed %s (%d files, %d bytes)\n", snap.Name, len(snap.Files), snap.Size)
		return nil
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull [snapshot]",
	Short: "Restore a snapshot, the newest when none is named",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, svc, err := backupService()
		if err != nil {
			return err
		}
		defer rt.close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if !confirmDestructiveAction() {
			rt.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		snap, err := svc.Pull(cmd.Context(), name)
		if err != nil {
			return err
		}
		rt.logger.Info("Snapshot restored", zap.String("snapshot", snap.Name), zap.Strings("files", snap.Files))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, svc, err := backupService()
		if err != nil {
			return err
		}
		defer rt.close()

		list, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SNAPSHOT\tFILES\tBYTES")
		for _, s := range list {
			fmt.Fprintf(w, "%s\t%d\t%d\n", s.Name, len(s.Files), s.Size)
		}
		return w.Flush()
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove all but the newest snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, svc, err := backupService()
		if err != nil {
			return err
		}
		defer rt.close()

		if !confirmDestructiveAction() {
			rt.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		removed, err := svc.Prune(cmd.Context(), keepBackups)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d snapshots\n", len(removed))
		return nil
	},
}

func init() {
	backupPullCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	backupPruneCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	backupPruneCmd.Flags().IntVar(&keepBackups, "keep", 10, "Number of snapshots to keep")

	backupCmd.AddCommand(backupPushCmd, backupPullCmd, backupListCmd, backupPruneCmd)
	RootCmd.AddCommand(backupCmd)
}
