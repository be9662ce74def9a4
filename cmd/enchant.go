package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"enchlib/core/tables"
	"enchlib/core/utils"

	"github.com/spf13/cobra"
)

var enabledOnly bool

// enchantCmd is the parent command for per-enchantment edits.
var enchantCmd = &cobra.Command{
	Use:   "enchant",
	Short: "Inspect and edit enchantment table rows",
	Long: `Read and edit the rows of one enchantment. Ids without a namespace use the
configured default namespace (sharpness is minecraft:sharpness).`,
}

var enchantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enchantments in the tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(".")
		if err != nil {
			return err
		}
		defer rt.close()

		list := rt.service().List(cmd.Context(), enabledOnly)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tENABLED\tMAX LEVEL\tRARITY")
		for _, d := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.ID, utils.FormatBool(d.Enabled), d.MaxLevel, d.Rarity)
		}
		return w.Flush()
	},
}

var enchantShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show every table value for one enchantment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(".")
		if err != nil {
			return err
		}
		defer rt.close()

		d, err := rt.service().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(d)
	},
}

func setEnabledCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " an enchantment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editDetail(cmd, func(rt *deps) (tables.Detail, error) {
				return rt.service().SetEnabled(cmd.Context(), args[0], enabled)
			})
		},
	}
}

var enchantSetLevelCmd = &cobra.Command{
	Use:   "set-level <id> <level>",
	Short: "Override the max level of an enchantment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("level must be an integer: %w", err)
		}
		return editDetail(cmd, func(rt *deps) (tables.Detail, error) {
			return rt.service().SetMaxLevel(cmd.Context(), args[0], level)
		})
	},
}

var enchantClearLevelCmd = &cobra.Command{
	Use:   "clear-level <id>",
	Short: "Drop the max level override so the registry value applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editDetail(cmd, func(rt *deps) (tables.Detail, error) {
			return rt.service().ClearMaxLevel(cmd.Context(), args[0])
		})
	},
}

var enchantSetRarityCmd = &cobra.Command{
	Use:   "set-rarity <id> <rarity>",
	Short: "Set the rarity of an enchantment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editDetail(cmd, func(rt *deps) (tables.Detail, error) {
			return rt.service().SetRarity(cmd.Context(), args[0], args[1])
		})
	},
}

var enchantSetListCmd = &cobra.Command{
	Use:   "set-list <id> <compatibility|categories|incompatibility> [values]",
	Short: "Replace a list value of an enchantment",
	Long:  `Values are comma separated. Omit them to store an empty list.`,
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := tables.ParseKind(args[1])
		if err != nil {
			return err
		}
		var values []string
		if len(args) == 3 {
			values = utils.SplitCSV(args[2])
		}
		return editDetail(cmd, func(rt *deps) (tables.Detail, error) {
			return rt.service().SetList(cmd.Context(), args[0], kind, values)
		})
	},
}

var enchantRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an enchantment from every table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(".")
		if err != nil {
			return err
		}
		defer rt.close()

		if !confirmDestructiveAction() {
			rt.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		if err := rt.service().Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		rt.logger.Info("Enchantment removed")
		return nil
	},
}

var enchantStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print table statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(".")
		if err != nil {
			return err
		}
		defer rt.close()

		stats, err := rt.service().Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("\n=== Enchantment Table Stats ===")
		fmt.Printf("Total: %d\n", stats.Total)
		fmt.Printf("Enabled: %d\n", stats.Enabled)
		fmt.Printf("Disabled: %d\n", stats.Disabled)
		fmt.Printf("Max Level Overrides: %d\n", stats.Overrides)
		fmt.Printf("Registry IDs: %d\n", stats.RegistryIDs)
		fmt.Printf("Missing In Config: %d\n", stats.MissingInConfig)
		fmt.Printf("Unknown To Registry: %d\n", stats.ExtraInConfig)
		for _, d := range tables.Definitions {
			fmt.Printf("Rows in %s: %d\n", d.File, stats.Rows[d.Kind])
		}
		return nil
	},
}

// editDetail bootstraps, runs fn and prints the resulting detail.
func editDetail(cmd *cobra.Command, fn func(rt *deps) (tables.Detail, error)) error {
	rt, err := bootstrap(".")
	if err != nil {
		return err
	}
	defer rt.close()

	d, err := fn(rt)
	if err != nil {
		return err
	}
	return printJSON(d)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	enchantListCmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Only list enabled enchantments")
	enchantRemoveCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	enchantCmd.AddCommand(
		enchantListCmd,
		enchantShowCmd,
		setEnabledCmd("enable", true),
		setEnabledCmd("disable", false),
		enchantSetLevelCmd,
		enchantClearLevelCmd,
		enchantSetRarityCmd,
		enchantSetListCmd,
		enchantRemoveCmd,
		enchantStatsCmd,
	)
	RootCmd.AddCommand(enchantCmd)
}
