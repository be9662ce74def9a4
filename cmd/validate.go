package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"enchlib/core/reconcile"

	"github.com/spf13/cobra"
)

var (
	verboseValidate bool
	jsonValidate    bool
)

// validateCmd compares the tables with the registry without writing.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare the tables with the registry",
	Long: `Reports registry ids missing from the availability table, table ids the
registry does not know, and incompatibilities listed in one direction only.
Nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(".")
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := rt.engine.Validate(cmd.Context())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		if jsonValidate {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Print(reconcile.Format(report, verboseValidate))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVarP(&verboseValidate, "verbose", "v", false, "List every finding")
	validateCmd.Flags().BoolVar(&jsonValidate, "json", false, "Output the report as JSON")
	RootCmd.AddCommand(validateCmd)
}
