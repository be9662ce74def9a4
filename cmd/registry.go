package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// registryCmd is the parent command for registry inspection.
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the enchantment registry",
}

var registryInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print registry id counts per namespace",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(".")
		if err != nil {
			return err
		}
		defer rt.close()

		info, err := rt.service().RegistryInfo(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("\n=== Registry ===")
		fmt.Printf("Source: %s\n", info.Source)
		fmt.Printf("Total: %d\n", info.Total)
		for _, ns := range info.Namespaces {
			fmt.Printf("  %s: %d\n", ns.Namespace, ns.Count)
		}
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryInfoCmd)
	RootCmd.AddCommand(registryCmd)
}
