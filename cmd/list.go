package cmd

import (
	"github.com/deploymenttheory/go-pipeline-composer/pkg/tooling"
	"github.com/spf13/cobra"
)

// listCmd shows the workflows available by name
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflows in the built-in and user catalogs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := tooling.DefaultClient()
		if err != nil {
			return err
		}

		entries, err := client.Loader.Catalog().List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		renderCatalog(out, entries, useColor(out))
		return nil
	},
}
