package cmd

import (
	"github.com/deploymenttheory/go-pipeline-composer/pkg/tooling"
	"github.com/spf13/cobra"
)

// showCmd prints a parsed workflow
var showCmd = &cobra.Command{
	Use:   "show <reference>",
	Short: "Show the steps, settings and hooks of a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := tooling.DefaultClient()
		if err != nil {
			return err
		}

		wf, err := client.LoadWorkflow(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		renderWorkflow(out, wf, useColor(out))
		return nil
	},
}
