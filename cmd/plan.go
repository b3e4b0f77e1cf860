package cmd

import (
	"github.com/deploymenttheory/go-pipeline-composer/internal/config"
	"github.com/deploymenttheory/go-pipeline-composer/pkg/tooling"
	"github.com/spf13/cobra"
)

var planOutputDir string

// planCmd dry-runs a workflow over inputs
var planCmd = &cobra.Command{
	Use:   "plan <reference> <input>...",
	Short: "Show what a workflow would do for each input without running any tool",
	Long: `Plan validates the workflow, then walks its steps for every input with a fresh
set of variables: conditions are evaluated, parameters and hook commands are
expanded and printed, and steps that would be skipped are reported with the reason.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := tooling.DefaultClient()
		if err != nil {
			return err
		}

		outputDir := planOutputDir
		if outputDir == "" {
			outputDir = config.Instance.Paths.OutputDir
		}

		plan, results, err := client.PlanWorkflow(cmd.Context(), args[0], args[1:], outputDir)
		if plan == nil {
			return err
		}

		out := cmd.OutOrStdout()
		renderPlan(out, plan, results, useColor(out))
		return err
	},
}

func init() {
	planCmd.Flags().StringVarP(&planOutputDir, "output-dir", "o", "", "Output directory bound to {output_dir} (default from configuration)")
}
