package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"github.com/deploymenttheory/go-pipeline-composer/internal/validation"
	"github.com/deploymenttheory/go-pipeline-composer/pkg/tooling"
	"github.com/spf13/cobra"
)

var validateAll bool

// validateCmd checks workflows and exits non-zero when any has errors
var validateCmd = &cobra.Command{
	Use:   "validate [reference...]",
	Short: "Check workflows for structural, parameter and dependency problems",
	Long: `Validate loads each referenced workflow (a path or a catalog name) and reports
errors and warnings. Errors fail the command; warnings never do.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if !validateAll && len(args) == 0 {
			return fmt.Errorf("requires at least one workflow reference or --all")
		}
		return nil
	},
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "Validate every workflow in the built-in and user catalogs")
}

func runValidate(cmd *cobra.Command, args []string) error {
	client, err := tooling.DefaultClient()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := useColor(out)
	failed := 0

	if validateAll {
		results, err := client.ValidateCatalog(cmd.Context())
		if err != nil {
			return err
		}
		for _, res := range results {
			writeHeader(out, res.Entry.Name, res.Entry.Path, color)
			if res.Err != nil {
				writeFailure(out, res.Err, color)
				failed++
				continue
			}
			if !validation.Print(out, res.Report, color) {
				failed++
			}
		}
	}

	for _, ref := range args {
		wf, report, err := client.ValidateWorkflow(ref)
		if err != nil {
			writeHeader(out, ref, "", color)
			writeFailure(out, err, color)
			failed++
			continue
		}
		writeHeader(out, wf.Name, wf.Source, color)
		if !validation.Print(out, report, color) {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d workflow(s) failed", errors.ErrValidationFailed, failed)
	}
	return nil
}
