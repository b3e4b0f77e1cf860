package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-pipeline-composer/internal/common/plistutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/pkg/tooling"
	"github.com/spf13/cobra"
)

var exportBinaryPlist bool

// exportCmd rewrites a workflow in another document format
var exportCmd = &cobra.Command{
	Use:   "export <reference> <path>",
	Short: "Write a workflow to a new document, converting its format",
	Long: `Export loads a workflow and writes it to path. The extension picks the format
(.yaml, .yml, .json, .toml or .plist) and an optional .xz, .bz2 or .gz suffix
compresses the result, e.g. flows/thumbnails.yaml.xz.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := tooling.DefaultClient()
		if err != nil {
			return err
		}

		opts := composition.ExportOptions{PlistFormat: plistutil.FormatXML}
		if exportBinaryPlist {
			opts.PlistFormat = plistutil.FormatBinary
		}

		wf, err := client.ExportWorkflow(args[0], args[1], opts)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", wf.Name, args[1])
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportBinaryPlist, "binary-plist", false, "Write .plist documents in binary format")
}
