package cmd

import (
	"io"
	"os"

	"github.com/deploymenttheory/go-pipeline-composer/internal/config"
	"github.com/deploymenttheory/go-pipeline-composer/pkg/tooling"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile string
	noColor bool
)

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Validate and plan declarative file-processing workflows",
	Long: `pipeline-composer loads declarative workflow documents that describe
multi-step file-processing pipelines (PDF and Excel image extraction, image
conversion, resizing, watermarking, OCR, webhooks and custom scripts), checks
them before anything runs, and shows what a run would do for given inputs.

Workflows are referenced by path or by name from the built-in and user catalogs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts := tooling.DefaultOptions()
		opts.ConfigFile = cfgFile

		// CLI flags override config settings only when explicitly provided
		if cmd.Flags().Changed("debug") {
			opts.Debug, _ = cmd.Flags().GetBool("debug")
		}
		if cmd.Flags().Changed("log-format") {
			opts.LogFormat, _ = cmd.Flags().GetString("log-format")
		}

		return tooling.Initialize(opts)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: json or human")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// useColor reports whether output to w should be colored
func useColor(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
