package tooling

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/condition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/config"
	"github.com/deploymenttheory/go-pipeline-composer/internal/execution"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"github.com/deploymenttheory/go-pipeline-composer/internal/validation"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time with -ldflags
var Version = "0.1.0"

// InitOptions contains options for initializing the tooling API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
}

var initialized bool

// Initialize loads the configuration and sets up logging. Options override configured values.
func Initialize(options InitOptions) error {
	if initialized {
		return nil
	}

	if err := config.Initialize(options.ConfigFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	if options.Debug {
		config.Instance.Debug = true
	}
	if options.LogFormat != "" {
		config.Instance.LogFormat = options.LogFormat
	}
	if options.LogFile != "" {
		config.Instance.LogFile = options.LogFile
	}

	if !options.SuppressLog {
		logConfig := logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
			Quiet:     !config.Instance.Debug,
		}
		if err := logger.InitLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.LogDebug("Tooling API initialized", map[string]interface{}{
			"config_file": config.ConfigFile,
			"debug":       config.Instance.Debug,
			"log_format":  config.Instance.LogFormat,
		})
	}

	initialized = true
	return nil
}

// DefaultOptions returns options that defer every setting to the configuration
func DefaultOptions() InitOptions {
	return InitOptions{}
}

// Client loads, validates and plans workflows
type Client struct {
	Loader    *composition.Loader
	Validator *validation.Validator
	Evaluator *condition.Evaluator

	// Jobs bounds concurrent catalog validation and planned runs
	Jobs    int
	TempDir string
}

// NewClient builds a client from cfg
func NewClient(cfg *config.AppConfig) *Client {
	evaluator := condition.NewEvaluator(cfg.Policy())

	tessdata := validation.DefaultTessdataDirs
	if cfg.Tools.TessdataDir != "" {
		tessdata = append([]string{cfg.Tools.TessdataDir}, tessdata...)
	}

	return &Client{
		Loader: composition.NewLoader(cfg.Catalog.BuiltinDir, cfg.Catalog.UserDir),
		Validator: &validation.Validator{
			Tools:           validation.PathToolChecker{},
			Languages:       validation.NewTesseractLister(tessdata),
			Evaluator:       evaluator,
			ExtraVariables:  cfg.Validation.ExtraVariables,
			StrictVariables: cfg.Validation.StrictVariables,
		},
		Evaluator: evaluator,
		Jobs:      cfg.Execution.Jobs,
		TempDir:   cfg.Paths.TempDir,
	}
}

// DefaultClient initializes the API with default options if needed and returns a
// client for the global configuration
func DefaultClient() (*Client, error) {
	if !initialized {
		if err := Initialize(DefaultOptions()); err != nil {
			return nil, fmt.Errorf("failed to initialize tooling API: %w", err)
		}
	}
	return NewClient(&config.Instance), nil
}

func (c *Client) jobs() int {
	if c.Jobs < 1 {
		return 1
	}
	return c.Jobs
}

// LoadWorkflow resolves reference as a path or catalog name and parses it
func (c *Client) LoadWorkflow(reference string) (*composition.Workflow, error) {
	return c.Loader.Load(reference, scope.TemplateScope)
}

// ValidateWorkflow loads and validates reference. A load failure is returned as an
// error; validation findings are returned in the report.
func (c *Client) ValidateWorkflow(reference string) (*composition.Workflow, *validation.Report, error) {
	wf, err := c.LoadWorkflow(reference)
	if err != nil {
		return nil, nil, err
	}
	return wf, c.Validator.Validate(wf), nil
}

// ExportWorkflow loads reference and writes it to path in the format named by the
// path's extension, compressed when the path carries a compression suffix
func (c *Client) ExportWorkflow(reference, path string, opts composition.ExportOptions) (*composition.Workflow, error) {
	wf, err := c.LoadWorkflow(reference)
	if err != nil {
		return nil, err
	}
	if err := composition.Export(wf, path, opts); err != nil {
		return nil, err
	}
	return wf, nil
}

// CatalogResult is the outcome of validating one catalog entry
type CatalogResult struct {
	Entry  composition.CatalogEntry
	Report *validation.Report
	Err    error
}

// ValidateCatalog validates every workflow in both catalogs, Jobs at a time.
// Results follow the catalog listing order.
func (c *Client) ValidateCatalog(ctx context.Context) ([]CatalogResult, error) {
	entries, err := c.Loader.Catalog().List()
	if err != nil {
		return nil, err
	}

	results := make([]CatalogResult, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs())

	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i].Entry = entry
			wf, err := composition.Parse(entry.Path, scope.TemplateScope)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Report = c.Validator.Validate(wf)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PlanWorkflow validates reference and performs a dry run over inputs, recording the
// expanded step parameters and hook commands without running any tool.
func (c *Client) PlanWorkflow(ctx context.Context, reference string, inputs []string, outputDir string) (*execution.Plan, []*execution.RunResult, error) {
	wf, report, err := c.ValidateWorkflow(reference)
	if err != nil {
		return nil, nil, err
	}
	if !report.OK() {
		return nil, nil, fmt.Errorf("%w: %s: %d error(s)", errors.ErrValidationFailed, wf.Name, len(report.Errors()))
	}

	coordinator := execution.NewCoordinator(c.Evaluator, c.jobs(), c.TempDir)
	plan := execution.NewPlan(c.Validator.Tools)
	plan.RegisterAll(coordinator)

	absInputs := make([]string, len(inputs))
	for i, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			abs = input
		}
		absInputs[i] = abs
	}

	results, err := coordinator.RunMany(ctx, wf, absInputs, outputDir)
	return plan, results, err
}

// GetVersion returns the current version of the tooling API
func GetVersion() string {
	return Version
}

// Shutdown flushes logs before the application exits
func Shutdown() error {
	if initialized {
		logger.LogDebug("Tooling API shutting down", nil)
		_ = logger.Sync()
	}
	return nil
}
