package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-pipeline-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/condition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	locations "github.com/deploymenttheory/go-pipeline-composer/internal/utils/fsutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/osutil"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "pipeline-composer"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "PIPELINE_COMPOSER"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"` // human or json
	LogFile   string `mapstructure:"log_file"`

	// Workflow catalogs searched by name after literal paths
	Catalog struct {
		BuiltinDir string `mapstructure:"builtin_dir"`
		UserDir    string `mapstructure:"user_dir"`
	} `mapstructure:"catalog"`

	Paths struct {
		TempDir   string `mapstructure:"temp_dir"`
		OutputDir string `mapstructure:"output_dir"`
	} `mapstructure:"paths"`

	Execution struct {
		Jobs            int    `mapstructure:"jobs"`
		ConditionPolicy string `mapstructure:"condition_policy"` // execute or skip
	} `mapstructure:"execution"`

	Tools struct {
		TessdataDir string `mapstructure:"tessdata_dir"`
	} `mapstructure:"tools"`

	Validation struct {
		StrictVariables bool     `mapstructure:"strict_variables"`
		ExtraVariables  []string `mapstructure:"extra_variables"`
	} `mapstructure:"validation"`

	// File the configuration was read from, empty when only defaults and environment apply
	File string `mapstructure:"-"`
}

// Policy returns the configured unparsable-condition policy
func (c *AppConfig) Policy() condition.UnparsableConditionPolicy {
	p, _ := condition.ParsePolicy(c.Execution.ConditionPolicy)
	return p
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	// Ensure thread safety
	initOnce sync.Once
)

// Initialize loads the configuration into Instance once and creates the log and temp directories
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		var cfg *AppConfig
		cfg, err = Load(cfgFile)
		if err != nil {
			return
		}

		Instance = *cfg
		ConfigFile = cfg.File
		ConfigLoaded = cfg.File != ""

		ensureDirectories()
	})

	return err
}

// Load reads configuration from cfgFile, or from the default search paths when cfgFile
// is empty, applies environment overrides and validates the result. It does not touch
// the global Instance.
func Load(cfgFile string) (*AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		expanded, err := fsutil.ExpandTilde(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrConfigFileNotFound, err)
		}
		cfgFile = expanded
		if !fsutil.FileExists(cfgFile) {
			return nil, fmt.Errorf("%w: %s", errors.ErrConfigFileNotFound, cfgFile)
		}
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &AppConfig{}
	if readErr := v.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: %w", errors.ErrConfigParseError, readErr)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigParseError, err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandPaths resolves a leading ~ in every configured path
func (c *AppConfig) expandPaths() error {
	for _, p := range []*string{
		&c.LogFile,
		&c.Catalog.BuiltinDir,
		&c.Catalog.UserDir,
		&c.Paths.TempDir,
		&c.Paths.OutputDir,
		&c.Tools.TessdataDir,
	} {
		expanded, err := fsutil.ExpandTilde(*p)
		if err != nil {
			return fmt.Errorf("%w: %w", errors.ErrConfigInvalid, err)
		}
		*p = expanded
	}
	return nil
}

func (c *AppConfig) validate() error {
	switch c.LogFormat {
	case "human", "json":
	default:
		return fmt.Errorf("%w: log_format must be human or json, got %q", errors.ErrConfigInvalid, c.LogFormat)
	}

	if c.Execution.Jobs < 1 {
		return fmt.Errorf("%w: execution.jobs must be at least 1, got %d", errors.ErrConfigInvalid, c.Execution.Jobs)
	}

	if _, err := condition.ParsePolicy(c.Execution.ConditionPolicy); err != nil {
		return fmt.Errorf("%w: execution.condition_policy: %w", errors.ErrConfigInvalid, err)
	}

	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")

	// Set default log file based on OS
	logDir, err := locations.GetLogDir(AppName)
	if err == nil {
		v.SetDefault("log_file", filepath.Join(logDir, AppName+".log"))
	} else {
		v.SetDefault("log_file", "logs/"+AppName+".log")
	}

	// Catalog defaults
	builtinDir, err := locations.GetBuiltinCatalogDir(AppName)
	if err == nil {
		v.SetDefault("catalog.builtin_dir", builtinDir)
	} else {
		v.SetDefault("catalog.builtin_dir", "")
	}

	userDir, err := locations.GetUserCatalogDir(AppName)
	if err == nil {
		v.SetDefault("catalog.user_dir", userDir)
	} else {
		v.SetDefault("catalog.user_dir", "")
	}

	// Path defaults
	tempDir, err := locations.GetTempDir(AppName)
	if err == nil {
		v.SetDefault("paths.temp_dir", tempDir)
	} else {
		v.SetDefault("paths.temp_dir", "temp")
	}
	v.SetDefault("paths.output_dir", "output")

	// Execution defaults
	v.SetDefault("execution.jobs", runtime.NumCPU())
	v.SetDefault("execution.condition_policy", condition.ExecuteAnyway.String())

	// Tool defaults
	v.SetDefault("tools.tessdata_dir", "")

	// Validation defaults
	v.SetDefault("validation.strict_variables", false)
	v.SetDefault("validation.extra_variables", []string{})
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	// In dev mode, only use current directory and user config
	if osutil.IsDevEnvironment() {
		if configDir, err := locations.GetConfigDir(AppName); err == nil {
			v.AddConfigPath(configDir)
		}
		return
	}

	// In CI/Pipeline, only use current directory and explicit CI directories
	if osutil.IsRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	if configDir, err := locations.GetConfigDir(AppName); err == nil {
		v.AddConfigPath(configDir)
	}

	if systemConfigDir, err := locations.GetSystemConfigDir(AppName); err == nil {
		v.AddConfigPath(systemConfigDir)
	}
}

// ensureDirectories creates the log and temp directories
func ensureDirectories() {
	// Don't create directories in a pipeline environment unless explicitly requested
	if osutil.IsRunningInPipeline() && os.Getenv("CREATE_DIRS") != "true" {
		return
	}

	if Instance.LogFile != "" {
		_ = fsutil.CreateDirIfNotExists(filepath.Dir(Instance.LogFile))
	}

	if Instance.Paths.TempDir != "" {
		_ = fsutil.CreateDirIfNotExists(Instance.Paths.TempDir)
	}
}
