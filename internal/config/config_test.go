package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deploymenttheory/go-pipeline-composer/internal/condition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's real configuration out of the search path
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))
	t.Setenv("PIPELINE_COMPOSER_ENV", "development")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "human", cfg.LogFormat)
	assert.Empty(t, cfg.File)
	assert.GreaterOrEqual(t, cfg.Execution.Jobs, 1)
	assert.Equal(t, condition.ExecuteAnyway, cfg.Policy())
	// development mode keeps the user catalog next to the working directory
	assert.Equal(t, filepath.Join("config", "workflows"), cfg.Catalog.UserDir)
	assert.Equal(t, "output", cfg.Paths.OutputDir)
	assert.False(t, cfg.Validation.StrictVariables)
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
debug: true
log_format: json
catalog:
  builtin_dir: /opt/flows
execution:
  jobs: 8
  condition_policy: skip
validation:
  strict_variables: true
  extra_variables: [brand, customer]
`), 0o644))

	t.Setenv("PIPELINE_COMPOSER_EXECUTION_JOBS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/opt/flows", cfg.Catalog.BuiltinDir)
	assert.Equal(t, 3, cfg.Execution.Jobs, "environment overrides the file")
	assert.Equal(t, condition.SkipStep, cfg.Policy())
	assert.True(t, cfg.Validation.StrictVariables)
	assert.Equal(t, []string{"brand", "customer"}, cfg.Validation.ExtraVariables)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), errors.ErrConfigFileNotFound},
		{"malformed yaml", write("bad.yaml", "debug: [oops"), errors.ErrConfigParseError},
		{"bad log format", write("format.yaml", "log_format: xml"), errors.ErrConfigInvalid},
		{"bad jobs", write("jobs.yaml", "execution:\n  jobs: 0"), errors.ErrConfigInvalid},
		{"bad policy", write("policy.yaml", "execution:\n  condition_policy: maybe"), errors.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")

	path := filepath.Join(home, "composer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  builtin_dir: ~/flows
  user_dir: /srv/flows
tools:
  tessdata_dir: ~/tessdata
paths:
  output_dir: "~"
`), 0o644))

	cfg, err := Load("~/composer.yaml")
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, filepath.Join(home, "flows"), cfg.Catalog.BuiltinDir)
	assert.Equal(t, "/srv/flows", cfg.Catalog.UserDir)
	assert.Equal(t, filepath.Join(home, "tessdata"), cfg.Tools.TessdataDir)
	assert.Equal(t, home, cfg.Paths.OutputDir)
}
