package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/execution"
	"github.com/deploymenttheory/go-pipeline-composer/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCatalog(t *testing.T) {
	var buf bytes.Buffer
	renderCatalog(&buf, []composition.CatalogEntry{
		{Name: "thumbs", Path: "/data/thumbs.yaml", Origin: composition.OriginBuiltin, Digest: "blake2b-256:0123456789abcdef0123"},
		{Name: "thumbs", Path: "/home/me/thumbs.yml", Origin: composition.OriginUser, Digest: "blake2b-256:fedcba9876543210", Shadows: true},
		{Name: "broken", Path: "/home/me/broken.yaml.xz", Origin: composition.OriginUser},
	}, false)

	out := buf.String()
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abc")
	assert.Contains(t, out, "hidden by built-in")
	assert.Contains(t, out, "unreadable")
	assert.Contains(t, out, "/home/me/broken.yaml.xz")
	assert.Contains(t, out, "Total: 3 workflow(s)")

	buf.Reset()
	renderCatalog(&buf, nil, false)
	assert.Equal(t, "No workflows found\n", buf.String())
}

func TestRenderWorkflow(t *testing.T) {
	wf := &composition.Workflow{
		Name:        "thumbs",
		Description: "make thumbnails",
		Version:     "2",
		Settings:    map[string]string{"size": "128"},
		Steps: []composition.Step{
			{Index: 0, Name: "shrink", Type: composition.StepResize, Condition: "extracted_count > 0",
				Params: composition.NewParams(map[string]string{"width": "{size}"})},
		},
		Hooks: map[composition.HookPoint][]string{
			composition.HookOnSuccess: {"echo done"},
			"later":                   {"echo never"},
		},
	}

	var buf bytes.Buffer
	renderWorkflow(&buf, wf, false)

	out := buf.String()
	assert.Contains(t, out, "==> thumbs")
	assert.Contains(t, out, "Description: make thumbnails")
	assert.Contains(t, out, "width={size}")
	assert.Contains(t, out, "extracted_count > 0")
	assert.Contains(t, out, "on_success:\n  echo done\n")
	assert.Contains(t, out, "later:\n  echo never\n")
}

func TestRenderPlan(t *testing.T) {
	plan := execution.NewPlan(validation.ToolSet{})
	c := execution.NewCoordinator(nil, 1, "/tmp")
	plan.RegisterAll(c)

	wf := &composition.Workflow{
		Name: "notify",
		Steps: []composition.Step{
			{Index: 0, Name: "shrink", Type: composition.StepResize, Params: composition.NewParams(map[string]string{"width": "10"})},
			{Index: 1, Name: "ping", Type: composition.StepWebhook, Params: composition.NewParams(map[string]string{"url": "https://x"})},
		},
	}
	results, err := c.RunMany(context.Background(), wf, []string{"a.png"}, "/out")
	require.NoError(t, err)

	var buf bytes.Buffer
	renderPlan(&buf, plan, results, false)
	assert.Equal(t, "==> a.png (notify)\n"+
		"  → step 1 (shrink): resize width=10\n"+
		"  - step 2 (ping) skipped: step skipped: curl is not installed\n", buf.String())
}
