package execution

import (
	"context"
	"testing"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	plan := NewPlan(validation.ToolSet{})
	c := NewCoordinator(nil, 2, "/tmp/work")
	plan.RegisterAll(c)

	wf := testWorkflow(
		newStep("shrink", composition.StepResize, "", map[string]string{"width": "{size}", "output": "{output_dir}/x.png"}),
		newStep("notify", composition.StepWebhook, "processed_count == 1", map[string]string{"url": "https://example.com"}),
	)

	results, err := c.RunMany(context.Background(), wf, []string{"a.png", "b.png"}, "/out")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, StepCompleted, results[0].Steps[0].Status)
	assert.Equal(t, StepSkipped, results[0].Steps[1].Status)
	assert.Contains(t, results[0].Steps[1].Reason, "curl is not installed")
	assert.Equal(t, "1", results[0].Variables["processed_count"])

	var lines []string
	for _, e := range plan.Entries("b.png") {
		lines = append(lines, e.String())
	}
	assert.Equal(t, []string{
		"pre_workflow: echo start thumbs",
		"step 1 (shrink): resize output=/out/x.png width=128",
		"post_step: echo done shrink",
		"on_success: echo ok",
	}, lines)
}

func TestPlanCountsExtraction(t *testing.T) {
	plan := NewPlan(validation.ToolSet{})
	c := NewCoordinator(nil, 1, "/tmp/work")
	plan.RegisterAll(c)

	wf := testWorkflow(
		newStep("extract", composition.StepPDFExtract, "", map[string]string{"input": "{workflow_input}"}),
		newStep("shrink", composition.StepResize, "extracted_count > 0", map[string]string{"width": "64"}),
	)

	result, err := c.Run(context.Background(), wf, "doc.pdf", "/out")
	require.NoError(t, err)
	require.Len(t, result.Steps, 2)

	assert.Equal(t, StepCompleted, result.Steps[0].Status)
	assert.Equal(t, StepCompleted, result.Steps[1].Status, "guard after a planned extraction holds")
	assert.Equal(t, "1", result.Variables["extracted_count"])
	assert.Equal(t, "1", result.Variables["processed_count"])
}
