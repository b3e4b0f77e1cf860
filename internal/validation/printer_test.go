package validation

import (
	"bytes"
	"testing"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	t.Run("errors and warnings", func(t *testing.T) {
		r := newReport("thumbs")
		s := &composition.Step{Index: 1, Name: "shrink"}
		r.errorf(KindMissingDimension, s, "at least one dimension is required")
		r.warnf(KindUnknownVariable, s, "unknown template variable '{x}'")
		r.warnf(KindUnknownHook, nil, "unknown hook point 'later'")

		var buf bytes.Buffer
		ok := Print(&buf, r, false)

		assert.False(t, ok)
		assert.Equal(t, "Errors (1):\n"+
			"  ✗ step 2 (shrink): at least one dimension is required\n"+
			"Warnings (2):\n"+
			"  ! step 2 (shrink): unknown template variable '{x}'\n"+
			"  ! unknown hook point 'later'\n"+
			"✗ thumbs failed validation with 1 error(s)\n", buf.String())
	})

	t.Run("warnings only", func(t *testing.T) {
		r := newReport("thumbs")
		r.warnf(KindStepOrdering, nil, "odd order")

		var buf bytes.Buffer
		assert.True(t, Print(&buf, r, false))
		assert.Equal(t, "Warnings (1):\n  ! odd order\n✓ thumbs is valid\n", buf.String())
	})

	t.Run("clean report", func(t *testing.T) {
		var buf bytes.Buffer
		assert.True(t, Print(&buf, newReport(""), true))
		assert.Contains(t, buf.String(), "workflow is valid")
		assert.NotContains(t, buf.String(), "Errors")
	})
}

func TestReport(t *testing.T) {
	r := newReport("wf")
	assert.True(t, r.OK())

	s := &composition.Step{Index: 0, Name: "a"}
	r.warnf(KindDuplicateStep, s, "dup")
	assert.True(t, r.OK())

	r.errorf(KindInvalidValue, s, "bad %s", "value")
	assert.False(t, r.OK())
	assert.Equal(t, []string{"step 1 (a): bad value"}, r.Errors())
	assert.Equal(t, []string{"step 1 (a): dup"}, r.Warnings())
	assert.Equal(t, 1, r.Count(KindInvalidValue))
	assert.Len(t, r.ForStep(0), 2)
	assert.Empty(t, r.ForStep(WorkflowLevel))
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
}
