package execution

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
	"github.com/deploymenttheory/go-pipeline-composer/internal/template"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"github.com/deploymenttheory/go-pipeline-composer/internal/validation"
)

// PlanEntry is one recorded action
type PlanEntry struct {
	Input  string
	Action string // step label or hook point
	Detail string
}

// String renders the entry as a single line
func (e PlanEntry) String() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Detail)
}

// Plan is a dry-run Handler and HookRunner. It performs no work, records the expanded
// parameters and hook commands, and is safe for concurrent runs. Each planned extraction
// or image step counts as one file so later count guards see the step as done.
type Plan struct {
	// Tools decides whether optional tools are available; webhook steps are skipped without curl
	Tools validation.ToolChecker

	mu      sync.Mutex
	entries []PlanEntry
}

// NewPlan creates an empty plan
func NewPlan(tools validation.ToolChecker) *Plan {
	return &Plan{Tools: tools}
}

// RegisterAll registers p as the handler for every step type and as the hook runner
func (p *Plan) RegisterAll(c *Coordinator) {
	for _, t := range composition.StepTypes() {
		c.Register(t, p)
	}
	c.Hooks = p
}

func (p *Plan) record(vars *scope.Scope, action, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, PlanEntry{Input: vars.Get("workflow_input"), Action: action, Detail: detail})
}

// Handle implements Handler
func (p *Plan) Handle(ctx context.Context, step composition.Step, params map[string]string, vars *scope.Scope) error {
	if step.Type == composition.StepWebhook && p.Tools != nil && !p.Tools.HasTool("curl") {
		return fmt.Errorf("%w: curl is not installed", errors.ErrStepSkipped)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, string(step.Type))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	p.record(vars, step.Label(), strings.Join(parts, " "))

	switch {
	case step.Type.IsExtraction():
		template.Increment(vars, "extracted_count", 1)
	case step.Type.IsImageProcessing():
		template.Increment(vars, "processed_count", 1)
	}
	return nil
}

// RunHook implements HookRunner
func (p *Plan) RunHook(ctx context.Context, point composition.HookPoint, command string, vars *scope.Scope) error {
	p.record(vars, string(point), command)
	return nil
}

// Entries returns the recorded entries for input in the order they were recorded
func (p *Plan) Entries(input string) []PlanEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []PlanEntry
	for _, e := range p.entries {
		if e.Input == input {
			out = append(out, e)
		}
	}
	return out
}
