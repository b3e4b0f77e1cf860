// Package execution drives a validated workflow over one or more inputs. Step work
// and hook commands are delegated to registered handlers; steps within one run are
// strictly sequential, independent runs may execute in parallel.
package execution

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/condition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
	"github.com/deploymenttheory/go-pipeline-composer/internal/template"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"golang.org/x/sync/errgroup"
)

// Handler performs the work of one step. params are already template-expanded.
// Returning an error wrapping ErrStepSkipped marks the step skipped instead of failed.
type Handler interface {
	Handle(ctx context.Context, step composition.Step, params map[string]string, vars *scope.Scope) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, step composition.Step, params map[string]string, vars *scope.Scope) error

// Handle implements Handler
func (f HandlerFunc) Handle(ctx context.Context, step composition.Step, params map[string]string, vars *scope.Scope) error {
	return f(ctx, step, params, vars)
}

// HookRunner runs one template-expanded hook command
type HookRunner interface {
	RunHook(ctx context.Context, point composition.HookPoint, command string, vars *scope.Scope) error
}

// Coordinator runs workflows
type Coordinator struct {
	Handlers  map[composition.StepType]Handler
	Hooks     HookRunner
	Evaluator *condition.Evaluator

	// Scopes hands out per-run variable scopes; a private registry is used when nil
	Scopes *scope.Registry

	// Jobs bounds the number of concurrent runs in RunMany; values below 1 mean 1
	Jobs int

	TempDir string

	runs atomic.Int64
}

// NewCoordinator creates a coordinator with no handlers registered
func NewCoordinator(evaluator *condition.Evaluator, jobs int, tempDir string) *Coordinator {
	return &Coordinator{
		Handlers:  make(map[composition.StepType]Handler),
		Evaluator: evaluator,
		Scopes:    scope.NewRegistry(),
		Jobs:      jobs,
		TempDir:   tempDir,
	}
}

// Register sets the handler for a step type
func (c *Coordinator) Register(stepType composition.StepType, h Handler) {
	if c.Handlers == nil {
		c.Handlers = make(map[composition.StepType]Handler)
	}
	c.Handlers[stepType] = h
}

// StepStatus is the outcome of one step
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

// StepResult records what happened to one step
type StepResult struct {
	Step   composition.Step
	Status StepStatus
	Params map[string]string
	Reason string
	Err    error
}

// RunResult records one workflow run over one input
type RunResult struct {
	Workflow string
	Input    string
	ScopeID  string
	Steps    []StepResult

	// Variables is a snapshot of the scope when the run finished
	Variables map[string]string
	Err       error
}

// Failed returns the result of the failed step, if any
func (r *RunResult) Failed() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return s, true
		}
	}
	return StepResult{}, false
}

func (c *Coordinator) evaluator() *condition.Evaluator {
	if c.Evaluator == nil {
		return condition.NewEvaluator(condition.ExecuteAnyway)
	}
	return c.Evaluator
}

func (c *Coordinator) registry() *scope.Registry {
	if c.Scopes == nil {
		c.Scopes = scope.NewRegistry()
	}
	return c.Scopes
}

// Run executes wf over inputPath with a fresh variable scope. The returned error is
// also stored in the result.
func (c *Coordinator) Run(ctx context.Context, wf *composition.Workflow, inputPath, outputDir string) (*RunResult, error) {
	if wf == nil {
		return nil, fmt.Errorf("%w: workflow is nil", errors.ErrInvalidArgument)
	}

	scopeID := fmt.Sprintf("%s#%d", wf.Name, c.runs.Add(1))
	vars := c.registry().Get(scopeID)
	defer c.registry().Release(scopeID)

	vars.SetAll(wf.Settings)
	template.InitDefaults(vars, inputPath, outputDir, c.TempDir)
	vars.Set("workflow_name", wf.Name)
	vars.SetInt("extracted_count", 0)
	vars.SetInt("processed_count", 0)

	result := &RunResult{Workflow: wf.Name, Input: inputPath, ScopeID: scopeID}
	fields := map[string]interface{}{"workflow": wf.Name, "input": inputPath}
	logger.LogInfo("Starting workflow run", fields)

	err := c.runHooks(ctx, wf, composition.HookPreWorkflow, vars)
	if err == nil {
		err = c.runSteps(ctx, wf, vars, result)
	}

	if err != nil {
		result.Err = err
		if failed, ok := result.Failed(); ok {
			vars.Set("failed_step", failed.Step.Name)
		}
		if hookErr := c.runHooks(ctx, wf, composition.HookOnFailure, vars); hookErr != nil {
			logger.LogError("on_failure hook failed", hookErr, fields)
		}
		logger.LogError("Workflow run failed", err, fields)
	} else {
		if hookErr := c.runHooks(ctx, wf, composition.HookOnSuccess, vars); hookErr != nil {
			logger.LogError("on_success hook failed", hookErr, fields)
		}
		logger.LogInfo("Workflow run completed", fields)
	}

	result.Variables = vars.Snapshot()
	return result, err
}

func (c *Coordinator) runSteps(ctx context.Context, wf *composition.Workflow, vars *scope.Scope, result *RunResult) error {
	for _, step := range wf.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		vars.Set("step_name", step.Name)
		outcome := c.runStep(ctx, step, vars)
		result.Steps = append(result.Steps, outcome)

		if outcome.Status == StepFailed {
			return outcome.Err
		}
		if outcome.Status == StepCompleted {
			if err := c.runHooks(ctx, wf, composition.HookPostStep, vars); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Coordinator) runStep(ctx context.Context, step composition.Step, vars *scope.Scope) StepResult {
	fields := map[string]interface{}{"step": step.Name, "type": string(step.Type)}

	cond := c.evaluator().EvaluateDetailed(step.Condition, vars)
	if !cond.Value {
		reason := fmt.Sprintf("condition '%s' is false", step.Condition)
		if cond.Warning != "" {
			reason = cond.Warning
		}
		logger.LogInfo("Skipping step", logger.MergeFields(fields, map[string]interface{}{"reason": reason}))
		return StepResult{Step: step, Status: StepSkipped, Reason: reason}
	}

	params := template.SubstituteParams(step.Params.Map(), vars)
	outcome := StepResult{Step: step, Params: params}

	handler, ok := c.Handlers[step.Type]
	if !ok {
		outcome.Status = StepFailed
		outcome.Err = fmt.Errorf("%w: %s: %s", errors.ErrNoHandler, step.Label(), step.Type)
		return outcome
	}

	logger.LogDebug("Running step", fields)
	if err := handler.Handle(ctx, step, params, vars); err != nil {
		if errors.Is(err, errors.ErrStepSkipped) {
			outcome.Status = StepSkipped
			outcome.Reason = err.Error()
			logger.LogInfo("Step skipped by handler", logger.MergeFields(fields, map[string]interface{}{"reason": outcome.Reason}))
			return outcome
		}
		outcome.Status = StepFailed
		outcome.Err = fmt.Errorf("%w: %s: %w", errors.ErrStepFailed, step.Label(), err)
		return outcome
	}

	outcome.Status = StepCompleted
	return outcome
}

func (c *Coordinator) runHooks(ctx context.Context, wf *composition.Workflow, point composition.HookPoint, vars *scope.Scope) error {
	commands := wf.HookCommands(point)
	if len(commands) == 0 || c.Hooks == nil {
		return nil
	}

	for _, command := range commands {
		expanded := template.Substitute(command, vars)
		if err := c.Hooks.RunHook(ctx, point, expanded, vars); err != nil {
			return fmt.Errorf("%w: %s: %q: %w", errors.ErrHookFailed, point, expanded, err)
		}
	}
	return nil
}

// RunMany runs wf once per input, at most Jobs at a time, each with its own scope.
// A failing run does not stop the others; all failures are joined in the returned error.
func (c *Coordinator) RunMany(ctx context.Context, wf *composition.Workflow, inputs []string, outputDir string) ([]*RunResult, error) {
	results := make([]*RunResult, len(inputs))
	failures := make([]error, len(inputs))

	jobs := c.Jobs
	if jobs < 1 {
		jobs = 1
	}

	var g errgroup.Group
	g.SetLimit(jobs)

	for i, input := range inputs {
		g.Go(func() error {
			res, err := c.Run(ctx, wf, input, outputDir)
			results[i] = res
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", input, err)
			}
			return nil
		})
	}

	// run failures are collected in failures, never returned to the group
	_ = g.Wait()
	return results, errors.Join(failures...)
}
