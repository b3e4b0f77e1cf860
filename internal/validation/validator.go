// Package validation checks a loaded workflow before it runs. Every check appends
// to one Report; nothing here aborts early except the structural pass.
package validation

import (
	"sort"
	"strings"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/condition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/template"
)

// Validator runs the structural, per-type and cross-cutting checks.
// The zero value checks tools on PATH and asks tesseract for its languages.
type Validator struct {
	Tools     ToolChecker
	Languages LanguageLister

	// Evaluator decides how unparsable conditions are described in warnings
	Evaluator *condition.Evaluator

	// ExtraVariables are accepted by the template-variable audit in addition
	// to the built-in variables and the workflow's settings keys
	ExtraVariables []string

	// StrictVariables requires exact matches in the audit instead of prefix matches
	StrictVariables bool
}

// NewValidator creates a validator with the given collaborators
func NewValidator(tools ToolChecker, languages LanguageLister) *Validator {
	return &Validator{Tools: tools, Languages: languages}
}

func (v *Validator) tools() ToolChecker {
	if v.Tools == nil {
		return PathToolChecker{}
	}
	return v.Tools
}

// defaultLanguages serves every Validator without a LanguageLister
var defaultLanguages = NewTesseractLister(DefaultTessdataDirs)

func (v *Validator) languages() LanguageLister {
	if v.Languages == nil {
		return defaultLanguages
	}
	return v.Languages
}

// Validate checks wf and returns the accumulated report. It never mutates wf.
func (v *Validator) Validate(wf *composition.Workflow) *Report {
	if wf == nil {
		r := newReport("")
		r.errorf(KindStructural, nil, "workflow is nil")
		return r
	}

	r := newReport(wf.Name)

	if !v.validateStructure(wf, r) {
		logger.LogDebug("Structural validation failed", map[string]interface{}{
			"workflow": wf.Name,
			"errors":   len(r.Issues),
		})
		return r
	}

	for i := range wf.Steps {
		step := &wf.Steps[i]
		v.checkCondition(step, r)
		v.validateStep(step, r)
	}

	v.auditTemplateVariables(wf, r)
	checkStepOrdering(wf, r)
	checkDuplicateNames(wf, r)
	checkHooks(wf, r)

	logger.LogDebug("Validated workflow", map[string]interface{}{
		"workflow": wf.Name,
		"errors":   len(r.Errors()),
		"warnings": len(r.Warnings()),
	})
	return r
}

// validateStructure reports whether wf is well-formed enough for semantic checks
func (v *Validator) validateStructure(wf *composition.Workflow, r *Report) bool {
	if strings.TrimSpace(wf.Name) == "" {
		r.errorf(KindStructural, nil, "workflow name is required")
	}
	if strings.TrimSpace(wf.Description) == "" {
		r.errorf(KindStructural, nil, "workflow description is required")
	}
	if len(wf.Steps) == 0 {
		r.errorf(KindStructural, nil, "workflow must contain at least one step")
	}

	for i := range wf.Steps {
		step := &wf.Steps[i]
		if step.Index != i {
			r.errorf(KindStructural, step, "step index %d does not match its position %d", step.Index, i)
		}
		if strings.TrimSpace(step.Name) == "" {
			r.errorf(KindStructural, step, "name is required")
		}
		if step.Type == "" {
			r.errorf(KindStructural, step, "type is required")
		} else if !step.Type.Valid() {
			r.errorf(KindStructural, step, "invalid type '%s' (expected one of: %s)", step.Type, joinTypes())
		}
	}

	return r.OK()
}

func joinTypes() string {
	types := composition.StepTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func (v *Validator) checkCondition(step *composition.Step, r *Report) {
	if strings.TrimSpace(step.Condition) == "" {
		return
	}
	if err := condition.Check(step.Condition); err != nil {
		outcome := "the step will run anyway"
		if v.Evaluator != nil && v.Evaluator.Policy == condition.SkipStep {
			outcome = "the step will be skipped"
		}
		r.warnf(KindUnparsableCondition, step, "condition '%s' cannot be evaluated (%v); %s", step.Condition, err, outcome)
	}
}

// auditTemplateVariables warns about tokens that do not name a known variable
func (v *Validator) auditTemplateVariables(wf *composition.Workflow, r *Report) {
	allowed := make([]string, 0, len(template.KnownVariables)+len(wf.Settings)+len(v.ExtraVariables))
	allowed = append(allowed, template.KnownVariables...)
	for key := range wf.Settings {
		allowed = append(allowed, strings.ToLower(key))
	}
	for _, name := range v.ExtraVariables {
		allowed = append(allowed, strings.ToLower(name))
	}

	for i := range wf.Steps {
		step := &wf.Steps[i]
		for _, key := range step.Params.Keys() {
			for _, name := range template.ExtractVariables(step.Params.Value(key)) {
				if !v.knownVariable(name, allowed) {
					r.warnf(KindUnknownVariable, step, "unknown template variable '{%s}' in parameter '%s'", name, key)
				}
			}
		}
	}
}

func (v *Validator) knownVariable(name string, allowed []string) bool {
	for _, known := range allowed {
		if v.StrictVariables {
			if name == known {
				return true
			}
		} else if strings.HasPrefix(name, known) {
			return true
		}
	}
	return false
}

// checkStepOrdering warns when image processing is scheduled before the first extraction
func checkStepOrdering(wf *composition.Workflow, r *Report) {
	firstExtraction := -1
	for i := range wf.Steps {
		if wf.Steps[i].Type.IsExtraction() {
			firstExtraction = i
			break
		}
	}
	if firstExtraction < 0 {
		return
	}

	for i := 0; i < firstExtraction; i++ {
		step := &wf.Steps[i]
		if step.Type.IsImageProcessing() {
			extract := wf.Steps[firstExtraction]
			r.warnf(KindStepOrdering, step, "%s step runs before extraction step '%s'; it may have no images to process", step.Type, extract.Name)
			return
		}
	}
}

func checkDuplicateNames(wf *composition.Workflow, r *Report) {
	seen := make(map[string]int)
	for i := range wf.Steps {
		step := &wf.Steps[i]
		name := strings.ToLower(strings.TrimSpace(step.Name))
		if first, ok := seen[name]; ok {
			r.warnf(KindDuplicateStep, step, "step name duplicates %s", wf.Steps[first].Label())
			continue
		}
		seen[name] = i
	}
}

func checkHooks(wf *composition.Workflow, r *Report) {
	var unknown []string
	for point := range wf.Hooks {
		if !point.Valid() {
			unknown = append(unknown, string(point))
		}
	}
	sort.Strings(unknown)

	for _, point := range unknown {
		r.warnf(KindUnknownHook, nil, "unknown hook point '%s'; its commands will never run", point)
	}
}
