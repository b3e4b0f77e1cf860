package validation

import (
	"fmt"

	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
)

// Severity separates blocking issues from advisory ones
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String makes Severity satisfy the fmt.Stringer interface.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind classifies an issue
type Kind string

const (
	// Errors
	KindStructural        Kind = "structural"
	KindMissingParameter  Kind = "missing_parameter"
	KindMissingDimension  Kind = "missing_dimension"
	KindInvalidValue      Kind = "invalid_value"
	KindMissingDependency Kind = "missing_dependency"

	// Warnings
	KindUnknownValue        Kind = "unknown_value"
	KindOptionalDependency  Kind = "optional_dependency"
	KindUnknownVariable     Kind = "unknown_variable"
	KindUnparsableCondition Kind = "unparsable_condition"
	KindStepOrdering        Kind = "step_ordering"
	KindSuspiciousScript    Kind = "suspicious_script"
	KindDuplicateStep       Kind = "duplicate_step"
	KindUnknownHook         Kind = "unknown_hook"
)

// WorkflowLevel marks an issue that is not tied to a step
const WorkflowLevel = -1

// Issue is one finding of a validation run
type Issue struct {
	Severity Severity
	Kind     Kind
	Step     int    // step index, or WorkflowLevel
	Label    string // human readable step reference, empty for workflow-level issues
	Message  string
}

// String renders the issue as a single line
func (i Issue) String() string {
	if i.Label == "" {
		return i.Message
	}
	return i.Label + ": " + i.Message
}

// Report accumulates the issues found while validating one workflow.
// Issues are kept in the order they were found.
type Report struct {
	Workflow string
	Issues   []Issue
}

func newReport(workflow string) *Report {
	return &Report{Workflow: workflow}
}

func (r *Report) add(sev Severity, kind Kind, step *composition.Step, format string, args ...interface{}) {
	issue := Issue{
		Severity: sev,
		Kind:     kind,
		Step:     WorkflowLevel,
		Message:  fmt.Sprintf(format, args...),
	}
	if step != nil {
		issue.Step = step.Index
		issue.Label = step.Label()
	}
	r.Issues = append(r.Issues, issue)
}

func (r *Report) errorf(kind Kind, step *composition.Step, format string, args ...interface{}) {
	r.add(SeverityError, kind, step, format, args...)
}

func (r *Report) warnf(kind Kind, step *composition.Step, format string, args ...interface{}) {
	r.add(SeverityWarning, kind, step, format, args...)
}

func (r *Report) filter(sev Severity) []string {
	var out []string
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue.String())
		}
	}
	return out
}

// Errors returns the rendered errors in order
func (r *Report) Errors() []string { return r.filter(SeverityError) }

// Warnings returns the rendered warnings in order
func (r *Report) Warnings() []string { return r.filter(SeverityWarning) }

// OK reports whether the run found no errors. Warnings never fail a run.
func (r *Report) OK() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Count returns how many issues of kind were recorded
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

// ForStep returns the issues recorded against step index
func (r *Report) ForStep(index int) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Step == index {
			out = append(out, issue)
		}
	}
	return out
}
